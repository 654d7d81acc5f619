package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is the asset record supplied by the asset repository. The optional numeric
// fields are only meaningful for the depreciation method that uses them.
type Asset struct {
	ID           string          `yaml:"assetId" json:"assetId"`
	UserID       int             `yaml:"userId" json:"userId"`
	Name         string          `yaml:"name" json:"name"`
	Type         string          `yaml:"type" json:"type"` // Equipment or Vehicle
	BookValue    decimal.Decimal `yaml:"bookValue" json:"bookValue"`
	SalvageValue decimal.Decimal `yaml:"salvageValue" json:"salvageValue"`

	Manufacturer string `yaml:"manufacturer" json:"manufacturer"`
	Model        string `yaml:"model" json:"model"`
	ModelYear    string `yaml:"modelYear" json:"modelYear"`
	Usage        int    `yaml:"usage" json:"usage"`
	Condition    string `yaml:"condition" json:"condition"`
	Country      string `yaml:"country" json:"country"`
	Region       string `yaml:"region" json:"region"`

	DepreciationMethod DepreciationMethod `yaml:"depreciationMethod" json:"depreciationMethod"`
	UsefulLife         *int               `yaml:"usefulLife,omitempty" json:"usefulLife,omitempty"`
	DepreciationRate   *decimal.Decimal   `yaml:"depreciationRate,omitempty" json:"depreciationRate,omitempty"`
	TotalUnits         *int               `yaml:"totalExpectedUnitsOfProduction,omitempty" json:"totalExpectedUnitsOfProduction,omitempty"`
	UnitsPerYear       *int               `yaml:"unitsProducedInYear,omitempty" json:"unitsProducedInYear,omitempty"`

	Valuation *Valuation          `yaml:"valuation,omitempty" json:"valuation,omitempty"`
	Schedule  []DepreciationEntry `yaml:"assetDepreciationSchedule,omitempty" json:"assetDepreciationSchedule,omitempty"`
}

// Descriptor returns the lookup key for third-party market valuations.
func (a Asset) Descriptor() ValuationDescriptor {
	return ValuationDescriptor{
		AssetType:    a.Type,
		Manufacturer: a.Manufacturer,
		Model:        a.Model,
		ModelYear:    a.ModelYear,
		Usage:        a.Usage,
		Condition:    a.Condition,
		Country:      a.Country,
		Region:       a.Region,
	}
}

// ValuationDescriptor identifies an asset to a market valuation provider.
type ValuationDescriptor struct {
	AssetType    string `json:"assetType"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	ModelYear    string `json:"modelYear"`
	Usage        int    `json:"usage"`
	Condition    string `json:"condition"`
	Country      string `json:"country"`
	Region       string `json:"region"`
}

// Valuation is a third-party market value snapshot.
type Valuation struct {
	FairMarketValue         decimal.Decimal `yaml:"fairMarketValue" json:"fairMarketValue"`
	OrderlyLiquidationValue decimal.Decimal `yaml:"orderlyLiquidationValue" json:"orderlyLiquidationValue"`
	ForcedLiquidationValue  decimal.Decimal `yaml:"forcedLiquidationValue" json:"forcedLiquidationValue"`
	RetrievedAt             time.Time       `yaml:"retrievedAt" json:"retrievedAt"`
}

// MarketQuote is a stored market valuation for one make, model and year.
type MarketQuote struct {
	Manufacturer string `yaml:"manufacturer" json:"manufacturer"`
	Model        string `yaml:"model" json:"model"`
	ModelYear    string `yaml:"modelYear" json:"modelYear"`
	Valuation    `yaml:",inline"`
}

// MarketQuoteFile is the on-disk shape of a list of market quotes.
type MarketQuoteFile struct {
	Quotes []MarketQuote `yaml:"quotes" json:"quotes"`
}

// PortfolioValuation totals the latest market valuations across assets.
type PortfolioValuation struct {
	ValuedAssets                 int             `json:"valuedAssets"`
	UnvaluedAssets               int             `json:"unvaluedAssets"`
	TotalFairMarketValue         decimal.Decimal `json:"totalFairMarketValue"`
	TotalOrderlyLiquidationValue decimal.Decimal `json:"totalOrderlyLiquidationValue"`
	TotalForcedLiquidationValue  decimal.Decimal `json:"totalForcedLiquidationValue"`
}
