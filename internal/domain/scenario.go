package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Replacement depreciation elections accepted in a scenario request.
const (
	ElectionBonus      = "BONUS"
	ElectionSection179 = "SECTION_179"
	ElectionMACRSGDS   = "MACRS_GDS"
	ElectionMACRSADS   = "MACRS_ADS"
)

// AssetSale is an asset being liquidated in a scenario.
type AssetSale struct {
	AssetID                 int             `yaml:"assetId" json:"assetId"`
	AssetName               string          `yaml:"assetName" json:"assetName"`
	OriginalCost            decimal.Decimal `yaml:"originalCost" json:"originalCost"`
	AccumulatedDepreciation decimal.Decimal `yaml:"accumulatedDepreciation" json:"accumulatedDepreciation"`
	SalePrice               decimal.Decimal `yaml:"salePrice" json:"salePrice"`
	TransactionFees         decimal.Decimal `yaml:"transactionFees" json:"transactionFees"`
	CloseMonth              string          `yaml:"closeMonth" json:"closeMonth"` // YYYY-MM
}

// ReplacementAsset is an asset being purchased in a scenario.
type ReplacementAsset struct {
	Name               string          `yaml:"name" json:"name"`
	Cost               decimal.Decimal `yaml:"cost" json:"cost"`
	Method             string          `yaml:"method" json:"method"`
	BusinessUsePercent decimal.Decimal `yaml:"businessUsePercent" json:"businessUsePercent"`
	InServiceMonth     string          `yaml:"inServiceMonth" json:"inServiceMonth"`             // YYYY-MM
	UsefulLife         *int            `yaml:"usefulLife,omitempty" json:"usefulLife,omitempty"` // nil means 5 years
}

// ScenarioRequest is a complete what-if liquidation and replacement request.
type ScenarioRequest struct {
	UserID            int                `yaml:"userId" json:"userId"`
	AssetsToSell      []AssetSale        `yaml:"assetsToSell" json:"assetsToSell"`
	ReplacementAssets []ReplacementAsset `yaml:"replacementAssets" json:"replacementAssets"`

	MarginalTaxRate     decimal.Decimal  `yaml:"marginalTaxRate" json:"marginalTaxRate"`
	CapitalGainsRate    *decimal.Decimal `yaml:"capitalGainsRate,omitempty" json:"capitalGainsRate,omitempty"`
	BusinessIncomeLimit *decimal.Decimal `yaml:"businessIncomeLimit,omitempty" json:"businessIncomeLimit,omitempty"`

	OverrideSection179Limit *decimal.Decimal `yaml:"overrideSection179Limit,omitempty" json:"overrideSection179Limit,omitempty"`
	OverrideBonusPercent    *int             `yaml:"overrideBonusPercent,omitempty" json:"overrideBonusPercent,omitempty"`
}

// ScenarioResults aggregates every sale and replacement calculation of one request.
// It is computed fresh per request and never persisted by the engine.
type ScenarioResults struct {
	ID string `json:"id"`

	TotalSaleProceeds         decimal.Decimal `json:"totalSaleProceeds"`
	TotalTransactionFees      decimal.Decimal `json:"totalTransactionFees"`
	TotalSection1245Recapture decimal.Decimal `json:"totalSection1245Recapture"`
	TotalSection1231Gain      decimal.Decimal `json:"totalSection1231Gain"`
	TotalTaxOnSales           decimal.Decimal `json:"totalTaxOnSales"`
	NetCashFromLiquidation    decimal.Decimal `json:"netCashFromLiquidation"`

	TotalReplacementCost     decimal.Decimal `json:"totalReplacementCost"`
	TotalBonusDepreciation   decimal.Decimal `json:"totalBonusDepreciation"`
	TotalSection179          decimal.Decimal `json:"totalSection179"`
	TotalMACRSFirstYear      decimal.Decimal `json:"totalMacrsFirstYear"`
	TotalFirstYearDeductions decimal.Decimal `json:"totalFirstYearDeductions"`
	TaxSavingsFromDeductions decimal.Decimal `json:"taxSavingsFromDeductions"`

	CashRequiredForReplacements decimal.Decimal `json:"cashRequiredForReplacements"`
	NetCashFlow                 decimal.Decimal `json:"netCashFlow"`

	SaleDetails        []SaleCalculation         `json:"saleDetails"`
	ReplacementDetails []DepreciationCalculation `json:"replacementDetails"`

	CalculatedAt time.Time `json:"calculatedAt"`
	TaxYear      int       `json:"taxYear"`
	Warnings     []string  `json:"warnings"`
}
