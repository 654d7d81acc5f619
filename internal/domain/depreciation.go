package domain

import (
	"github.com/shopspring/decimal"
)

// DepreciationEntry is one month of a book-value schedule.
type DepreciationEntry struct {
	DepreciationDate Date            `yaml:"depreciationDate" json:"depreciationDate"`
	NewBookValue     decimal.Decimal `yaml:"newBookValue" json:"newBookValue"`
}

// DepreciationMethod names a book depreciation method as stored on an asset record.
type DepreciationMethod string

const (
	MethodStraightLine           DepreciationMethod = "StraightLine"
	MethodDecliningBalance       DepreciationMethod = "DecliningBalance"
	MethodDoubleDecliningBalance DepreciationMethod = "DoubleDecliningBalance"
	MethodUnitsOfProduction      DepreciationMethod = "UnitsOfProduction"
	MethodMACRS                  DepreciationMethod = "MACRS"
)

// DepreciationParams carries exactly the inputs one method needs.
// The concrete types below are the only implementations.
type DepreciationParams interface {
	Method() DepreciationMethod
	isDepreciationParams()
}

// StraightLine depreciates (cost - salvage) evenly over UsefulLife years.
type StraightLine struct {
	UsefulLife int
}

// DecliningBalance applies Rate per year against the current book value.
type DecliningBalance struct {
	UsefulLife int
	Rate       decimal.Decimal
}

// DoubleDecliningBalance is DecliningBalance at 2/UsefulLife.
type DoubleDecliningBalance struct {
	UsefulLife int
}

// UnitsOfProduction depreciates per unit consumed.
type UnitsOfProduction struct {
	TotalUnits   int
	UnitsPerYear int
}

// MACRSTable follows the 6-year half-year-convention table for 5-year property.
type MACRSTable struct{}

func (StraightLine) Method() DepreciationMethod           { return MethodStraightLine }
func (DecliningBalance) Method() DepreciationMethod       { return MethodDecliningBalance }
func (DoubleDecliningBalance) Method() DepreciationMethod { return MethodDoubleDecliningBalance }
func (UnitsOfProduction) Method() DepreciationMethod      { return MethodUnitsOfProduction }
func (MACRSTable) Method() DepreciationMethod             { return MethodMACRS }

func (StraightLine) isDepreciationParams()           {}
func (DecliningBalance) isDepreciationParams()       {}
func (DoubleDecliningBalance) isDepreciationParams() {}
func (UnitsOfProduction) isDepreciationParams()      {}
func (MACRSTable) isDepreciationParams()             {}

// DepreciationCalculation is the first-year tax deduction for one replacement asset.
type DepreciationCalculation struct {
	AssetName          string          `json:"assetName"`
	Cost               decimal.Decimal `json:"cost"`
	BusinessUsePercent decimal.Decimal `json:"businessUsePercent"`
	DepreciableBasis   decimal.Decimal `json:"depreciableBasis"`

	BonusDepreciation   decimal.Decimal `json:"bonusDepreciation"`
	Section179Deduction decimal.Decimal `json:"section179Deduction"`
	MACRSFirstYear      decimal.Decimal `json:"macrsFirstYear"`

	TotalFirstYearDeduction decimal.Decimal `json:"totalFirstYearDeduction"`
	RemainingBasis          decimal.Decimal `json:"remainingBasis"`

	MethodUsed    string   `json:"methodUsed"`
	InServiceDate Date     `json:"inServiceDate"`
	Notes         []string `json:"notes"`
}

// SaleCalculation is the tax impact of selling one depreciated asset.
type SaleCalculation struct {
	AssetName string `json:"assetName"`

	SalePrice               decimal.Decimal `json:"salePrice"`
	OriginalCost            decimal.Decimal `json:"originalCost"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulatedDepreciation"`
	AdjustedBasis           decimal.Decimal `json:"adjustedBasis"`

	TotalGain            decimal.Decimal `json:"totalGain"`
	Section1245Recapture decimal.Decimal `json:"section1245Recapture"`
	Section1231Gain      decimal.Decimal `json:"section1231Gain"`
	LossOnSale           decimal.Decimal `json:"lossOnSale"`

	GrossProceeds        decimal.Decimal `json:"grossProceeds"`
	TransactionFees      decimal.Decimal `json:"transactionFees"`
	NetProceedsBeforeTax decimal.Decimal `json:"netProceedsBeforeTax"`
	TaxOnRecapture       decimal.Decimal `json:"taxOnRecapture"`
	TaxOnCapitalGain     decimal.Decimal `json:"taxOnCapitalGain"`
	NetProceedsAfterTax  decimal.Decimal `json:"netProceedsAfterTax"`

	SaleDate *Date    `json:"saleDate,omitempty"`
	Notes    []string `json:"notes"`
}

// TotalTax is the tax owed on recapture plus the tax owed on the §1231 gain.
func (s SaleCalculation) TotalTax() decimal.Decimal {
	return s.TaxOnRecapture.Add(s.TaxOnCapitalGain)
}
