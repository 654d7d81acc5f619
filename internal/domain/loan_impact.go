package domain

import (
	"github.com/shopspring/decimal"
)

// LoanPayoffSummary is the loan section of a liquidation report.
type LoanPayoffSummary struct {
	HasLoan            bool            `json:"hasLoan"`
	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	PrepaymentPenalty  decimal.Decimal `json:"prepaymentPenalty"`
	TotalPayoffAmount  decimal.Decimal `json:"totalPayoffAmount"`
	InterestPaidToDate decimal.Decimal `json:"interestPaidToDate"`
	InterestSavings    decimal.Decimal `json:"interestSavings"`
}

// LiquidationImpact is the cash effect of selling an asset and retiring its loan.
type LiquidationImpact struct {
	AssetSalePrice  decimal.Decimal   `json:"assetSalePrice"`
	TransactionFees decimal.Decimal   `json:"transactionFees"`
	LoanPayoff      LoanPayoffSummary `json:"loanPayoff"`
	GrossProceeds   decimal.Decimal   `json:"grossProceeds"`
	TotalCosts      decimal.Decimal   `json:"totalCosts"`
	NetProceeds     decimal.Decimal   `json:"netProceeds"`
	LiquidationDate string            `json:"liquidationDate"`
}

// MonthlyPaymentComparison compares the old and new monthly obligations.
type MonthlyPaymentComparison struct {
	OldMonthlyPayment    decimal.Decimal `json:"oldMonthlyPayment"`
	NewMonthlyPayment    decimal.Decimal `json:"newMonthlyPayment"`
	MonthlyChange        decimal.Decimal `json:"monthlyChange"`
	MonthlyChangePercent decimal.Decimal `json:"monthlyChangePercent"`
}

// InterestCostComparison compares lifetime interest of the old and new loans.
type InterestCostComparison struct {
	TotalInterestOldLoan decimal.Decimal `json:"totalInterestOldLoan"`
	TotalInterestNewLoan decimal.Decimal `json:"totalInterestNewLoan"`
	InterestCostChange   decimal.Decimal `json:"interestCostChange"`
	InterestSaved        decimal.Decimal `json:"interestSaved"`
}

// LoanTermsComparison lists the terms of both loans side by side.
type LoanTermsComparison struct {
	HasOldLoan        bool            `json:"hasOldLoan"`
	HasNewLoan        bool            `json:"hasNewLoan"`
	OldLoanTermMonths int             `json:"oldLoanTermMonths"`
	NewLoanTermMonths int             `json:"newLoanTermMonths"`
	OldInterestRate   decimal.Decimal `json:"oldInterestRate"`
	NewInterestRate   decimal.Decimal `json:"newInterestRate"`
}

// ReplacementImpact is the cash and financing effect of buying the replacement asset.
type ReplacementImpact struct {
	ReplacementAssetPrice      decimal.Decimal          `json:"replacementAssetPrice"`
	NetProceedsFromLiquidation decimal.Decimal          `json:"netProceedsFromLiquidation"`
	DownPaymentRequired        decimal.Decimal          `json:"downPaymentRequired"`
	CashRequired               decimal.Decimal          `json:"cashRequired"`
	CashSurplus                decimal.Decimal          `json:"cashSurplus"`
	MonthlyPaymentComparison   MonthlyPaymentComparison `json:"monthlyPaymentComparison"`
	InterestCostComparison     InterestCostComparison   `json:"interestCostComparison"`
	LoanTermsComparison        LoanTermsComparison      `json:"loanTermsComparison"`
}

// RecommendationClass is the coarse verdict of the loan-impact heuristic.
type RecommendationClass string

const (
	Favorable           RecommendationClass = "Favorable"
	ModeratelyFavorable RecommendationClass = "Moderately Favorable"
	Neutral             RecommendationClass = "Neutral"
	Unfavorable         RecommendationClass = "Unfavorable"
)

// Recommendation is the scored verdict with the factors that produced it.
type Recommendation struct {
	Class          RecommendationClass `json:"class"`
	Recommendation string              `json:"recommendation"`
	PositiveScore  int                 `json:"positiveScore"`
	NegativeScore  int                 `json:"negativeScore"`
	KeyFactors     []string            `json:"keyFactors"`
}

// ScenarioImpactSummary is the headline numbers of a liquidate-and-replace analysis.
type ScenarioImpactSummary struct {
	LiquidationDate           string          `json:"liquidationDate"`
	NetCashImpact             decimal.Decimal `json:"netCashImpact"`
	NetCashSurplus            decimal.Decimal `json:"netCashSurplus"`
	MonthlyObligationChange   decimal.Decimal `json:"monthlyObligationChange"`
	AnnualObligationChange    decimal.Decimal `json:"annualObligationChange"`
	InterestSavingsFromPayoff decimal.Decimal `json:"interestSavingsFromPayoff"`
	TotalInterestCostChange   decimal.Decimal `json:"totalInterestCostChange"`
}

// ScenarioImpact combines liquidation, replacement and the recommendation.
type ScenarioImpact struct {
	Summary            ScenarioImpactSummary `json:"scenarioSummary"`
	LiquidationDetails LiquidationImpact     `json:"liquidationDetails"`
	ReplacementDetails ReplacementImpact     `json:"replacementDetails"`
	Recommendation     Recommendation        `json:"recommendation"`
}

// LoanImpactRequest is the file/CLI input for a loan-impact analysis.
type LoanImpactRequest struct {
	AssetSalePrice        decimal.Decimal `yaml:"assetSalePrice" json:"assetSalePrice"`
	LiquidationDate       string          `yaml:"liquidationDate" json:"liquidationDate"`
	TransactionFees       decimal.Decimal `yaml:"transactionFees" json:"transactionFees"`
	PrepaymentPenaltyRate decimal.Decimal `yaml:"prepaymentPenaltyRate" json:"prepaymentPenaltyRate"`
	ExistingLoan          *Loan           `yaml:"existingLoan,omitempty" json:"existingLoan,omitempty"`
	ReplacementAssetPrice decimal.Decimal `yaml:"replacementAssetPrice" json:"replacementAssetPrice"`
	ReplacementLoan       *Loan           `yaml:"replacementLoan,omitempty" json:"replacementLoan,omitempty"`
}
