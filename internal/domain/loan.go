package domain

import (
	"github.com/shopspring/decimal"
)

// Loan is a fixed-rate, monthly-payment loan against an asset. StartDate and EndDate
// are YYYY-MM-DD strings as stored by the loan repository; an empty EndDate means
// StartDate plus the full term.
type Loan struct {
	ID                string          `yaml:"loanId" json:"loanId"`
	AssetID           string          `yaml:"assetId" json:"assetId"`
	LenderName        string          `yaml:"lenderName" json:"lenderName"`
	Principal         decimal.Decimal `yaml:"loanAmount" json:"loanAmount"`
	AnnualRatePercent decimal.Decimal `yaml:"interestRate" json:"interestRate"`
	TermYears         int             `yaml:"loanTermYears" json:"loanTermYears"`
	MonthlyPayment    decimal.Decimal `yaml:"monthlyPayment" json:"monthlyPayment"`
	StartDate         string          `yaml:"loanStartDate" json:"loanStartDate"`
	EndDate           string          `yaml:"loanEndDate,omitempty" json:"loanEndDate,omitempty"`
	RemainingBalance  decimal.Decimal `yaml:"remainingBalance" json:"remainingBalance"`
}

// TermMonths is the number of scheduled monthly payments.
func (l Loan) TermMonths() int {
	return l.TermYears * 12
}

// AmortizationLine is one scheduled payment, rounded to cents.
type AmortizationLine struct {
	PaymentNumber    int             `json:"paymentNumber"`
	PaymentDate      Date            `json:"paymentDate"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	PrincipalPayment decimal.Decimal `json:"principalPayment"`
	InterestPayment  decimal.Decimal `json:"interestPayment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// BalanceProjection is the per-payment remaining balance persisted alongside a loan.
type BalanceProjection struct {
	PaymentDate    Date            `json:"loanPaymentDate"`
	RemainingValue decimal.Decimal `json:"newRemainingValue"`
}

// PayoffReport describes paying a loan off early on PayoffDate.
type PayoffReport struct {
	PayoffDate         string          `json:"payoffDate"`
	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	PrepaymentPenalty  decimal.Decimal `json:"prepaymentPenalty"`
	TotalPayoffAmount  decimal.Decimal `json:"totalPayoffAmount"`
	TotalInterestPaid  decimal.Decimal `json:"totalInterestPaid"`
	TotalPrincipalPaid decimal.Decimal `json:"totalPrincipalPaid"`
	OriginalLoanAmount decimal.Decimal `json:"originalLoanAmount"`
}
