package calculation

import (
	"fmt"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation texts, keyed by class.
var recommendationText = map[domain.RecommendationClass]string{
	domain.Favorable:           "Favorable - This scenario shows strong financial benefits",
	domain.ModeratelyFavorable: "Moderately Favorable - This scenario has some financial benefits",
	domain.Neutral:             "Neutral - This scenario has balanced pros and cons",
	domain.Unfavorable:         "Unfavorable - This scenario may have negative financial impacts",
}

// LoanImpactCalculator evaluates selling a financed asset and buying its replacement.
type LoanImpactCalculator struct {
	Loans *LoanEngine
}

// NewLoanImpactCalculator wraps a loan engine.
func NewLoanImpactCalculator(loans *LoanEngine) *LoanImpactCalculator {
	return &LoanImpactCalculator{Loans: loans}
}

// CalculateLiquidationImpact nets the sale price against fees and, when a loan exists,
// the amount needed to retire it on liquidationDate.
func (c *LoanImpactCalculator) CalculateLiquidationImpact(salePrice decimal.Decimal, existing *domain.Loan, liquidationDate string, fees, penaltyRate decimal.Decimal) (domain.LiquidationImpact, error) {
	if salePrice.IsNegative() || fees.IsNegative() {
		return domain.LiquidationImpact{}, fmt.Errorf("%w: sale price and fees must not be negative", ErrInvalidParameter)
	}

	var payoff domain.LoanPayoffSummary
	if existing != nil {
		loan := c.Loans.WithDerivedPayment(*existing)
		report, err := c.Loans.CalculateLoanPayoff(loan, liquidationDate, penaltyRate)
		if err != nil {
			return domain.LiquidationImpact{}, err
		}
		full, err := c.Loans.GenerateAmortizationSchedule(loan)
		if err != nil {
			return domain.LiquidationImpact{}, err
		}
		payoff = domain.LoanPayoffSummary{
			HasLoan:            true,
			RemainingBalance:   report.RemainingBalance,
			PrepaymentPenalty:  report.PrepaymentPenalty,
			TotalPayoffAmount:  report.TotalPayoffAmount,
			InterestPaidToDate: report.TotalInterestPaid,
			InterestSavings:    TotalInterest(full).Sub(report.TotalInterestPaid).Round(2),
		}
	}

	totalCosts := fees.Add(payoff.TotalPayoffAmount)
	return domain.LiquidationImpact{
		AssetSalePrice:  salePrice.Round(2),
		TransactionFees: fees.Round(2),
		LoanPayoff:      payoff,
		GrossProceeds:   salePrice.Round(2),
		TotalCosts:      totalCosts.Round(2),
		NetProceeds:     salePrice.Sub(totalCosts).Round(2),
		LiquidationDate: liquidationDate,
	}, nil
}

// CalculateReplacementImpact compares buying the replacement against the liquidated position.
// A positive CashRequired is new money the owner must bring; a negative one is surplus.
func (c *LoanImpactCalculator) CalculateReplacementImpact(liquidation domain.LiquidationImpact, replacementPrice decimal.Decimal, replacementLoan, existingLoan *domain.Loan) (domain.ReplacementImpact, error) {
	if replacementPrice.IsNegative() {
		return domain.ReplacementImpact{}, fmt.Errorf("%w: replacement price must not be negative", ErrInvalidParameter)
	}

	down := replacementPrice
	if replacementLoan != nil {
		down = replacementPrice.Sub(replacementLoan.Principal)
	}
	cashRequired := down.Sub(liquidation.NetProceeds).Round(2)

	oldLoan, err := c.derive(existingLoan)
	if err != nil {
		return domain.ReplacementImpact{}, err
	}
	newLoan, err := c.derive(replacementLoan)
	if err != nil {
		return domain.ReplacementImpact{}, err
	}

	monthly := domain.MonthlyPaymentComparison{
		OldMonthlyPayment: oldLoan.payment,
		NewMonthlyPayment: newLoan.payment,
	}
	monthly.MonthlyChange = monthly.NewMonthlyPayment.Sub(monthly.OldMonthlyPayment).Round(2)
	if monthly.OldMonthlyPayment.IsPositive() {
		monthly.MonthlyChangePercent = monthly.MonthlyChange.Div(monthly.OldMonthlyPayment).Mul(hundred).Round(2)
	}

	interest := domain.InterestCostComparison{
		TotalInterestOldLoan: oldLoan.interest,
		TotalInterestNewLoan: newLoan.interest,
	}
	interest.InterestCostChange = interest.TotalInterestNewLoan.Sub(interest.TotalInterestOldLoan).Round(2)
	if interest.InterestCostChange.IsNegative() {
		interest.InterestSaved = interest.InterestCostChange.Neg()
	}

	terms := domain.LoanTermsComparison{HasOldLoan: existingLoan != nil, HasNewLoan: replacementLoan != nil}
	if existingLoan != nil {
		terms.OldLoanTermMonths = existingLoan.TermMonths()
		terms.OldInterestRate = existingLoan.AnnualRatePercent
	}
	if replacementLoan != nil {
		terms.NewLoanTermMonths = replacementLoan.TermMonths()
		terms.NewInterestRate = replacementLoan.AnnualRatePercent
	}

	impact := domain.ReplacementImpact{
		ReplacementAssetPrice:      replacementPrice.Round(2),
		NetProceedsFromLiquidation: liquidation.NetProceeds,
		DownPaymentRequired:        down.Round(2),
		CashRequired:               cashRequired,
		MonthlyPaymentComparison:   monthly,
		InterestCostComparison:     interest,
		LoanTermsComparison:        terms,
	}
	if cashRequired.IsNegative() {
		impact.CashSurplus = cashRequired.Neg()
	}
	return impact, nil
}

type loanFigures struct {
	payment  decimal.Decimal
	interest decimal.Decimal
}

// derive returns the monthly payment and lifetime interest of loan, or zeros when absent.
func (c *LoanImpactCalculator) derive(loan *domain.Loan) (loanFigures, error) {
	if loan == nil {
		return loanFigures{payment: decimal.Zero, interest: decimal.Zero}, nil
	}
	derived := c.Loans.WithDerivedPayment(*loan)
	schedule, err := c.Loans.GenerateAmortizationSchedule(derived)
	if err != nil {
		return loanFigures{}, err
	}
	return loanFigures{payment: derived.MonthlyPayment, interest: TotalInterest(schedule).Round(2)}, nil
}

// CalculateTotalScenarioImpact runs liquidation and replacement and scores the result.
func (c *LoanImpactCalculator) CalculateTotalScenarioImpact(req domain.LoanImpactRequest) (domain.ScenarioImpact, error) {
	liquidation, err := c.CalculateLiquidationImpact(req.AssetSalePrice, req.ExistingLoan, req.LiquidationDate,
		req.TransactionFees, req.PrepaymentPenaltyRate)
	if err != nil {
		return domain.ScenarioImpact{}, err
	}
	replacement, err := c.CalculateReplacementImpact(liquidation, req.ReplacementAssetPrice, req.ReplacementLoan, req.ExistingLoan)
	if err != nil {
		return domain.ScenarioImpact{}, err
	}

	monthlyChange := replacement.MonthlyPaymentComparison.MonthlyChange
	summary := domain.ScenarioImpactSummary{
		LiquidationDate:           req.LiquidationDate,
		NetCashImpact:             replacement.CashRequired,
		MonthlyObligationChange:   monthlyChange,
		AnnualObligationChange:    monthlyChange.Mul(twelve).Round(2),
		InterestSavingsFromPayoff: liquidation.LoanPayoff.InterestSavings,
		TotalInterestCostChange:   replacement.InterestCostComparison.InterestCostChange,
	}
	if replacement.CashRequired.IsNegative() {
		summary.NetCashSurplus = replacement.CashRequired.Neg()
	}

	return domain.ScenarioImpact{
		Summary:            summary,
		LiquidationDetails: liquidation,
		ReplacementDetails: replacement,
		Recommendation:     Recommend(liquidation, replacement),
	}, nil
}

// Recommend scores four signals and classifies the scenario. Interest cost counts double.
func Recommend(liquidation domain.LiquidationImpact, replacement domain.ReplacementImpact) domain.Recommendation {
	var factors []string
	positive, negative := 0, 0

	if liquidation.NetProceeds.IsPositive() {
		factors = append(factors, "Liquidation generates positive net proceeds")
		positive++
	} else {
		factors = append(factors, "Liquidation results in net loss")
		negative++
	}

	switch change := replacement.MonthlyPaymentComparison.MonthlyChange; {
	case change.IsNegative():
		factors = append(factors, fmt.Sprintf("Monthly payment decreases by $%s", formatPlain(change.Abs())))
		positive++
	case change.IsPositive():
		factors = append(factors, fmt.Sprintf("Monthly payment increases by $%s", formatPlain(change)))
		negative++
	}

	switch change := replacement.InterestCostComparison.InterestCostChange; {
	case change.IsNegative():
		factors = append(factors, fmt.Sprintf("Total interest savings of $%s", formatPlain(change.Abs())))
		positive += 2
	case change.IsPositive():
		factors = append(factors, fmt.Sprintf("Increased interest costs of $%s", formatPlain(change)))
		negative += 2
	}

	if !replacement.CashRequired.IsPositive() {
		factors = append(factors, "No additional cash required (surplus available)")
		positive++
	} else {
		factors = append(factors, fmt.Sprintf("Additional cash required: $%s", formatPlain(replacement.CashRequired)))
		negative++
	}

	class := classify(positive, negative)
	return domain.Recommendation{
		Class:          class,
		Recommendation: recommendationText[class],
		PositiveScore:  positive,
		NegativeScore:  negative,
		KeyFactors:     factors,
	}
}

// classify compares positive against 1.5x negative in integer arithmetic.
func classify(positive, negative int) domain.RecommendationClass {
	switch {
	case positive*2 > negative*3:
		return domain.Favorable
	case positive > negative:
		return domain.ModeratelyFavorable
	case positive == negative:
		return domain.Neutral
	default:
		return domain.Unfavorable
	}
}
