package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// AssetPurchase is a replacement asset placed in service.
type AssetPurchase struct {
	Name               string
	Cost               decimal.Decimal
	BusinessUsePercent decimal.Decimal
	InServiceDate      time.Time
	UsefulLife         int
}

// DepreciableBasis is the business-use share of cost.
func (a AssetPurchase) DepreciableBasis() decimal.Decimal {
	return percentOf(a.Cost, a.BusinessUsePercent)
}

func (a AssetPurchase) validate() error {
	if a.Cost.IsNegative() {
		return fmt.Errorf("%w: %s cost must not be negative, got %s", ErrInvalidParameter, a.Name, a.Cost)
	}
	if a.BusinessUsePercent.IsNegative() || a.BusinessUsePercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s business use percent must be between 0 and 100, got %s",
			ErrInvalidParameter, a.Name, a.BusinessUsePercent)
	}
	if a.UsefulLife <= 0 {
		return fmt.Errorf("%w: %s useful life must be positive, got %d", ErrInvalidParameter, a.Name, a.UsefulLife)
	}
	return nil
}

// AcceleratedDepreciationCalculator computes first-year deductions under the
// bonus, §179 and MACRS elections.
type AcceleratedDepreciationCalculator struct {
	Policies *TaxPolicyProvider
}

// NewAcceleratedDepreciationCalculator binds a calculator to a policy provider.
func NewAcceleratedDepreciationCalculator(policies *TaxPolicyProvider) *AcceleratedDepreciationCalculator {
	return &AcceleratedDepreciationCalculator{Policies: policies}
}

func newCalculation(a AssetPurchase, method string) domain.DepreciationCalculation {
	return domain.DepreciationCalculation{
		AssetName:          a.Name,
		Cost:               a.Cost,
		BusinessUsePercent: a.BusinessUsePercent,
		DepreciableBasis:   a.DepreciableBasis(),
		MethodUsed:         method,
		InServiceDate:      domain.NewDate(a.InServiceDate),
	}
}

// Bonus expenses the policy's bonus percentage of basis, or overridePercent when given.
func (c *AcceleratedDepreciationCalculator) Bonus(a AssetPurchase, overridePercent *int) (domain.DepreciationCalculation, error) {
	if err := a.validate(); err != nil {
		return domain.DepreciationCalculation{}, err
	}
	percent := c.Policies.PolicyForDate(a.InServiceDate).BonusDepreciationPercent
	if overridePercent != nil {
		if *overridePercent < 0 || *overridePercent > 100 {
			return domain.DepreciationCalculation{}, fmt.Errorf("%w: bonus percent must be between 0 and 100, got %d",
				ErrInvalidParameter, *overridePercent)
		}
		percent = *overridePercent
	}

	result := newCalculation(a, domain.ElectionBonus)
	result.BonusDepreciation = percentOf(result.DepreciableBasis, decimal.NewFromInt(int64(percent)))
	result.TotalFirstYearDeduction = result.BonusDepreciation
	result.RemainingBasis = result.DepreciableBasis.Sub(result.TotalFirstYearDeduction)
	result.Notes = append(result.Notes,
		fmt.Sprintf("Bonus depreciation: %d%% of $%s", percent, formatCurrency(result.DepreciableBasis, 2)))
	return result, nil
}

// Section179 expenses basis up to the available budget and, when given, the business income limit.
// The caller owns the budget and must deduct the granted amount before the next asset.
func (c *AcceleratedDepreciationCalculator) Section179(a AssetPurchase, available decimal.Decimal, incomeLimit *decimal.Decimal) (domain.DepreciationCalculation, error) {
	if err := a.validate(); err != nil {
		return domain.DepreciationCalculation{}, err
	}
	if available.IsNegative() {
		return domain.DepreciationCalculation{}, fmt.Errorf("%w: available §179 budget must not be negative, got %s",
			ErrInvalidParameter, available)
	}

	result := newCalculation(a, domain.ElectionSection179)
	amount := minDecimal(result.DepreciableBasis, available)
	if incomeLimit != nil {
		amount = minDecimal(amount, maxDecimal(decimal.Zero, *incomeLimit))
	}
	result.Section179Deduction = amount
	result.TotalFirstYearDeduction = amount
	result.RemainingBasis = result.DepreciableBasis.Sub(amount)

	result.Notes = append(result.Notes, fmt.Sprintf("§179 deduction: $%s", formatCurrency(amount, 2)))
	if amount.LessThan(result.DepreciableBasis) {
		result.Notes = append(result.Notes,
			fmt.Sprintf("Limited by available §179 budget: $%s", formatCurrency(available, 2)))
	}
	return result, nil
}

// MACRSGDS applies the first-year rate of the asset's MACRS class.
func (c *AcceleratedDepreciationCalculator) MACRSGDS(a AssetPurchase) (domain.DepreciationCalculation, error) {
	if err := a.validate(); err != nil {
		return domain.DepreciationCalculation{}, err
	}
	rate := c.Policies.MACRSFirstYearRate(a.UsefulLife, a.InServiceDate.Year())

	result := newCalculation(a, domain.ElectionMACRSGDS)
	result.MACRSFirstYear = result.DepreciableBasis.Mul(rate)
	result.TotalFirstYearDeduction = result.MACRSFirstYear
	result.RemainingBasis = result.DepreciableBasis.Sub(result.MACRSFirstYear)
	result.Notes = append(result.Notes,
		fmt.Sprintf("MACRS %d-year GDS: %s%% first year", a.UsefulLife, rate.Mul(hundred).StringFixed(2)))
	return result, nil
}

// MACRSADS is straight-line over the useful life with a half-year first year.
func (c *AcceleratedDepreciationCalculator) MACRSADS(a AssetPurchase) (domain.DepreciationCalculation, error) {
	if err := a.validate(); err != nil {
		return domain.DepreciationCalculation{}, err
	}
	rate := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(a.UsefulLife))).Mul(decimal.NewFromFloat(0.5))

	result := newCalculation(a, domain.ElectionMACRSADS)
	result.MACRSFirstYear = result.DepreciableBasis.Mul(rate)
	result.TotalFirstYearDeduction = result.MACRSFirstYear
	result.RemainingBasis = result.DepreciableBasis.Sub(result.MACRSFirstYear)
	result.Notes = append(result.Notes,
		fmt.Sprintf("MACRS ADS straight-line: %s%% first year", rate.Mul(hundred).StringFixed(2)))
	return result, nil
}

// Optimal computes §179, bonus and MACRS GDS and keeps the largest first-year deduction.
func (c *AcceleratedDepreciationCalculator) Optimal(a AssetPurchase, available decimal.Decimal, incomeLimit *decimal.Decimal) (domain.DepreciationCalculation, error) {
	s179, err := c.Section179(a, available, incomeLimit)
	if err != nil {
		return domain.DepreciationCalculation{}, err
	}
	bonus, err := c.Bonus(a, nil)
	if err != nil {
		return domain.DepreciationCalculation{}, err
	}
	gds, err := c.MACRSGDS(a)
	if err != nil {
		return domain.DepreciationCalculation{}, err
	}

	best := SelectOptimal(s179, bonus, gds)
	best.Notes = append(best.Notes, "Selected optimal depreciation method")
	return best, nil
}

// SelectOptimal returns the candidate with the largest total first-year deduction.
// On a tie the earlier candidate wins.
func SelectOptimal(candidates ...domain.DepreciationCalculation) domain.DepreciationCalculation {
	if len(candidates) == 0 {
		return domain.DepreciationCalculation{}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.TotalFirstYearDeduction.GreaterThan(best.TotalFirstYearDeduction) {
			best = c
		}
	}
	best.Notes = append([]string(nil), best.Notes...)
	return best
}
