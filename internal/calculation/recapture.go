package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Accumulated depreciation estimation methods.
const (
	EstimateMACRSGDS     = "MACRS_GDS"
	EstimateStraightLine = "STRAIGHT_LINE"
)

var daysPerYear = decimal.NewFromFloat(365.25)

// SaleInput describes one asset sale.
type SaleInput struct {
	AssetName               string
	OriginalCost            decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	SalePrice               decimal.Decimal
	TransactionFees         decimal.Decimal
	OrdinaryRate            decimal.Decimal // fraction, e.g. 0.24
	CapitalGainsRate        decimal.Decimal // fraction, e.g. 0.15
	SaleDate                *time.Time
}

// BasisRecaptureCalculator splits the gain on a sale into §1245 recapture and §1231 gain.
type BasisRecaptureCalculator struct {
	Now func() time.Time
}

// NewBasisRecaptureCalculator returns a calculator on the wall clock.
func NewBasisRecaptureCalculator() *BasisRecaptureCalculator {
	return &BasisRecaptureCalculator{Now: time.Now}
}

// CalculateSaleTaxImpact computes adjusted basis, gain character, tax and net proceeds.
// Recapture is the gain up to the depreciation taken; anything above is §1231 gain.
func (c *BasisRecaptureCalculator) CalculateSaleTaxImpact(in SaleInput) (domain.SaleCalculation, error) {
	if err := validateSale(in); err != nil {
		return domain.SaleCalculation{}, err
	}

	adjusted := in.OriginalCost.Sub(in.AccumulatedDepreciation)
	gain := in.SalePrice.Sub(adjusted)
	recapture := minDecimal(maxDecimal(decimal.Zero, gain), in.AccumulatedDepreciation)
	section1231 := maxDecimal(decimal.Zero, gain.Sub(recapture))
	loss := maxDecimal(decimal.Zero, gain.Neg())

	taxOnRecapture := recapture.Mul(in.OrdinaryRate)
	taxOnGain := section1231.Mul(in.CapitalGainsRate)
	beforeTax := in.SalePrice.Sub(in.TransactionFees)

	result := domain.SaleCalculation{
		AssetName:               in.AssetName,
		SalePrice:               in.SalePrice,
		OriginalCost:            in.OriginalCost,
		AccumulatedDepreciation: in.AccumulatedDepreciation,
		AdjustedBasis:           adjusted,
		TotalGain:               gain,
		Section1245Recapture:    recapture,
		Section1231Gain:         section1231,
		LossOnSale:              loss,
		GrossProceeds:           in.SalePrice,
		TransactionFees:         in.TransactionFees,
		NetProceedsBeforeTax:    beforeTax,
		TaxOnRecapture:          taxOnRecapture,
		TaxOnCapitalGain:        taxOnGain,
		NetProceedsAfterTax:     beforeTax.Sub(taxOnRecapture).Sub(taxOnGain),
	}
	if in.SaleDate != nil {
		d := domain.NewDate(*in.SaleDate)
		result.SaleDate = &d
	}

	result.Notes = append(result.Notes,
		fmt.Sprintf("Adjusted basis: $%s ($%s - $%s)",
			formatCurrency(adjusted, 2), formatCurrency(in.OriginalCost, 2), formatCurrency(in.AccumulatedDepreciation, 2)),
		fmt.Sprintf("Total gain: $%s", formatCurrency(gain, 2)),
	)
	if recapture.IsPositive() {
		result.Notes = append(result.Notes, fmt.Sprintf("§1245 recapture (ordinary income): $%s taxed at %s%%",
			formatCurrency(recapture, 2), in.OrdinaryRate.Mul(hundred).StringFixed(0)))
	}
	if section1231.IsPositive() {
		result.Notes = append(result.Notes, fmt.Sprintf("§1231 gain (capital gain): $%s taxed at %s%%",
			formatCurrency(section1231, 2), in.CapitalGainsRate.Mul(hundred).StringFixed(0)))
	}
	if loss.IsPositive() {
		result.Notes = append(result.Notes, fmt.Sprintf("Loss on sale: $%s", formatCurrency(loss, 2)))
	}
	return result, nil
}

// AdjustedBasis is cost less depreciation taken, never below zero.
func AdjustedBasis(originalCost, depreciationTaken decimal.Decimal) decimal.Decimal {
	return maxDecimal(decimal.Zero, originalCost.Sub(depreciationTaken))
}

// EstimateAccumulatedDepreciation approximates depreciation taken since purchaseDate when no
// ledger exists. MACRS_GDS counts only full elapsed years of the 6-year table; STRAIGHT_LINE
// is linear in elapsed 365.25-day years. Both are capped at the original cost.
func (c *BasisRecaptureCalculator) EstimateAccumulatedDepreciation(originalCost decimal.Decimal, purchaseDate time.Time, usefulLife int, method string) (decimal.Decimal, error) {
	if originalCost.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: original cost must not be negative, got %s", ErrInvalidParameter, originalCost)
	}
	if err := validateLife(usefulLife); err != nil {
		return decimal.Zero, err
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	years := decimal.NewFromInt(int64(daysBetween(purchaseDate, now))).Div(daysPerYear)
	if years.IsNegative() {
		years = decimal.Zero
	}

	switch method {
	case EstimateMACRSGDS:
		full := int(years.IntPart())
		if full > len(macrsSixYearRates) {
			full = len(macrsSixYearRates)
		}
		pct := decimal.Zero
		for _, rate := range macrsSixYearRates[:full] {
			pct = pct.Add(rate)
		}
		return minDecimal(originalCost, percentOf(originalCost, pct)), nil
	case EstimateStraightLine:
		perYear := originalCost.Div(decimal.NewFromInt(int64(usefulLife)))
		return minDecimal(originalCost, perYear.Mul(years)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: cannot estimate depreciation for method %q", ErrInvalidParameter, method)
	}
}

func validateSale(in SaleInput) error {
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"original cost", in.OriginalCost},
		{"accumulated depreciation", in.AccumulatedDepreciation},
		{"sale price", in.SalePrice},
		{"transaction fees", in.TransactionFees},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidParameter, a.name, a.value)
		}
	}
	if err := validateFraction("ordinary tax rate", in.OrdinaryRate); err != nil {
		return err
	}
	return validateFraction("capital gains rate", in.CapitalGainsRate)
}

func validateFraction(name string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %s", ErrInvalidParameter, name, v)
	}
	return nil
}
