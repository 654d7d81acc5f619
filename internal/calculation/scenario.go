package calculation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultReplacementLife = 5

var defaultCapitalGainsRate = decimal.NewFromFloat(0.15)

var knownElections = map[string]bool{
	domain.ElectionBonus:      true,
	domain.ElectionSection179: true,
	domain.ElectionMACRSGDS:   true,
	domain.ElectionMACRSADS:   true,
}

// section179Budget is the §179 allowance shared by a scenario's replacements.
// Replacements draw from it in request order.
type section179Budget struct {
	limit     decimal.Decimal
	remaining decimal.Decimal
}

func newSection179Budget(limit decimal.Decimal) section179Budget {
	return section179Budget{limit: limit, remaining: limit}
}

func (b section179Budget) draw(amount decimal.Decimal) section179Budget {
	b.remaining = b.remaining.Sub(amount)
	return b
}

func (b section179Budget) used() decimal.Decimal {
	return b.limit.Sub(b.remaining)
}

// ScenarioEngine combines sale recapture and replacement depreciation into a
// net cash flow for one liquidate-and-replace request.
type ScenarioEngine struct {
	Policies    *TaxPolicyProvider
	Recapture   *BasisRecaptureCalculator
	Accelerated *AcceleratedDepreciationCalculator
	Dates       DateParser
	Now         func() time.Time
	Logger      Logger
}

// NewScenarioEngine wires the calculators over policies with lenient dates on the wall clock.
func NewScenarioEngine(policies *TaxPolicyProvider) *ScenarioEngine {
	return &ScenarioEngine{
		Policies:    policies,
		Recapture:   NewBasisRecaptureCalculator(),
		Accelerated: NewAcceleratedDepreciationCalculator(policies),
		Dates:       NewDateParser(),
		Now:         time.Now,
		Logger:      NopLogger{},
	}
}

// SetLogger sets the logger for the engine and its date parser. A nil logger discards output.
func (se *ScenarioEngine) SetLogger(logger Logger) {
	se.Logger = loggerOrNop(logger)
	se.Dates.Logger = se.Logger
}

// SetClock replaces the clock used for the tax year and for lenient date fallback.
func (se *ScenarioEngine) SetClock(now func() time.Time) {
	se.Now = now
	se.Dates.Now = now
	se.Recapture.Now = now
}

func (se *ScenarioEngine) now() time.Time {
	if se.Now == nil {
		return time.Now()
	}
	return se.Now()
}

// CalculateScenario runs every sale, then every replacement in request order, and
// aggregates the results. Unknown replacement methods become warnings.
func (se *ScenarioEngine) CalculateScenario(req domain.ScenarioRequest) (*domain.ScenarioResults, error) {
	logger := loggerOrNop(se.Logger)
	if err := validateFraction("marginal tax rate", req.MarginalTaxRate); err != nil {
		return nil, err
	}
	capitalGainsRate := defaultCapitalGainsRate
	if req.CapitalGainsRate != nil {
		capitalGainsRate = *req.CapitalGainsRate
	}

	now := se.now()
	results := &domain.ScenarioResults{
		ID:                 uuid.NewString(),
		CalculatedAt:       now,
		TaxYear:            now.Year(),
		SaleDetails:        []domain.SaleCalculation{},
		ReplacementDetails: []domain.DepreciationCalculation{},
		Warnings:           []string{},
	}

	for _, sale := range req.AssetsToSell {
		saleDate, err := se.Dates.ParseMonth(sale.CloseMonth)
		if err != nil {
			return nil, fmt.Errorf("asset %q close month: %w", sale.AssetName, err)
		}
		calc, err := se.Recapture.CalculateSaleTaxImpact(SaleInput{
			AssetName:               sale.AssetName,
			OriginalCost:            sale.OriginalCost,
			AccumulatedDepreciation: sale.AccumulatedDepreciation,
			SalePrice:               sale.SalePrice,
			TransactionFees:         sale.TransactionFees,
			OrdinaryRate:            req.MarginalTaxRate,
			CapitalGainsRate:        capitalGainsRate,
			SaleDate:                &saleDate,
		})
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", sale.AssetName, err)
		}

		results.SaleDetails = append(results.SaleDetails, calc)
		results.TotalSaleProceeds = results.TotalSaleProceeds.Add(calc.GrossProceeds)
		results.TotalTransactionFees = results.TotalTransactionFees.Add(calc.TransactionFees)
		results.TotalSection1245Recapture = results.TotalSection1245Recapture.Add(calc.Section1245Recapture)
		results.TotalSection1231Gain = results.TotalSection1231Gain.Add(calc.Section1231Gain)
		results.TotalTaxOnSales = results.TotalTaxOnSales.Add(calc.TotalTax())
	}
	results.NetCashFromLiquidation = results.TotalSaleProceeds.Sub(results.TotalTransactionFees).Sub(results.TotalTaxOnSales)

	for _, r := range req.ReplacementAssets {
		results.TotalReplacementCost = results.TotalReplacementCost.Add(r.Cost)
	}

	var budget section179Budget
	if req.OverrideSection179Limit != nil {
		budget = newSection179Budget(*req.OverrideSection179Limit)
	} else {
		budget = newSection179Budget(se.Policies.Section179LimitWithPhaseout(results.TotalReplacementCost, results.TaxYear))
	}
	logger.Debugf("scenario %s: tax year %d, §179 budget %s", results.ID, results.TaxYear, budget.limit.StringFixed(0))

	for _, r := range req.ReplacementAssets {
		var (
			calc domain.DepreciationCalculation
			err  error
		)
		calc, budget, err = se.allocateReplacement(r, budget, req)
		if errors.Is(err, ErrUnknownMethod) {
			logger.Warnf("skipping replacement %q: %v", r.Name, err)
			results.Warnings = append(results.Warnings, fmt.Sprintf("Unknown method '%s' for %s", r.Method, r.Name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("replacement %q: %w", r.Name, err)
		}

		results.ReplacementDetails = append(results.ReplacementDetails, calc)
		results.TotalBonusDepreciation = results.TotalBonusDepreciation.Add(calc.BonusDepreciation)
		results.TotalSection179 = results.TotalSection179.Add(calc.Section179Deduction)
		results.TotalMACRSFirstYear = results.TotalMACRSFirstYear.Add(calc.MACRSFirstYear)
	}

	results.TotalFirstYearDeductions = results.TotalBonusDepreciation.Add(results.TotalSection179).Add(results.TotalMACRSFirstYear)
	results.TaxSavingsFromDeductions = results.TotalFirstYearDeductions.Mul(req.MarginalTaxRate)
	results.CashRequiredForReplacements = results.TotalReplacementCost
	results.NetCashFlow = results.NetCashFromLiquidation.Add(results.TaxSavingsFromDeductions).Sub(results.CashRequiredForReplacements)

	if budget.remaining.LessThan(budget.limit) {
		results.Warnings = append(results.Warnings, fmt.Sprintf("§179 limit reached. Used $%s of $%s available.",
			formatCurrency(budget.used(), 0), formatCurrency(budget.limit, 0)))
	}
	if results.NetCashFlow.IsNegative() {
		results.Warnings = append(results.Warnings, fmt.Sprintf("Scenario requires additional cash: $%s",
			formatCurrency(results.NetCashFlow.Abs(), 2)))
	}

	logger.Infof("scenario %s: %d sales, %d replacements, net cash flow %s",
		results.ID, len(results.SaleDetails), len(results.ReplacementDetails), results.NetCashFlow.StringFixed(2))
	return results, nil
}

// allocateReplacement computes one replacement's deduction and returns the budget left for
// the next one. Only SECTION_179 draws on the budget.
func (se *ScenarioEngine) allocateReplacement(r domain.ReplacementAsset, budget section179Budget, req domain.ScenarioRequest) (domain.DepreciationCalculation, section179Budget, error) {
	if !knownElections[r.Method] {
		return domain.DepreciationCalculation{}, budget, fmt.Errorf("%w: %q", ErrUnknownMethod, r.Method)
	}
	inService, err := se.Dates.ParseMonth(r.InServiceMonth)
	if err != nil {
		return domain.DepreciationCalculation{}, budget, err
	}
	life := defaultReplacementLife
	if r.UsefulLife != nil {
		life = *r.UsefulLife
	}
	purchase := AssetPurchase{
		Name:               r.Name,
		Cost:               r.Cost,
		BusinessUsePercent: r.BusinessUsePercent,
		InServiceDate:      inService,
		UsefulLife:         life,
	}

	var calc domain.DepreciationCalculation
	switch r.Method {
	case domain.ElectionBonus:
		calc, err = se.Accelerated.Bonus(purchase, req.OverrideBonusPercent)
	case domain.ElectionSection179:
		calc, err = se.Accelerated.Section179(purchase, maxDecimal(decimal.Zero, budget.remaining), req.BusinessIncomeLimit)
		if err == nil {
			budget = budget.draw(calc.Section179Deduction)
		}
	case domain.ElectionMACRSGDS:
		calc, err = se.Accelerated.MACRSGDS(purchase)
	case domain.ElectionMACRSADS:
		calc, err = se.Accelerated.MACRSADS(purchase)
	}
	return calc, budget, err
}
