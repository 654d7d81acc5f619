package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// macrsSixYearRates is the half-year convention table for 5-year property, in percent.
var macrsSixYearRates = percents(20, 32, 19.2, 11.52, 11.52, 5.76)

// DepreciationScheduleGenerator produces month-by-month book value schedules.
// Schedules start on the first of the month one year before Now.
type DepreciationScheduleGenerator struct {
	Now func() time.Time
}

// NewDepreciationScheduleGenerator returns a generator on the wall clock.
func NewDepreciationScheduleGenerator() *DepreciationScheduleGenerator {
	return &DepreciationScheduleGenerator{Now: time.Now}
}

func (g *DepreciationScheduleGenerator) anchor() time.Time {
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	return firstOfMonth(now).AddDate(-1, 0, 0)
}

// Generate dispatches on the concrete parameter type.
func (g *DepreciationScheduleGenerator) Generate(cost, salvage decimal.Decimal, params domain.DepreciationParams) ([]domain.DepreciationEntry, error) {
	switch p := params.(type) {
	case domain.StraightLine:
		return g.StraightLine(cost, salvage, p.UsefulLife)
	case domain.DecliningBalance:
		return g.DecliningBalance(cost, salvage, p.UsefulLife, p.Rate)
	case domain.DoubleDecliningBalance:
		return g.DoubleDecliningBalance(cost, salvage, p.UsefulLife)
	case domain.UnitsOfProduction:
		return g.UnitsOfProduction(cost, salvage, p.TotalUnits, p.UnitsPerYear)
	case domain.MACRSTable:
		return g.MACRSSixYear(cost)
	default:
		return nil, fmt.Errorf("%w: no depreciation parameters", ErrInvalidParameter)
	}
}

// StraightLine depreciates (cost - salvage) evenly over usefulLife*12 months.
func (g *DepreciationScheduleGenerator) StraightLine(cost, salvage decimal.Decimal, usefulLife int) ([]domain.DepreciationEntry, error) {
	if err := validateBasis(cost, salvage); err != nil {
		return nil, err
	}
	if err := validateLife(usefulLife); err != nil {
		return nil, err
	}

	months := usefulLife * 12
	monthly := cost.Sub(salvage).Div(decimal.NewFromInt(int64(usefulLife))).Div(twelve)
	start := g.anchor()

	entries := make([]domain.DepreciationEntry, 0, months)
	book := cost
	for m := 0; m < months; m++ {
		book = maxDecimal(book.Sub(monthly), salvage)
		entries = append(entries, entry(start, m, book))
	}
	return entries, nil
}

// DecliningBalance applies rate/12 to the current book value each month.
func (g *DepreciationScheduleGenerator) DecliningBalance(cost, salvage decimal.Decimal, usefulLife int, rate decimal.Decimal) ([]domain.DepreciationEntry, error) {
	if err := validateBasis(cost, salvage); err != nil {
		return nil, err
	}
	if err := validateLife(usefulLife); err != nil {
		return nil, err
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: depreciation rate must not be negative, got %s", ErrInvalidParameter, rate)
	}

	months := usefulLife * 12
	monthlyRate := rate.Div(twelve)
	start := g.anchor()

	entries := make([]domain.DepreciationEntry, 0, months)
	book := cost
	for m := 0; m < months; m++ {
		book = maxDecimal(book.Sub(book.Mul(monthlyRate)), salvage)
		entries = append(entries, entry(start, m, book))
	}
	return entries, nil
}

// DoubleDecliningBalance is DecliningBalance at a rate of 2/usefulLife.
func (g *DepreciationScheduleGenerator) DoubleDecliningBalance(cost, salvage decimal.Decimal, usefulLife int) ([]domain.DepreciationEntry, error) {
	if err := validateLife(usefulLife); err != nil {
		return nil, err
	}
	rate := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(usefulLife)))
	return g.DecliningBalance(cost, salvage, usefulLife, rate)
}

// UnitsOfProduction depreciates (cost - salvage)/totalUnits per unit. Each month consumes
// unitsPerYear/12 units, fractional months included, and the final month consumes whatever
// remains so the schedule always ends at salvage.
func (g *DepreciationScheduleGenerator) UnitsOfProduction(cost, salvage decimal.Decimal, totalUnits, unitsPerYear int) ([]domain.DepreciationEntry, error) {
	if err := validateBasis(cost, salvage); err != nil {
		return nil, err
	}
	if totalUnits <= 0 {
		return nil, fmt.Errorf("%w: total units must be positive, got %d", ErrInvalidParameter, totalUnits)
	}
	if unitsPerYear <= 0 {
		return nil, fmt.Errorf("%w: units per year must be positive, got %d", ErrInvalidParameter, unitsPerYear)
	}

	total := decimal.NewFromInt(int64(totalUnits))
	perUnit := cost.Sub(salvage).Div(total)
	monthlyUnits := decimal.NewFromInt(int64(unitsPerYear)).Div(twelve)
	months := (totalUnits*12 + unitsPerYear - 1) / unitsPerYear
	start := g.anchor()

	entries := make([]domain.DepreciationEntry, 0, months)
	book := cost
	remaining := total
	for m := 0; m < months; m++ {
		units := minDecimal(monthlyUnits, remaining)
		if m == months-1 {
			units = remaining
		}
		remaining = remaining.Sub(units)
		book = maxDecimal(book.Sub(perUnit.Mul(units)), salvage)
		entries = append(entries, entry(start, m, book))
	}
	return entries, nil
}

// MACRSSixYear applies the 5-year property table, pro-rated monthly, over 72 months.
// MACRS has no salvage value so the book value is floored at zero.
func (g *DepreciationScheduleGenerator) MACRSSixYear(cost decimal.Decimal) ([]domain.DepreciationEntry, error) {
	if cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost must not be negative, got %s", ErrInvalidParameter, cost)
	}

	start := g.anchor()
	entries := make([]domain.DepreciationEntry, 0, len(macrsSixYearRates)*12)
	book := cost
	for year, rate := range macrsSixYearRates {
		monthly := cost.Mul(rate).Div(hundred).Div(twelve)
		for month := 0; month < 12; month++ {
			book = maxDecimal(book.Sub(monthly), decimal.Zero)
			entries = append(entries, entry(start, year*12+month, book))
		}
	}
	return entries, nil
}

// ParamsForAsset builds the depreciation parameters an asset record's method requires.
func ParamsForAsset(asset domain.Asset) (domain.DepreciationParams, error) {
	switch asset.DepreciationMethod {
	case domain.MethodStraightLine:
		if asset.UsefulLife == nil {
			return nil, fmt.Errorf("%w: useful life is required for straight-line depreciation", ErrInvalidParameter)
		}
		return domain.StraightLine{UsefulLife: *asset.UsefulLife}, nil
	case domain.MethodDecliningBalance:
		if asset.UsefulLife == nil || asset.DepreciationRate == nil {
			return nil, fmt.Errorf("%w: useful life and depreciation rate are required for declining balance depreciation", ErrInvalidParameter)
		}
		return domain.DecliningBalance{UsefulLife: *asset.UsefulLife, Rate: *asset.DepreciationRate}, nil
	case domain.MethodDoubleDecliningBalance:
		if asset.UsefulLife == nil {
			return nil, fmt.Errorf("%w: useful life is required for double declining balance depreciation", ErrInvalidParameter)
		}
		return domain.DoubleDecliningBalance{UsefulLife: *asset.UsefulLife}, nil
	case domain.MethodUnitsOfProduction:
		if asset.TotalUnits == nil || asset.UnitsPerYear == nil {
			return nil, fmt.Errorf("%w: total expected units and units produced per year are required for units of production depreciation", ErrInvalidParameter)
		}
		return domain.UnitsOfProduction{TotalUnits: *asset.TotalUnits, UnitsPerYear: *asset.UnitsPerYear}, nil
	case domain.MethodMACRS:
		return domain.MACRSTable{}, nil
	default:
		return nil, fmt.Errorf("%w: invalid depreciation method %q", ErrInvalidParameter, asset.DepreciationMethod)
	}
}

func entry(start time.Time, month int, book decimal.Decimal) domain.DepreciationEntry {
	return domain.DepreciationEntry{
		DepreciationDate: domain.NewDate(start.AddDate(0, month, 0)),
		NewBookValue:     book.Round(2),
	}
}

func validateBasis(cost, salvage decimal.Decimal) error {
	if cost.IsNegative() {
		return fmt.Errorf("%w: cost must not be negative, got %s", ErrInvalidParameter, cost)
	}
	if salvage.IsNegative() || salvage.GreaterThan(cost) {
		return fmt.Errorf("%w: salvage value %s must be between 0 and cost %s", ErrInvalidParameter, salvage, cost)
	}
	return nil
}

func validateLife(usefulLife int) error {
	if usefulLife <= 0 {
		return fmt.Errorf("%w: useful life must be positive, got %d", ErrInvalidParameter, usefulLife)
	}
	return nil
}
