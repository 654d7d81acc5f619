package calculation

import (
	"fmt"
	"sort"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxPolicyProvider serves year-indexed federal depreciation rules. It is
// immutable after construction and safe to share between goroutines.
type TaxPolicyProvider struct {
	policies map[int]domain.TaxPolicy
	years    []int
}

// NewTaxPolicyProvider validates and indexes the given policies by effective year.
// With no arguments the built-in 2024 and 2025 policies are used.
func NewTaxPolicyProvider(policies ...domain.TaxPolicy) (*TaxPolicyProvider, error) {
	if len(policies) == 0 {
		policies = DefaultTaxPolicies()
	}

	p := &TaxPolicyProvider{policies: make(map[int]domain.TaxPolicy, len(policies))}
	for _, policy := range policies {
		if err := ValidateTaxPolicy(policy); err != nil {
			return nil, err
		}
		if _, dup := p.policies[policy.EffectiveYear]; dup {
			return nil, fmt.Errorf("%w: duplicate tax policy for %d", ErrInvalidParameter, policy.EffectiveYear)
		}
		p.policies[policy.EffectiveYear] = policy
		p.years = append(p.years, policy.EffectiveYear)
	}
	sort.Ints(p.years)
	return p, nil
}

// DefaultTaxPolicyProvider returns a provider over the built-in policies.
func DefaultTaxPolicyProvider() *TaxPolicyProvider {
	p, err := NewTaxPolicyProvider()
	if err != nil {
		panic(err) // built-in tables are static
	}
	return p
}

// ValidateTaxPolicy checks the structural rules every policy must satisfy.
func ValidateTaxPolicy(policy domain.TaxPolicy) error {
	if policy.EffectiveYear <= 0 {
		return fmt.Errorf("%w: effective year must be positive", ErrInvalidParameter)
	}
	if policy.BonusDepreciationPercent < 0 || policy.BonusDepreciationPercent > 100 {
		return fmt.Errorf("%w: %d bonus depreciation percent %d outside 0-100",
			ErrInvalidParameter, policy.EffectiveYear, policy.BonusDepreciationPercent)
	}
	if policy.Section179Limit.IsNegative() || policy.Section179PhaseoutThreshold.IsNegative() {
		return fmt.Errorf("%w: %d section 179 amounts must not be negative", ErrInvalidParameter, policy.EffectiveYear)
	}
	if len(policy.MACRS5YearSchedule) == 0 || len(policy.MACRS7YearSchedule) == 0 {
		return fmt.Errorf("%w: %d MACRS schedules are required", ErrInvalidParameter, policy.EffectiveYear)
	}
	if len(policy.FederalBrackets) == 0 {
		return fmt.Errorf("%w: %d has no federal brackets", ErrInvalidParameter, policy.EffectiveYear)
	}

	last := len(policy.FederalBrackets) - 1
	var prev *decimal.Decimal
	for i, b := range policy.FederalBrackets {
		if b.Unbounded() {
			if i != last {
				return fmt.Errorf("%w: %d bracket %d is unbounded but not last", ErrInvalidParameter, policy.EffectiveYear, i)
			}
			continue
		}
		if i == last {
			return fmt.Errorf("%w: %d top bracket must be unbounded", ErrInvalidParameter, policy.EffectiveYear)
		}
		if prev != nil && !b.UpperLimit.GreaterThan(*prev) {
			return fmt.Errorf("%w: %d bracket limits must be strictly increasing", ErrInvalidParameter, policy.EffectiveYear)
		}
		prev = b.UpperLimit
	}
	return nil
}

// Years lists the effective years known to the provider in ascending order.
func (p *TaxPolicyProvider) Years() []int {
	out := make([]int, len(p.years))
	copy(out, p.years)
	return out
}

// PolicyForYear returns the policy for year, or the latest known policy when year is absent.
func (p *TaxPolicyProvider) PolicyForYear(year int) domain.TaxPolicy {
	if policy, ok := p.policies[year]; ok {
		return policy
	}
	return p.policies[p.years[len(p.years)-1]]
}

// PolicyForDate returns the policy for the calendar year of t.
func (p *TaxPolicyProvider) PolicyForDate(t time.Time) domain.TaxPolicy {
	return p.PolicyForYear(t.Year())
}

// MarginalRate returns the rate of the first bracket whose upper limit is at least income.
func (p *TaxPolicyProvider) MarginalRate(taxableIncome decimal.Decimal, year int) decimal.Decimal {
	brackets := p.PolicyForYear(year).FederalBrackets
	for _, b := range brackets {
		if b.Unbounded() || taxableIncome.LessThanOrEqual(*b.UpperLimit) {
			return b.Rate
		}
	}
	return brackets[len(brackets)-1].Rate
}

// Section179LimitWithPhaseout reduces the §179 limit dollar for dollar once total
// qualifying purchases exceed the phaseout threshold.
func (p *TaxPolicyProvider) Section179LimitWithPhaseout(totalPurchases decimal.Decimal, year int) decimal.Decimal {
	policy := p.PolicyForYear(year)
	if totalPurchases.LessThanOrEqual(policy.Section179PhaseoutThreshold) {
		return policy.Section179Limit
	}
	excess := totalPurchases.Sub(policy.Section179PhaseoutThreshold)
	return maxDecimal(decimal.Zero, policy.Section179Limit.Sub(excess).Truncate(0))
}

// MACRSFirstYearRate returns the first-year MACRS rate as a fraction. Useful life 7
// uses the 7-year table; anything else uses the 5-year table.
func (p *TaxPolicyProvider) MACRSFirstYearRate(usefulLife, year int) decimal.Decimal {
	policy := p.PolicyForYear(year)
	table := policy.MACRS5YearSchedule
	if usefulLife == 7 {
		table = policy.MACRS7YearSchedule
	}
	return table[0].Div(hundred)
}

// DefaultTaxPolicies returns the built-in 2024 and 2025 single-filer policies.
func DefaultTaxPolicies() []domain.TaxPolicy {
	macrs5 := percents(20, 32, 19.2, 11.52, 11.52, 5.76)
	macrs7 := percents(14.29, 24.49, 17.49, 12.49, 8.93, 8.92, 8.93, 4.46)

	return []domain.TaxPolicy{
		{
			EffectiveYear:               2024,
			Section179Limit:             decimal.NewFromInt(1220000),
			Section179PhaseoutThreshold: decimal.NewFromInt(3050000),
			BonusDepreciationPercent:    60,
			MACRS5YearSchedule:          macrs5,
			MACRS7YearSchedule:          macrs7,
			FederalBrackets: brackets(
				[]int64{11600, 47150, 100525, 191950, 243725, 609350},
				[]float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37},
			),
			PolicySource: "IRS Rev. Proc. 2023-34",
			LastUpdated:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			EffectiveYear:               2025,
			Section179Limit:             decimal.NewFromInt(1250000),
			Section179PhaseoutThreshold: decimal.NewFromInt(3130000),
			BonusDepreciationPercent:    40,
			MACRS5YearSchedule:          macrs5,
			MACRS7YearSchedule:          macrs7,
			FederalBrackets: brackets(
				[]int64{11925, 48475, 103350, 197300, 250525, 626350},
				[]float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37},
			),
			PolicySource: "IRS Rev. Proc. 2024-40 (projected)",
			LastUpdated:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func percents(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

// brackets pairs each limit with a rate; the extra trailing rate becomes the unbounded bracket.
func brackets(limits []int64, rates []float64) []domain.TaxBracket {
	out := make([]domain.TaxBracket, 0, len(rates))
	for i, r := range rates {
		b := domain.TaxBracket{Rate: decimal.NewFromFloat(r)}
		if i < len(limits) {
			limit := decimal.NewFromInt(limits[i])
			b.UpperLimit = &limit
		}
		out = append(out, b)
	}
	return out
}
