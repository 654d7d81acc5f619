package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxPolicyProvider_PolicyForYear(t *testing.T) {
	p := DefaultTaxPolicyProvider()

	assert.Equal(t, []int{2024, 2025}, p.Years())

	policy2024 := p.PolicyForYear(2024)
	assert.True(t, policy2024.Section179Limit.Equal(dec("1220000")), "2024 §179 limit")
	assert.Equal(t, 60, policy2024.BonusDepreciationPercent)

	policy2025 := p.PolicyForYear(2025)
	assert.True(t, policy2025.Section179PhaseoutThreshold.Equal(dec("3130000")), "2025 phaseout threshold")
	assert.Equal(t, 40, policy2025.BonusDepreciationPercent)

	assert.Equal(t, 2025, p.PolicyForYear(2031).EffectiveYear, "Unknown future year falls back to latest")
	assert.Equal(t, 2025, p.PolicyForYear(1999).EffectiveYear, "Unknown past year falls back to latest")
	assert.Equal(t, 2024, p.PolicyForDate(time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)).EffectiveYear)
}

func TestTaxPolicyProvider_MarginalRate(t *testing.T) {
	p := DefaultTaxPolicyProvider()

	tests := []struct {
		name     string
		income   string
		year     int
		expected string
	}{
		{"zero income", "0", 2025, "0.10"},
		{"exactly on first limit", "11925", 2025, "0.10"},
		{"just above first limit", "11926", 2025, "0.12"},
		{"middle bracket", "50000", 2025, "0.22"},
		{"2024 table differs", "48000", 2024, "0.22"},
		{"top bracket", "10000000", 2024, "0.37"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := p.MarginalRate(dec(tt.income), tt.year)
			assert.True(t, rate.Equal(dec(tt.expected)), "Expected %s, got %s", tt.expected, rate)
		})
	}
}

func TestTaxPolicyProvider_Section179LimitWithPhaseout(t *testing.T) {
	p := DefaultTaxPolicyProvider()
	policy := p.PolicyForYear(2025)

	tests := []struct {
		name     string
		total    decimal.Decimal
		expected decimal.Decimal
	}{
		{"below threshold", dec("500000"), policy.Section179Limit},
		{"at threshold", policy.Section179PhaseoutThreshold, policy.Section179Limit},
		{"partial phaseout truncates", policy.Section179PhaseoutThreshold.Add(dec("1000.5")), dec("1248999")},
		{"threshold plus limit", policy.Section179PhaseoutThreshold.Add(policy.Section179Limit), decimal.Zero},
		{"far above threshold", dec("10000000"), decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := p.Section179LimitWithPhaseout(tt.total, 2025)
			assert.True(t, limit.Equal(tt.expected), "Expected %s, got %s", tt.expected, limit)
		})
	}
}

func TestTaxPolicyProvider_MACRSFirstYearRate(t *testing.T) {
	p := DefaultTaxPolicyProvider()

	assert.True(t, p.MACRSFirstYearRate(5, 2025).Equal(dec("0.2")))
	assert.True(t, p.MACRSFirstYearRate(7, 2025).Equal(dec("0.1429")))
	assert.True(t, p.MACRSFirstYearRate(3, 2025).Equal(dec("0.2")), "Other lives use the 5-year table")
}

func TestNewTaxPolicyProvider_Validation(t *testing.T) {
	valid := DefaultTaxPolicies()[1]

	t.Run("accepts loaded policies", func(t *testing.T) {
		custom := valid
		custom.EffectiveYear = 2026
		custom.BonusDepreciationPercent = 20
		p, err := NewTaxPolicyProvider(valid, custom)
		require.NoError(t, err)
		assert.Equal(t, []int{2025, 2026}, p.Years())
		assert.Equal(t, 20, p.PolicyForYear(2040).BonusDepreciationPercent)
	})

	t.Run("bonus out of range", func(t *testing.T) {
		bad := valid
		bad.BonusDepreciationPercent = 120
		_, err := NewTaxPolicyProvider(bad)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("non increasing brackets", func(t *testing.T) {
		bad := valid
		bad.FederalBrackets = []domain.TaxBracket{
			{UpperLimit: decPtr("50000"), Rate: dec("0.10")},
			{UpperLimit: decPtr("40000"), Rate: dec("0.20")},
			{Rate: dec("0.30")},
		}
		_, err := NewTaxPolicyProvider(bad)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("bounded top bracket", func(t *testing.T) {
		bad := valid
		bad.FederalBrackets = []domain.TaxBracket{{UpperLimit: decPtr("50000"), Rate: dec("0.10")}}
		_, err := NewTaxPolicyProvider(bad)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("duplicate year", func(t *testing.T) {
		_, err := NewTaxPolicyProvider(valid, valid)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}
