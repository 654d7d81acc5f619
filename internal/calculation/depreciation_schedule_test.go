package calculation

import (
	"testing"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *DepreciationScheduleGenerator {
	return &DepreciationScheduleGenerator{Now: clock}
}

func assertMonotoneAboveFloor(t *testing.T, entries []domain.DepreciationEntry, floor decimal.Decimal) {
	t.Helper()
	for i, e := range entries {
		assert.True(t, e.NewBookValue.GreaterThanOrEqual(floor),
			"entry %d book value %s dropped below %s", i, e.NewBookValue, floor)
		if i > 0 {
			assert.True(t, e.NewBookValue.LessThanOrEqual(entries[i-1].NewBookValue),
				"entry %d book value %s increased from %s", i, e.NewBookValue, entries[i-1].NewBookValue)
			assert.True(t, e.DepreciationDate.After(entries[i-1].DepreciationDate.Time), "dates must increase")
			assert.Equal(t, 1, e.DepreciationDate.Day(), "entries are dated on the first of the month")
		}
	}
}

func assertSameSchedule(t *testing.T, expected, actual []domain.DepreciationEntry) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].DepreciationDate, actual[i].DepreciationDate)
		assert.True(t, expected[i].NewBookValue.Equal(actual[i].NewBookValue),
			"entry %d: expected %s, got %s", i, expected[i].NewBookValue, actual[i].NewBookValue)
	}
}

func TestDepreciationScheduleGenerator_StraightLine(t *testing.T) {
	g := newTestGenerator()

	entries, err := g.StraightLine(dec("12000"), dec("2000"), 5)
	require.NoError(t, err)
	require.Len(t, entries, 60)

	assert.Equal(t, "2024-06-01", entries[0].DepreciationDate.String(), "Schedule starts one year back")
	assert.Equal(t, "2024-07-01", entries[1].DepreciationDate.String())
	assert.True(t, entries[0].NewBookValue.Equal(dec("11833.33")), "got %s", entries[0].NewBookValue)
	assert.True(t, entries[11].NewBookValue.Equal(dec("10000")), "got %s", entries[11].NewBookValue)
	assert.True(t, entries[59].NewBookValue.Equal(dec("2000")), "got %s", entries[59].NewBookValue)
	assertMonotoneAboveFloor(t, entries, dec("2000"))
}

func TestDepreciationScheduleGenerator_DecliningMethods(t *testing.T) {
	g := newTestGenerator()
	salvage := dec("1000")

	declining, err := g.DecliningBalance(dec("10000"), salvage, 5, dec("0.3"))
	require.NoError(t, err)
	require.Len(t, declining, 60)
	assert.True(t, declining[0].NewBookValue.Equal(dec("9750")), "got %s", declining[0].NewBookValue)
	assertMonotoneAboveFloor(t, declining, salvage)

	double, err := g.DoubleDecliningBalance(dec("10000"), salvage, 5)
	require.NoError(t, err)
	require.Len(t, double, 60)
	assert.True(t, double[0].NewBookValue.Equal(dec("9666.67")), "got %s", double[0].NewBookValue)
	assertMonotoneAboveFloor(t, double, salvage)

	viaRate, err := g.DecliningBalance(dec("10000"), salvage, 5, dec("0.4"))
	require.NoError(t, err)
	assertSameSchedule(t, viaRate, double)

	steep, err := g.DecliningBalance(dec("10000"), dec("9000"), 3, dec("1.5"))
	require.NoError(t, err)
	assert.True(t, steep[len(steep)-1].NewBookValue.Equal(dec("9000")), "Floors at salvage")
	assertMonotoneAboveFloor(t, steep, dec("9000"))
}

func TestDepreciationScheduleGenerator_UnitsOfProduction(t *testing.T) {
	g := newTestGenerator()

	t.Run("divisible yearly output", func(t *testing.T) {
		entries, err := g.UnitsOfProduction(dec("13000"), dec("1000"), 1200, 600)
		require.NoError(t, err)
		require.Len(t, entries, 24)
		// 50 units a month at $10 per unit
		assert.True(t, entries[0].NewBookValue.Equal(dec("12500")), "got %s", entries[0].NewBookValue)
		assert.True(t, entries[23].NewBookValue.Equal(dec("1000")), "got %s", entries[23].NewBookValue)
	})

	t.Run("non divisible yearly output fully amortizes", func(t *testing.T) {
		entries, err := g.UnitsOfProduction(dec("10000"), dec("1000"), 1000, 250)
		require.NoError(t, err)
		require.Len(t, entries, 48)
		assert.True(t, entries[47].NewBookValue.Equal(dec("1000")), "got %s", entries[47].NewBookValue)
		assertMonotoneAboveFloor(t, entries, dec("1000"))
	})

	t.Run("fewer than twelve units a year still depreciates", func(t *testing.T) {
		entries, err := g.UnitsOfProduction(dec("1000"), decimal.Zero, 10, 5)
		require.NoError(t, err)
		require.Len(t, entries, 24)
		assert.True(t, entries[0].NewBookValue.LessThan(dec("1000")), "Fractional units are consumed")
		assert.True(t, entries[23].NewBookValue.IsZero(), "got %s", entries[23].NewBookValue)
	})

	t.Run("invalid units", func(t *testing.T) {
		_, err := g.UnitsOfProduction(dec("1000"), decimal.Zero, 0, 5)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = g.UnitsOfProduction(dec("1000"), decimal.Zero, 10, 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestDepreciationScheduleGenerator_MACRSSixYear(t *testing.T) {
	g := newTestGenerator()

	entries, err := g.MACRSSixYear(dec("100000"))
	require.NoError(t, err)
	require.Len(t, entries, 72)
	assert.True(t, entries[11].NewBookValue.Equal(dec("80000")), "got %s", entries[11].NewBookValue)
	assert.True(t, entries[23].NewBookValue.Equal(dec("48000")), "got %s", entries[23].NewBookValue)
	assert.True(t, entries[71].NewBookValue.IsZero(), "got %s", entries[71].NewBookValue)
	assertMonotoneAboveFloor(t, entries, decimal.Zero)

	_, err = g.MACRSSixYear(dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDepreciationScheduleGenerator_InvalidParameters(t *testing.T) {
	g := newTestGenerator()

	tests := []struct {
		name string
		run  func() error
	}{
		{"zero life straight line", func() error { _, err := g.StraightLine(dec("1000"), dec("0"), 0); return err }},
		{"negative life declining", func() error { _, err := g.DecliningBalance(dec("1000"), dec("0"), -1, dec("0.2")); return err }},
		{"zero life double declining", func() error { _, err := g.DoubleDecliningBalance(dec("1000"), dec("0"), 0); return err }},
		{"negative rate", func() error { _, err := g.DecliningBalance(dec("1000"), dec("0"), 5, dec("-0.1")); return err }},
		{"negative cost", func() error { _, err := g.StraightLine(dec("-1000"), dec("0"), 5); return err }},
		{"salvage above cost", func() error { _, err := g.StraightLine(dec("1000"), dec("1500"), 5); return err }},
		{"no parameters", func() error { _, err := g.Generate(dec("1000"), dec("0"), nil); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), ErrInvalidParameter)
		})
	}
}

func TestDepreciationScheduleGenerator_Generate(t *testing.T) {
	g := newTestGenerator()

	viaParams, err := g.Generate(dec("12000"), dec("2000"), domain.StraightLine{UsefulLife: 5})
	require.NoError(t, err)
	direct, err := g.StraightLine(dec("12000"), dec("2000"), 5)
	require.NoError(t, err)
	assertSameSchedule(t, direct, viaParams)

	macrs, err := g.Generate(dec("5000"), dec("0"), domain.MACRSTable{})
	require.NoError(t, err)
	assert.Len(t, macrs, 72)
}

func TestParamsForAsset(t *testing.T) {
	tests := []struct {
		name     string
		asset    domain.Asset
		expected domain.DepreciationParams
		wantErr  bool
	}{
		{
			name:     "straight line",
			asset:    domain.Asset{DepreciationMethod: domain.MethodStraightLine, UsefulLife: intPtr(7), DepreciationRate: decPtr("0.3")},
			expected: domain.StraightLine{UsefulLife: 7},
		},
		{
			name:     "declining balance",
			asset:    domain.Asset{DepreciationMethod: domain.MethodDecliningBalance, UsefulLife: intPtr(5), DepreciationRate: decPtr("0.3")},
			expected: domain.DecliningBalance{UsefulLife: 5, Rate: dec("0.3")},
		},
		{
			name:    "declining balance without rate",
			asset:   domain.Asset{DepreciationMethod: domain.MethodDecliningBalance, UsefulLife: intPtr(5)},
			wantErr: true,
		},
		{
			name:     "double declining",
			asset:    domain.Asset{DepreciationMethod: domain.MethodDoubleDecliningBalance, UsefulLife: intPtr(4)},
			expected: domain.DoubleDecliningBalance{UsefulLife: 4},
		},
		{
			name:     "units of production",
			asset:    domain.Asset{DepreciationMethod: domain.MethodUnitsOfProduction, TotalUnits: intPtr(1000), UnitsPerYear: intPtr(200), UsefulLife: intPtr(3)},
			expected: domain.UnitsOfProduction{TotalUnits: 1000, UnitsPerYear: 200},
		},
		{
			name:    "units of production missing totals",
			asset:   domain.Asset{DepreciationMethod: domain.MethodUnitsOfProduction, UnitsPerYear: intPtr(200)},
			wantErr: true,
		},
		{
			name:     "macrs",
			asset:    domain.Asset{DepreciationMethod: domain.MethodMACRS},
			expected: domain.MACRSTable{},
		},
		{
			name:    "straight line missing life",
			asset:   domain.Asset{DepreciationMethod: domain.MethodStraightLine},
			wantErr: true,
		},
		{
			name:    "unknown method",
			asset:   domain.Asset{DepreciationMethod: "SumOfYearsDigits"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParamsForAsset(tt.asset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}
