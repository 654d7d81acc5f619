package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScenarioFromFile(t *testing.T) {
	parser := NewInputParser()
	req, err := parser.LoadScenarioFromFile("testdata/scenario.yaml")
	require.NoError(t, err)

	assert.Equal(t, 42, req.UserID)
	assert.True(t, req.MarginalTaxRate.Equal(decimal.NewFromFloat(0.24)), "Expected 0.24, got %s", req.MarginalTaxRate)
	require.NotNil(t, req.CapitalGainsRate)
	assert.True(t, req.CapitalGainsRate.Equal(decimal.NewFromFloat(0.15)))

	require.Len(t, req.AssetsToSell, 1)
	sale := req.AssetsToSell[0]
	assert.Equal(t, "Excavator", sale.AssetName)
	assert.True(t, sale.AccumulatedDepreciation.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, "2025-06", sale.CloseMonth)

	require.Len(t, req.ReplacementAssets, 1)
	assert.Equal(t, domain.ElectionSection179, req.ReplacementAssets[0].Method)
	require.NotNil(t, req.ReplacementAssets[0].UsefulLife)
	assert.Equal(t, 5, *req.ReplacementAssets[0].UsefulLife)
	assert.Nil(t, req.OverrideBonusPercent)
}

func TestLoadLoanImpactFromJSON(t *testing.T) {
	parser := NewInputParser()
	req, err := parser.LoadLoanImpactFromFile("testdata/loan_impact.json")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", req.LiquidationDate)
	require.NotNil(t, req.ExistingLoan)
	assert.Equal(t, "First Bank", req.ExistingLoan.LenderName)
	assert.True(t, req.ExistingLoan.AnnualRatePercent.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, req.ReplacementLoan)
	assert.True(t, req.ReplacementLoan.Principal.Equal(decimal.NewFromInt(60000)))
	assert.True(t, req.PrepaymentPenaltyRate.Equal(decimal.NewFromInt(2)))
}

func TestLoadAssetsAndLoans(t *testing.T) {
	parser := NewInputParser()

	assets, err := parser.LoadAssets("testdata/assets.yaml")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, domain.MethodStraightLine, assets[0].DepreciationMethod)
	require.NotNil(t, assets[0].UsefulLife)
	assert.Equal(t, 5, *assets[0].UsefulLife)
	assert.Equal(t, "320", assets[0].Model)
	require.NotNil(t, assets[1].TotalUnits)
	assert.Equal(t, 100000, *assets[1].TotalUnits)
	assert.Nil(t, assets[1].UsefulLife)

	loans, err := parser.LoadLoans("testdata/loans.yaml")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "L-1", loans[0].ID)
	assert.Equal(t, 60, loans[0].TermMonths())
}

func TestLoadTaxPolicies(t *testing.T) {
	parser := NewInputParser()
	policies, err := parser.LoadTaxPolicies("testdata/tax_policies.yaml")
	require.NoError(t, err)
	require.Len(t, policies, 1)

	p := policies[0]
	assert.Equal(t, 2026, p.EffectiveYear)
	assert.Equal(t, 20, p.BonusDepreciationPercent)
	assert.Len(t, p.MACRS5YearSchedule, 6)
	require.Len(t, p.FederalBrackets, 3)
	assert.False(t, p.FederalBrackets[0].Unbounded())
	assert.True(t, p.FederalBrackets[2].Unbounded())
	assert.True(t, p.FederalBrackets[1].UpperLimit.Equal(decimal.NewFromInt(48000)))

	_, err = parser.LoadTaxPolicies(writeTemp(t, "empty.yaml", "policies: []\n"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	parser := NewInputParser()

	_, err := parser.LoadScenarioFromFile("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = parser.LoadScenarioFromFile(writeTemp(t, "bad.yaml", "assetsToSell: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")

	_, err = parser.LoadScenarioFromFile(writeTemp(t, "bad_rate.yaml", `
marginalTaxRate: 24
replacementAssets:
  - name: Truck
    cost: 1000
    method: BONUS
    businessUsePercent: 100
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario validation failed")
	assert.Contains(t, err.Error(), "marginalTaxRate")

	_, err = parser.LoadAssets(writeTemp(t, "assets.yaml", `
assets:
  - name: Lathe
    bookValue: 1000
    salvageValue: 2000
    depreciationMethod: StraightLine
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Lathe")
}

func TestValidateScenarioRequest(t *testing.T) {
	parser := NewInputParser()
	valid := func() domain.ScenarioRequest {
		return domain.ScenarioRequest{
			MarginalTaxRate: decimal.NewFromFloat(0.24),
			ReplacementAssets: []domain.ReplacementAsset{
				{Name: "Truck", Cost: decimal.NewFromInt(50000), Method: domain.ElectionBonus, BusinessUsePercent: decimal.NewFromInt(100)},
			},
		}
	}
	negative := decimal.NewFromInt(-1)
	bonus := 120
	zero := 0

	tests := []struct {
		name    string
		mutate  func(r *domain.ScenarioRequest)
		wantErr bool
	}{
		{"valid", func(r *domain.ScenarioRequest) {}, false},
		{"unknown method is left to the engine", func(r *domain.ScenarioRequest) { r.ReplacementAssets[0].Method = "WHATEVER" }, false},
		{"empty", func(r *domain.ScenarioRequest) { r.ReplacementAssets = nil }, true},
		{"rate above one", func(r *domain.ScenarioRequest) { r.MarginalTaxRate = decimal.NewFromInt(2) }, true},
		{"negative capital gains", func(r *domain.ScenarioRequest) { r.CapitalGainsRate = &negative }, true},
		{"bonus override", func(r *domain.ScenarioRequest) { r.OverrideBonusPercent = &bonus }, true},
		{"negative 179 override", func(r *domain.ScenarioRequest) { r.OverrideSection179Limit = &negative }, true},
		{"business use", func(r *domain.ScenarioRequest) { r.ReplacementAssets[0].BusinessUsePercent = decimal.NewFromInt(101) }, true},
		{"missing name", func(r *domain.ScenarioRequest) { r.ReplacementAssets[0].Name = "" }, true},
		{"zero useful life", func(r *domain.ScenarioRequest) { r.ReplacementAssets[0].UsefulLife = &zero }, true},
		{"negative sale price", func(r *domain.ScenarioRequest) {
			r.AssetsToSell = []domain.AssetSale{{AssetName: "Old", SalePrice: negative}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := parser.ValidateScenarioRequest(&req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLoan(t *testing.T) {
	parser := NewInputParser()
	base := domain.Loan{
		Principal:         decimal.NewFromInt(1000),
		AnnualRatePercent: decimal.NewFromInt(5),
		TermYears:         1,
		StartDate:         "2025-01-01",
	}
	assert.NoError(t, parser.ValidateLoan(&base))

	noTerm := base
	noTerm.TermYears = 0
	assert.Error(t, parser.ValidateLoan(&noTerm))

	fractional := base
	fractional.AnnualRatePercent = decimal.NewFromInt(500)
	assert.Error(t, parser.ValidateLoan(&fractional))

	noStart := base
	noStart.StartDate = ""
	assert.Error(t, parser.ValidateLoan(&noStart))

	req := domain.LoanImpactRequest{LiquidationDate: "2025-06-01", ExistingLoan: &noTerm}
	assert.Error(t, parser.ValidateLoanImpactRequest(&req))
	req.ExistingLoan = &base
	assert.NoError(t, parser.ValidateLoanImpactRequest(&req))
	req.LiquidationDate = ""
	assert.Error(t, parser.ValidateLoanImpactRequest(&req))
}

func TestLoadMarketQuotes(t *testing.T) {
	parser := NewInputParser()
	quotes, err := parser.LoadMarketQuotes("testdata/quotes.yaml")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Caterpillar", quotes[0].Manufacturer)
	assert.True(t, quotes[0].FairMarketValue.Equal(decimal.NewFromInt(142000)))
	assert.True(t, quotes[0].ForcedLiquidationValue.Equal(decimal.NewFromInt(96000)))

	_, err = parser.LoadMarketQuotes(writeTemp(t, "quotes.yaml", "quotes:\n  - model: X\n"))
	assert.Error(t, err)
}
