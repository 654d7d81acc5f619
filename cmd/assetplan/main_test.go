package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command pinned to a fixed date and an env file that
// leaves Redis unset.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"ASSETPLAN_LOG_LEVEL", "ASSETPLAN_DATE_MODE", "ASSETPLAN_TAX_POLICY_FILE", "ASSETPLAN_REDIS_ADDR", "ASSETPLAN_VALUATION_RPS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--as-of", "2025-06-15", "--env-file", "testdata/test.env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "assetplan", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{"schedule", "amortize", "payoff", "sale", "scenario", "loan-impact", "policy", "validate", "version"}

	registered := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "expected command %q to be registered", name)
	}
}

func TestScenarioCommand(t *testing.T) {
	out, err := run(t, "scenario", "testdata/scenario.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "LIQUIDATION & REPLACEMENT SCENARIO")
	assert.Contains(t, out, "tax year 2025")
	assert.Contains(t, out, "Excavator")
}

func TestScenarioCommandJSON(t *testing.T) {
	out, err := run(t, "scenario", "testdata/scenario.yaml", "--format", "json")
	require.NoError(t, err)

	var results map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.EqualValues(t, 2025, results["taxYear"])
	assert.Len(t, results["saleDetails"], 1)
	assert.Len(t, results["replacementDetails"], 1)
}

func TestScenarioCommandWithPolicyFile(t *testing.T) {
	out, err := run(t, "scenario", "testdata/scenario.yaml", "--policies", "testdata/tax_policies.yaml", "-f", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Kind,Asset,Method"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "total"))
}

func TestLoanImpactCommand(t *testing.T) {
	out, err := run(t, "loan-impact", "testdata/loan_impact.json", "--format", "json")
	require.NoError(t, err)

	var impact map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &impact))
	assert.Contains(t, impact, "scenarioSummary")
	assert.Contains(t, impact, "recommendation")
}

func TestAmortizeCommand(t *testing.T) {
	out, err := run(t, "amortize", "testdata/loans.yaml", "--loan-id", "L-1")
	require.NoError(t, err)
	assert.Contains(t, out, "AMORTIZATION SCHEDULE")
	assert.Contains(t, out, "60 payments")
	assert.Contains(t, out, "$1,887.12")
}

func TestAmortizeCommandRequiresLoanID(t *testing.T) {
	_, err := run(t, "amortize", "testdata/loans.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--loan-id")

	_, err = run(t, "amortize", "testdata/loans.yaml", "--loan-id", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loan "missing" not found`)
}

func TestPayoffCommand(t *testing.T) {
	out, err := run(t, "payoff", "testdata/loans.yaml", "--loan-id", "L-1", "--penalty", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "LOAN PAYOFF 2025-06-15")
	assert.Contains(t, out, "Prepayment Penalty")
	assert.Contains(t, out, "$100,000.00")

	out, err = run(t, "payoff", "testdata/loans.yaml", "--loan-id", "L-1", "--penalty", "2", "--date", "2024-07-15", "-f", "json")
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "91084.84", report["remainingBalance"])
	assert.Equal(t, "1821.7", report["prepaymentPenalty"])
	assert.Equal(t, "92906.54", report["totalPayoffAmount"])

	_, err = run(t, "payoff", "testdata/loans.yaml", "--loan-id", "L-1", "--penalty", "two percent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --penalty")
}

func TestSaleCommand(t *testing.T) {
	out, err := run(t, "sale", "--name", "Excavator", "--cost", "100000", "--depreciation", "60000",
		"--price", "70000", "--fees", "2000", "--date", "2025-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "SALE TAX IMPACT: Excavator")
	assert.Contains(t, out, "$40,000.00")
	assert.Contains(t, out, "§1245 Recapture")
}

func TestSaleCommandEstimatesDepreciation(t *testing.T) {
	out, err := run(t, "sale", "--cost", "100000", "--price", "70000", "--format", "json",
		"--estimate-method", "STRAIGHT_LINE", "--purchase-date", "2023-06-15", "--life", "5")
	require.NoError(t, err)

	var sale map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &sale))
	assert.Equal(t, "Asset", sale["assetName"])
	assert.NotEqual(t, "100000", sale["adjustedBasis"])
}

func TestScheduleCommand(t *testing.T) {
	out, err := run(t, "schedule", "testdata/assets.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Excavator (StraightLine)")
	assert.Contains(t, out, "60 months from 2024-06-01")
	assert.NotContains(t, out, "PORTFOLIO VALUATION")
}

func TestScheduleCommandWithQuotes(t *testing.T) {
	out, err := run(t, "schedule", "testdata/assets.yaml", "--quotes", "testdata/quotes.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "PORTFOLIO VALUATION")
	assert.Contains(t, out, "1 of 2")
	assert.Contains(t, out, "$142,000.00")
}

func TestPolicyCommand(t *testing.T) {
	out, err := run(t, "policy", "--policies", "testdata/tax_policies.yaml", "--year", "2030")
	require.NoError(t, err)
	assert.Contains(t, out, "TAX POLICIES")
	assert.Contains(t, out, "2026 ·")
}

func TestPolicyCommandMarginalRate(t *testing.T) {
	out, err := run(t, "policy", "--policies", "testdata/tax_policies.yaml", "--year", "2026", "--income", "50000", "-f", "json")
	require.NoError(t, err)

	var quote map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.EqualValues(t, 2026, quote["taxYear"])
	assert.Equal(t, "0.22", quote["marginalRate"])
	assert.Equal(t, "Test fixture", quote["policySource"])

	out, err = run(t, "policy", "--policies", "testdata/tax_policies.yaml", "--income", "12000")
	require.NoError(t, err)
	assert.Contains(t, out, "MARGINAL TAX RATE 2025")
	assert.Contains(t, out, "10.00%")
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "amortize", "testdata/loans.yaml", "--loan-id", "L-1", "-f", "csv", "--output-file", dir)
	require.NoError(t, err)
	written := filepath.Join(dir, "assetplan_report_20250615_000000.csv")
	assert.Contains(t, out, "Report written to "+written)
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 61)

	path := filepath.Join(dir, "assets.txt")
	_, err = run(t, "schedule", "testdata/assets.yaml", "--quotes", "testdata/quotes.yaml", "-o", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Excavator (StraightLine)")
	assert.Contains(t, string(data), "PORTFOLIO VALUATION")
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		kind string
		file string
	}{
		{"scenario", "testdata/scenario.yaml"},
		{"loan-impact", "testdata/loan_impact.json"},
		{"assets", "testdata/assets.yaml"},
		{"loans", "testdata/loans.yaml"},
		{"policies", "testdata/tax_policies.yaml"},
		{"quotes", "testdata/quotes.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			out, err := run(t, "validate", tt.file, "--kind", tt.kind)
			require.NoError(t, err)
			assert.Contains(t, out, "is a valid "+tt.kind+" file")
		})
	}

	_, err := run(t, "validate", "testdata/loans.yaml", "--kind", "scenario")
	assert.Error(t, err)

	_, err = run(t, "validate", "testdata/loans.yaml", "--kind", "spreadsheet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assetplan dev")
}
