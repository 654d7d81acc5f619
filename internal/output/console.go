package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders human-readable reports with lipgloss styling.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report interface{}) ([]byte, error) {
	var buf bytes.Buffer

	switch r := report.(type) {
	case *domain.ScenarioResults:
		c.scenario(&buf, r)
	case domain.ScenarioImpact:
		c.loanImpact(&buf, r)
	case domain.PayoffReport:
		c.payoff(&buf, r)
	case domain.SaleCalculation:
		c.sale(&buf, r)
	case []domain.DepreciationEntry:
		c.depreciationSchedule(&buf, r)
	case []domain.AmortizationLine:
		c.amortization(&buf, r)
	case []domain.Asset:
		c.assets(&buf, r)
	case []domain.TaxPolicy:
		c.policies(&buf, r)
	case domain.PortfolioValuation:
		c.portfolio(&buf, r)
	case domain.MarginalRateQuote:
		fmt.Fprintln(&buf, TitleStyle.Render(fmt.Sprintf("MARGINAL TAX RATE %d", r.TaxYear)))
		fmt.Fprintln(&buf, renderRows([]row{
			money("Taxable Income", r.TaxableIncome),
			{"Marginal Rate", FormatRate(r.MarginalRate)},
			{"Policy Source", r.PolicySource},
		}))
	default:
		return nil, unsupported(c.Name(), report)
	}
	return buf.Bytes(), nil
}

type row struct {
	label string
	value string
}

func money(label string, d decimal.Decimal) row { return row{label, FormatCurrency(d)} }

func renderRows(rows []row) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = LabelStyle.Render(r.label) + ValueStyle.Render(r.value)
	}
	return strings.Join(lines, "\n")
}

func section(buf *bytes.Buffer, title string) {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, SectionStyle.Render(title))
}

func signed(d decimal.Decimal) string {
	return AmountStyle(!d.IsNegative()).Render(FormatCurrency(d))
}

func notes(buf *bytes.Buffer, items []string) {
	for _, n := range items {
		fmt.Fprintln(buf, NoteStyle.Render("• "+n))
	}
}

func (c ConsoleFormatter) scenario(buf *bytes.Buffer, r *domain.ScenarioResults) {
	fmt.Fprintln(buf, TitleStyle.Render("LIQUIDATION & REPLACEMENT SCENARIO"))
	fmt.Fprintf(buf, "Scenario %s · tax year %d · calculated %s\n", r.ID, r.TaxYear, r.CalculatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintln(buf)

	liquidation := BoxStyle.Render(SectionStyle.Render("LIQUIDATION") + "\n" + renderRows([]row{
		money("Sale Proceeds", r.TotalSaleProceeds),
		money("Transaction Fees", r.TotalTransactionFees),
		money("§1245 Recapture", r.TotalSection1245Recapture),
		money("§1231 Gain", r.TotalSection1231Gain),
		money("Tax on Sales", r.TotalTaxOnSales),
		money("Net Cash from Liquidation", r.NetCashFromLiquidation),
	}))
	replacement := BoxStyle.Render(SectionStyle.Render("REPLACEMENT") + "\n" + renderRows([]row{
		money("Replacement Cost", r.TotalReplacementCost),
		money("Bonus Depreciation", r.TotalBonusDepreciation),
		money("§179 Deduction", r.TotalSection179),
		money("MACRS First Year", r.TotalMACRSFirstYear),
		money("First-Year Deductions", r.TotalFirstYearDeductions),
		money("Tax Savings", r.TaxSavingsFromDeductions),
	}))
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top, liquidation, " ", replacement))

	section(buf, "CASH FLOW")
	fmt.Fprintln(buf, renderRows([]row{money("Cash Required for Replacements", r.CashRequiredForReplacements)}))
	fmt.Fprintln(buf, LabelStyle.Render("Net Cash Flow")+signed(r.NetCashFlow))

	if len(r.SaleDetails) > 0 {
		section(buf, "SALE DETAILS")
		for _, s := range r.SaleDetails {
			fmt.Fprintf(buf, "%s: net after tax %s\n", s.AssetName, FormatCurrency(s.NetProceedsAfterTax))
			notes(buf, s.Notes)
		}
	}
	if len(r.ReplacementDetails) > 0 {
		section(buf, "REPLACEMENT DETAILS")
		for _, d := range r.ReplacementDetails {
			fmt.Fprintf(buf, "%s (%s): first-year deduction %s\n", d.AssetName, d.MethodUsed, FormatCurrency(d.TotalFirstYearDeduction))
			notes(buf, d.Notes)
		}
	}
	if len(r.Warnings) > 0 {
		section(buf, "WARNINGS")
		for _, w := range r.Warnings {
			fmt.Fprintln(buf, WarningStyle.Render("⚠ "+w))
		}
	}
}

func (c ConsoleFormatter) loanImpact(buf *bytes.Buffer, r domain.ScenarioImpact) {
	fmt.Fprintln(buf, TitleStyle.Render("LOAN IMPACT ANALYSIS"))
	fmt.Fprintf(buf, "Liquidation date: %s\n", r.Summary.LiquidationDate)

	section(buf, "SUMMARY")
	fmt.Fprintln(buf, LabelStyle.Render("Net Cash Impact")+signed(r.Summary.NetCashImpact))
	fmt.Fprintln(buf, renderRows([]row{
		money("Net Cash Surplus", r.Summary.NetCashSurplus),
		money("Monthly Obligation Change", r.Summary.MonthlyObligationChange),
		money("Annual Obligation Change", r.Summary.AnnualObligationChange),
		money("Interest Saved by Payoff", r.Summary.InterestSavingsFromPayoff),
		money("Interest Cost Change", r.Summary.TotalInterestCostChange),
	}))

	liq := r.LiquidationDetails
	section(buf, "LIQUIDATION")
	rows := []row{
		money("Asset Sale Price", liq.AssetSalePrice),
		money("Transaction Fees", liq.TransactionFees),
	}
	if liq.LoanPayoff.HasLoan {
		rows = append(rows,
			money("Loan Balance", liq.LoanPayoff.RemainingBalance),
			money("Prepayment Penalty", liq.LoanPayoff.PrepaymentPenalty),
			money("Loan Payoff", liq.LoanPayoff.TotalPayoffAmount),
		)
	}
	rows = append(rows, money("Net Proceeds", liq.NetProceeds))
	fmt.Fprintln(buf, renderRows(rows))

	rep := r.ReplacementDetails
	section(buf, "REPLACEMENT")
	fmt.Fprintln(buf, renderRows([]row{
		money("Replacement Price", rep.ReplacementAssetPrice),
		money("Down Payment Required", rep.DownPaymentRequired),
		money("Cash Required", rep.CashRequired),
		money("Cash Surplus", rep.CashSurplus),
		money("Old Monthly Payment", rep.MonthlyPaymentComparison.OldMonthlyPayment),
		money("New Monthly Payment", rep.MonthlyPaymentComparison.NewMonthlyPayment),
	}))

	rec := r.Recommendation
	section(buf, "RECOMMENDATION")
	style := WarningStyle
	switch rec.Class {
	case domain.Favorable, domain.ModeratelyFavorable:
		style = PositiveStyle
	case domain.Unfavorable:
		style = NegativeStyle
	}
	fmt.Fprintln(buf, style.Render(rec.Recommendation))
	fmt.Fprintf(buf, "Score: +%d / -%d\n", rec.PositiveScore, rec.NegativeScore)
	notes(buf, rec.KeyFactors)
}

func (c ConsoleFormatter) payoff(buf *bytes.Buffer, r domain.PayoffReport) {
	fmt.Fprintln(buf, TitleStyle.Render("LOAN PAYOFF "+r.PayoffDate))
	fmt.Fprintln(buf, renderRows([]row{
		money("Original Loan Amount", r.OriginalLoanAmount),
		money("Principal Paid", r.TotalPrincipalPaid),
		money("Interest Paid", r.TotalInterestPaid),
		money("Remaining Balance", r.RemainingBalance),
		money("Prepayment Penalty", r.PrepaymentPenalty),
		money("Total Payoff Amount", r.TotalPayoffAmount),
	}))
}

func (c ConsoleFormatter) sale(buf *bytes.Buffer, r domain.SaleCalculation) {
	fmt.Fprintln(buf, TitleStyle.Render("SALE TAX IMPACT: "+r.AssetName))
	fmt.Fprintln(buf, renderRows([]row{
		money("Sale Price", r.SalePrice),
		money("Adjusted Basis", r.AdjustedBasis),
		money("Total Gain", r.TotalGain),
		money("§1245 Recapture", r.Section1245Recapture),
		money("§1231 Gain", r.Section1231Gain),
		money("Loss on Sale", r.LossOnSale),
		money("Tax on Recapture", r.TaxOnRecapture),
		money("Tax on Capital Gain", r.TaxOnCapitalGain),
		money("Net Proceeds After Tax", r.NetProceedsAfterTax),
	}))
	notes(buf, r.Notes)
}

func (c ConsoleFormatter) depreciationSchedule(buf *bytes.Buffer, entries []domain.DepreciationEntry) {
	fmt.Fprintln(buf, TitleStyle.Render("DEPRECIATION SCHEDULE"))
	fmt.Fprintf(buf, "%-6s %-12s %15s\n", "Month", "Date", "Book Value")
	fmt.Fprintln(buf, strings.Repeat("-", 35))
	for i, e := range entries {
		fmt.Fprintf(buf, "%-6d %-12s %15s\n", i+1, e.DepreciationDate, FormatCurrency(e.NewBookValue))
	}
}

func (c ConsoleFormatter) amortization(buf *bytes.Buffer, lines []domain.AmortizationLine) {
	fmt.Fprintln(buf, TitleStyle.Render("AMORTIZATION SCHEDULE"))
	fmt.Fprintf(buf, "%-4s %-12s %14s %14s %14s %16s\n", "#", "Date", "Payment", "Principal", "Interest", "Balance")
	fmt.Fprintln(buf, strings.Repeat("-", 79))
	interest := decimal.Zero
	for _, l := range lines {
		interest = interest.Add(l.InterestPayment)
		fmt.Fprintf(buf, "%-4d %-12s %14s %14s %14s %16s\n", l.PaymentNumber, l.PaymentDate,
			FormatCurrency(l.PaymentAmount), FormatCurrency(l.PrincipalPayment),
			FormatCurrency(l.InterestPayment), FormatCurrency(l.RemainingBalance))
	}
	fmt.Fprintln(buf, strings.Repeat("-", 79))
	fmt.Fprintf(buf, "%d payments, total interest %s\n", len(lines), FormatCurrency(interest))
}

func (c ConsoleFormatter) assets(buf *bytes.Buffer, assets []domain.Asset) {
	fmt.Fprintln(buf, TitleStyle.Render("ASSETS"))
	for _, a := range assets {
		section(buf, fmt.Sprintf("%s (%s)", a.Name, a.DepreciationMethod))
		rows := []row{
			money("Book Value", a.BookValue),
			money("Salvage Value", a.SalvageValue),
		}
		if n := len(a.Schedule); n > 0 {
			rows = append(rows,
				row{"Schedule", fmt.Sprintf("%d months from %s", n, a.Schedule[0].DepreciationDate)},
				money("Book Value After 12 Months", a.Schedule[minInt(11, n-1)].NewBookValue),
				money("Final Book Value", a.Schedule[n-1].NewBookValue),
			)
		}
		if a.Valuation != nil {
			rows = append(rows,
				money("Fair Market Value", a.Valuation.FairMarketValue),
				money("Orderly Liquidation Value", a.Valuation.OrderlyLiquidationValue),
				money("Forced Liquidation Value", a.Valuation.ForcedLiquidationValue),
			)
		}
		fmt.Fprintln(buf, renderRows(rows))
	}
}

func (c ConsoleFormatter) portfolio(buf *bytes.Buffer, v domain.PortfolioValuation) {
	section(buf, "PORTFOLIO VALUATION")
	fmt.Fprintln(buf, renderRows([]row{
		{"Valued Assets", fmt.Sprintf("%d of %d", v.ValuedAssets, v.ValuedAssets+v.UnvaluedAssets)},
		money("Fair Market Value", v.TotalFairMarketValue),
		money("Orderly Liquidation Value", v.TotalOrderlyLiquidationValue),
		money("Forced Liquidation Value", v.TotalForcedLiquidationValue),
	}))
	if v.UnvaluedAssets > 0 {
		fmt.Fprintln(buf, WarningStyle.Render(fmt.Sprintf("⚠ %d assets have no market valuation", v.UnvaluedAssets)))
	}
}

func (c ConsoleFormatter) policies(buf *bytes.Buffer, policies []domain.TaxPolicy) {
	fmt.Fprintln(buf, TitleStyle.Render("TAX POLICIES"))
	for _, p := range policies {
		section(buf, fmt.Sprintf("%d · %s", p.EffectiveYear, p.PolicySource))
		fmt.Fprintln(buf, renderRows([]row{
			money("§179 Limit", p.Section179Limit),
			money("§179 Phase-out Threshold", p.Section179PhaseoutThreshold),
			{"Bonus Depreciation", fmt.Sprintf("%d%%", p.BonusDepreciationPercent)},
		}))
		for _, b := range p.FederalBrackets {
			limit := "and above"
			if !b.Unbounded() {
				limit = "up to " + FormatCurrency(*b.UpperLimit)
			}
			fmt.Fprintln(buf, NoteStyle.Render(fmt.Sprintf("%s %s", FormatRate(b.Rate), limit)))
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
