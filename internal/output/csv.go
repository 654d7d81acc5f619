package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/assetplan/internal/domain"
)

// CSVFormatter renders tabular reports, one row per line item.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report interface{}) ([]byte, error) {
	var rows [][]string
	switch r := report.(type) {
	case *domain.ScenarioResults:
		rows = scenarioRows(r)
	case []domain.DepreciationEntry:
		rows = [][]string{{"Month", "Date", "BookValue"}}
		for i, e := range r {
			rows = append(rows, []string{strconv.Itoa(i + 1), e.DepreciationDate.String(), e.NewBookValue.StringFixed(2)})
		}
	case []domain.AmortizationLine:
		rows = [][]string{{"PaymentNumber", "PaymentDate", "Payment", "Principal", "Interest", "RemainingBalance"}}
		for _, l := range r {
			rows = append(rows, []string{
				strconv.Itoa(l.PaymentNumber),
				l.PaymentDate.String(),
				l.PaymentAmount.StringFixed(2),
				l.PrincipalPayment.StringFixed(2),
				l.InterestPayment.StringFixed(2),
				l.RemainingBalance.StringFixed(2),
			})
		}
	case domain.MarginalRateQuote:
		rows = [][]string{
			{"TaxYear", "TaxableIncome", "MarginalRate"},
			{strconv.Itoa(r.TaxYear), r.TaxableIncome.StringFixed(2), r.MarginalRate.String()},
		}
	case []domain.Asset:
		rows = [][]string{{"AssetID", "Asset", "Method", "Date", "BookValue"}}
		for _, a := range r {
			for _, e := range a.Schedule {
				rows = append(rows, []string{a.ID, a.Name, string(a.DepreciationMethod), e.DepreciationDate.String(), e.NewBookValue.StringFixed(2)})
			}
		}
	default:
		return nil, unsupported(c.Name(), report)
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scenarioRows emits one row per sale and replacement followed by a totals row.
func scenarioRows(r *domain.ScenarioResults) [][]string {
	rows := [][]string{{
		"Kind", "Asset", "Method", "Amount", "Basis",
		"Section1245Recapture", "Section1231Gain", "Tax", "FirstYearDeduction", "NetCash",
	}}
	for _, s := range r.SaleDetails {
		rows = append(rows, []string{
			"sale", s.AssetName, "",
			s.SalePrice.StringFixed(2),
			s.AdjustedBasis.StringFixed(2),
			s.Section1245Recapture.StringFixed(2),
			s.Section1231Gain.StringFixed(2),
			s.TotalTax().StringFixed(2),
			"",
			s.NetProceedsAfterTax.StringFixed(2),
		})
	}
	for _, d := range r.ReplacementDetails {
		rows = append(rows, []string{
			"replacement", d.AssetName, d.MethodUsed,
			d.Cost.StringFixed(2),
			d.DepreciableBasis.StringFixed(2),
			"", "", "",
			d.TotalFirstYearDeduction.StringFixed(2),
			d.Cost.Neg().StringFixed(2),
		})
	}
	rows = append(rows, []string{
		"total", "", "",
		r.TotalSaleProceeds.StringFixed(2),
		"",
		r.TotalSection1245Recapture.StringFixed(2),
		r.TotalSection1231Gain.StringFixed(2),
		r.TotalTaxOnSales.StringFixed(2),
		r.TotalFirstYearDeductions.StringFixed(2),
		r.NetCashFlow.StringFixed(2),
	})
	return rows
}
