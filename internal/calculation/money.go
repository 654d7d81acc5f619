package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	cent    = decimal.NewFromFloat(0.01)

	printer = message.NewPrinter(language.English)
)

// formatCurrency renders d with thousands separators and the given number of decimals.
func formatCurrency(d decimal.Decimal, places int) string {
	f, _ := d.Round(int32(places)).Float64()
	return printer.Sprintf(fmt.Sprintf("%%.%df", places), f)
}

// formatPlain renders d with two decimals and no grouping.
func formatPlain(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}
