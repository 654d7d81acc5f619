package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnsupportedReport is returned when a formatter cannot render a report type.
var ErrUnsupportedReport = errors.New("unsupported report type")

// Formatter renders a calculation report. Reports are the result types of the
// calculation package: *domain.ScenarioResults, domain.ScenarioImpact,
// domain.PayoffReport, domain.SaleCalculation, schedules and policy tables.
type Formatter interface {
	Name() string
	Format(report interface{}) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc struct {
	ID string
	F  func(report interface{}) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report interface{}) ([]byte, error) { return f.F(report) }

// Sequence renders a []interface{} of reports back to back with f. Any other
// report is passed to f unchanged.
func Sequence(f Formatter) FormatterFunc {
	return FormatterFunc{ID: f.Name(), F: func(report interface{}) ([]byte, error) {
		reports, ok := report.([]interface{})
		if !ok {
			return f.Format(report)
		}
		var buf bytes.Buffer
		for _, r := range reports {
			data, err := f.Format(r)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		return buf.Bytes(), nil
	}}
}

// FormatterNames lists the names accepted by GetFormatterByName.
var FormatterNames = []string{"console", "json", "csv"}

// GetFormatterByName returns the formatter registered under name.
func GetFormatterByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected one of %s)", name, strings.Join(FormatterNames, ", "))
	}
}

// Extension returns the file extension for reports of the named format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "json", "csv":
		return strings.ToLower(format)
	default:
		return "txt"
	}
}

// WriteFormatted renders report to path and returns the file written. When path is an
// existing directory the report goes to a file named after now inside it.
func WriteFormatted(f Formatter, report interface{}, path string, now time.Time) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name := fmt.Sprintf("assetplan_report_%s.%s", now.Format("20060102_150405"), Extension(f.Name()))
		path = filepath.Join(path, name)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

var printer = message.NewPrinter(language.English)

// FormatCurrency formats a decimal as dollars with thousands separators.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + "$" + printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// FormatPercentage formats a percent value (24 -> "24.00%").
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatRate formats a fractional rate as a percent (0.24 -> "24.00%").
func FormatRate(rate decimal.Decimal) string {
	return FormatPercentage(rate.Mul(decimal.NewFromInt(100)))
}

func unsupported(formatter string, report interface{}) error {
	return fmt.Errorf("%w for %s: %T", ErrUnsupportedReport, formatter, report)
}
