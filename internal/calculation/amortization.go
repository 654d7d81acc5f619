package calculation

import (
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	monthlyRateDivisor = decimal.NewFromInt(1200)
	daysInPayoffMonth  = decimal.NewFromInt(30)
)

// LoanEngine computes payments, amortization schedules and payoff amounts
// for fixed-rate monthly loans.
type LoanEngine struct {
	Dates  DateParser
	Logger Logger
}

// NewLoanEngine returns an engine with lenient date parsing on the wall clock.
func NewLoanEngine() *LoanEngine {
	return &LoanEngine{Dates: NewDateParser(), Logger: NopLogger{}}
}

// SetLogger sets the logger for the engine and its date parser.
func (e *LoanEngine) SetLogger(logger Logger) {
	e.Logger = loggerOrNop(logger)
	e.Dates.Logger = e.Logger
}

// CalculateMonthlyPayment returns the level payment that amortizes principal over
// termYears*12 months at annualRatePercent/12 per month.
func (e *LoanEngine) CalculateMonthlyPayment(principal, annualRatePercent decimal.Decimal, termYears int) decimal.Decimal {
	months := termYears * 12
	if months <= 0 {
		return decimal.Zero
	}
	if annualRatePercent.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months)))
	}

	r := annualRatePercent.InexactFloat64() / 1200
	factor := r / (1 - math.Pow(1+r, -float64(months)))
	return principal.Mul(decimal.NewFromFloat(factor))
}

// WithDerivedPayment returns a copy of loan whose MonthlyPayment is recomputed from
// principal, rate and term.
func (e *LoanEngine) WithDerivedPayment(loan domain.Loan) domain.Loan {
	loan.MonthlyPayment = e.CalculateMonthlyPayment(loan.Principal, loan.AnnualRatePercent, loan.TermYears).Round(2)
	return loan
}

// ValidateLoan rejects negative loan terms.
func ValidateLoan(loan domain.Loan) error {
	if loan.Principal.IsNegative() {
		return fmt.Errorf("%w: loan amount must not be negative, got %s", ErrInvalidParameter, loan.Principal)
	}
	if loan.AnnualRatePercent.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative, got %s", ErrInvalidParameter, loan.AnnualRatePercent)
	}
	if loan.TermYears < 0 {
		return fmt.Errorf("%w: loan term must not be negative, got %d", ErrInvalidParameter, loan.TermYears)
	}
	return nil
}

// GenerateAmortizationSchedule lists every payment from one month after the start date
// until the balance is paid off or the end date passes. The balance is carried at full
// precision; each emitted line is rounded to cents.
func (e *LoanEngine) GenerateAmortizationSchedule(loan domain.Loan) ([]domain.AmortizationLine, error) {
	if err := ValidateLoan(loan); err != nil {
		return nil, err
	}
	start, end, err := e.loanDates(loan)
	if err != nil {
		return nil, err
	}

	payment := e.CalculateMonthlyPayment(loan.Principal, loan.AnnualRatePercent, loan.TermYears)
	rate := loan.AnnualRatePercent.Div(monthlyRateDivisor)
	balance := loan.Principal

	var lines []domain.AmortizationLine
	for n := 1; balance.GreaterThan(cent); n++ {
		date := addMonths(start, n)
		if date.After(end) {
			break
		}

		interest := balance.Mul(rate)
		principal := payment.Sub(interest)
		total := payment
		if principal.GreaterThan(balance) {
			principal = balance
			total = principal.Add(interest)
		}
		balance = balance.Sub(principal)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		lines = append(lines, domain.AmortizationLine{
			PaymentNumber:    n,
			PaymentDate:      domain.NewDate(date),
			PaymentAmount:    total.Round(2),
			PrincipalPayment: principal.Round(2),
			InterestPayment:  interest.Round(2),
			RemainingBalance: balance.Round(2),
		})
	}

	e.logger().Debugf("amortized loan %s: %d payments of %s", loan.ID, len(lines), payment.StringFixed(2))
	return lines, nil
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(lines []domain.AmortizationLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.InterestPayment)
	}
	return total
}

// GenerateBalanceProjection reduces a loan's amortization schedule to the
// payment date and remaining balance pairs stored next to the loan.
func (e *LoanEngine) GenerateBalanceProjection(loan domain.Loan) ([]domain.BalanceProjection, error) {
	lines, err := e.GenerateAmortizationSchedule(loan)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BalanceProjection, len(lines))
	for i, l := range lines {
		out[i] = domain.BalanceProjection{PaymentDate: l.PaymentDate, RemainingValue: l.RemainingBalance}
	}
	return out, nil
}

// CalculateLoanPayoff reports what it costs to retire loan on payoffDate. Payments dated on
// or before payoffDate count as made; interest for the month in progress is pro-rated over a
// 30-day month. The remaining balance is the one after the last payment made.
func (e *LoanEngine) CalculateLoanPayoff(loan domain.Loan, payoffDate string, prepaymentPenaltyRate decimal.Decimal) (domain.PayoffReport, error) {
	if prepaymentPenaltyRate.IsNegative() {
		return domain.PayoffReport{}, fmt.Errorf("%w: prepayment penalty rate must not be negative, got %s",
			ErrInvalidParameter, prepaymentPenaltyRate)
	}
	target, err := e.Dates.ParseDay(payoffDate)
	if err != nil {
		return domain.PayoffReport{}, err
	}
	lines, err := e.GenerateAmortizationSchedule(loan)
	if err != nil {
		return domain.PayoffReport{}, err
	}

	remaining := loan.Principal
	interestPaid := decimal.Zero
	principalPaid := decimal.Zero
	for _, line := range lines {
		if !line.PaymentDate.After(target) {
			interestPaid = interestPaid.Add(line.InterestPayment)
			principalPaid = principalPaid.Add(line.PrincipalPayment)
			remaining = line.RemainingBalance
			continue
		}

		periodStart := addMonths(line.PaymentDate.Time, -1)
		if days := daysBetween(periodStart, target); days > 0 && days < 30 {
			prorated := line.InterestPayment.Mul(decimal.NewFromInt(int64(days))).Div(daysInPayoffMonth)
			interestPaid = interestPaid.Add(prorated)
		}
		break
	}

	penalty := percentOf(remaining, prepaymentPenaltyRate)
	return domain.PayoffReport{
		PayoffDate:         payoffDate,
		RemainingBalance:   remaining.Round(2),
		PrepaymentPenalty:  penalty.Round(2),
		TotalPayoffAmount:  remaining.Add(penalty).Round(2),
		TotalInterestPaid:  interestPaid.Round(2),
		TotalPrincipalPaid: principalPaid.Round(2),
		OriginalLoanAmount: loan.Principal,
	}, nil
}

// loanDates resolves the start date and the date after which no payment is scheduled.
// An absent or unparseable end date falls back to start plus the full term.
func (e *LoanEngine) loanDates(loan domain.Loan) (time.Time, time.Time, error) {
	start, err := e.Dates.ParseDay(loan.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("loan start date: %w", err)
	}

	end := addMonths(start, loan.TermMonths())
	if loan.EndDate == "" {
		return start, end, nil
	}
	parsed, err := time.Parse(domain.DateLayout, loan.EndDate)
	if err != nil {
		if e.Dates.Mode == DateStrict {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: loan end date %q", ErrMalformedInput, loan.EndDate)
		}
		e.logger().Warnf("unparseable loan end date %q, using start plus term", loan.EndDate)
		return start, end, nil
	}
	return start, parsed, nil
}

func (e *LoanEngine) logger() Logger {
	return loggerOrNop(e.Logger)
}
