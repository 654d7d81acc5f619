package calculation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
)

// DateMode selects how unparseable date strings are handled.
type DateMode int

const (
	// DateLenient substitutes the clock's current time and logs a warning.
	DateLenient DateMode = iota
	// DateStrict fails with ErrMalformedInput.
	DateStrict
)

func (m DateMode) String() string {
	if m == DateStrict {
		return "strict"
	}
	return "lenient"
}

// ParseDateMode maps "lenient" or "strict" (case-insensitive) to a DateMode.
func ParseDateMode(s string) (DateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return DateLenient, nil
	case "strict":
		return DateStrict, nil
	default:
		return DateLenient, fmt.Errorf("%w: unknown date mode %q", ErrInvalidParameter, s)
	}
}

// DateParser parses externally supplied day and month strings under a DateMode.
type DateParser struct {
	Mode   DateMode
	Now    func() time.Time
	Logger Logger
}

// NewDateParser returns a lenient parser on the wall clock.
func NewDateParser() DateParser {
	return DateParser{Mode: DateLenient, Now: time.Now, Logger: NopLogger{}}
}

func (p DateParser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// ParseDay parses a YYYY-MM-DD string.
func (p DateParser) ParseDay(s string) (time.Time, error) {
	return p.parse(s, domain.DateLayout)
}

// ParseMonth parses a YYYY-MM string to the first day of that month.
func (p DateParser) ParseMonth(s string) (time.Time, error) {
	return p.parse(s, domain.MonthLayout)
}

func (p DateParser) parse(s, layout string) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err == nil {
		return t, nil
	}
	if p.Mode == DateStrict {
		return time.Time{}, fmt.Errorf("%w: date %q does not match %s", ErrMalformedInput, s, layout)
	}
	now := p.now()
	loggerOrNop(p.Logger).Warnf("unparseable date %q, using %s", s, now.Format(domain.DateLayout))
	return now, nil
}

// addMonths adds n calendar months to t, clamping the day to the end of the target month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// firstOfMonth truncates t to midnight UTC on the first of its month.
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
