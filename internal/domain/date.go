package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the day-level wire format used by every externally facing date field.
const DateLayout = "2006-01-02"

// MonthLayout is the month-level wire format used by scenario inputs.
const MonthLayout = "2006-01"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of the same calendar day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler (used by yaml.v3 and csv helpers).
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", string(text), err)
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows time.Time's RFC3339 encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON shadows time.Time's RFC3339 decoding.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
