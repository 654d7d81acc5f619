package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// fixedNow is the clock used throughout the package tests.
var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int { return &i }

// TestLogger records formatted messages by level.
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+fmt.Sprintf(format, args...))
}
