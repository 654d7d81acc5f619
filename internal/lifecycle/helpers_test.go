package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// TestLogger records log lines for assertions.
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *TestLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+fmt.Sprintf(format, args...))
}

func (l *TestLogger) Debugf(format string, args ...interface{}) { l.add("DEBUG", format, args...) }
func (l *TestLogger) Infof(format string, args ...interface{})  { l.add("INFO", format, args...) }
func (l *TestLogger) Warnf(format string, args ...interface{})  { l.add("WARN", format, args...) }
func (l *TestLogger) Errorf(format string, args ...interface{}) { l.add("ERROR", format, args...) }

func (l *TestLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if len(m) > len(level) && m[:len(level)] == level {
			n++
		}
	}
	return n
}

type providerFunc func(ctx context.Context, d domain.ValuationDescriptor) (domain.Valuation, error)

func (f providerFunc) GetValuation(ctx context.Context, d domain.ValuationDescriptor) (domain.Valuation, error) {
	return f(ctx, d)
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func intPtr(v int) *int { return &v }

func valuation(fmv float64) domain.Valuation {
	return domain.Valuation{
		FairMarketValue:         dec(fmv),
		OrderlyLiquidationValue: dec(fmv * 0.8),
		ForcedLiquidationValue:  dec(fmv * 0.6),
		RetrievedAt:             fixedNow,
	}
}

func straightLineAsset(name string, cost, salvage float64, life int) domain.Asset {
	return domain.Asset{
		Name:               name,
		Type:               "Equipment",
		Manufacturer:       "Caterpillar",
		Model:              name,
		ModelYear:          "2021",
		BookValue:          dec(cost),
		SalvageValue:       dec(salvage),
		DepreciationMethod: domain.MethodStraightLine,
		UsefulLife:         intPtr(life),
	}
}

func newTestService(valuations ValuationProvider) (*AssetService, *TestLogger) {
	svc := NewAssetService(NewMemoryAssetRepository(), NewMemoryLoanRepository(), valuations)
	svc.Now = clock
	svc.Schedules.Now = clock
	svc.LoanEngine.Dates.Now = clock
	logger := &TestLogger{}
	svc.SetLogger(logger)
	return svc, logger
}
