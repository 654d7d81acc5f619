package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"golang.org/x/time/rate"
)

// ErrUnsupportedAssetType is returned when no valuation source handles an asset type.
var ErrUnsupportedAssetType = errors.New("unsupported asset type")

// ValuationProvider returns a third-party market valuation for an asset.
type ValuationProvider interface {
	GetValuation(ctx context.Context, descriptor domain.ValuationDescriptor) (domain.Valuation, error)
}

// ValuationCache stores valuations by CacheKey.
type ValuationCache interface {
	Get(ctx context.Context, key string) (domain.Valuation, bool)
	Set(ctx context.Context, key string, valuation domain.Valuation) error
}

// CacheKey builds the cache key for a descriptor.
func CacheKey(d domain.ValuationDescriptor) string {
	parts := []string{
		d.AssetType, d.Manufacturer, d.Model, d.ModelYear,
		strconv.Itoa(d.Usage), d.Condition, d.Country, d.Region,
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return "valuation:" + strings.Join(parts, "|")
}

// MemoryCache is a process-local ValuationCache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]domain.Valuation
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]domain.Valuation)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (domain.Valuation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, valuation domain.Valuation) error {
	c.mu.Lock()
	c.data[key] = valuation
	c.mu.Unlock()
	return nil
}

// CachedValuationProvider serves valuations from Cache and fills it from Provider on a miss.
// Cache write failures are logged and ignored.
type CachedValuationProvider struct {
	Provider ValuationProvider
	Cache    ValuationCache
	Logger   calculation.Logger
}

func NewCachedValuationProvider(provider ValuationProvider, cache ValuationCache) *CachedValuationProvider {
	return &CachedValuationProvider{Provider: provider, Cache: cache, Logger: calculation.NopLogger{}}
}

func (p *CachedValuationProvider) GetValuation(ctx context.Context, descriptor domain.ValuationDescriptor) (domain.Valuation, error) {
	key := CacheKey(descriptor)
	if v, ok := p.Cache.Get(ctx, key); ok {
		return v, nil
	}
	v, err := p.Provider.GetValuation(ctx, descriptor)
	if err != nil {
		return domain.Valuation{}, err
	}
	if err := p.Cache.Set(ctx, key, v); err != nil && p.Logger != nil {
		p.Logger.Warnf("failed to cache valuation %s: %v", key, err)
	}
	return v, nil
}

// RateLimitedValuationProvider throttles calls to Provider.
type RateLimitedValuationProvider struct {
	Provider ValuationProvider
	limiter  *rate.Limiter
}

// NewRateLimitedValuationProvider allows requestsPerSecond calls with a burst of the same size (at least 1).
func NewRateLimitedValuationProvider(provider ValuationProvider, requestsPerSecond float64) *RateLimitedValuationProvider {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedValuationProvider{
		Provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (p *RateLimitedValuationProvider) GetValuation(ctx context.Context, descriptor domain.ValuationDescriptor) (domain.Valuation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.Valuation{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.Provider.GetValuation(ctx, descriptor)
}

// RoutedValuationProvider picks a provider by asset type ("Equipment", "Vehicle").
type RoutedValuationProvider map[string]ValuationProvider

func (r RoutedValuationProvider) GetValuation(ctx context.Context, descriptor domain.ValuationDescriptor) (domain.Valuation, error) {
	provider, ok := r[descriptor.AssetType]
	if !ok {
		return domain.Valuation{}, fmt.Errorf("%w: %q", ErrUnsupportedAssetType, descriptor.AssetType)
	}
	return provider.GetValuation(ctx, descriptor)
}

// StaticValuationProvider answers from a fixed set of market quotes matched on
// manufacturer, model and model year.
type StaticValuationProvider struct {
	quotes map[string]domain.Valuation
	now    func() time.Time
}

func NewStaticValuationProvider(quotes []domain.MarketQuote) *StaticValuationProvider {
	p := &StaticValuationProvider{quotes: make(map[string]domain.Valuation, len(quotes)), now: time.Now}
	for _, q := range quotes {
		p.quotes[quoteKey(q.Manufacturer, q.Model, q.ModelYear)] = q.Valuation
	}
	return p
}

func (p *StaticValuationProvider) GetValuation(_ context.Context, d domain.ValuationDescriptor) (domain.Valuation, error) {
	v, ok := p.quotes[quoteKey(d.Manufacturer, d.Model, d.ModelYear)]
	if !ok {
		return domain.Valuation{}, fmt.Errorf("quote for %s %s %s: %w", d.Manufacturer, d.Model, d.ModelYear, ErrNotFound)
	}
	if v.RetrievedAt.IsZero() {
		v.RetrievedAt = p.now().UTC()
	}
	return v, nil
}

func quoteKey(manufacturer, model, year string) string {
	return strings.ToLower(strings.TrimSpace(manufacturer)) + "|" +
		strings.ToLower(strings.TrimSpace(model)) + "|" + strings.TrimSpace(year)
}
