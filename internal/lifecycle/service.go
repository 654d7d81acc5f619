package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// AssetService keeps stored depreciation schedules and loan projections in step with
// the asset and loan records, and enriches assets with market valuations.
type AssetService struct {
	Assets     AssetRepository
	Loans      LoanRepository
	Valuations ValuationProvider // optional

	Schedules  *calculation.DepreciationScheduleGenerator
	LoanEngine *calculation.LoanEngine

	// Concurrency bounds parallel valuation lookups in RevalueAll.
	Concurrency int
	Now         func() time.Time
	Logger      calculation.Logger
}

// NewAssetService wires the calculators on the wall clock.
func NewAssetService(assets AssetRepository, loans LoanRepository, valuations ValuationProvider) *AssetService {
	return &AssetService{
		Assets:      assets,
		Loans:       loans,
		Valuations:  valuations,
		Schedules:   calculation.NewDepreciationScheduleGenerator(),
		LoanEngine:  calculation.NewLoanEngine(),
		Concurrency: defaultConcurrency,
		Now:         time.Now,
		Logger:      calculation.NopLogger{},
	}
}

// SetLogger sets the logger for the service and its loan engine.
func (s *AssetService) SetLogger(logger calculation.Logger) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	s.Logger = logger
	s.LoanEngine.SetLogger(logger)
}

func (s *AssetService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// AddAsset stores a new asset and its depreciation schedule. The schedule is generated
// first, so an asset whose depreciation inputs are rejected is never stored.
func (s *AssetService) AddAsset(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	params, err := calculation.ParamsForAsset(asset)
	if err != nil {
		return domain.Asset{}, err
	}
	schedule, err := s.Schedules.Generate(asset.BookValue, asset.SalvageValue, params)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("asset %s: %w", asset.Name, err)
	}
	saved, err := s.Assets.SaveAsset(ctx, asset)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to save asset %s: %w", asset.Name, err)
	}
	if err := s.saveSchedule(ctx, saved.ID, params, schedule); err != nil {
		return domain.Asset{}, err
	}
	saved.Schedule = schedule
	return saved, nil
}

// UpdateAsset replaces an existing asset and regenerates its schedule.
func (s *AssetService) UpdateAsset(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	if _, err := s.Assets.GetAsset(ctx, asset.ID); err != nil {
		return domain.Asset{}, err
	}
	return s.AddAsset(ctx, asset)
}

// CreateSchedule regenerates and stores the schedule of a stored asset.
func (s *AssetService) CreateSchedule(ctx context.Context, assetID string) ([]domain.DepreciationEntry, error) {
	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	params, err := calculation.ParamsForAsset(asset)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", assetID, err)
	}
	return s.storeSchedule(ctx, asset, params)
}

func (s *AssetService) storeSchedule(ctx context.Context, asset domain.Asset, params domain.DepreciationParams) ([]domain.DepreciationEntry, error) {
	schedule, err := s.Schedules.Generate(asset.BookValue, asset.SalvageValue, params)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", asset.ID, err)
	}
	if err := s.saveSchedule(ctx, asset.ID, params, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *AssetService) saveSchedule(ctx context.Context, assetID string, params domain.DepreciationParams, schedule []domain.DepreciationEntry) error {
	if err := s.Assets.SaveDepreciationSchedule(ctx, assetID, schedule); err != nil {
		return fmt.Errorf("failed to save schedule for asset %s: %w", assetID, err)
	}
	s.Logger.Debugf("stored %d-month %s schedule for asset %s", len(schedule), params.Method(), assetID)
	return nil
}

// GetAsset returns the asset with its stored schedule and, when a provider is
// configured, a fresh market valuation. Valuation failures leave Valuation unset.
func (s *AssetService) GetAsset(ctx context.Context, assetID string) (domain.Asset, error) {
	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return domain.Asset{}, err
	}
	schedule, err := s.Assets.GetDepreciationSchedule(ctx, assetID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.Asset{}, err
	}
	asset.Schedule = schedule
	if v, ok := s.valuate(ctx, asset); ok {
		asset.Valuation = &v
	}
	return asset, nil
}

func (s *AssetService) valuate(ctx context.Context, asset domain.Asset) (domain.Valuation, bool) {
	if s.Valuations == nil {
		return domain.Valuation{}, false
	}
	v, err := s.Valuations.GetValuation(ctx, asset.Descriptor())
	if err != nil {
		s.Logger.Warnf("valuation unavailable for asset %s (%s): %v", asset.ID, asset.Name, err)
		return domain.Valuation{}, false
	}
	return v, true
}

// RevalueAll fetches a valuation for every stored asset, at most Concurrency at a time,
// and stores the ones that succeed. Individual failures are logged and skipped; only
// cancellation of ctx fails the batch.
func (s *AssetService) RevalueAll(ctx context.Context) ([]domain.Asset, domain.PortfolioValuation, error) {
	assets, err := s.Assets.ListAssets(ctx)
	if err != nil {
		return nil, domain.PortfolioValuation{}, err
	}
	if s.Valuations == nil {
		return assets, Summarize(assets), nil
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range assets {
		i := i
		g.Go(func() error {
			v, ok := s.valuate(gctx, assets[i])
			if err := gctx.Err(); err != nil {
				return err
			}
			if !ok {
				return nil
			}
			assets[i].Valuation = &v
			if _, err := s.Assets.SaveAsset(gctx, assets[i]); err != nil {
				s.Logger.Warnf("failed to store valuation for asset %s: %v", assets[i].ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.PortfolioValuation{}, fmt.Errorf("revaluation interrupted: %w", err)
	}

	summary := Summarize(assets)
	s.Logger.Infof("revalued %d of %d assets", summary.ValuedAssets, len(assets))
	return assets, summary, nil
}

// Summarize totals the valuations attached to assets.
func Summarize(assets []domain.Asset) domain.PortfolioValuation {
	summary := domain.PortfolioValuation{
		TotalFairMarketValue:         decimal.Zero,
		TotalOrderlyLiquidationValue: decimal.Zero,
		TotalForcedLiquidationValue:  decimal.Zero,
	}
	for _, a := range assets {
		if a.Valuation == nil {
			summary.UnvaluedAssets++
			continue
		}
		summary.ValuedAssets++
		summary.TotalFairMarketValue = summary.TotalFairMarketValue.Add(a.Valuation.FairMarketValue)
		summary.TotalOrderlyLiquidationValue = summary.TotalOrderlyLiquidationValue.Add(a.Valuation.OrderlyLiquidationValue)
		summary.TotalForcedLiquidationValue = summary.TotalForcedLiquidationValue.Add(a.Valuation.ForcedLiquidationValue)
	}
	return summary
}
