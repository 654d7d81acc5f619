package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/assetplan/internal/domain"
)

// MemoryAssetRepository is an in-memory AssetRepository. Records are copied in and out.
type MemoryAssetRepository struct {
	mu        sync.RWMutex
	assets    map[string]domain.Asset
	schedules map[string][]domain.DepreciationEntry
}

// NewMemoryAssetRepository creates an empty repository.
func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{
		assets:    make(map[string]domain.Asset),
		schedules: make(map[string][]domain.DepreciationEntry),
	}
}

func (r *MemoryAssetRepository) GetAsset(_ context.Context, assetID string) (domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.assets[assetID]
	if !ok {
		return domain.Asset{}, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
	}
	return asset, nil
}

// SaveAsset inserts or replaces an asset, assigning an ID when it has none.
func (r *MemoryAssetRepository) SaveAsset(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	asset.Schedule = nil
	r.mu.Lock()
	r.assets[asset.ID] = asset
	r.mu.Unlock()
	return asset, nil
}

// ListAssets returns every asset ordered by ID.
func (r *MemoryAssetRepository) ListAssets(_ context.Context) ([]domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryAssetRepository) SaveDepreciationSchedule(_ context.Context, assetID string, schedule []domain.DepreciationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[assetID]; !ok {
		return fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
	}
	r.schedules[assetID] = append([]domain.DepreciationEntry(nil), schedule...)
	return nil
}

func (r *MemoryAssetRepository) GetDepreciationSchedule(_ context.Context, assetID string) ([]domain.DepreciationEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schedule, ok := r.schedules[assetID]
	if !ok {
		return nil, fmt.Errorf("schedule for asset %s: %w", assetID, ErrNotFound)
	}
	return append([]domain.DepreciationEntry(nil), schedule...), nil
}

// MemoryLoanRepository is an in-memory LoanRepository.
type MemoryLoanRepository struct {
	mu          sync.RWMutex
	loans       map[string]domain.Loan
	projections map[string][]domain.BalanceProjection
}

// NewMemoryLoanRepository creates an empty repository.
func NewMemoryLoanRepository() *MemoryLoanRepository {
	return &MemoryLoanRepository{
		loans:       make(map[string]domain.Loan),
		projections: make(map[string][]domain.BalanceProjection),
	}
}

func (r *MemoryLoanRepository) GetLoan(_ context.Context, loanID string) (domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loan, ok := r.loans[loanID]
	if !ok {
		return domain.Loan{}, fmt.Errorf("loan %s: %w", loanID, ErrNotFound)
	}
	return loan, nil
}

// SaveLoan inserts or replaces a loan, assigning an ID when it has none.
func (r *MemoryLoanRepository) SaveLoan(_ context.Context, loan domain.Loan) (domain.Loan, error) {
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.loans[loan.ID] = loan
	r.mu.Unlock()
	return loan, nil
}

// ListLoans returns every loan ordered by ID.
func (r *MemoryLoanRepository) ListLoans(_ context.Context) ([]domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryLoanRepository) SaveProjection(_ context.Context, loanID string, projection []domain.BalanceProjection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[loanID]; !ok {
		return fmt.Errorf("loan %s: %w", loanID, ErrNotFound)
	}
	r.projections[loanID] = append([]domain.BalanceProjection(nil), projection...)
	return nil
}

func (r *MemoryLoanRepository) GetProjection(_ context.Context, loanID string) ([]domain.BalanceProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	projection, ok := r.projections[loanID]
	if !ok {
		return nil, fmt.Errorf("projection for loan %s: %w", loanID, ErrNotFound)
	}
	return append([]domain.BalanceProjection(nil), projection...), nil
}
