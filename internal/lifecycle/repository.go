package lifecycle

import (
	"context"
	"errors"

	"github.com/rgehrsitz/assetplan/internal/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// AssetRepository stores asset records and their depreciation schedules.
type AssetRepository interface {
	GetAsset(ctx context.Context, assetID string) (domain.Asset, error)
	SaveAsset(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	// SaveDepreciationSchedule replaces any schedule already stored for the asset.
	SaveDepreciationSchedule(ctx context.Context, assetID string, schedule []domain.DepreciationEntry) error
	GetDepreciationSchedule(ctx context.Context, assetID string) ([]domain.DepreciationEntry, error)
}

// LoanRepository stores loans and their projected balances.
type LoanRepository interface {
	GetLoan(ctx context.Context, loanID string) (domain.Loan, error)
	SaveLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error)
	ListLoans(ctx context.Context) ([]domain.Loan, error)
	// SaveProjection replaces any projection already stored for the loan.
	SaveProjection(ctx context.Context, loanID string, projection []domain.BalanceProjection) error
	GetProjection(ctx context.Context, loanID string) ([]domain.BalanceProjection, error)
}
