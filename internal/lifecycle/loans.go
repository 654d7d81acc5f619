package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateLoan stores a loan with its derived monthly payment and projected balances.
// A missing start date defaults to today, with the end date at today plus the term.
func (s *AssetService) CreateLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	if err := calculation.ValidateLoan(loan); err != nil {
		return domain.Loan{}, err
	}
	now := s.now()
	if loan.StartDate == "" {
		loan.StartDate = now.Format(domain.DateLayout)
		if loan.EndDate == "" {
			loan.EndDate = now.AddDate(loan.TermYears, 0, 0).Format(domain.DateLayout)
		}
	}
	if loan.RemainingBalance.IsZero() {
		loan.RemainingBalance = loan.Principal
	}
	loan = s.LoanEngine.WithDerivedPayment(loan)

	saved, err := s.Loans.SaveLoan(ctx, loan)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("failed to save loan: %w", err)
	}
	if err := s.storeProjection(ctx, saved); err != nil {
		return domain.Loan{}, err
	}
	return saved, nil
}

// UpdateLoan replaces an existing loan, re-derives its payment and regenerates its projection.
func (s *AssetService) UpdateLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	if _, err := s.Loans.GetLoan(ctx, loan.ID); err != nil {
		return domain.Loan{}, err
	}
	if err := calculation.ValidateLoan(loan); err != nil {
		return domain.Loan{}, err
	}
	loan = s.LoanEngine.WithDerivedPayment(loan)
	saved, err := s.Loans.SaveLoan(ctx, loan)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("failed to update loan %s: %w", loan.ID, err)
	}
	if err := s.storeProjection(ctx, saved); err != nil {
		return domain.Loan{}, err
	}
	return saved, nil
}

func (s *AssetService) storeProjection(ctx context.Context, loan domain.Loan) error {
	projection, err := s.LoanEngine.GenerateBalanceProjection(loan)
	if err != nil {
		return fmt.Errorf("loan %s: %w", loan.ID, err)
	}
	if err := s.Loans.SaveProjection(ctx, loan.ID, projection); err != nil {
		return fmt.Errorf("failed to save projection for loan %s: %w", loan.ID, err)
	}
	return nil
}

// ListLoans returns every loan with RemainingBalance taken from the latest projected
// payment in the current month, when there is one.
func (s *AssetService) ListLoans(ctx context.Context) ([]domain.Loan, error) {
	loans, err := s.Loans.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i, loan := range loans {
		projection, err := s.Loans.GetProjection(ctx, loan.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if balance, ok := currentMonthBalance(projection, now.Year(), int(now.Month())); ok {
			loans[i].RemainingBalance = balance
		}
	}
	return loans, nil
}

func currentMonthBalance(projection []domain.BalanceProjection, year, month int) (decimal.Decimal, bool) {
	var (
		found  bool
		latest domain.BalanceProjection
	)
	for _, p := range projection {
		if p.PaymentDate.Year() != year || int(p.PaymentDate.Month()) != month {
			continue
		}
		if !found || p.PaymentDate.After(latest.PaymentDate.Time) {
			latest = p
			found = true
		}
	}
	return latest.RemainingValue, found
}

// LoanSchedule returns the full amortization schedule of a stored loan.
func (s *AssetService) LoanSchedule(ctx context.Context, loanID string) ([]domain.AmortizationLine, error) {
	loan, err := s.Loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.LoanEngine.GenerateAmortizationSchedule(loan)
}

// PayoffLoan reports the amount needed to retire a stored loan on payoffDate.
func (s *AssetService) PayoffLoan(ctx context.Context, loanID, payoffDate string, penaltyRate decimal.Decimal) (domain.PayoffReport, error) {
	loan, err := s.Loans.GetLoan(ctx, loanID)
	if err != nil {
		return domain.PayoffReport{}, err
	}
	return s.LoanEngine.CalculateLoanPayoff(loan, payoffDate, penaltyRate)
}
