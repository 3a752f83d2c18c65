package loanmock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	domain "lendmatch/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads without a func return errUnimplemented; writes default to success.
type Repo struct {
	GetByLoanIDFn           func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDFn               func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn      func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByLoanIDForUpdateFn  func(ctx context.Context, loanID string) (*domain.Loan, error)
	ClaimRoundFn            func(ctx context.Context, id uint64, attempt int) (bool, error)
	RecordRoundFn           func(ctx context.Context, id uint64, attempt int, topMatchID *uint64) error
	TransitionStatusFn      func(ctx context.Context, id uint64, from []domain.MatchStatus, to domain.MatchStatus) (bool, error)
	AssignFn                func(ctx context.Context, a domain.Assignment) (bool, error)
	UpdatePendingScheduleFn func(ctx context.Context, loanID uint64, perInstallment decimal.Decimal) (int64, error)
	ListAwaitingRematchFn   func(ctx context.Context, limit int) ([]*domain.Loan, error)
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ClaimRound(ctx context.Context, id uint64, attempt int) (bool, error) {
	if m.ClaimRoundFn != nil {
		return m.ClaimRoundFn(ctx, id, attempt)
	}
	return true, nil
}

func (m *Repo) RecordRound(ctx context.Context, id uint64, attempt int, topMatchID *uint64) error {
	if m.RecordRoundFn != nil {
		return m.RecordRoundFn(ctx, id, attempt, topMatchID)
	}
	return nil
}

func (m *Repo) TransitionStatus(ctx context.Context, id uint64, from []domain.MatchStatus, to domain.MatchStatus) (bool, error) {
	if m.TransitionStatusFn != nil {
		return m.TransitionStatusFn(ctx, id, from, to)
	}
	return true, nil
}

func (m *Repo) Assign(ctx context.Context, a domain.Assignment) (bool, error) {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, a)
	}
	return true, nil
}

func (m *Repo) UpdatePendingSchedule(ctx context.Context, loanID uint64, perInstallment decimal.Decimal) (int64, error) {
	if m.UpdatePendingScheduleFn != nil {
		return m.UpdatePendingScheduleFn(ctx, loanID, perInstallment)
	}
	return 0, nil
}

func (m *Repo) ListAwaitingRematch(ctx context.Context, limit int) ([]*domain.Loan, error) {
	if m.ListAwaitingRematchFn != nil {
		return m.ListAwaitingRematchFn(ctx, limit)
	}
	return nil, nil
}
