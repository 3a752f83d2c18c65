package lendermock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"lendmatch/internal/domain/lender"
)

var _ lender.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("lendermock: method not implemented")

// Repo is a function-backed mock of lender.Repository. Unset list funcs
// return an empty catalogue.
type Repo struct {
	GetByIDFn          func(ctx context.Context, id uint64) (*lender.Preference, error)
	ListActiveFn       func(ctx context.Context) ([]*lender.Preference, error)
	ListTierPoliciesFn func(ctx context.Context) ([]*lender.TierPolicy, error)
	ListLoanTypesFn    func(ctx context.Context) ([]*lender.LoanTypeSupport, error)
	ReserveFn          func(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error)
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*lender.Preference, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListActive(ctx context.Context) ([]*lender.Preference, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *Repo) ListTierPolicies(ctx context.Context) ([]*lender.TierPolicy, error) {
	if m.ListTierPoliciesFn != nil {
		return m.ListTierPoliciesFn(ctx)
	}
	return nil, nil
}

func (m *Repo) ListLoanTypes(ctx context.Context) ([]*lender.LoanTypeSupport, error) {
	if m.ListLoanTypesFn != nil {
		return m.ListLoanTypesFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Reserve(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error) {
	if m.ReserveFn != nil {
		return m.ReserveFn(ctx, id, amount)
	}
	return true, nil
}
