package lender

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	GetByID(ctx context.Context, id uint64) (*Preference, error)
	ListActive(ctx context.Context) ([]*Preference, error)
	ListTierPolicies(ctx context.Context) ([]*TierPolicy, error)
	ListLoanTypes(ctx context.Context) ([]*LoanTypeSupport, error)

	// Reserve adds amount to capital_reserved only while pool - reserved >= amount.
	Reserve(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error)
}
