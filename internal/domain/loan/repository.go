package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Assignment is the conditional write performed by the capital ledger.
type Assignment struct {
	LoanID           uint64
	ExpectedAmount   decimal.Decimal
	MatchID          uint64
	LenderUserID     *string
	LenderBusinessID *string
	Repayment        Repayment
	At               time.Time
}

type Repository interface {
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate row-locks the loan for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// ClaimRound bumps match_attempts to attempt for an unassigned loan in
	// matching whose counter is still attempt-1. It reports false when another
	// round got there first.
	ClaimRound(ctx context.Context, id uint64, attempt int) (bool, error)
	RecordRound(ctx context.Context, id uint64, attempt int, topMatchID *uint64) error

	// TransitionStatus moves an unassigned loan from any of `from` to `to`.
	// It reports false when no row matched.
	TransitionStatus(ctx context.Context, id uint64, from []MatchStatus, to MatchStatus) (bool, error)
	// Assign sets the lender reference only if none is set and the amount is unchanged.
	Assign(ctx context.Context, a Assignment) (bool, error)
	UpdatePendingSchedule(ctx context.Context, loanID uint64, perInstallment decimal.Decimal) (int64, error)
	// ListAwaitingRematch returns unassigned loans in matching with no pending offer left.
	ListAwaitingRematch(ctx context.Context, limit int) ([]*Loan, error)
}
