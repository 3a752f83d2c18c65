package match

import (
	"context"
	"time"
)

type Repository interface {
	CreateBatch(ctx context.Context, recs []*Record) error
	GetByMatchID(ctx context.Context, matchID string) (*Record, error)
	GetByID(ctx context.Context, id uint64) (*Record, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]*Record, error)

	// Accept moves a pending, unexpired record to to. False when the condition failed.
	Accept(ctx context.Context, id uint64, to Status, now time.Time) (bool, error)
	Decline(ctx context.Context, id uint64, reason string, now time.Time) (bool, error)
	MarkExpired(ctx context.Context, id uint64, now time.Time) (bool, error)
	// ExpireBefore marks every pending record with expires_at <= now as expired.
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)

	CountPending(ctx context.Context, loanID uint64, attempt int) (int64, error)
	DeclinedPreferenceIDs(ctx context.Context, loanID uint64) ([]uint64, error)
}
