package matchmock

import (
	"context"
	"errors"
	"time"

	"lendmatch/internal/domain/match"
)

var _ match.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("matchmock: method not implemented")

// Repo is a function-backed mock of match.Repository.
type Repo struct {
	CreateBatchFn           func(ctx context.Context, recs []*match.Record) error
	GetByMatchIDFn          func(ctx context.Context, matchID string) (*match.Record, error)
	GetByIDFn               func(ctx context.Context, id uint64) (*match.Record, error)
	ListByLoanFn            func(ctx context.Context, loanID uint64) ([]*match.Record, error)
	AcceptFn                func(ctx context.Context, id uint64, to match.Status, now time.Time) (bool, error)
	DeclineFn               func(ctx context.Context, id uint64, reason string, now time.Time) (bool, error)
	MarkExpiredFn           func(ctx context.Context, id uint64, now time.Time) (bool, error)
	ExpireBeforeFn          func(ctx context.Context, now time.Time) (int64, error)
	CountPendingFn          func(ctx context.Context, loanID uint64, attempt int) (int64, error)
	DeclinedPreferenceIDsFn func(ctx context.Context, loanID uint64) ([]uint64, error)
}

func (m *Repo) CreateBatch(ctx context.Context, recs []*match.Record) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, recs)
	}
	for i, r := range recs {
		if r.ID == 0 {
			r.ID = uint64(i + 1)
		}
	}
	return nil
}

func (m *Repo) GetByMatchID(ctx context.Context, matchID string) (*match.Record, error) {
	if m.GetByMatchIDFn != nil {
		return m.GetByMatchIDFn(ctx, matchID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*match.Record, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]*match.Record, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) Accept(ctx context.Context, id uint64, to match.Status, now time.Time) (bool, error) {
	if m.AcceptFn != nil {
		return m.AcceptFn(ctx, id, to, now)
	}
	return true, nil
}

func (m *Repo) Decline(ctx context.Context, id uint64, reason string, now time.Time) (bool, error) {
	if m.DeclineFn != nil {
		return m.DeclineFn(ctx, id, reason, now)
	}
	return true, nil
}

func (m *Repo) MarkExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	if m.MarkExpiredFn != nil {
		return m.MarkExpiredFn(ctx, id, now)
	}
	return true, nil
}

func (m *Repo) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	if m.ExpireBeforeFn != nil {
		return m.ExpireBeforeFn(ctx, now)
	}
	return 0, nil
}

func (m *Repo) CountPending(ctx context.Context, loanID uint64, attempt int) (int64, error) {
	if m.CountPendingFn != nil {
		return m.CountPendingFn(ctx, loanID, attempt)
	}
	return 0, nil
}

func (m *Repo) DeclinedPreferenceIDs(ctx context.Context, loanID uint64) ([]uint64, error) {
	if m.DeclinedPreferenceIDsFn != nil {
		return m.DeclinedPreferenceIDsFn(ctx, loanID)
	}
	return nil, nil
}
