package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"lendmatch/internal/domain/match"
)

type MatchRepository struct{ db *gorm.DB }

func NewMatchRepository(db *gorm.DB) *MatchRepository { return &MatchRepository{db: db} }

func (r *MatchRepository) CreateBatch(ctx context.Context, recs []*match.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&recs).Error
}

func (r *MatchRepository) GetByMatchID(ctx context.Context, matchID string) (*match.Record, error) {
	var out match.Record
	res := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&out)
	return &out, res.Error
}

func (r *MatchRepository) GetByID(ctx context.Context, id uint64) (*match.Record, error) {
	var out match.Record
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *MatchRepository) ListByLoan(ctx context.Context, loanID uint64) ([]*match.Record, error) {
	var out []*match.Record
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("attempt DESC, `rank` ASC").
		Find(&out)
	return out, res.Error
}

func (r *MatchRepository) pending(ctx context.Context, id uint64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&match.Record{}).
		Where("id = ? AND status = ?", id, string(match.StatusPending))
}

func (r *MatchRepository) Accept(ctx context.Context, id uint64, to match.Status, now time.Time) (bool, error) {
	res := r.pending(ctx, id).
		Where("expires_at > ?", now).
		Updates(map[string]any{"status": string(to), "responded_at": now})
	return res.RowsAffected == 1, res.Error
}

func (r *MatchRepository) Decline(ctx context.Context, id uint64, reason string, now time.Time) (bool, error) {
	res := r.pending(ctx, id).
		Updates(map[string]any{
			"status":         string(match.StatusDeclined),
			"decline_reason": reason,
			"responded_at":   now,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *MatchRepository) MarkExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	res := r.pending(ctx, id).
		Updates(map[string]any{"status": string(match.StatusExpired), "responded_at": now})
	return res.RowsAffected == 1, res.Error
}

func (r *MatchRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&match.Record{}).
		Where("status = ? AND expires_at <= ?", string(match.StatusPending), now).
		Updates(map[string]any{"status": string(match.StatusExpired), "responded_at": now})
	return res.RowsAffected, res.Error
}

func (r *MatchRepository) CountPending(ctx context.Context, loanID uint64, attempt int) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&match.Record{}).
		Where("loan_id = ? AND attempt = ? AND status = ?", loanID, attempt, string(match.StatusPending)).
		Count(&n)
	return n, res.Error
}

func (r *MatchRepository) DeclinedPreferenceIDs(ctx context.Context, loanID uint64) ([]uint64, error) {
	var ids []uint64
	res := r.db.WithContext(ctx).Model(&match.Record{}).
		Where("loan_id = ? AND status = ?", loanID, string(match.StatusDeclined)).
		Distinct().
		Order("preference_id ASC").
		Pluck("preference_id", &ids)
	return ids, res.Error
}
