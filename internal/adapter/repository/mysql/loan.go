package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
)

const unassigned = "lender_user_id IS NULL AND lender_business_id IS NULL"

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) TransitionStatus(ctx context.Context, id uint64, from []loanDomain.MatchStatus, to loanDomain.MatchStatus) (bool, error) {
	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("id = ? AND match_status IN ? AND "+unassigned, id, states).
		Updates(map[string]any{
			"match_status":      string(to),
			"status_updated_at": time.Now().UTC(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *LoanRepository) ClaimRound(ctx context.Context, id uint64, attempt int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("id = ? AND match_status = ? AND match_attempts = ? AND "+unassigned,
			id, string(loanDomain.StatusMatching), attempt-1).
		Update("match_attempts", attempt)
	return res.RowsAffected == 1, res.Error
}

// RecordRound stores the attempt counter and top-ranked record of a new round.
func (r *LoanRepository) RecordRound(ctx context.Context, id uint64, attempt int, topMatchID *uint64) error {
	return r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"match_attempts":   attempt,
			"current_match_id": topMatchID,
		}).Error
}

// Assign is the compare-and-swap on the loan's lender reference.
func (r *LoanRepository) Assign(ctx context.Context, a loanDomain.Assignment) (bool, error) {
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("id = ? AND "+unassigned+" AND amount = CAST(? AS DECIMAL(18,2))", a.LoanID, a.ExpectedAmount).
		Updates(map[string]any{
			"lender_user_id":     a.LenderUserID,
			"lender_business_id": a.LenderBusinessID,
			"current_match_id":   a.MatchID,
			"match_status":       string(loanDomain.StatusMatched),
			"interest_rate":      a.Repayment.Rate,
			"total_interest":     a.Repayment.TotalInterest,
			"total_amount":       a.Repayment.TotalAmount,
			"repayment_amount":   a.Repayment.PerInstallment,
			"matched_at":         a.At,
			"status_updated_at":  a.At,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *LoanRepository) UpdatePendingSchedule(ctx context.Context, loanID uint64, perInstallment decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&loanDomain.Schedule{}).
		Where("loan_id = ? AND status = ?", loanID, loanDomain.ScheduleStatusPending).
		Update("amount", perInstallment)
	return res.RowsAffected, res.Error
}

func (r *LoanRepository) ListAwaitingRematch(ctx context.Context, limit int) ([]*loanDomain.Loan, error) {
	pending := r.db.WithContext(ctx).Model(&match.Record{}).
		Select("1").
		Where("match_records.loan_id = loans.id AND match_records.status = ?", string(match.StatusPending))

	var out []*loanDomain.Loan
	q := r.db.WithContext(ctx).
		Where("match_status = ? AND "+unassigned, string(loanDomain.StatusMatching)).
		Where("NOT EXISTS (?)", pending).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
