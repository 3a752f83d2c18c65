package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lendmatch/internal/domain/lender"
)

type LenderRepository struct{ db *gorm.DB }

func NewLenderRepository(db *gorm.DB) *LenderRepository { return &LenderRepository{db: db} }

func (r *LenderRepository) GetByID(ctx context.Context, id uint64) (*lender.Preference, error) {
	var out lender.Preference
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *LenderRepository) ListActive(ctx context.Context) ([]*lender.Preference, error) {
	var out []*lender.Preference
	res := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LenderRepository) ListTierPolicies(ctx context.Context) ([]*lender.TierPolicy, error) {
	var out []*lender.TierPolicy
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LenderRepository) ListLoanTypes(ctx context.Context) ([]*lender.LoanTypeSupport, error) {
	var out []*lender.LoanTypeSupport
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

// Reserve is a single conditional update so reserved capital can never
// exceed the pool, whatever the interleaving of callers.
func (r *LenderRepository) Reserve(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&lender.Preference{}).
		Where("id = ? AND capital_pool - capital_reserved >= CAST(? AS DECIMAL(18,2))", id, amount).
		Update("capital_reserved", gorm.Expr("capital_reserved + CAST(? AS DECIMAL(18,2))", amount))
	return res.RowsAffected == 1, res.Error
}
