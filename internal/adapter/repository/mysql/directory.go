package mysql

import (
	"context"

	"gorm.io/gorm"

	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/notification"
)

// BorrowerRepository reads profiles maintained by the trust service.
type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) GetProfile(ctx context.Context, borrowerID string) (*borrower.Profile, error) {
	var out borrower.Profile
	res := r.db.WithContext(ctx).Where("borrower_id = ?", borrowerID).First(&out)
	return &out, res.Error
}

type ContactRepository struct{ db *gorm.DB }

func NewContactRepository(db *gorm.DB) *ContactRepository { return &ContactRepository{db: db} }

func (r *ContactRepository) Lookup(ctx context.Context, p notification.Party) (*notification.Contact, error) {
	var out notification.Contact
	res := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ?", string(p.Kind), p.ID).
		First(&out)
	return &out, res.Error
}
