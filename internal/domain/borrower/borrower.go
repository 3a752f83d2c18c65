package borrower

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("borrower profile not found")

// Profile is the read-only trust view of a borrower maintained elsewhere.
type Profile struct {
	BorrowerID     string `gorm:"primaryKey;column:borrower_id;size:32"`
	TrustTier      string `gorm:"column:trust_tier;size:32"`
	CompletedLoans int    `gorm:"column:completed_loans;not null;default:0"`
}

func (Profile) TableName() string { return "borrower_profiles" }

func (p *Profile) FirstTime() bool { return p.CompletedLoans == 0 }

// Anonymous is the profile assumed when none is stored: no tier, first-time.
func Anonymous(borrowerID string) *Profile {
	return &Profile{BorrowerID: borrowerID}
}

type Repository interface {
	GetProfile(ctx context.Context, borrowerID string) (*Profile, error)
}
