package borrowermock

import (
	"context"

	"gorm.io/gorm"

	"lendmatch/internal/domain/borrower"
)

var _ borrower.Repository = (*Repo)(nil)

// Repo is a function-backed mock of borrower.Repository. Without a func
// every borrower is unknown.
type Repo struct {
	GetProfileFn func(ctx context.Context, borrowerID string) (*borrower.Profile, error)
}

func (m *Repo) GetProfile(ctx context.Context, borrowerID string) (*borrower.Profile, error) {
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, borrowerID)
	}
	return nil, gorm.ErrRecordNotFound
}
