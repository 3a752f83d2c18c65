package loan

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
)

// Usecase is the read side of the engine: loan status and offer history.
type Usecase struct {
	repo    domain.Repository
	matches match.Repository
}

func NewUsecase(r domain.Repository, m match.Repository) *Usecase {
	return &Usecase{repo: r, matches: m}
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return ToLoanDTO(l), nil
}

// ListMatches returns every record of every round, newest round first.
func (u *Usecase) ListMatches(ctx context.Context, loanID string) ([]MatchDTO, error) {
	l, err := u.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	recs, err := u.matches.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return ToMatchDTOs(recs), nil
}

func (u *Usecase) load(ctx context.Context, loanID string) (*domain.Loan, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}
