package uow

import (
	"context"

	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
)

type Repos struct {
	Loans   loan.Repository
	Lenders lender.Repository
	Matches match.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
