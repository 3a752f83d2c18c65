// Package ledger is the single write path that assigns a loan to a lender
// and reserves the lender's capital.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/domain/uow"
	"lendmatch/internal/infrastructure/metrics"
)

type Outcome int

const (
	Assigned Outcome = iota
	AlreadyAssigned
	InsufficientCapital
)

func (o Outcome) String() string {
	switch o {
	case Assigned:
		return "assigned"
	case AlreadyAssigned:
		return "already_assigned"
	case InsufficientCapital:
		return "insufficient_capital"
	}
	return "unknown"
}

// Claim asks the ledger to give LoanID to the lender behind Record.
type Claim struct {
	LoanID uint64
	// ExpectedAmount is the amount the offer was computed for. A loan whose
	// amount differs at commit time is not assigned.
	ExpectedAmount decimal.Decimal
	Record         *match.Record
	Status         match.Status
	At             time.Time
}

type Result struct {
	Outcome   Outcome
	Repayment loan.Repayment
}

type Ledger struct{ uow uow.UnitOfWork }

func New(u uow.UnitOfWork) *Ledger { return &Ledger{uow: u} }

// TryAssign runs every commit-time check and write in one transaction:
// loan compare-and-swap, capital reservation, schedule rewrite, record
// acceptance. Any failed condition rolls the whole unit back.
func (g *Ledger) TryAssign(ctx context.Context, c Claim) (Result, error) {
	if !c.Status.Won() {
		return Result{}, fmt.Errorf("ledger: cannot commit with status %q", c.Status)
	}
	userID, businessID, err := lenderColumns(c.Record)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = g.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, c.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		if l.Assigned() {
			return loan.ErrAlreadyAssigned
		}

		res.Repayment = loan.ComputeRepayment(l.Amount, c.Record.InterestRate, l.Installments)
		ok, err := r.Loans.Assign(ctx, loan.Assignment{
			LoanID:           l.ID,
			ExpectedAmount:   c.ExpectedAmount,
			MatchID:          c.Record.ID,
			LenderUserID:     userID,
			LenderBusinessID: businessID,
			Repayment:        res.Repayment,
			At:               c.At,
		})
		if err != nil {
			return err
		}
		if !ok {
			// without a row lock another commit can land between the read and the swap
			cur, err := r.Loans.GetByID(ctx, l.ID)
			if err != nil {
				return err
			}
			if cur.Assigned() {
				return loan.ErrAlreadyAssigned
			}
			return loan.ErrStale
		}

		ok, err = r.Lenders.Reserve(ctx, c.Record.PreferenceID, l.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return lender.ErrInsufficientCapital
		}

		if _, err := r.Loans.UpdatePendingSchedule(ctx, l.ID, res.Repayment.PerInstallment); err != nil {
			return err
		}

		ok, err = r.Matches.Accept(ctx, c.Record.ID, c.Status, c.At)
		if err != nil {
			return err
		}
		if !ok {
			return match.ErrUnavailable
		}
		return nil
	})

	switch {
	case err == nil:
		res.Outcome = Assigned
	case errors.Is(err, loan.ErrAlreadyAssigned):
		res.Outcome, err = AlreadyAssigned, nil
	case errors.Is(err, lender.ErrInsufficientCapital):
		res.Outcome, err = InsufficientCapital, nil
	default:
		metrics.LedgerCommits.WithLabelValues("error").Inc()
		return Result{}, err
	}
	metrics.LedgerCommits.WithLabelValues(res.Outcome.String()).Inc()
	return res, nil
}

func lenderColumns(rec *match.Record) (user, business *string, err error) {
	id := rec.LenderID
	switch lender.Kind(rec.LenderKind) {
	case lender.KindIndividual:
		return &id, nil, nil
	case lender.KindBusiness:
		return nil, &id, nil
	}
	return nil, nil, fmt.Errorf("match %s: unknown lender kind %q", rec.MatchID, rec.LenderKind)
}
