package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/domain/uow"
	"lendmatch/internal/testutil/lendermock"
	"lendmatch/internal/testutil/loanmock"
	"lendmatch/internal/testutil/matchmock"
	"lendmatch/internal/testutil/uowmock"
)

// unlocked builds a ledger whose loan read returns an unassigned row while the
// swap finds current, as on a store without row locks.
func unlocked(t *testing.T, current *loan.Loan) *Ledger {
	t.Helper()
	loans := &loanmock.Repo{
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*loan.Loan, error) {
			return &loan.Loan{ID: id, Amount: dec("500"), Installments: 1, MatchStatus: loan.StatusMatching}, nil
		},
		AssignFn: func(ctx context.Context, a loan.Assignment) (bool, error) { return false, nil },
		GetByIDFn: func(ctx context.Context, id uint64) (*loan.Loan, error) {
			return current, nil
		},
	}
	lenders := &lendermock.Repo{
		ReserveFn: func(ctx context.Context, id uint64, amount decimal.Decimal) (bool, error) {
			t.Fatal("capital must not be reserved after a failed swap")
			return false, nil
		},
	}
	return New(uowmock.Passthrough(uow.Repos{Loans: loans, Lenders: lenders, Matches: &matchmock.Repo{}}))
}

func claimFor(kind lender.Kind) Claim {
	return Claim{
		LoanID:         7,
		ExpectedAmount: dec("500"),
		Record:         &match.Record{ID: 1, MatchID: "m1", LenderKind: string(kind), LenderID: "a", InterestRate: dec("10")},
		Status:         match.StatusAccepted,
		At:             time.Now().UTC(),
	}
}

func TestTryAssign_UnlockedLostRaceReportsAlreadyAssigned(t *testing.T) {
	winner := "b"
	g := unlocked(t, &loan.Loan{ID: 7, Amount: dec("500"), LenderUserID: &winner})

	res, err := g.TryAssign(context.Background(), claimFor(lender.KindIndividual))
	require.NoError(t, err)
	assert.Equal(t, AlreadyAssigned, res.Outcome)
}

func TestTryAssign_UnlockedEditedAmountIsStale(t *testing.T) {
	g := unlocked(t, &loan.Loan{ID: 7, Amount: dec("450")})

	_, err := g.TryAssign(context.Background(), claimFor(lender.KindBusiness))
	assert.ErrorIs(t, err, loan.ErrStale)
}
