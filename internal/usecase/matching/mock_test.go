package matching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/domain/notification"
	"lendmatch/internal/domain/uow"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/testutil/borrowermock"
	"lendmatch/internal/testutil/lendermock"
	"lendmatch/internal/testutil/loanmock"
	"lendmatch/internal/testutil/matchmock"
	"lendmatch/internal/testutil/uowmock"
	"lendmatch/internal/usecase/ledger"
)

const mockLoanID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

type mocks struct {
	loans     *loanmock.Repo
	lenders   *lendermock.Repo
	matches   *matchmock.Repo
	borrowers *borrowermock.Repo
	notify    *fakeDispatcher
	moves     []string
}

func newMocks(l *loan.Loan) *mocks {
	m := &mocks{
		lenders:   &lendermock.Repo{},
		matches:   &matchmock.Repo{},
		borrowers: &borrowermock.Repo{},
		notify:    &fakeDispatcher{},
	}
	m.loans = &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, id string) (*loan.Loan, error) {
			cp := *l
			return &cp, nil
		},
		GetByLoanIDForUpdateFn: func(ctx context.Context, id string) (*loan.Loan, error) {
			cp := *l
			return &cp, nil
		},
		TransitionStatusFn: func(ctx context.Context, id uint64, from []loan.MatchStatus, to loan.MatchStatus) (bool, error) {
			m.moves = append(m.moves, string(from[0])+">"+string(to))
			return true, nil
		},
	}
	return m
}

func (m *mocks) usecase(t *testing.T, c Committer) *Usecase {
	return NewUsecase(Deps{
		Loans:     m.loans,
		Lenders:   m.lenders,
		Matches:   m.matches,
		Borrowers: m.borrowers,
		UoW:       uowmock.Passthrough(uow.Repos{Loans: m.loans, Lenders: m.lenders, Matches: m.matches}),
		Ledger:    c,
		Notifier:  m.notify,
		Log:       logger.NewTestLogger(t),
	}, Config{})
}

func unmatchedLoan() *loan.Loan {
	return &loan.Loan{
		ID:           5,
		LoanID:       mockLoanID,
		BorrowerID:   "b1",
		Amount:       decimal.NewFromInt(100),
		CountryCode:  "ID",
		Installments: 1,
		MatchStatus:  loan.StatusUnmatched,
	}
}

func noCommit(t *testing.T) Committer {
	return committerFunc(func(ctx context.Context, c ledger.Claim) (ledger.Result, error) {
		t.Fatal("ledger must not be called")
		return ledger.Result{}, nil
	})
}

func TestMock_StartMatching_ProfileErrorRevertsToUnmatched(t *testing.T) {
	m := newMocks(unmatchedLoan())
	boom := errors.New("profile store down")
	m.borrowers.GetProfileFn = func(ctx context.Context, id string) (*borrower.Profile, error) { return nil, boom }

	_, err := m.usecase(t, noCommit(t)).StartMatching(context.Background(), mockLoanID)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "borrower profile") {
		t.Fatalf("want wrapped profile error, got %v", err)
	}
	if got := strings.Join(m.moves, ","); got != "unmatched>matching,matching>unmatched" {
		t.Fatalf("transitions = %s", got)
	}
	if len(m.notify.intents) != 0 {
		t.Fatalf("no intents expected, got %d", len(m.notify.intents))
	}
}

func TestMock_StartMatching_PersistFailureReverts(t *testing.T) {
	m := newMocks(unmatchedLoan())
	user := "l1"
	m.lenders.ListActiveFn = func(ctx context.Context) ([]*lender.Preference, error) {
		return []*lender.Preference{{
			ID: 1, UserID: &user, CapitalPool: decimal.NewFromInt(1000), IsActive: true,
			InterestRate: decimal.NewFromInt(10), AllowFirstTime: true,
		}}, nil
	}
	boom := errors.New("insert failed")
	m.matches.CreateBatchFn = func(ctx context.Context, recs []*match.Record) error {
		if len(recs) != 1 || recs[0].LenderID != "l1" || recs[0].Attempt != 1 {
			t.Fatalf("unexpected batch: %+v", recs)
		}
		return boom
	}

	_, err := m.usecase(t, noCommit(t)).StartMatching(context.Background(), mockLoanID)
	if !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
	if got := strings.Join(m.moves, ","); got != "unmatched>matching,matching>unmatched" {
		t.Fatalf("transitions = %s", got)
	}
}

func TestMock_StartMatching_LostRaceReturnsCurrentRound(t *testing.T) {
	l := unmatchedLoan()
	m := newMocks(l)
	m.loans.TransitionStatusFn = func(ctx context.Context, id uint64, from []loan.MatchStatus, to loan.MatchStatus) (bool, error) {
		// another request moved the loan first
		l.MatchStatus = loan.StatusMatching
		l.MatchAttempts = 1
		return false, nil
	}
	m.lenders.ListActiveFn = func(ctx context.Context) ([]*lender.Preference, error) {
		t.Fatal("catalogue must not be read by the losing request")
		return nil, nil
	}
	m.matches.ListByLoanFn = func(ctx context.Context, id uint64) ([]*match.Record, error) {
		return []*match.Record{
			{MatchID: "m1", Attempt: 1, Rank: 1, Status: match.StatusPending},
			{MatchID: "m0", Attempt: 0, Rank: 1, Status: match.StatusExpired},
		}, nil
	}

	res, err := m.usecase(t, noCommit(t)).StartMatching(context.Background(), mockLoanID)
	if err != nil {
		t.Fatalf("StartMatching: %v", err)
	}
	if res.Status != string(loan.StatusMatching) || res.Attempt != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Matches) != 1 || res.Matches[0].MatchID != "m1" {
		t.Fatalf("want current round only, got %+v", res.Matches)
	}
	if len(res.Notifications) != 0 || len(m.notify.intents) != 0 {
		t.Fatal("losing request must not notify")
	}
}

func TestMock_StartMatching_ClaimLostKeepsWinnerRound(t *testing.T) {
	l := unmatchedLoan()
	m := newMocks(l)
	m.loans.ClaimRoundFn = func(ctx context.Context, id uint64, attempt int) (bool, error) {
		// a concurrent rematch persisted this attempt first
		l.MatchStatus = loan.StatusMatching
		l.MatchAttempts = attempt
		return false, nil
	}
	m.matches.CreateBatchFn = func(ctx context.Context, recs []*match.Record) error {
		t.Fatal("records must not be written after a lost claim")
		return nil
	}
	m.matches.ListByLoanFn = func(ctx context.Context, id uint64) ([]*match.Record, error) {
		return []*match.Record{{MatchID: "w1", Attempt: 1, Rank: 1, Status: match.StatusPending}}, nil
	}

	res, err := m.usecase(t, noCommit(t)).StartMatching(context.Background(), mockLoanID)
	if err != nil {
		t.Fatalf("StartMatching: %v", err)
	}
	if res.Status != string(loan.StatusMatching) || len(res.Matches) != 1 || res.Matches[0].MatchID != "w1" {
		t.Fatalf("want winner round, got %+v", res)
	}
	if got := strings.Join(m.moves, ","); got != "unmatched>matching" {
		t.Fatalf("loan must not be reverted, transitions = %s", got)
	}
}

func TestMock_Rematch_StaleAttemptIsRejected(t *testing.T) {
	l := unmatchedLoan()
	l.MatchStatus = loan.StatusNoMatch
	l.MatchAttempts = 1
	m := newMocks(l)
	m.loans.GetByLoanIDForUpdateFn = func(ctx context.Context, id string) (*loan.Loan, error) {
		cp := *l
		cp.MatchAttempts = 2
		return &cp, nil
	}

	_, err := m.usecase(t, noCommit(t)).Rematch(context.Background(), mockLoanID)
	if !errors.Is(err, loan.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	if len(m.moves) != 0 {
		t.Fatalf("no transition expected, got %v", m.moves)
	}
}

func TestMock_AcceptOffer_LedgerErrorPropagates(t *testing.T) {
	l := unmatchedLoan()
	l.MatchStatus = loan.StatusMatching
	m := newMocks(l)
	m.matches.GetByMatchIDFn = func(ctx context.Context, id string) (*match.Record, error) {
		return &match.Record{
			ID: 3, MatchID: id, LoanID: l.ID, Attempt: 1, LenderKind: "individual", LenderID: "l1",
			Status: match.StatusPending, ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	m.loans.GetByIDFn = func(ctx context.Context, id uint64) (*loan.Loan, error) {
		cp := *l
		return &cp, nil
	}
	boom := errors.New("deadlock")
	c := committerFunc(func(ctx context.Context, cl ledger.Claim) (ledger.Result, error) {
		if cl.Status != match.StatusAccepted || !cl.ExpectedAmount.Equal(l.Amount) {
			t.Fatalf("unexpected claim: %+v", cl)
		}
		return ledger.Result{}, boom
	})

	_, err := m.usecase(t, c).AcceptOffer(context.Background(), OfferInput{MatchID: "m1", LenderKind: "individual", LenderID: "l1"})
	if !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
	if len(m.notify.intents) != 0 {
		t.Fatal("failed accept must not notify")
	}
}

func TestMock_AcceptOffer_ExpiresDuringCommit(t *testing.T) {
	l := unmatchedLoan()
	l.MatchStatus = loan.StatusMatching
	m := newMocks(l)
	clock := time.Now().UTC()
	expiresAt := clock.Add(time.Second)
	m.matches.GetByMatchIDFn = func(ctx context.Context, id string) (*match.Record, error) {
		return &match.Record{
			ID: 3, MatchID: id, LoanID: l.ID, Attempt: 1, LenderKind: "individual", LenderID: "l1",
			Status: match.StatusPending, ExpiresAt: expiresAt,
		}, nil
	}
	m.loans.GetByIDFn = func(ctx context.Context, id uint64) (*loan.Loan, error) {
		cp := *l
		return &cp, nil
	}
	var marked []uint64
	m.matches.MarkExpiredFn = func(ctx context.Context, id uint64, now time.Time) (bool, error) {
		marked = append(marked, id)
		return true, nil
	}
	c := committerFunc(func(ctx context.Context, cl ledger.Claim) (ledger.Result, error) {
		clock = expiresAt
		return ledger.Result{}, match.ErrUnavailable
	})
	uc := m.usecase(t, c)
	uc.now = func() time.Time { return clock }

	_, err := uc.AcceptOffer(context.Background(), OfferInput{MatchID: "m1", LenderKind: "individual", LenderID: "l1"})
	if !errors.Is(err, match.ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
	if len(marked) != 1 || marked[0] != 3 {
		t.Fatalf("record not marked expired: %v", marked)
	}
}

func TestMock_AcceptOffer_AnsweredDuringCommitIsUnavailable(t *testing.T) {
	l := unmatchedLoan()
	l.MatchStatus = loan.StatusMatching
	m := newMocks(l)
	m.matches.GetByMatchIDFn = func(ctx context.Context, id string) (*match.Record, error) {
		return &match.Record{
			ID: 3, MatchID: id, LoanID: l.ID, Attempt: 1, LenderKind: "individual", LenderID: "l1",
			Status: match.StatusPending, ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	m.loans.GetByIDFn = func(ctx context.Context, id uint64) (*loan.Loan, error) {
		cp := *l
		return &cp, nil
	}
	c := committerFunc(func(ctx context.Context, cl ledger.Claim) (ledger.Result, error) {
		return ledger.Result{}, match.ErrUnavailable
	})

	_, err := m.usecase(t, c).AcceptOffer(context.Background(), OfferInput{MatchID: "m1", LenderKind: "individual", LenderID: "l1"})
	if !errors.Is(err, match.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestMock_SweepExpired_CountsFailures(t *testing.T) {
	owner := "someone"
	assigned := &loan.Loan{ID: 1, LoanID: "x1", MatchStatus: loan.StatusMatching, MatchAttempts: 1, LenderUserID: &owner}
	open := unmatchedLoan()
	open.MatchStatus = loan.StatusMatching
	open.MatchAttempts = 1

	m := newMocks(open)
	m.matches.ExpireBeforeFn = func(ctx context.Context, now time.Time) (int64, error) { return 3, nil }
	m.loans.ListAwaitingRematchFn = func(ctx context.Context, limit int) ([]*loan.Loan, error) {
		if limit != 20 {
			t.Fatalf("limit = %d", limit)
		}
		return []*loan.Loan{assigned, open}, nil
	}

	out, err := m.usecase(t, noCommit(t)).SweepExpired(context.Background(), 20)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if out.Expired != 3 || out.Rematched != 1 || out.Failed != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
	// empty catalogue: the open loan ends in no_match and the borrower hears about it once
	if got := strings.Join(m.moves, ","); got != "matching>matching,matching>no_match" {
		t.Fatalf("transitions = %s", got)
	}
	if len(m.notify.intents) != 1 || m.notify.intents[0].Kind != notification.KindBorrowerNoMatch {
		t.Fatalf("unexpected intents: %+v", m.notify.intents)
	}
	if !m.notify.intents[0].FirstTimeBorrower {
		t.Fatal("unknown borrower counts as first-time")
	}
}
