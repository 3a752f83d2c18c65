package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lendmatch/internal/adapter/repository/mysql"
	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/domain/notification"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/testutil/sqlitedb"
	"lendmatch/internal/usecase/ledger"
	"lendmatch/pkg/id"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeDispatcher struct {
	mu      sync.Mutex
	intents []notification.Intent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, intents ...notification.Intent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, intents...)
}

func (f *fakeDispatcher) kinds() map[notification.Kind]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[notification.Kind]int{}
	for _, in := range f.intents {
		out[in.Kind]++
	}
	return out
}

// committerFunc lets a test intercept ledger commits.
type committerFunc func(ctx context.Context, c ledger.Claim) (ledger.Result, error)

func (f committerFunc) TryAssign(ctx context.Context, c ledger.Claim) (ledger.Result, error) {
	return f(ctx, c)
}

type env struct {
	db     *gorm.DB
	uc     *Usecase
	ledger *ledger.Ledger
	notify *fakeDispatcher
	clock  time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := sqlitedb.Open(t)
	e := &env{db: db, notify: &fakeDispatcher{}, clock: time.Now().UTC()}
	u := mysql.NewGormUoW(db)
	e.ledger = ledger.New(u)
	e.uc = NewUsecase(Deps{
		Loans:     mysql.NewLoanRepository(db),
		Lenders:   mysql.NewLenderRepository(db),
		Matches:   mysql.NewMatchRepository(db),
		Borrowers: mysql.NewBorrowerRepository(db),
		UoW:       u,
		Ledger:    e.ledger,
		Notifier:  e.notify,
		Log:       logger.NewTestLogger(t),
	}, Config{FanOut: 5, OfferTTL: 24 * time.Hour, ReviewURLBase: "https://ops.example.com/review/"})
	e.uc.now = func() time.Time { return e.clock }
	return e
}

func (e *env) loan(t *testing.T, borrowerID, amount string) *loan.Loan {
	t.Helper()
	l := &loan.Loan{
		LoanID:       id.NewID32(),
		BorrowerID:   borrowerID,
		Amount:       dec(amount),
		Currency:     "IDR",
		CountryCode:  "ID",
		StateCode:    "JK",
		LoanType:     "working_capital",
		Installments: 2,
		MatchStatus:  loan.StatusUnmatched,
	}
	require.NoError(t, e.db.Create(l).Error)
	for i := 1; i <= l.Installments; i++ {
		require.NoError(t, e.db.Create(&loan.Schedule{LoanID: l.ID, InstallmentNo: i, Status: loan.ScheduleStatusPending}).Error)
	}
	return l
}

func (e *env) profile(t *testing.T, borrowerID, tier string, completed int) {
	t.Helper()
	require.NoError(t, e.db.Create(&borrower.Profile{BorrowerID: borrowerID, TrustTier: tier, CompletedLoans: completed}).Error)
}

func (e *env) individual(t *testing.T, userID, pool, reserved string, mutate ...func(*lender.Preference)) *lender.Preference {
	t.Helper()
	p := &lender.Preference{
		UserID:          &userID,
		CapitalPool:     dec(pool),
		CapitalReserved: dec(reserved),
		IsActive:        true,
		InterestRate:    dec("10"),
		AllowFirstTime:  true,
	}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *env) reload(t *testing.T, l *loan.Loan) *loan.Loan {
	t.Helper()
	var out loan.Loan
	require.NoError(t, e.db.First(&out, l.ID).Error)
	return &out
}

func (e *env) reserved(t *testing.T, p *lender.Preference) decimal.Decimal {
	t.Helper()
	var out lender.Preference
	require.NoError(t, e.db.First(&out, p.ID).Error)
	return out.CapitalReserved
}

func (e *env) record(t *testing.T, matchID string) *match.Record {
	t.Helper()
	var out match.Record
	require.NoError(t, e.db.Where("match_id = ?", matchID).First(&out).Error)
	return &out
}

func autoAccept(p *lender.Preference) { p.AutoAccept = true }

// catalogueHook runs before once, ahead of the first catalogue read.
type catalogueHook struct {
	lender.Repository
	fired  bool
	before func()
}

func (h *catalogueHook) ListActive(ctx context.Context) ([]*lender.Preference, error) {
	if !h.fired {
		h.fired = true
		h.before()
	}
	return h.Repository.ListActive(ctx)
}
