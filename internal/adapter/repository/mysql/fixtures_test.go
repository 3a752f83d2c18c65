package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lendmatch/internal/domain/lender"
	loanDomain "lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/pkg/id"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strp(s string) *string { return &s }

func seedLoan(t *testing.T, db *gorm.DB, amount string, installments int) *loanDomain.Loan {
	t.Helper()
	l := &loanDomain.Loan{
		LoanID:       id.NewID32(),
		BorrowerID:   id.NewID32(),
		Amount:       dec(amount),
		Currency:     "IDR",
		CountryCode:  "ID",
		StateCode:    "JK",
		LoanType:     "working_capital",
		Installments: installments,
		MatchStatus:  loanDomain.StatusUnmatched,
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	for i := 1; i <= installments; i++ {
		s := &loanDomain.Schedule{
			LoanID:        l.ID,
			InstallmentNo: i,
			DueDate:       time.Now().UTC().AddDate(0, i, 0),
			Status:        loanDomain.ScheduleStatusPending,
		}
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed schedule: %v", err)
		}
	}
	return l
}

func seedPreference(t *testing.T, db *gorm.DB, userID string, pool, reserved string) *lender.Preference {
	t.Helper()
	p := &lender.Preference{
		UserID:          strp(userID),
		CapitalPool:     dec(pool),
		CapitalReserved: dec(reserved),
		IsActive:        true,
		InterestRate:    dec("10"),
		AllowFirstTime:  true,
		Countries:       []string{"ID"},
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed preference: %v", err)
	}
	return p
}

func seedRecord(t *testing.T, db *gorm.DB, loanID, prefID uint64, attempt, rank int, expiresAt time.Time) *match.Record {
	t.Helper()
	r := &match.Record{
		MatchID:      id.NewID32(),
		LoanID:       loanID,
		Attempt:      attempt,
		PreferenceID: prefID,
		LenderKind:   string(lender.KindIndividual),
		LenderID:     id.NewID32(),
		Rank:         rank,
		Score:        80,
		InterestRate: dec("10"),
		Status:       match.StatusPending,
		ExpiresAt:    expiresAt,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return r
}
