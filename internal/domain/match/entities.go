package match

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusAccepted     Status = "accepted"
	StatusAutoAccepted Status = "auto_accepted"
	StatusDeclined     Status = "declined"
	StatusExpired      Status = "expired"
)

// Won reports whether the status is one of the two assignment outcomes.
func (s Status) Won() bool { return s == StatusAccepted || s == StatusAutoAccepted }

// Record is one candidate lender offered a loan in one matching round.
type Record struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	MatchID       string          `gorm:"column:match_id;size:32;uniqueIndex:ux_match_records_match_id" json:"match_id"`
	LoanID        uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_match_round_pref;index:idx_match_loan_status" json:"-"`
	Attempt       int             `gorm:"column:attempt;not null;uniqueIndex:ux_match_round_pref" json:"attempt"`
	PreferenceID  uint64          `gorm:"column:preference_id;not null;uniqueIndex:ux_match_round_pref" json:"-"`
	LenderKind    string          `gorm:"column:lender_kind;size:16;not null" json:"lender_kind"`
	LenderID      string          `gorm:"column:lender_id;size:32;not null" json:"lender_id"`
	Rank          int             `gorm:"column:rank;not null" json:"rank"`
	Score         int             `gorm:"column:score;not null" json:"score"`
	InterestRate  decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,2);not null" json:"interest_rate"`
	Status        Status          `gorm:"column:status;size:16;not null;default:'pending';index:idx_match_loan_status;index:idx_match_status_expiry" json:"status"`
	ExpiresAt     time.Time       `gorm:"column:expires_at;not null;index:idx_match_status_expiry" json:"expires_at"`
	RespondedAt   *time.Time      `gorm:"column:responded_at" json:"responded_at,omitempty"`
	DeclineReason string          `gorm:"column:decline_reason;size:255" json:"decline_reason,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string { return "match_records" }

// Offeree reports whether kind/id identify the lender this record was offered to.
func (r *Record) Offeree(kind, id string) bool {
	return r.LenderKind == kind && r.LenderID == id
}

// Expired reports whether the offer window closed at or before now.
func (r *Record) Expired(now time.Time) bool { return !now.Before(r.ExpiresAt) }
