package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	StatusUnmatched MatchStatus = "unmatched"
	StatusMatching  MatchStatus = "matching"
	StatusMatched   MatchStatus = "matched"
	StatusNoMatch   MatchStatus = "no_match"
)

// Loan is a borrower's funding request. It is created by the application flow
// in StatusUnmatched; the matching engine owns every field from MatchStatus down.
type Loan struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID       string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID   string          `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency     string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CountryCode  string          `gorm:"size:2" json:"country_code"`
	StateCode    string          `gorm:"size:8" json:"state_code"`
	LoanType     string          `gorm:"size:32" json:"loan_type"`
	Installments int             `gorm:"not null;default:1" json:"installments"`

	MatchStatus      MatchStatus `gorm:"size:16;not null;default:'unmatched';index" json:"match_status"`
	MatchAttempts    int         `gorm:"not null;default:0" json:"match_attempts"`
	CurrentMatchID   *uint64     `gorm:"column:current_match_id" json:"-"`
	LenderUserID     *string     `gorm:"size:32" json:"lender_user_id,omitempty"`
	LenderBusinessID *string     `gorm:"size:32" json:"lender_business_id,omitempty"`

	InterestRate    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"interest_rate"`
	TotalInterest   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_interest"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	RepaymentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"repayment_amount"`
	MatchedAt       *time.Time      `json:"matched_at,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Assigned reports whether a lender reference is already set.
func (l *Loan) Assigned() bool {
	return l.LenderUserID != nil || l.LenderBusinessID != nil
}

// Schedule is one installment row of a loan's repayment plan.
type Schedule struct {
	ID            uint64          `gorm:"primaryKey;column:id"`
	LoanID        uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_schedule_loan_installment"`
	InstallmentNo int             `gorm:"column:installment_no;not null;uniqueIndex:ux_schedule_loan_installment"`
	DueDate       time.Time       `gorm:"column:due_date;type:date"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null;default:0"`
	Status        string          `gorm:"column:status;size:16;not null;default:'pending'"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (Schedule) TableName() string { return "loan_payment_schedules" }

const ScheduleStatusPending = "pending"
