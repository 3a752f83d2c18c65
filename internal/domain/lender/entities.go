package lender

import (
	"time"

	"github.com/shopspring/decimal"
)

// Preference is the persisted lender preference row. Exactly one of UserID and
// BusinessID is set; use Convert to obtain the typed Lender.
type Preference struct {
	ID              uint64           `gorm:"primaryKey;column:id"`
	UserID          *string          `gorm:"column:user_id;size:32;uniqueIndex:ux_pref_user"`
	BusinessID      *string          `gorm:"column:business_id;size:32;uniqueIndex:ux_pref_business"`
	CapitalPool     decimal.Decimal  `gorm:"column:capital_pool;type:decimal(18,2);not null;default:0"`
	CapitalReserved decimal.Decimal  `gorm:"column:capital_reserved;type:decimal(18,2);not null;default:0"`
	IsActive        bool             `gorm:"column:is_active;not null;index"`
	AutoAccept      bool             `gorm:"column:auto_accept;not null"`
	InterestRate    decimal.Decimal  `gorm:"column:interest_rate;type:decimal(6,2);not null;default:0"`
	MinAmount       decimal.Decimal  `gorm:"column:min_amount;type:decimal(18,2);not null;default:0"`
	MaxAmount       decimal.Decimal  `gorm:"column:max_amount;type:decimal(18,2);not null;default:0"`
	Countries       []string         `gorm:"column:countries;type:text;serializer:json"`
	States          []string         `gorm:"column:states;type:text;serializer:json"`
	AllowFirstTime  bool             `gorm:"column:allow_first_time;not null"`
	FirstTimeLimit  *decimal.Decimal `gorm:"column:first_time_limit;type:decimal(18,2)"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
}

func (Preference) TableName() string { return "lender_preferences" }

// TierPolicy overrides a lender's default rate and limit for one borrower trust tier.
type TierPolicy struct {
	ID            uint64          `gorm:"primaryKey;column:id"`
	OwnerKind     Kind            `gorm:"column:owner_kind;size:16;not null;uniqueIndex:ux_tier_owner"`
	OwnerID       string          `gorm:"column:owner_id;size:32;not null;uniqueIndex:ux_tier_owner"`
	TrustTier     string          `gorm:"column:trust_tier;size:32;not null;uniqueIndex:ux_tier_owner"`
	InterestRate  decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,2);not null"`
	MaxLoanAmount decimal.Decimal `gorm:"column:max_loan_amount;type:decimal(18,2);not null"`
	IsActive      bool            `gorm:"column:is_active;not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (TierPolicy) TableName() string { return "lender_tier_policies" }

func (p TierPolicy) Owner() Ref { return Ref{Kind: p.OwnerKind, ID: p.OwnerID} }

// LoanTypeSupport is one loan type a business lender explicitly funds.
type LoanTypeSupport struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	BusinessID string    `gorm:"column:business_id;size:32;not null;uniqueIndex:ux_business_loan_type"`
	LoanType   string    `gorm:"column:loan_type;size:32;not null;uniqueIndex:ux_business_loan_type"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (LoanTypeSupport) TableName() string { return "business_loan_types" }
