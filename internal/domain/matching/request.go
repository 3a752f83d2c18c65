// Package matching holds the side-effect free part of the engine: policy
// resolution, eligibility, scoring and ranking.
package matching

import (
	"github.com/shopspring/decimal"

	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/loan"
)

// Request is the borrower-side input to one matching round.
type Request struct {
	BorrowerID        string
	Amount            decimal.Decimal
	Country           string
	State             string
	LoanType          string
	TrustTier         string
	FirstTimeBorrower bool
	// Exclude lists preference ids that must not be offered this loan again.
	Exclude []uint64
}

func NewRequest(l *loan.Loan, p *borrower.Profile) Request {
	if p == nil {
		p = borrower.Anonymous(l.BorrowerID)
	}
	return Request{
		BorrowerID:        l.BorrowerID,
		Amount:            l.Amount,
		Country:           l.CountryCode,
		State:             l.StateCode,
		LoanType:          l.LoanType,
		TrustTier:         p.TrustTier,
		FirstTimeBorrower: p.FirstTime(),
	}
}

type Reason string

const (
	ReasonPolicy    Reason = "policy"
	ReasonCapacity  Reason = "capacity"
	ReasonMinAmount Reason = "min_amount"
	ReasonGeography Reason = "geography"
	ReasonFirstTime Reason = "first_time_borrower"
	ReasonLoanType  Reason = "loan_type"
	ReasonSelf      Reason = "self_lending"
	ReasonDeclined  Reason = "declined_before"
)
