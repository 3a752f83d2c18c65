package loan

import (
	"time"

	domain "lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
)

type LoanDTO struct {
	LoanID           string     `json:"loan_id"`
	BorrowerID       string     `json:"borrower_id"`
	Amount           string     `json:"amount"`
	Currency         string     `json:"currency"`
	LoanType         string     `json:"loan_type"`
	Installments     int        `json:"installments"`
	MatchStatus      string     `json:"match_status"`
	MatchAttempts    int        `json:"match_attempts"`
	LenderUserID     *string    `json:"lender_user_id,omitempty"`
	LenderBusinessID *string    `json:"lender_business_id,omitempty"`
	InterestRate     string     `json:"interest_rate,omitempty"`
	TotalInterest    string     `json:"total_interest,omitempty"`
	TotalAmount      string     `json:"total_amount,omitempty"`
	RepaymentAmount  string     `json:"repayment_amount,omitempty"`
	MatchedAt        *time.Time `json:"matched_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type MatchDTO struct {
	MatchID       string     `json:"match_id"`
	Attempt       int        `json:"attempt"`
	Rank          int        `json:"rank"`
	Score         int        `json:"score"`
	LenderKind    string     `json:"lender_kind"`
	LenderID      string     `json:"lender_id"`
	InterestRate  string     `json:"interest_rate"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	DeclineReason string     `json:"decline_reason,omitempty"`
}

func ToLoanDTO(l *domain.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:           l.LoanID,
		BorrowerID:       l.BorrowerID,
		Amount:           l.Amount.StringFixed(2),
		Currency:         l.Currency,
		LoanType:         l.LoanType,
		Installments:     l.Installments,
		MatchStatus:      string(l.MatchStatus),
		MatchAttempts:    l.MatchAttempts,
		LenderUserID:     l.LenderUserID,
		LenderBusinessID: l.LenderBusinessID,
		MatchedAt:        l.MatchedAt,
		CreatedAt:        l.CreatedAt,
	}
	if l.Assigned() {
		dto.InterestRate = l.InterestRate.StringFixed(2)
		dto.TotalInterest = l.TotalInterest.StringFixed(2)
		dto.TotalAmount = l.TotalAmount.StringFixed(2)
		dto.RepaymentAmount = l.RepaymentAmount.StringFixed(2)
	}
	return dto
}

func ToMatchDTO(r *match.Record) MatchDTO {
	return MatchDTO{
		MatchID:       r.MatchID,
		Attempt:       r.Attempt,
		Rank:          r.Rank,
		Score:         r.Score,
		LenderKind:    r.LenderKind,
		LenderID:      r.LenderID,
		InterestRate:  r.InterestRate.StringFixed(2),
		Status:        string(r.Status),
		ExpiresAt:     r.ExpiresAt,
		RespondedAt:   r.RespondedAt,
		DeclineReason: r.DeclineReason,
	}
}

func ToMatchDTOs(recs []*match.Record) []MatchDTO {
	out := make([]MatchDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, ToMatchDTO(r))
	}
	return out
}
