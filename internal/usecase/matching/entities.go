package matching

import (
	"time"

	"lendmatch/internal/domain/notification"
	loanuc "lendmatch/internal/usecase/loan"
)

type Config struct {
	FanOut        int
	OfferTTL      time.Duration
	ReviewURLBase string
}

// Result describes the loan after StartMatching or Rematch.
type Result struct {
	LoanID          string            `json:"loan_id"`
	Status          string            `json:"match_status"`
	Attempt         int               `json:"attempt"`
	AutoAccepted    bool              `json:"auto_accepted"`
	ManualReviewURL string            `json:"manual_review_url,omitempty"`
	Matches         []loanuc.MatchDTO `json:"matches"`
	// Notifications are the intents handed to the dispatcher for this call.
	Notifications []notification.Intent `json:"-"`
}

type OfferInput struct {
	MatchID    string `json:"-" validate:"required,hex32"`
	LenderKind string `json:"lender_kind" validate:"required,lenderkind"`
	LenderID   string `json:"lender_id" validate:"required,max=32"`
}

type DeclineInput struct {
	MatchID    string `json:"-" validate:"required,hex32"`
	LenderKind string `json:"lender_kind" validate:"required,lenderkind"`
	LenderID   string `json:"lender_id" validate:"required,max=32"`
	Reason     string `json:"reason" validate:"max=255"`
}

// OfferResult is the state after a lender responded to an offer.
type OfferResult struct {
	Match         loanuc.MatchDTO       `json:"match"`
	Loan          *loanuc.LoanDTO       `json:"loan"`
	Notifications []notification.Intent `json:"-"`
}

type SweepResult struct {
	Expired   int64 `json:"expired"`
	Rematched int   `json:"rematched"`
	Failed    int   `json:"failed"`
}
