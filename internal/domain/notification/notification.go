package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindBorrowerNoMatch Kind = "borrower_no_match"
	KindBorrowerQueued  Kind = "borrower_queued"
	KindLenderOffer     Kind = "lender_offer"
	KindAssigned        Kind = "assigned"
)

type PartyKind string

const (
	PartyUser     PartyKind = "user"
	PartyBusiness PartyKind = "business"
)

type Party struct {
	Kind PartyKind
	ID   string
}

// Intent is a request to tell someone about a matching event. Delivery is
// best-effort and happens after the state change it describes has committed.
type Intent struct {
	ID                string
	Kind              Kind
	LoanID            string
	MatchID           string
	Recipients        []Party
	MatchCount        int
	ExpiresAt         *time.Time
	AutoAccept        bool
	FirstTimeBorrower bool
	ReviewURL         string
}

func newIntent(kind Kind, loanID string, to ...Party) Intent {
	return Intent{ID: uuid.NewString(), Kind: kind, LoanID: loanID, Recipients: to}
}

func BorrowerNoMatch(loanID, borrowerID string, firstTime bool) Intent {
	in := newIntent(KindBorrowerNoMatch, loanID, Party{Kind: PartyUser, ID: borrowerID})
	in.FirstTimeBorrower = firstTime
	return in
}

func BorrowerQueued(loanID, borrowerID string, matchCount int, reviewURL string) Intent {
	in := newIntent(KindBorrowerQueued, loanID, Party{Kind: PartyUser, ID: borrowerID})
	in.MatchCount = matchCount
	in.ReviewURL = reviewURL
	return in
}

func LenderOffer(loanID, matchID string, lender Party, expiresAt time.Time) Intent {
	in := newIntent(KindLenderOffer, loanID, lender)
	in.MatchID = matchID
	in.ExpiresAt = &expiresAt
	return in
}

// Assigned notifies both the borrower and the winning lender.
func Assigned(loanID, matchID, borrowerID string, lender Party, auto bool) Intent {
	in := newIntent(KindAssigned, loanID, Party{Kind: PartyUser, ID: borrowerID}, lender)
	in.MatchID = matchID
	in.AutoAccept = auto
	return in
}

// Contact maps a party to the address the notifier delivers to.
type Contact struct {
	PartyKind PartyKind `gorm:"primaryKey;column:party_kind;size:16"`
	PartyID   string    `gorm:"primaryKey;column:party_id;size:32"`
	Email     string    `gorm:"column:email;size:255"`
}

func (Contact) TableName() string { return "contacts" }

type ContactDirectory interface {
	Lookup(ctx context.Context, p Party) (*Contact, error)
}

// Dispatcher delivers intents. Dispatch must not block the caller on delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents ...Intent)
}
