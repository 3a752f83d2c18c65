package notify

import (
	"fmt"

	"lendmatch/internal/domain/notification"
)

// Message is one intent addressed to one recipient.
type Message struct {
	Intent  notification.Intent
	To      notification.Party
	Subject string
	Body    string
}

// Render expands intents into per-recipient messages.
func Render(intents ...notification.Intent) []Message {
	var out []Message
	for _, in := range intents {
		for _, to := range in.Recipients {
			subject, body := text(in, to)
			out = append(out, Message{Intent: in, To: to, Subject: subject, Body: body})
		}
	}
	return out
}

func text(in notification.Intent, to notification.Party) (string, string) {
	switch in.Kind {
	case notification.KindBorrowerNoMatch:
		if in.FirstTimeBorrower {
			return "We could not match your first loan yet",
				fmt.Sprintf("No lender currently funds first-time borrowers for loan %s. Completing a smaller loan first widens your options.", in.LoanID)
		}
		return "No lender available",
			fmt.Sprintf("No lender matched loan %s right now. We will let you know if that changes.", in.LoanID)
	case notification.KindBorrowerQueued:
		body := fmt.Sprintf("Loan %s was offered to %d lender(s) and is under review.", in.LoanID, in.MatchCount)
		if in.ReviewURL != "" {
			body += " Review: " + in.ReviewURL
		}
		return "Your loan is under review", body
	case notification.KindLenderOffer:
		exp := ""
		if in.ExpiresAt != nil {
			exp = " before " + in.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")
		}
		return "New loan offer",
			fmt.Sprintf("Loan %s is available to you (offer %s). Accept it%s to fund it.", in.LoanID, in.MatchID, exp)
	case notification.KindAssigned:
		how := "accepted by the lender"
		if in.AutoAccept {
			how = "auto-accepted"
		}
		if to.Kind == notification.PartyUser && len(in.Recipients) > 0 && in.Recipients[0] == to {
			return "Your loan is funded", fmt.Sprintf("Loan %s was %s.", in.LoanID, how)
		}
		return "Loan assigned to you", fmt.Sprintf("You now fund loan %s (offer %s, %s).", in.LoanID, in.MatchID, how)
	}
	return string(in.Kind), fmt.Sprintf("Update on loan %s.", in.LoanID)
}
