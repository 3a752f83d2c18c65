package matching

import (
	"strings"

	"lendmatch/internal/domain/lender"
)

type Verdict struct {
	Eligible bool
	Reason   Reason
}

func pass() Verdict         { return Verdict{Eligible: true} }
func fail(r Reason) Verdict { return Verdict{Reason: r} }

// CheckEligibility runs the checks in a fixed order and reports the first
// failing one.
func CheckEligibility(req Request, l lender.Lender, terms Terms) Verdict {
	if l.Capacity().Available().LessThan(req.Amount) {
		return fail(ReasonCapacity)
	}
	in := l.EligibilityInputs()
	if req.Amount.LessThan(in.MinAmount) {
		return fail(ReasonMinAmount)
	}
	if len(in.Countries) > 0 && !containsFold(in.Countries, req.Country) {
		return fail(ReasonGeography)
	}
	if len(in.States) > 0 && !containsFold(in.States, req.State) {
		return fail(ReasonGeography)
	}
	if req.FirstTimeBorrower {
		if !in.AllowFirstTime {
			return fail(ReasonFirstTime)
		}
		limit := terms.MaxAmount
		if in.FirstTimeLimit != nil {
			limit = *in.FirstTimeLimit
		}
		if (in.FirstTimeLimit != nil || limit.IsPositive()) && req.Amount.GreaterThan(limit) {
			return fail(ReasonFirstTime)
		}
	}
	if b, ok := l.(*lender.Business); ok && len(b.LoanTypes) > 0 && !b.Supports(req.LoanType) {
		return fail(ReasonLoanType)
	}
	return pass()
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
