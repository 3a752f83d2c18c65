package matching

import (
	"sort"

	"lendmatch/internal/domain/lender"
)

const (
	scoreBase       = 80
	scoreAutoAccept = 100
	bonusLoanType   = 20
	bonusCountry    = 5
	bonusState      = 5
)

// Candidate is an eligible lender with its resolved terms.
type Candidate struct {
	Lender lender.Lender
	Terms  Terms
	Score  int
}

func Score(req Request, l lender.Lender) int {
	s := scoreBase
	if l.AutoAccept() {
		s = scoreAutoAccept
	}
	if b, ok := l.(*lender.Business); ok && b.Supports(req.LoanType) {
		s += bonusLoanType
	}
	in := l.EligibilityInputs()
	if containsFold(in.Countries, req.Country) {
		s += bonusCountry
	}
	if containsFold(in.States, req.State) {
		s += bonusState
	}
	return s
}

// Rank orders candidates by descending score. Ties keep input order, so the
// caller must pass candidates in a stable order. limit <= 0 keeps all.
func Rank(cands []Candidate, limit int) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
