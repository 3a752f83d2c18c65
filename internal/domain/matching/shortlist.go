package matching

import (
	"lendmatch/internal/domain/lender"
)

type Rejection struct {
	Lender lender.Ref
	Reason Reason
}

type Shortlist struct {
	Ranked   []Candidate
	Rejected []Rejection
}

func (s Shortlist) Empty() bool { return len(s.Ranked) == 0 }

// Top returns the highest ranked candidate.
func (s Shortlist) Top() (Candidate, bool) {
	if len(s.Ranked) == 0 {
		return Candidate{}, false
	}
	return s.Ranked[0], true
}

// BuildShortlist resolves, filters and ranks every lender in the catalogue.
func BuildShortlist(req Request, cat Catalogue, limit int) Shortlist {
	excluded := make(map[uint64]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	var out Shortlist
	eligible := make([]Candidate, 0, len(cat.Lenders))
	for _, l := range cat.Lenders {
		ref := l.Ref()
		if ref.Kind == lender.KindIndividual && ref.ID == req.BorrowerID {
			out.Rejected = append(out.Rejected, Rejection{Lender: ref, Reason: ReasonSelf})
			continue
		}
		if _, ok := excluded[l.PreferenceID()]; ok {
			out.Rejected = append(out.Rejected, Rejection{Lender: ref, Reason: ReasonDeclined})
			continue
		}
		terms, ok := ResolvePolicy(req, l, cat.Policies[ref])
		if !ok {
			out.Rejected = append(out.Rejected, Rejection{Lender: ref, Reason: ReasonPolicy})
			continue
		}
		if v := CheckEligibility(req, l, terms); !v.Eligible {
			out.Rejected = append(out.Rejected, Rejection{Lender: ref, Reason: v.Reason})
			continue
		}
		eligible = append(eligible, Candidate{Lender: l, Terms: terms, Score: Score(req, l)})
	}
	out.Ranked = Rank(eligible, limit)
	return out
}
