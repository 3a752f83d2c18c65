package matching

import (
	"sort"

	"lendmatch/internal/domain/lender"
)

// Catalogue is the lender-side input: typed lenders plus every tier policy
// row keyed by owner.
type Catalogue struct {
	Lenders  []lender.Lender
	Policies map[lender.Ref][]*lender.TierPolicy
}

// NewCatalogue converts raw rows. Preferences with an invalid owner are
// skipped and returned as errors so the caller can log them.
func NewCatalogue(prefs []*lender.Preference, policies []*lender.TierPolicy, types []*lender.LoanTypeSupport) (Catalogue, []error) {
	byBusiness := make(map[string][]string)
	for _, t := range types {
		byBusiness[t.BusinessID] = append(byBusiness[t.BusinessID], t.LoanType)
	}

	cat := Catalogue{Policies: make(map[lender.Ref][]*lender.TierPolicy)}
	for _, p := range policies {
		cat.Policies[p.Owner()] = append(cat.Policies[p.Owner()], p)
	}

	var errs []error
	for _, p := range prefs {
		var lt []string
		if p.BusinessID != nil {
			lt = byBusiness[*p.BusinessID]
		}
		l, err := lender.Convert(p, lt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cat.Lenders = append(cat.Lenders, l)
	}
	sort.SliceStable(cat.Lenders, func(i, j int) bool {
		return cat.Lenders[i].PreferenceID() < cat.Lenders[j].PreferenceID()
	})
	return cat, errs
}
