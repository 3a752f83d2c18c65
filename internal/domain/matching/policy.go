package matching

import (
	"github.com/shopspring/decimal"

	"lendmatch/internal/domain/lender"
)

// Terms are the rate and ceiling a lender offers this borrower.
type Terms struct {
	Rate      decimal.Decimal
	MaxAmount decimal.Decimal // zero means uncapped
	Tiered    bool
}

// ResolvePolicy picks the lender's effective terms.
//
// A lender with any tier policy row, active or not, is priced only through the
// borrower's tier: there is no fallback to its defaults. A lender without tier
// rows uses its preference-level rate and max amount.
func ResolvePolicy(req Request, l lender.Lender, policies []*lender.TierPolicy) (Terms, bool) {
	if len(policies) > 0 {
		return resolveTiered(req, policies)
	}
	return resolveDefault(req, l.EligibilityInputs())
}

func resolveTiered(req Request, policies []*lender.TierPolicy) (Terms, bool) {
	if req.TrustTier == "" {
		return Terms{}, false
	}
	for _, p := range policies {
		if !p.IsActive || p.TrustTier != req.TrustTier {
			continue
		}
		if p.MaxLoanAmount.LessThan(req.Amount) {
			return Terms{}, false
		}
		return Terms{Rate: p.InterestRate, MaxAmount: p.MaxLoanAmount, Tiered: true}, true
	}
	return Terms{}, false
}

func resolveDefault(req Request, in lender.EligibilityInputs) (Terms, bool) {
	if in.MaxAmount.IsPositive() && req.Amount.GreaterThan(in.MaxAmount) {
		return Terms{}, false
	}
	return Terms{Rate: in.DefaultRate, MaxAmount: in.MaxAmount}, true
}
