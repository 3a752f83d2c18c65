// Package matching orchestrates matching rounds: it turns a loan into a
// shortlist of offers, commits auto-accepts through the ledger and handles
// lender responses.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	engine "lendmatch/internal/domain/matching"
	"lendmatch/internal/domain/notification"
	"lendmatch/internal/domain/uow"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/infrastructure/metrics"
	"lendmatch/internal/usecase/ledger"
	loanuc "lendmatch/internal/usecase/loan"
	"lendmatch/pkg/id"
)

// Committer is the capital ledger as seen by the orchestrator.
type Committer interface {
	TryAssign(ctx context.Context, c ledger.Claim) (ledger.Result, error)
}

type Deps struct {
	Loans     loan.Repository
	Lenders   lender.Repository
	Matches   match.Repository
	Borrowers borrower.Repository
	UoW       uow.UnitOfWork
	Ledger    Committer
	Notifier  notification.Dispatcher
	Log       logger.Logger
}

type Usecase struct {
	loans     loan.Repository
	lenders   lender.Repository
	matches   match.Repository
	borrowers borrower.Repository
	uow       uow.UnitOfWork
	ledger    Committer
	notifier  notification.Dispatcher
	log       logger.Logger
	cfg       Config
	now       func() time.Time
}

func NewUsecase(d Deps, cfg Config) *Usecase {
	if cfg.FanOut <= 0 {
		cfg.FanOut = 5
	}
	if cfg.OfferTTL <= 0 {
		cfg.OfferTTL = 24 * time.Hour
	}
	if d.Log == nil {
		d.Log = logger.NewNoOpLogger()
	}
	return &Usecase{
		loans:     d.Loans,
		lenders:   d.Lenders,
		matches:   d.Matches,
		borrowers: d.Borrowers,
		uow:       d.UoW,
		ledger:    d.Ledger,
		notifier:  d.Notifier,
		log:       d.Log,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// errLostRace aborts a status transaction that another caller already won.
var errLostRace = errors.New("loan status changed concurrently")

// StartMatching runs the first matching round of a loan. Calling it again on
// a loan that already left unmatched returns the current state unchanged.
func (u *Usecase) StartMatching(ctx context.Context, loanID string) (*Result, error) {
	l, err := u.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Assigned() {
		return nil, loan.ErrAlreadyAssigned
	}
	if l.MatchStatus != loan.StatusUnmatched {
		return u.current(ctx, l)
	}

	err = u.begin(ctx, l, []loan.MatchStatus{loan.StatusUnmatched})
	if err == nil {
		var res *Result
		if res, err = u.runRound(ctx, l, loan.StatusUnmatched); err == nil {
			return res, nil
		}
	}
	if errors.Is(err, errLostRace) {
		if l, err = u.loadLoan(ctx, loanID); err != nil {
			return nil, err
		}
		return u.current(ctx, l)
	}
	return nil, err
}

// Rematch opens a new round for an unassigned loan that has no live offer:
// either in no_match, or in matching with every offer of the round answered
// or expired. Lenders that declined the loan before are not asked again.
func (u *Usecase) Rematch(ctx context.Context, loanID string) (*Result, error) {
	l, err := u.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return u.rematch(ctx, l)
}

func (u *Usecase) rematch(ctx context.Context, l *loan.Loan) (*Result, error) {
	if l.Assigned() {
		return nil, loan.ErrAlreadyAssigned
	}
	switch l.MatchStatus {
	case loan.StatusNoMatch:
	case loan.StatusMatching:
		n, err := u.matches.CountPending(ctx, l.ID, l.MatchAttempts)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("loan %s has %d live offers: %w", l.LoanID, n, loan.ErrInvalidTransition)
		}
	default:
		return nil, loan.ErrInvalidTransition
	}

	prev := l.MatchStatus
	if err := u.begin(ctx, l, []loan.MatchStatus{prev}); err != nil {
		if errors.Is(err, errLostRace) {
			return nil, loan.ErrInvalidTransition
		}
		return nil, err
	}
	res, err := u.runRound(ctx, l, prev)
	if errors.Is(err, errLostRace) {
		return nil, fmt.Errorf("loan %s attempt %d already started: %w", l.LoanID, l.MatchAttempts+1, loan.ErrInvalidTransition)
	}
	return res, err
}

// begin moves the row-locked loan into matching. A loan whose attempt
// counter moved since l was read is reported as a lost race.
func (u *Usecase) begin(ctx context.Context, l *loan.Loan, from []loan.MatchStatus) error {
	return u.uow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loan.Loan) error {
		if locked.Assigned() {
			return loan.ErrAlreadyAssigned
		}
		if locked.MatchAttempts != l.MatchAttempts {
			return errLostRace
		}
		ok, err := r.Loans.TransitionStatus(ctx, locked.ID, from, loan.StatusMatching)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}
		*l = *locked
		l.MatchStatus = loan.StatusMatching
		return nil
	})
}

func (u *Usecase) runRound(ctx context.Context, l *loan.Loan, prev loan.MatchStatus) (*Result, error) {
	start := time.Now()
	defer func() { metrics.MatchingDuration.Observe(time.Since(start).Seconds()) }()
	log := u.log.WithFields(map[string]interface{}{"loan_id": l.LoanID})

	profile, err := u.profile(ctx, l.BorrowerID)
	if err != nil {
		return nil, u.abort(ctx, l, prev, fmt.Errorf("borrower profile: %w", err))
	}
	cat, err := u.catalogue(ctx, log)
	if err != nil {
		return nil, u.abort(ctx, l, prev, fmt.Errorf("lender catalogue: %w", err))
	}
	req := engine.NewRequest(l, profile)
	if req.Exclude, err = u.matches.DeclinedPreferenceIDs(ctx, l.ID); err != nil {
		return nil, u.abort(ctx, l, prev, fmt.Errorf("declined lenders: %w", err))
	}

	sl := engine.BuildShortlist(req, cat, u.cfg.FanOut)
	for _, rj := range sl.Rejected {
		metrics.EligibilityRejections.WithLabelValues(string(rj.Reason)).Inc()
	}

	now := u.now()
	attempt := l.MatchAttempts + 1
	recs := u.records(l, attempt, sl, now)

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		claimed, err := r.Loans.ClaimRound(ctx, l.ID, attempt)
		if err != nil {
			return err
		}
		if !claimed {
			return errLostRace
		}
		if err := r.Matches.CreateBatch(ctx, recs); err != nil {
			return err
		}
		var top *uint64
		if len(recs) > 0 {
			top = &recs[0].ID
		}
		if err := r.Loans.RecordRound(ctx, l.ID, attempt, top); err != nil {
			return err
		}
		if len(recs) == 0 {
			ok, err := r.Loans.TransitionStatus(ctx, l.ID, []loan.MatchStatus{loan.StatusMatching}, loan.StatusNoMatch)
			if err != nil {
				return err
			}
			if !ok {
				return errLostRace
			}
		}
		return nil
	})
	if errors.Is(err, errLostRace) {
		log.Info("round claimed by another caller", map[string]interface{}{"attempt": attempt})
		return nil, err
	}
	if err != nil {
		return nil, u.abort(ctx, l, prev, fmt.Errorf("persist round: %w", err))
	}
	l.MatchAttempts = attempt

	res := &Result{LoanID: l.LoanID, Status: string(loan.StatusMatching), Attempt: attempt}

	if sl.Empty() {
		res.Status = string(loan.StatusNoMatch)
		res.Notifications = []notification.Intent{
			notification.BorrowerNoMatch(l.LoanID, l.BorrowerID, profile.FirstTime()),
		}
		metrics.MatchingRounds.WithLabelValues("no_match").Inc()
		log.Info("no eligible lender", map[string]interface{}{"attempt": attempt, "rejected": len(sl.Rejected)})
		return u.finish(ctx, res, recs), nil
	}

	if top, _ := sl.Top(); top.Lender.AutoAccept() {
		out, err := u.ledger.TryAssign(ctx, ledger.Claim{
			LoanID:         l.ID,
			ExpectedAmount: l.Amount,
			Record:         recs[0],
			Status:         match.StatusAutoAccepted,
			At:             now,
		})
		if err == nil && out.Outcome == ledger.Assigned {
			recs[0].Status = match.StatusAutoAccepted
			recs[0].RespondedAt = &now
			res.Status = string(loan.StatusMatched)
			res.AutoAccepted = true
			res.Notifications = []notification.Intent{
				notification.Assigned(l.LoanID, recs[0].MatchID, l.BorrowerID, partyOf(recs[0]), true),
			}
			metrics.MatchingRounds.WithLabelValues("auto_accepted").Inc()
			log.Info("auto-accepted", map[string]interface{}{"match_id": recs[0].MatchID, "lender": recs[0].LenderID})
			return u.finish(ctx, res, recs), nil
		}

		// Fail open: the record stays pending and the round continues as a
		// broadcast that a human can complete through the review link.
		res.ManualReviewURL = u.reviewURL(recs[0])
		fields := map[string]interface{}{"match_id": recs[0].MatchID, "outcome": out.Outcome.String()}
		if err != nil {
			log.WithError(err).Warn("auto-accept commit failed, falling back to broadcast", fields)
		} else {
			log.Warn("auto-accept not committed, falling back to broadcast", fields)
		}
		metrics.MatchingRounds.WithLabelValues("review").Inc()
	} else {
		metrics.MatchingRounds.WithLabelValues("broadcast").Inc()
	}

	for _, rec := range recs {
		res.Notifications = append(res.Notifications,
			notification.LenderOffer(l.LoanID, rec.MatchID, partyOf(rec), rec.ExpiresAt))
	}
	res.Notifications = append(res.Notifications,
		notification.BorrowerQueued(l.LoanID, l.BorrowerID, len(recs), res.ManualReviewURL))
	log.Info("offers broadcast", map[string]interface{}{"attempt": attempt, "offers": len(recs)})
	return u.finish(ctx, res, recs), nil
}

func (u *Usecase) records(l *loan.Loan, attempt int, sl engine.Shortlist, now time.Time) []*match.Record {
	recs := make([]*match.Record, 0, len(sl.Ranked))
	for i, c := range sl.Ranked {
		ref := c.Lender.Ref()
		recs = append(recs, &match.Record{
			MatchID:      id.NewID32(),
			LoanID:       l.ID,
			Attempt:      attempt,
			PreferenceID: c.Lender.PreferenceID(),
			LenderKind:   string(ref.Kind),
			LenderID:     ref.ID,
			Rank:         i + 1,
			Score:        c.Score,
			InterestRate: c.Terms.Rate,
			Status:       match.StatusPending,
			ExpiresAt:    now.Add(u.cfg.OfferTTL),
		})
	}
	return recs
}

func (u *Usecase) finish(ctx context.Context, res *Result, recs []*match.Record) *Result {
	res.Matches = loanuc.ToMatchDTOs(recs)
	u.dispatch(ctx, res.Notifications...)
	return res
}

// abort puts the loan back where it was before the round started and
// returns cause.
func (u *Usecase) abort(ctx context.Context, l *loan.Loan, prev loan.MatchStatus, cause error) error {
	if prev == loan.StatusMatching {
		return cause
	}
	if _, err := u.loans.TransitionStatus(ctx, l.ID, []loan.MatchStatus{loan.StatusMatching}, prev); err != nil {
		u.log.WithError(err).Error("revert loan status failed", map[string]interface{}{
			"loan_id": l.LoanID, "to": string(prev),
		})
	}
	return cause
}

// AcceptOffer lets the lender behind a pending offer take the loan. It goes
// through the same ledger commit as auto-accept, so only the first
// successful caller wins.
func (u *Usecase) AcceptOffer(ctx context.Context, in OfferInput) (*OfferResult, error) {
	rec, l, err := u.respondable(ctx, in.MatchID, in.LenderKind, in.LenderID)
	if err != nil {
		return nil, err
	}
	log := u.log.WithFields(map[string]interface{}{"loan_id": l.LoanID, "match_id": rec.MatchID})

	now := u.now()
	if rec.Expired(now) {
		return nil, u.expire(ctx, log, rec, now)
	}
	if l.Assigned() {
		return nil, loan.ErrAlreadyAssigned
	}

	out, err := u.ledger.TryAssign(ctx, ledger.Claim{
		LoanID:         l.ID,
		ExpectedAmount: l.Amount,
		Record:         rec,
		Status:         match.StatusAccepted,
		At:             now,
	})
	if err != nil {
		// the window can close between the check above and the commit
		if errors.Is(err, match.ErrUnavailable) {
			if at := u.now(); rec.Expired(at) {
				return nil, u.expire(ctx, log, rec, at)
			}
		}
		return nil, err
	}
	switch out.Outcome {
	case ledger.AlreadyAssigned:
		log.Info("accept lost the race", nil)
		return nil, loan.ErrAlreadyAssigned
	case ledger.InsufficientCapital:
		log.Info("accept rejected: insufficient capital", nil)
		return nil, lender.ErrInsufficientCapital
	}
	metrics.OfferResponses.WithLabelValues("accepted").Inc()

	l, err = u.loans.GetByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	rec.Status = match.StatusAccepted
	rec.RespondedAt = &now

	intent := notification.Assigned(l.LoanID, rec.MatchID, l.BorrowerID, partyOf(rec), false)
	u.dispatch(ctx, intent)
	log.Info("offer accepted", map[string]interface{}{"lender": rec.LenderID})
	return &OfferResult{
		Match:         loanuc.ToMatchDTO(rec),
		Loan:          loanuc.ToLoanDTO(l),
		Notifications: []notification.Intent{intent},
	}, nil
}

func (u *Usecase) expire(ctx context.Context, log logger.Logger, rec *match.Record, now time.Time) error {
	if _, err := u.matches.MarkExpired(ctx, rec.ID, now); err != nil {
		log.WithError(err).Warn("mark expired failed", nil)
	}
	metrics.OfferResponses.WithLabelValues("expired").Inc()
	return match.ErrExpired
}

// DeclineOffer records a lender's refusal. When it was the last live offer
// of the current round the loan moves to no_match.
func (u *Usecase) DeclineOffer(ctx context.Context, in DeclineInput) (*OfferResult, error) {
	rec, l, err := u.respondable(ctx, in.MatchID, in.LenderKind, in.LenderID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	reason := strings.TrimSpace(in.Reason)
	ok, err := u.matches.Decline(ctx, rec.ID, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, match.ErrUnavailable
	}
	metrics.OfferResponses.WithLabelValues("declined").Inc()
	rec.Status = match.StatusDeclined
	rec.DeclineReason = reason
	rec.RespondedAt = &now

	res := &OfferResult{Match: loanuc.ToMatchDTO(rec)}
	if l.Assigned() || rec.Attempt != l.MatchAttempts || l.MatchStatus != loan.StatusMatching {
		res.Loan = loanuc.ToLoanDTO(l)
		return res, nil
	}

	n, err := u.matches.CountPending(ctx, l.ID, rec.Attempt)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		moved, err := u.loans.TransitionStatus(ctx, l.ID, []loan.MatchStatus{loan.StatusMatching}, loan.StatusNoMatch)
		if err != nil {
			return nil, err
		}
		if moved {
			l.MatchStatus = loan.StatusNoMatch
			firstTime := true
			if p, err := u.profile(ctx, l.BorrowerID); err == nil {
				firstTime = p.FirstTime()
			}
			res.Notifications = []notification.Intent{notification.BorrowerNoMatch(l.LoanID, l.BorrowerID, firstTime)}
			u.dispatch(ctx, res.Notifications...)
			u.log.Info("last offer declined", map[string]interface{}{"loan_id": l.LoanID})
		}
	}
	res.Loan = loanuc.ToLoanDTO(l)
	return res, nil
}

// respondable loads a record and its loan and checks that kind/id may still
// answer it.
func (u *Usecase) respondable(ctx context.Context, matchID, kind, lenderID string) (*match.Record, *loan.Loan, error) {
	rec, err := u.matches.GetByMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, match.ErrNotFound
		}
		return nil, nil, err
	}
	if !rec.Offeree(kind, lenderID) {
		return nil, nil, match.ErrNotOfferee
	}
	l, err := u.loans.GetByID(ctx, rec.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, loan.ErrNotFound
		}
		return nil, nil, err
	}
	if rec.Status != match.StatusPending {
		if l.Assigned() {
			return nil, nil, loan.ErrAlreadyAssigned
		}
		return nil, nil, match.ErrUnavailable
	}
	return rec, l, nil
}

// SweepExpired expires overdue offers, then re-matches up to limit loans
// that were left without a live offer.
func (u *Usecase) SweepExpired(ctx context.Context, limit int) (*SweepResult, error) {
	n, err := u.matches.ExpireBefore(ctx, u.now())
	if err != nil {
		return nil, err
	}
	if n > 0 {
		metrics.OfferResponses.WithLabelValues("expired").Add(float64(n))
	}
	out := &SweepResult{Expired: n}

	loans, err := u.loans.ListAwaitingRematch(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, l := range loans {
		if _, err := u.rematch(ctx, l); err != nil {
			out.Failed++
			u.log.WithError(err).Warn("rematch failed", map[string]interface{}{"loan_id": l.LoanID})
			continue
		}
		out.Rematched++
	}
	u.log.Info("sweep done", map[string]interface{}{
		"expired": out.Expired, "rematched": out.Rematched, "failed": out.Failed,
	})
	return out, nil
}

func (u *Usecase) current(ctx context.Context, l *loan.Loan) (*Result, error) {
	recs, err := u.matches.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	round := make([]*match.Record, 0, len(recs))
	for _, r := range recs {
		if r.Attempt == l.MatchAttempts {
			round = append(round, r)
		}
	}
	res := &Result{
		LoanID:  l.LoanID,
		Status:  string(l.MatchStatus),
		Attempt: l.MatchAttempts,
		Matches: loanuc.ToMatchDTOs(round),
	}
	for _, r := range round {
		if r.Status == match.StatusAutoAccepted {
			res.AutoAccepted = true
		}
	}
	return res, nil
}

func (u *Usecase) loadLoan(ctx context.Context, loanID string) (*loan.Loan, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// profile falls back to an anonymous first-time profile when none is stored.
func (u *Usecase) profile(ctx context.Context, borrowerID string) (*borrower.Profile, error) {
	p, err := u.borrowers.GetProfile(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return borrower.Anonymous(borrowerID), nil
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) catalogue(ctx context.Context, log logger.Logger) (engine.Catalogue, error) {
	prefs, err := u.lenders.ListActive(ctx)
	if err != nil {
		return engine.Catalogue{}, err
	}
	policies, err := u.lenders.ListTierPolicies(ctx)
	if err != nil {
		return engine.Catalogue{}, err
	}
	types, err := u.lenders.ListLoanTypes(ctx)
	if err != nil {
		return engine.Catalogue{}, err
	}
	cat, bad := engine.NewCatalogue(prefs, policies, types)
	for _, err := range bad {
		log.WithError(err).Warn("skipping lender preference", nil)
	}
	return cat, nil
}

func (u *Usecase) reviewURL(rec *match.Record) string {
	base := strings.TrimRight(u.cfg.ReviewURLBase, "/")
	if base == "" {
		return ""
	}
	return base + "/matches/" + rec.MatchID
}

func (u *Usecase) dispatch(ctx context.Context, intents ...notification.Intent) {
	if u.notifier == nil || len(intents) == 0 {
		return
	}
	u.notifier.Dispatch(ctx, intents...)
}

func partyOf(rec *match.Record) notification.Party {
	if lender.Kind(rec.LenderKind) == lender.KindBusiness {
		return notification.Party{Kind: notification.PartyBusiness, ID: rec.LenderID}
	}
	return notification.Party{Kind: notification.PartyUser, ID: rec.LenderID}
}
