// Package metrics holds the engine's Prometheus collectors. They are
// registered on the default registry and served by promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchingRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendmatch",
		Name:      "matching_rounds_total",
		Help:      "Matching rounds by outcome (auto_accepted, broadcast, no_match, review).",
	}, []string{"outcome"})

	EligibilityRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendmatch",
		Name:      "eligibility_rejections_total",
		Help:      "Lenders excluded from a shortlist, by first failing check.",
	}, []string{"reason"})

	LedgerCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendmatch",
		Name:      "ledger_commits_total",
		Help:      "Capital ledger commit attempts by result.",
	}, []string{"result"})

	OfferResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendmatch",
		Name:      "offer_responses_total",
		Help:      "Lender responses to offers (accepted, declined, expired).",
	}, []string{"response"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendmatch",
		Name:      "notifications_total",
		Help:      "Notification deliveries by intent kind and result.",
	}, []string{"kind", "result"})

	MatchingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lendmatch",
		Name:      "matching_duration_seconds",
		Help:      "Wall time of one matching round.",
		Buckets:   prometheus.DefBuckets,
	})
)
