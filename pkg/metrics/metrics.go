package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepRecords counts records handled by each sweep, by outcome
	// (deferred, absorbed, resent, skipped, deleted, error).
	SweepRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_sweep_records_total",
		Help: "Records processed by scheduled sweeps.",
	}, []string{"sweep", "outcome"})

	// EmailsSent counts outbound email attempts by type and result.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_emails_sent_total",
		Help: "Outbound email attempts.",
	}, []string{"type", "result"})

	// SubmissionFallbacks counts submit write sequences that ran without a
	// transaction and had to compensate manually.
	SubmissionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onboarding_submission_fallbacks_total",
		Help: "Submissions written without transactional support.",
	})
)
