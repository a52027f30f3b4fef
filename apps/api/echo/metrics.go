package echoapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokensRequested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attest_tokens_requested_total",
		Help: "Attendance token requests, by outcome.",
	}, []string{"outcome"})

	tokensConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attest_tokens_confirmed_total",
		Help: "Attendance token confirmations, by outcome.",
	}, []string{"outcome"})

	sessionsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attest_sessions_generated_total",
		Help: "Sessions created by the generator.",
	})
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
)
