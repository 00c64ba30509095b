package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes recorded under the "result" label.
const (
	ResultOK          = "ok"
	ResultInvalid     = "invalid"
	ResultExpired     = "expired"
	ResultUnknownUser = "unknown_user"
	ResultError       = "error"
)

// Metrics holds the authentication counters.
type Metrics struct {
	CodesIssued      prometheus.Counter
	DispatchFailures prometheus.Counter
	Verifications    *prometheus.CounterVec
}

// NewMetrics registers the counters on reg. A nil reg yields unregistered
// collectors, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "notekeeper_otp_issued_total",
			Help: "One-time codes stored and handed to the notifier.",
		}),
		DispatchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "notekeeper_otp_dispatch_failures_total",
			Help: "One-time codes that could not be delivered.",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notekeeper_otp_verifications_total",
			Help: "Code verification attempts by result.",
		}, []string{"result"}),
	}
}
