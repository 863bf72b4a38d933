package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the proof submission engine.
type Metrics struct {
	ProofsSubmitted       *prometheus.CounterVec
	Verifications         *prometheus.CounterVec
	VerifyLatency         prometheus.Histogram
	VerificationRollbacks prometheus.Counter
}

// New registers and returns proof engine metrics collectors.
func New() *Metrics {
	return &Metrics{
		ProofsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_proofs_submitted_total",
			Help: "Total number of proofs submitted, labeled by skill type",
		}, []string{"skill_type"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_proof_verifications_total",
			Help: "Total number of verification attempts, labeled by result",
		}, []string{"result"}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillmint_proof_verify_latency_seconds",
			Help:    "Latency of the full verification unit including the oracle call",
			Buckets: prometheus.DefBuckets,
		}),
		VerificationRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillmint_proof_verification_rollbacks_total",
			Help: "Total number of verification units rolled back after the oracle accepted",
		}),
	}
}

// Verification result labels.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultError    = "error"
)

func (m *Metrics) ObserveVerification(result string) {
	m.Verifications.WithLabelValues(result).Inc()
}
