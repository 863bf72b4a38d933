package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the credential ledger.
type Metrics struct {
	CredentialsMinted   *prometheus.CounterVec
	CredentialsUpdated  *prometheus.CounterVec
	CredentialsReverted *prometheus.CounterVec
	ProficiencyLevel    prometheus.Histogram
}

// New registers and returns credential ledger metrics collectors.
func New() *Metrics {
	return &Metrics{
		CredentialsMinted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_credentials_minted_total",
			Help: "Total number of credentials minted, labeled by skill type",
		}, []string{"skill_type"}),
		CredentialsUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_credentials_updated_total",
			Help: "Total number of credential proficiency updates, labeled by skill type",
		}, []string{"skill_type"}),
		CredentialsReverted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_credentials_reverted_total",
			Help: "Total number of credential applications undone by verification rollback, labeled by skill type",
		}, []string{"skill_type"}),
		ProficiencyLevel: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillmint_credential_proficiency_level",
			Help:    "Distribution of proficiency levels after mint or update",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}),
	}
}
