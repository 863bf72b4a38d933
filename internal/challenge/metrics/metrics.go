package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the challenge registry.
type Metrics struct {
	ChallengesCreated     *prometheus.CounterVec
	ChallengesDeactivated prometheus.Counter
	EscrowHeld            prometheus.Counter
	ChallengeDifficulty   prometheus.Histogram
}

// New registers and returns challenge registry metrics collectors.
func New() *Metrics {
	return &Metrics{
		ChallengesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmint_challenges_created_total",
			Help: "Total number of challenges created, labeled by skill type",
		}, []string{"skill_type"}),
		ChallengesDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillmint_challenges_deactivated_total",
			Help: "Total number of challenges deactivated",
		}),
		EscrowHeld: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillmint_escrow_held_units_total",
			Help: "Total reward units escrowed at challenge creation",
		}),
		ChallengeDifficulty: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillmint_challenge_difficulty",
			Help:    "Distribution of created challenge difficulty",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}),
	}
}

func (m *Metrics) IncrementChallengesCreated(skillType string) {
	m.ChallengesCreated.WithLabelValues(skillType).Inc()
}
