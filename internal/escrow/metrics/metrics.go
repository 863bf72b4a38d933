package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for escrow payouts.
type Metrics struct {
	RewardsReleased prometheus.Counter
	UnitsReleased   prometheus.Counter
}

// New registers and returns escrow metrics collectors.
func New() *Metrics {
	return &Metrics{
		RewardsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillmint_rewards_released_total",
			Help: "Total number of reward releases",
		}),
		UnitsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillmint_reward_units_released_total",
			Help: "Total reward units paid out to solvers",
		}),
	}
}
