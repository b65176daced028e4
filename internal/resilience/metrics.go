package resilience

import "github.com/prometheus/client_golang/prometheus"

var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_breaker_state",
			Help: "Current store breaker state: 0=closed,1=open,2=half-open",
		},
		[]string{"target"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_breaker_transition_total",
			Help: "Count of store breaker state transitions",
		},
		[]string{"target", "from", "to"},
	)
	StoreRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retry_total",
			Help: "Number of store calls retried after a transient failure",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, StoreRetries)
}
