// Package engage – Prometheus instrumentation.
//
// Settlement counters are labelled by intent kind only; target keys are
// unbounded and would explode cardinality.
package engage

import "github.com/prometheus/client_golang/prometheus"

var (
	// intentsIssued counts intents accepted by Issue, by kind.
	intentsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_intents_issued_total",
			Help: "Total number of mutation intents issued.",
		},
		[]string{"kind"},
	)

	// intentsCommitted counts intents settled with the authoritative result.
	intentsCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_intents_committed_total",
			Help: "Total number of mutation intents committed.",
		},
		[]string{"kind"},
	)

	// intentsFailed counts intents rolled back after a remote failure or
	// timeout.
	intentsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_intents_failed_total",
			Help: "Total number of mutation intents failed and reverted.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(intentsIssued, intentsCommitted, intentsFailed)
}
