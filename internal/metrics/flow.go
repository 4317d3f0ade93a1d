package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "okapi"

var (
	flowOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorize_flow_outcomes_total",
			Help:      "Authorize requests by the flow state they ended in",
		},
		[]string{"state", "auto_granted"},
	)

	flowFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorize_flow_failures_total",
			Help:      "Authorize requests that failed on a storage error",
		},
	)
)

func ObserveFlowOutcome(state string, autoGranted bool) {
	flowOutcomes.WithLabelValues(state, strconv.FormatBool(autoGranted)).Inc()
}

func ObserveFlowFailure() {
	flowFailures.Inc()
}
