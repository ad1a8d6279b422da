package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waypoint_turns_total",
		Help: "Total number of conversation turns by routed intent and outcome",
	}, []string{"intent", "outcome"})

	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waypoint_tool_invocations_total",
		Help: "Total number of tool invocations by tool and result status",
	}, []string{"tool", "status"})

	modelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "waypoint_model_latency_seconds",
		Help:    "Language model call latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	turnLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "waypoint_turn_latency_seconds",
		Help:    "End-to-end turn latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})
)

// Turn outcomes.
const (
	OutcomeAnswered      = "answered"
	OutcomeClarification = "clarification"
	OutcomeError         = "error"
)

// RecordTurn records a finished turn.
func RecordTurn(intent, outcome string, duration time.Duration) {
	turnsTotal.WithLabelValues(intent, outcome).Inc()
	turnLatency.Observe(duration.Seconds())
}

// RecordToolInvocation records one tool call and the status it produced.
func RecordToolInvocation(tool, status string) {
	toolInvocations.WithLabelValues(tool, status).Inc()
}

// RecordModelCall records a model round-trip.
func RecordModelCall(duration time.Duration) {
	modelLatency.Observe(duration.Seconds())
}
