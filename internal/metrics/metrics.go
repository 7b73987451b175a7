package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConsoleActions counts console button presses by outcome (ok, failed, rejected).
	ConsoleActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_console_actions_total",
			Help: "Total number of console actions handled",
		},
		[]string{"action", "outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_upstream_request_duration_seconds",
			Help:    "Duration of calls to the recommendations API in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	HistoryWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_console_history_write_errors_total",
			Help: "Total number of operation history entries that could not be stored",
		},
	)
)

// RecordAction increments the action counter.
func RecordAction(action, outcome string) {
	ConsoleActions.WithLabelValues(action, outcome).Inc()
}

// ObserveUpstream records one upstream call. A zero status means no response was received.
func ObserveUpstream(operation string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestDuration.WithLabelValues(operation, label).Observe(d.Seconds())
}
