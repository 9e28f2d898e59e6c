// Package metrics provides Prometheus metrics for SourceTalk
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Content API metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_api_calls_total",
			Help: "Total number of content API calls",
		},
		[]string{"resource", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sourcetalk_api_call_duration_seconds",
			Help:    "Duration of content API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// Relay metrics
	RelayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_relay_calls_total",
			Help: "Total number of chat webhook calls",
		},
		[]string{"outcome", "shape"},
	)

	RelayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sourcetalk_relay_call_duration_seconds",
			Help:    "Duration of chat webhook calls",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// Listing metrics
	StaleResponsesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_stale_responses_dropped_total",
			Help: "Responses discarded because a newer request was issued",
		},
		[]string{"resource"},
	)

	DebounceTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_debounce_triggers_total",
			Help: "Filter edit streams that settled and triggered a load",
		},
		[]string{"resource"},
	)

	// Mapping metrics
	SentinelSubstitutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_sentinel_substitutions_total",
			Help: "Fields replaced by a display sentinel during mapping",
		},
		[]string{"entity", "field"},
	)

	// HTTP backend metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcetalk_http_requests_total",
			Help: "Total number of requests served by the JSON backend",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sourcetalk_http_request_duration_seconds",
			Help:    "Duration of requests served by the JSON backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Relay outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// StatusLabel is the status label for a content API call: the HTTP code, or
// "error" when no response arrived.
func StatusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}

// RecordAPICall records a content API call
func RecordAPICall(resource string, code int, duration time.Duration) {
	APICallsTotal.WithLabelValues(resource, StatusLabel(code)).Inc()
	APICallDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordRelayCall records a chat webhook call
func RecordRelayCall(outcome, shape string, duration time.Duration) {
	RelayCallsTotal.WithLabelValues(outcome, shape).Inc()
	RelayCallDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordStaleResponse records a response dropped by the sequence guard
func RecordStaleResponse(resource string) {
	StaleResponsesDropped.WithLabelValues(resource).Inc()
}

// RecordDebounceTrigger records a settled filter edit stream
func RecordDebounceTrigger(resource string) {
	DebounceTriggers.WithLabelValues(resource).Inc()
}

// RecordSentinel records one sentinel substitution
func RecordSentinel(entity, field string) {
	SentinelSubstitutions.WithLabelValues(entity, field).Inc()
}

// RecordHTTPRequest records a request served by the JSON backend
func RecordHTTPRequest(route string, code int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
