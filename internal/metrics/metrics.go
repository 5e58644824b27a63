// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Command metrics
	CommandsTotal          *prometheus.CounterVec
	CommandDurationSeconds *prometheus.HistogramVec

	// External fetch metrics
	FetchRequestsTotal   *prometheus.CounterVec
	FetchDurationSeconds *prometheus.HistogramVec

	// State manager metrics
	RateLimiterDropped *prometheus.CounterVec
	ActiveUsers        prometheus.Gauge

	// Sanitizer metrics
	SanitizerBlockedTotal *prometheus.CounterVec

	// Transport metrics
	TransportReconnectsTotal prometheus.Counter
	MessagesSentTotal        *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		CommandsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_commands_total",
				Help: "Total number of dispatched commands by command and status",
			},
			[]string{"command", "status"}, // status: success, error, dropped
		),

		CommandDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "convo_command_duration_seconds",
				Help:    "Command handler duration in seconds by command",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"command"},
		),

		FetchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_fetch_requests_total",
				Help: "Total number of external API requests by upstream host and status",
			},
			[]string{"api", "status"},
		),

		FetchDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "convo_fetch_duration_seconds",
				Help:    "External API request duration in seconds by api",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"api"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_rate_limiter_dropped_total",
				Help: "Total number of dropped requests by reason",
			},
			[]string{"reason"}, // reason: rate_limit, cooldown, locked
		),

		ActiveUsers: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "convo_active_users",
				Help: "Number of users with live rate-limit state",
			},
		),

		SanitizerBlockedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_sanitizer_blocked_total",
				Help: "Total number of AI responses rewritten by the sanitizer, by rule",
			},
			[]string{"rule"}, // rule: command, manipulation, url, mention
		),

		TransportReconnectsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "convo_transport_reconnects_total",
				Help: "Total number of chat websocket reconnects",
			},
		),

		MessagesSentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "convo_messages_sent_total",
				Help: "Total number of outbound chat messages by command",
			},
			[]string{"command"},
		),
	}
}

// RecordCommand records a command dispatch outcome with its duration.
func (m *Metrics) RecordCommand(command, status string, seconds float64) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	if seconds > 0 {
		m.CommandDurationSeconds.WithLabelValues(command).Observe(seconds)
	}
}

// RecordFetch records an external API request outcome with its duration.
func (m *Metrics) RecordFetch(api, status string, seconds float64) {
	if m == nil {
		return
	}
	m.FetchRequestsTotal.WithLabelValues(api, status).Inc()
	m.FetchDurationSeconds.WithLabelValues(api).Observe(seconds)
}

// RecordDrop records a silently dropped request.
func (m *Metrics) RecordDrop(reason string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(reason).Inc()
}

// SetActiveUsers updates the active rate-limit state gauge.
func (m *Metrics) SetActiveUsers(count int) {
	if m == nil {
		return
	}
	m.ActiveUsers.Set(float64(count))
}

// RecordSanitizerBlock records a sanitizer rewrite.
func (m *Metrics) RecordSanitizerBlock(rule string) {
	if m == nil {
		return
	}
	m.SanitizerBlockedTotal.WithLabelValues(rule).Inc()
}

// RecordReconnect records a transport reconnect.
func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.TransportReconnectsTotal.Inc()
}

// RecordMessageSent records an outbound chat message.
func (m *Metrics) RecordMessageSent(command string) {
	if m == nil {
		return
	}
	m.MessagesSentTotal.WithLabelValues(command).Inc()
}
