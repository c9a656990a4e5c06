package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	ToolCallsTotal *prometheus.CounterVec
	ToolDuration   *prometheus.HistogramVec

	ChatTurnsTotal     *prometheus.CounterVec
	PlannerRounds      prometheus.Histogram
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
)

func init() {
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freight",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "freight",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freight",
			Subsystem: "assistant",
			Name:      "tool_calls_total",
			Help:      "Total tool executions by outcome",
		},
		[]string{"tool_name", "status"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "freight",
			Subsystem: "assistant",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"tool_name"},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freight",
			Subsystem: "assistant",
			Name:      "chat_turns_total",
			Help:      "Total chat requests by outcome",
		},
		[]string{"status"},
	)

	PlannerRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "freight",
			Subsystem: "assistant",
			Name:      "planner_rounds",
			Help:      "Planner rounds used per chat request",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 12},
		},
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freight",
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Total document extractions by input kind and outcome",
		},
		[]string{"kind", "status"},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "freight",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Document extraction duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPDuration,
		ToolCallsTotal,
		ToolDuration,
		ChatTurnsTotal,
		PlannerRounds,
		ExtractionsTotal,
		ExtractionDuration,
	)
}

func RecordHTTPRequest(method, route, code string, durationSec float64) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordToolCall records one tool execution. status is "ok" or "error".
func RecordToolCall(toolName, status string, durationSec float64) {
	if status == "" {
		status = "unknown"
	}
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
	ToolDuration.WithLabelValues(toolName).Observe(durationSec)
}

func RecordChatTurn(status string, rounds int) {
	ChatTurnsTotal.WithLabelValues(status).Inc()
	if rounds > 0 {
		PlannerRounds.Observe(float64(rounds))
	}
}

func RecordExtraction(kind, status string, durationSec float64) {
	ExtractionsTotal.WithLabelValues(kind, status).Inc()
	ExtractionDuration.Observe(durationSec)
}
