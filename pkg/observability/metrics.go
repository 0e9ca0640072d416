// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the sandchat service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// SandboxBuckets covers child process runtimes up to the 5s wall clock limit.
var SandboxBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sandchat_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// InflightRequests tracks requests currently being served.
	InflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sandchat_requests_inflight",
			Help: "Requests in flight",
		},
	)

	// ProviderRequestsTotal counts requests sent to the model service.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ProviderLatency records model service latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sandchat_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ProviderTokensTotal counts tokens processed by direction (input/output).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ToolExecutionsTotal counts tool invocations requested by the model,
	// by name and outcome (ok, error, unknown).
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool_name", "status"},
	)

	// ModelTurns records how many model round trips a chat request needed.
	ModelTurns = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sandchat_engine_model_turns",
			Help:    "Model round trips per chat request",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
		},
	)

	// PolicyRejectionsTotal counts snippets rejected before execution, by rule.
	PolicyRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_policy_rejections_total",
			Help: "Snippets rejected by the code policy",
		},
		[]string{"rule"},
	)

	// SandboxExecutionsTotal counts sandbox runs by outcome.
	SandboxExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_sandbox_executions_total",
			Help: "Sandbox executions",
		},
		[]string{"outcome"},
	)

	// SandboxDuration records sandbox wall clock time by outcome.
	SandboxDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sandchat_sandbox_duration_seconds",
			Help:    "Sandbox execution duration",
			Buckets: SandboxBuckets,
		},
		[]string{"outcome"},
	)

	// SandboxActive tracks live child processes.
	SandboxActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sandchat_sandbox_active",
			Help: "Active sandbox processes",
		},
	)

	// SandboxOutputTruncatedTotal counts runs whose output hit the size cap.
	SandboxOutputTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sandchat_sandbox_output_truncated_total",
			Help: "Sandbox runs with truncated output",
		},
	)

	// SandboxCleanupFailuresTotal counts artifacts that could not be removed.
	SandboxCleanupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sandchat_sandbox_cleanup_failures_total",
			Help: "Artifact deletion failures",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InflightRequests,
		ProviderRequestsTotal,
		ProviderLatency,
		ProviderTokensTotal,
		ToolExecutionsTotal,
		ModelTurns,
		PolicyRejectionsTotal,
		SandboxExecutionsTotal,
		SandboxDuration,
		SandboxActive,
		SandboxOutputTruncatedTotal,
		SandboxCleanupFailuresTotal,
	)
}
