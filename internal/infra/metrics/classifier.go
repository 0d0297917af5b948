package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(classifierCallsTotal, classifierLatencySeconds, classifierPromptTokens) }

var classifierCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "classifier_calls_total",
		Help: "Classifier invocations by provider and outcome (ok, error, fallback).",
	},
	[]string{"provider", "outcome"},
)

var classifierLatencySeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "classifier_latency_seconds",
		Help:    "Latency of classifier calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"provider"},
)

var classifierPromptTokens = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "classifier_prompt_tokens",
		Help:    "Prompt tokens sent per classification call (best-effort count).",
		Buckets: []float64{64, 128, 256, 512, 1024, 2048, 4096},
	},
	[]string{"provider"},
)

func IncClassifierCall(provider, outcome string) {
	classifierCallsTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
}

func ObserveClassifierLatency(provider string, seconds float64) {
	classifierLatencySeconds.WithLabelValues(norm(provider)).Observe(seconds)
}

func ObserveClassifierPromptTokens(provider string, tokens int) {
	classifierPromptTokens.WithLabelValues(norm(provider)).Observe(float64(tokens))
}
