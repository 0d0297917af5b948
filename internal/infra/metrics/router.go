package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(requestsProcessedTotal, sessionsExpiredTotal, memorySaveFailuresTotal) }

var requestsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inbound_requests_total",
		Help: "Inbound messages run through the classification pipeline, by platform, content type and outcome.",
	},
	[]string{"platform", "content_type", "status"},
)

var sessionsExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sessions_expired_total",
		Help: "Sessions whose conversational context was reset after inactivity.",
	},
)

var memorySaveFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "memory_save_failures_total",
		Help: "Best-effort memory appends that failed and were swallowed.",
	},
)

func IncRequest(platform, contentType, status string) {
	requestsProcessedTotal.WithLabelValues(norm(platform), norm(contentType), norm(status)).Inc()
}

func IncSessionExpired() { sessionsExpiredTotal.Inc() }

func IncMemorySaveFailure() { memorySaveFailuresTotal.Inc() }
