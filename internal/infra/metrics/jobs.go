package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobClaimConflictsTotal, jobProcessSeconds) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Total number of jobs processed, labeled by type and terminal status.",
	},
	[]string{"type", "status"}, // 'completed', 'failed'
)

var jobClaimConflictsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "job_claim_conflicts_total",
		Help: "Times a claim lost the conditional update to another worker.",
	},
)

var jobProcessSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "job_process_seconds",
		Help:    "Wall time spent inside a job processor.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"type"},
)

func IncJob(jobType, status string) {
	jobsProcessedTotal.WithLabelValues(norm(jobType), norm(status)).Inc()
}

func IncClaimConflict() {
	jobClaimConflictsTotal.Inc()
}

func ObserveJobDuration(jobType string, seconds float64) {
	jobProcessSeconds.WithLabelValues(norm(jobType)).Observe(seconds)
}
