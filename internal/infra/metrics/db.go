package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, cacheOpsTotal) }

var dbPoolStats = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_pool_stats",
		Help: "Current state of the database connection pool.",
	},
	[]string{"state"}, // 'total', 'idle', 'in_use'
)

var cacheOpsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_ops_total",
		Help: "Session cache operations by result (hit, miss, error).",
	},
	[]string{"result"},
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func IncCacheOp(result string) {
	cacheOpsTotal.WithLabelValues(norm(result)).Inc()
}
