package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// register queues collectors at package init time; nothing touches the
// default registry until MustRegister runs, so importing this package in
// tests stays side-effect free.
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister publishes every queued collector exactly once. Call it
// from main before the /metrics endpoint goes live; later calls are
// no-ops.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pending...)
		pending = nil
	})
}

// norm keeps label cardinality sane for caller-supplied values.
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
