// Package metrics exposes extentvol's metrics behind a nil-safe interface so
// that pkg/extentsvc never imports Prometheus directly: it accepts an
// ExtentMapMetrics (possibly nil) and the package-level helper functions
// degrade to no-ops when metrics are disabled.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry creates and installs the Prometheus registry used by this
// process. Must be called before NewExtentMapMetrics for metrics collection
// to take effect; if never called, IsEnabled reports false and all metrics
// recording helpers are no-ops.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if InitRegistry was never
// called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
