package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds every del-files metric. A private registry keeps the Go
	// runtime collectors out of the textfile.
	Registry = prometheus.NewRegistry()
)

// Init initializes all metrics subsystems and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initRunMetrics()
		initDiskMetrics()

		registerRunMetrics()
		registerDiskMetrics()

		// Initialize metrics with default values so they appear in the
		// textfile even when a run removes nothing
		LastRunTimestamp.Set(0)
		for _, status := range removalStatuses {
			RemovalsTotal.WithLabelValues(status)
		}
	})
}

// WriteTextfile writes the current state of Registry in the Prometheus text
// format, for pickup by the node_exporter textfile collector
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
