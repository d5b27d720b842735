package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Filesystem metrics for the searched directory
var (
	// FreeSpacePercent tracks free space percentage of the filesystem holding the searched directory
	FreeSpacePercent *prometheus.GaugeVec

	// PathFreeBytes tracks free space available on the filesystem containing the path
	PathFreeBytes *prometheus.GaugeVec

	// PathTotalBytes tracks total capacity of the filesystem containing the path
	PathTotalBytes *prometheus.GaugeVec
)

func initDiskMetrics() {
	FreeSpacePercent = NewSizeGaugeVec(
		"delfiles_free_space_percent",
		"Free space percentage of the filesystem holding the searched directory.",
		[]string{"path"},
	)

	PathFreeBytes = NewSizeGaugeVec(
		"delfiles_path_free_bytes",
		"Free space available on the filesystem containing this path.",
		[]string{"path"},
	)

	PathTotalBytes = NewSizeGaugeVec(
		"delfiles_path_total_bytes",
		"Total capacity of the filesystem containing this path.",
		[]string{"path"},
	)
}

func registerDiskMetrics() {
	Registry.MustRegister(FreeSpacePercent)
	Registry.MustRegister(PathFreeBytes)
	Registry.MustRegister(PathTotalBytes)
}

// UpdateDiskMetrics sets the filesystem gauges for path
func UpdateDiskMetrics(path string, free, total uint64) {
	freePercent := 100.0
	if total > 0 {
		freePercent = (float64(free) / float64(total)) * 100.0
	}
	FreeSpacePercent.WithLabelValues(path).Set(freePercent)
	PathFreeBytes.WithLabelValues(path).Set(float64(free))
	PathTotalBytes.WithLabelValues(path).Set(float64(total))
}
