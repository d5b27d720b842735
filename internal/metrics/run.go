package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Removal statuses used as the status label of RemovalsTotal
const (
	StatusDeleted = "deleted"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusDryRun  = "dry_run"
)

var removalStatuses = []string{StatusDeleted, StatusSkipped, StatusFailed, StatusDryRun}

// Run subsystem metrics
var (
	// RunDuration tracks how long a complete find-and-remove run takes
	RunDuration prometheus.Histogram

	// MatchesFoundTotal tracks entries whose name matched a target
	MatchesFoundTotal prometheus.Counter

	// DirectoriesListedTotal tracks directories read by the traversal
	DirectoriesListedTotal prometheus.Counter

	// RemovalsTotal tracks removal outcomes by status
	RemovalsTotal *prometheus.CounterVec

	// BytesFreedTotal tracks bytes freed by successful deletions
	BytesFreedTotal prometheus.Counter

	// RemovedItemBytes tracks the measured size of each deleted item
	RemovedItemBytes prometheus.Histogram

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge
)

func initRunMetrics() {
	RunDuration = NewDurationHistogram(
		"delfiles_run_duration_seconds",
		"Duration of del-files runs in seconds.",
	)

	MatchesFoundTotal = NewCounter(
		"delfiles_matches_found_total",
		"Total number of files and directories matching a target.",
	)

	DirectoriesListedTotal = NewCounter(
		"delfiles_directories_listed_total",
		"Total number of directories listed while searching.",
	)

	RemovalsTotal = NewCounterVec(
		"delfiles_removals_total",
		"Total number of removal outcomes by status.",
		[]string{"status"},
	)

	BytesFreedTotal = NewBytesCounter(
		"delfiles_bytes_freed_total",
		"Total bytes freed by del-files.",
	)

	RemovedItemBytes = NewBytesHistogram(
		"delfiles_removed_item_bytes",
		"Measured size of each deleted file or directory.",
	)

	LastRunTimestamp = NewSizeGauge(
		"delfiles_last_run_timestamp",
		"Timestamp of the last run (Unix epoch seconds).",
	)
}

func registerRunMetrics() {
	Registry.MustRegister(RunDuration)
	Registry.MustRegister(MatchesFoundTotal)
	Registry.MustRegister(DirectoriesListedTotal)
	Registry.MustRegister(RemovalsTotal)
	Registry.MustRegister(BytesFreedTotal)
	Registry.MustRegister(RemovedItemBytes)
	Registry.MustRegister(LastRunTimestamp)
}

// RecordRun observes the duration of a finished run and stamps its end time
func RecordRun(started time.Time) {
	RunDuration.Observe(time.Since(started).Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordScan adds the totals of one traversal
func RecordScan(matches, dirsListed int) {
	MatchesFoundTotal.Add(float64(matches))
	DirectoriesListedTotal.Add(float64(dirsListed))
}

// RecordRemoval counts one outcome; bytes only count towards the freed total
// for deleted items
func RecordRemoval(status string, bytes int64) {
	RemovalsTotal.WithLabelValues(status).Inc()
	if status == StatusDeleted && bytes > 0 {
		BytesFreedTotal.Add(float64(bytes))
		RemovedItemBytes.Observe(float64(bytes))
	}
}
