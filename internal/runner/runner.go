// Package runner wires one find-confirm-delete pass together.
package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sarthakgaur/del-files/internal/cleanup"
	"github.com/sarthakgaur/del-files/internal/config"
	"github.com/sarthakgaur/del-files/internal/disk"
	"github.com/sarthakgaur/del-files/internal/fsops"
	"github.com/sarthakgaur/del-files/internal/metrics"
	"github.com/sarthakgaur/del-files/internal/prompt"
	"github.com/sarthakgaur/del-files/internal/report"
	"github.com/sarthakgaur/del-files/internal/scan"
)

var errNilConfig = errors.New("nil config")

// Options carries the streams and optional collaborators of a run.
// Zero values mean stdin, stdout, stderr, the real filesystem and no history.
type Options struct {
	In      io.Reader
	Out     io.Writer
	ErrOut  io.Writer
	Color   bool
	Logger  logrus.FieldLogger
	FS      fsops.FS
	History cleanup.HistoryRecorder
}

func (o *Options) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.ErrOut == nil {
		o.ErrOut = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
}

// Summary describes a finished run
type Summary struct {
	RunID   string
	Matches []scan.Match
	Result  cleanup.Result
}

// Run performs one pass: collect matches beneath cfg.Directory, report the
// count, confirm and remove each match, then report the space freed.
// Traversal errors, a closed prompt and cancellation are returned; per-item
// removal failures are only reported.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	opts.defaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.Init()
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	logger := opts.Logger.WithField("run_id", sum.RunID)

	defer writeMetrics(cfg, logger)
	defer metrics.RecordRun(start)

	// The prompt channel lives for the whole run and is released on every path
	var confirmer prompt.Confirmer = prompt.Always{}
	if !cfg.SkipConfirmation {
		p := prompt.Open(opts.In, opts.Out)
		defer p.Close()
		confirmer = p
	}

	scanner := scan.NewScanner(opts.FS, logger)
	matches, err := scanner.Collect(ctx, cfg)
	stats := scanner.Stats()
	metrics.RecordScan(len(matches), stats.DirsListed)
	if err != nil {
		return sum, err
	}
	sum.Matches = matches

	rep := report.New(opts.Out, opts.ErrOut, opts.Color)
	rep.Found(len(matches))
	if len(matches) == 0 {
		return sum, nil
	}

	cleaner := cleanup.NewCleaner(cfg, confirmer, rep, logger)
	if opts.FS != nil {
		cleaner.SetDeleter(opts.FS)
	}
	if opts.History != nil {
		cleaner.SetHistory(opts.History, sum.RunID)
	}

	sum.Result, err = cleaner.Remove(ctx, matches)
	if err != nil {
		return sum, err
	}

	if cfg.Size {
		if cfg.DryRun {
			rep.WouldFree(sum.Result.WouldFree)
		} else {
			rep.Freed(sum.Result.Freed)
		}
	}

	if sum.Result.Deleted() > 0 {
		logDiskUsage(cfg.Directory, logger)
	}

	logger.WithFields(logrus.Fields{
		"matches":     len(matches),
		"deleted":     sum.Result.Deleted(),
		"failed":      sum.Result.Failed(),
		"freed_bytes": sum.Result.Freed,
		"duration":    time.Since(start).String(),
	}).Info("run complete")

	return sum, nil
}

// logDiskUsage records the free space left on the filesystem of dir
func logDiskUsage(dir string, logger logrus.FieldLogger) {
	u, err := disk.GetUsage(dir)
	if err != nil {
		logger.WithError(err).Debug("disk usage unavailable")
		return
	}
	metrics.UpdateDiskMetrics(dir, u.FreeBytes, u.TotalBytes)
	logger.WithFields(logrus.Fields{
		"path":         dir,
		"free":         report.FormatBytes(int64(u.FreeBytes)),
		"free_percent": u.FreePercent(),
	}).Info("disk usage after removal")
}

func writeMetrics(cfg *config.Config, logger logrus.FieldLogger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.WithError(err).Warn("failed to write metrics")
	}
}
