package cleanup

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarthakgaur/del-files/internal/config"
	"github.com/sarthakgaur/del-files/internal/fsops"
	"github.com/sarthakgaur/del-files/internal/metrics"
	"github.com/sarthakgaur/del-files/internal/prompt"
	"github.com/sarthakgaur/del-files/internal/safety"
	"github.com/sarthakgaur/del-files/internal/scan"
)

// ErrNoConfirmer is returned when confirmation is required but nothing can answer
var ErrNoConfirmer = errors.New("confirmation required but no prompt is available")

// Reporter receives one event per processed item
type Reporter interface {
	Deleted(path string)
	Failed(path string, err error)
	Skipped(path string)
	WouldRemove(path string)
}

// HistoryRecorder persists outcomes, e.g. to the deletion history database
type HistoryRecorder interface {
	RecordOutcome(runID string, o Outcome, isDir bool) error
}

// Outcome is the result of processing one match.
// Bytes is 0 when size was not requested or the item was skipped.
type Outcome struct {
	Path      string
	Bytes     int64
	Succeeded bool
	Skipped   bool
	DryRun    bool
	Err       error
}

// Action returns the history action name of the outcome
func (o Outcome) Action() string {
	switch {
	case o.Skipped:
		return "SKIP"
	case o.Err != nil:
		return "ERROR"
	case o.DryRun:
		return "DRY_RUN"
	default:
		return "DELETE"
	}
}

func (o Outcome) status() string {
	switch o.Action() {
	case "SKIP":
		return metrics.StatusSkipped
	case "ERROR":
		return metrics.StatusFailed
	case "DRY_RUN":
		return metrics.StatusDryRun
	default:
		return metrics.StatusDeleted
	}
}

// Result collects the outcomes of a batch. Freed sums Bytes over succeeded
// outcomes only; WouldFree is its dry-run counterpart.
type Result struct {
	Outcomes  []Outcome
	Freed     int64
	WouldFree int64
}

// Deleted counts succeeded outcomes
func (r Result) Deleted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// Failed counts outcomes that carry an error
func (r Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Cleaner confirms, measures and deletes matches one at a time
type Cleaner struct {
	cfg       *config.Config
	fs        fsops.FS
	confirmer prompt.Confirmer
	validator *safety.Validator
	reporter  Reporter
	logger    logrus.FieldLogger
	history   HistoryRecorder
	runID     string
}

// NewCleaner creates a Cleaner for cfg. Deletes go through the real
// filesystem and are validated against cfg.Directory until overridden.
func NewCleaner(cfg *config.Config, confirmer prompt.Confirmer, reporter Reporter, logger logrus.FieldLogger) *Cleaner {
	metrics.Init()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cleaner{
		cfg:       cfg,
		fs:        fsops.OS{},
		confirmer: confirmer,
		validator: safety.NewValidator(cfg.Directory, cfg.ProtectedPaths),
		reporter:  reporter,
		logger:    logger,
	}
}

// SetDeleter replaces the filesystem used for measuring and deleting
func (c *Cleaner) SetDeleter(fsys fsops.FS) {
	c.fs = fsys
}

// SetValidator replaces the safety validator
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// SetHistory records every outcome under runID
func (c *Cleaner) SetHistory(h HistoryRecorder, runID string) {
	c.history = h
	c.runID = runID
}

// Remove processes matches in order. Per-item failures are reported and the
// batch continues; a closed confirmation channel or a cancelled context stops
// it and is returned together with the partial result.
func (c *Cleaner) Remove(ctx context.Context, matches []scan.Match) (Result, error) {
	var res Result

	if !c.cfg.SkipConfirmation && c.confirmer == nil && len(matches) > 0 {
		return res, ErrNoConfirmer
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		o, err := c.removeOne(ctx, m)
		if err != nil {
			return res, err
		}

		res.Outcomes = append(res.Outcomes, o)
		switch {
		case o.Succeeded:
			res.Freed += o.Bytes
		case o.DryRun && o.Err == nil:
			res.WouldFree += o.Bytes
		}
		c.record(o, m.IsDir)
	}

	c.logger.WithFields(logrus.Fields{
		"deleted":     res.Deleted(),
		"failed":      res.Failed(),
		"freed_bytes": res.Freed,
	}).Info("removal complete")

	return res, nil
}

func (c *Cleaner) removeOne(ctx context.Context, m scan.Match) (Outcome, error) {
	o := Outcome{Path: m.Path, DryRun: c.cfg.DryRun}

	if !c.cfg.SkipConfirmation {
		ok, err := c.confirmer.Confirm(m.Path)
		if err != nil {
			return o, fmt.Errorf("confirm %s: %w", m.Path, err)
		}
		if !ok {
			o.Skipped = true
			c.reporter.Skipped(m.Path)
			return o, nil
		}
	}

	if err := c.validator.ValidateDeleteTarget(m.Path); err != nil {
		return c.fail(o, fmt.Errorf("unsafe path: %w", err)), nil
	}

	if c.cfg.Size {
		n, err := scan.Size(ctx, c.fs, m.Path)
		if err != nil {
			return c.fail(o, fmt.Errorf("measure: %w", err)), nil
		}
		o.Bytes = n
	} else if _, err := c.fs.Lstat(m.Path); err != nil {
		// RemoveAll succeeds on a missing path, so a vanished match is caught here
		return c.fail(o, err), nil
	}

	if c.cfg.DryRun {
		c.reporter.WouldRemove(m.Path)
		return o, nil
	}

	if err := c.fs.RemoveAll(m.Path); err != nil {
		return c.fail(o, err), nil
	}

	o.Succeeded = true
	c.reporter.Deleted(m.Path)
	return o, nil
}

func (c *Cleaner) fail(o Outcome, err error) Outcome {
	o.Err = err
	c.logger.WithFields(logrus.Fields{
		"path":  o.Path,
		"error": err,
	}).Error("failed to remove")
	c.reporter.Failed(o.Path, err)
	return o
}

// record logs the outcome and feeds metrics and history. History failures
// never fail the batch.
func (c *Cleaner) record(o Outcome, isDir bool) {
	c.logger.WithFields(logrus.Fields{
		"action": o.Action(),
		"path":   o.Path,
		"object": objectType(isDir),
		"size":   o.Bytes,
	}).Debug("processed")

	metrics.RecordRemoval(o.status(), o.Bytes)

	if c.history == nil {
		return
	}
	if err := c.history.RecordOutcome(c.runID, o, isDir); err != nil {
		c.logger.WithError(err).Warn("failed to record to history database")
	}
}

func objectType(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}
