package scan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/sarthakgaur/del-files/internal/config"
	"github.com/sarthakgaur/del-files/internal/fsops"
)

// ErrTraversal wraps any directory listing failure. It is fatal for the run.
var ErrTraversal = errors.New("traversal failed")

var errNoConfig = errors.New("no configuration to scan with")

// Match is a directory entry whose base name is one of the targets
type Match struct {
	Path  string
	Name  string
	IsDir bool
	Depth int // 1 for immediate children of the root
}

// Stats counts the work done by the last Collect call
type Stats struct {
	DirsListed  int
	EntriesSeen int
}

// Scanner walks a directory tree breadth-first collecting matches
type Scanner struct {
	fs     fsops.Lister
	logger logrus.FieldLogger
	stats  Stats
}

// NewScanner creates a Scanner over the given filesystem
func NewScanner(fsys fsops.Lister, logger logrus.FieldLogger) *Scanner {
	if fsys == nil {
		fsys = fsops.OS{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{
		fs:     fsys,
		logger: logger,
	}
}

// Stats returns the counters of the last Collect call
func (s *Scanner) Stats() Stats {
	return s.stats
}

type pending struct {
	path  string
	depth int
}

// Collect returns every entry beneath cfg.Directory whose base name is in
// cfg.Targets, in breadth-first discovery order. Siblings keep listing order.
//
// A child directory is queued for listing only when recursion is enabled and
// its name is neither excluded nor a target, so a matched directory is never
// descended into. The root itself is never matched.
func (s *Scanner) Collect(ctx context.Context, cfg *config.Config) ([]Match, error) {
	if cfg == nil {
		return nil, errNoConfig
	}
	s.stats = Stats{}

	s.logger.WithFields(logrus.Fields{
		"root":    cfg.Directory,
		"targets": cfg.Targets.Names(),
		"exclude": cfg.Exclude.Names(),
		"recurse": cfg.Recurse,
	}).Debug("starting traversal")

	var matches []Match
	frontier := []pending{{path: cfg.Directory, depth: 0}}

	// frontier grows while it is consumed; next is the cursor into it
	for next := 0; next < len(frontier); next++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := frontier[next]
		entries, err := s.fs.ReadDir(dir.path)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", ErrTraversal, dir.path, err)
		}
		s.stats.DirsListed++

		for _, entry := range entries {
			s.stats.EntriesSeen++
			name := entry.Name()
			fullPath := filepath.Join(dir.path, name)

			isTarget := cfg.Targets.Has(name)
			if isTarget {
				matches = append(matches, Match{
					Path:  fullPath,
					Name:  name,
					IsDir: entry.IsDir(),
					Depth: dir.depth + 1,
				})
				s.logger.WithField("path", fullPath).Debug("target found")
			}

			if entry.IsDir() && cfg.Recurse && !cfg.Exclude.Has(name) && !isTarget {
				frontier = append(frontier, pending{path: fullPath, depth: dir.depth + 1})
			}
		}
		frontier[next] = pending{}
	}

	s.logger.WithFields(logrus.Fields{
		"root":         cfg.Directory,
		"matches":      len(matches),
		"dirs_listed":  s.stats.DirsListed,
		"entries_seen": s.stats.EntriesSeen,
	}).Info("traversal complete")

	return matches, nil
}
