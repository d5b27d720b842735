package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarthakgaur/del-files/internal/config"
)

// NewWithConfig creates a logger at the configured level writing to out and,
// when cfg.File is set, appending to that file with rotation.
// The returned closer releases the log file and is never nil.
func NewWithConfig(cfg config.LoggingCfg, out io.Writer) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		logger.Warnf("%v, using warn", err)
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if cfg.File == "" {
		return logger, nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		logger.Warnf("failed to ensure log directory for %s: %v", cfg.File, err)
		return logger, nopCloser{}
	}

	rotateDays := 30 // default
	if cfg.RotationDays > 0 {
		rotateDays = cfg.RotationDays
	}
	rotateLogsIfNeeded(cfg.File, rotateDays, logger)

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warnf("failed to open log file %s: %v", cfg.File, err)
		return logger, nopCloser{}
	}

	logger.SetOutput(io.MultiWriter(out, f))
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger, f
}

// ParseLevel maps a level name to a logrus level.
// An empty name means warn; trace and panic are not exposed.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "", "warning", "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.WarnLevel, fmt.Errorf("bad log level %q", level)
	}
}

// rotateLogsIfNeeded rotates log files older than the specified days
func rotateLogsIfNeeded(logPath string, rotationDays int, logger logrus.FieldLogger) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			logger.Warnf("failed to rotate log file: %v", err)
			return
		}

		cleanupOldLogs(logPath, rotationDays, logger)
	}
}

// cleanupOldLogs removes rotated log files older than rotation days
func cleanupOldLogs(logPath string, rotationDays int, logger logrus.FieldLogger) {
	logDir := filepath.Dir(logPath)
	prefix := filepath.Base(logPath) + "."

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			fullPath := filepath.Join(logDir, entry.Name())
			if err := os.Remove(fullPath); err != nil {
				logger.Warnf("failed to remove old log file %s: %v", fullPath, err)
			}
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
