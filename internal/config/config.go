package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

type LoggingCfg struct {
	Level        string `yaml:"level" json:"level"`                 // debug, info, warn, error
	File         string `yaml:"file" json:"file"`                   // Optional log file, appended to alongside stderr
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

// Config is the immutable description of a single run.
// It is read from an optional YAML profile and then overlaid with flags and environment.
type Config struct {
	Directory        string     `yaml:"directory" json:"directory"`
	Targets          NameSet    `yaml:"targets" json:"targets"`
	Exclude          NameSet    `yaml:"exclude" json:"exclude"`
	Recurse          bool       `yaml:"recurse" json:"recurse"`
	SkipConfirmation bool       `yaml:"skip_confirmation" json:"skip_confirmation"`
	Size             bool       `yaml:"size" json:"size"`
	DryRun           bool       `yaml:"dry_run" json:"dry_run"`
	HistoryDB        string     `yaml:"history_db" json:"history_db"`     // SQLite file recording every outcome, disabled when empty
	MetricsFile      string     `yaml:"metrics_file" json:"metrics_file"` // Prometheus textfile written at the end of a run
	ProtectedPaths   []string   `yaml:"protected_paths" json:"protected_paths"`
	Logging          LoggingCfg `yaml:"logging" json:"logging"`
}

var (
	ErrNoTargets        = errors.New("target file/directory not provided")
	ErrInvalidTarget    = errors.New("target and exclude entries must be plain base names")
	ErrInvalidDirectory = errors.New("invalid directory")
	errInvalidLevel     = errors.New("log level must be one of debug, info, warn, error")
)

// Load reads the YAML profile at path and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read decodes the YAML profile at path without validating it, so that
// command-line overrides can be applied first.
func Read(path string) (*Config, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty profile
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks required fields and fills in defaults.
func (c *Config) Validate() error {
	return c.validateAndDefault()
}

func (c *Config) validateAndDefault() error {
	if c.Targets.Len() == 0 {
		return ErrNoTargets
	}
	for _, name := range append(c.Targets.Names(), c.Exclude.Names()...) {
		if !isBaseName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidTarget, name)
		}
	}

	// Searching the home directory is the convenience default
	if strings.TrimSpace(c.Directory) == "" {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("%w: resolve home directory: %v", ErrInvalidDirectory, err)
		}
		c.Directory = home
	}
	dir, err := cleanAbsolute(c.Directory)
	if err != nil {
		return err
	}
	c.Directory = dir

	protected := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		protected = append(protected, cp)
	}
	c.ProtectedPaths = protected

	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: got %q", errInvalidLevel, c.Logging.Level)
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.HistoryDB != "" {
		if c.HistoryDB, err = homedir.Expand(c.HistoryDB); err != nil {
			return fmt.Errorf("history_db: %w", err)
		}
	}
	if c.MetricsFile != "" {
		if c.MetricsFile, err = homedir.Expand(c.MetricsFile); err != nil {
			return fmt.Errorf("metrics_file: %w", err)
		}
	}
	if c.Logging.File != "" {
		if c.Logging.File, err = homedir.Expand(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}

	return nil
}

func isBaseName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator)
}

func cleanAbsolute(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrInvalidDirectory
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, p, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, p, err)
	}
	return filepath.Clean(abs), nil
}
