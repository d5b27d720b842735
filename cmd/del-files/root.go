package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sarthakgaur/del-files/internal/cleanup"
	"github.com/sarthakgaur/del-files/internal/config"
	"github.com/sarthakgaur/del-files/internal/database"
	"github.com/sarthakgaur/del-files/internal/exitcodes"
	"github.com/sarthakgaur/del-files/internal/logging"
	"github.com/sarthakgaur/del-files/internal/runner"
)

const (
	defaultProfile = ".del-files.yaml"
	envPrefix      = "DELFILES"
)

type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// exitError carries the process exit code of a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func invalidConfig(err error) error {
	return &exitError{code: exitcodes.InvalidConfig, err: err}
}

func runtimeError(err error) error {
	return &exitError{code: exitcodes.RuntimeError, err: err}
}

// execute runs the command line args and returns the process exit code
func execute(args []string, s streams) int {
	cmd := newRootCmd(s)
	cmd.SetArgs(args)
	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.errOut)

	err := cmd.Execute()
	if err == nil {
		return exitcodes.Success
	}

	fmt.Fprintln(s.errOut, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitcodes.RuntimeError
}

func newRootCmd(s streams) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "del-files [targets...]",
		Short: "Find and delete files and directories by name.",
		Long: `del-files searches a directory for entries whose name is one of the
targets and deletes them, asking for confirmation before each one.

Settings are read from a YAML profile ($HOME/.del-files.yaml by default),
then from DELFILES_* environment variables, then from flags.`,
		Example: `  del-files -d ~/code -r -s node_modules
  del-files -t .DS_Store -r -y
  del-files -d /tmp/x -t dist -e .git -r --dry-run -s`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, args)
			if err != nil {
				return invalidConfig(err)
			}
			return runDelete(cmd.Context(), cfg, s)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidConfig(err)
	})

	f := cmd.Flags()
	f.StringP("directory", "d", "", "directory to search in (default: $HOME)")
	f.StringSliceP("targets", "t", nil, "files or directories to delete")
	f.StringSliceP("exclude", "e", nil, "directory names not to descend into")
	f.BoolP("recurse", "r", false, "search recursively")
	f.BoolP("skip-confirmation", "y", false, "do not prompt before deleting")
	f.BoolP("size", "s", false, "output the disk space freed")
	f.Bool("dry-run", false, "list what would be removed, delete nothing")
	f.String("metrics-file", "", "write Prometheus text-format metrics here")

	pf := cmd.PersistentFlags()
	pf.String("config", "", "YAML profile (default $HOME/"+defaultProfile+")")
	pf.String("history-db", "", "SQLite file recording every outcome")
	pf.StringP("log-level", "l", "warn", "debug, info, warn, error")
	pf.String("log-file", "", "also append logs to this file")

	bindFlags(v, f, pf)

	cmd.AddCommand(newHistoryCmd(v, s))
	cmd.AddCommand(newVersionCmd(s))
	return cmd
}

// bindFlags makes every flag readable through v, with DELFILES_<FLAG>
// environment variables in between the profile and the flags
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, set := range sets {
		// Only fails for a nil flag
		_ = v.BindPFlags(set)
	}
}

// readProfile decodes the YAML profile. A missing default profile is an empty one.
func readProfile(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	explicit := path != ""
	if !explicit {
		home, err := homedir.Dir()
		if err != nil {
			return &config.Config{}, nil
		}
		path = filepath.Join(home, defaultProfile)
	}

	cfg, err := config.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return cfg, nil
}

// loadConfig layers flags and environment over the profile, adds positional
// targets and validates the result
func loadConfig(v *viper.Viper, args []string) (*config.Config, error) {
	cfg, err := readProfile(v)
	if err != nil {
		return nil, err
	}
	applyOverrides(v, cfg)
	cfg.Targets = cfg.Targets.Union(config.NewNameSet(args...))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("directory") {
		cfg.Directory = v.GetString("directory")
	}
	if v.IsSet("targets") {
		cfg.Targets = config.NewNameSet(v.GetStringSlice("targets")...)
	}
	if v.IsSet("exclude") {
		cfg.Exclude = config.NewNameSet(v.GetStringSlice("exclude")...)
	}
	if v.IsSet("recurse") {
		cfg.Recurse = v.GetBool("recurse")
	}
	if v.IsSet("skip-confirmation") {
		cfg.SkipConfirmation = v.GetBool("skip-confirmation")
	}
	if v.IsSet("size") {
		cfg.Size = v.GetBool("size")
	}
	if v.IsSet("dry-run") {
		cfg.DryRun = v.GetBool("dry-run")
	}
	if v.IsSet("history-db") {
		cfg.HistoryDB = v.GetString("history-db")
	}
	if v.IsSet("metrics-file") {
		cfg.MetricsFile = v.GetString("metrics-file")
	}
	if v.IsSet("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if v.IsSet("log-file") {
		cfg.Logging.File = v.GetString("log-file")
	}
}

func runDelete(parent context.Context, cfg *config.Config, s streams) error {
	logger, closer := logging.NewWithConfig(cfg.Logging, s.errOut)
	defer closer.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Warnf("received signal %v, stopping after the current item", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var history cleanup.HistoryRecorder
	if cfg.HistoryDB != "" {
		logger.WithField("path", cfg.HistoryDB).Debug("opening deletion history")
		db, err := database.NewDeletionDB(cfg.HistoryDB)
		if err != nil {
			return runtimeError(err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Error("failed to close history database")
			}
		}()
		history = db
	}

	if cfg.DryRun {
		logger.Info("dry run: nothing will be deleted")
	}

	_, err := runner.Run(ctx, cfg, runner.Options{
		In:      s.in,
		Out:     s.out,
		ErrOut:  s.errOut,
		Color:   colorEnabled(s.out),
		Logger:  logger,
		History: history,
	})
	if err != nil {
		logger.WithError(err).Debug("run aborted")
		return runtimeError(err)
	}
	return nil
}

// colorEnabled reports whether w is a terminal
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
