package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarthakgaur/del-files/internal/database"
	"github.com/sarthakgaur/del-files/internal/report"
)

var errNoHistoryDB = errors.New("no history database configured, set --history-db or history_db in the profile")

type historyOpts struct {
	recent  int
	stats   bool
	days    int
	run     string
	action  string
	largest int
	prune   int
	json    bool
}

func newHistoryCmd(v *viper.Viper, s streams) *cobra.Command {
	var o historyOpts

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the deletion history database.",
		Example: `  del-files history --recent 20
  del-files history --stats --days 7
  del-files history --action ERROR --json
  del-files history --prune 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := historyPath(v)
			if err != nil {
				return invalidConfig(err)
			}

			db, err := database.NewDeletionDB(path)
			if err != nil {
				return runtimeError(fmt.Errorf("open history database %s: %w", path, err))
			}
			defer db.Close()

			if err := showHistory(db, o, s.out); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.recent, "recent", 0, "show N most recent records (default 10 when no other query is given)")
	f.BoolVar(&o.stats, "stats", false, "show statistics")
	f.IntVar(&o.days, "days", 30, "number of days covered by --stats")
	f.StringVar(&o.run, "run", "", "show the records of one run")
	f.StringVar(&o.action, "action", "", "filter by action (DELETE, SKIP, ERROR, DRY_RUN)")
	f.IntVar(&o.largest, "largest", 0, "show N largest deletions")
	f.IntVar(&o.prune, "prune", 0, "delete records older than N days")
	f.BoolVar(&o.json, "json", false, "output in JSON format")

	return cmd
}

// historyPath resolves the database from flag, environment or profile
func historyPath(v *viper.Viper) (string, error) {
	path := v.GetString("history-db")
	if path == "" {
		cfg, err := readProfile(v)
		if err != nil {
			return "", err
		}
		path = cfg.HistoryDB
	}
	if path == "" {
		return "", errNoHistoryDB
	}
	return homedir.Expand(path)
}

func showHistory(db *database.DeletionDB, o historyOpts, w io.Writer) error {
	switch {
	case o.prune > 0:
		return pruneHistory(db, o.prune, w)
	case o.stats:
		return showStats(db, o.days, o.json, w)
	case o.run != "":
		records, err := db.GetDeletionsByRun(o.run)
		if err != nil {
			return fmt.Errorf("query run %s: %w", o.run, err)
		}
		return printRecords(w, records, o.json)
	case o.action != "":
		records, err := db.GetDeletionsByAction(o.action)
		if err != nil {
			return fmt.Errorf("query by action: %w", err)
		}
		return printRecords(w, records, o.json)
	case o.largest > 0:
		records, err := db.GetLargestDeletions(o.largest)
		if err != nil {
			return fmt.Errorf("query largest deletions: %w", err)
		}
		return printRecords(w, records, o.json)
	default:
		limit := o.recent
		if limit <= 0 {
			limit = 10
		}
		records, err := db.GetRecentDeletions(limit)
		if err != nil {
			return fmt.Errorf("query recent deletions: %w", err)
		}
		return printRecords(w, records, o.json)
	}
}

func pruneHistory(db *database.DeletionDB, days int, w io.Writer) error {
	n, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("vacuum history: %w", err)
	}
	fmt.Fprintf(w, "Removed %d records older than %d days.\n", n, days)
	return nil
}

func showStats(db *database.DeletionDB, days int, jsonOutput bool, w io.Writer) error {
	stats, err := db.GetDeletionStats(days)
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}
	dbStats, err := db.GetDatabaseStats()
	if err != nil {
		return fmt.Errorf("get database statistics: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, struct {
			*database.DeletionStats
			Database *database.DatabaseStats `json:"database"`
		}{stats, dbStats})
	}

	fmt.Fprintf(w, "Deletion Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Runs:             %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Total Deletions:  %d\n", stats.TotalDeletions)
	fmt.Fprintf(w, "Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Fprintf(w, "Total Errors:     %d\n", stats.TotalErrors)
	fmt.Fprintf(w, "Total Dry Runs:   %d\n", stats.TotalDryRun)
	fmt.Fprintf(w, "Space Freed:      %s\n\n", report.FormatBytes(stats.TotalSpaceFreed))

	if len(stats.ByAction) > 0 {
		fmt.Fprintln(w, "By Action:")
		actions := make([]string, 0, len(stats.ByAction))
		for action := range stats.ByAction {
			actions = append(actions, action)
		}
		sort.Strings(actions)
		for _, action := range actions {
			fmt.Fprintf(w, "  %-15s %d\n", action, stats.ByAction[action])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Database: %d records, %s\n", dbStats.TotalRecords, report.FormatBytes(dbStats.SizeBytes))
	return nil
}

func printRecords(w io.Writer, records []database.DeletionRecord, jsonOutput bool) error {
	if jsonOutput {
		if records == nil {
			records = []database.DeletionRecord{}
		}
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTimestamp\tAction\tType\tSize\tPath")
	_, _ = fmt.Fprintln(tw, "--\t---------\t------\t----\t----\t----")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, r.ObjectType, report.FormatBytes(r.Size), r.Path)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
