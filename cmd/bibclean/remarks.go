package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclean/internal/remark"
	"github.com/matsen/bibclean/internal/storage"
)

var (
	remarksDBPath   string
	remarksRunID    int64
	remarksSeverity string
	remarksKey      string
	remarksListRuns bool
)

func init() {
	remarksCmd.Flags().StringVar(&remarksDBPath, "db", "", "Remarks database written by clean --remarks-db")
	remarksCmd.Flags().Int64Var(&remarksRunID, "run", 0, "Only remarks of this run")
	remarksCmd.Flags().StringVar(&remarksSeverity, "severity", "", "Only remarks of this severity (warning or info)")
	remarksCmd.Flags().StringVar(&remarksKey, "key", "", "Only remarks about this original entry key")
	remarksCmd.Flags().BoolVar(&remarksListRuns, "runs", false, "List runs instead of remarks")
	remarksCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(remarksCmd)
}

var remarksCmd = &cobra.Command{
	Use:   "remarks",
	Short: "Query stored remarks",
	Long: `Query the remarks stored by clean --remarks-db.

Examples:
  bibclean remarks --db remarks.db --runs
  bibclean remarks --db remarks.db --run 3 --severity warning
  bibclean remarks --db remarks.db --key smith2020 --human`,
	Args: cobra.NoArgs,
	RunE: runRemarks,
}

func runRemarks(cmd *cobra.Command, args []string) error {
	filter, err := remarkFilter(remarksRunID, remarksSeverity, remarksKey)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db, err := storage.OpenRemarkDB(remarksDBPath)
	if err != nil {
		exitWithError(ExitError, "opening remarks database: %v", err)
	}
	defer db.Close()

	if remarksListRuns {
		runs, err := db.ListRuns()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !humanOutput {
			return outputJSON(runs)
		}
		if len(runs) == 0 {
			outputHuman("No runs recorded\n")
		}
		for _, r := range runs {
			outputHuman("%d  %s  %s  template=%s replace_keys=%v  entries=%d keys_changed=%d remarks=%d\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Input, r.Template, r.ReplaceKeys,
				r.Entries, r.KeysChanged, r.Remarks)
		}
		return nil
	}

	remarks, err := db.ListRemarks(filter)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !humanOutput {
		if remarks == nil {
			remarks = []storage.StoredRemark{}
		}
		return outputJSON(remarks)
	}
	if len(remarks) == 0 {
		outputHuman("No remarks found\n")
	}
	for _, r := range remarks {
		outputHuman("[%d] %s\n", r.RunID, r.Remark)
	}
	return nil
}

// remarkFilter validates the query flags.
func remarkFilter(run int64, severity, key string) (storage.RemarkFilter, error) {
	f := storage.RemarkFilter{RunID: run, EntryKey: key}
	switch sev := remark.Severity(severity); sev {
	case "", remark.Warning, remark.Info:
		f.Severity = sev
	default:
		return f, fmt.Errorf("invalid severity %q (valid: %s, %s)", severity, remark.Warning, remark.Info)
	}
	if run < 0 {
		return f, fmt.Errorf("invalid run id %d", run)
	}
	return f, nil
}
