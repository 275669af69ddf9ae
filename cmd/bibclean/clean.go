package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclean/internal/bibtex"
	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/cleaner"
	"github.com/matsen/bibclean/internal/config"
	"github.com/matsen/bibclean/internal/crossref"
	"github.com/matsen/bibclean/internal/logger"
	"github.com/matsen/bibclean/internal/remark"
	"github.com/matsen/bibclean/internal/storage"
)

// cleanFlags holds the flag values of the clean command.
type cleanFlags struct {
	template     string
	short        bool
	replaceKeys  bool
	output       string
	remarksLog   string
	remarksJSONL string
	remarksDB    string
	dryRun       bool
}

var cleanOpts cleanFlags

// dryRunRemarks receives the remarks of a dry run in place of the log file.
var dryRunRemarks io.Writer = os.Stderr

func init() {
	f := cleanCmd.Flags()
	f.StringVar(&cleanOpts.template, "template", "", "Proceedings title template (short or full)")
	f.BoolVar(&cleanOpts.short, "short", false, "Shorthand for --template short")
	f.BoolVar(&cleanOpts.replaceKeys, "replace-keys", false, "Replace keys instead of only suggesting them")
	f.StringVarP(&cleanOpts.output, "output", "o", "", "Output file (default <name>_cleaned.bib next to the input)")
	f.StringVar(&cleanOpts.remarksLog, "remarks-log", "", "Remarks log file (default remarks.log next to the input)")
	f.StringVar(&cleanOpts.remarksJSONL, "remarks-jsonl", "", "Also write remarks as JSON lines to this file")
	f.StringVar(&cleanOpts.remarksDB, "remarks-db", "", "Also store remarks in this SQLite database")
	f.BoolVar(&cleanOpts.dryRun, "dry-run", false, "Clean without writing any file")
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file.bib>",
	Short: "Clean a BibTeX file",
	Long: `Clean a BibTeX file.

Proceedings are processed first: their titles must follow the selected
template, from which their keys are derived. Every other entry then gets
normalized title, author and journal fields, a key of the form
Surname-VenueYear and crossrefs that follow renamed proceedings.

Examples:
  bibclean clean refs.bib
  bibclean clean refs.bib --short --replace-keys
  bibclean clean refs.bib --remarks-db remarks.db --human`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

// CleanResponse is the summary of a clean run.
type CleanResponse struct {
	Input      string              `json:"input"`
	Output     string              `json:"output,omitempty"`
	RemarksLog string              `json:"remarks_log,omitempty"`
	DryRun     bool                `json:"dry_run"`
	Template   string              `json:"template"`
	RunID      int64               `json:"run_id,omitempty"`
	Stats      cleaner.Stats       `json:"stats"`
	Renames    []crossref.Rename   `json:"renames"`
	Keys       []cleaner.KeyChange `json:"keys"`
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := applyCleanFlags(cfg, cleanOpts, cmd.Flags().Changed); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	resp, err := cleanFile(args[0], cfg, cleanOpts, log)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		printCleanHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

// applyCleanFlags overrides cfg with the flags the user set.
func applyCleanFlags(cfg *config.Config, flags cleanFlags, changed func(string) bool) error {
	if changed("template") {
		cfg.Template = flags.template
	}
	if flags.short {
		if changed("template") && flags.template != string(citekey.Short) {
			return fmt.Errorf("%w: --short conflicts with --template %s", errConfig, flags.template)
		}
		cfg.Template = string(citekey.Short)
	}
	if changed("replace-keys") {
		cfg.ReplaceKeys = flags.replaceKeys
	}
	if changed("remarks-log") {
		cfg.RemarksLog = flags.remarksLog
	}
	return cfg.Validate()
}

// cleanFile parses input, cleans it and writes the enabled outputs.
func cleanFile(input string, cfg *config.Config, flags cleanFlags, log logger.Logger) (*CleanResponse, error) {
	log = log.With("file", input)

	lib, err := bibtex.ParseFile(input)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", input, err)
	}
	log.Info("parsed entries", "count", len(lib.Entries()))

	resp := &CleanResponse{Input: input, DryRun: flags.dryRun, Template: cfg.Template}
	if !flags.dryRun {
		resp.Output = flags.output
		if resp.Output == "" {
			resp.Output = cfg.OutputPath(input)
		}
		resp.RemarksLog = cfg.RemarksLogPath(input)
	}

	var sinks []remark.Sink
	var finish []func() error

	if resp.RemarksLog != "" {
		f, err := os.Create(resp.RemarksLog)
		if err != nil {
			return nil, fmt.Errorf("creating remarks log: %w", err)
		}
		defer f.Close()
		sinks = append(sinks, remark.NewLogSink(f))
		finish = append(finish, f.Close)
	} else if flags.dryRun {
		sinks = append(sinks, remark.NewLogSink(dryRunRemarks))
	}

	if flags.remarksJSONL != "" && !flags.dryRun {
		w, err := storage.CreateJSONL(flags.remarksJSONL)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
		finish = append(finish, w.Close)
	}

	var db *storage.RemarkDB
	if flags.remarksDB != "" && !flags.dryRun {
		db, err = storage.OpenRemarkDB(flags.remarksDB)
		if err != nil {
			return nil, fmt.Errorf("opening remarks database: %w", err)
		}
		defer db.Close()
		resp.RunID, err = db.BeginRun(input, storage.RunConfig{Template: cfg.Template, ReplaceKeys: cfg.ReplaceKeys})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}

	c := cleaner.New(cleaner.Options{
		Template:    citekey.Template(cfg.Template),
		ReplaceKeys: cfg.ReplaceKeys,
		Journals:    cfg.JournalTable(),
	}, remark.Tee(sinks...))
	result := c.Run(lib)

	resp.Stats = result.Stats
	resp.Renames = result.Renames.Renames()
	resp.Keys = result.Keys
	log.Info("cleaned entries",
		"warnings", result.Stats.Warnings,
		"infos", result.Stats.Infos,
		"keys_changed", result.Stats.KeysChanged)

	if db != nil {
		if err := db.FinishRun(result.Stats.Entries, result.Stats.KeysChanged); err != nil {
			return nil, fmt.Errorf("storing remarks: %w", err)
		}
	}
	for _, fn := range finish {
		if err := fn(); err != nil {
			return nil, err
		}
	}

	if resp.Output != "" {
		if err := bibtex.WriteFile(resp.Output, lib); err != nil {
			return nil, err
		}
		log.Info("wrote output", "path", resp.Output)
	}
	return resp, nil
}

func printCleanHuman(resp *CleanResponse) {
	outputHuman("Cleaned %d entries of %s (%s template)\n", resp.Stats.Entries, resp.Input, resp.Template)
	outputHuman("  %d warnings, %d infos, %d keys changed\n",
		resp.Stats.Warnings, resp.Stats.Infos, resp.Stats.KeysChanged)
	for _, r := range resp.Renames {
		outputHuman("  proceedings %s -> %s\n", r.Old, r.New)
	}
	if resp.DryRun {
		outputHuman("Dry run, no files written\n")
		return
	}
	outputHuman("Output:  %s\n", resp.Output)
	outputHuman("Remarks: %s\n", resp.RemarksLog)
	if resp.RunID != 0 {
		outputHuman("Run ID:  %d\n", resp.RunID)
	}
}
