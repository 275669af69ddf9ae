package main

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bibclean/internal/citekey"
	"github.com/matsen/bibclean/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration and where it came from.

Settings are read, lowest precedence first, from the built-in defaults,
` + config.LocalConfigFile + ` in the working directory (or the global config file),
and the BIBCLEAN_TEMPLATE and BIBCLEAN_REPLACE_KEYS environment variables.
A .env file in the working directory is loaded first. Flags of the clean
command override everything.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// loadConfig reads .env and the configuration for the working directory.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if !humanOutput {
		return outputJSON(cfg)
	}

	outputHuman("template:      %s\n", cfg.Template)
	outputHuman("replace_keys:  %v\n", cfg.ReplaceKeys)
	outputHuman("output_suffix: %s\n", cfg.OutputSuffix)
	outputHuman("remarks_log:   %s\n", cfg.RemarksLog)
	if len(cfg.Journals) > 0 {
		names := make([]string, 0, len(cfg.Journals))
		for name := range cfg.Journals {
			names = append(names, name)
		}
		sort.Strings(names)
		outputHuman("journals:\n")
		for _, name := range names {
			outputHuman("  %s: %s\n", name, cfg.Journals[name])
		}
	}
	outputHuman("sources:       %s\n", strings.Join(cfg.Sources, ", "))
	outputHuman("\nProceedings entries are expected to look like:\n%s\n",
		citekey.ProceedingsTemplate(citekey.Template(cfg.Template)))
	if len(cfg.Sources) == 1 {
		outputHuman("\n%s", config.HelpfulConfigMessage())
	}
	return nil
}
