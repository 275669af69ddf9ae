// Package config loads bibclean settings from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matsen/bibclean/internal/citekey"
)

// Config holds the settings of a cleaning run.
type Config struct {
	Template     string            `yaml:"template" json:"template"`
	ReplaceKeys  bool              `yaml:"replace_keys" json:"replace_keys"`
	Journals     map[string]string `yaml:"journals,omitempty" json:"journals,omitempty"` // Journal name -> key abbreviation
	OutputSuffix string            `yaml:"output_suffix" json:"output_suffix"`
	RemarksLog   string            `yaml:"remarks_log" json:"remarks_log"` // Relative paths resolve next to the input

	// Sources lists where settings came from, lowest precedence first.
	Sources []string `yaml:"-" json:"sources"`
}

const (
	// LocalConfigFile is looked up in the working directory first.
	LocalConfigFile = ".bibclean.yml"

	EnvTemplate    = "BIBCLEAN_TEMPLATE"
	EnvReplaceKeys = "BIBCLEAN_REPLACE_KEYS"

	DefaultOutputSuffix = "_cleaned"
	DefaultRemarksLog   = "remarks.log"
)

// ErrInvalidTemplate is returned for a template other than short or full.
var ErrInvalidTemplate = errors.New("invalid template")

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Template:     string(citekey.Full),
		OutputSuffix: DefaultOutputSuffix,
		RemarksLog:   DefaultRemarksLog,
		Sources:      []string{"defaults"},
	}
}

// FindFile returns the config file to use from dir: the local file if it
// exists, else the global one if it exists, else "".
func FindFile(dir string) string {
	local := filepath.Join(dir, LocalConfigFile)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global
		}
	}
	return ""
}

// Load builds the configuration for a run started in dir: defaults, then
// the config file, then the environment. The result is validated.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if path := FindFile(dir); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.Sources = append(c.Sources, path)
	return nil
}

// ApplyEnv overrides settings from environment variables read through
// lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTemplate); ok && v != "" {
		c.Template = v
		c.Sources = append(c.Sources, EnvTemplate)
	}
	if v, ok := lookup(EnvReplaceKeys); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvReplaceKeys, err)
		}
		c.ReplaceKeys = b
		c.Sources = append(c.Sources, EnvReplaceKeys)
	}
	return nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	c.Template = strings.ToLower(strings.TrimSpace(c.Template))
	if !citekey.Template(c.Template).Valid() {
		return fmt.Errorf("%w: %q (valid: %s, %s)", ErrInvalidTemplate, c.Template, citekey.Short, citekey.Full)
	}
	return nil
}

// JournalTable returns the default journals extended by the configured
// ones.
func (c *Config) JournalTable() *citekey.JournalTable {
	return citekey.NewJournalTable(c.Journals)
}

// OutputPath returns where the cleaned copy of input is written:
// refs.bib becomes refs_cleaned.bib.
func (c *Config) OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + c.OutputSuffix + ".bib"
}

// RemarksLogPath returns the remarks log location for input.
func (c *Config) RemarksLogPath(input string) string {
	path := ExpandPath(c.RemarksLog)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(input), path)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
