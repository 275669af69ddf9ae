package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibclean"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibclean/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// HelpfulConfigMessage explains where settings can be stored.
func HelpfulConfigMessage() string {
	return "Settings are read from " + LocalConfigFile + " in the working directory, or from " +
		GlobalConfigPath() + ".\nExample:\n  template: short\n  replace_keys: true\n  journals:\n    Journal of Fancy Results: JFR\n"
}
