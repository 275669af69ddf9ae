package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// isolate points every lookup at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvTemplate, "")
	t.Setenv(EnvReplaceKeys, "")
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Template != "full" || cfg.ReplaceKeys {
		t.Errorf("Load() = %+v, want full template without key replacement", cfg)
	}
	if cfg.OutputSuffix != DefaultOutputSuffix || cfg.RemarksLog != DefaultRemarksLog {
		t.Errorf("Load() = %+v, want default paths", cfg)
	}
	if len(cfg.Sources) != 1 {
		t.Errorf("Sources = %v, want only defaults", cfg.Sources)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, LocalConfigFile), `
template: short
replace_keys: true
journals:
  Journal of Fancy Results: JFR
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Template != "short" || !cfg.ReplaceKeys {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.OutputSuffix != DefaultOutputSuffix {
		t.Errorf("OutputSuffix = %q, unset keys should keep defaults", cfg.OutputSuffix)
	}
	if abbrev, ok := cfg.JournalTable().Lookup("Journal of Fancy Results"); !ok || abbrev != "JFR" {
		t.Errorf("JournalTable().Lookup() = %q, %v, want JFR", abbrev, ok)
	}
	if abbrev, ok := cfg.JournalTable().Lookup("Journal of Machine Learning Research"); !ok || abbrev != "JMLR" {
		t.Errorf("configured journals should extend the defaults, got %q, %v", abbrev, ok)
	}
}

func TestLoad_GlobalFile(t *testing.T) {
	dir := isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, GlobalConfigDir, GlobalConfigFile), "template: short\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Template != "short" {
		t.Errorf("Template = %q, want short from the global file", cfg.Template)
	}

	// A local file takes precedence
	writeFile(t, filepath.Join(dir, LocalConfigFile), "template: full\n")
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Template != "full" {
		t.Errorf("Template = %q, want full from the local file", cfg.Template)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, LocalConfigFile), "template: full\nreplace_keys: false\n")
	t.Setenv(EnvTemplate, "SHORT")
	t.Setenv(EnvReplaceKeys, "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Template != "short" || !cfg.ReplaceKeys {
		t.Errorf("Load() = %+v, want env values", cfg)
	}
	if n := len(cfg.Sources); n != 4 {
		t.Errorf("Sources = %v, want defaults, file and two variables", cfg.Sources)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr error
	}{
		{name: "invalid template", file: "template: medium\n", wantErr: ErrInvalidTemplate},
		{name: "invalid env template", env: map[string]string{EnvTemplate: "long"}, wantErr: ErrInvalidTemplate},
		{name: "invalid yaml", file: "template: [\n"},
		{name: "invalid bool", env: map[string]string{EnvReplaceKeys: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, LocalConfigFile), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	tests := []struct {
		input string
		want  string
	}{
		{"refs.bib", "refs_cleaned.bib"},
		{"/data/papers/refs.bib", "/data/papers/refs_cleaned.bib"},
		{"refs", "refs_cleaned.bib"},
		{"refs.BIB", "refs_cleaned.bib"},
	}
	for _, tt := range tests {
		if got := cfg.OutputPath(tt.input); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRemarksLogPath(t *testing.T) {
	cfg := Default()
	if got := cfg.RemarksLogPath("/data/refs.bib"); got != "/data/remarks.log" {
		t.Errorf("RemarksLogPath() = %q, want /data/remarks.log", got)
	}
	cfg.RemarksLog = "/var/log/bib.log"
	if got := cfg.RemarksLogPath("/data/refs.bib"); got != "/var/log/bib.log" {
		t.Errorf("RemarksLogPath() = %q, want the absolute path unchanged", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/logs/remarks.log", filepath.Join(home, "logs/remarks.log")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
