package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"kbpkit/internal/config"
	"kbpkit/internal/kbp"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KBPKIT_STATE_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "kbpkit", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "kbpkit"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if !cfg.History.Enabled || cfg.History.Limit != 20 {
		t.Fatalf("unexpected history defaults %+v", cfg.History)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Parse.Tolerant || cfg.Write.AllowOverwrite || !cfg.Write.Backup {
		t.Fatalf("unexpected parse/write defaults %+v %+v", cfg.Parse, cfg.Write)
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("KBPKIT_STATE_DIR", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "kbpkit.toml")
	content := `
[paths]
state_dir = "` + filepath.ToSlash(filepath.Join(dir, "state")) + `"

[parse]
tolerant = true
encoding = " Windows-1252 "

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Parse.Encoding != kbp.EncodingWindows1252 {
		t.Fatalf("encoding = %q", cfg.Parse.Encoding)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	opts := cfg.ParseOptions(nil)
	if !opts.Tolerant || opts.Encoding != kbp.EncodingWindows1252 || opts.ResolveColors {
		t.Fatalf("unexpected parse options %+v", opts)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(filepath.Join(dir, "state")); err != nil || !info.IsDir() {
		t.Fatalf("state dir not created: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"encoding":       "[parse]\nencoding = \"ebcdic\"\n",
		"write encoding": "[write]\nencoding = \"utf-16\"\n",
		"format":         "[logging]\nformat = \"xml\"\n",
		"level":          "[logging]\nlevel = \"trace\"\n",
		"unknown key":    "[parse]\nstrict = true\n",
		"bad toml":       "[parse\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected Load to fail")
			}
		})
	}
}

func TestStateDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KBPKIT_STATE_DIR", dir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != dir {
		t.Fatalf("state dir = %q, want %q", cfg.Paths.StateDir, dir)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var parsed config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &parsed); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	want := config.Default()
	if parsed != want {
		t.Fatalf("sample config drifted from defaults:\n got %+v\nwant %+v", parsed, want)
	}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[history]") {
		t.Fatal("written sample is missing sections")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/songs")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "songs") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
