package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbpkit/internal/testsupport"
)

func TestTextCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteSample(t, env.workDir, "song.kbp", 100)

	out, _, err := runCLI(t, []string{"text", path}, env.configPath)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if out != "Hello world\n" {
		t.Fatalf("text output = %q", out)
	}

	out, _, err = runCLI(t, []string{"text", "--syllable-separator", "/", path}, env.configPath)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if out != "Hello /world\n" {
		t.Fatalf("text output = %q", out)
	}
}

func TestStylesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteSample(t, env.workDir, "song.kbp", 100)

	out, _, err := runCLI(t, []string{"styles", path}, env.configPath)
	if err != nil {
		t.Fatalf("styles: %v", err)
	}
	requireContains(t, out, "Default")
	if strings.Contains(out, "Default_fixed") {
		t.Fatal("fixed variants should only be listed with --fixed")
	}

	out, _, err = runCLI(t, []string{"styles", "--fixed", "--json", path}, env.configPath)
	if err != nil {
		t.Fatalf("styles --fixed: %v", err)
	}
	var views []styleView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(views) != 2 {
		t.Fatalf("expected style and fixed variant, got %d", len(views))
	}
	fixed := views[1]
	if fixed.Key != -1 || fixed.Letter != "a" || !fixed.Fixed || !fixed.Derived || fixed.Name != "Default_fixed" {
		t.Fatalf("unexpected fixed variant: %+v", fixed)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.StateDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestInvalidConfigIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(testsupport.BaseDir(env.cfg), "bad.toml")
	testsupport.WriteFile(t, bad, []byte("[logging]\nformat = \"xml\"\n"))

	path := testsupport.WriteSample(t, env.workDir, "song.kbp", 100)
	if _, _, err := runCLI(t, []string{"check", path}, bad); err == nil {
		t.Fatal("expected invalid config to fail")
	}
}

func TestHistoryPruneAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, name := range []string{"a.kbp", "b.kbp", "c.kbp"} {
		path := testsupport.WriteSample(t, env.workDir, name, 100)
		if _, _, err := runCLI(t, []string{"check", path}, env.configPath); err != nil {
			t.Fatalf("check %s: %v", name, err)
		}
	}

	out, _, err := runCLI(t, []string{"history", "--json", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []map[string]any
	if err := json.Unmarshal([]byte(out), &runs); err != nil || len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d (%v)", len(runs), err)
	}

	out, _, err = runCLI(t, []string{"history", "prune", "--keep", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 2 runs")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 runs")
}
