package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"kbpkit/internal/history"
	"kbpkit/internal/testsupport"
)

func TestCheckCleanFileIsRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteSample(t, env.workDir, "clean.kbp", 100)

	out, _, err := runCLI(t, []string{"check", path}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "[OK]")
	requireContains(t, out, "1 page, 1 style")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "clean.kbp")
	requireContains(t, out, "Totals: 1 clean, 0 with issues, 0 failed")
}

func TestCheckReportsDiagnostics(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteSample(t, env.workDir, "early.kbp", -5)

	out, _, err := runCLI(t, []string{"check", path}, env.configPath)
	if err != nil {
		t.Fatalf("check without --fail-on-issues should succeed: %v", err)
	}
	requireContains(t, out, "[WARN]")
	requireContains(t, out, "negative_line_start")

	_, _, err = runCLI(t, []string{"check", "--fail-on-issues", path}, env.configPath)
	if !errors.Is(err, errIssuesFound) || exitCode(err) != 2 {
		t.Fatalf("expected errIssuesFound, got %v", err)
	}
}

func TestCheckJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	clean := testsupport.WriteSample(t, env.workDir, "a.kbp", 100)
	early := testsupport.WriteSample(t, env.workDir, "b.kbp", -5)

	out, _, err := runCLI(t, []string{"check", "--json", clean, early}, env.configPath)
	if err != nil {
		t.Fatalf("check --json: %v", err)
	}
	var results []checkResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != history.StatusClean || len(results[0].Diagnostics) != 0 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	second := results[1]
	if second.Status != history.StatusIssues || len(second.Diagnostics) != 1 {
		t.Fatalf("unexpected second result: %+v", second)
	}
	d := second.Diagnostics[0]
	if d.Kind != "negative_line_start" || d.Value == nil || *d.Value != -5 || d.Syllable != nil {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if second.RunID == results[0].RunID || second.RunID == "" {
		t.Fatal("expected distinct run ids")
	}
	if filepath.Base(second.File) != "b.kbp" || !filepath.IsAbs(second.File) {
		t.Fatalf("file = %q", second.File)
	}
}

func TestCheckParseFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	lines := testsupport.SampleLines("broken", 100)
	for i, l := range lines {
		if strings.HasPrefix(l, "  000,FFF,") {
			lines[i] = "  000,FFF"
		}
	}
	path := testsupport.WriteFile(t, filepath.Join(env.workDir, "broken.kbp"), []byte(strings.Join(lines, "\r\n")+"\r\n"))

	out, _, err := runCLI(t, []string{"check", path}, env.configPath)
	if !errors.Is(err, errIssuesFound) {
		t.Fatalf("expected failure, got %v", err)
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "parse failed")
	requireContains(t, out, "parse kbp: line")

	store := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := store.Recent(t.Context(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusFailed || runs[0].ErrorMessage == "" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if strings.Contains(runs[0].ErrorMessage, "\n") {
		t.Fatal("stored error message should be a single line")
	}
}

func TestCheckNoHistoryFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteSample(t, env.workDir, "quiet.kbp", 100)

	if _, _, err := runCLI(t, []string{"check", "--no-history", path}, env.configPath); err != nil {
		t.Fatalf("check: %v", err)
	}
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No check runs recorded")
}
