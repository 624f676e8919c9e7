package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kbpkit/internal/history"
	"kbpkit/internal/kbp"
	"kbpkit/internal/logging"
)

type checkDiagnostic struct {
	Kind     string `json:"kind"`
	Page     int    `json:"page"`
	Line     int    `json:"line"`
	Syllable *int   `json:"syllable,omitempty"`
	Value    *int   `json:"value,omitempty"`
	Style    int    `json:"style"`
	Message  string `json:"message"`
}

type checkResult struct {
	RunID         string            `json:"run_id"`
	File          string            `json:"file"`
	Status        history.Status    `json:"status"`
	Synced        bool              `json:"synced"`
	Pages         int               `json:"pages"`
	Styles        int               `json:"styles"`
	Diagnostics   []checkDiagnostic `json:"diagnostics"`
	Modifications []string          `json:"modifications"`
	Error         string            `json:"error,omitempty"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		parse        parseFlags
		jsonOutput   bool
		failOnIssues bool
		noHistory    bool
	)

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse and validate KBP files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor("check")

			var store *history.Store
			if cfg.History.Enabled && !noHistory {
				store, err = history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "check history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run 'kbp history clear' or remove "+cfg.HistoryPath()),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
					)
					store = nil
				} else {
					defer store.Close()
				}
			}

			results := make([]checkResult, 0, len(args))
			for _, arg := range args {
				result := checkFile(cmd.Context(), arg, parse.options(cmd, cfg, logger), logger)
				if store != nil {
					recordResult(cmd.Context(), store, result, logger)
				}
				results = append(results, result)
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				printCheckResults(cmd.OutOrStdout(), results, shouldColorize(cmd.OutOrStdout()))
			}
			return checkOutcome(results, failOnIssues)
		},
	}

	parse.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "Exit non-zero when validation reports problems")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the check history")
	return cmd
}

func checkFile(ctx context.Context, path string, opts kbp.Options, logger *slog.Logger) checkResult {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	result := checkResult{
		RunID:         uuid.NewString(),
		File:          path,
		Diagnostics:   []checkDiagnostic{},
		Modifications: []string{},
	}
	ctx = logging.WithFile(logging.WithRunID(ctx, result.RunID), path)
	runLogger := logging.WithContext(ctx, logger)
	opts.Logger = runLogger

	doc, err := kbp.Open(path, opts)
	if err != nil {
		result.Status = history.StatusFailed
		result.Error = err.Error()
		runLogger.Info("check failed", logging.Error(err))
		return result
	}

	diags := doc.Validate()
	for _, d := range diags {
		result.Diagnostics = append(result.Diagnostics, toCheckDiagnostic(d))
	}
	result.Modifications = append(result.Modifications, doc.LoadModifications()...)
	result.Status = history.StatusFor(nil, len(diags))
	result.Synced = doc.Synced()
	result.Pages = len(doc.Pages)
	result.Styles = doc.Styles.Len()

	runLogger.Info("check complete",
		logging.String("status", string(result.Status)),
		logging.Int("diagnostics", len(diags)),
		logging.Int("modifications", len(result.Modifications)),
	)
	return result
}

func toCheckDiagnostic(d kbp.Diagnostic) checkDiagnostic {
	out := checkDiagnostic{
		Kind:    string(d.Kind),
		Page:    d.Page,
		Line:    d.Line,
		Style:   d.Style,
		Message: d.String(),
	}
	if d.HasSyllable {
		syl := d.Syllable
		out.Syllable = &syl
	}
	if d.HasValue {
		value := d.Value
		out.Value = &value
	}
	return out
}

func recordResult(ctx context.Context, store *history.Store, result checkResult, logger *slog.Logger) {
	run := &history.Run{
		ID:            result.RunID,
		File:          result.File,
		Status:        result.Status,
		Synced:        result.Synced,
		Pages:         result.Pages,
		Styles:        result.Styles,
		Diagnostics:   len(result.Diagnostics),
		Modifications: len(result.Modifications),
		ErrorMessage:  firstLine(result.Error),
	}
	if err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "failed to record check run", "history_record_failed",
			logging.String(logging.FieldRunID, result.RunID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}

func printCheckResults(out io.Writer, results []checkResult, colorize bool) {
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		switch result.Status {
		case history.StatusFailed:
			fmt.Fprintln(out, renderStatusLine(result.File, statusError, "parse failed", colorize))
			fmt.Fprintln(out, result.Error)
			continue
		case history.StatusIssues:
			fmt.Fprintln(out, renderStatusLine(result.File, statusWarn, pluralize(len(result.Diagnostics), "issue"), colorize))
		default:
			fmt.Fprintln(out, renderStatusLine(result.File, statusOK, fmt.Sprintf("%s, %s", pluralize(result.Pages, "page"), pluralize(result.Styles, "style")), colorize))
		}

		if len(result.Diagnostics) > 0 {
			rows := make([][]string, 0, len(result.Diagnostics))
			for _, d := range result.Diagnostics {
				syllable := "-"
				if d.Syllable != nil {
					syllable = strconv.Itoa(*d.Syllable)
				}
				rows = append(rows, []string{strconv.Itoa(d.Page), strconv.Itoa(d.Line), syllable, d.Kind, d.Message})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Page", right: true},
				{title: "Line", right: true},
				{title: "Syllable", right: true},
				{title: "Kind"},
				{title: "Detail"},
			}, rows))
		}
		for _, mod := range result.Modifications {
			fmt.Fprintf(out, "%srepaired: %s\n", statusIndent, mod)
		}
	}
}

func checkOutcome(results []checkResult, failOnIssues bool) error {
	var failed, issues int
	for _, r := range results {
		switch r.Status {
		case history.StatusFailed:
			failed++
		case history.StatusIssues:
			issues++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files failed to parse", errIssuesFound, failed, len(results))
	}
	if failOnIssues && issues > 0 {
		return fmt.Errorf("%w: %d of %d files have validation issues", errIssuesFound, issues, len(results))
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
