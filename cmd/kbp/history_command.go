package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kbpkit/internal/config"
	"kbpkit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		file       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent check runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var runs []history.Run
			if file != "" {
				path, err := config.ExpandPath(file)
				if err != nil {
					return err
				}
				runs, err = store.ForFile(cmd.Context(), path)
				if err != nil {
					return err
				}
			} else {
				n := limit
				if !cmd.Flags().Changed("limit") {
					n = ctx.config.History.Limit
				}
				runs, err = store.Recent(cmd.Context(), n)
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No check runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.CheckedAt.Local().Format("2006-01-02 15:04:05"),
					string(run.Status),
					strconv.Itoa(run.Pages),
					strconv.Itoa(run.Diagnostics),
					strconv.Itoa(run.Modifications),
					run.File,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Checked"},
				{title: "Status"},
				{title: "Pages", right: true},
				{title: "Issues", right: true},
				{title: "Repairs", right: true},
				{title: "File"},
			}, rows))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Totals: %d clean, %d with issues, %d failed\n",
				stats[history.StatusClean], stats[history.StatusIssues], stats[history.StatusFailed])
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of runs to show (default: history.limit)")
	cmd.Flags().StringVar(&file, "file", "", "Only show runs for this file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit runs as JSON")

	cmd.AddCommand(newHistoryClearCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded check run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Keep only the newest check runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			n := keep
			if !cmd.Flags().Changed("keep") {
				n = ctx.config.History.Limit
			}
			removed, err := store.Prune(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs, kept at most %d\n", removed, n)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Number of runs to keep (default: history.limit)")
	return cmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open check history: %w", err)
	}
	return store, nil
}
