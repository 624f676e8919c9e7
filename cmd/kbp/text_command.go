package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kbpkit/internal/kbp"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	var (
		parse             parseFlags
		pageSeparator     string
		syllableSeparator string
		includeEmpty      bool
		spaceIsSeparator  bool
	)

	cmd := &cobra.Command{
		Use:   "text <file>",
		Short: "Print the lyrics of a KBP file as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := kbp.Open(args[0], parse.options(cmd, cfg, ctx.loggerFor("text")))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.Text(pageSeparator, includeEmpty, syllableSeparator, spaceIsSeparator))
			return nil
		},
	}

	parse.register(cmd)
	cmd.Flags().StringVar(&pageSeparator, "page-separator", "", "Line printed between pages")
	cmd.Flags().StringVar(&syllableSeparator, "syllable-separator", "", "Text inserted between syllables")
	cmd.Flags().BoolVar(&includeEmpty, "include-empty", false, "Keep lines that have no text")
	cmd.Flags().BoolVar(&spaceIsSeparator, "space-is-separator", false, "Treat a trailing space as the syllable separator")
	return cmd
}
