package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kbpkit/internal/config"
	"kbpkit/internal/fileutil"
	"kbpkit/internal/kbp"
	"kbpkit/internal/logging"
)

const backupSuffix = ".bak"

func newRewriteCommand(ctx *commandContext) *cobra.Command {
	var (
		parse         parseFlags
		outputPath    string
		overwrite     bool
		backup        bool
		writeEncoding string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: "Re-serialize a KBP file in canonical form",
		Long: "Parse a KBP file and write it back out. Without --output the source file is\n" +
			"replaced, which requires --overwrite (or write.allow_overwrite). Use\n" +
			"--output - to print the result instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor("rewrite")

			doc, err := kbp.Open(args[0], parse.options(cmd, cfg, logger))
			if err != nil {
				return err
			}

			encoding := cfg.Write.Encoding
			if cmd.Flags().Changed("write-encoding") {
				encoding = strings.ToLower(strings.TrimSpace(writeEncoding))
			}
			if encoding != "" {
				if err := doc.SetEncoding(encoding); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outputPath == "-" {
				return doc.Write(out)
			}

			target := doc.Source()
			if outputPath != "" {
				expanded, err := config.ExpandPath(outputPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				target = expanded
			}

			allowOverwrite := cfg.Write.AllowOverwrite
			if cmd.Flags().Changed("overwrite") {
				allowOverwrite = overwrite
			}
			keepBackup := cfg.Write.Backup
			if cmd.Flags().Changed("backup") {
				keepBackup = backup
			}

			inPlace := sameFile(target, doc.Source())
			if inPlace && allowOverwrite && keepBackup {
				backupPath := doc.Source() + backupSuffix
				if err := fileutil.CopyFileVerified(doc.Source(), backupPath); err != nil {
					return fmt.Errorf("backup %s: %w", doc.Source(), err)
				}
				logger.Info("backed up source", logging.String("backup", backupPath))
				fmt.Fprintf(out, "Backed up %s to %s\n", doc.Source(), backupPath)
			}

			if err := doc.WriteFile(target, allowOverwrite); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s\n", target)
			for _, mod := range doc.LoadModifications() {
				fmt.Fprintf(out, "%srepaired: %s\n", statusIndent, mod)
			}
			return nil
		},
	}

	parse.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default: replace the source, '-' for stdout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow replacing the source file")
	cmd.Flags().BoolVar(&backup, "backup", true, "Copy the source to <file>.bak before replacing it")
	cmd.Flags().StringVar(&writeEncoding, "write-encoding", "", "Text encoding for the output (utf-8, windows-1252)")
	return cmd
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}
