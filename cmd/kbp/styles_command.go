package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kbpkit/internal/kbp"
)

type styleView struct {
	Key         int      `json:"key"`
	Letter      string   `json:"letter"`
	Name        string   `json:"name"`
	Colors      []string `json:"colors"`
	Font        string   `json:"font"`
	FontSize    int      `json:"font_size"`
	FontStyle   string   `json:"font_style"`
	Charset     int      `json:"charset"`
	Outlines    [4]int   `json:"outlines"`
	Shadows     [2]int   `json:"shadows"`
	WipeStyle   int      `json:"wipe_style"`
	Case        string   `json:"case"`
	Fixed       bool     `json:"fixed"`
	Derived     bool     `json:"derived"`
}

func newStylesCommand(ctx *commandContext) *cobra.Command {
	var (
		parse      parseFlags
		withFixed  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "styles <file>",
		Short: "List the styles defined in a KBP file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := kbp.Open(args[0], parse.options(cmd, cfg, ctx.loggerFor("styles")))
			if err != nil {
				return err
			}
			views, err := collectStyles(doc.Styles, withFixed)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No styles defined")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					strconv.Itoa(v.Key),
					v.Letter,
					v.Name,
					strings.Join(v.Colors, ","),
					fmt.Sprintf("%s %d %s", v.Font, v.FontSize, v.FontStyle),
					v.Case,
					yesNo(v.Fixed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Key", right: true},
				{title: "Letter"},
				{title: "Name"},
				{title: "Colours"},
				{title: "Font"},
				{title: "Case"},
				{title: "Fixed"},
			}, rows))
			return nil
		},
	}

	parse.register(cmd)
	cmd.Flags().BoolVar(&withFixed, "fixed", false, "Also list the derived fixed variant of every style")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit styles as JSON")
	return cmd
}

func collectStyles(table *kbp.StyleTable, withFixed bool) ([]styleView, error) {
	keys := table.Keys()
	views := make([]styleView, 0, len(keys)*2)
	for _, key := range keys {
		s, _ := table.Get(key)
		views = append(views, newStyleView(key, s, false))
	}
	if !withFixed {
		return views, nil
	}
	for _, key := range keys {
		if key < 0 {
			continue
		}
		if _, explicit := table.Get(-key); explicit {
			continue
		}
		s, err := table.Resolve(-key)
		if err != nil {
			return nil, err
		}
		views = append(views, newStyleView(-key, s, true))
	}
	return views, nil
}

func newStyleView(key int, s kbp.Style, derived bool) styleView {
	letter := "?"
	if l, err := kbp.LetterForKey(key); err == nil {
		letter = string(rune(l))
	}
	return styleView{
		Key:       key,
		Letter:    letter,
		Name:      s.Name,
		Colors:    []string{s.TextColor.String(), s.OutlineColor.String(), s.TextWipeColor.String(), s.OutlineWipeColor.String()},
		Font:      s.FontName,
		FontSize:  s.FontSize,
		FontStyle: s.FontStyle,
		Charset:   s.Charset,
		Outlines:  s.Outlines,
		Shadows:   s.Shadows,
		WipeStyle: s.WipeStyle,
		Case:      string(rune(s.Case)),
		Fixed:     s.Fixed,
		Derived:   derived,
	}
}
