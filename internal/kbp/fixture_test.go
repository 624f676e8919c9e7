package kbp_test

import (
	"slices"
	"strings"
	"testing"

	"kbpkit/internal/kbp"
)

func headerLines() []string {
	return []string{
		"-----------------------------",
		"KARAOKE BUILDER STUDIO",
		"www.KaraokeBuilder.com",
		"",
		"-----------------------------",
		"HEADERV2",
		"",
		"'--- Template Information ---",
		"",
		"'Palette Colours (0-15)",
		"  000,FFF,F00,0F0,00F,FF0,0FF,F0F,888,CCC,800,080,008,880,088,808",
		"",
		"'Styles (00-25)",
		"'  Number,Name",
		"'  Colour: Text,Outline,Text wipe,Outline wipe",
		"'  Font,Size,Style,Charset",
		"'  Outline: L,R,T,B; Shadow: R,D; Wipe style; Case (N/U/L)",
		"  Style00,Default,1,0,2,0",
		"  Arial,24,B,0",
		"  2,2,2,2,0,0,0,N",
		"",
		"  Style01,Male,6,0,4,0",
		"  Arial,24,B,0",
		"  2,2,2,2,0,0,0,N",
		"",
		"  StyleEnd",
		"",
		"'Margins (L,R,T,Line spacing)",
		"  2,2,7,12",
		"",
		"'Other (Border colour,Wipe detail)",
		"  0,3",
		"",
	}
}

func trackInfoLines(status string) []string {
	return []string{
		"'--- Track Information ---",
		"",
		"Status         " + status,
		"Title          My Song",
		"Artist         ",
		"Comments       first line",
		" second line",
		"-----------------------------",
	}
}

func bodyLines() []string {
	return []string{
		"IMAGE",
		"0/100/bg.png/0",
		"-----------------------------",
		"PAGEV2",
		"FX/Fade/Wipe",
		"C/A/100/500/0/0/0",
		"Hel/100/200/0",
		"lo/ 200/300/0",
		"a{~}b /300/400/3",
		"",
		"L/b/600/900/5/-2/0",
		"x/600/900/0",
		"",
		"-----------------------------",
		"PAGEV2",
		"C/A/1000/1200/0/0/0",
		"End/1000/1200/0",
		"",
		"-----------------------------",
		"IMAGE",
		"5000/6000/dir/end.png/1",
		"-----------------------------",
	}
}

// syncedLines is a complete synced file in the layout the writer emits.
func syncedLines() []string {
	return slices.Concat(headerLines(), trackInfoLines("1"), bodyLines())
}

func unsyncedLines() []string {
	return slices.Concat(headerLines(), trackInfoLines("0"), []string{"LYRICSV2", "first lyric", "", "second lyric"})
}

func templateLines() []string {
	return slices.Concat(headerLines(), []string{"-----------------------------"}, bodyLines())
}

func wire(lines []string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func mustParse(t *testing.T, lines []string, opts kbp.Options) *kbp.Document {
	t.Helper()
	doc, err := kbp.Parse(lines, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return doc
}

func indexOf(t *testing.T, lines []string, line string) int {
	t.Helper()
	idx := slices.Index(lines, line)
	if idx < 0 {
		t.Fatalf("fixture has no line %q", line)
	}
	return idx
}

func replaceLine(lines []string, old string, repl ...string) []string {
	idx := slices.Index(lines, old)
	if idx < 0 {
		return lines
	}
	return slices.Concat(lines[:idx], repl, lines[idx+1:])
}
