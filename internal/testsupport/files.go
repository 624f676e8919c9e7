package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const divider = "-----------------------------"

var sampleHeader = []string{
	divider,
	"KARAOKE BUILDER STUDIO",
	"www.KaraokeBuilder.com",
	"",
	divider,
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
	"  StyleEnd",
	"",
	"'Margins (L,R,T,Line spacing)",
	"  2,2,7,12",
	"",
	"'Other (Border colour,Wipe detail)",
	"  0,3",
	"",
	"'--- Track Information ---",
	"",
}

// SampleLines returns a small synced KBP file. The header of the first line
// starts at lineStart, so a negative value produces a validation issue.
func SampleLines(title string, lineStart int) []string {
	lines := append([]string{}, sampleHeader...)
	lines = append(lines,
		"Status         1",
		"Title          "+title,
		"Artist         Tester",
		divider,
		"PAGEV2",
		"C/A/"+strconv.Itoa(lineStart)+"/500/0/0/0",
		"Hello /100/300/0",
		"world/300/500/0",
		"",
		divider,
	)
	return lines
}

// SampleKBP renders SampleLines with CRLF line endings.
func SampleKBP(title string, lineStart int) []byte {
	return []byte(strings.Join(SampleLines(title, lineStart), "\r\n") + "\r\n")
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSample writes a SampleKBP file named name into dir and returns its path.
func WriteSample(t testing.TB, dir, name string, lineStart int) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), SampleKBP(strings.TrimSuffix(name, filepath.Ext(name)), lineStart))
}
