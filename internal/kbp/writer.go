package kbp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kbpkit/internal/fileutil"
	"kbpkit/internal/logging"
)

const lineEnding = "\r\n"

var preamble = []string{
	Divider,
	"KARAOKE BUILDER STUDIO",
	"www.KaraokeBuilder.com",
	"",
	Divider,
	markerHeader,
	"",
	"'--- Template Information ---",
	"",
	markerPalette + " (0-15)",
}

var styleComments = []string{
	markerStyles + " (00-25)",
	"'  Number,Name",
	"'  Colour: Text,Outline,Text wipe,Outline wipe",
	"'  Font,Size,Style,Charset",
	"'  Outline: L,R,T,B; Shadow: R,D; Wipe style; Case (N/U/L)",
}

// Bytes renders the document in wire form. Nothing is produced unless the
// whole document is representable.
func (d *Document) Bytes() ([]byte, error) {
	lines, err := d.wireLines()
	if err != nil {
		return nil, err
	}
	return encodeText(strings.Join(lines, lineEnding)+lineEnding, d.encoding, d.bom)
}

// Write renders the document to w.
func (d *Document) Write(w io.Writer) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write kbp: %w", err)
	}
	return nil
}

// WriteFile renders the document to path. Writing over the file the document
// was opened from requires allowOverwrite.
func (d *Document) WriteFile(path string, allowOverwrite bool) error {
	if !allowOverwrite && d.isSource(path) {
		return serializeError("refusing to overwrite %s, the file this document was read from", path)
	}
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileLocked(path, data, 0o644); err != nil {
		return fmt.Errorf("write kbp: %w", err)
	}
	d.log().Debug("wrote kbp file", logging.String("path", path), logging.Int("bytes", len(data)))
	return nil
}

func (d *Document) isSource(path string) bool {
	if d.source == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err == nil && abs == d.source {
		return true
	}
	a, errA := os.Stat(path)
	b, errB := os.Stat(d.source)
	return errA == nil && errB == nil && os.SameFile(a, b)
}

func (d *Document) wireLines() ([]string, error) {
	for i, c := range d.Palette {
		if !hexColorPattern.MatchString(c) {
			return nil, serializeError("palette colour %d: %q is not a 3-digit hex value", i, c)
		}
	}
	if d.Styles == nil {
		return nil, serializeError("document has no style table")
	}

	out := append([]string{}, preamble...)
	out = append(out, "  "+d.Palette.String(), "")
	out = append(out, styleComments...)
	for _, key := range d.Styles.Keys() {
		s, _ := d.Styles.Get(key)
		wl, err := s.wireLines()
		if err != nil {
			return nil, err
		}
		out = append(out, wl[:]...)
		out = append(out, "")
	}
	out = append(out, "  "+markerStyleEnd, "")
	m := d.Margins
	out = append(out, markerMargins+" (L,R,T,Line spacing)", fmt.Sprintf("  %d,%d,%d,%d", m.Left, m.Right, m.Top, m.Spacing), "")
	out = append(out, markerOther+" (Border colour,Wipe detail)", fmt.Sprintf("  %d,%d", d.Other.BorderColor, d.Other.WipeDetail), "")

	if d.TrackInfo != nil {
		out = append(out, markerTrackInfo, "")
		out = append(out, d.TrackInfo.wireLines()...)
	}
	out = append(out, Divider)

	if !d.Synced() {
		out = append(out, markerLyrics)
		return append(out, d.Lyrics...), nil
	}
	sections, err := d.sectionLines()
	if err != nil {
		return nil, err
	}
	return append(out, sections...), nil
}

// sectionLines interleaves image and page sections: an image goes before the
// first page starting at or after it.
func (d *Document) sectionLines() ([]string, error) {
	var out []string
	next := 0
	for pi, page := range d.Pages {
		if start, err := page.Start(); err == nil {
			for next < len(d.Images) && d.Images[next].Start <= start {
				out = append(out, imageLines(d.Images[next])...)
				next++
			}
		}
		pl, err := pageLines(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pi, err)
		}
		out = append(out, pl...)
	}
	for ; next < len(d.Images); next++ {
		out = append(out, imageLines(d.Images[next])...)
	}
	return out, nil
}

func imageLines(img ImageCue) []string {
	leave := 0
	if img.LeaveOnScreen {
		leave = 1
	}
	return []string{markerImage, fmt.Sprintf("%d/%d/%s/%d", img.Start, img.End, img.Filename, leave), Divider}
}

func pageLines(page Page) ([]string, error) {
	out := []string{markerPage}
	if page.Remove != "" || page.Display != "" {
		if strings.Contains(page.Remove, "/") || strings.Contains(page.Display, "/") {
			return nil, serializeError("transition names must not contain '/'")
		}
		out = append(out, transitionPrefix+page.Remove+"/"+page.Display)
	}
	for li, l := range page.Lines {
		h, err := l.Header.wire()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", li, err)
		}
		out = append(out, h)
		for _, s := range l.Syllables {
			out = append(out, s.wire())
		}
		out = append(out, "")
	}
	return append(out, Divider), nil
}

func (h TimingHeader) wire() (string, error) {
	switch h.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return "", serializeError("alignment %q must be L, C or R", string(h.Align))
	}
	letter, err := LetterForKey(h.Style)
	if err != nil {
		return "", errors.Join(ErrSerialize, err)
	}
	return fmt.Sprintf("%c/%c/%d/%d/%d/%d/%d", h.Align, letter, h.Start, h.End, h.Right, h.Down, h.Rotation), nil
}

func (s Syllable) wire() string {
	text := strings.ReplaceAll(s.Text, "/", slashEscape)
	return fmt.Sprintf("%s/%s%d/%d/%d", text, s.startPad, s.Start, s.End, s.Wipe)
}
