package kbp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kbpkit/internal/logging"
)

// Options control how a file is read.
type Options struct {
	// ResolveColors replaces palette references in styles with colour values.
	// Documents opened this way cannot be written back.
	ResolveColors bool
	// ResolveDefaultWipe replaces syllable wipe code 0 with Other.WipeDetail.
	ResolveDefaultWipe bool
	// Tolerant rejoins syllable records split across physical lines and
	// skips unknown sections instead of failing.
	Tolerant bool
	// Template allows files without a track information block.
	Template bool
	// Encoding names the text encoding; empty means UTF-8.
	Encoding string
	// Logger receives debug and recovery messages; nil discards them.
	Logger *slog.Logger
}

// Document is a whole KBP project.
type Document struct {
	Palette   Palette
	Styles    *StyleTable
	Margins   Margins
	Other     Other
	TrackInfo *TrackInfo // nil for templates
	Pages     []Page
	Images    []ImageCue
	Lyrics    []string // raw LYRICSV2 lines of unsynced files

	source        string
	encoding      string
	bom           bool
	modifications []string
	logger        *slog.Logger
}

// New returns a synced document populated with the built-in defaults.
func New() *Document {
	return &Document{
		Palette:   DefaultPalette(),
		Styles:    DefaultStyles(),
		Margins:   DefaultMargins(),
		Other:     DefaultOther(),
		TrackInfo: DefaultTrackInfo(),
		encoding:  EncodingUTF8,
		logger:    logging.NewNop(),
	}
}

// DefaultStyles returns the four styles of a new project.
func DefaultStyles() *StyleTable {
	t := NewStyleTable()
	base := Style{
		FontName: "Arial", FontSize: 24, FontStyle: "B",
		Outlines: [4]int{2, 2, 2, 2}, Case: CaseNormal,
	}
	for i, d := range []struct {
		name                string
		text, outline, wipe int
	}{
		{"Default", 1, 0, 2},
		{"Male", 6, 0, 4},
		{"Female", 7, 0, 5},
		{"Other", 1, 0, 3},
	} {
		s := base
		s.Number = i + 1
		s.Name = d.name
		s.TextColor, s.OutlineColor = IndexColor(d.text), IndexColor(d.outline)
		s.TextWipeColor, s.OutlineWipeColor = IndexColor(d.wipe), IndexColor(d.outline)
		if err := t.Set(s.Number, s); err != nil {
			panic(fmt.Sprintf("kbp: invalid built-in style %d: %v", s.Number, err))
		}
	}
	return t
}

// Open reads and parses the file at path.
func Open(path string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open kbp: %w", err)
	}
	defer f.Close()

	doc, err := Read(f, opts)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		doc.source = abs
	} else {
		doc.source = path
	}
	return doc, nil
}

// Read parses a KBP file from r.
func Read(r io.Reader, opts Options) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read kbp: %w", err)
	}
	text, bom, err := decodeText(data, opts.Encoding)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, fmt.Errorf("decode kbp: %w", err)
	}
	doc, err := Parse(splitLines(text), opts)
	if err != nil {
		return nil, err
	}
	doc.bom = bom
	return doc, nil
}

// Parse builds a Document from newline-stripped lines. It either returns a
// complete document or a *ParseError.
func Parse(lines []string, opts Options) (*Document, error) {
	if _, err := lookupEncoding(opts.Encoding); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	doc := &Document{
		Styles:   NewStyleTable(),
		encoding: strings.ToLower(strings.TrimSpace(opts.Encoding)),
		logger:   logger,
	}
	if doc.encoding == "" {
		doc.encoding = EncodingUTF8
	}
	p := &parser{lines: lines, opts: opts, doc: doc, logger: logging.NewComponentLogger(logger, "kbp.parser")}
	if err := p.run(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Source is the absolute path the document was opened from, if any.
func (d *Document) Source() string { return d.source }

// Encoding is the text encoding used when writing.
func (d *Document) Encoding() string { return d.encoding }

// SetEncoding changes the text encoding used when writing.
func (d *Document) SetEncoding(name string) error {
	if _, err := lookupEncoding(name); err != nil {
		return err
	}
	d.encoding = strings.ToLower(strings.TrimSpace(name))
	return nil
}

// LoadModifications describes input that tolerant parsing had to repair.
func (d *Document) LoadModifications() []string {
	return append([]string(nil), d.modifications...)
}

// Synced reports whether the document holds timed pages rather than raw lyrics.
func (d *Document) Synced() bool { return d.TrackInfo.Synced() }

// Text dumps the lyrics as plain text. Pages are joined by a line holding
// pageSeparator; empty lines are skipped unless includeEmpty is set.
// Unsynced documents return their raw lyrics.
func (d *Document) Text(pageSeparator string, includeEmpty bool, syllableSeparator string, spaceIsSeparator bool) string {
	if !d.Synced() {
		return strings.Join(d.Lyrics, "\n")
	}
	pages := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		var lines []string
		for _, l := range page.Lines {
			if includeEmpty || !l.IsEmpty() {
				lines = append(lines, l.Text(syllableSeparator, spaceIsSeparator))
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return strings.Join(pages, "\n"+pageSeparator+"\n")
}

func (d *Document) log() *slog.Logger {
	if d.logger == nil {
		return logging.NewNop()
	}
	return d.logger
}
