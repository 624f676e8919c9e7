package kbp

import (
	"fmt"
	"strings"
)

// DiagnosticKind identifies one class of timing or style inconsistency.
type DiagnosticKind string

const (
	NegativeLineStart   DiagnosticKind = "negative_line_start"
	NegativeLineEnd     DiagnosticKind = "negative_line_end"
	LineStyleMissing    DiagnosticKind = "line_style_missing"
	WipeStartBeforeLine DiagnosticKind = "wipe_start_before_line"
	WipeEndAfterLine    DiagnosticKind = "wipe_end_after_line"
)

// Diagnostic is one semantic finding. Page, Line and Syllable are 0-based
// indices into the document; Syllable and Value are only meaningful when the
// matching Has flag is set.
type Diagnostic struct {
	Kind        DiagnosticKind
	Page        int
	Line        int
	Syllable    int
	HasSyllable bool
	Value       int
	HasValue    bool
	// Style is the literal key of the line's header.
	Style int
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "page %d line %d", d.Page, d.Line)
	if d.HasSyllable {
		fmt.Fprintf(&b, " syllable %d", d.Syllable)
	}
	b.WriteString(": ")
	switch d.Kind {
	case NegativeLineStart:
		fmt.Fprintf(&b, "line starts at negative time %d", d.Value)
	case NegativeLineEnd:
		fmt.Fprintf(&b, "line ends at negative time %d", d.Value)
	case LineStyleMissing:
		letter, err := LetterForKey(d.Style)
		if err != nil {
			fmt.Fprintf(&b, "line references invalid style key %d", d.Style)
		} else {
			fmt.Fprintf(&b, "line style %c is not defined", letter)
		}
	case WipeStartBeforeLine:
		fmt.Fprintf(&b, "wipe starts %d before the line", -d.Value)
	case WipeEndAfterLine:
		fmt.Fprintf(&b, "wipe ends %d after the line", d.Value)
	default:
		b.WriteString(string(d.Kind))
	}
	return b.String()
}

// Validate checks every page of doc in document order. It never modifies doc
// and always returns a list, possibly empty.
func Validate(doc *Document) []Diagnostic {
	diags := []Diagnostic{}
	if doc == nil {
		return diags
	}
	for pi, page := range doc.Pages {
		for li, line := range page.Lines {
			at := Diagnostic{Page: pi, Line: li, Style: line.StyleKey()}
			if line.Start() < 0 {
				diags = append(diags, at.with(NegativeLineStart, line.Start()))
			}
			if line.End() < 0 {
				diags = append(diags, at.with(NegativeLineEnd, line.End()))
			}
			if !styleDefined(doc.Styles, line.StyleKey()) {
				d := at
				d.Kind = LineStyleMissing
				diags = append(diags, d)
			}
			for si, syl := range line.Syllables {
				sat := at
				sat.Syllable, sat.HasSyllable = si, true
				if syl.Start < line.Start() {
					diags = append(diags, sat.with(WipeStartBeforeLine, syl.Start-line.Start()))
				}
				if syl.End > line.End() {
					diags = append(diags, sat.with(WipeEndAfterLine, syl.End-line.End()))
				}
			}
		}
	}
	return diags
}

// Validate runs the package-level Validate on d.
func (d *Document) Validate() []Diagnostic { return Validate(d) }

func (d Diagnostic) with(kind DiagnosticKind, value int) Diagnostic {
	d.Kind, d.Value, d.HasValue = kind, value, true
	return d
}

// styleDefined reports whether key resolves to itself rather than to a
// fallback. The derivation cache is the only state Resolve touches.
func styleDefined(t *StyleTable, key int) bool {
	if t == nil {
		return false
	}
	s, err := t.Resolve(key)
	return err == nil && s.Number == key
}
