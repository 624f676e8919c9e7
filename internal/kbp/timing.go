package kbp

import (
	"errors"
	"regexp"
	"strings"
)

// Alignment is the horizontal placement of a line.
type Alignment byte

const (
	AlignLeft   Alignment = 'L'
	AlignCenter Alignment = 'C'
	AlignRight  Alignment = 'R'
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// TimingHeader positions and times one line. Times are centiseconds.
type TimingHeader struct {
	Align    Alignment
	Style    int // signed style key
	Start    int
	End      int
	Right    int
	Down     int
	Rotation int
}

// Fixed reports whether the line uses a non-wiping (lowercase) style.
func (h TimingHeader) Fixed() bool { return h.Style < 0 }

// Syllable is one wipe unit. Wipe 0 defers to the file default, values below
// 5 select progressive wipe detail, 5 and above a simple wipe.
type Syllable struct {
	Text  string
	Start int
	End   int
	Wipe  int

	// startPad is whitespace that preceded the start field on the wire.
	startPad string
}

// IsEmpty reports whether the syllable carries no text.
func (s Syllable) IsEmpty() bool { return s.Text == "" }

// Line is a timing header plus its syllables.
type Line struct {
	Header    TimingHeader
	Syllables []Syllable
}

func (l Line) Align() Alignment { return l.Header.Align }
func (l Line) StyleKey() int    { return l.Header.Style }
func (l Line) Start() int       { return l.Header.Start }
func (l Line) End() int         { return l.Header.End }
func (l Line) Right() int       { return l.Header.Right }
func (l Line) Down() int        { return l.Header.Down }
func (l Line) Rotation() int    { return l.Header.Rotation }
func (l Line) Fixed() bool      { return l.Header.Fixed() }

// IsEmpty reports whether the line is a placeholder: no syllables, or a
// single syllable without text.
func (l Line) IsEmpty() bool {
	return len(l.Syllables) == 0 || (len(l.Syllables) == 1 && l.Syllables[0].IsEmpty())
}

// NonSplitMarker replaces interior spaces when spaces act as separators.
const NonSplitMarker = "_"

var interiorSpaces = regexp.MustCompile(` +[^ ]`)

// Text joins the syllable text with separator. With spaceIsSeparator set,
// runs of spaces inside a syllable become NonSplitMarker runs and syllables
// ending in a space are not followed by separator.
func (l Line) Text(separator string, spaceIsSeparator bool) string {
	if !spaceIsSeparator || separator == "" {
		parts := make([]string, len(l.Syllables))
		for i, s := range l.Syllables {
			parts[i] = s.Text
		}
		return strings.Join(parts, separator)
	}
	var b strings.Builder
	for _, s := range l.Syllables {
		text := interiorSpaces.ReplaceAllStringFunc(s.Text, func(m string) string {
			n := len(m) - len(strings.TrimLeft(m, " "))
			return strings.Repeat(NonSplitMarker, n) + m[n:]
		})
		b.WriteString(text)
		if !strings.HasSuffix(text, " ") {
			b.WriteString(separator)
		}
	}
	return strings.TrimSuffix(b.String(), separator)
}

// Page is one screenful of lines with optional transition names.
type Page struct {
	Remove  string
	Display string
	Lines   []Line
}

var errNoTimedLines = errors.New("page has no non-empty lines")

// Start is the earliest start among non-empty lines.
func (p Page) Start() (int, error) {
	found := false
	start := 0
	for _, l := range p.Lines {
		if l.IsEmpty() {
			continue
		}
		if !found || l.Start() < start {
			start = l.Start()
		}
		found = true
	}
	if !found {
		return 0, errNoTimedLines
	}
	return start, nil
}

// End is the latest end among non-empty lines.
func (p Page) End() (int, error) {
	found := false
	end := 0
	for _, l := range p.Lines {
		if l.IsEmpty() {
			continue
		}
		if !found || l.End() > end {
			end = l.End()
		}
		found = true
	}
	if !found {
		return 0, errNoTimedLines
	}
	return end, nil
}

// ImageCue shows an image between Start and End.
type ImageCue struct {
	Start         int
	End           int
	Filename      string
	LeaveOnScreen bool
}

// Margins hold the page margins and line spacing in pixels.
type Margins struct {
	Left    int
	Right   int
	Top     int
	Spacing int
}

// DefaultMargins returns the margins of a new project.
func DefaultMargins() Margins { return Margins{Left: 2, Right: 2, Top: 7, Spacing: 12} }

// Other holds the border colour index and the default wipe detail.
type Other struct {
	BorderColor int
	WipeDetail  int
}

// DefaultOther returns the "other" settings of a new project.
func DefaultOther() Other { return Other{BorderColor: 0, WipeDetail: 3} }
