package kbp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks structural failures while reading a file.
	ErrParse = errors.New("kbp parse error")
	// ErrSerialize marks documents that cannot be written as requested.
	ErrSerialize = errors.New("kbp serialize error")
	// ErrUsage marks invalid arguments passed by the caller.
	ErrUsage = errors.New("kbp usage error")
	// ErrStyleNotFound is returned when neither a style nor its fallback exists.
	ErrStyleNotFound = errors.New("style not found")
)

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func serializeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSerialize, fmt.Sprintf(format, args...))
}

// ParseError reports where a file stopped making sense. Line is 1-based and
// absolute; Span is the number of lines belonging to the offending construct.
type ParseError struct {
	Line    int
	Span    int
	Context []ContextLine
	Err     error
}

// ContextLine is one line of the excerpt rendered around a parse failure.
type ContextLine struct {
	Number   int
	Text     string
	Offender bool
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "parse kbp: line %d: %v", e.Line, e.Err)
	} else {
		fmt.Fprintf(&b, "parse kbp: %v", e.Err)
	}
	width := 1
	if n := len(e.Context); n > 0 {
		width = len(fmt.Sprint(e.Context[n-1].Number))
	}
	for _, cl := range e.Context {
		marker := "  "
		if cl.Offender {
			marker = "> "
		}
		fmt.Fprintf(&b, "\n%s%*d | %s", marker, width, cl.Number, cl.Text)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// lineError locates a failure relative to the region a sub-parser was given.
type lineError struct {
	offset int
	span   int
	err    error
}

func (e *lineError) Error() string { return e.err.Error() }

func (e *lineError) Unwrap() error { return e.err }

func errAt(offset int, format string, args ...any) error {
	return &lineError{offset: offset, span: 1, err: fmt.Errorf(format, args...)}
}

func errSpan(offset, span int, err error) error {
	return &lineError{offset: offset, span: span, err: err}
}

// shift moves a region-relative error into the coordinates of the region's
// parent, starting at base. Errors without position are pinned to base.
func shift(base int, err error) error {
	var le *lineError
	if errors.As(err, &le) {
		return &lineError{offset: base + le.offset, span: le.span, err: le.err}
	}
	return &lineError{offset: base, span: 1, err: err}
}

const maxContextLines = 8

// newParseError renders the context window for a failure at the 0-based index
// offset of lines.
func newParseError(lines []string, offset, span int, err error) *ParseError {
	if span < 1 {
		span = 1
	}
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	pe := &ParseError{Line: offset + 1, Span: span, Err: err}
	if offset < 0 {
		pe.Line = 0
		return pe
	}
	end := min(offset+span, len(lines))
	first := max(offset-2, 0)
	last := min(end+2, len(lines))
	if last-first > maxContextLines {
		first = max(offset-maxContextLines/2, 0)
		last = min(first+maxContextLines, len(lines))
	}
	for i := first; i < last; i++ {
		pe.Context = append(pe.Context, ContextLine{
			Number:   i + 1,
			Text:     lines[i],
			Offender: i >= offset && i < end,
		})
	}
	return pe
}
