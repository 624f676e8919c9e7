package kbp

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxStyles is the number of addressable styles per sign (letters A-Z).
const MaxStyles = 26

// Color is a style colour: either a palette index or a resolved 3-digit hex
// value. The zero value is palette index 0.
type Color struct {
	index    int
	value    string
	resolved bool
}

// IndexColor references palette slot i.
func IndexColor(i int) Color { return Color{index: i} }

// ResolvedColor carries a literal hex colour instead of a palette reference.
func ResolvedColor(hex string) Color { return Color{value: strings.ToUpper(hex), resolved: true} }

// Index returns the palette slot and whether the colour is a reference.
func (c Color) Index() (int, bool) { return c.index, !c.resolved }

// Value returns the hex colour and whether the colour is resolved.
func (c Color) Value() (string, bool) { return c.value, c.resolved }

// IsResolved reports whether the colour carries a literal value.
func (c Color) IsResolved() bool { return c.resolved }

func (c Color) String() string {
	if c.resolved {
		return c.value
	}
	return strconv.Itoa(c.index)
}

// Case is the letter-case transform a style applies to its text.
type Case byte

const (
	CaseNormal Case = 'N'
	CaseUpper  Case = 'U'
	CaseLower  Case = 'L'
)

func (c Case) valid() bool { return c == CaseNormal || c == CaseUpper || c == CaseLower }

// Style is one style definition. Number equals the key the style is stored
// under; fixed variants carry the negative key.
type Style struct {
	Number           int
	Name             string
	TextColor        Color
	OutlineColor     Color
	TextWipeColor    Color
	OutlineWipeColor Color
	FontName         string
	FontSize         int
	FontStyle        string
	Charset          int
	Outlines         [4]int // left, right, top, bottom
	Shadows          [2]int // right, down
	WipeStyle        int
	Case             Case
	Fixed            bool
}

const fixedSuffix = "_fixed"

// AllCaps reports whether the style renders its text upper-cased.
func (s Style) AllCaps() bool { return s.Case == CaseUpper }

func (s Style) colors() [4]Color {
	return [4]Color{s.TextColor, s.OutlineColor, s.TextWipeColor, s.OutlineWipeColor}
}

// HasResolvedColors reports whether the colours are literal values rather
// than palette references. Mixed colours are an error.
func (s Style) HasResolvedColors() (bool, error) {
	cs := s.colors()
	resolved := 0
	for _, c := range cs {
		if c.resolved {
			resolved++
		}
	}
	switch resolved {
	case 0:
		return false, nil
	case len(cs):
		return true, nil
	default:
		return false, usageError("style %d (%s) mixes palette indices and resolved colours: text=%s outline=%s text_wipe=%s outline_wipe=%s",
			s.Number, s.Name, cs[0], cs[1], cs[2], cs[3])
	}
}

// Validate checks that the style is well formed independent of any table.
func (s Style) Validate() error {
	if !validKey(s.Number) {
		return usageError("style number %d outside [-%d,-1] and [1,%d]", s.Number, MaxStyles, MaxStyles)
	}
	resolved, err := s.HasResolvedColors()
	if err != nil {
		return err
	}
	for _, c := range s.colors() {
		if resolved {
			if !hexColorPattern.MatchString(c.value) {
				return usageError("style %d: colour %q is not a 3-digit hex value", s.Number, c.value)
			}
		} else if c.index < 0 || c.index >= PaletteSize {
			return usageError("style %d: palette index %d out of range", s.Number, c.index)
		}
	}
	if !s.Case.valid() {
		return usageError("style %d: case flag %q must be N, U or L", s.Number, string(s.Case))
	}
	if s.Fixed != (s.Number < 0) {
		return usageError("style %d: fixed flag must match the sign of the style number", s.Number)
	}
	return nil
}

// WithResolvedColors replaces palette references with palette values.
func (s Style) WithResolvedColors(p Palette) (Style, error) {
	resolved, err := s.HasResolvedColors()
	if err != nil || resolved {
		return s, err
	}
	out := s
	targets := []*Color{&out.TextColor, &out.OutlineColor, &out.TextWipeColor, &out.OutlineWipeColor}
	for _, c := range targets {
		v, err := p.Color(c.index)
		if err != nil {
			return s, err
		}
		*c = ResolvedColor(v)
	}
	return out, nil
}

// fixedVariant collapses the wipe colours onto the plain colours and flips the
// style number so the result addresses the lowercase letter.
func (s Style) fixedVariant() Style {
	out := s
	out.Number = -s.Number
	out.Name = s.Name + fixedSuffix
	out.TextWipeColor = s.TextColor
	out.OutlineWipeColor = s.OutlineColor
	out.Fixed = true
	return out
}

// parseStyleRecord decodes the three wire lines of a style definition.
func parseStyleRecord(lines [3]string) (Style, error) {
	var s Style
	head := strings.Split(strings.TrimSpace(lines[0]), ",")
	if len(head) < 6 || !strings.HasPrefix(head[0], "Style") {
		return s, errAt(0, "style definition needs number, name and 4 colours")
	}
	wireNo, err := strconv.Atoi(strings.TrimPrefix(head[0], "Style"))
	if err != nil || wireNo < 0 || wireNo >= MaxStyles {
		return s, errAt(0, "invalid style number %q", head[0])
	}
	s.Number = wireNo + 1
	s.Name = strings.Join(head[1:len(head)-4], ",")
	colorFields := head[len(head)-4:]
	colors := make([]Color, 4)
	for i, f := range colorFields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return s, errAt(0, "style colour %q is not a palette index", f)
		}
		colors[i] = IndexColor(n)
	}
	s.TextColor, s.OutlineColor, s.TextWipeColor, s.OutlineWipeColor = colors[0], colors[1], colors[2], colors[3]

	font := strings.Split(strings.TrimSpace(lines[1]), ",")
	if len(font) < 4 {
		return s, errAt(1, "font line needs name, size, style and charset")
	}
	s.FontName = strings.Join(font[:len(font)-3], ",")
	if s.FontSize, err = strconv.Atoi(font[len(font)-3]); err != nil {
		return s, errAt(1, "invalid font size %q", font[len(font)-3])
	}
	s.FontStyle = font[len(font)-2]
	if s.Charset, err = strconv.Atoi(font[len(font)-1]); err != nil {
		return s, errAt(1, "invalid charset %q", font[len(font)-1])
	}

	geom := strings.Split(strings.TrimSpace(lines[2]), ",")
	if len(geom) != 8 {
		return s, errAt(2, "outline line needs 8 fields, found %d", len(geom))
	}
	nums := make([]int, 7)
	for i := range nums {
		if nums[i], err = strconv.Atoi(geom[i]); err != nil {
			return s, errAt(2, "invalid number %q", geom[i])
		}
	}
	copy(s.Outlines[:], nums[:4])
	copy(s.Shadows[:], nums[4:6])
	s.WipeStyle = nums[6]
	if len(geom[7]) != 1 || !Case(geom[7][0]).valid() {
		return s, errAt(2, "case flag %q must be N, U or L", geom[7])
	}
	s.Case = Case(geom[7][0])
	return s, nil
}

// wireLines renders the style in the three-line header form.
func (s Style) wireLines() ([3]string, error) {
	var out [3]string
	resolved, err := s.HasResolvedColors()
	if err != nil {
		return out, serializeError("%v", err)
	}
	if resolved {
		return out, serializeError("style %d (%s) carries resolved colours; reopen without colour resolution to write it", s.Number, s.Name)
	}
	out[0] = fmt.Sprintf("  Style%02d,%s,%s,%s,%s,%s", s.Number-1, s.Name,
		s.TextColor, s.OutlineColor, s.TextWipeColor, s.OutlineWipeColor)
	out[1] = fmt.Sprintf("  %s,%d,%s,%d", s.FontName, s.FontSize, s.FontStyle, s.Charset)
	out[2] = fmt.Sprintf("  %d,%d,%d,%d,%d,%d,%d,%c",
		s.Outlines[0], s.Outlines[1], s.Outlines[2], s.Outlines[3],
		s.Shadows[0], s.Shadows[1], s.WipeStyle, s.Case)
	return out, nil
}
