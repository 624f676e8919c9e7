package kbp

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// PaletteSize is the fixed number of colour slots in a KBP palette.
const PaletteSize = 16

var hexColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{3}$`)

// Palette is the 16-slot table of 12-bit colours styles index into.
type Palette [PaletteSize]string

// DefaultPalette returns the palette a fresh Karaoke Builder project starts with.
func DefaultPalette() Palette {
	return Palette{
		"000", "FFF", "F00", "0F0", "00F", "FF0", "0FF", "F0F",
		"888", "CCC", "800", "080", "008", "880", "088", "808",
	}
}

// ParsePalette reads the comma separated palette line as it appears in the
// header. Surrounding indentation is ignored.
func ParsePalette(line string) (Palette, error) {
	var p Palette
	tokens := strings.Split(strings.TrimSpace(line), ",")
	if len(tokens) != PaletteSize {
		return p, usageError("palette needs %d colours, found %d", PaletteSize, len(tokens))
	}
	for i, tok := range tokens {
		if !hexColorPattern.MatchString(tok) {
			return p, usageError("palette colour %d: %q is not a 3-digit hex value", i, tok)
		}
		p[i] = tok
	}
	return p, nil
}

// NewPalette validates colours and returns them as a Palette.
func NewPalette(colors []string) (Palette, error) {
	return ParsePalette(strings.Join(colors, ","))
}

// String renders the palette in wire form, without indentation.
func (p Palette) String() string {
	return strings.Join(p[:], ",")
}

// Color returns the colour in slot i.
func (p Palette) Color(i int) (string, error) {
	if i < 0 || i >= PaletteSize {
		return "", usageError("palette index %d out of range", i)
	}
	return p[i], nil
}

// Expanded24 returns each colour as RRGGBB by doubling every nibble.
func (p Palette) Expanded24() []string {
	out := make([]string, PaletteSize)
	for i, c := range p {
		out[i] = expandNibbles(c)
	}
	return out
}

// Expanded32 returns each colour as RRGGBBAA using the given alpha.
func (p Palette) Expanded32(alpha uint8) []string {
	suffix := strings.ToUpper(hexByte(alpha))
	out := p.Expanded24()
	for i := range out {
		out[i] += suffix
	}
	return out
}

// RGBA returns slot i as an opaque color.RGBA.
func (p Palette) RGBA(i int) (color.RGBA, error) {
	c, err := p.Color(i)
	if err != nil {
		return color.RGBA{}, err
	}
	v, err := strconv.ParseUint(expandNibbles(c), 16, 32)
	if err != nil {
		return color.RGBA{}, usageError("palette colour %d: %v", i, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

func expandNibbles(c string) string {
	var b strings.Builder
	b.Grow(len(c) * 2)
	for _, r := range strings.ToUpper(c) {
		b.WriteRune(r)
		b.WriteRune(r)
	}
	return b.String()
}

func hexByte(v uint8) string {
	s := strconv.FormatUint(uint64(v), 16)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
