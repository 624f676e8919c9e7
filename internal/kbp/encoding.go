package kbp

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encodings accepted in Options.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encodings lists the supported encoding names.
func Encodings() []string { return []string{EncodingUTF8, EncodingWindows1252} }

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, usageError("unsupported encoding %q", name)
	}
}

// decodeText converts raw file bytes into text, reporting whether a UTF-8
// byte order mark was stripped.
func decodeText(data []byte, name string) (string, bool, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", false, err
	}
	bom := false
	if enc == unicode.UTF8 && bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		bom = true
	}
	if enc == unicode.UTF8 && !utf8.Valid(data) {
		return "", false, invalidUTF8Error(data)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false, err
	}
	return string(out), bom, nil
}

// invalidUTF8Error locates the first line holding bytes that are not UTF-8.
// The UTF-8 decoder would otherwise replace them with U+FFFD silently.
func invalidUTF8Error(data []byte) *ParseError {
	raw := splitLines(string(data))
	offset := 0
	for i, l := range raw {
		if !utf8.ValidString(l) {
			offset = i
			break
		}
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.ToValidUTF8(l, "\uFFFD")
	}
	return newParseError(lines, offset, 1, errors.New("line is not valid UTF-8; if the file is windows-1252, read it with --encoding windows-1252"))
}

func encodeText(text string, name string, bom bool) ([]byte, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, serializeError("encode %s: %v", name, err)
	}
	if bom && enc == unicode.UTF8 {
		out = append(append([]byte{}, utf8BOM...), out...)
	}
	return out, nil
}

// splitLines breaks decoded text into newline-stripped lines. A final line
// terminator does not produce a trailing empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
