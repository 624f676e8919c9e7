package kbp_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"kbpkit/internal/kbp"
)

func TestWindows1252RoundTrip(t *testing.T) {
	lines := replaceLine(syncedLines(), "x/600/900/0", "Café/600/900/0")
	doc := mustParse(t, lines, kbp.Options{})
	if err := doc.SetEncoding(kbp.EncodingWindows1252); err != nil {
		t.Fatalf("SetEncoding: %v", err)
	}
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Contains(data, []byte("Caf\xe9/600")) {
		t.Fatal("expected single-byte é in windows-1252 output")
	}

	back, err := kbp.Read(bytes.NewReader(data), kbp.Options{Encoding: "cp1252"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := back.Pages[0].Lines[1].Syllables[0].Text; got != "Café" {
		t.Fatalf("decoded text = %q", got)
	}
	again, err := back.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Fatal("windows-1252 round trip is not byte exact")
	}
}

func TestUnencodableTextFailsToSerialize(t *testing.T) {
	lines := replaceLine(syncedLines(), "x/600/900/0", "日本/600/900/0")
	doc := mustParse(t, lines, kbp.Options{})
	if err := doc.SetEncoding(kbp.EncodingWindows1252); err != nil {
		t.Fatalf("SetEncoding: %v", err)
	}
	if _, err := doc.Bytes(); !errors.Is(err, kbp.ErrSerialize) {
		t.Fatalf("expected ErrSerialize, got %v", err)
	}
	if err := doc.SetEncoding("latin-9"); !errors.Is(err, kbp.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestInvalidUTF8IsRejected(t *testing.T) {
	lines := replaceLine(syncedLines(), "Title          My Song", "Title          Caf\xe9")
	data := wire(lines)

	_, err := kbp.Read(bytes.NewReader(data), kbp.Options{})
	if !errors.Is(err, kbp.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	var pe *kbp.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if want := indexOf(t, lines, "Title          Caf\xe9") + 1; pe.Line != want {
		t.Fatalf("line = %d, want %d", pe.Line, want)
	}
	if !strings.Contains(err.Error(), "--encoding windows-1252") {
		t.Fatalf("error does not suggest windows-1252: %v", err)
	}

	doc, err := kbp.Read(bytes.NewReader(data), kbp.Options{Encoding: kbp.EncodingWindows1252})
	if err != nil {
		t.Fatalf("Read windows-1252: %v", err)
	}
	again, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Fatal("windows-1252 read did not round trip byte exact")
	}
}
