// Package kbp reads, checks, and writes Karaoke Builder Studio project files.
//
// A KBP file is line oriented: a header carrying the 16-colour palette, style
// definitions, margins, and track information, followed by divider-separated
// page, image, or lyrics sections. Parse and Open build a Document from that
// text, Document.Validate reports timing and style inconsistencies without
// touching the data, and Document.Write regenerates the wire text. An
// unmodified Document parsed from a canonical file writes back byte for byte.
//
// Styles are addressed by signed keys in [-26,-1] and [1,26]. Positive keys
// are the wiping styles behind the uppercase letters in line headers, negative
// keys their fixed counterparts behind lowercase letters. Always go through
// StyleTable.Resolve so fallback and fixed-variant derivation stay consistent.
//
// The engine keeps no package-level mutable state. A Document is not safe for
// concurrent mutation; callers own synchronization.
package kbp
