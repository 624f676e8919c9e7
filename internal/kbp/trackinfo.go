package kbp

import "strings"

const (
	// StatusKey is the track information entry that selects the file mode.
	StatusKey = "Status"
	// StatusUnsynced marks a lyrics-only file.
	StatusUnsynced = "0"
	// StatusSynced is written for timed files created from scratch.
	StatusSynced = "1"

	trackKeyWidth = 15
)

// TrackInfo is the ordered key/value block following the header. Keys keep
// their original case; lookups ignore case.
type TrackInfo struct {
	entries []trackEntry
}

type trackEntry struct {
	key   string
	value string
	// sep is the whitespace between key and value on the wire.
	sep string
}

// NewTrackInfo returns an empty block.
func NewTrackInfo() *TrackInfo { return &TrackInfo{} }

// DefaultTrackInfo returns the entries written for a new synced project.
func DefaultTrackInfo() *TrackInfo {
	t := NewTrackInfo()
	t.Set(StatusKey, StatusSynced)
	for _, k := range []string{"Title", "Artist", "Audio", "BuildFile", "Intro", "Outro", "Comments"} {
		t.Set(k, "")
	}
	return t
}

func (t *TrackInfo) find(key string) int {
	for i, e := range t.entries {
		if strings.EqualFold(e.key, key) {
			return i
		}
	}
	return -1
}

// Get returns the value for key. Multi-line values are joined with "\n".
func (t *TrackInfo) Get(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	if i := t.find(key); i >= 0 {
		return t.entries[i].value, true
	}
	return "", false
}

// Set updates an existing entry in place or appends a new one.
func (t *TrackInfo) Set(key, value string) {
	if i := t.find(key); i >= 0 {
		t.entries[i].value = value
		return
	}
	t.entries = append(t.entries, trackEntry{key: key, value: value, sep: defaultTrackSep(key)})
}

// Delete removes key if present.
func (t *TrackInfo) Delete(key string) {
	if i := t.find(key); i >= 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
	}
}

// Keys lists keys in file order.
func (t *TrackInfo) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.key
	}
	return keys
}

// Len counts entries.
func (t *TrackInfo) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Synced reports whether the block describes a timed (paged) file. A nil
// block counts as synced.
func (t *TrackInfo) Synced() bool {
	status, ok := t.Get(StatusKey)
	return !ok || strings.TrimSpace(status) != StatusUnsynced
}

func defaultTrackSep(key string) string {
	if pad := trackKeyWidth - len(key); pad > 0 {
		return strings.Repeat(" ", pad)
	}
	return " "
}

// parseTrackInfo reads the block between the track information marker and the
// closing divider. Lines starting with a space continue the previous value.
func parseTrackInfo(lines []string) (*TrackInfo, error) {
	t := NewTrackInfo()
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, " "):
			if len(t.entries) == 0 {
				return nil, errAt(i, "continuation line without a preceding entry")
			}
			last := &t.entries[len(t.entries)-1]
			last.value += "\n" + line[1:]
		case isBlankOrComment(line):
		default:
			idx := strings.IndexAny(line, " \t")
			if idx < 0 {
				t.entries = append(t.entries, trackEntry{key: line})
				continue
			}
			rest := line[idx:]
			value := strings.TrimLeft(rest, " \t")
			t.entries = append(t.entries, trackEntry{key: line[:idx], value: value, sep: rest[:len(rest)-len(value)]})
		}
	}
	return t, nil
}

func (t *TrackInfo) wireLines() []string {
	var out []string
	for _, e := range t.entries {
		parts := strings.Split(e.value, "\n")
		sep := e.sep
		if sep == "" && parts[0] != "" {
			sep = " "
		}
		out = append(out, e.key+sep+parts[0])
		for _, cont := range parts[1:] {
			out = append(out, " "+cont)
		}
	}
	return out
}
