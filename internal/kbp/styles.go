package kbp

import (
	"fmt"
	"maps"
	"slices"
)

// StyleTable stores styles by signed key with letter aliases: 'A'..'Z' are
// keys 1..26 and 'a'..'z' are keys -1..-26.
//
// Lookups never need raw map access: Resolve returns an exact entry, derives
// and caches the fixed variant of a positive style on demand, or falls back
// to the default style (key 1 or -1).
type StyleTable struct {
	styles  map[int]Style
	derived map[int]Style
}

// NewStyleTable returns an empty table.
func NewStyleTable() *StyleTable {
	return &StyleTable{styles: map[int]Style{}, derived: map[int]Style{}}
}

func validKey(key int) bool {
	return key != 0 && key >= -MaxStyles && key <= MaxStyles
}

// KeyForLetter maps a style letter to its signed key.
func KeyForLetter(letter byte) (int, error) {
	switch {
	case letter >= 'A' && letter <= 'Z':
		return int(letter-'A') + 1, nil
	case letter >= 'a' && letter <= 'z':
		return -(int(letter-'a') + 1), nil
	default:
		return 0, usageError("style letter %q must be A-Z or a-z", string(letter))
	}
}

// LetterForKey maps a signed key to its style letter.
func LetterForKey(key int) (byte, error) {
	if !validKey(key) {
		return 0, usageError("style key %d outside [-%d,-1] and [1,%d]", key, MaxStyles, MaxStyles)
	}
	if key > 0 {
		return byte('A' + key - 1), nil
	}
	return byte('a' - key - 1), nil
}

// Set stores s under key after validating both.
func (t *StyleTable) Set(key int, s Style) error {
	if !validKey(key) {
		return usageError("style key %d outside [-%d,-1] and [1,%d]", key, MaxStyles, MaxStyles)
	}
	if s.Number != key {
		return usageError("style number %d does not match key %d", s.Number, key)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	t.ensure()
	t.styles[key] = s
	delete(t.derived, key)
	if key > 0 {
		delete(t.derived, -key)
	}
	return nil
}

// Merge stores every entry of styles, failing without changes if any is invalid.
func (t *StyleTable) Merge(styles map[int]Style) error {
	keys := slices.Sorted(maps.Keys(styles))
	staged := NewStyleTable()
	for _, k := range keys {
		if err := staged.Set(k, styles[k]); err != nil {
			return err
		}
	}
	for _, k := range keys {
		if err := t.Set(k, styles[k]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an explicitly stored style.
func (t *StyleTable) Delete(key int) {
	delete(t.styles, key)
	delete(t.derived, key)
	if key > 0 {
		delete(t.derived, -key)
	}
}

// Get returns only explicitly stored styles, never derived or fallback ones.
func (t *StyleTable) Get(key int) (Style, bool) {
	s, ok := t.styles[key]
	return s, ok
}

// Len counts explicitly stored styles.
func (t *StyleTable) Len() int { return len(t.styles) }

// Keys lists the explicitly stored positive keys in increasing order.
func (t *StyleTable) Keys() []int {
	keys := make([]int, 0, len(t.styles))
	for k := range t.styles {
		if k > 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Resolve looks key up with fallback and fixed-variant derivation.
func (t *StyleTable) Resolve(key int) (Style, error) {
	if !validKey(key) {
		return Style{}, usageError("style key %d outside [-%d,-1] and [1,%d]", key, MaxStyles, MaxStyles)
	}
	t.ensure()
	if s, ok := t.styles[key]; ok {
		return s, nil
	}
	if key < 0 {
		if s, ok := t.derived[key]; ok {
			return s, nil
		}
		if base, ok := t.styles[-key]; ok {
			s := base.fixedVariant()
			t.derived[key] = s
			return s, nil
		}
	}
	if key == 1 || key == -1 {
		return Style{}, fmt.Errorf("%w: default style %d is not defined", ErrStyleNotFound, key)
	}
	if key > 0 {
		return t.Resolve(1)
	}
	return t.Resolve(-1)
}

// ResolveLetter resolves the style a line header letter refers to.
func (t *StyleTable) ResolveLetter(letter byte) (Style, error) {
	key, err := KeyForLetter(letter)
	if err != nil {
		return Style{}, err
	}
	return t.Resolve(key)
}

// resolveColors replaces palette references in every stored style.
func (t *StyleTable) resolveColors(p Palette) error {
	for k, s := range t.styles {
		r, err := s.WithResolvedColors(p)
		if err != nil {
			return err
		}
		t.styles[k] = r
	}
	clear(t.derived)
	return nil
}

func (t *StyleTable) ensure() {
	if t.styles == nil {
		t.styles = map[int]Style{}
	}
	if t.derived == nil {
		t.derived = map[int]Style{}
	}
}
