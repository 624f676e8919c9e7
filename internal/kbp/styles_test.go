package kbp_test

import (
	"errors"
	"testing"

	"kbpkit/internal/kbp"
)

func TestLetterKeyAliases(t *testing.T) {
	cases := []struct {
		letter byte
		key    int
	}{
		{'A', 1}, {'B', 2}, {'Z', 26}, {'a', -1}, {'c', -3}, {'z', -26},
	}
	for _, tc := range cases {
		key, err := kbp.KeyForLetter(tc.letter)
		if err != nil || key != tc.key {
			t.Fatalf("KeyForLetter(%c) = %d, %v; want %d", tc.letter, key, err, tc.key)
		}
		letter, err := kbp.LetterForKey(tc.key)
		if err != nil || letter != tc.letter {
			t.Fatalf("LetterForKey(%d) = %c, %v; want %c", tc.key, letter, err, tc.letter)
		}
	}
	for _, bad := range []byte{'0', '_', ' '} {
		if _, err := kbp.KeyForLetter(bad); !errors.Is(err, kbp.ErrUsage) {
			t.Fatalf("KeyForLetter(%q) should fail with ErrUsage, got %v", bad, err)
		}
	}
	for _, bad := range []int{0, 27, -27} {
		if _, err := kbp.LetterForKey(bad); !errors.Is(err, kbp.ErrUsage) {
			t.Fatalf("LetterForKey(%d) should fail with ErrUsage, got %v", bad, err)
		}
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	table := kbp.DefaultStyles()
	def, err := table.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve(1): %v", err)
	}
	for k := 1; k <= kbp.MaxStyles; k++ {
		if _, ok := table.Get(k); ok {
			continue
		}
		got, err := table.Resolve(k)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", k, err)
		}
		if got != def {
			t.Fatalf("Resolve(%d) = %+v, want default %+v", k, got, def)
		}
	}
}

func TestResolveDerivesFixedVariant(t *testing.T) {
	table := kbp.DefaultStyles()
	for k := -kbp.MaxStyles; k <= -1; k++ {
		base, ok := table.Get(-k)
		if !ok {
			continue
		}
		got, err := table.Resolve(k)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", k, err)
		}
		if got.Number != k || !got.Fixed {
			t.Fatalf("Resolve(%d) number=%d fixed=%v", k, got.Number, got.Fixed)
		}
		if got.TextWipeColor != base.TextColor || got.OutlineWipeColor != base.OutlineColor {
			t.Fatalf("Resolve(%d) wipe colours %v/%v, want %v/%v", k, got.TextWipeColor, got.OutlineWipeColor, base.TextColor, base.OutlineColor)
		}
		if got.Name != base.Name+"_fixed" {
			t.Fatalf("Resolve(%d) name = %q", k, got.Name)
		}
		again, _ := table.Resolve(k)
		if again != got {
			t.Fatal("cached fixed variant differs from first derivation")
		}
	}
	// Undefined negative keys fall back to the fixed default.
	got, err := table.Resolve(-20)
	if err != nil || got.Number != -1 {
		t.Fatalf("Resolve(-20) = %+v, %v", got, err)
	}
	if table.Len() != 4 {
		t.Fatalf("derivation must not add explicit entries, Len = %d", table.Len())
	}
}

func TestSetInvalidatesDerivedVariant(t *testing.T) {
	table := kbp.DefaultStyles()
	before, _ := table.Resolve(-2)

	male, _ := table.Get(2)
	male.TextColor = kbp.IndexColor(9)
	if err := table.Set(2, male); err != nil {
		t.Fatalf("Set: %v", err)
	}
	after, _ := table.Resolve(-2)
	if after.TextColor == before.TextColor || after.TextWipeColor != kbp.IndexColor(9) {
		t.Fatalf("fixed variant not refreshed: %+v", after)
	}
}

func TestResolveWithoutDefault(t *testing.T) {
	table := kbp.NewStyleTable()
	if _, err := table.Resolve(5); !errors.Is(err, kbp.ErrStyleNotFound) {
		t.Fatalf("expected ErrStyleNotFound, got %v", err)
	}
	if _, err := table.Resolve(0); !errors.Is(err, kbp.ErrUsage) {
		t.Fatalf("expected ErrUsage for key 0, got %v", err)
	}
}

func TestSetValidates(t *testing.T) {
	table := kbp.DefaultStyles()
	valid, _ := table.Get(1)

	cases := []struct {
		name  string
		key   int
		style func(kbp.Style) kbp.Style
	}{
		{"key out of range", 27, func(s kbp.Style) kbp.Style { s.Number = 27; return s }},
		{"number mismatch", 3, func(s kbp.Style) kbp.Style { return s }},
		{"palette index", 1, func(s kbp.Style) kbp.Style { s.OutlineColor = kbp.IndexColor(16); return s }},
		{"case flag", 1, func(s kbp.Style) kbp.Style { s.Case = 'X'; return s }},
		{"fixed flag", -1, func(s kbp.Style) kbp.Style { s.Number = -1; return s }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := table.Set(tc.key, tc.style(valid)); !errors.Is(err, kbp.ErrUsage) {
				t.Fatalf("expected ErrUsage, got %v", err)
			}
		})
	}
}

func TestMergeIsAllOrNothing(t *testing.T) {
	table := kbp.DefaultStyles()
	base, _ := table.Get(1)

	good := base
	good.Number, good.Name = 5, "Choir"
	bad := base
	bad.Number, bad.Case = 6, 'Q'

	if err := table.Merge(map[int]kbp.Style{5: good, 6: bad}); !errors.Is(err, kbp.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if _, ok := table.Get(5); ok {
		t.Fatal("failed merge must not apply any entry")
	}
	if err := table.Merge(map[int]kbp.Style{5: good}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got, _ := table.Resolve(5); got.Name != "Choir" {
		t.Fatalf("Resolve(5) = %+v", got)
	}
	if keys := table.Keys(); len(keys) != 5 || keys[4] != 5 {
		t.Fatalf("keys = %v", keys)
	}
}

func TestHasResolvedColors(t *testing.T) {
	s, _ := kbp.DefaultStyles().Get(1)
	if resolved, err := s.HasResolvedColors(); resolved || err != nil {
		t.Fatalf("index colours: %v, %v", resolved, err)
	}
	r, err := s.WithResolvedColors(kbp.DefaultPalette())
	if err != nil {
		t.Fatalf("WithResolvedColors: %v", err)
	}
	if resolved, err := r.HasResolvedColors(); !resolved || err != nil {
		t.Fatalf("resolved colours: %v, %v", resolved, err)
	}
	r.OutlineColor = kbp.IndexColor(0)
	if _, err := r.HasResolvedColors(); !errors.Is(err, kbp.ErrUsage) {
		t.Fatalf("mixed colours should fail, got %v", err)
	}
}
