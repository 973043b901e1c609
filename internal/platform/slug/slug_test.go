package slug

import (
	"strings"
	"testing"
	"time"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Photosynthesis Basics":        "photosynthesis-basics",
		"  The   Water -- Cycle!  ":    "the-water-cycle",
		"Fractions: Part 2 (Review)":   "fractions-part-2-review",
		"---leading and trailing---":   "leading-and-trailing",
		"tabs\tand\nnewlines":          "tabs-and-newlines",
		"Grade 5":                      "grade-5",
		"5":                            "5",
		"already-a-slug":               "already-a-slug",
		"Ünïcödé letters are dropped":  "ncd-letters-are-dropped",
		"a - b":                        "a-b",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Fatalf("Make(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestMakeIdempotentAndWellFormed(t *testing.T) {
	inputs := []string{
		"Photosynthesis Basics", "  x  ", "A--B", "¿Qué?", "___", "Mixed CASE 123", "",
	}
	for _, in := range inputs {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Fatalf("Make not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
		if once != strings.ToLower(once) {
			t.Fatalf("Make(%q) not lowercase: %q", in, once)
		}
		if strings.HasPrefix(once, "-") || strings.HasSuffix(once, "-") || strings.Contains(once, "--") {
			t.Fatalf("Make(%q) has stray hyphens: %q", in, once)
		}
	}
}

func TestFallbackUnique(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		got := Make("!!!")
		if !strings.HasPrefix(got, "untitled-lecture-1700000000000-") {
			t.Fatalf("fallback shape: got=%q", got)
		}
		if seen[got] {
			t.Fatalf("fallback repeated: %q", got)
		}
		seen[got] = true
	}
}

func TestCleanHasNoFallback(t *testing.T) {
	if got := Clean("!!!"); got != "" {
		t.Fatalf("Clean(%q): want=%q got=%q", "!!!", "", got)
	}
	if got := Clean("Bio 101"); got != "bio-101" {
		t.Fatalf("Clean: want=%q got=%q", "bio-101", got)
	}
}
