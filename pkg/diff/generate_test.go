package diff

import (
	"strings"
	"testing"
)

func TestGenerateInsertScenario(t *testing.T) {
	t.Parallel()

	got := Generate("first line\nsecond line", "first line\ninserted line\nsecond line", "notes.txt", DefaultContextLines)
	if got != insertScenarioDiff {
		t.Fatalf("unexpected diff:\ngot  %q\nwant %q", got, insertScenarioDiff)
	}
}

func TestGenerateEqualContentIsEmpty(t *testing.T) {
	t.Parallel()

	if got := Generate("same\ntext", "same\ntext", "f.txt", DefaultContextLines); got != "" {
		t.Fatalf("expected empty diff, got %q", got)
	}
}

func TestGenerateRoundTripAppliesStrictly(t *testing.T) {
	t.Parallel()

	oldText := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj"
	newText := "a\nB\nc\nd\ne\nf\ng\nh\nI\nj"

	diffText := Generate(oldText, newText, "letters.txt", 1)
	chunks := Parse(diffText)
	if len(chunks) != 1 {
		t.Fatalf("unexpected chunk count: %d", len(chunks))
	}
	// Changes far apart with one context line must land in separate hunks.
	if len(chunks[0].Hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d:\n%s", len(chunks[0].Hunks), diffText)
	}
	got, err := ApplyToContent(oldText, chunks[0], ApplyOptions{VerifyContext: true})
	if err != nil {
		t.Fatalf("strict apply of generated diff failed: %v", err)
	}
	if got != newText {
		t.Fatalf("round trip mismatch:\ngot  %q\nwant %q", got, newText)
	}
}

func TestGenerateRoundTripTrailingNewline(t *testing.T) {
	t.Parallel()

	oldText := "a\n"
	newText := "a\nb\n"
	diffText := Generate(oldText, newText, "f.txt", DefaultContextLines)
	got, err := ApplyToContent(oldText, Parse(diffText)[0], ApplyOptions{VerifyContext: true})
	if err != nil {
		t.Fatalf("strict apply failed: %v\ndiff:\n%s", err, diffText)
	}
	if got != newText {
		t.Fatalf("round trip mismatch: got %q want %q", got, newText)
	}
}

func TestGenerateRoundTripDeletionAndReplace(t *testing.T) {
	t.Parallel()

	oldText := "keep\ndrop me\nkeep too\nold value\ntail"
	newText := "keep\nkeep too\nnew value\ntail"
	diffText := Generate(oldText, newText, "f.txt", DefaultContextLines)
	if !strings.Contains(diffText, "-drop me\n") || !strings.Contains(diffText, "+new value\n") {
		t.Fatalf("unexpected diff body:\n%s", diffText)
	}
	got, err := ApplyToContent(oldText, Parse(diffText)[0], ApplyOptions{VerifyContext: true})
	if err != nil {
		t.Fatalf("strict apply failed: %v\ndiff:\n%s", err, diffText)
	}
	if got != newText {
		t.Fatalf("round trip mismatch:\ngot  %q\nwant %q", got, newText)
	}
}
