package pagetext

import (
	"testing"

	"github.com/paperflux/paperflux/internal/match"
)

func charRun(text string, x, y, fontSize float64) []Char {
	chars := make([]Char, 0, len(text))
	for _, r := range text {
		chars = append(chars, Char{X: x, Y: y, W: 6, FontSize: fontSize, S: string(r)})
		x += 6
	}
	return chars
}

func TestAssembleWordsMergesAndSplits(t *testing.T) {
	// Two words on one row, separated by a gap well past the word
	// threshold; letters within each word touch.
	var chars []Char
	chars = append(chars, charRun("quick", 50, 700, 12)...)
	chars = append(chars, charRun("brown", 120, 700, 12)...)

	words := AssembleWords(chars)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %v", len(words), words)
	}
	if words[0].Text != "quick" || words[1].Text != "brown" {
		t.Errorf("words = %q, %q", words[0].Text, words[1].Text)
	}
	if words[0].Line != words[1].Line {
		t.Errorf("same row split into lines %v and %v", words[0].Line, words[1].Line)
	}
	if words[0].Rect.X0 != 50 || words[0].Rect.X1 != 80 {
		t.Errorf("word box = %v", words[0].Rect)
	}
}

func TestAssembleWordsOrdersRowsTopDown(t *testing.T) {
	var chars []Char
	chars = append(chars, charRun("lower", 50, 600, 12)...)
	chars = append(chars, charRun("upper", 50, 700, 12)...)

	words := AssembleWords(chars)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "upper" || words[1].Text != "lower" {
		t.Errorf("rows out of order: %q before %q", words[0].Text, words[1].Text)
	}
	if words[0].Line == words[1].Line {
		t.Error("distinct rows share a line key")
	}
}

func TestAssembleWordsRowTolerance(t *testing.T) {
	// Baseline jitter under the tolerance keeps characters on one row.
	chars := []Char{
		{X: 50, Y: 700, W: 6, FontSize: 12, S: "a"},
		{X: 56, Y: 702, W: 6, FontSize: 12, S: "b"},
		{X: 62, Y: 699, W: 6, FontSize: 12, S: "c"},
	}
	words := AssembleWords(chars)
	if len(words) != 1 || words[0].Text != "abc" {
		t.Fatalf("jittered row not merged: %v", words)
	}
}

func TestAssembleWordsSkipsBlankChars(t *testing.T) {
	// A space character is dropped before merging; the gap it leaves
	// behind splits its neighbors into separate words, which is what
	// the single-space line join in SearchLiteral expects.
	chars := []Char{
		{X: 50, Y: 700, W: 6, FontSize: 12, S: "a"},
		{X: 56, Y: 700, W: 6, FontSize: 12, S: " "},
		{X: 62, Y: 700, W: 6, FontSize: 12, S: "b"},
	}
	words := AssembleWords(chars)
	if len(words) != 2 || words[0].Text != "a" || words[1].Text != "b" {
		t.Fatalf("blank char handling wrong: %v", words)
	}
	if words[0].Line != words[1].Line {
		t.Errorf("split words left their row: %v vs %v", words[0].Line, words[1].Line)
	}
}

func TestAssembleWordsEmpty(t *testing.T) {
	if words := AssembleWords(nil); words != nil {
		t.Errorf("expected nil, got %v", words)
	}
}

func TestSearchLiteralCaseInsensitive(t *testing.T) {
	p := New(AssembleWords(joinRuns(
		charRun("The", 50, 700, 12),
		charRun("Quick", 80, 700, 12),
		charRun("Brown", 125, 700, 12),
	)))

	rects := p.SearchLiteral("quick brown")
	if len(rects) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(rects))
	}
	if rects[0].X0 != 80 {
		t.Errorf("hit rect starts at %v, want 80", rects[0].X0)
	}
}

func TestSearchLiteralDoesNotCrossLines(t *testing.T) {
	p := New(AssembleWords(joinRuns(
		charRun("alpha", 50, 700, 12),
		charRun("beta", 50, 680, 12),
	)))

	if rects := p.SearchLiteral("alpha beta"); len(rects) != 0 {
		t.Errorf("literal hit crossed lines: %v", rects)
	}
}

func TestSearchLiteralCaseFoldWidthChange(t *testing.T) {
	// U+0130 lowercases to a two-rune form whose UTF-8 encoding is one
	// byte longer. Each İ shifts the lowercased text by a byte, so a
	// short word after "İZMİR" lands two bytes past where the original
	// join puts it; the cover rect must still be that word's box, not
	// its neighbor's.
	words := []match.Word{
		{Text: "İZMİR", Rect: rectAround(50, 700, 90, 712), Line: match.LineKey{Line: 0}},
		{Text: "ve", Rect: rectAround(100, 700, 115, 712), Line: match.LineKey{Line: 0}},
		{Text: "ankara", Rect: rectAround(125, 700, 170, 712), Line: match.LineKey{Line: 0}},
	}
	p := New(words)

	rects := p.SearchLiteral("ve")
	if len(rects) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(rects))
	}
	if rects[0].X0 != 100 || rects[0].X1 != 115 {
		t.Errorf("cover rect misplaced: %v", rects[0])
	}
}

func TestSearchLiteralOverlappingHits(t *testing.T) {
	p := New(AssembleWords(joinRuns(
		charRun("data", 50, 700, 12),
		charRun("data", 90, 700, 12),
		charRun("data", 130, 700, 12),
	)))

	rects := p.SearchLiteral("data data")
	if len(rects) != 2 {
		t.Fatalf("expected 2 overlapping hits, got %d", len(rects))
	}
}

func TestTextInRect(t *testing.T) {
	p := New(AssembleWords(joinRuns(
		charRun("alpha", 50, 700, 12),
		charRun("beta", 100, 700, 12),
		charRun("gamma", 50, 680, 12),
	)))

	got := p.TextInRect(rectAround(40, 695, 200, 715))
	if got != "alpha beta" {
		t.Errorf("TextInRect = %q, want %q", got, "alpha beta")
	}
	if empty := p.TextInRect(rectAround(400, 400, 410, 410)); empty != "" {
		t.Errorf("TextInRect of empty region = %q", empty)
	}
}

func rectAround(x0, y0, x1, y1 float64) match.Rect {
	return match.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func joinRuns(runs ...[]Char) []Char {
	var chars []Char
	for _, run := range runs {
		chars = append(chars, run...)
	}
	return chars
}
