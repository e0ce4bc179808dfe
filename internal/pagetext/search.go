package pagetext

import (
	"strings"

	"github.com/paperflux/paperflux/internal/match"
)

// PageWords wraps the assembled words of one page with the derived
// per-line layout needed for literal search. Built once per page and
// cached by the backends.
type PageWords struct {
	words   []match.Word
	lowered []string // per-word lowercase text, the byte space searched
	lines   [][]int  // word indices per line, reading order
}

// New derives the line structure from assembled words. Words are
// expected in reading order, as produced by AssembleWords.
func New(words []match.Word) *PageWords {
	p := &PageWords{words: words, lowered: make([]string, len(words))}
	byLine := make(map[match.LineKey]int)
	for i, w := range words {
		p.lowered[i] = strings.ToLower(w.Text)
		line, ok := byLine[w.Line]
		if !ok {
			line = len(p.lines)
			byLine[w.Line] = line
			p.lines = append(p.lines, nil)
		}
		p.lines[line] = append(p.lines[line], i)
	}
	return p
}

// Words returns the page's words in reading order.
func (p *PageWords) Words() []match.Word {
	return p.words
}

// SearchLiteral finds every case-insensitive occurrence of needle in
// the single-spaced joined text of each line and returns the union
// rectangle of the words each occurrence covers. Matches never span
// lines; multi-line quotes are the sequence matcher's job.
func (p *PageWords) SearchLiteral(needle string) []match.Rect {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}

	var rects []match.Rect
	for _, line := range p.lines {
		// Offsets are byte positions in the lowercased join, the same
		// space the needle is matched in; lowering after joining would
		// shift offsets for runes whose case fold changes byte length.
		haystack, offsets := p.joinLine(line)

		from := 0
		for {
			at := strings.Index(haystack[from:], needle)
			if at < 0 {
				break
			}
			start := from + at
			end := start + len(needle)
			if r, ok := p.coverRect(line, offsets, start, end); ok {
				rects = append(rects, r)
			}
			from = start + 1
		}
	}
	return rects
}

// TextInRect returns the space-joined text of every word whose center
// lies inside r, in reading order.
func (p *PageWords) TextInRect(r match.Rect) string {
	var parts []string
	for _, w := range p.words {
		cx := (w.Rect.X0 + w.Rect.X1) / 2
		cy := (w.Rect.Y0 + w.Rect.Y1) / 2
		if r.Contains(cx, cy) {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// joinLine builds the line's single-spaced lowercase text and records
// the byte offset at which each word starts within it.
func (p *PageWords) joinLine(line []int) (string, []int) {
	var b strings.Builder
	offsets := make([]int, len(line))
	for i, wordIdx := range line {
		if i > 0 {
			b.WriteByte(' ')
		}
		offsets[i] = b.Len()
		b.WriteString(p.lowered[wordIdx])
	}
	return b.String(), offsets
}

// coverRect unions the boxes of the line's words overlapped by the
// byte range [start, end) of the joined line text.
func (p *PageWords) coverRect(line []int, offsets []int, start, end int) (match.Rect, bool) {
	var covered match.Rect
	found := false
	for i, wordIdx := range line {
		wordStart := offsets[i]
		wordEnd := wordStart + len(p.lowered[wordIdx])
		if wordEnd <= start || wordStart >= end {
			continue
		}
		if !found {
			covered = p.words[wordIdx].Rect
			found = true
			continue
		}
		covered = covered.Union(p.words[wordIdx].Rect)
	}
	return covered, found
}
