// Package pagetext assembles positioned characters extracted from a
// PDF page into words with bounding boxes and line identity, and
// provides literal substring search and clip-rect text extraction over
// the assembled words. Both document backends feed their
// library-specific character streams through this package so the
// matching engine sees one word model.
package pagetext

import (
	"math"
	"sort"
	"strings"

	"github.com/paperflux/paperflux/internal/match"
)

// Char is one positioned character (or character cluster) from the
// text layer: its string content, the lower-left corner of its box,
// its advance width and the font size it was set in.
type Char struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

const (
	// rowTolerance is the Y distance within which characters are
	// considered part of the same visual row.
	rowTolerance = 3.0

	// wordSpaceMultiplier is the fraction of the font size that an
	// X gap must exceed to start a new word, when no adaptive
	// threshold is available.
	wordSpaceMultiplier = 0.3

	// adaptiveGapFactor scales the median intra-row character spacing
	// into a word-break threshold. Higher than the naive 1x because
	// justified text stretches spacing inside words.
	adaptiveGapFactor = 5.0
)

// AssembleWords groups characters into rows by Y coordinate, orders
// rows top to bottom, and merges adjacent characters of a row into
// words wherever the X gap stays under the spacing threshold. Each
// word carries the union box of its characters and a line key naming
// its row.
func AssembleWords(chars []Char) []match.Word {
	filtered := make([]Char, 0, len(chars))
	for _, c := range chars {
		if strings.TrimSpace(c.S) == "" {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil
	}

	threshold := adaptiveGapFactor * medianRowSpacing(filtered)
	rows := groupIntoRows(filtered)

	var words []match.Word
	for rowIdx, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		line := match.LineKey{Line: rowIdx}
		var current *wordBuilder
		for _, c := range row {
			if current == nil {
				current = newWordBuilder(c, line)
				continue
			}
			gap := c.X - current.rect.X1
			limit := threshold
			if limit <= 0 {
				limit = wordSpaceMultiplier * current.fontSize
				if limit <= 0 {
					limit = 3.0
				}
			}
			if gap <= limit {
				current.extend(c)
				continue
			}
			words = append(words, current.word())
			current = newWordBuilder(c, line)
		}
		if current != nil {
			words = append(words, current.word())
		}
	}
	return words
}

// groupIntoRows buckets characters by Y coordinate within rowTolerance
// and returns the rows top to bottom (PDF space, higher Y first).
func groupIntoRows(chars []Char) [][]Char {
	type bucket struct {
		yMin, yMax float64
		chars      []Char
	}

	var buckets []bucket
	for _, c := range chars {
		placed := false
		for i := range buckets {
			if c.Y >= buckets[i].yMin-rowTolerance && c.Y <= buckets[i].yMax+rowTolerance {
				buckets[i].chars = append(buckets[i].chars, c)
				buckets[i].yMin = math.Min(buckets[i].yMin, c.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, c.Y)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{yMin: c.Y, yMax: c.Y, chars: []Char{c}})
		}
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].yMax > buckets[j].yMax })

	rows := make([][]Char, len(buckets))
	for i, b := range buckets {
		rows[i] = b.chars
	}
	return rows
}

// medianRowSpacing measures the median positive X spacing between
// consecutive characters on the same row. Returns 0 when there is too
// little data for a reliable estimate.
func medianRowSpacing(chars []Char) float64 {
	if len(chars) < 10 {
		return 0
	}
	var spacings []float64
	for i := 1; i < len(chars); i++ {
		if math.Abs(chars[i].Y-chars[i-1].Y) >= rowTolerance {
			continue
		}
		spacing := chars[i].X - (chars[i-1].X + chars[i-1].W)
		if spacing > 0 && spacing < chars[i].FontSize*10 {
			spacings = append(spacings, spacing)
		}
	}
	if len(spacings) < 5 {
		return 0
	}
	sort.Float64s(spacings)
	return spacings[len(spacings)/2]
}

type wordBuilder struct {
	text     strings.Builder
	rect     match.Rect
	fontSize float64
	line     match.LineKey
}

func newWordBuilder(c Char, line match.LineKey) *wordBuilder {
	b := &wordBuilder{
		rect:     charRect(c),
		fontSize: c.FontSize,
		line:     line,
	}
	b.text.WriteString(c.S)
	return b
}

func (b *wordBuilder) extend(c Char) {
	b.text.WriteString(c.S)
	b.rect = b.rect.Union(charRect(c))
}

func (b *wordBuilder) word() match.Word {
	return match.Word{Text: b.text.String(), Rect: b.rect, Line: b.line}
}

func charRect(c Char) match.Rect {
	height := c.FontSize
	if height <= 0 {
		height = c.W
	}
	return match.Rect{X0: c.X, Y0: c.Y, X1: c.X + c.W, Y1: c.Y + height}
}
