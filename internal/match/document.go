// Package match locates free-text quotations inside paginated documents
// and converts them into highlight regions. The matching pipeline is
// normalization -> literal variant search -> token sequence matching,
// with page hints tried before an exhaustive scan.
package match

import "fmt"

// Rect is an axis-aligned rectangle in PDF user space (origin at the
// bottom-left of the page, Y increasing upward). X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	if other.X0 < r.X0 {
		r.X0 = other.X0
	}
	if other.Y0 < r.Y0 {
		r.Y0 = other.Y0
	}
	if other.X1 > r.X1 {
		r.X1 = other.X1
	}
	if other.Y1 > r.Y1 {
		r.Y1 = other.Y1
	}
	return r
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", r.X0, r.Y0, r.X1, r.Y1)
}

// Point is a position on a page. For AddNote it is interpreted as an
// offset from the top-left corner of the page, matching the usual
// placement of sticky notes.
type Point struct {
	X, Y float64
}

// LineKey identifies the visual line a word belongs to. Block groups
// lines that were extracted together (a column or text block), Line is
// the row within that block.
type LineKey struct {
	Block, Line int
}

// Word is one positioned word occurrence on one page, as supplied by
// the document backend. Words are immutable once extracted.
type Word struct {
	Text string
	Rect Rect
	Line LineKey
}

// Color is an RGB stroke color with components in [0, 1].
type Color [3]float64

// Document is the narrow read capability the matching engine consumes.
// Pages are 0-based throughout.
type Document interface {
	// NumPages returns the number of pages in the document.
	NumPages() int

	// Words returns the positioned words of a page in reading order.
	Words(page int) ([]Word, error)

	// SearchLiteral performs exact substring search against the raw
	// extracted text of a page, case-insensitively, and returns the
	// bounding rectangle of every occurrence.
	SearchLiteral(page int, text string) []Rect

	// TextInRect returns the plain text contained in a clipping
	// rectangle. Used to reject spurious literal hits that cover no
	// actual text.
	TextInRect(page int, r Rect) string
}

// Highlighter paints highlight marks. Separated from Document so that
// read-only backends can still drive the engine (the dry-run path
// records marks instead of painting them).
type Highlighter interface {
	AddHighlight(page int, r Rect, color Color) error
}

// AnnotatableDocument is the full backend capability: reading plus
// annotation primitives and serialization.
type AnnotatableDocument interface {
	Document
	Highlighter

	// AddNote places a sticky-note annotation with free text at an
	// offset from the top-left corner of the page.
	AddNote(page int, at Point, text string) error

	// Save serializes the document, compacting where the backend
	// supports it.
	Save(path string) error
}
