package match

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// lastResortLen is the prefix length used by the final fallback search
// when a quote was not found anywhere.
const lastResortLen = 40

// Partial records the best available diagnostic for a page that was
// searched: the 1-based page number, a confidence placeholder (100 for
// a hit, 0 for a miss), and a text preview.
type Partial struct {
	Page       int
	Confidence float64
	Preview    string
}

// Outcome summarizes painting one quote. Found counts instances from
// the hint and fallback phases; Highlights additionally counts marks
// painted by the last-resort shortened search. Pages holds the 0-based
// indices of pages where at least one mark was painted.
type Outcome struct {
	Found      int
	Highlights int
	Pages      []int
	Best       []Partial
}

// PageNumbers returns the touched pages as sorted 1-based numbers.
func (o Outcome) PageNumbers() []int {
	nums := make([]int, len(o.Pages))
	for i, idx := range o.Pages {
		nums[i] = idx + 1
	}
	sort.Ints(nums)
	return nums
}

// Options configures an Engine.
type Options struct {
	// PerLine runs the sequence matcher over one independent token
	// sequence per visual line instead of the whole page.
	PerLine bool

	Logger *zap.Logger
}

// Engine locates quotes in one open document and paints highlight
// marks through a Highlighter. Page token indexes are cached for the
// lifetime of the engine, which is expected to match one document
// processing pass; the engine is not safe for concurrent use because
// painting mutates shared document state.
type Engine struct {
	doc     Document
	painter Highlighter
	perLine bool
	log     *zap.Logger
	cache   map[int]*PageIndex
}

// NewEngine creates an engine over an open document. The highlighter
// receives every painted mark; pass the document itself when it is
// annotatable, or a recording highlighter for dry runs.
func NewEngine(doc Document, painter Highlighter, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		doc:     doc,
		painter: painter,
		perLine: opts.PerLine,
		log:     log,
		cache:   make(map[int]*PageIndex),
	}
}

// PageIndex returns the cached token index for a page, building it on
// first use so repeated quotes against the same page reuse the word
// extraction and normalization.
func (e *Engine) PageIndex(page int) (*PageIndex, error) {
	if idx, ok := e.cache[page]; ok {
		return idx, nil
	}
	words, err := e.doc.Words(page)
	if err != nil {
		return nil, err
	}
	idx := BuildPageIndex(words)
	e.cache[page] = idx
	return idx, nil
}

// PaintQuote runs the full per-quote state machine: hinted pages,
// fallback scan of the remaining pages, then the last-resort shortened
// literal search if nothing was found. It terminates early as soon as
// the first two phases paint at least one instance.
func (e *Engine) PaintQuote(rawText string, pageHints []int, color Color) Outcome {
	cleaned := StripWrappingQuotes(strings.TrimSpace(rawText))
	if cleaned == "" {
		return Outcome{}
	}

	variants := Variants(cleaned)
	if len(variants) == 0 {
		variants = []string{cleaned}
	}

	acc := &accumulator{checked: make(map[int]bool)}

	hintIndices, dropped := ValidHintIndices(pageHints, e.doc.NumPages())
	for _, hinted := range dropped {
		e.log.Debug("ignoring out-of-range page hint", zap.Int("page", hinted))
	}
	if len(hintIndices) > 0 {
		e.processPages(hintIndices, cleaned, variants, color, acc)
	} else if len(pageHints) > 0 {
		e.log.Debug("no valid page hints after filtering, falling back to full scan")
	}

	if acc.found == 0 {
		remaining := RemainingPages(e.doc.NumPages(), acc.checked)
		if len(remaining) > 0 {
			e.processPages(remaining, cleaned, variants, color, acc)
		}
	}

	if acc.found == 0 {
		e.log.Warn("quote not found on any page",
			zap.String("quote", preview(cleaned, 50)),
			zap.Bool("per_line", e.perLine))
		if len(acc.best) > 0 {
			e.log.Info("closest matches for quote", zap.Any("partials", acc.best))
		}
		e.lastResort(cleaned, hintIndices, color, acc)
	}

	return acc.outcome()
}

// processPages runs the literal-then-token search over a page list.
// Each page is checked at most once per quote across both phases.
func (e *Engine) processPages(pages []int, cleaned string, variants []string, color Color, acc *accumulator) {
	for _, page := range pages {
		if acc.checked[page] {
			continue
		}
		acc.checked[page] = true
		if page < 0 || page >= e.doc.NumPages() {
			e.log.Debug("ignoring out-of-range page index", zap.Int("page", page))
			continue
		}

		if e.paintLiteral(page, variants, color, acc) {
			continue
		}

		idx, err := e.PageIndex(page)
		if err != nil {
			e.log.Error("word extraction failed", zap.Int("page", page+1), zap.Error(err))
			continue
		}
		spans := idx.FindSpans(cleaned, e.perLine)
		if len(spans) == 0 {
			acc.best = append(acc.best, Partial{Page: page + 1, Preview: preview(cleaned, 60)})
			continue
		}

		e.log.Debug("token match for quote",
			zap.Int("page", page+1),
			zap.Int("instances", len(spans)),
			zap.Bool("per_line", e.perLine))
		for _, span := range spans {
			if err := e.painter.AddHighlight(page, idx.SpanRect(span), color); err != nil {
				e.log.Error("highlighting token match failed", zap.Error(err))
				continue
			}
			acc.painted(page, true)
		}
		acc.best = append(acc.best, Partial{
			Page:       page + 1,
			Confidence: 100,
			Preview:    preview(idx.SpanText(spans[0]), 60),
		})
	}
}

// paintLiteral tries each search variant on one page and paints the
// instances of the first variant that yields any. Literal hits whose
// clipping rectangle contains no text are discarded as spurious.
func (e *Engine) paintLiteral(page int, variants []string, color Color, acc *accumulator) bool {
	for _, variant := range variants {
		var rects []Rect
		for _, r := range e.doc.SearchLiteral(page, variant) {
			if strings.TrimSpace(e.doc.TextInRect(page, r)) == "" {
				continue
			}
			rects = append(rects, r)
		}
		if len(rects) == 0 {
			continue
		}

		e.log.Debug("direct match for quote",
			zap.Int("page", page+1),
			zap.Int("instances", len(rects)),
			zap.String("variant", preview(variant, 40)))
		for _, r := range rects {
			if err := e.painter.AddHighlight(page, r, color); err != nil {
				e.log.Error("highlighting direct match failed", zap.Error(err))
				continue
			}
			acc.painted(page, true)
		}
		acc.best = append(acc.best, Partial{Page: page + 1, Confidence: 100, Preview: preview(variant, 60)})
		return true
	}
	return false
}

// lastResort searches for the first 40 characters of the cleaned quote
// over the hinted pages if any existed, otherwise the whole document.
// Hits are painted without the spurious-text filter; they count as
// highlights but not as found instances.
func (e *Engine) lastResort(cleaned string, hintIndices []int, color Color, acc *accumulator) {
	runes := []rune(cleaned)
	if len(runes) <= lastResortLen {
		return
	}
	shorter := string(runes[:lastResortLen])
	e.log.Debug("trying shortened quote", zap.String("quote", shorter))

	pages := hintIndices
	if len(pages) == 0 {
		pages = RemainingPages(e.doc.NumPages(), nil)
	}
	for _, page := range pages {
		if page < 0 || page >= e.doc.NumPages() {
			continue
		}
		rects := e.doc.SearchLiteral(page, shorter)
		if len(rects) == 0 {
			continue
		}
		e.log.Debug("found shortened quote",
			zap.Int("page", page+1), zap.Int("instances", len(rects)))
		for _, r := range rects {
			if err := e.painter.AddHighlight(page, r, color); err != nil {
				e.log.Error("highlighting shortened quote failed", zap.Error(err))
				continue
			}
			acc.painted(page, false)
		}
	}
}

// accumulator threads the per-quote counters through the page loop
// explicitly instead of capturing them in closures.
type accumulator struct {
	checked    map[int]bool
	found      int
	highlights int
	pages      []int
	pageSeen   map[int]bool
	best       []Partial
}

func (a *accumulator) painted(page int, counts bool) {
	a.highlights++
	if counts {
		a.found++
	}
	if a.pageSeen == nil {
		a.pageSeen = make(map[int]bool)
	}
	if !a.pageSeen[page] {
		a.pageSeen[page] = true
		a.pages = append(a.pages, page)
	}
}

func (a *accumulator) outcome() Outcome {
	return Outcome{
		Found:      a.found,
		Highlights: a.highlights,
		Pages:      a.pages,
		Best:       a.best,
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
