package match

// Token is a word after normalization, ready for sequence matching.
// WordIndices points back at the PositionedWord(s) the token covers;
// words whose normalized text is empty never become tokens, so the
// mapping must be carried explicitly rather than assumed positional.
type Token struct {
	Text        string
	WordIndices []int
	Line        LineKey
}

// PageIndex is the ordered token sequence of one page together with
// the underlying words, built once per page and reused for every quote
// searched against that page.
type PageIndex struct {
	Words  []Word
	Tokens []Token
}

// BuildPageIndex derives the logical token sequence from a page's
// positioned words. Words that normalize to nothing (bare punctuation,
// stray hyphens) are excluded from the sequence.
func BuildPageIndex(words []Word) *PageIndex {
	idx := &PageIndex{Words: words, Tokens: make([]Token, 0, len(words))}
	for i, w := range words {
		normalized := NormalizeToken(w.Text)
		if normalized == "" {
			continue
		}
		idx.Tokens = append(idx.Tokens, Token{
			Text:        normalized,
			WordIndices: []int{i},
			Line:        w.Line,
		})
	}
	return idx
}

// LineSequences groups token positions by line key, preserving the
// order lines first appear in the token sequence. Used by per-line
// matching mode.
func (idx *PageIndex) LineSequences() [][]int {
	byLine := make(map[LineKey][]int)
	var order []LineKey
	for i, tok := range idx.Tokens {
		if _, ok := byLine[tok.Line]; !ok {
			order = append(order, tok.Line)
		}
		byLine[tok.Line] = append(byLine[tok.Line], i)
	}
	sequences := make([][]int, 0, len(order))
	for _, key := range order {
		sequences = append(sequences, byLine[key])
	}
	return sequences
}

// WholeSequence returns all token positions as a single sequence in
// reading order.
func (idx *PageIndex) WholeSequence() []int {
	seq := make([]int, len(idx.Tokens))
	for i := range seq {
		seq[i] = i
	}
	return seq
}
