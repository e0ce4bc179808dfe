package match

import (
	"strconv"
	"strings"
)

// matchSequence finds spans of consecutive tokens (drawn from sequence,
// a list of positions into idx.Tokens) whose concatenated normalized
// text equals target. From every start position the scan greedily
// extends forward and abandons the start as soon as the accumulated
// string stops being a prefix of the target. This fail-fast behavior is
// deliberate: a near-miss is skipped rather than backtracked, and the
// next start position gets its own chance. Returned spans are lists of
// positions into sequence's token space.
func matchSequence(idx *PageIndex, sequence []int, target string) [][]int {
	var matches [][]int
	if target == "" || len(sequence) == 0 {
		return matches
	}

	for start := range sequence {
		var concat strings.Builder
		var span []int
		for pos := start; pos < len(sequence); pos++ {
			tok := idx.Tokens[sequence[pos]]
			if tok.Text == "" {
				continue
			}
			concat.WriteString(tok.Text)
			span = append(span, sequence[pos])
			accumulated := concat.String()
			if !strings.HasPrefix(target, accumulated) {
				break
			}
			if accumulated == target {
				matches = append(matches, append([]int(nil), span...))
				break
			}
		}
	}
	return matches
}

// FindSpans locates every span of tokens whose joined normalized text
// equals the normalized target phrase, returning each span as the
// strictly increasing list of underlying word indices. perLine selects
// one independent sequence per visual line instead of a single
// whole-page sequence; it trades recall for precision on pages whose
// reading order does not match visual line order. Duplicate spans
// (identical word-index tuples) are suppressed.
func (idx *PageIndex) FindSpans(phrase string, perLine bool) [][]int {
	target := NormalizePhrase(phrase)
	if target == "" || len(idx.Tokens) == 0 {
		return nil
	}

	var sequences [][]int
	if perLine {
		sequences = idx.LineSequences()
	} else {
		sequences = [][]int{idx.WholeSequence()}
	}

	var spans [][]int
	seen := make(map[string]struct{})
	for _, sequence := range sequences {
		for _, tokenSpan := range matchSequence(idx, sequence, target) {
			var wordIndices []int
			for _, tokenPos := range tokenSpan {
				wordIndices = append(wordIndices, idx.Tokens[tokenPos].WordIndices...)
			}
			if len(wordIndices) == 0 {
				continue
			}
			key := spanKey(wordIndices)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			spans = append(spans, wordIndices)
		}
	}
	return spans
}

// NormalizePhrase normalizes each whitespace-delimited word of a phrase
// and joins the non-empty results into the concatenated comparison
// string used by FindSpans.
func NormalizePhrase(phrase string) string {
	var b strings.Builder
	for _, word := range strings.Fields(phrase) {
		b.WriteString(NormalizeToken(word))
	}
	return b.String()
}

// SpanRect returns the union bounding rectangle of a span's words.
func (idx *PageIndex) SpanRect(wordIndices []int) Rect {
	r := idx.Words[wordIndices[0]].Rect
	for _, i := range wordIndices[1:] {
		r = r.Union(idx.Words[i].Rect)
	}
	return r
}

// SpanText returns the literal joined text of a span's words.
func (idx *PageIndex) SpanText(wordIndices []int) string {
	parts := make([]string, 0, len(wordIndices))
	for _, i := range wordIndices {
		parts = append(parts, idx.Words[i].Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func spanKey(wordIndices []int) string {
	var b strings.Builder
	for _, i := range wordIndices {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
