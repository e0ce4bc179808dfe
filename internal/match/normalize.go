package match

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ligatures maps ligature code points to their expanded ASCII form.
// NFKC already decomposes the Latin f-ligatures; the table keeps the
// fold explicit and covers code points NFKC leaves alone.
var ligatures = map[rune]string{
	'ﬀ': "ff",
	'ﬁ': "fi",
	'ﬂ': "fl",
	'ﬃ': "ffi",
	'ﬄ': "ffl",
	'ﬅ': "st",
	'ﬆ': "st",
	'Œ': "OE",
	'œ': "oe",
	'Æ': "AE",
	'æ': "ae",
}

// hyphenRunes are the hyphen-family code points removed anywhere in a
// token so that fragments split at a hyphenated line break rejoin.
const hyphenRunes = "-‐‑‒–—―−"

// tokenPunct is the punctuation stripped from token edges before
// comparison. ASCII punctuation plus the smart-quote characters.
const tokenPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~“”‘’"

// NormalizeToken canonicalizes a word for sequence matching: Unicode
// NFKC composition, non-breaking space folding, ligature expansion,
// edge punctuation stripping, hyphen removal anywhere, lower-casing.
// The function is pure and idempotent; it is applied identically to
// document words and to target phrase words so the two token streams
// stay comparable. Empty input yields empty output.
func NormalizeToken(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, " ", " ")
	if strings.ContainsFunc(text, isLigature) {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			if expanded, ok := ligatures[r]; ok {
				b.WriteString(expanded)
				continue
			}
			b.WriteRune(r)
		}
		text = b.String()
	}
	text = strings.Trim(text, tokenPunct)
	if strings.ContainsAny(text, hyphenRunes) {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			if strings.ContainsRune(hyphenRunes, r) {
				continue
			}
			b.WriteRune(r)
		}
		text = b.String()
	}
	return strings.ToLower(text)
}

func isLigature(r rune) bool {
	_, ok := ligatures[r]
	return ok
}

// quotePairs are the wrapping quote pairs removed by StripWrappingQuotes.
var quotePairs = [][2]string{
	{"“", "”"},
	{"‘", "’"},
	{"'", "'"},
	{`"`, `"`},
}

// StripWrappingQuotes removes a single layer of wrapping quote
// characters from a quote, then trims any stray quote characters left
// on the edges. Extraction output frequently wraps quotes in smart
// quotes that are not present in the source text.
func StripWrappingQuotes(text string) string {
	if text == "" {
		return text
	}
	trimmed := strings.TrimSpace(text)
	for _, pair := range quotePairs {
		left, right := pair[0], pair[1]
		if strings.HasPrefix(trimmed, left) && strings.HasSuffix(trimmed, right) &&
			len(trimmed) > len(left)+len(right) {
			trimmed = strings.TrimSpace(trimmed[len(left) : len(trimmed)-len(right)])
			break
		}
	}
	return strings.Trim(trimmed, "\"“”‘’")
}
