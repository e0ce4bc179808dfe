package match

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minVariantLen is the floor below which a candidate search string is
// too short to be worth a literal search (it would match everywhere).
const minVariantLen = 10

var whitespaceRun = regexp.MustCompile(`\s+`)

// Variants generates alternate literal search strings for a quote,
// most-specific first, deduplicated, each collapsed to single-spaced
// text of at least minVariantLen characters. The alternates absorb the
// usual extraction artifacts: ellipsis truncation, trailing clause
// punctuation, and quotes cut one word short of the source sentence.
func Variants(candidates ...string) []string {
	var variants []string
	seen := make(map[string]struct{})

	add := func(text string) {
		collapsed := whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
		if utf8.RuneCountInString(collapsed) < minVariantLen {
			return
		}
		if _, ok := seen[collapsed]; ok {
			return
		}
		seen[collapsed] = struct{}{}
		variants = append(variants, collapsed)
	}

	for _, candidate := range candidates {
		base := strings.TrimSpace(candidate)
		if base == "" {
			continue
		}
		add(base)

		for _, ellipsis := range []string{"...", "…"} {
			if !strings.Contains(base, ellipsis) {
				continue
			}
			before := strings.TrimSpace(strings.SplitN(base, ellipsis, 2)[0])
			if utf8.RuneCountInString(before) >= minVariantLen {
				add(before)
			}
			removed := strings.TrimSpace(strings.ReplaceAll(base, ellipsis, " "))
			if utf8.RuneCountInString(removed) >= minVariantLen {
				add(removed)
			}
		}

		if last := lastRune(base); strings.ContainsRune(",;:", last) && utf8.RuneCountInString(base) > 11 {
			add(base[:len(base)-1])
		}

		if words := strings.Fields(base); len(words) > 12 {
			add(strings.Join(words[:len(words)-1], " "))
		}
	}

	return variants
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
