package match

// ValidHintIndices converts 1-based page hints to 0-based indices,
// preserving hint order and dropping anything outside [1, numPages].
// The second return value lists the dropped hints; hints are advisory,
// so out-of-range values are reported rather than treated as errors.
func ValidHintIndices(hints []int, numPages int) (valid, dropped []int) {
	for _, hinted := range hints {
		idx := hinted - 1
		if idx >= 0 && idx < numPages {
			valid = append(valid, idx)
			continue
		}
		dropped = append(dropped, hinted)
	}
	return valid, dropped
}

// RemainingPages returns every page index not yet present in checked,
// in document order. Combined with ValidHintIndices this implements the
// two-phase policy: hinted pages first, then an exhaustive scan of
// whatever is left, each page visited at most once per quote.
func RemainingPages(numPages int, checked map[int]bool) []int {
	var remaining []int
	for idx := 0; idx < numPages; idx++ {
		if !checked[idx] {
			remaining = append(remaining, idx)
		}
	}
	return remaining
}
