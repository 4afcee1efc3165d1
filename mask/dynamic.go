package mask

import (
	"sort"
	"unicode/utf8"
)

// Select formats value with the best fitting mask of a set, see Choose.
// An empty set yields "".
func Select(value string, masks []string, masked bool, tokens TokenTable) string {
	chosen, ok := Choose(value, masks, tokens)
	if !ok {
		return ""
	}
	return Apply(value, chosen, masked, tokens)
}

// Choose picks the mask Select would apply to value.
//
// Masks are ordered by rune length; equal lengths keep the caller's order.
// Starting from the shortest, the next longer mask is tried in masked mode and
// taken when its output outgrows the current mask, i.e. when the value has
// more accepted runes than the current mask can hold.
//
// ok is false for an empty set. The masks slice is never modified.
func Choose(value string, masks []string, tokens TokenTable) (chosen string, ok bool) {
	if len(masks) == 0 {
		return "", false
	}
	tokens = tokens.orDefault()

	sorted := append([]string(nil), masks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) < utf8.RuneCountInString(sorted[j])
	})

	current := sorted[0]
	for _, next := range sorted[1:] {
		trial := Apply(value, next, true, tokens)
		if utf8.RuneCountInString(trial) <= utf8.RuneCountInString(current) {
			break
		}
		current = next
	}
	return current, true
}
