package mask

// Slots counts the input runes mask can accept, honoring escapes.
// ok is false when mask ends with an escape that has nothing to escape.
func Slots(mask string, tokens TokenTable) (slots int, ok bool) {
	tokens = tokens.orDefault()
	escaped := false
	for _, r := range mask {
		if escaped {
			escaped = false
			continue
		}
		tok, found := tokens.Lookup(r)
		switch {
		case !found:
		case tok.Kind() == KindEscape:
			escaped = true
		default:
			slots++
		}
	}
	return slots, !escaped
}
