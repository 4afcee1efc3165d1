package mask

import "strings"

type scanState uint8

const (
	stateNormal scanState = iota
	stateAfterEscape
)

// Apply formats value with a single mask.
//
// Mask and value are scanned left to right with one cursor each. A token rune
// consumes one value rune: an accepted rune is written (transformed if the
// token says so), a rejected one is dropped. A literal rune is written when
// masked is true and swallows an identical value rune. The escape token makes
// the following mask rune a literal.
//
// When masked is true and the value runs out, the rest of the mask is written
// only if it holds no tokens at all, so "(###)" closes its paren once three
// digits are in but never emits half of a longer suffix.
//
// Empty value or mask yields "".
func Apply(value, mask string, masked bool, tokens TokenTable) string {
	if value == "" || mask == "" {
		return ""
	}
	tokens = tokens.orDefault()

	m := []rune(mask)
	v := []rune(value)

	var b strings.Builder
	b.Grow(len(mask))

	iMask, iValue := 0, 0
	state := stateNormal
	for iMask < len(m) && iValue < len(v) {
		cMask := m[iMask]
		cValue := v[iValue]

		if state == stateNormal {
			tok, ok := tokens.Lookup(cMask)
			switch {
			case ok && tok.Kind() == KindEscape:
				state = stateAfterEscape
				iMask++
				continue
			case ok:
				if tok.Match(cValue) {
					b.WriteRune(tok.Apply(cValue))
					iMask++
				}
				iValue++
				continue
			}
		}

		state = stateNormal
		if masked {
			b.WriteRune(cMask)
		}
		if cValue == cMask {
			iValue++
		}
		iMask++
	}

	if masked && state == stateNormal {
		b.WriteString(trailingLiterals(m[iMask:], tokens))
	}
	return b.String()
}

// trailingLiterals returns rest when it contains no token runes, "" otherwise.
func trailingLiterals(rest []rune, tokens TokenTable) string {
	for _, r := range rest {
		if _, ok := tokens.Lookup(r); ok {
			return ""
		}
	}
	return string(rest)
}
