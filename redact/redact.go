// Package redact renders formatted values safe for logs: literals stay, and
// every accepted rune except the last few becomes '*'.
package redact

import (
	"unicode/utf8"

	"github.com/vortex-fintech/go-mask/mask"
)

const (
	Placeholder = '*'

	shortCountThreshold = 4
	keepShort           = 1
	keepLong            = 4
)

// KeepLast4Or1 keeps 1 rune of short values (<= 4 accepted runes) and 4 otherwise.
func KeepLast4Or1(accepted int) int {
	if accepted <= shortCountThreshold {
		return keepShort
	}
	return keepLong
}

// Formatted formats value like mask.Format in masked mode and hides accepted
// runes except the last keep. A negative keep applies KeepLast4Or1.
//
//	Formatted("11987654321", mask.Single("(##) #####-####"), nil, -1) -> "(**) *****-4321"
//	Formatted("1234", mask.Single("##-##"), nil, -1)                  -> "**-*4"
func Formatted(value string, p mask.Pattern, tokens mask.TokenTable, keep int) string {
	if p.IsZero() {
		return Plain(value, keep)
	}
	if tokens == nil {
		tokens = mask.DefaultTokens()
	}

	chosen := ""
	if p.IsDynamic() {
		var ok bool
		if chosen, ok = mask.Choose(value, p.Masks(), tokens); !ok {
			return ""
		}
	} else {
		chosen = p.Masks()[0]
	}

	accepted := utf8.RuneCountInString(mask.Apply(value, chosen, false, tokens))
	if keep < 0 {
		keep = KeepLast4Or1(accepted)
	}
	hide := accepted - keep
	if hide <= 0 {
		return mask.Apply(value, chosen, true, tokens)
	}
	return mask.Apply(value, chosen, true, hiding(tokens, hide))
}

// Plain hides all but the last keep runes of an unformatted value.
func Plain(value string, keep int) string {
	runes := []rune(value)
	if keep < 0 {
		keep = KeepLast4Or1(len(runes))
	}
	for i := 0; i < len(runes)-keep; i++ {
		runes[i] = Placeholder
	}
	return string(runes)
}

// hiding wraps every class token so the first n accepted runes of a single
// Apply call come out as Placeholder. The returned table is not reusable.
func hiding(tokens mask.TokenTable, n int) mask.TokenTable {
	seen := 0
	out := make(mask.TokenTable, len(tokens))
	for key, tok := range tokens {
		if tok.Kind() != mask.KindClass {
			out[key] = tok
			continue
		}
		tok := tok
		out[key] = mask.ClassWithTransform(tok.Match, func(r rune) rune {
			seen++
			if seen <= n {
				return Placeholder
			}
			return tok.Apply(r)
		})
	}
	return out
}
