package logger

import (
	"go.uber.org/zap"

	"github.com/vortex-fintech/go-mask/mask"
	"github.com/vortex-fintech/go-mask/redact"
)

// Value returns a field that logs v the way redact.Formatted renders it for
// pattern p. Redaction runs when the entry is encoded, so a disabled level
// never pays for it.
func Value(key, v string, p mask.Pattern, tokens mask.TokenTable) zap.Field {
	return zap.Stringer(key, redactedValue{value: v, pattern: p, tokens: tokens})
}

type redactedValue struct {
	value   string
	pattern mask.Pattern
	tokens  mask.TokenTable
}

func (r redactedValue) String() string {
	return redact.Formatted(r.value, r.pattern, r.tokens, -1)
}
