package mask

import "github.com/vortex-fintech/go-mask/textutil"

// Formatter binds a pattern and its options so callers format values without
// repeating them. The zero Formatter returns values unchanged.
type Formatter struct {
	Pattern Pattern
	// Raw makes Value strip literals and return only accepted runes.
	Raw    bool
	Tokens TokenTable
	// Normalize folds full-width and compatibility runes to their canonical
	// form before masking, so "１２３" fills digit slots.
	Normalize bool
}

// Display returns value formatted with literals, as shown to the user.
func (f Formatter) Display(value string) string {
	return Format(f.prepare(value), f.Pattern, true, f.Tokens)
}

// Value returns value formatted according to Raw.
func (f Formatter) Value(value string) string {
	return Format(f.prepare(value), f.Pattern, !f.Raw, f.Tokens)
}

func (f Formatter) prepare(value string) string {
	if f.Normalize {
		return textutil.FoldInput(value)
	}
	return value
}
