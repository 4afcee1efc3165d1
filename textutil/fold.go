package textutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidText is wrapped by every CheckInput failure.
var ErrInvalidText = errors.New("invalid text")

var (
	ErrInvalidUTF8 = fmt.Errorf("%w: not valid utf-8", ErrInvalidText)
	ErrEmpty       = fmt.Errorf("%w: empty", ErrInvalidText)
	ErrTooLong     = fmt.Errorf("%w: too long", ErrInvalidText)
)

// FoldInput prepares raw user input for masking: NFKC maps full-width and
// compatibility forms to their canonical runes. Invalid UTF-8, control and
// format (Cf) runes are dropped. Spaces are kept because masks may carry
// space literals.
func FoldInput(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(strings.ToValidUTF8(s, ""))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || unicode.In(r, unicode.Cf) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InputPolicy bounds values accepted from untrusted callers.
type InputPolicy struct {
	MaxRunes   int
	AllowEmpty bool
}

// CheckInput rejects values that are invalid UTF-8, empty when not allowed,
// or longer than MaxRunes. A non-positive MaxRunes disables the length limit.
// The returned error is ErrInvalidUTF8, ErrEmpty or ErrTooLong.
func CheckInput(s string, p InputPolicy) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	if s == "" && !p.AllowEmpty {
		return ErrEmpty
	}
	if p.MaxRunes > 0 {
		const bytesPerRuneCap = 4
		if len(s) > p.MaxRunes*bytesPerRuneCap || utf8.RuneCountInString(s) > p.MaxRunes {
			return ErrTooLong
		}
	}
	return nil
}
