package mask

// Kind tags the behavior of a Token.
type Kind uint8

const (
	// KindLiteral makes the mask rune behave as if it had no table entry.
	KindLiteral Kind = iota
	// KindClass consumes one input rune accepted by the token's matcher.
	KindClass
	// KindEscape turns the next mask rune into a literal.
	KindEscape
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindClass:
		return "class"
	case KindEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Token is the rule bound to a single mask rune.
// The zero value is a literal token.
type Token struct {
	kind      Kind
	match     func(rune) bool
	transform func(rune) rune
}

func Literal() Token { return Token{kind: KindLiteral} }

func Escape() Token { return Token{kind: KindEscape} }

// Class accepts one input rune when match reports true and emits it as is.
// A nil match accepts nothing.
func Class(match func(rune) bool) Token {
	return Token{kind: KindClass, match: match}
}

// ClassWithTransform is Class whose accepted runes pass through transform
// before they are written to the output.
func ClassWithTransform(match func(rune) bool, transform func(rune) rune) Token {
	return Token{kind: KindClass, match: match, transform: transform}
}

func (t Token) Kind() Kind { return t.kind }

// Match reports whether r belongs to the token's class. Only class tokens match.
func (t Token) Match(r rune) bool {
	return t.kind == KindClass && t.match != nil && t.match(r)
}

// Apply returns r after the token's transform, if any.
func (t Token) Apply(r rune) rune {
	if t.transform == nil {
		return r
	}
	return t.transform(r)
}

// TokenTable maps mask runes to their tokens. A nil table means DefaultTokens.
type TokenTable map[rune]Token

// Lookup returns the token bound to r. Literal entries are reported as absent.
func (t TokenTable) Lookup(r rune) (Token, bool) {
	tok, ok := t[r]
	if !ok || tok.kind == KindLiteral {
		return Token{}, false
	}
	return tok, true
}

// With returns a copy of t with key bound to tok.
func (t TokenTable) With(key rune, tok Token) TokenTable {
	out := make(TokenTable, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	out[key] = tok
	return out
}

func (t TokenTable) orDefault() TokenTable {
	if t == nil {
		return defaultTokens
	}
	return t
}

const (
	TokenDigit        = '#'
	TokenAlphanumeric = 'X'
	TokenLetter       = 'S'
	TokenUpper        = 'A'
	TokenLower        = 'a'
	TokenEscape       = '!'
)

var defaultTokens = TokenTable{
	TokenDigit:        Class(isDigit),
	TokenAlphanumeric: Class(isAlphanumeric),
	TokenLetter:       Class(isLetter),
	TokenUpper:        ClassWithTransform(isLetter, toUpper),
	TokenLower:        ClassWithTransform(isLetter, toLower),
	TokenEscape:       Escape(),
}

// DefaultTokens returns a fresh copy of the default table:
//
//	#  digit
//	X  letter or digit
//	S  letter
//	A  letter, upper-cased
//	a  letter, lower-cased
//	!  escape
//
// Letters and digits are ASCII only.
func DefaultTokens() TokenTable {
	out := make(TokenTable, len(defaultTokens))
	for k, v := range defaultTokens {
		out[k] = v
	}
	return out
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isAlphanumeric(r rune) bool { return isDigit(r) || isLetter(r) }

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r - 'A' + 'a'
	}
	return r
}
