package lexer

import "regexp"

// TokenType is the category of a lexed token.
type TokenType int

const (
	TypeEOS TokenType = iota
	TypeTag
	TypeCode
	TypeAttribute
	TypeText
	TypeColon
	TypeStartAttributes
	TypeEndAttributes
)

func (t TokenType) String() string {
	switch t {
	case TypeEOS:
		return "eos"
	case TypeTag:
		return "tag"
	case TypeCode:
		return "code"
	case TypeAttribute:
		return "attribute"
	case TypeText:
		return "text"
	case TypeColon:
		return "colon"
	case TypeStartAttributes:
		return "start-attributes"
	case TypeEndAttributes:
		return "end-attributes"
	default:
		return "unknown"
	}
}

// MarshalText writes the type by name.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Token is one lexed unit. Offset is the byte offset of the token's value in
// the lexed source. Name is only set on attribute tokens.
type Token struct {
	Type       TokenType `json:"type"`
	Line       int       `json:"line"`
	Col        int       `json:"col"`
	Offset     int       `json:"offset"`
	Val        string    `json:"val,omitempty"`
	Name       string    `json:"name,omitempty"`
	Buffer     bool      `json:"buffer,omitempty"`
	MustEscape bool      `json:"must_escape,omitempty"`
}

// Rule is a language-specific recognizer tried after the built-in ones. The
// token value is the first capture group, or the whole match without one.
type Rule struct {
	Type    TokenType
	Pattern *regexp.Regexp
}

// ColonRule recognizes a statement or block separating colon.
var ColonRule = Rule{Type: TypeColon, Pattern: regexp.MustCompile(`^(:) +`)}

// DefaultRules returns the extension rules every lexer starts with.
func DefaultRules() []Rule {
	return []Rule{ColonRule}
}
