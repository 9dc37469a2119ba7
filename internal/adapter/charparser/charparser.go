// Package charparser tracks bracket nesting and string literals one
// character at a time. It is the scanner the lexer uses to find the end of a
// parenthesized attribute list and to decide whether an attribute value is
// still open.
package charparser

import "fmt"

// State is the scanner state after a sequence of characters.
type State struct {
	stack   []byte
	quote   byte
	escaped bool
}

// DefaultState returns the state before any character was seen.
func DefaultState() *State {
	return &State{}
}

// IsNesting reports whether there are unclosed brackets.
func (s *State) IsNesting() bool {
	return len(s.stack) > 0
}

// IsString reports whether the scanner is inside a string literal.
func (s *State) IsString() bool {
	return s.quote != 0
}

// Depth returns the number of unclosed brackets.
func (s *State) Depth() int {
	return len(s.stack)
}

// ParseChar advances the state by one character. A closing bracket that
// does not match the innermost open bracket is returned as an error.
func (s *State) ParseChar(c byte) error {
	if s.quote != 0 {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\':
			s.escaped = true
		case c == s.quote:
			s.quote = 0
		}
		return nil
	}

	switch c {
	case '\'', '"', '`':
		s.quote = c
	case '(', '[', '{':
		s.stack = append(s.stack, c)
	case ')', ']', '}':
		if len(s.stack) == 0 {
			return fmt.Errorf("mismatched bracket: unexpected %q", c)
		}
		top := s.stack[len(s.stack)-1]
		if Closing(top) != c {
			return fmt.Errorf("mismatched bracket: expected %q but found %q", Closing(top), c)
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
	return nil
}

// Parse runs src through a fresh state.
func Parse(src string) (*State, error) {
	st := DefaultState()
	for i := 0; i < len(src); i++ {
		if err := st.ParseChar(src[i]); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Closing returns the bracket that closes open, or 0.
func Closing(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

// Range is a half-open byte range inside the scanned source.
type Range struct {
	Start int
	End   int
	Src   string
}

// ParseMax scans src from start until the first closing bracket that is not
// matched inside the scanned region. End is the index of that bracket.
func ParseMax(src string, start int) (Range, error) {
	st := DefaultState()
	for i := start; i < len(src); i++ {
		c := src[i]
		if !st.IsString() && !st.IsNesting() && (c == ')' || c == ']' || c == '}') {
			return Range{Start: start, End: i, Src: src[start:i]}, nil
		}
		if err := st.ParseChar(c); err != nil {
			return Range{}, err
		}
	}
	return Range{}, fmt.Errorf("the end of the string was reached with no closing bracket found")
}

// IsPunctuator reports whether c can continue an expression, so that
// whitespace before it does not terminate a value.
func IsPunctuator(c byte) bool {
	switch c {
	case '.', '(', ')', ';', ',', '{', '}', '[', ']', ':', '?', '~', '%',
		'&', '*', '+', '-', '/', '<', '>', '^', '|', '!', '=':
		return true
	}
	return false
}
