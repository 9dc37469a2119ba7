package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"docblock/internal/adapter/charparser"
	"docblock/internal/domain"
)

type attrLoc int

const (
	locKey attrLoc = iota
	locKeyChar
	locValue
)

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func isQuote(c rune) bool {
	return c == '"' || c == '\''
}

// attrs lexes a parenthesized attribute list into start-attributes, one
// attribute token per entry and end-attributes.
func (l *Lexer) attrs() (bool, error) {
	if !strings.HasPrefix(l.input, "(") {
		return false, nil
	}
	startLine := l.line
	l.push(l.tok(TypeStartAttributes, "("))

	r, err := charparser.ParseMax(l.input, 1)
	if err != nil {
		return false, &domain.SyntaxError{
			Kind:    domain.BracketError,
			Message: "unterminated attribute list",
			Line:    l.line,
			Column:  l.col,
			Err:     err,
		}
	}
	if l.input[r.End] != ')' {
		return false, domain.NewSyntaxError(domain.BracketError, l.line, l.col,
			"the opening bracket was not closed by a matching \")\", found %q", l.input[r.End])
	}
	str := r.Src

	l.incrementColumn(1)
	if st, err := charparser.Parse(str); err != nil || st.IsNesting() || st.IsString() {
		return false, domain.NewSyntaxError(domain.NestingError, l.line, l.col,
			"nesting must match in expression %q", str)
	}

	base := l.pos + 1
	l.consume(r.End + 1)

	a := &attrScanner{
		l:       l,
		runes:   []rune(str),
		line:    startLine,
		escaped: true,
		state:   charparser.DefaultState(),
		offset:  base,
	}
	if err := a.run(); err != nil {
		return false, err
	}

	l.line = startLine + strings.Count(str, "\n")
	end := l.tok(TypeEndAttributes, ")")
	end.Offset = base + len(str)
	l.push(end)
	l.incrementColumn(1)
	return true, nil
}

// attrScanner is the key / key-char / value machine for one attribute list.
type attrScanner struct {
	l     *Lexer
	runes []rune

	key     strings.Builder
	val     strings.Builder
	loc     attrLoc
	quote   rune
	escaped bool
	state   *charparser.State

	line       int
	offset     int
	attrLine   int
	attrCol    int
	attrOffset int
	valLine    int
	valCol     int
}

func (a *attrScanner) keyBlank() bool {
	return strings.TrimSpace(a.key.String()) == ""
}

func (a *attrScanner) run() error {
	l := a.l
	n := len(a.runes)

	for i := 0; i <= n; i++ {
		if a.keyBlank() {
			a.attrLine, a.attrCol, a.attrOffset = a.line, l.col, a.offset
		}

		if a.isEnd(i) {
			if err := a.emit(); err != nil {
				return err
			}
		} else if i < n {
			c := a.runes[i]
			switch a.loc {
			case locKeyChar:
				if c == a.quote {
					a.loc = locKey
					if i+1 < n && !strings.ContainsRune(" ,!=\n\t", a.runes[i+1]) {
						return domain.NewSyntaxError(domain.AttributeSyntaxError, a.line, l.col+1,
							"unexpected character %q, expected ` `, `\\n`, `\\t`, `,`, `!` or `=`", a.runes[i+1])
					}
				}
				a.key.WriteRune(c)
			case locKey:
				switch {
				case a.keyBlank() && c == ',':
				case a.keyBlank() && isQuote(c):
					a.loc = locKeyChar
					a.quote = c
					a.key.WriteRune(c)
				case c == '!' || c == '=':
					a.escaped = c != '!'
					if c == '!' {
						i++
						l.incrementColumn(1)
						a.offset++
					}
					if i >= n || a.runes[i] != '=' {
						found := "end of input"
						if i < n {
							found = string(a.runes[i])
						}
						return domain.NewSyntaxError(domain.AttributeSyntaxError, a.line, l.col,
							"unexpected character %q, expected `=`", found)
					}
					a.loc = locValue
					a.valLine, a.valCol = a.line, l.col+1
					a.state = charparser.DefaultState()
				default:
					a.key.WriteRune(c)
				}
			case locValue:
				b := byte('a')
				if c < utf8.RuneSelf {
					b = byte(c)
				}
				if err := a.state.ParseChar(b); err != nil {
					return &domain.SyntaxError{
						Kind:    domain.NestingError,
						Message: "unbalanced attribute value",
						Line:    a.line,
						Column:  l.col,
						Err:     err,
					}
				}
				a.val.WriteRune(c)
			}
		}

		if i < n {
			if a.runes[i] == '\n' {
				a.line++
				l.col = 1
				if a.keyBlank() {
					l.line = a.line
				}
			} else {
				l.incrementColumn(1)
			}
			a.offset += utf8.RuneLen(a.runes[i])
		}
	}
	return nil
}

// isEnd reports whether the attribute being built ends at index i.
func (a *attrScanner) isEnd(i int) bool {
	if a.keyBlank() {
		return false
	}
	n := len(a.runes)
	if i == n {
		return true
	}
	c := a.runes[i]

	switch a.loc {
	case locKey:
		if isWhitespace(c) {
			for x := i; x < n; x++ {
				if next := a.runes[x]; !isWhitespace(next) {
					return next != '=' && next != '!' && next != ','
				}
			}
		}
		return c == ','
	case locValue:
		if a.state.IsNesting() || a.state.IsString() {
			return false
		}
		if strings.TrimSpace(a.val.String()) == "" {
			return false
		}
		if isWhitespace(c) {
			for x := i; x < n; x++ {
				next := a.runes[x]
				if isWhitespace(next) {
					continue
				}
				if next < utf8.RuneSelf && charparser.IsPunctuator(byte(next)) {
					return false
				}
				if a.valueOpen() || wordOperators[a.wordAt(x)] {
					return false
				}
				return a.l.validExpression(a.val.String())
			}
		}
		return c == ',' && a.l.validExpression(a.val.String())
	}
	return false
}

// wordOperators are operators spelled as words. A value next to one of
// them is not finished.
var wordOperators = map[string]bool{
	"new":        true,
	"typeof":     true,
	"void":       true,
	"delete":     true,
	"await":      true,
	"instanceof": true,
	"in":         true,
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$'
}

// wordAt returns the run of identifier characters starting at index x.
func (a *attrScanner) wordAt(x int) string {
	end := x
	for end < len(a.runes) && isWordRune(a.runes[end]) {
		end++
	}
	return string(a.runes[x:end])
}

// valueOpen reports whether the value so far ends in an operator, so that
// whatever follows the whitespace belongs to it.
func (a *attrScanner) valueOpen() bool {
	val := []rune(strings.TrimSpace(a.val.String()))
	if len(val) == 0 {
		return true
	}
	last := val[len(val)-1]
	if last < utf8.RuneSelf && charparser.IsPunctuator(byte(last)) {
		return last != ')' && last != ']' && last != '}'
	}
	start := len(val)
	for start > 0 && isWordRune(val[start-1]) {
		start--
	}
	return wordOperators[string(val[start:])]
}

func (a *attrScanner) emit() error {
	l := a.l
	raw := a.val.String()
	val := strings.TrimSpace(raw)
	if val != "" {
		if err := l.assertExpression(raw, a.valLine, a.valCol); err != nil {
			return err
		}
	}

	l.push(Token{
		Type:       TypeAttribute,
		Line:       a.attrLine,
		Col:        a.attrCol,
		Offset:     a.attrOffset,
		Name:       stripQuotes(strings.TrimSpace(a.key.String())),
		Val:        val,
		MustEscape: a.escaped,
	})

	a.key.Reset()
	a.val.Reset()
	a.loc = locKey
	a.escaped = true
	l.line = a.line
	return nil
}

// stripQuotes removes one leading and one trailing quote character.
func stripQuotes(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}
