// Package lexer turns a line (or buffer) of source code into a flat token
// sequence without knowing which language it is written in.
package lexer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"docblock/internal/domain"
	"docblock/internal/port"
)

var (
	tagRe   = regexp.MustCompile(`^[\w$<>?\[\]](?:[-:\w$<>?\[\]]*[\w$<>?\[\]])?`)
	codeRe  = regexp.MustCompile(`^(!?=|-)[ \t]*([^\n]+)`)
	textRe  = regexp.MustCompile(`^(?:\| ?| )([^\n]+)`)
	blankRe = regexp.MustCompile(`^[ \t\r\n]+`)
)

// Option configures a Lexer.
type Option func(*Lexer)

// WithValidator sets the predicate used for buffered code and attribute
// values. Without one every expression is accepted.
func WithValidator(v port.ExpressionValidator) Option {
	return func(l *Lexer) {
		l.validator = v
	}
}

// WithRules appends language-specific recognizers after the default ones.
func WithRules(rules ...Rule) Option {
	return func(l *Lexer) {
		l.rules = append(l.rules, rules...)
	}
}

// WithStopAtUnrecognized makes the lexer end the sequence at the first
// unrecognized character instead of failing. The rest is left in
// Remainder.
func WithStopAtUnrecognized() Option {
	return func(l *Lexer) {
		l.stopAtUnrecognized = true
	}
}

// Lexer holds the state of one lexing pass. It is not reusable across
// sources.
type Lexer struct {
	src   string
	input string
	pos   int
	line  int
	col   int

	tokens []Token
	ended  bool
	err    error

	validator          port.ExpressionValidator
	rules              []Rule
	stopAtUnrecognized bool
	consumed           strings.Builder
}

// New creates a lexer for src.
func New(src string, opts ...Option) *Lexer {
	l := &Lexer{
		src:   src,
		input: src,
		line:  1,
		col:   1,
		rules: DefaultRules(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize lexes src in one call.
func Tokenize(src string, opts ...Option) ([]Token, error) {
	return New(src, opts...).Tokens()
}

// Tokens runs the lexer to completion. The sequence always ends with exactly
// one eos token.
func (l *Lexer) Tokens() ([]Token, error) {
	if l.err != nil {
		return nil, l.err
	}
	if !utf8.ValidString(l.src) {
		l.err = domain.NewSyntaxError(domain.InputTypeError, 1, 1, "input is not valid UTF-8 text")
		return nil, l.err
	}
	for !l.ended {
		if err := l.advance(); err != nil {
			l.err = err
			return nil, err
		}
	}
	return l.tokens, nil
}

// Remainder returns the input left unconsumed when the lexer stopped at an
// unrecognized character.
func (l *Lexer) Remainder() string {
	return l.input
}

// Consumed returns every substring consumed so far, in order.
func (l *Lexer) Consumed() string {
	return l.consumed.String()
}

func (l *Lexer) advance() error {
	if l.eos() {
		return nil
	}
	scanners := []func() (bool, error){l.tag, l.code, l.attrs, l.text, l.extension}
	for _, scan := range scanners {
		ok, err := scan()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return l.fail()
}

func (l *Lexer) tok(typ TokenType, val string) Token {
	return Token{Type: typ, Line: l.line, Col: l.col, Offset: l.pos, Val: val}
}

func (l *Lexer) push(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *Lexer) consume(n int) {
	l.consumed.WriteString(l.input[:n])
	l.input = l.input[n:]
	l.pos += n
}

func (l *Lexer) incrementColumn(n int) {
	l.col += n
}

func (l *Lexer) eos() bool {
	if len(l.input) > 0 {
		return false
	}
	l.push(l.tok(TypeEOS, ""))
	l.ended = true
	return true
}

func (l *Lexer) tag() (bool, error) {
	m := tagRe.FindString(l.input)
	if m == "" {
		return false, nil
	}
	l.push(l.tok(TypeTag, m))
	l.consume(len(m))
	l.incrementColumn(utf8.RuneCountInString(m))
	return true, nil
}

func (l *Lexer) code() (bool, error) {
	m := codeRe.FindStringSubmatch(l.input)
	if m == nil {
		return false, nil
	}
	flags, code := m[1], m[2]
	prefix := len(m[0]) - len(code)

	l.incrementColumn(utf8.RuneCountInString(m[0][:prefix]))
	t := Token{
		Type:       TypeCode,
		Line:       l.line,
		Col:        l.col,
		Offset:     l.pos + prefix,
		Val:        code,
		MustEscape: flags[0] == '=',
		Buffer:     flags[0] == '=' || (len(flags) > 1 && flags[1] == '='),
	}
	if t.Buffer {
		if err := l.assertExpression(code, l.line, l.col); err != nil {
			return false, err
		}
	}
	l.push(t)
	l.consume(len(m[0]))
	l.incrementColumn(utf8.RuneCountInString(code))
	return true, nil
}

func (l *Lexer) text() (bool, error) {
	if m := textRe.FindStringSubmatch(l.input); m != nil {
		prefix := len(m[0]) - len(m[1])
		l.incrementColumn(prefix)
		t := l.tok(TypeText, m[1])
		t.Offset = l.pos + prefix
		l.push(t)
		l.consume(len(m[0]))
		l.incrementColumn(utf8.RuneCountInString(m[1]))
		return true, nil
	}

	m := blankRe.FindString(l.input)
	if m == "" {
		return false, nil
	}
	l.push(l.tok(TypeText, ""))
	l.consume(len(m))
	for _, c := range m {
		if c == '\n' {
			l.line++
			l.col = 1
		} else {
			l.incrementColumn(1)
		}
	}
	return true, nil
}

func (l *Lexer) extension() (bool, error) {
	for _, rule := range l.rules {
		m := rule.Pattern.FindStringSubmatch(l.input)
		if m == nil || m[0] == "" {
			continue
		}
		val := m[0]
		if len(m) > 1 {
			val = m[1]
		}
		l.push(l.tok(rule.Type, val))
		l.consume(len(m[0]))
		l.incrementColumn(utf8.RuneCountInString(m[0]))
		return true, nil
	}
	return false, nil
}

func (l *Lexer) fail() error {
	if l.stopAtUnrecognized {
		l.push(l.tok(TypeEOS, ""))
		l.ended = true
		return nil
	}
	return domain.NewSyntaxError(domain.LexError, l.line, l.col, "unexpected text %q", firstRunes(l.input, 5))
}

func (l *Lexer) validExpression(expr string) bool {
	return l.validator == nil || l.validator.Validate(expr) == nil
}

// assertExpression validates expr, which starts at line:col, and maps the
// validator's offset back onto the source.
func (l *Lexer) assertExpression(expr string, line, col int) error {
	if l.validator == nil {
		return nil
	}
	err := l.validator.Validate(expr)
	if err == nil {
		return nil
	}

	offset, reason := 0, err.Error()
	var fault *domain.ExpressionFault
	if errors.As(err, &fault) {
		offset, reason = fault.Offset, fault.Reason
	}
	errLine, errCol := position(expr, offset, line, col)
	return &domain.SyntaxError{
		Kind:    domain.ExpressionSyntaxError,
		Message: fmt.Sprintf("syntax error in %q: %s", expr, reason),
		Line:    errLine,
		Column:  errCol,
		Err:     err,
	}
}

func position(expr string, offset, line, col int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(expr) {
		offset = len(expr)
	}
	prefix := expr[:offset]
	if n := strings.Count(prefix, "\n"); n > 0 {
		last := prefix[strings.LastIndex(prefix, "\n")+1:]
		return line + n, utf8.RuneCountInString(last) + 1
	}
	return line, col + utf8.RuneCountInString(prefix)
}

func firstRunes(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
