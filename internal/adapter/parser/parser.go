// Package parser classifies the declaration found in a line of source code.
// A Parser lexes the line with the generic lexer and feeds the tokens
// through a language's Recognizer, which fills a domain.Symbols.
package parser

import (
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
	"docblock/internal/port"
)

const (
	DefaultMaxContinuations = 16
	DefaultMaxBufferLines   = 20
)

// Definition is a compiled language: everything a Parser needs to classify
// declarations of that language.
type Definition struct {
	Name       string
	Extensions []string
	Grammar    *grammar.Grammar
	Recognizer Recognizer
	Rules      []lexer.Rule
	Validator  port.ExpressionValidator
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxContinuations bounds how many times trailing text is re-lexed
// within one Tokenize call.
func WithMaxContinuations(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.maxContinuations = n
		}
	}
}

// WithMaxBufferLines bounds how many lines TokenizeLines joins while the
// parameter list stays open.
func WithMaxBufferLines(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBufferLines = n
		}
	}
}

// Parser classifies declarations of one language. A Parser keeps no state
// between calls, but it is meant to be used from one goroutine at a time.
type Parser struct {
	lang             Definition
	maxContinuations int
	maxBufferLines   int
}

var _ port.DeclarationParser = (*Parser)(nil)

// New creates a parser for lang.
func New(lang Definition, opts ...Option) *Parser {
	if lang.Recognizer == nil {
		lang.Recognizer = Base{}
	}
	p := &Parser{
		lang:             lang,
		maxContinuations: DefaultMaxContinuations,
		maxBufferLines:   DefaultMaxBufferLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns the definition the parser was built from.
func (p *Parser) Language() Definition {
	return p.lang
}

// Tokenize classifies the declaration in src into fresh Symbols.
func (p *Parser) Tokenize(src string) (*domain.Symbols, error) {
	sym := domain.NewSymbols()
	if err := p.TokenizeWith(src, sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// TokenizeWith continues filling sym from src. On error sym is left as it
// was.
func (p *Parser) TokenizeWith(src string, sym *domain.Symbols) error {
	work := sym.Clone()
	st := &State{}

	text := src
	for pass := 0; ; pass++ {
		trailing, ctx, err := p.pass(text, work, st)
		if err != nil {
			return err
		}
		if st.Done || trailing == "" || pass >= p.maxContinuations {
			break
		}
		next, ok := p.lang.Recognizer.Continue(ctx, trailing)
		if !ok || strings.TrimSpace(next) == "" {
			break
		}
		text = next
	}

	*sym = *work
	return nil
}

// pass lexes text and dispatches its tokens. It returns the text left for a
// continuation, if any, and the context of the last token seen.
func (p *Parser) pass(text string, sym *domain.Symbols, st *State) (string, *Context, error) {
	lx := lexer.New(text,
		lexer.WithValidator(p.lang.Validator),
		lexer.WithRules(p.lang.Rules...),
		lexer.WithStopAtUnrecognized(),
	)
	tokens, err := lx.Tokens()
	if err != nil {
		return "", nil, err
	}

	ctx := &Context{
		Src:     text,
		Grammar: p.lang.Grammar,
		State:   st,
		Symbols: sym,
	}
	for i, tok := range tokens {
		ctx.Token = tok
		ctx.Next = nil
		if i+1 < len(tokens) {
			ctx.Next = &tokens[i+1]
		}

		switch tok.Type {
		case lexer.TypeEOS:
			return lx.Remainder(), ctx, nil
		case lexer.TypeText:
			if tok.Val == "" {
				continue
			}
			return text[tok.Offset:], ctx, nil
		}

		p.dispatch(ctx)
		st.setPrev(tok)
		if st.Done {
			return "", ctx, nil
		}
	}
	return "", ctx, nil
}

func (p *Parser) dispatch(ctx *Context) {
	stages := classifyOrder
	if ctx.Symbols.Type == domain.KindFunction && ctx.State.ExpectParameter {
		stages = []Stage{StageParameter}
	}
	for _, stage := range stages {
		if p.run(stage, ctx) {
			return
		}
	}
}

func (p *Parser) run(stage Stage, ctx *Context) bool {
	r := p.lang.Recognizer
	switch stage {
	case StageParameter:
		return r.AccumulateParameter(ctx)
	case StageClass:
		return r.ClassifyClass(ctx)
	case StageFunction:
		return r.ClassifyFunction(ctx)
	case StageVariable:
		return r.ClassifyVariable(ctx)
	}
	return false
}

// TokenizeLines parses lines as one growing buffer: while the parameter
// list is still open another line is joined, up to the buffer limit. It
// returns the symbols and the number of lines used.
func (p *Parser) TokenizeLines(lines []string) (*domain.Symbols, int, error) {
	if len(lines) == 0 {
		return domain.NewSymbols(), 0, nil
	}
	limit := min(len(lines), p.maxBufferLines)

	var lastErr error
	for n := 1; n <= limit; n++ {
		sym, err := p.Tokenize(strings.Join(lines[:n], "\n"))
		if err == nil {
			return sym, n, nil
		}
		if !domain.IsKind(err, domain.BracketError) {
			return nil, n, err
		}
		lastErr = err
	}
	return nil, limit, lastErr
}
