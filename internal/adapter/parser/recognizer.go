package parser

import (
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

// Stage is one of the recognition procedures a token can be routed to.
type Stage int

const (
	StageParameter Stage = iota
	StageClass
	StageFunction
	StageVariable
)

func (s Stage) String() string {
	switch s {
	case StageParameter:
		return "parameter"
	case StageClass:
		return "class"
	case StageFunction:
		return "function"
	case StageVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// classifyOrder is the order tokens outside a parameter list are offered in.
var classifyOrder = []Stage{StageClass, StageFunction, StageVariable}

// Context is what a recognizer sees for one token.
type Context struct {
	Token lexer.Token
	// Next is the following token of the same pass, or nil.
	Next *lexer.Token
	// Src is the text lexed by the current pass. Token offsets index into it.
	Src string

	Grammar *grammar.Grammar
	State   *State
	Symbols *domain.Symbols
}

// Recognizer is the per-language part of the parser. Each Classify method
// reports whether it accepted the token. Continue decides whether trailing
// text the lexer did not turn into tokens is parsed as a further pass, and
// returns the text to lex.
type Recognizer interface {
	ClassifyClass(ctx *Context) bool
	ClassifyFunction(ctx *Context) bool
	ClassifyVariable(ctx *Context) bool
	AccumulateParameter(ctx *Context) bool
	Continue(ctx *Context, trailing string) (string, bool)
}

// controlWords look like calls but never name a declaration.
var controlWords = map[string]bool{
	"if": true, "else": true, "elseif": true, "for": true, "foreach": true, "while": true,
	"do": true, "switch": true, "case": true, "catch": true, "return": true, "throw": true,
	"new": true, "typeof": true, "sizeof": true, "delete": true, "await": true, "yield": true,
	"echo": true, "print": true, "instanceof": true, "in": true, "of": true,
}

// Base implements the recognition rules shared by every language. Languages
// embed it and override the methods whose rules differ.
type Base struct{}

var _ Recognizer = Base{}

// IsName reports whether v can name a declaration: an identifier that is
// neither a keyword nor a control word.
func IsName(g *grammar.Grammar, v string) bool {
	return g.Is(v, grammar.Identifier) && !g.IsKeyword(v) && !controlWords[v]
}

// FollowsName reports whether the previous token is something an opening
// parenthesis turns into a function: a plain identifier or a function
// keyword.
func FollowsName(ctx *Context) bool {
	prev := ctx.State.Prev
	if prev == nil || prev.Type != lexer.TypeTag {
		return false
	}
	return ctx.Grammar.Is(prev.Val, grammar.Function) || IsName(ctx.Grammar, prev.Val)
}

// SameEntry reports whether the current bare attribute and the next one were
// separated by whitespace only, as in the "int a" of "(int a, char b)".
func SameEntry(ctx *Context) bool {
	t, next := ctx.Token, ctx.Next
	if t.Type != lexer.TypeAttribute || t.Val != "" {
		return false
	}
	if next == nil || next.Type != lexer.TypeAttribute {
		return false
	}
	if next.Offset <= t.Offset || next.Offset > len(ctx.Src) {
		return false
	}
	return !strings.Contains(ctx.Src[t.Offset:next.Offset], ",")
}

// LookaheadName returns the identifier the next token starts with.
func LookaheadName(ctx *Context) string {
	next := ctx.Next
	if next == nil {
		return ""
	}
	switch next.Type {
	case lexer.TypeTag:
		if IsName(ctx.Grammar, next.Val) {
			return next.Val
		}
	case lexer.TypeText:
		if name := ctx.Grammar.LeadingIdentifier(next.Val); IsName(ctx.Grammar, name) {
			return name
		}
	}
	return ""
}

func (Base) ClassifyClass(ctx *Context) bool {
	t := ctx.Token
	if t.Type != lexer.TypeTag || !ctx.Grammar.Is(t.Val, grammar.Class) {
		return false
	}
	ctx.Symbols.Type = domain.KindClass
	ctx.Symbols.Name = t.Val
	ctx.State.Done = true
	return true
}

func (Base) ClassifyFunction(ctx *Context) bool {
	t, sym, st := ctx.Token, ctx.Symbols, ctx.State

	switch t.Type {
	case lexer.TypeTag:
		if !ctx.Grammar.Is(t.Val, grammar.Function) {
			return false
		}
		sym.Type = domain.KindFunction
		sym.Return.Present = true
		sym.VarType = ""
		st.ExpectName = sym.Name == ""
		return true

	case lexer.TypeStartAttributes:
		if !FollowsName(ctx) {
			return false
		}
		StartParameters(ctx)
		return true
	}
	return false
}

// StartParameters turns the symbols into a function whose parameter list
// starts at the current token.
func StartParameters(ctx *Context) {
	sym, st := ctx.Symbols, ctx.State

	if sym.Name == "" {
		sym.Name = st.LastIdent
	}
	// Without a function keyword the return type precedes the name.
	if sym.Type != domain.KindFunction {
		sym.Type = domain.KindFunction
		sym.Return.Present = true
		if sym.Return.Type == "" {
			sym.Return.Type = sym.VarType
			if sym.Return.Type == "" && st.PrevIdent != sym.Name {
				sym.Return.Type = st.PrevIdent
			}
		}
	}
	sym.VarType = ""
	st.ExpectName = false
	st.ExpectParameter = true
}

func (Base) ClassifyVariable(ctx *Context) bool {
	t, g, sym, st := ctx.Token, ctx.Grammar, ctx.Symbols, ctx.State
	if t.Type != lexer.TypeTag {
		return false
	}

	switch {
	case g.Is(t.Val, grammar.Variables):
		if sym.Type == domain.KindUnset {
			sym.Type = domain.KindVariable
		}
		st.ExpectName = sym.Name == ""
		return true

	case g.Is(t.Val, grammar.Types):
		switch {
		case sym.Type == domain.KindUnset:
			sym.Type = domain.KindVariable
			sym.VarType = t.Val
			st.ExpectName = true
		case sym.Type == domain.KindVariable && sym.Name == "":
			sym.VarType = joinWords(sym.VarType, t.Val)
			st.ExpectName = true
		}
		return true

	case g.Is(t.Val, grammar.Modifiers):
		return true

	case IsName(g, t.Val):
		if st.ExpectName {
			sym.Name = t.Val
			st.ExpectName = false
		}
		st.Remember(t.Val)
		return true
	}
	return false
}

func (Base) AccumulateParameter(ctx *Context) bool {
	t, g, sym, st := ctx.Token, ctx.Grammar, ctx.Symbols, ctx.State

	switch t.Type {
	case lexer.TypeStartAttributes:
		return true

	case lexer.TypeEndAttributes:
		st.ExpectParameter = false
		st.ExpectParameterType = false
		st.ExpectValue = false
		return true

	case lexer.TypeAttribute:
		bare := t.Val == ""
		typeWord := bare && (g.Is(t.Name, grammar.Types) || g.Is(t.Name, grammar.Modifiers) || SameEntry(ctx))

		switch {
		case typeWord:
			if st.ExpectParameterType {
				last := sym.LastParam()
				last.Type = joinWords(last.Type, t.Name)
			} else {
				sym.AddParam(domain.Param{Type: t.Name, MustEscape: t.MustEscape})
			}
			// A type followed by a comma is an unnamed parameter.
			st.ExpectParameterType = SameEntry(ctx)
		case st.ExpectParameterType:
			last := sym.LastParam()
			last.Name = t.Name
			last.Val = t.Val
			last.MustEscape = t.MustEscape
			st.ExpectParameterType = false
		default:
			sym.AddParam(domain.Param{Name: t.Name, Val: t.Val, MustEscape: t.MustEscape})
		}
		return true
	}
	return false
}

// Continue accepts trailing text that starts an identifier, or a parameter
// list right after a name.
func (Base) Continue(ctx *Context, trailing string) (string, bool) {
	s := strings.TrimLeft(trailing, " \t\r\n")
	if s == "" {
		return "", false
	}
	if ctx.Grammar.StartsIdentifier(s) {
		return s, true
	}
	if s[0] == '(' && FollowsName(ctx) {
		return s, true
	}
	return "", false
}

func joinWords(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
