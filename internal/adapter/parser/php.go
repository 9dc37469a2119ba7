package parser

import (
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

var phpSpec = grammar.Spec{
	Class:     []string{"class", "interface", "trait", "enum"},
	Function:  []string{"function", "fn"},
	Modifiers: []string{"public", "private", "protected", "static", "abstract", "final", "readonly"},
	Types: []string{
		"int", "float", "string", "bool", "array", "callable", "iterable", "object",
		"mixed", "void", "never", "null", "self", "false", "true",
	},
	Variables:       []string{"var", "const", "global"},
	CaseInsensitive: true,
}

// PHP recognizes PHP declarations. Keywords ignore case, return types follow
// the parameter list after a colon and $variables declare themselves.
type PHP struct {
	Base
}

func (PHP) ClassifyClass(ctx *Context) bool {
	t := ctx.Token
	if t.Type != lexer.TypeTag || !ctx.Grammar.Is(t.Val, grammar.Class) {
		return false
	}
	ctx.Symbols.Type = domain.KindClass
	ctx.Symbols.Name = LookaheadName(ctx)
	if ctx.Symbols.Name == "" {
		ctx.Symbols.Name = t.Val
	}
	ctx.State.Done = true
	return true
}

func (p PHP) ClassifyFunction(ctx *Context) bool {
	t, sym, st := ctx.Token, ctx.Symbols, ctx.State

	if sym.Type == domain.KindFunction {
		switch {
		case t.Type == lexer.TypeColon && st.Prev != nil && st.Prev.Type == lexer.TypeEndAttributes:
			st.ExpectReturnType = true
			return true
		case t.Type == lexer.TypeTag && st.ExpectReturnType:
			sym.Return.Type = t.Val
			sym.Return.Present = !strings.EqualFold(t.Val, "void") && !strings.EqualFold(t.Val, "never")
			st.ExpectReturnType = false
			st.Done = true
			return true
		}
	}
	return p.Base.ClassifyFunction(ctx)
}

func (p PHP) ClassifyVariable(ctx *Context) bool {
	t, sym, st := ctx.Token, ctx.Symbols, ctx.State
	if t.Type == lexer.TypeTag && strings.HasPrefix(t.Val, "$") && !st.ExpectName && sym.Type == domain.KindUnset {
		sym.Type = domain.KindVariable
		sym.Name = t.Val
		return true
	}
	return p.Base.ClassifyVariable(ctx)
}

// Continue skips the "&" of functions returning by reference and lets a
// ": type" without the trailing space through.
func (p PHP) Continue(ctx *Context, trailing string) (string, bool) {
	s := strings.TrimLeft(trailing, " \t\r\n")
	if strings.HasPrefix(s, "&") {
		s = s[1:]
	}
	if strings.HasPrefix(s, ":") && ctx.Symbols.Type == domain.KindFunction && !ctx.State.ExpectParameter {
		if rt := strings.TrimLeft(s[1:], " \t"); rt != "" {
			ctx.State.ExpectReturnType = true
			return rt, true
		}
	}
	return p.Base.Continue(ctx, s)
}
