package parser

import (
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

var cSpec = grammar.Spec{
	Class:     []string{"struct", "union", "enum"},
	Modifiers: []string{"static", "extern", "inline", "const", "volatile", "register", "typedef", "restrict", "auto"},
	Types: []string{
		"void", "char", "short", "int", "long", "float", "double", "signed", "unsigned",
		"bool", "_Bool", "size_t", "ssize_t", "ptrdiff_t", "intptr_t", "uintptr_t",
		"int8_t", "int16_t", "int32_t", "int64_t", "uint8_t", "uint16_t", "uint32_t", "uint64_t",
	},
	Identifier: `\w`,
}

// C recognizes C declarations. Struct, union and enum take their name from
// the following word, pointer stars are folded into types and a void return
// or parameter list counts as absent.
type C struct {
	Base
}

func (C) ClassifyClass(ctx *Context) bool {
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

func (c C) ClassifyFunction(ctx *Context) bool {
	if !c.Base.ClassifyFunction(ctx) {
		return false
	}
	if ctx.Token.Type == lexer.TypeStartAttributes && ctx.Symbols.Return.Type == "void" {
		ctx.Symbols.Return.Present = false
	}
	return true
}

func (c C) AccumulateParameter(ctx *Context) bool {
	t, sym := ctx.Token, ctx.Symbols

	switch t.Type {
	case lexer.TypeAttribute:
		name, suffix := splitDeclarator(t.Name)
		if suffix == "" {
			return c.Base.AccumulateParameter(ctx)
		}
		// "char *s" and "int v[]": the stars and brackets belong to the type.
		plain := *ctx
		plain.Token.Name = name
		c.Base.AccumulateParameter(&plain)
		if last := sym.LastParam(); last != nil {
			last.Type += suffix
		}
		return true

	case lexer.TypeEndAttributes:
		if len(sym.Params) == 1 && sym.Params[0].Type == "void" && sym.Params[0].Name == "" {
			sym.Params = sym.Params[:0]
		}
	}
	return c.Base.AccumulateParameter(ctx)
}

// splitDeclarator separates a parameter name from the pointer and array
// markers around it.
func splitDeclarator(decl string) (string, string) {
	name := strings.TrimLeft(decl, "*&")
	stars := decl[:len(decl)-len(name)]
	var arrays string
	if i := strings.IndexByte(name, '['); i > 0 {
		name, arrays = name[:i], name[i:]
	}
	if stars == "" && arrays == "" || name == "" {
		return decl, ""
	}
	return name, stars + arrays
}

// Continue folds leading stars of "int *foo(...)" into the declared type.
func (c C) Continue(ctx *Context, trailing string) (string, bool) {
	s := strings.TrimLeft(trailing, " \t\r\n")
	rest := strings.TrimLeft(s, "*")
	if stars := len(s) - len(rest); stars > 0 {
		if ctx.Symbols.Type == domain.KindVariable {
			ctx.Symbols.VarType += strings.Repeat("*", stars)
		}
		s = strings.TrimLeft(rest, " \t")
	}
	return c.Base.Continue(ctx, s)
}
