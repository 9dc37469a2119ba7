package parser

import (
	"regexp"
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

var scssSpec = grammar.Spec{
	Function:   []string{"@function", "@mixin"},
	Identifier: `[\w$-]`,
}

// scssRules lexes at-rules such as "@function" as tags.
var scssRules = []lexer.Rule{
	{Type: lexer.TypeTag, Pattern: regexp.MustCompile(`^@[\w-]+`)},
}

// SCSS recognizes @function and @mixin declarations and $variables. Mixins
// return nothing. Default parameter values are written "$name: value".
type SCSS struct {
	Base
}

func (s SCSS) ClassifyFunction(ctx *Context) bool {
	if !s.Base.ClassifyFunction(ctx) {
		return false
	}
	if ctx.Token.Val == "@mixin" {
		ctx.Symbols.Return.Present = false
	}
	return true
}

func (s SCSS) ClassifyVariable(ctx *Context) bool {
	t, sym := ctx.Token, ctx.Symbols
	if t.Type == lexer.TypeTag && strings.HasPrefix(t.Val, "$") && sym.Type == domain.KindUnset {
		name, _, inline := strings.Cut(t.Val, ":")
		if inline || (ctx.Next != nil && ctx.Next.Type == lexer.TypeColon) {
			sym.Type = domain.KindVariable
			sym.Name = name
			ctx.State.Done = true
			return true
		}
	}
	return s.Base.ClassifyVariable(ctx)
}

func (s SCSS) AccumulateParameter(ctx *Context) bool {
	t, sym, st := ctx.Token, ctx.Symbols, ctx.State
	if t.Type != lexer.TypeAttribute {
		return s.Base.AccumulateParameter(ctx)
	}

	switch {
	case st.ExpectValue:
		last := sym.LastParam()
		last.Val = joinWords(last.Val, attributeText(t))
		st.ExpectValue = SameEntry(ctx)
		return true

	case strings.HasSuffix(t.Name, ":") && t.Val == "":
		sym.AddParam(domain.Param{Name: strings.TrimSuffix(t.Name, ":"), MustEscape: t.MustEscape})
		st.ExpectValue = SameEntry(ctx)
		return true

	case strings.Contains(t.Name, ":") && t.Val == "":
		// "$a:10px" with no space.
		name, val, _ := strings.Cut(t.Name, ":")
		sym.AddParam(domain.Param{Name: name, Val: val, MustEscape: t.MustEscape})
		st.ExpectValue = SameEntry(ctx)
		return true
	}

	sym.AddParam(domain.Param{Name: t.Name, Val: t.Val, MustEscape: t.MustEscape})
	return true
}

// attributeText rebuilds the source text of an attribute token.
func attributeText(t lexer.Token) string {
	if t.Val == "" {
		return t.Name
	}
	return t.Name + " = " + t.Val
}
