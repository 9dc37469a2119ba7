package parser

import (
	"regexp"
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

var javaSpec = grammar.Spec{
	Class: []string{"class", "interface", "enum", "record"},
	Modifiers: []string{
		"public", "private", "protected", "static", "final", "abstract", "native",
		"synchronized", "transient", "volatile", "strictfp", "default", "sealed", "non-sealed",
	},
	Types:      []string{"void", "boolean", "byte", "char", "short", "int", "long", "float", "double", "var"},
	Identifier: `[\w$<>\[\]?.]`,
}

var annotationRe = regexp.MustCompile(`^@[\w.]+(?:\([^)]*\))?\s*`)

// Java recognizes Java declarations. Generic types split by the lexer at
// their commas are joined back together and void methods return nothing.
type Java struct {
	Base
}

func (Java) ClassifyClass(ctx *Context) bool {
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

func (j Java) ClassifyFunction(ctx *Context) bool {
	if !j.Base.ClassifyFunction(ctx) {
		return false
	}
	if ctx.Token.Type == lexer.TypeStartAttributes && ctx.Symbols.Return.Type == "void" {
		ctx.Symbols.Return.Present = false
	}
	return true
}

func (j Java) AccumulateParameter(ctx *Context) bool {
	t, st := ctx.Token, ctx.State
	if t.Type != lexer.TypeAttribute || t.Val != "" {
		return j.Base.AccumulateParameter(ctx)
	}

	name := t.Name
	if st.Partial != "" {
		name = st.Partial + ", " + name
	}
	if genericDepth(name) > 0 {
		st.Partial = name
		return true
	}
	st.Partial = ""

	joined := *ctx
	joined.Token.Name = name
	return j.Base.AccumulateParameter(&joined)
}

// Continue drops annotations, joins a generic return type the lexer split
// at a comma, and turns "Type name;" into a variable.
func (j Java) Continue(ctx *Context, trailing string) (string, bool) {
	sym, st := ctx.Symbols, ctx.State
	s := strings.TrimLeft(trailing, " \t\r\n")

	for annotationRe.MatchString(s) {
		s = annotationRe.ReplaceAllString(s, "")
	}

	if genericDepth(st.LastIdent) > 0 {
		if end := closeGeneric(s, genericDepth(st.LastIdent)); end > 0 {
			st.LastIdent += s[:end]
			s = strings.TrimLeft(s[end:], " \t")
		}
	}

	if (strings.HasPrefix(s, ";") || strings.HasPrefix(s, "=")) && sym.Type == domain.KindUnset &&
		st.LastIdent != "" && st.PrevIdent != "" {
		sym.Type = domain.KindVariable
		sym.Name = st.LastIdent
		sym.VarType = st.PrevIdent
		return "", false
	}
	return j.Base.Continue(ctx, s)
}

// genericDepth counts the angle brackets s leaves open.
func genericDepth(s string) int {
	return strings.Count(s, "<") - strings.Count(s, ">")
}

// closeGeneric returns the index just past the ">" that closes depth open
// angle brackets, or -1.
func closeGeneric(s string, depth int) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
