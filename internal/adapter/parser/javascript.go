package parser

import (
	"regexp"
	"strings"

	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
	"docblock/internal/domain"
)

var javascriptSpec = grammar.Spec{
	Class:     []string{"class"},
	Function:  []string{"function"},
	Modifiers: []string{"async", "static", "get", "set", "export", "default", "public", "private", "protected", "readonly", "abstract", "override"},
	Variables: []string{"var", "let", "const"},
}

var (
	arrowParamsRe = regexp.MustCompile(`^\([^()]*\)\s*=>`)
	arrowIdentRe  = regexp.MustCompile(`^([\w$]+)\s*=>(.*)$`)
)

// JavaScript recognizes function, class and variable declarations and
// follows assignments of function values: "foo = function (a)",
// "key: function (a)", "const f = (a) => a" and
// "Foo.prototype.bar = function (a)".
type JavaScript struct {
	Base
}

func (JavaScript) ClassifyClass(ctx *Context) bool {
	t := ctx.Token
	if t.Type != lexer.TypeTag || !ctx.Grammar.Is(t.Val, grammar.Class) {
		return false
	}
	ctx.Symbols.Type = domain.KindClass
	ctx.Symbols.Name = LookaheadName(ctx)
	if ctx.Symbols.Name == "" {
		ctx.Symbols.Name = ctx.State.LastIdent
	}
	ctx.State.Done = true
	return true
}

// ClassifyFunction never derives a return type: JavaScript declares none.
func (j JavaScript) ClassifyFunction(ctx *Context) bool {
	if !j.Base.ClassifyFunction(ctx) {
		return false
	}
	if ctx.Token.Type == lexer.TypeStartAttributes {
		ctx.Symbols.Return.Type = ""
	}
	return true
}

func (j JavaScript) Continue(ctx *Context, trailing string) (string, bool) {
	s := strings.TrimLeft(trailing, " \t\r\n")

	switch {
	case strings.HasPrefix(s, "=") && !strings.HasPrefix(s, "=="):
		return functionValue(strings.TrimLeft(s[1:], " \t"))
	case strings.HasPrefix(s, ":"):
		return functionValue(strings.TrimLeft(s[1:], " \t"))
	case strings.HasPrefix(s, "."):
		s = s[1:]
	case strings.HasPrefix(s, "*"):
		// function* gen()
		s = strings.TrimLeft(s[1:], " \t")
	}
	return j.Base.Continue(ctx, s)
}

// functionValue accepts the right-hand side of an assignment when it is a
// function expression, an arrow function or another assignment target.
func functionValue(rhs string) (string, bool) {
	body := strings.TrimPrefix(rhs, "async ")
	body = strings.TrimLeft(body, " \t")

	switch {
	case strings.HasPrefix(body, "function"):
		return body, true
	case arrowParamsRe.MatchString(body):
		return body, true
	}
	if m := arrowIdentRe.FindStringSubmatch(body); m != nil {
		return "(" + m[1] + ") =>" + m[2], true
	}
	return "", false
}
