package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docblock/internal/adapter/expr"
	"docblock/internal/adapter/grammar"
	"docblock/internal/domain"
)

func parse(t *testing.T, lang, src string) *domain.Symbols {
	t.Helper()
	p, err := DefaultRegistry().NewParser(lang)
	require.NoError(t, err)
	sym, err := p.Tokenize(src)
	require.NoError(t, err, src)
	return sym
}

func paramNames(sym *domain.Symbols) []string {
	names := make([]string, len(sym.Params))
	for i, p := range sym.Params {
		names[i] = p.Name
	}
	return names
}

func TestTokenize_ClassKeywordIsTerminal(t *testing.T) {
	p := New(Definition{
		Name:    "plain",
		Grammar: grammar.MustNew(grammar.Spec{Class: []string{"struct"}}),
	})

	sym, err := p.Tokenize("struct Foo {")
	require.NoError(t, err)
	assert.Equal(t, domain.KindClass, sym.Type)
	assert.Equal(t, "struct", sym.Name)
	assert.Empty(t, sym.Params)
}

func TestTokenize_FunctionShape(t *testing.T) {
	tests := []struct {
		src    string
		name   string
		params int
	}{
		{"function foo(a, b) {", "foo", 2},
		{"function foo() {", "foo", 0},
		{"function foo(a) {", "foo", 1},
		{"function longName(first, second, third, fourth) {", "longName", 4},
		{"function foo (a, b) {", "foo", 2},
		{"function foo( ) {", "foo", 0},
		{"function foo(a, ) {", "foo", 1},
		{"function foo(a, ,b) {", "foo", 2},
	}

	for _, tt := range tests {
		sym := parse(t, "javascript", tt.src)
		assert.Equal(t, domain.KindFunction, sym.Type, tt.src)
		assert.Equal(t, tt.name, sym.Name, tt.src)
		assert.Len(t, sym.Params, tt.params, tt.src)
		assert.True(t, sym.Return.Present, tt.src)
	}
}

func TestTokenize_ParameterDefaults(t *testing.T) {
	sym := parse(t, "javascript", "function foo(a, b = 1, c != 2) {")
	require.Len(t, sym.Params, 3)

	assert.Equal(t, domain.Param{Name: "a", Val: "", MustEscape: true}, sym.Params[0])
	assert.Equal(t, domain.Param{Name: "b", Val: "1", MustEscape: true}, sym.Params[1])
	assert.Equal(t, domain.Param{Name: "c", Val: "2", MustEscape: false}, sym.Params[2])
}

// multiWordDefaults are parameter lists whose defaults contain spaces.
var multiWordDefaults = []struct {
	src  string
	want []domain.Param
}{
	{"function foo(a = new Foo(), b) {", []domain.Param{
		{Name: "a", Val: "new Foo()", MustEscape: true},
		{Name: "b", MustEscape: true},
	}},
	{"function foo(a = typeof x) {", []domain.Param{{Name: "a", Val: "typeof x", MustEscape: true}}},
	{"function foo(a = cond ? 1 : 2) {", []domain.Param{{Name: "a", Val: "cond ? 1 : 2", MustEscape: true}}},
	{"function foo(a = x instanceof Y) {", []domain.Param{{Name: "a", Val: "x instanceof Y", MustEscape: true}}},
}

func assertMultiWordDefaults(t *testing.T, validator string) {
	t.Helper()
	registry, err := NewRegistry(RegistryOptions{DefaultValidator: validator})
	require.NoError(t, err)

	for _, tt := range multiWordDefaults {
		p, err := registry.NewParser("javascript")
		require.NoError(t, err)
		sym, err := p.Tokenize(tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, domain.KindFunction, sym.Type, tt.src)
		assert.Equal(t, "foo", sym.Name, tt.src)
		assert.Equal(t, tt.want, sym.Params, tt.src)
	}
}

func TestTokenize_MultiWordDefaults(t *testing.T) {
	for _, v := range []string{expr.Balanced, expr.None} {
		t.Run(v, func(t *testing.T) {
			assertMultiWordDefaults(t, v)
		})
	}
}

func TestTokenize_LexErrorPropagates(t *testing.T) {
	p, err := DefaultRegistry().NewParser("javascript")
	require.NoError(t, err)

	_, err = p.Tokenize("function foo(a, b")
	assert.True(t, domain.IsKind(err, domain.BracketError))

	sym := domain.NewSymbols()
	sym.Name = "keep"
	err = p.TokenizeWith("function foo(a ! b) {", sym)
	assert.True(t, domain.IsKind(err, domain.AttributeSyntaxError))
	assert.Equal(t, "keep", sym.Name)
	assert.Equal(t, domain.KindUnset, sym.Type)
	assert.Empty(t, sym.Params)
}

func TestTokenizeWith_ContinuesSymbols(t *testing.T) {
	p, err := DefaultRegistry().NewParser("javascript")
	require.NoError(t, err)

	sym := domain.NewSymbols()
	require.NoError(t, p.TokenizeWith("function", sym))
	assert.Equal(t, domain.KindFunction, sym.Type)

	require.NoError(t, p.TokenizeWith("foo(a) {", sym))
	assert.Equal(t, "foo", sym.Name)
	assert.Equal(t, []string{"a"}, paramNames(sym))
}

func TestTokenize_FreshStatePerCall(t *testing.T) {
	p, err := DefaultRegistry().NewParser("javascript")
	require.NoError(t, err)

	first, err := p.Tokenize("function")
	require.NoError(t, err)
	assert.Equal(t, domain.KindFunction, first.Type)

	// A name expected by the previous call must not leak into this one.
	second, err := p.Tokenize("foo")
	require.NoError(t, err)
	assert.Equal(t, domain.KindUnset, second.Type)
	assert.Equal(t, "", second.Name)
}

func TestTokenize_MaxContinuations(t *testing.T) {
	def, ok := DefaultRegistry().ByName("javascript")
	require.True(t, ok)

	sym, err := New(def, WithMaxContinuations(0)).Tokenize("function foo(a) {")
	require.NoError(t, err)
	assert.Equal(t, domain.KindFunction, sym.Type)
	assert.Equal(t, "", sym.Name)
	assert.Empty(t, sym.Params)

	sym, err = New(def, WithMaxContinuations(1)).Tokenize("function foo(a) {")
	require.NoError(t, err)
	assert.Equal(t, "foo", sym.Name)
}

func TestTokenizeLines(t *testing.T) {
	p, err := DefaultRegistry().NewParser("javascript")
	require.NoError(t, err)

	sym, n, err := p.TokenizeLines([]string{"function foo(a,", "  b) {", "  return a + b;", "}"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "foo", sym.Name)
	assert.Equal(t, []string{"a", "b"}, paramNames(sym))

	sym, n, err = p.TokenizeLines(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, domain.KindUnset, sym.Type)

	_, n, err = p.TokenizeLines([]string{"function foo(a ! b) {"})
	assert.True(t, domain.IsKind(err, domain.AttributeSyntaxError))
	assert.Equal(t, 1, n)
}

func TestTokenizeLines_BufferLimit(t *testing.T) {
	def, ok := DefaultRegistry().ByName("javascript")
	require.True(t, ok)
	p := New(def, WithMaxBufferLines(2))

	_, n, err := p.TokenizeLines([]string{"function foo(a,", "b,", "c) {"})
	assert.True(t, domain.IsKind(err, domain.BracketError))
	assert.Equal(t, 2, n)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "parameter", StageParameter.String())
	assert.Equal(t, "variable", StageVariable.String())
}
