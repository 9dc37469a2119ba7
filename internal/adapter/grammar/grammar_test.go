package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testSpec() Spec {
	return Spec{
		Class:     []string{"class"},
		Function:  []string{"function"},
		Modifiers: []string{"static", "async"},
		Types:     []string{"int", "void"},
		Variables: []string{"let", "const"},
	}
}

func TestGrammar_Is(t *testing.T) {
	g, err := New(testSpec())
	require.NoError(t, err)

	tests := []struct {
		value string
		cat   Category
		want  bool
	}{
		{"class", Class, true},
		{"Class", Class, false},
		{"function", Function, true},
		{"static", Modifiers, true},
		{"int", Types, true},
		{"let", Variables, true},
		{"let", Types, false},
		{"foo", Identifier, true},
		{"$foo_1", Identifier, true},
		{"foo-bar", Identifier, false},
		{"", Identifier, false},
		{"foo", Category(42), false},
		{"foo", Category(-1), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Is(tt.value, tt.cat), "%q in %s", tt.value, tt.cat)
	}
}

func TestGrammar_CaseInsensitive(t *testing.T) {
	spec := testSpec()
	spec.CaseInsensitive = true
	g := MustNew(spec)

	assert.True(t, g.Is("FUNCTION", Function))
	assert.True(t, g.Is("Class", Class))
	assert.False(t, g.Is("klass", Class))
}

func TestGrammar_StartsIdentifier(t *testing.T) {
	g := MustNew(testSpec())
	assert.True(t, g.StartsIdentifier("foo()"))
	assert.True(t, g.StartsIdentifier("$x"))
	assert.False(t, g.StartsIdentifier(".bar"))
	assert.False(t, g.StartsIdentifier(""))

	g = MustNew(Spec{Identifier: `[\w-]`})
	assert.True(t, g.StartsIdentifier("-x"))
}

func TestNew_Validation(t *testing.T) {
	spec := testSpec()
	spec.Modifiers = append(spec.Modifiers, "int")
	_, err := New(spec)
	assert.ErrorContains(t, err, "both a type and a modifier")

	_, err = New(Spec{Identifier: `[a-`})
	assert.Error(t, err)

	_, err = New(Spec{Types: []string{""}})
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(Spec{Identifier: `(`}) })
}

func TestGrammar_IsKeyword(t *testing.T) {
	g := MustNew(testSpec())
	assert.True(t, g.IsKeyword("async"))
	assert.False(t, g.IsKeyword("foo"))
}

func TestSpec_Merge(t *testing.T) {
	merged := testSpec().Merge(Spec{Types: []string{"int", "u8"}, Identifier: `[\w$@]`})
	assert.Equal(t, []string{"int", "void", "u8"}, merged.Types)
	assert.Equal(t, `[\w$@]`, merged.Identifier)
	assert.Equal(t, []string{"class"}, merged.Class)
}

func TestSpec_YAML(t *testing.T) {
	var spec Spec
	err := yaml.Unmarshal([]byte("types: [i32, u8]\ncase_insensitive: true\n"), &spec)
	require.NoError(t, err)

	g := MustNew(spec)
	assert.True(t, g.Is("I32", Types))
	_, ok := g.Matcher(Types).(*KeywordSet)
	assert.True(t, ok)
	_, ok = g.Matcher(Identifier).(*Pattern)
	assert.True(t, ok)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("modifiers")
	assert.True(t, ok)
	assert.Equal(t, Modifiers, c)
	assert.Equal(t, "modifiers", c.String())

	_, ok = ParseCategory("nope")
	assert.False(t, ok)
}

func TestGrammar_LeadingIdentifier(t *testing.T) {
	g := MustNew(testSpec())
	assert.Equal(t, "Foo", g.LeadingIdentifier("Foo extends Bar {"))
	assert.Equal(t, "", g.LeadingIdentifier("{"))
}
