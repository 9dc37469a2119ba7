//go:build cgo

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docblock/internal/domain"
)

func TestTreeSitterValidator_JavaScript(t *testing.T) {
	v, err := New(JavaScript)
	require.NoError(t, err)
	assert.Equal(t, JavaScript, v.Name())

	valid := []string{
		"1",
		"a + b",
		"foo(1, 2)",
		"{x: 1, y: [2, 3]}",
		"function () {}",
		"(a) => a * 2",
		"a ? b : c",
		"'str'",
		"a // trailing comment",
	}
	for _, expr := range valid {
		assert.NoError(t, v.Validate(expr), expr)
	}

	invalid := []string{
		"",
		"a +",
		"a b",
		"a; b",
		"a) + (b",
		"foo(",
	}
	for _, expr := range invalid {
		err := v.Validate(expr)
		var fault *domain.ExpressionFault
		require.ErrorAs(t, err, &fault, expr)
		assert.GreaterOrEqual(t, fault.Offset, 0, expr)
		assert.LessOrEqual(t, fault.Offset, len(expr), expr)
	}
}

func TestTreeSitterValidator_Python(t *testing.T) {
	v, err := New(Python)
	require.NoError(t, err)

	for _, expr := range []string{"1", "x if y else z", "a, b", "[i for i in xs]", "None"} {
		assert.NoError(t, v.Validate(expr), expr)
	}
	for _, expr := range []string{"a b", "x if y", "def"} {
		assert.Error(t, v.Validate(expr), expr)
	}
}
