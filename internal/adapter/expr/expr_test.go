package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docblock/internal/domain"
)

func TestNew(t *testing.T) {
	for _, name := range Names() {
		v, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, v)
	}

	v, err := New("")
	require.NoError(t, err)
	assert.Equal(t, None, v.Name())

	_, err = New("cobol")
	assert.ErrorContains(t, err, "unknown expression validator")
	assert.False(t, Valid("cobol"))
	assert.True(t, Valid(Balanced))
}

func TestBalancedValidator(t *testing.T) {
	v := NewBalanced()

	tests := []struct {
		expr   string
		ok     bool
		offset int
	}{
		{"1", true, 0},
		{"foo(1, [2, 3])", true, 0},
		{`"a)b"`, true, 0},
		{"a + b c", true, 0},
		{"", false, 0},
		{"   ", false, 0},
		{"foo(1", false, 5},
		{"foo)", false, 3},
		{"[1}", false, 2},
		{`"abc`, false, 4},
	}

	for _, tt := range tests {
		err := v.Validate(tt.expr)
		if tt.ok {
			assert.NoError(t, err, tt.expr)
			continue
		}
		var fault *domain.ExpressionFault
		require.ErrorAs(t, err, &fault, tt.expr)
		assert.Equal(t, tt.offset, fault.Offset, tt.expr)
	}
}

func TestNoneValidator(t *testing.T) {
	v := NewNone()
	assert.NoError(t, v.Validate(""))
	assert.NoError(t, v.Validate("((("))
	assert.Equal(t, None, v.Name())
}
