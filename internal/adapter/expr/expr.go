// Package expr provides the expression validators the lexer uses to decide
// whether a code value or attribute value is complete.
package expr

import (
	"fmt"
	"slices"

	"docblock/internal/port"
)

const (
	JavaScript = "javascript"
	Python     = "python"
	Balanced   = "balanced"
	None       = "none"
)

// Names lists every validator New accepts.
func Names() []string {
	return []string{JavaScript, Python, Balanced, None}
}

// New returns the validator registered under name.
func New(name string) (port.ExpressionValidator, error) {
	switch name {
	case JavaScript, Python:
		return newTreeSitter(name), nil
	case Balanced:
		return NewBalanced(), nil
	case None, "":
		return NewNone(), nil
	}
	return nil, fmt.Errorf("unknown expression validator %q (want one of %v)", name, Names())
}

// Valid reports whether name is a known validator.
func Valid(name string) bool {
	return name == "" || slices.Contains(Names(), name)
}
