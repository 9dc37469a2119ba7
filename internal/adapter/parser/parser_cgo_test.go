//go:build cgo

package parser

import (
	"testing"

	"docblock/internal/adapter/expr"
)

func TestTokenize_MultiWordDefaults_JavaScript(t *testing.T) {
	assertMultiWordDefaults(t, expr.JavaScript)
}
