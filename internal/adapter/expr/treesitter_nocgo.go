//go:build !cgo

package expr

import "log/slog"

// Without cgo there is no tree-sitter; the language validators degrade to
// bracket balance.
func newTreeSitter(name string) *BalancedValidator {
	slog.Warn("tree-sitter not available (CGO disabled), using balanced expression validator", "validator", name)
	return NewBalanced()
}
