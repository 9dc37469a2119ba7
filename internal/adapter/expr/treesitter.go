//go:build cgo

package expr

import (
	"context"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"docblock/internal/domain"
)

// TreeSitterValidator parses the expression wrapped in parentheses with a
// tree-sitter grammar and reports the first error node.
type TreeSitterValidator struct {
	name  string
	lang  *sitter.Language
	kinds []string
}

func newTreeSitter(name string) *TreeSitterValidator {
	v := &TreeSitterValidator{name: name}
	switch name {
	case Python:
		v.lang = python.GetLanguage()
		v.kinds = []string{"parenthesized_expression", "tuple", "generator_expression"}
	default:
		v.lang = javascript.GetLanguage()
		v.kinds = []string{"parenthesized_expression"}
	}
	return v
}

func (v *TreeSitterValidator) Name() string { return v.name }

func (v *TreeSitterValidator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return &domain.ExpressionFault{Offset: 0, Reason: "empty expression"}
	}

	// sitter.Parser is not safe for concurrent use; one per call.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(v.lang)

	// The newline keeps a trailing line comment from swallowing the paren.
	src := []byte("(" + expr + "\n)")
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return &domain.ExpressionFault{Offset: 0, Reason: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		if !v.wrapsWhole(root, len(src)) {
			return &domain.ExpressionFault{Offset: len(expr), Reason: "unexpected token"}
		}
		return nil
	}

	bad := firstError(root)
	offset := len(expr)
	reason := "unexpected token"
	if bad != nil {
		offset = int(bad.StartByte()) - 1
		if bad.IsMissing() {
			reason = "missing " + bad.Type()
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(expr) {
		offset = len(expr)
	}
	return &domain.ExpressionFault{Offset: offset, Reason: reason}
}

// wrapsWhole reports whether the source parsed into a single expression
// spanning the wrapper parens. "a) + (b" parses cleanly but does not.
func (v *TreeSitterValidator) wrapsWhole(root *sitter.Node, size int) bool {
	if root.NamedChildCount() != 1 {
		return false
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	e := stmt.NamedChild(0)
	return slices.Contains(v.kinds, e.Type()) && e.StartByte() == 0 && int(e.EndByte()) == size
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}
