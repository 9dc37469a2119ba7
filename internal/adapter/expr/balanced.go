package expr

import (
	"strings"

	"docblock/internal/adapter/charparser"
	"docblock/internal/domain"
)

// BalancedValidator accepts any non-empty text whose brackets and quotes are
// balanced. It knows nothing about operators.
type BalancedValidator struct{}

func NewBalanced() *BalancedValidator {
	return &BalancedValidator{}
}

func (v *BalancedValidator) Name() string { return Balanced }

func (v *BalancedValidator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return &domain.ExpressionFault{Offset: 0, Reason: "empty expression"}
	}

	st := charparser.DefaultState()
	for i := 0; i < len(expr); i++ {
		if err := st.ParseChar(expr[i]); err != nil {
			return &domain.ExpressionFault{Offset: i, Reason: err.Error()}
		}
	}
	switch {
	case st.IsString():
		return &domain.ExpressionFault{Offset: len(expr), Reason: "unterminated string literal"}
	case st.IsNesting():
		return &domain.ExpressionFault{Offset: len(expr), Reason: "unclosed bracket"}
	}
	return nil
}

// NoneValidator accepts everything.
type NoneValidator struct{}

func NewNone() *NoneValidator {
	return &NoneValidator{}
}

func (v *NoneValidator) Name() string { return None }

func (v *NoneValidator) Validate(string) error { return nil }
