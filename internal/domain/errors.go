package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the ways lexing a line can fail.
type ErrorKind int

const (
	InputTypeError ErrorKind = iota + 1
	LexError
	BracketError
	NestingError
	AttributeSyntaxError
	ExpressionSyntaxError
)

// Code returns the stable identifier of the kind.
func (k ErrorKind) Code() string {
	switch k {
	case InputTypeError:
		return "INPUT_TYPE_ERROR"
	case LexError:
		return "LEX_ERROR"
	case BracketError:
		return "BRACKET_ERROR"
	case NestingError:
		return "NESTING_ERROR"
	case AttributeSyntaxError:
		return "ATTRIBUTE_SYNTAX_ERROR"
	case ExpressionSyntaxError:
		return "EXPRESSION_SYNTAX_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

func (k ErrorKind) String() string {
	return k.Code()
}

// SyntaxError is returned by the lexer. Line and Column are 1-based
// positions in the lexed source.
type SyntaxError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
	Err     error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s at %d:%d: %v", e.Kind.Code(), e.Message, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %s at %d:%d", e.Kind.Code(), e.Message, e.Line, e.Column)
}

// Unwrap returns the wrapped error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// NewSyntaxError creates a SyntaxError.
func NewSyntaxError(kind ErrorKind, line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

// KindOf returns the kind of the first SyntaxError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsKind checks if err carries a SyntaxError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// ExpressionFault is reported by expression validators. Offset is the byte
// offset into the validated expression where the problem was detected.
type ExpressionFault struct {
	Offset int
	Reason string
}

func (f *ExpressionFault) Error() string {
	return fmt.Sprintf("%s (offset %d)", f.Reason, f.Offset)
}
