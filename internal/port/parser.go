package port

import "docblock/internal/domain"

// DeclarationParser classifies the declaration found in a line of source.
type DeclarationParser interface {
	Tokenize(src string) (*domain.Symbols, error)

	TokenizeLines(lines []string) (*domain.Symbols, int, error)
}
