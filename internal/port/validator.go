package port

// ExpressionValidator decides whether a piece of text is a well-formed value
// expression for some target language.
type ExpressionValidator interface {
	// Validate returns nil for a valid expression and a *domain.ExpressionFault
	// describing the first problem otherwise.
	Validate(expr string) error

	// Name returns the identifier the validator is configured by.
	Name() string
}
