package parser

import "docblock/internal/adapter/lexer"

// State holds the parse flags of one top-level Tokenize call. It is created
// fresh for every call and shared by all continuation passes of that call.
type State struct {
	Done                bool
	ExpectName          bool
	ExpectParameter     bool
	ExpectParameterType bool
	ExpectReturnType    bool
	ExpectValue         bool

	// LastIdent and PrevIdent are the two most recent plain identifiers.
	LastIdent string
	PrevIdent string

	// Partial is a parameter fragment the lexer split in two, such as the
	// "Map<K" half of "Map<K, V>".
	Partial string

	// Prev is the last dispatched token. Text tokens are never recorded.
	Prev *lexer.Token
}

// Remember records ident as the most recent identifier.
func (s *State) Remember(ident string) {
	s.PrevIdent = s.LastIdent
	s.LastIdent = ident
}

func (s *State) setPrev(t lexer.Token) {
	s.Prev = &t
}
