package domain

// DeclarationKind classifies a recognized declaration.
type DeclarationKind int

const (
	KindUnset DeclarationKind = iota
	KindFunction
	KindClass
	KindVariable
)

func (k DeclarationKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	default:
		return ""
	}
}

// MarshalText lets Symbols serialize the kind by name.
func (k DeclarationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *DeclarationKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "function":
		*k = KindFunction
	case "class":
		*k = KindClass
	case "variable":
		*k = KindVariable
	default:
		*k = KindUnset
	}
	return nil
}

// Param is one entry of a function parameter list.
type Param struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Val        string `json:"val"`
	MustEscape bool   `json:"must_escape,omitempty"`
}

// Return describes the return value of a function declaration.
type Return struct {
	Present bool   `json:"present"`
	Type    string `json:"type,omitempty"`
}

// Symbols accumulates what the parser learned about one declaration.
type Symbols struct {
	Name    string          `json:"name"`
	Type    DeclarationKind `json:"type"`
	VarType string          `json:"var_type,omitempty"`
	Params  []Param         `json:"params"`
	Return  Return          `json:"return"`
}

// NewSymbols returns an empty accumulator.
func NewSymbols() *Symbols {
	return &Symbols{Params: []Param{}}
}

// AddParam appends a parameter and returns a pointer to it.
func (s *Symbols) AddParam(p Param) *Param {
	s.Params = append(s.Params, p)
	return &s.Params[len(s.Params)-1]
}

// LastParam returns the most recently added parameter, or nil.
func (s *Symbols) LastParam() *Param {
	if len(s.Params) == 0 {
		return nil
	}
	return &s.Params[len(s.Params)-1]
}

// Clone returns a deep copy.
func (s *Symbols) Clone() *Symbols {
	c := *s
	c.Params = make([]Param, len(s.Params))
	copy(c.Params, s.Params)
	return &c
}

// Resolved reports whether a declaration kind and name were found.
func (s *Symbols) Resolved() bool {
	return s.Type != KindUnset && s.Name != ""
}
