// Package grammar holds the declarative keyword tables a language parser is
// driven by.
package grammar

import (
	"fmt"
	"regexp"
	"slices"

	"golang.org/x/text/cases"
)

// Category names one of the grammar's keyword groups.
type Category int

const (
	Class Category = iota
	Function
	Modifiers
	Types
	Variables
	Identifier
)

var categoryNames = [...]string{"class", "function", "modifiers", "types", "variables", "identifier"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory maps a category name to its value.
func ParseCategory(name string) (Category, bool) {
	i := slices.Index(categoryNames[:], name)
	if i < 0 {
		return 0, false
	}
	return Category(i), true
}

// Matcher decides membership of a single value in a category. It is either a
// *KeywordSet or a *Pattern.
type Matcher interface {
	Match(value string) bool
	matcher()
}

// KeywordSet matches a closed list of words.
type KeywordSet struct {
	words []string
	set   map[string]struct{}
	fold  bool
}

// NewKeywordSet builds a set from words. With foldCase, membership ignores
// letter case.
func NewKeywordSet(words []string, foldCase bool) *KeywordSet {
	k := &KeywordSet{
		words: slices.Clone(words),
		set:   make(map[string]struct{}, len(words)),
		fold:  foldCase,
	}
	for _, w := range words {
		k.set[k.key(w)] = struct{}{}
	}
	return k
}

func (k *KeywordSet) key(w string) string {
	if !k.fold {
		return w
	}
	// Casers keep state, so each lookup gets its own.
	return cases.Fold().String(w)
}

// Match reports whether value is one of the words.
func (k *KeywordSet) Match(value string) bool {
	_, ok := k.set[k.key(value)]
	return ok
}

// Words returns the words in declaration order.
func (k *KeywordSet) Words() []string {
	return slices.Clone(k.words)
}

func (k *KeywordSet) matcher() {}

// Pattern matches values made only of characters from a character class.
type Pattern struct {
	class  string
	whole  *regexp.Regexp
	first  *regexp.Regexp
	prefix *regexp.Regexp
}

// NewPattern compiles a character class such as `[\w$]`.
func NewPattern(class string) (*Pattern, error) {
	whole, err := regexp.Compile(`^(?:` + class + `)+$`)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier pattern %q: %w", class, err)
	}
	return &Pattern{
		class:  class,
		whole:  whole,
		first:  regexp.MustCompile(`^(?:` + class + `)`),
		prefix: regexp.MustCompile(`^(?:` + class + `)+`),
	}, nil
}

// Match reports whether every character of value is in the class.
func (p *Pattern) Match(value string) bool {
	return p.whole.MatchString(value)
}

// Starts reports whether s begins with a character of the class.
func (p *Pattern) Starts(s string) bool {
	return p.first.MatchString(s)
}

// Prefix returns the longest run of class characters at the start of s.
func (p *Pattern) Prefix(s string) string {
	return p.prefix.FindString(s)
}

func (p *Pattern) String() string {
	return p.class
}

func (p *Pattern) matcher() {}

// DefaultIdentifier is the identifier character class used when a Spec does
// not name one.
const DefaultIdentifier = `[\w$]`

// Spec is the declarative form of a grammar.
type Spec struct {
	Class           []string `yaml:"class,omitempty"`
	Function        []string `yaml:"function,omitempty"`
	Modifiers       []string `yaml:"modifiers,omitempty"`
	Types           []string `yaml:"types,omitempty"`
	Variables       []string `yaml:"variables,omitempty"`
	Identifier      string   `yaml:"identifier,omitempty"`
	CaseInsensitive bool     `yaml:"case_insensitive,omitempty"`
}

// Merge returns s with the keywords of extra appended. A non-empty
// identifier in extra replaces the one in s.
func (s Spec) Merge(extra Spec) Spec {
	out := Spec{
		Class:           mergeWords(s.Class, extra.Class),
		Function:        mergeWords(s.Function, extra.Function),
		Modifiers:       mergeWords(s.Modifiers, extra.Modifiers),
		Types:           mergeWords(s.Types, extra.Types),
		Variables:       mergeWords(s.Variables, extra.Variables),
		Identifier:      s.Identifier,
		CaseInsensitive: s.CaseInsensitive || extra.CaseInsensitive,
	}
	if extra.Identifier != "" {
		out.Identifier = extra.Identifier
	}
	return out
}

func mergeWords(base, extra []string) []string {
	out := slices.Clone(base)
	for _, w := range extra {
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// Grammar is an immutable set of category matchers. It is safe to share
// between parsers.
type Grammar struct {
	matchers [len(categoryNames)]Matcher
	ident    *Pattern
}

// New validates spec and builds a grammar from it.
func New(spec Spec) (*Grammar, error) {
	class := spec.Identifier
	if class == "" {
		class = DefaultIdentifier
	}
	ident, err := NewPattern(class)
	if err != nil {
		return nil, err
	}

	lists := map[Category][]string{
		Class:     spec.Class,
		Function:  spec.Function,
		Modifiers: spec.Modifiers,
		Types:     spec.Types,
		Variables: spec.Variables,
	}
	g := &Grammar{ident: ident}
	for cat, words := range lists {
		for _, w := range words {
			if w == "" {
				return nil, fmt.Errorf("empty keyword in category %s", cat)
			}
		}
		g.matchers[cat] = NewKeywordSet(words, spec.CaseInsensitive)
	}
	g.matchers[Identifier] = ident

	types := g.matchers[Types]
	for _, m := range spec.Modifiers {
		if types.Match(m) {
			return nil, fmt.Errorf("keyword %q is declared as both a type and a modifier", m)
		}
	}
	return g, nil
}

// MustNew is like New but panics on an invalid spec. It is meant for the
// built-in language tables.
func MustNew(spec Spec) *Grammar {
	g, err := New(spec)
	if err != nil {
		panic(err)
	}
	return g
}

// Is reports whether value belongs to category. Unknown categories never
// match.
func (g *Grammar) Is(value string, c Category) bool {
	if c < 0 || int(c) >= len(g.matchers) || g.matchers[c] == nil {
		return false
	}
	return g.matchers[c].Match(value)
}

// IsKeyword reports whether value belongs to any keyword category.
func (g *Grammar) IsKeyword(value string) bool {
	for c := Class; c < Identifier; c++ {
		if g.Is(value, c) {
			return true
		}
	}
	return false
}

// StartsIdentifier reports whether s begins with an identifier character.
func (g *Grammar) StartsIdentifier(s string) bool {
	return g.ident.Starts(s)
}

// LeadingIdentifier returns the identifier s starts with, or "".
func (g *Grammar) LeadingIdentifier(s string) string {
	return g.ident.Prefix(s)
}

// Matcher returns the matcher of category c, or nil.
func (g *Grammar) Matcher(c Category) Matcher {
	if c < 0 || int(c) >= len(g.matchers) {
		return nil
	}
	return g.matchers[c]
}
