package parser

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"docblock/internal/adapter/expr"
	"docblock/internal/adapter/grammar"
	"docblock/internal/adapter/lexer"
)

// builtin is the declarative form of a supported language.
type builtin struct {
	name       string
	extensions []string
	spec       grammar.Spec
	recognizer Recognizer
	rules      []lexer.Rule
}

func builtins() []builtin {
	return []builtin{
		{name: "c", extensions: []string{".c", ".h"}, spec: cSpec, recognizer: C{}},
		{name: "java", extensions: []string{".java"}, spec: javaSpec, recognizer: Java{}},
		{name: "javascript", extensions: []string{".js", ".mjs", ".cjs", ".jsx"}, spec: javascriptSpec, recognizer: JavaScript{}},
		{name: "php", extensions: []string{".php"}, spec: phpSpec, recognizer: PHP{}},
		{name: "scss", extensions: []string{".scss"}, spec: scssSpec, recognizer: SCSS{}, rules: scssRules},
	}
}

// RegistryOptions tunes the built-in languages.
type RegistryOptions struct {
	// DefaultValidator names the expression validator used by languages
	// without an entry in Validators. Empty means expr.JavaScript.
	DefaultValidator string
	// Validators maps a language name to an expression validator name.
	Validators map[string]string
	// Grammars holds extra keywords merged into a language's grammar.
	Grammars map[string]grammar.Spec

	MaxContinuations int
	MaxBufferLines   int
}

// Registry maps languages and file extensions to definitions. It is safe for
// concurrent use; every NewParser call returns a new Parser.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Definition
	byExt  map[string]string
	opts   []Option
}

// NewRegistry builds a registry holding the built-in languages.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Definition),
		byExt:  make(map[string]string),
	}
	if opts.MaxContinuations > 0 {
		r.opts = append(r.opts, WithMaxContinuations(opts.MaxContinuations))
	}
	if opts.MaxBufferLines > 0 {
		r.opts = append(r.opts, WithMaxBufferLines(opts.MaxBufferLines))
	}

	for name := range opts.Grammars {
		if !slices.ContainsFunc(builtins(), func(b builtin) bool { return b.name == name }) {
			return nil, fmt.Errorf("grammar override for unknown language %q", name)
		}
	}

	for _, b := range builtins() {
		g, err := grammar.New(b.spec.Merge(opts.Grammars[b.name]))
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", b.name, err)
		}

		vname := opts.Validators[b.name]
		if vname == "" {
			vname = opts.DefaultValidator
		}
		if vname == "" {
			vname = expr.JavaScript
		}
		v, err := expr.New(vname)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", b.name, err)
		}

		r.Register(Definition{
			Name:       b.name,
			Extensions: b.extensions,
			Grammar:    g,
			Recognizer: b.recognizer,
			Rules:      b.rules,
			Validator:  v,
		})
	}
	return r, nil
}

// DefaultRegistry returns a registry with default options.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(RegistryOptions{})
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds def, replacing any language of the same name and taking
// over its extensions.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[def.Name] = def
	for _, ext := range def.Extensions {
		r.byExt[normalizeExtension(ext)] = def.Name
	}
}

// ByName returns the language called name.
func (r *Registry) ByName(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.byName[strings.ToLower(name)]
	return def, ok
}

// ForPath returns the language of a file, chosen by extension.
func (r *Registry) ForPath(path string) (Definition, bool) {
	r.mu.RLock()
	name, ok := r.byExt[normalizeExtension(filepath.Ext(path))]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, false
	}
	return r.ByName(name)
}

// Lookup resolves a language name, an extension or a file path.
func (r *Registry) Lookup(key string) (Definition, bool) {
	if def, ok := r.ByName(key); ok {
		return def, true
	}
	if !strings.Contains(key, ".") {
		key = "." + key
	}
	return r.ForPath(key)
}

// Languages returns every registered language sorted by name.
func (r *Registry) Languages() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.byName))
	for _, def := range r.byName {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs
}

// CanParse reports whether a language is registered for the file.
func (r *Registry) CanParse(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// NewParser returns a new parser for a language name, extension or path.
func (r *Registry) NewParser(key string) (*Parser, error) {
	def, ok := r.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", key)
	}
	return New(def, r.opts...), nil
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
