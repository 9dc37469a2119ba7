package cache

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docblock/internal/domain"
)

type countingParser struct {
	calls int
	fail  bool
}

func (p *countingParser) Tokenize(src string) (*domain.Symbols, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("boom")
	}
	sym := domain.NewSymbols()
	sym.Name = strings.Fields(src)[0]
	sym.Type = domain.KindFunction
	return sym, nil
}

// TokenizeLines joins a second line when the first ends in a comma.
func (p *countingParser) TokenizeLines(lines []string) (*domain.Symbols, int, error) {
	n := 1
	if strings.HasSuffix(lines[0], ",") && len(lines) > 1 {
		n = 2
	}
	sym, err := p.Tokenize(strings.Join(lines[:n], "\n"))
	return sym, n, err
}

func symbols(name string) *domain.Symbols {
	sym := domain.NewSymbols()
	sym.Name = name
	return sym
}

func TestSymbolsCache_GetPut(t *testing.T) {
	c := NewSymbolsCache(10, time.Minute)

	_, _, ok := c.Get("c", "int f(void) {")
	assert.False(t, ok)

	c.Put("c", "int f(void) {", symbols("f"), 1)
	got, n, ok := c.Get("c", "int f(void) {")
	require.True(t, ok)
	assert.Equal(t, "f", got.Name)
	assert.Equal(t, 1, n)

	_, _, ok = c.Get("java", "int f(void) {")
	assert.False(t, ok, "language is part of the key")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestSymbolsCache_ReturnsCopies(t *testing.T) {
	c := NewSymbolsCache(10, time.Minute)
	sym := symbols("f")
	c.Put("c", "src", sym, 1)
	sym.Name = "changed"

	got, _, _ := c.Get("c", "src")
	got.Params = append(got.Params, domain.Param{Name: "x"})

	again, _, _ := c.Get("c", "src")
	assert.Equal(t, "f", again.Name)
	assert.Empty(t, again.Params)
}

func TestSymbolsCache_LRUEviction(t *testing.T) {
	c := NewSymbolsCache(2, time.Minute)
	c.Put("c", "a", symbols("a"), 1)
	c.Put("c", "b", symbols("b"), 1)

	_, _, ok := c.Get("c", "a")
	require.True(t, ok)

	c.Put("c", "c", symbols("c"), 1)
	assert.Equal(t, 2, c.Size())

	_, _, ok = c.Get("c", "b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, _, ok = c.Get("c", "a")
	assert.True(t, ok)
}

func TestSymbolsCache_TTL(t *testing.T) {
	c := NewSymbolsCache(10, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("c", "a", symbols("a"), 1)
	now = now.Add(2 * time.Minute)

	_, _, ok := c.Get("c", "a")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestSymbolsCache_Invalidate(t *testing.T) {
	c := NewSymbolsCache(10, time.Minute)
	c.Put("c", "a", symbols("a"), 1)
	c.Invalidate()

	_, _, ok := c.Get("c", "a")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestCachedParser_Tokenize(t *testing.T) {
	inner := &countingParser{}
	p := NewCachedParser("c", inner, NewSymbolsCache(10, time.Minute))

	for range 3 {
		sym, err := p.Tokenize("foo bar")
		require.NoError(t, err)
		assert.Equal(t, "foo", sym.Name)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedParser_TokenizeLines(t *testing.T) {
	inner := &countingParser{}
	p := NewCachedParser("c", inner, NewSymbolsCache(10, time.Minute))

	sym, n, err := p.TokenizeLines([]string{"foo bar", "next"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "foo", sym.Name)

	sym, n, err = p.TokenizeLines([]string{"foo bar", "other"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "foo", sym.Name)
	assert.Equal(t, 1, inner.calls)

	// Shares entries with Tokenize.
	_, err = p.Tokenize("foo bar")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedParser_MultiLineNotCached(t *testing.T) {
	inner := &countingParser{}
	c := NewSymbolsCache(10, time.Minute)
	p := NewCachedParser("c", inner, c)

	for range 2 {
		_, n, err := p.TokenizeLines([]string{"foo(a,", "b)"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Size())
}

func TestCachedParser_ErrorsNotCached(t *testing.T) {
	inner := &countingParser{fail: true}
	c := NewSymbolsCache(10, time.Minute)
	p := NewCachedParser("c", inner, c)

	_, err := p.Tokenize("foo")
	require.Error(t, err)
	_, err = p.Tokenize("foo")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Size())
}
