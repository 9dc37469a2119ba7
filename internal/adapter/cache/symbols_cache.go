package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"docblock/internal/domain"
	"docblock/internal/port"
)

// SymbolsCache memoizes parse results by language and source text. Entries
// expire after a TTL and are dropped wholesale by Invalidate, which callers
// use when the grammar or parse settings change.
type SymbolsCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
	now     func() time.Time

	hits, misses uint64
}

type cacheEntry struct {
	symbols   *domain.Symbols
	consumed  int
	timestamp time.Time
	gen       uint64
}

func NewSymbolsCache(maxSize int, ttl time.Duration) *SymbolsCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SymbolsCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(lang, src string) string {
	h := sha256.New()
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Get returns a copy of the cached symbols and the number of lines they were
// parsed from.
func (c *SymbolsCache) Get(lang, src string) (*domain.Symbols, int, bool) {
	key := cacheKey(lang, src)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, 0, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl || entry.gen != c.gen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses++
		return nil, 0, false
	}

	c.moveToEnd(key)
	c.hits++
	return entry.symbols.Clone(), entry.consumed, true
}

// Put stores a copy of sym.
func (c *SymbolsCache) Put(lang, src string, sym *domain.Symbols, consumed int) {
	key := cacheKey(lang, src)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.moveToEnd(key)
	} else {
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{
		symbols:   sym.Clone(),
		consumed:  consumed,
		timestamp: c.now(),
		gen:       c.gen,
	}
}

// Invalidate drops every entry.
func (c *SymbolsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

func (c *SymbolsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *SymbolsCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *SymbolsCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *SymbolsCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *SymbolsCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedParser serves repeated sources of one language from a shared cache.
// Failed parses are not cached.
type CachedParser struct {
	lang   string
	parser port.DeclarationParser
	cache  *SymbolsCache
}

func NewCachedParser(lang string, parser port.DeclarationParser, cache *SymbolsCache) *CachedParser {
	return &CachedParser{
		lang:   lang,
		parser: parser,
		cache:  cache,
	}
}

func (p *CachedParser) Tokenize(src string) (*domain.Symbols, error) {
	if sym, _, hit := p.cache.Get(p.lang, src); hit {
		return sym, nil
	}

	sym, err := p.parser.Tokenize(src)
	if err != nil {
		return nil, err
	}

	p.cache.Put(p.lang, src, sym, 1)
	return sym, nil
}

// TokenizeLines serves a declaration that fits on the first line from the
// cache. Results spanning several lines depend on the lines that follow and
// are always parsed.
func (p *CachedParser) TokenizeLines(lines []string) (*domain.Symbols, int, error) {
	if len(lines) == 0 {
		return p.parser.TokenizeLines(lines)
	}
	if sym, _, hit := p.cache.Get(p.lang, lines[0]); hit {
		return sym, 1, nil
	}

	sym, n, err := p.parser.TokenizeLines(lines)
	if err != nil {
		return nil, n, err
	}

	if n == 1 {
		p.cache.Put(p.lang, lines[0], sym, 1)
	}
	return sym, n, nil
}

var _ port.DeclarationParser = (*CachedParser)(nil)
