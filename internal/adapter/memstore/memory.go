package memstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"docblock/internal/domain"
	"docblock/internal/port"
)

var ErrNotFound = errors.New("not found")

// MemoryStore keeps declarations in maps. It is used where bbolt is not
// available, such as the wasm build.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]domain.Document
	docDecls map[string][]domain.Declaration
	stats    domain.Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]domain.Document),
		docDecls: make(map[string][]domain.Declaration),
	}
}

func (s *MemoryStore) PutDoc(doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	delete(s.docDecls, id)
	return nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// PutDeclarations replaces the declarations stored for docID.
func (s *MemoryStore) PutDeclarations(docID string, decls []domain.Declaration) error {
	cp := make([]domain.Declaration, len(decls))
	for i, d := range decls {
		if d.Symbols != nil {
			d.Symbols = d.Symbols.Clone()
		}
		cp[i] = d
	}
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Line < cp[j].Line })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docDecls[docID] = cp
	return nil
}

func (s *MemoryStore) GetDeclarationsByDoc(docID string) ([]domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.docDecls[docID]
	out := make([]domain.Declaration, len(stored))
	for i, d := range stored {
		if d.Symbols != nil {
			d.Symbols = d.Symbols.Clone()
		}
		out[i] = d
	}
	return out, nil
}

func (s *MemoryStore) DeleteDeclarationsByDoc(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docDecls, docID)
	return nil
}

// ListDeclarations returns every declaration ordered by path and line.
func (s *MemoryStore) ListDeclarations() ([]domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Declaration
	for _, decls := range s.docDecls {
		for _, d := range decls {
			if d.Symbols != nil {
				d.Symbols = d.Symbols.Clone()
			}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

func (s *MemoryStore) BatchPut(files []port.ScannedFile) error {
	for _, f := range files {
		if err := s.PutDoc(f.Doc); err != nil {
			return err
		}
		if err := s.PutDeclarations(f.Doc.ID, f.Decls); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ port.DeclarationStore = (*MemoryStore)(nil)
