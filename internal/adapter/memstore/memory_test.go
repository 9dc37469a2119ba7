package memstore

import (
	"errors"
	"testing"

	"docblock/internal/domain"
	"docblock/internal/port"
)

func decl(line int, name string, documented bool) domain.Declaration {
	sym := domain.NewSymbols()
	sym.Name = name
	sym.Type = domain.KindFunction
	return domain.Declaration{DocID: "d1", Line: line, Documented: documented, Symbols: sym}
}

func TestMemoryStore_Declarations(t *testing.T) {
	s := NewMemoryStore()
	if err := s.PutDoc(domain.Document{ID: "d1", Path: "a.c", Lang: "c"}); err != nil {
		t.Fatal(err)
	}

	in := []domain.Declaration{decl(9, "b", false), decl(2, "a", true)}
	if err := s.PutDeclarations("d1", in); err != nil {
		t.Fatal(err)
	}
	in[0].Symbols.Name = "mutated"

	got, err := s.GetDeclarationsByDoc("d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Line != 2 || got[1].Symbols.Name != "b" {
		t.Errorf("GetDeclarationsByDoc() = %+v", got)
	}

	all, _ := s.ListDeclarations()
	if len(all) != 2 {
		t.Errorf("ListDeclarations() returned %d, want 2", len(all))
	}

	if err := s.DeleteDoc("d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDoc("d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDoc after delete: err = %v, want ErrNotFound", err)
	}
	if all, _ := s.ListDeclarations(); len(all) != 0 {
		t.Errorf("declarations survived DeleteDoc: %d", len(all))
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	s := NewMemoryStore()
	want := domain.Stats{TotalDocs: 1, TotalDeclarations: 3, Undocumented: 2}
	if err := s.UpdateStats(want); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetStats()
	if got != want {
		t.Errorf("GetStats() = %+v, want %+v", got, want)
	}
}

func TestMemoryStore_BatchPut(t *testing.T) {
	s := NewMemoryStore()
	a := decl(1, "a", true)
	a.Path = "b.c"
	b := decl(5, "b", false)
	b.Path = "a.c"
	b.DocID = "d2"

	err := s.BatchPut([]port.ScannedFile{
		{Doc: domain.Document{ID: "d1", Path: "b.c"}, Decls: []domain.Declaration{a}},
		{Doc: domain.Document{ID: "d2", Path: "a.c"}, Decls: []domain.Declaration{b}},
	})
	if err != nil {
		t.Fatal(err)
	}

	docs, _ := s.ListDocs()
	if len(docs) != 2 || docs[0].Path != "a.c" {
		t.Errorf("ListDocs() = %+v", docs)
	}
	all, _ := s.ListDeclarations()
	if len(all) != 2 || all[0].Path != "a.c" || all[1].Path != "b.c" {
		t.Errorf("ListDeclarations() = %+v", all)
	}
}
