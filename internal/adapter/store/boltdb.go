package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"docblock/internal/domain"
	"docblock/internal/port"
)

var (
	bucketDocs     = []byte("docs")
	bucketDecls    = []byte("decls")
	bucketDocDecls = []byte("doc_decls")
	bucketStats    = []byte("stats")
	keyStats       = []byte("scan_stats")
)

var dataBuckets = [][]byte{bucketDocs, bucketDecls, bucketDocDecls}

// ErrNotFound is returned when a document is not in the store.
var ErrNotFound = errors.New("not found")

// BoltStore keeps scanned documents and their declarations in a bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range append(dataBuckets, bucketStats) {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
	Lang    string `json:"lang"`
}

func putDoc(tx *bbolt.Tx, doc domain.Document) error {
	data, err := json.Marshal(docMeta{
		Path:    doc.Path,
		ModTime: doc.ModTime.Unix(),
		Lang:    doc.Lang,
	})
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
}

func decodeDoc(id, data []byte) (domain.Document, error) {
	var meta docMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Document{}, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return domain.Document{
		ID:      string(id),
		Path:    meta.Path,
		ModTime: time.Unix(meta.ModTime, 0),
		Lang:    meta.Lang,
	}, nil
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, doc)
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		var err error
		doc, err = decodeDoc([]byte(id), data)
		return err
	})
	return doc, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteDecls(tx, id); err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			doc, err := decodeDoc(k, v)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

func putDecls(tx *bbolt.Tx, docID string, decls []domain.Declaration) error {
	if err := deleteDecls(tx, docID); err != nil {
		return err
	}
	declBucket := tx.Bucket(bucketDecls)

	ids := make([]string, 0, len(decls))
	for _, d := range decls {
		data, err := json.Marshal(d)
		if err != nil {
			return err
		}
		if err := declBucket.Put([]byte(d.ID), data); err != nil {
			return err
		}
		ids = append(ids, d.ID)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocDecls).Put([]byte(docID), data)
}

func deleteDecls(tx *bbolt.Tx, docID string) error {
	docDecls := tx.Bucket(bucketDocDecls)
	data := docDecls.Get([]byte(docID))
	if data == nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	declBucket := tx.Bucket(bucketDecls)
	for _, id := range ids {
		if err := declBucket.Delete([]byte(id)); err != nil {
			return err
		}
	}
	return docDecls.Delete([]byte(docID))
}

// PutDeclarations replaces the declarations stored for docID.
func (s *BoltStore) PutDeclarations(docID string, decls []domain.Declaration) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putDecls(tx, docID, decls)
	})
}

// GetDeclarationsByDoc returns the declarations of docID in line order.
func (s *BoltStore) GetDeclarationsByDoc(docID string) ([]domain.Declaration, error) {
	var decls []domain.Declaration
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocDecls).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		declBucket := tx.Bucket(bucketDecls)
		for _, id := range ids {
			raw := declBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var d domain.Declaration
			if err := json.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("decoding declaration %s: %w", id, err)
			}
			decls = append(decls, d)
		}
		return nil
	})
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].Line < decls[j].Line })
	return decls, err
}

func (s *BoltStore) DeleteDeclarationsByDoc(docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDecls(tx, docID)
	})
}

// ListDeclarations returns every stored declaration ordered by path and
// line.
func (s *BoltStore) ListDeclarations() ([]domain.Declaration, error) {
	var decls []domain.Declaration
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDecls).ForEach(func(k, v []byte) error {
			var d domain.Declaration
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("decoding declaration %s: %w", k, err)
			}
			decls = append(decls, d)
			return nil
		})
	})
	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].Path != decls[j].Path {
			return decls[i].Path < decls[j].Path
		}
		return decls[i].Line < decls[j].Line
	})
	return decls, err
}

// BatchPut stores several scanned files in a single transaction.
func (s *BoltStore) BatchPut(files []port.ScannedFile) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, f := range files {
			if err := putDoc(tx, f.Doc); err != nil {
				return err
			}
			if err := putDecls(tx, f.Doc.ID, f.Decls); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ port.DeclarationStore = (*BoltStore)(nil)
