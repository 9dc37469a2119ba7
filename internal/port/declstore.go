package port

import "docblock/internal/domain"

// ScannedFile is one document and the declarations found in it.
type ScannedFile struct {
	Doc   domain.Document
	Decls []domain.Declaration
}

type DeclarationStore interface {
	PutDoc(doc domain.Document) error

	GetDoc(id string) (domain.Document, error)

	DeleteDoc(id string) error

	ListDocs() ([]domain.Document, error)

	PutDeclarations(docID string, decls []domain.Declaration) error

	GetDeclarationsByDoc(docID string) ([]domain.Declaration, error)

	DeleteDeclarationsByDoc(docID string) error

	// ListDeclarations returns every declaration ordered by path and line.
	ListDeclarations() ([]domain.Declaration, error)

	// BatchPut stores documents with their declarations, replacing what
	// was stored for each of them before.
	BatchPut(files []ScannedFile) error

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}
