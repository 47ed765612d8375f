package port

import "vsearch/internal/domain"

// IndexStore persists documents and their concordances.
type IndexStore interface {
	PutDoc(doc domain.Document) error

	GetDoc(id string) (domain.Document, error)

	DeleteDoc(id string) error

	ListDocs() ([]domain.Document, error)

	PutConcordance(docID string, c domain.Concordance) error

	GetConcordance(docID string) (domain.Concordance, error)

	// LoadConcordances returns every stored concordance keyed by document ID.
	LoadConcordances() (map[string]domain.Concordance, error)

	// GetText returns the raw text a document was indexed from.
	GetText(docID string) (string, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	// BatchIndex writes all files and removes the given document IDs in a
	// single transaction; either everything is applied or nothing is.
	BatchIndex(files []IndexedFile, deleted []string) error

	Clear() error

	Close() error
}

type IndexedFile struct {
	Doc         domain.Document
	Text        string
	Concordance domain.Concordance
}
