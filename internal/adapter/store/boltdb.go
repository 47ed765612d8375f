package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"vsearch/internal/domain"
	"vsearch/internal/port"
)

// ErrNotFound is returned when a document or its data is missing.
var ErrNotFound = errors.New("not found")

var (
	bucketDocs         = []byte("docs")
	bucketConcordances = []byte("concordances")
	bucketBlobs        = []byte("blobs")
	bucketStats        = []byte("stats")
	keyStats           = []byte("corpus_stats")
)

var dataBuckets = [][]byte{bucketDocs, bucketConcordances, bucketBlobs}

type BoltStore struct {
	db *bbolt.DB
}

var _ port.IndexStore = (*BoltStore)(nil)

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

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type docMeta struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
}

type statsMeta struct {
	TotalDocs     int     `json:"total_docs"`
	TotalTerms    int     `json:"total_terms"`
	DistinctTerms int     `json:"distinct_terms"`
	AvgDocLen     float64 `json:"avg_doc_len"`
	IndexedAt     int64   `json:"indexed_at"`
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, doc)
	})
}

func putDoc(tx *bbolt.Tx, doc domain.Document) error {
	data, err := json.Marshal(docMeta{
		Path:    doc.Path,
		ModTime: doc.ModTime.Unix(),
	})
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
}

func decodeDoc(id string, data []byte) (domain.Document, error) {
	var meta docMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Document{}, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	return domain.Document{
		ID:      id,
		Path:    meta.Path,
		ModTime: time.Unix(meta.ModTime, 0),
	}, nil
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		var err error
		doc, err = decodeDoc(id, data)
		return err
	})
	return doc, err
}

// DeleteDoc removes a document together with its concordance and text.
func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(tx, id)
	})
}

func deleteDoc(tx *bbolt.Tx, id string) error {
	for _, name := range dataBuckets {
		if err := tx.Bucket(name).Delete([]byte(id)); err != nil {
			return err
		}
	}
	return nil
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			doc, err := decodeDoc(string(k), v)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) PutConcordance(docID string, c domain.Concordance) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putConcordance(tx, docID, c)
	})
}

func putConcordance(tx *bbolt.Tx, docID string, c domain.Concordance) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketConcordances).Put([]byte(docID), data)
}

func (s *BoltStore) GetConcordance(docID string) (domain.Concordance, error) {
	var c domain.Concordance
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketConcordances).Get([]byte(docID))
		if data == nil {
			return fmt.Errorf("concordance %s: %w", docID, ErrNotFound)
		}
		return json.Unmarshal(data, &c)
	})
	return c, err
}

func (s *BoltStore) LoadConcordances() (map[string]domain.Concordance, error) {
	all := make(map[string]domain.Concordance)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConcordances).ForEach(func(k, v []byte) error {
			var c domain.Concordance
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("corrupt concordance %s: %w", k, err)
			}
			all[string(k)] = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (s *BoltStore) GetText(docID string) (string, error) {
	var text string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBlobs).Get([]byte(docID))
		if data == nil {
			return fmt.Errorf("text %s: %w", docID, ErrNotFound)
		}
		text = string(data)
		return nil
	})
	return text, err
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		var meta statsMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		stats = domain.Stats{
			TotalDocs:     meta.TotalDocs,
			TotalTerms:    meta.TotalTerms,
			DistinctTerms: meta.DistinctTerms,
			AvgDocLen:     meta.AvgDocLen,
		}
		if meta.IndexedAt != 0 {
			stats.IndexedAt = time.Unix(meta.IndexedAt, 0)
		}
		return nil
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := statsMeta{
			TotalDocs:     stats.TotalDocs,
			TotalTerms:    stats.TotalTerms,
			DistinctTerms: stats.DistinctTerms,
			AvgDocLen:     stats.AvgDocLen,
		}
		if !stats.IndexedAt.IsZero() {
			meta.IndexedAt = stats.IndexedAt.Unix()
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) BatchIndex(files []port.IndexedFile, deleted []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, id := range deleted {
			if err := deleteDoc(tx, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
		}

		blobs := tx.Bucket(bucketBlobs)
		for _, file := range files {
			if err := putDoc(tx, file.Doc); err != nil {
				return fmt.Errorf("failed to store document %s: %w", file.Doc.ID, err)
			}
			if err := putConcordance(tx, file.Doc.ID, file.Concordance); err != nil {
				return fmt.Errorf("failed to store concordance %s: %w", file.Doc.ID, err)
			}
			if err := blobs.Put([]byte(file.Doc.ID), []byte(file.Text)); err != nil {
				return fmt.Errorf("failed to store text %s: %w", file.Doc.ID, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
