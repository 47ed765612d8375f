package memstore

import (
	"fmt"
	"maps"
	"sync"

	"vsearch/internal/adapter/store"
	"vsearch/internal/domain"
	"vsearch/internal/port"
)

type MemoryStore struct {
	mu           sync.RWMutex
	docs         map[string]domain.Document
	concordances map[string]domain.Concordance
	texts        map[string]string
	stats        domain.Stats
}

var _ port.IndexStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:         make(map[string]domain.Document),
		concordances: make(map[string]domain.Concordance),
		texts:        make(map[string]string),
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
		return domain.Document{}, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return doc, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
	return nil
}

func (s *MemoryStore) deleteLocked(id string) {
	delete(s.docs, id)
	delete(s.concordances, id)
	delete(s.texts, id)
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) PutConcordance(docID string, c domain.Concordance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concordances[docID] = maps.Clone(c)
	return nil
}

func (s *MemoryStore) GetConcordance(docID string) (domain.Concordance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.concordances[docID]
	if !ok {
		return nil, fmt.Errorf("concordance %s: %w", docID, store.ErrNotFound)
	}
	return maps.Clone(c), nil
}

func (s *MemoryStore) LoadConcordances() (map[string]domain.Concordance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string]domain.Concordance, len(s.concordances))
	for id, c := range s.concordances {
		all[id] = maps.Clone(c)
	}
	return all, nil
}

func (s *MemoryStore) GetText(docID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[docID]
	if !ok {
		return "", fmt.Errorf("text %s: %w", docID, store.ErrNotFound)
	}
	return text, nil
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

func (s *MemoryStore) BatchIndex(files []port.IndexedFile, deleted []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range deleted {
		s.deleteLocked(id)
	}
	for _, file := range files {
		s.docs[file.Doc.ID] = file.Doc
		s.concordances[file.Doc.ID] = maps.Clone(file.Concordance)
		s.texts[file.Doc.ID] = file.Text
	}
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.Document)
	s.concordances = make(map[string]domain.Concordance)
	s.texts = make(map[string]string)
	s.stats = domain.Stats{}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
