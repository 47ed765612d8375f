// Package retriever holds the in-memory search index and ranks documents
// against free-text queries by cosine similarity of term counts.
package retriever

import (
	"cmp"
	"fmt"
	"slices"

	"vsearch/internal/adapter/analyzer"
	"vsearch/internal/adapter/vector"
	"vsearch/internal/domain"
)

// Index maps document identifiers to their concordances. It is read-only
// once built and safe for concurrent searches; use With to derive a new
// index containing an extra document.
type Index[K cmp.Ordered] struct {
	ids     []K
	vectors map[K]vector.Vector
}

func newIndex[K cmp.Ordered](size int) *Index[K] {
	return &Index[K]{
		ids:     make([]K, 0, size),
		vectors: make(map[K]vector.Vector, size),
	}
}

// Build computes the concordance of every document. The first document
// that fails aborts the build and no index is returned.
func Build[K cmp.Ordered](docs map[K]string) (*Index[K], error) {
	idx := newIndex[K](len(docs))
	for _, id := range sortedKeys(docs) {
		c, err := analyzer.Build(docs[id])
		if err != nil {
			return nil, fmt.Errorf("document %v: %w", id, err)
		}
		if err := idx.put(id, c); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// BuildValues is Build for corpora decoded from untyped sources. Any
// value that is not text fails the whole build with domain.ErrInvalidInput.
func BuildValues[K cmp.Ordered](docs map[K]any) (*Index[K], error) {
	idx := newIndex[K](len(docs))
	for _, id := range sortedKeys(docs) {
		c, err := analyzer.BuildValue(docs[id])
		if err != nil {
			return nil, fmt.Errorf("document %v: %w", id, err)
		}
		if err := idx.put(id, c); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// FromConcordances assembles an index from concordances computed earlier,
// for example ones loaded from a store. Each one is validated.
func FromConcordances[K cmp.Ordered](concordances map[K]domain.Concordance) (*Index[K], error) {
	idx := newIndex[K](len(concordances))
	for _, id := range sortedKeys(concordances) {
		if err := idx.put(id, concordances[id]); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// With returns a copy of the index with text stored under id, replacing
// any existing entry. The receiver is not modified.
func (idx *Index[K]) With(id K, text string) (*Index[K], error) {
	c, err := analyzer.Build(text)
	if err != nil {
		return nil, fmt.Errorf("document %v: %w", id, err)
	}

	next := newIndex[K](idx.Len() + 1)
	if idx != nil {
		next.ids = append(next.ids, idx.ids...)
		for k, v := range idx.vectors {
			next.vectors[k] = v
		}
	}
	if err := next.put(id, c); err != nil {
		return nil, err
	}
	return next, nil
}

// Len returns the number of indexed documents.
func (idx *Index[K]) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.ids)
}

// IDs returns the indexed document identifiers in ascending order.
func (idx *Index[K]) IDs() []K {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.ids)
}

// Concordance returns the stored concordance for id. Callers must not
// modify it.
func (idx *Index[K]) Concordance(id K) (domain.Concordance, bool) {
	if idx == nil {
		return nil, false
	}
	v, ok := idx.vectors[id]
	return v.Terms, ok
}

// Search scores every indexed document against query and returns one
// result per document, zero scores included, ordered by Less.
func (idx *Index[K]) Search(query string) ([]domain.RankedResult[K], error) {
	q, err := queryVector(query)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RankedResult[K], idx.Len())
	if idx != nil {
		idx.score(q, idx.ids, results)
	}
	Sort(results)
	return results, nil
}

// score writes one result per id into out, which must be len(ids) long.
func (idx *Index[K]) score(q vector.Vector, ids []K, out []domain.RankedResult[K]) {
	for i, id := range ids {
		out[i] = domain.RankedResult[K]{
			Score: q.Cosine(idx.vectors[id]),
			DocID: id,
		}
	}
}

func (idx *Index[K]) put(id K, c domain.Concordance) error {
	v, err := vector.New(c)
	if err != nil {
		return fmt.Errorf("document %v: %w", id, err)
	}
	if _, exists := idx.vectors[id]; !exists {
		pos, _ := slices.BinarySearch(idx.ids, id)
		idx.ids = slices.Insert(idx.ids, pos, id)
	}
	idx.vectors[id] = v
	return nil
}

func queryVector(query string) (vector.Vector, error) {
	c, err := analyzer.Build(query)
	if err != nil {
		return vector.Vector{}, fmt.Errorf("query: %w", err)
	}
	return vector.New(c)
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
