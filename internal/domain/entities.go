package domain

import (
	"cmp"
	"time"
)

// Concordance maps a term to the number of times it occurs in one text.
// Terms that are absent have an implicit count of zero.
type Concordance map[string]int

// Len returns the number of distinct terms.
func (c Concordance) Len() int {
	return len(c)
}

// Count returns the occurrence count of term, or 0 if absent.
func (c Concordance) Count(term string) int {
	return c[term]
}

// Total returns the sum of all counts.
func (c Concordance) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// RankedResult pairs a document identifier with its similarity to a query.
type RankedResult[K cmp.Ordered] struct {
	Score float64 `json:"score"`
	DocID K       `json:"doc_id"`
}

// Document is an indexed file or corpus entry.
type Document struct {
	ID      string
	Path    string
	ModTime time.Time
}

type Stats struct {
	TotalDocs     int
	TotalTerms    int
	DistinctTerms int
	AvgDocLen     float64
	IndexedAt     time.Time
}
