package port

import "vsearch/internal/domain"

// Searcher ranks stored documents against a query.
type Searcher interface {
	// Search returns one result per indexed document, best match first.
	Search(query string) ([]domain.RankedResult[string], error)
}
