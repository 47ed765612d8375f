package retriever

import (
	"cmp"
	"sort"

	"vsearch/internal/domain"
)

// Less orders ranked results by descending score, breaking ties by
// ascending document identifier so that equal scores always come out in
// the same order.
func Less[K cmp.Ordered](a, b domain.RankedResult[K]) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// Sort orders results in place using Less.
func Sort[K cmp.Ordered](results []domain.RankedResult[K]) {
	sort.Slice(results, func(i, j int) bool {
		return Less(results[i], results[j])
	})
}
