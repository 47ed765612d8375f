package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"vsearch/internal/adapter/analyzer"
	"vsearch/internal/adapter/cache"
	"vsearch/internal/adapter/retriever"
	"vsearch/internal/domain"
	"vsearch/internal/port"
)

const snippetMaxLen = 160

// RetrieveUseCase handles search and retrieval operations over the
// stored concordances.
type RetrieveUseCase struct {
	store     port.IndexStore
	index     atomic.Pointer[retriever.Index[string]]
	pool      *ants.Pool
	threshold int
	cache     *cache.QueryCache
	searcher  port.Searcher
	logger    *slog.Logger
}

// RetrieveOption configures a RetrieveUseCase.
type RetrieveOption func(*RetrieveUseCase)

// WithPool scores indexes larger than threshold documents on pool.
func WithPool(pool *ants.Pool, threshold int) RetrieveOption {
	return func(u *RetrieveUseCase) {
		u.pool = pool
		u.threshold = threshold
	}
}

// WithCache memoises search results until the next Reload.
func WithCache(c *cache.QueryCache) RetrieveOption {
	return func(u *RetrieveUseCase) {
		u.cache = c
	}
}

// WithRetrieveLogger sets a custom logger. Default is slog.Default().
func WithRetrieveLogger(logger *slog.Logger) RetrieveOption {
	return func(u *RetrieveUseCase) {
		if logger == nil {
			logger = slog.Default()
		}
		u.logger = logger
	}
}

// NewRetrieveUseCase loads the stored concordances into a search index.
func NewRetrieveUseCase(store port.IndexStore, opts ...RetrieveOption) (*RetrieveUseCase, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	u := &RetrieveUseCase{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With("component", "retriever")

	u.searcher = directSearcher{u}
	if u.cache != nil {
		u.searcher = cache.NewCachedSearcher(u.searcher, u.cache)
	}

	if err := u.Reload(); err != nil {
		return nil, err
	}
	return u, nil
}

// Reload rebuilds the index from the store and swaps it in. Searches
// already running finish against the previous index.
func (u *RetrieveUseCase) Reload() error {
	all, err := u.store.LoadConcordances()
	if err != nil {
		return fmt.Errorf("failed to load concordances: %w", err)
	}
	idx, err := retriever.FromConcordances(all)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	u.index.Store(idx)
	if u.cache != nil {
		u.cache.Invalidate()
	}
	u.logger.Debug("index loaded", "docs", idx.Len())
	return nil
}

// Len returns the number of documents in the current index.
func (u *RetrieveUseCase) Len() int {
	return u.index.Load().Len()
}

// Search returns every document ranked against query, including those
// scoring zero.
func (u *RetrieveUseCase) Search(query string) ([]domain.RankedResult[string], error) {
	return u.searcher.Search(query)
}

// CacheStats reports query cache hits and misses, or zeros without a cache.
func (u *RetrieveUseCase) CacheStats() (hits, misses int64) {
	if cs, ok := u.searcher.(*cache.CachedSearcher); ok {
		return cs.Stats()
	}
	return 0, 0
}

// Presentation narrows a full ranking for display.
type Presentation struct {
	TopK     int     // 0 = no limit
	MinScore float64 // results scoring below are dropped
	HideZero bool    // drop results with score 0
}

// ScoredDocResult is a simplified result for CLI output.
type ScoredDocResult struct {
	Rank    int     `json:"rank"`
	DocID   string  `json:"doc_id"`
	Path    string  `json:"path,omitempty"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

// Retrieve searches and applies p to the ranking. Rank is the position
// in the full ranking, so it is unaffected by filtering.
func (u *RetrieveUseCase) Retrieve(query string, p Presentation) ([]ScoredDocResult, error) {
	ranked, err := u.Search(query)
	if err != nil {
		return nil, err
	}

	terms := analyzer.Tokenize(query)
	results := make([]ScoredDocResult, 0, min(len(ranked), max(p.TopK, 0)))
	for i, r := range filterByThreshold(ranked, p) {
		if p.TopK > 0 && len(results) == p.TopK {
			break
		}
		res := ScoredDocResult{Rank: i + 1, DocID: r.DocID, Score: r.Score}
		if doc, err := u.store.GetDoc(r.DocID); err == nil {
			res.Path = doc.Path
		}
		if text, err := u.store.GetText(r.DocID); err == nil {
			res.Snippet = snippet(text, terms)
		}
		results = append(results, res)
	}
	return results, nil
}

// filterByThreshold keeps the ranking prefix at or above the minimum
// score. Scores are descending so the first miss ends the scan.
func filterByThreshold(results []domain.RankedResult[string], p Presentation) []domain.RankedResult[string] {
	for i, r := range results {
		if r.Score < p.MinScore || (p.HideZero && r.Score == 0) {
			return results[:i]
		}
	}
	return results
}

// snippet returns the first line containing a query term.
func snippet(text string, terms []string) string {
	for _, line := range strings.Split(text, "\n") {
		for _, tok := range analyzer.Tokenize(line) {
			if containsTerm(terms, tok) {
				return truncate(strings.TrimSpace(line), snippetMaxLen)
			}
		}
	}
	return ""
}

func containsTerm(terms []string, tok string) bool {
	for _, t := range terms {
		if t == tok {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

type directSearcher struct {
	u *RetrieveUseCase
}

func (d directSearcher) Search(query string) ([]domain.RankedResult[string], error) {
	idx := d.u.index.Load()
	if d.u.pool != nil && idx.Len() > d.u.threshold {
		return idx.SearchParallel(query, d.u.pool)
	}
	return idx.Search(query)
}
