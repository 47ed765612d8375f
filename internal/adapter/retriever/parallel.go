package retriever

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"vsearch/internal/adapter/analyzer"
	"vsearch/internal/domain"
)

// BuildParallel is Build with concordances computed on up to workers
// goroutines. The first failure cancels the remaining work and no index is
// returned. Which failing document is reported is not deterministic when
// several are invalid.
func BuildParallel[K cmp.Ordered](ctx context.Context, docs map[K]string, workers int) (*Index[K], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ids := sortedKeys(docs)
	concordances := make([]domain.Concordance, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := analyzer.Build(docs[id])
			if err != nil {
				return fmt.Errorf("document %v: %w", id, err)
			}
			concordances[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := newIndex[K](len(ids))
	for i, id := range ids {
		if err := idx.put(id, concordances[i]); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// SearchParallel is Search with scoring split into contiguous partitions
// run on pool. The merged output is identical to Search. A nil pool falls
// back to Search.
func (idx *Index[K]) SearchParallel(query string, pool *ants.Pool) ([]domain.RankedResult[K], error) {
	if pool == nil {
		return idx.Search(query)
	}

	q, err := queryVector(query)
	if err != nil {
		return nil, err
	}

	n := idx.Len()
	results := make([]domain.RankedResult[K], n)

	parts := pool.Cap()
	if parts <= 0 {
		parts = runtime.GOMAXPROCS(0)
	}
	size := (n + parts - 1) / parts

	var (
		wg        sync.WaitGroup
		submitErr error
	)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			idx.score(q, idx.ids[start:end], results[start:end])
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return nil, fmt.Errorf("failed to submit scoring task: %w", submitErr)
	}

	Sort(results)
	return results, nil
}
