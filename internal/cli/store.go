package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/panjf2000/ants/v2"

	"vsearch/config"
	"vsearch/internal/adapter/cache"
	"vsearch/internal/adapter/fs"
	"vsearch/internal/adapter/memstore"
	"vsearch/internal/adapter/store"
	"vsearch/internal/logger"
	"vsearch/internal/port"
	"vsearch/internal/usecase"
)

// openStore returns the index store commands read from. With --memory the
// corpus file is indexed into a fresh in-memory store first.
func openStore(ctx context.Context, corpusFile string) (port.IndexStore, error) {
	if useMemory {
		if corpusFile == "" {
			return nil, errors.New("--memory needs --corpus")
		}
		st := memstore.NewMemoryStore()
		if _, err := indexCorpusFile(ctx, st, corpusFile); err != nil {
			return nil, err
		}
		return st, nil
	}
	if corpusFile != "" {
		return nil, errors.New("--corpus needs --memory; use 'vsearch index --corpus' to persist a corpus")
	}

	dbPath := config.IndexDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w. Run 'vsearch index' first", usecase.ErrNoIndex)
	}
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return st, nil
}

func indexCorpusFile(ctx context.Context, st port.IndexStore, path string) (*usecase.IndexResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	corpus, err := usecase.LoadCorpus(f)
	if err != nil {
		return nil, err
	}

	cfg := GetConfig()
	// The corpus path never walks the file system.
	indexUC, err := usecase.NewIndexUseCase(st, fs.NewWalker(nil, nil), fs.Reader{},
		usecase.WithWorkers(cfg.Index.Workers),
		usecase.WithIndexLogger(logger.WithComponent("cli")),
	)
	if err != nil {
		return nil, err
	}
	return indexUC.IndexCorpus(ctx, corpus)
}

// newRetriever wires the search pool and query cache from config. The
// returned release func frees the pool.
func newRetriever(st port.IndexStore) (*usecase.RetrieveUseCase, func(), error) {
	cfg := GetConfig()

	pool, err := ants.NewPool(cfg.Search.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search pool: %w", err)
	}

	opts := []usecase.RetrieveOption{
		usecase.WithPool(pool, cfg.Search.ParallelThreshold),
		usecase.WithRetrieveLogger(logger.WithComponent("cli")),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, usecase.WithCache(cache.NewQueryCache(cfg.Cache.Size, cfg.Cache.TTL)))
	}

	retrieveUC, err := usecase.NewRetrieveUseCase(st, opts...)
	if err != nil {
		pool.Release()
		return nil, nil, err
	}
	return retrieveUC, pool.Release, nil
}
