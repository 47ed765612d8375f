package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vsearch/internal/adapter/retriever"
	"vsearch/internal/domain"
	"vsearch/internal/port"
)

// IndexUseCase handles file indexing operations.
type IndexUseCase struct {
	store   port.IndexStore
	walker  port.FileWalker
	reader  port.FileReader
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

// IndexOption configures an IndexUseCase.
type IndexOption func(*IndexUseCase)

// WithWorkers sets how many concordances are built concurrently.
// Zero or less means GOMAXPROCS.
func WithWorkers(n int) IndexOption {
	return func(u *IndexUseCase) {
		u.workers = n
	}
}

// WithIndexLogger sets a custom logger. Default is slog.Default().
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(u *IndexUseCase) {
		if logger == nil {
			logger = slog.Default()
		}
		u.logger = logger
	}
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	store port.IndexStore,
	walker port.FileWalker,
	reader port.FileReader,
	opts ...IndexOption,
) (*IndexUseCase, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if walker == nil {
		return nil, ErrWalkerRequired
	}
	if reader == nil {
		return nil, ErrReaderRequired
	}

	u := &IndexUseCase{
		store:  store,
		walker: walker,
		reader: reader,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With("component", "indexer")
	return u, nil
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed int
	FilesSkipped int
	FilesDeleted int
	Stats        domain.Stats
}

// ProgressFunc is called after each file is read.
type ProgressFunc func(processed, total int, currentFile string)

// Index brings the store in line with the files under root. Unchanged
// files are skipped, vanished ones removed. The update is all-or-nothing:
// if any file cannot be read or is not text, the store is left untouched.
func (u *IndexUseCase) Index(ctx context.Context, root string, progress ProgressFunc) (*IndexResult, error) {
	return u.index(ctx, root, progress, false)
}

// Rebuild is Index without the unchanged-file shortcut: every file is
// read again and every stored document not found under root is removed.
// The old index is replaced in the same commit, so a failed rebuild
// leaves it intact.
func (u *IndexUseCase) Rebuild(ctx context.Context, root string, progress ProgressFunc) (*IndexResult, error) {
	return u.index(ctx, root, progress, true)
}

func (u *IndexUseCase) index(ctx context.Context, root string, progress ProgressFunc, full bool) (*IndexResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existing := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existing[doc.ID] = doc
	}

	result := &IndexResult{}
	seen := make(map[string]bool, len(files))
	texts := make(map[string]string)
	docs := make(map[string]domain.Document)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[file.RelPath] = true

		if doc, ok := existing[file.RelPath]; ok && !full && doc.ModTime.Unix() >= file.ModTime {
			result.FilesSkipped++
		} else {
			text, err := u.reader.ReadFile(file.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", file.Path, err)
			}
			texts[file.RelPath] = text
			docs[file.RelPath] = domain.Document{
				ID:      file.RelPath,
				Path:    file.Path,
				ModTime: time.Unix(file.ModTime, 0),
			}
		}

		if progress != nil {
			progress(i+1, len(files), file.Path)
		}
	}

	var deleted []string
	for id := range existing {
		if !seen[id] {
			deleted = append(deleted, id)
		}
	}

	idx, err := retriever.BuildParallel(ctx, texts, u.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to build concordances: %w", err)
	}

	if err := u.commit(idx, texts, docs, deleted); err != nil {
		return nil, err
	}

	result.FilesIndexed = idx.Len()
	result.FilesDeleted = len(deleted)
	result.Stats, err = u.refreshStats()
	if err != nil {
		return nil, err
	}

	u.logger.Info("index updated",
		"root", root,
		"rebuild", full,
		"indexed", result.FilesIndexed,
		"skipped", result.FilesSkipped,
		"deleted", result.FilesDeleted,
		"total_docs", result.Stats.TotalDocs,
	)
	return result, nil
}

// IndexCorpus replaces the stored index with an in-memory corpus of
// document ID to text. Values decoded from untyped sources are checked:
// any value that is not text fails the whole call with
// domain.ErrInvalidInput and the store is left untouched.
func (u *IndexUseCase) IndexCorpus(ctx context.Context, corpus map[string]any) (*IndexResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, err := retriever.BuildValues(corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to build concordances: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	var deleted []string
	for _, doc := range existingDocs {
		if _, ok := corpus[doc.ID]; !ok {
			deleted = append(deleted, doc.ID)
		}
	}

	now := u.now()
	texts := make(map[string]string, len(corpus))
	docs := make(map[string]domain.Document, len(corpus))
	for id, v := range corpus {
		texts[id] = textOf(v)
		docs[id] = domain.Document{ID: id, ModTime: now}
	}

	if err := u.commit(idx, texts, docs, deleted); err != nil {
		return nil, err
	}

	result := &IndexResult{
		FilesIndexed: idx.Len(),
		FilesDeleted: len(deleted),
	}
	result.Stats, err = u.refreshStats()
	if err != nil {
		return nil, err
	}

	u.logger.Info("corpus indexed", "docs", result.FilesIndexed, "deleted", result.FilesDeleted)
	return result, nil
}

func (u *IndexUseCase) commit(idx *retriever.Index[string], texts map[string]string, docs map[string]domain.Document, deleted []string) error {
	files := make([]port.IndexedFile, 0, idx.Len())
	for _, id := range idx.IDs() {
		c, _ := idx.Concordance(id)
		files = append(files, port.IndexedFile{
			Doc:         docs[id],
			Text:        texts[id],
			Concordance: c,
		})
	}
	if err := u.store.BatchIndex(files, deleted); err != nil {
		return fmt.Errorf("failed to store index: %w", err)
	}
	return nil
}

func (u *IndexUseCase) refreshStats() (domain.Stats, error) {
	all, err := u.store.LoadConcordances()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to load concordances: %w", err)
	}
	stats := ComputeStats(all)
	stats.IndexedAt = u.now()
	if err := u.store.UpdateStats(stats); err != nil {
		return domain.Stats{}, fmt.Errorf("failed to update stats: %w", err)
	}
	return stats, nil
}

// ComputeStats summarises a set of concordances.
func ComputeStats(concordances map[string]domain.Concordance) domain.Stats {
	vocab := make(map[string]struct{})
	stats := domain.Stats{TotalDocs: len(concordances)}
	for _, c := range concordances {
		stats.TotalTerms += c.Total()
		for term := range c {
			vocab[term] = struct{}{}
		}
	}
	stats.DistinctTerms = len(vocab)
	if stats.TotalDocs > 0 {
		stats.AvgDocLen = float64(stats.TotalTerms) / float64(stats.TotalDocs)
	}
	return stats
}

// textOf converts a value already accepted by the concordance builder.
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
