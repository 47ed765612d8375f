package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsearch/internal/adapter/memstore"
	"vsearch/internal/domain"
	"vsearch/internal/port"
)

type fakeWalker struct {
	files []port.FileInfo
	err   error
}

func (w *fakeWalker) Walk(string) ([]port.FileInfo, error) {
	return w.files, w.err
}

type fakeReader struct {
	texts map[string]string
	reads int
}

func (r *fakeReader) ReadFile(path string) (string, error) {
	r.reads++
	text, ok := r.texts[path]
	if !ok {
		return "", errors.New("no such file")
	}
	return text, nil
}

func newFixture(t *testing.T) (*IndexUseCase, *memstore.MemoryStore, *fakeWalker, *fakeReader) {
	t.Helper()
	s := memstore.NewMemoryStore()
	w := &fakeWalker{files: []port.FileInfo{
		{Path: "/c/a.txt", RelPath: "a.txt", ModTime: 100},
		{Path: "/c/b.txt", RelPath: "b.txt", ModTime: 100},
	}}
	r := &fakeReader{texts: map[string]string{
		"/c/a.txt": "the fox\nthe dog",
		"/c/b.txt": "a dog barks",
	}}
	u, err := NewIndexUseCase(s, w, r, WithWorkers(2))
	require.NoError(t, err)
	return u, s, w, r
}

func TestNewIndexUseCase_RequiresDeps(t *testing.T) {
	s := memstore.NewMemoryStore()
	_, err := NewIndexUseCase(nil, &fakeWalker{}, &fakeReader{})
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = NewIndexUseCase(s, nil, &fakeReader{})
	assert.ErrorIs(t, err, ErrWalkerRequired)
	_, err = NewIndexUseCase(s, &fakeWalker{}, nil)
	assert.ErrorIs(t, err, ErrReaderRequired)
}

func TestIndex_IndexesFiles(t *testing.T) {
	u, s, _, _ := newFixture(t)

	var calls int
	res, err := u.Index(context.Background(), "/c", func(processed, total int, _ string) {
		calls++
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, res.FilesIndexed)
	assert.Equal(t, 2, res.Stats.TotalDocs)
	assert.Equal(t, 7, res.Stats.TotalTerms)

	c, err := s.GetConcordance("a.txt")
	require.NoError(t, err)
	assert.Equal(t, domain.Concordance{"the": 2, "fox": 1, "dog": 1}, c)

	doc, err := s.GetDoc("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "/c/b.txt", doc.Path)
}

func TestIndex_SkipsUnchangedAndRemovesDeleted(t *testing.T) {
	u, s, w, r := newFixture(t)
	_, err := u.Index(context.Background(), "/c", nil)
	require.NoError(t, err)

	w.files = []port.FileInfo{
		{Path: "/c/a.txt", RelPath: "a.txt", ModTime: 100},
		{Path: "/c/c.txt", RelPath: "c.txt", ModTime: 200},
	}
	r.texts["/c/c.txt"] = "new file"
	r.reads = 0

	res, err := u.Index(context.Background(), "/c", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, r.reads)
	assert.Equal(t, 1, res.FilesIndexed)
	assert.Equal(t, 1, res.FilesSkipped)
	assert.Equal(t, 1, res.FilesDeleted)
	assert.Equal(t, 2, res.Stats.TotalDocs)

	_, err = s.GetDoc("b.txt")
	assert.Error(t, err)
}

func TestIndex_AllOrNothing(t *testing.T) {
	u, s, w, r := newFixture(t)
	r.texts["/c/bad.txt"] = "bad \xff text"
	w.files = append(w.files, port.FileInfo{Path: "/c/bad.txt", RelPath: "bad.txt", ModTime: 100})

	_, err := u.Index(context.Background(), "/c", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIndex_ReadError(t *testing.T) {
	u, _, w, _ := newFixture(t)
	w.files = append(w.files, port.FileInfo{Path: "/c/missing.txt", RelPath: "missing.txt"})

	_, err := u.Index(context.Background(), "/c", nil)
	assert.Error(t, err)
}

func TestIndex_Cancelled(t *testing.T) {
	u, _, _, _ := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Index(ctx, "/c", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexCorpus(t *testing.T) {
	u, s, _, _ := newFixture(t)
	_, err := u.Index(context.Background(), "/c", nil)
	require.NoError(t, err)

	res, err := u.IndexCorpus(context.Background(), map[string]any{
		"0": "fox fox",
		"1": []byte("dog"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesIndexed)
	assert.Equal(t, 2, res.FilesDeleted)

	text, err := s.GetText("1")
	require.NoError(t, err)
	assert.Equal(t, "dog", text)
}

func TestIndexCorpus_RejectsNonText(t *testing.T) {
	u, s, _, _ := newFixture(t)

	_, err := u.IndexCorpus(context.Background(), map[string]any{
		"0": "fox",
		"1": 42,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(map[string]domain.Concordance{
		"a": {"fox": 2, "dog": 1},
		"b": {"dog": 1},
	})
	assert.Equal(t, 2, stats.TotalDocs)
	assert.Equal(t, 4, stats.TotalTerms)
	assert.Equal(t, 2, stats.DistinctTerms)
	assert.InDelta(t, 2.0, stats.AvgDocLen, 1e-9)

	assert.Equal(t, domain.Stats{}, ComputeStats(nil))
}

func TestRebuild_RereadsEverything(t *testing.T) {
	u, _, _, r := newFixture(t)
	_, err := u.Index(context.Background(), "/c", nil)
	require.NoError(t, err)
	r.reads = 0

	res, err := u.Rebuild(context.Background(), "/c", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, r.reads)
	assert.Equal(t, 2, res.FilesIndexed)
	assert.Zero(t, res.FilesSkipped)
}

func TestRebuild_FailureKeepsPreviousIndex(t *testing.T) {
	u, s, w, r := newFixture(t)
	_, err := u.Index(context.Background(), "/c", nil)
	require.NoError(t, err)

	r.texts["/c/a.txt"] = "now \xff broken"
	_, err = u.Rebuild(context.Background(), "/c", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := s.GetConcordance("a.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count("fox"))
	assert.Len(t, w.files, 2)
}
