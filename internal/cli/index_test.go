package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"vsearch/config"
	"vsearch/internal/adapter/store"
	"vsearch/internal/domain"
)

func TestIndexDir_FailedRebuildKeepsIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("the fox"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg = config.DefaultConfig()
	defer func() { cfg = nil }()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	if err := config.EnsureIndexDir(dir); err != nil {
		t.Fatal(err)
	}
	bolt, err := store.NewBoltStore(config.IndexDBPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer bolt.Close()

	rebuild, err := prepareSchema(bolt, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rebuild {
		t.Fatal("fresh store should not need a rebuild")
	}
	if _, err := indexDir(cmd, bolt, dir, rebuild); err != nil {
		t.Fatal(err)
	}
	if err := bolt.Migrate(cfg); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("bad \xff text"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Index.Excludes = append(cfg.Index.Excludes, "**/tmp/**")

	rebuild, err = prepareSchema(bolt, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !rebuild {
		t.Fatal("changed excludes should require a rebuild")
	}
	if docs, _ := bolt.ListDocs(); len(docs) != 1 {
		t.Fatalf("checking the schema must not clear the index, got %d docs", len(docs))
	}

	_, err = indexDir(cmd, bolt, dir, rebuild)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := bolt.GetConcordance("a.txt"); err != nil {
		t.Errorf("failed rebuild should leave the old index, got %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "bad.txt")); err != nil {
		t.Fatal(err)
	}
	result, err := indexDir(cmd, bolt, dir, rebuild)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesIndexed != 1 || result.FilesSkipped != 0 {
		t.Errorf("rebuild should re-read every file, got %+v", result)
	}
}
