package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vsearch/config"
	"vsearch/internal/adapter/fs"
	"vsearch/internal/adapter/memstore"
	"vsearch/internal/adapter/store"
	"vsearch/internal/logger"
	"vsearch/internal/port"
	"vsearch/internal/usecase"
)

var indexCorpus string

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index files for retrieval",
	Long: `Index text files in the specified directory for later retrieval.
The index is stored in .vsearch/index.db within the target directory.
If any file is not valid text the index is left unchanged.

Examples:
  vsearch index .                      # Index current directory
  vsearch index /path/to/notes         # Index specific directory
  vsearch index --corpus corpus.yaml   # Index a YAML map of ID to text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexCorpus, "corpus", "", "YAML file mapping document IDs to text")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	var st port.IndexStore
	var rebuild bool
	dbPath := "(memory)"
	if useMemory {
		st = memstore.NewMemoryStore()
	} else {
		if err := config.EnsureIndexDir(path); err != nil {
			return fmt.Errorf("failed to create .vsearch directory: %w", err)
		}
		dbPath = config.IndexDBPath(path)
		bolt, err := store.NewBoltStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open index store: %w", err)
		}
		defer bolt.Close()

		rebuild, err = prepareSchema(bolt, cfg)
		if err != nil {
			return err
		}
		st = bolt
	}

	// A corpus always replaces the whole index, so it needs no rebuild mode.
	var result *usecase.IndexResult
	if indexCorpus != "" {
		result, err = indexCorpusFile(cmd.Context(), st, indexCorpus)
	} else {
		result, err = indexDir(cmd, st, path, rebuild)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if bolt, ok := st.(*store.BoltStore); ok {
		if err := bolt.Migrate(cfg); err != nil {
			return fmt.Errorf("failed to update schema info: %w", err)
		}
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Documents indexed: %d\n", result.FilesIndexed)
	fmt.Printf("  Documents skipped: %d (unchanged)\n", result.FilesSkipped)
	fmt.Printf("  Documents deleted: %d (removed)\n", result.FilesDeleted)
	fmt.Printf("  Total documents:   %d\n", result.Stats.TotalDocs)
	fmt.Printf("  Distinct terms:    %d\n", result.Stats.DistinctTerms)
	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}

// prepareSchema reports whether the stored index must be rebuilt. The
// rebuild replaces the old documents in the indexing commit, so nothing is
// cleared here.
func prepareSchema(bolt *store.BoltStore, cfg *config.Config) (bool, error) {
	migrationResult, err := bolt.CheckMigration(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to check migration: %w", err)
	}

	if migrationResult.NeedsRebuild {
		fmt.Printf("Index rebuild required: %s\n", migrationResult.Reason)
		return true, nil
	}
	if migrationResult.NeedsMigration {
		fmt.Printf("Running schema migration: %s\n", migrationResult.Reason)
		if err := bolt.Migrate(cfg); err != nil {
			return false, fmt.Errorf("migration failed: %w", err)
		}
	}
	return false, nil
}

func indexDir(cmd *cobra.Command, st port.IndexStore, path string, rebuild bool) (*usecase.IndexResult, error) {
	cfg := GetConfig()
	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)

	indexUC, err := usecase.NewIndexUseCase(st, walker, fs.Reader{},
		usecase.WithWorkers(cfg.Index.Workers),
		usecase.WithIndexLogger(logger.WithComponent("cli")),
	)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Scanning %s...\n", path)

	// Created on the first callback, once the total is known.
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	progressCallback := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Reading[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		_ = bar.Set(processed)

		elapsed := time.Since(startTime)
		rate := float64(processed) / elapsed.Seconds()
		if remaining := total - processed; rate > 0 && remaining > 0 {
			eta := time.Duration(float64(remaining)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Reading[reset] ETA: %s", formatDuration(eta)))
		}
	}

	if rebuild {
		return indexUC.Rebuild(cmd.Context(), path, progressCallback)
	}
	return indexUC.Index(cmd.Context(), path, progressCallback)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
