package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vsearch/config"
	"vsearch/internal/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	useMemory bool
)

var rootCmd = &cobra.Command{
	Use:   "vsearch",
	Short: "Vector space text search - Index and rank documents by cosine similarity",
	Long: `vsearch indexes plain-text files as term-frequency vectors and ranks them
against a query by cosine similarity. Every document is ranked; ties are broken
by document ID so the same index and query always give the same order.

Example usage:
  vsearch index .                       # Index current directory
  vsearch query -q "lazy dog"           # Rank indexed documents
  vsearch query -i                      # Interactive prompt
  vsearch query --memory --corpus c.yaml -q fox --all`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := godotenv.Load(filepath.Join(rootDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./vsearch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "keep the index in memory instead of .vsearch/index.db (needs --corpus)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
