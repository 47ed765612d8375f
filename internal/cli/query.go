package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"vsearch/internal/usecase"
)

var (
	queryText     string
	queryTopK     int
	queryMinScore float64
	queryJSON     bool
	queryAll      bool
	queryREPL     bool
	queryCorpus   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Rank indexed documents against a query",
	Long: `Rank every indexed document by cosine similarity to the query.

By default documents scoring zero are hidden and at most top-k are shown.
--all prints the complete ranking, zero scores included.
Equal scores are ordered by document ID compared as text, so a corpus
keyed 1..10 lists "10" before "2" on a tie.

Examples:
  vsearch query -q "lazy dog"
  vsearch query -q "brown fox" --top-k 3 --json
  vsearch query -i
  vsearch query --memory --corpus corpus.yaml -q fox --all`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", -1, "number of results, 0 for all (default from config)")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", -1, "hide results scoring below this (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryAll, "all", false, "show the full ranking including zero scores")
	queryCmd.Flags().BoolVarP(&queryREPL, "interactive", "i", false, "read queries from stdin")
	queryCmd.Flags().StringVar(&queryCorpus, "corpus", "", "YAML corpus to search (with --memory)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryText == "" && !queryREPL {
		return errors.New("either --query or --interactive is required")
	}

	st, err := openStore(cmd.Context(), queryCorpus)
	if err != nil {
		return err
	}
	defer st.Close()

	retrieveUC, release, err := newRetriever(st)
	if err != nil {
		return err
	}
	defer release()

	p := presentation()
	out := cmd.OutOrStdout()

	if !queryREPL {
		results, err := retrieveUC.Retrieve(queryText, p)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printResults(out, queryText, results, queryJSON)
	}

	err = runInteractive(cmd, retrieveUC, p)
	hits, misses := retrieveUC.CacheStats()
	slog.Debug("query cache", "hits", hits, "misses", misses)
	return err
}

func presentation() usecase.Presentation {
	if queryAll {
		return usecase.Presentation{}
	}
	cfg := GetConfig()
	p := usecase.Presentation{
		TopK:     cfg.Search.TopK,
		MinScore: cfg.Search.MinScore,
		HideZero: true,
	}
	if queryTopK >= 0 {
		p.TopK = queryTopK
	}
	if queryMinScore >= 0 {
		p.MinScore = queryMinScore
	}
	return p
}

func runInteractive(cmd *cobra.Command, retrieveUC *usecase.RetrieveUseCase, p usecase.Presentation) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintf(out, "%d documents indexed. Empty line or Ctrl-D to quit.\n", retrieveUC.Len())
	for {
		if err := cmd.Context().Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			return nil
		}

		results, err := retrieveUC.Retrieve(q, p)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err := printResults(out, q, results, queryJSON); err != nil {
			return err
		}
	}
}

func printResults(w io.Writer, query string, results []usecase.ScoredDocResult, asJSON bool) error {
	if asJSON {
		if results == nil {
			results = []usecase.ScoredDocResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d results for: %s\n\n", len(results), query)
	for _, r := range results {
		name := r.DocID
		if r.Path != "" {
			name = r.Path
		}
		fmt.Fprintf(w, "%3d. %.4f  %s\n", r.Rank, r.Score, name)
		if r.Snippet != "" {
			fmt.Fprintf(w, "     %s\n", r.Snippet)
		}
	}
	fmt.Fprintln(w)
	return nil
}
