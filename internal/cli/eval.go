package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vsearch/internal/usecase"
)

var (
	evalQrels  string
	evalK      int
	evalJSON   bool
	evalCorpus string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Measure retrieval quality against relevance judgements",
	Long: `Run every judged query and report precision@k, recall@k, reciprocal rank
and nDCG@k. Only documents with a positive score count as retrieved.

The judgements file is YAML:

  judgements:
    - query: lazy dog
      relevant: [animals/dog.txt]

Examples:
  vsearch eval --qrels qrels.yaml
  vsearch eval --qrels qrels.yaml --top-k 5 --json`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalQrels, "qrels", "", "YAML relevance judgements (required)")
	evalCmd.Flags().IntVarP(&evalK, "top-k", "k", 10, "rank cutoff")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
	evalCmd.Flags().StringVar(&evalCorpus, "corpus", "", "YAML corpus to evaluate (with --memory)")
	_ = evalCmd.MarkFlagRequired("qrels")
}

func runEval(cmd *cobra.Command, args []string) error {
	f, err := os.Open(evalQrels)
	if err != nil {
		return fmt.Errorf("failed to open judgements: %w", err)
	}
	judgements, err := usecase.LoadJudgements(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(judgements) == 0 {
		return errors.New("no judgements found")
	}

	st, err := openStore(cmd.Context(), evalCorpus)
	if err != nil {
		return err
	}
	defer st.Close()

	retrieveUC, release, err := newRetriever(st)
	if err != nil {
		return err
	}
	defer release()

	report, err := usecase.Evaluate(retrieveUC, judgements, evalK)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if evalJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "%-30s %8s %8s %8s %8s\n", "query", fmt.Sprintf("P@%d", report.K), fmt.Sprintf("R@%d", report.K), "RR", "nDCG")
	for _, q := range report.Queries {
		fmt.Fprintf(out, "%-30.30s %8.3f %8.3f %8.3f %8.3f\n", q.Query, q.Precision, q.Recall, q.RR, q.NDCG)
	}
	fmt.Fprintf(out, "%-30s %8.3f %8.3f %8.3f %8.3f\n", "mean", report.MeanP, report.MeanR, report.MRR, report.MeanNDCG)
	return nil
}
