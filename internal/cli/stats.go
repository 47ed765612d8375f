package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsJSON   bool
	statsCorpus string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	statsCmd.Flags().StringVar(&statsCorpus, "corpus", "", "YAML corpus to summarise (with --memory)")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context(), statsCorpus)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Documents:      %d\n", stats.TotalDocs)
	fmt.Fprintf(out, "Total terms:    %d\n", stats.TotalTerms)
	fmt.Fprintf(out, "Distinct terms: %d\n", stats.DistinctTerms)
	fmt.Fprintf(out, "Avg doc length: %.1f terms\n", stats.AvgDocLen)
	if !stats.IndexedAt.IsZero() {
		fmt.Fprintf(out, "Last indexed:   %s\n", stats.IndexedAt.Format(time.RFC3339))
	}
	return nil
}
