package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"vsearch/config"
	"vsearch/internal/adapter/retriever"
	"vsearch/internal/adapter/store"
	"vsearch/internal/domain"
)

func main() {
	indexPath := flag.String("index", ".", "Path to indexed directory")
	query := flag.String("q", "", "Query to test")
	runs := flag.Int("n", 20, "Timed runs per mode")
	workers := flag.Int("workers", 0, "Pool size (default from config)")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -index ./notes -q \"query\"")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Index load time from .vsearch/index.db")
		fmt.Println("  2. Sequential search latency")
		fmt.Println("  3. Pooled search latency and whether both rankings agree")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = cfg.Search.Workers
	}

	st, err := openIndex(*indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	start := time.Now()
	concordances, err := st.LoadConcordances()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading concordances: %v\n", err)
		os.Exit(1)
	}
	idx, err := retriever.FromConcordances(concordances)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	pool, err := ants.NewPool(*workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Release()

	fmt.Println("SEARCH LATENCY BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Documents indexed: %d\n", idx.Len())
	fmt.Printf("Index load time:   %s\n", loadTime)
	fmt.Printf("Pool workers:      %d\n", *workers)
	fmt.Printf("Query:             \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	seq, seqTimes, err := timeRuns(*runs, func() ([]domain.RankedResult[string], error) {
		return idx.Search(*query)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	par, parTimes, err := timeRuns(*runs, func() ([]domain.RankedResult[string], error) {
		return idx.SearchParallel(*query, pool)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}

	report("sequential", seqTimes)
	report("pooled", parTimes)

	fmt.Println(strings.Repeat("=", 70))
	if slices.Equal(seq, par) {
		fmt.Println("Rankings: IDENTICAL")
	} else {
		fmt.Println("Rankings: DIFFER - pooled search is not deterministic")
		os.Exit(1)
	}

	fmt.Println("\nTop matches:")
	for i, r := range seq[:min(5, len(seq))] {
		fmt.Printf("  %d. %.4f  %s\n", i+1, r.Score, r.DocID)
	}
}

// openIndex opens an existing index without creating one.
func openIndex(dir string) (*store.BoltStore, error) {
	dbPath := config.IndexDBPath(dir)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no index at %s, run 'vsearch index' first: %w", dbPath, err)
	}
	return store.NewBoltStore(dbPath)
}

func timeRuns(n int, search func() ([]domain.RankedResult[string], error)) ([]domain.RankedResult[string], []time.Duration, error) {
	var last []domain.RankedResult[string]
	times := make([]time.Duration, 0, n)
	for i := 0; i < max(n, 1); i++ {
		start := time.Now()
		results, err := search()
		if err != nil {
			return nil, nil, err
		}
		times = append(times, time.Since(start))
		last = results
	}
	return last, times, nil
}

func report(mode string, times []time.Duration) {
	slices.Sort(times)
	var total time.Duration
	for _, t := range times {
		total += t
	}
	p95 := times[(len(times)*95+99)/100-1]
	fmt.Printf("%-10s  min %-12s  median %-12s  p95 %-12s  mean %s\n",
		mode, times[0], times[len(times)/2], p95, total/time.Duration(len(times)))
}
