package usecase

import (
	"fmt"
	"math"

	"vsearch/internal/port"
)

// QueryMetrics holds retrieval quality for one judged query.
type QueryMetrics struct {
	Query     string  `json:"query"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	RR        float64 `json:"reciprocal_rank"`
	NDCG      float64 `json:"ndcg"`
}

// EvalReport aggregates metrics over all judged queries.
type EvalReport struct {
	K        int            `json:"k"`
	Queries  []QueryMetrics `json:"queries"`
	MeanP    float64        `json:"mean_precision"`
	MeanR    float64        `json:"mean_recall"`
	MRR      float64        `json:"mrr"`
	MeanNDCG float64        `json:"mean_ndcg"`
}

// Evaluate runs every judged query and scores the top k positive-score
// results against the relevant documents.
func Evaluate(searcher port.Searcher, judgements []Judgement, k int) (*EvalReport, error) {
	if k <= 0 {
		k = 10
	}
	report := &EvalReport{K: k}

	for _, j := range judgements {
		relevant := dedupe(j.Relevant)
		results, err := searcher.Search(j.Query)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", j.Query, err)
		}

		retrieved := make([]string, 0, k)
		for _, r := range results {
			if r.Score <= 0 || len(retrieved) == k {
				break
			}
			retrieved = append(retrieved, r.DocID)
		}

		m := QueryMetrics{
			Query:     j.Query,
			Precision: PrecisionAtK(retrieved, relevant, k),
			Recall:    RecallAtK(retrieved, relevant),
			RR:        ReciprocalRank(retrieved, relevant),
			NDCG:      BinaryNDCG(retrieved, relevant, k),
		}
		report.Queries = append(report.Queries, m)
		report.MeanP += m.Precision
		report.MeanR += m.Recall
		report.MRR += m.RR
		report.MeanNDCG += m.NDCG
	}

	if n := float64(len(report.Queries)); n > 0 {
		report.MeanP /= n
		report.MeanR /= n
		report.MRR /= n
		report.MeanNDCG /= n
	}
	return report, nil
}

// PrecisionAtK is the share of the k rank positions holding a relevant
// document. Positions left empty count as misses.
func PrecisionAtK(retrieved, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(countHits(retrieved[:min(k, len(retrieved))], relevant)) / float64(k)
}

// RecallAtK is the share of distinct relevant documents that were retrieved.
func RecallAtK(retrieved, relevant []string) float64 {
	relevantSet := toSet(relevant)
	if len(relevantSet) == 0 {
		return 0
	}
	return float64(countHits(retrieved, relevant)) / float64(len(relevantSet))
}

// ReciprocalRank is 1/rank of the first relevant document, or 0.
func ReciprocalRank(retrieved, relevant []string) float64 {
	relevantSet := toSet(relevant)
	for i, r := range retrieved {
		if relevantSet[r] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// BinaryNDCG computes nDCG@k with gain 1 for relevant documents.
func BinaryNDCG(retrieved, relevant []string, k int) float64 {
	relevantSet := toSet(relevant)
	gains := make([]float64, len(retrieved))
	for i, r := range retrieved {
		if relevantSet[r] {
			gains[i] = 1
		}
	}
	ideal := make([]float64, min(k, len(relevantSet)))
	for i := range ideal {
		ideal[i] = 1
	}
	return NDCG(gains, ideal)
}

func NDCG(scores, ideal []float64) float64 {
	dcg := calculateDCG(scores)
	idcg := calculateDCG(ideal)
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

func calculateDCG(scores []float64) float64 {
	dcg := 0.0
	for i, score := range scores {
		dcg += score / math.Log2(float64(i+2))
	}
	return dcg
}

func countHits(retrieved, relevant []string) int {
	relevantSet := toSet(relevant)
	hits := 0
	for _, r := range retrieved {
		if relevantSet[r] {
			hits++
		}
	}
	return hits
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
