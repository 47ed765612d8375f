//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"vsearch/internal/adapter/retriever"
	"vsearch/internal/domain"
	"vsearch/internal/usecase"
)

var index *retriever.Index[string]

func init() {
	index, _ = retriever.Build(map[string]string{})
}

func main() {
	c := make(chan struct{})

	js.Global().Set("vsearchIndex", js.FuncOf(indexContent))
	js.Global().Set("vsearchQuery", js.FuncOf(queryContent))
	js.Global().Set("vsearchClear", js.FuncOf(clearIndex))
	js.Global().Set("vsearchStats", js.FuncOf(getStats))

	<-c
}

func indexContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: vsearchIndex(id, text)")
	}

	id := args[0].String()
	next, err := index.With(id, args[1].String())
	if err != nil {
		return makeError("indexing failed: " + err.Error())
	}
	index = next

	c, _ := index.Concordance(id)
	return makeResult(map[string]interface{}{
		"success": true,
		"id":      id,
		"terms":   c.Len(),
	})
}

func queryContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: vsearchQuery(query, [topK])")
	}

	query := args[0].String()
	topK := 0
	if len(args) > 1 {
		topK = args[1].Int()
	}

	results, err := index.Search(query)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []domain.RankedResult[string]{}
	}

	return makeResult(map[string]interface{}{
		"results": results,
		"query":   query,
	})
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	index, _ = retriever.Build(map[string]string{})
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	concordances := make(map[string]domain.Concordance, index.Len())
	for _, id := range index.IDs() {
		concordances[id], _ = index.Concordance(id)
	}
	stats := usecase.ComputeStats(concordances)

	return makeResult(map[string]interface{}{
		"totalDocs":     stats.TotalDocs,
		"totalTerms":    stats.TotalTerms,
		"distinctTerms": stats.DistinctTerms,
		"avgDocLen":     stats.AvgDocLen,
		"ids":           index.IDs(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
