package usecase

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadCorpus decodes a YAML mapping of document ID to text. Keys of any
// scalar type are converted to strings; values are returned as decoded so
// the concordance builder can reject anything that is not text.
// Numeric keys therefore compare as strings when scores tie: "10" sorts
// before "2".
func LoadCorpus(r io.Reader) (map[string]any, error) {
	var raw map[any]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}

	corpus := make(map[string]any, len(raw))
	for k, v := range raw {
		id := fmt.Sprint(k)
		if _, dup := corpus[id]; dup {
			return nil, fmt.Errorf("duplicate document id %q in corpus", id)
		}
		corpus[id] = v
	}
	return corpus, nil
}

// Judgement lists the documents relevant to one query.
type Judgement struct {
	Query    string   `yaml:"query"`
	Relevant []string `yaml:"relevant"`
}

// LoadJudgements decodes a YAML relevance file:
//
//	judgements:
//	  - query: fox
//	    relevant: [a.txt, b.txt]
func LoadJudgements(r io.Reader) ([]Judgement, error) {
	var doc struct {
		Judgements []Judgement `yaml:"judgements"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode judgements: %w", err)
	}
	return doc.Judgements, nil
}
