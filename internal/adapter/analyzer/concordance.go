package analyzer

import (
	"fmt"
	"unicode/utf8"

	"vsearch/internal/domain"
)

// Build converts text into a concordance of term counts.
// Empty or whitespace-only text yields an empty concordance.
func Build(text string) (domain.Concordance, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}

	tokens := Tokenize(text)
	c := make(domain.Concordance, len(tokens))
	for _, token := range tokens {
		c[token]++
	}
	return c, nil
}

// BuildValue is Build for values decoded from untyped sources such as
// YAML or JSON corpora. Only strings and byte slices are text.
func BuildValue(v any) (domain.Concordance, error) {
	switch t := v.(type) {
	case string:
		return Build(t)
	case []byte:
		return Build(string(t))
	case nil:
		return nil, fmt.Errorf("%w: expected text, got nil", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: expected text, got %T", domain.ErrInvalidInput, v)
	}
}
