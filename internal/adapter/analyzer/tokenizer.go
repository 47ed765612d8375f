package analyzer

import (
	"strings"
)

// Tokenize lower-cases text and splits it on runs of whitespace.
// Punctuation is kept, so "dog" and "dog." are different tokens.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
