// Package vector compares concordances as sparse term-count vectors.
package vector

import (
	"fmt"
	"math"

	"vsearch/internal/domain"
)

// Vector is a validated concordance with its squared norm precomputed.
type Vector struct {
	Terms  domain.Concordance
	sqNorm float64
}

// New validates c and precomputes its norm.
func New(c domain.Concordance) (Vector, error) {
	if err := Validate(c); err != nil {
		return Vector{}, err
	}
	var sq float64
	for _, n := range c {
		sq += float64(n) * float64(n)
	}
	return Vector{Terms: c, sqNorm: sq}, nil
}

// Norm returns the Euclidean norm of the vector.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.sqNorm)
}

// IsZero reports whether v has zero magnitude.
func (v Vector) IsZero() bool {
	return v.sqNorm == 0
}

// Cosine returns the cosine similarity of v and o. Zero vectors score 0.
// Taking one square root of |v|²·|o|² keeps self-similarity at exactly 1.
func (v Vector) Cosine(o Vector) float64 {
	if v.IsZero() || o.IsZero() {
		return 0
	}
	dot := Dot(v.Terms, o.Terms)
	if dot == 0 {
		return 0
	}
	return dot / math.Sqrt(v.sqNorm*o.sqNorm)
}

// Validate reports whether c is usable as a term-count vector.
// A nil concordance is the zero vector; negative counts are rejected.
func Validate(c domain.Concordance) error {
	for term, n := range c {
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for term %q", domain.ErrInvalidInput, n, term)
		}
	}
	return nil
}

// Magnitude returns the Euclidean norm of c.
func Magnitude(c domain.Concordance) (float64, error) {
	v, err := New(c)
	if err != nil {
		return 0, err
	}
	return v.Norm(), nil
}

// Dot returns the dot product of a and b. It walks the smaller of the two.
func Dot(a, b domain.Concordance) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, n := range a {
		if m, ok := b[term]; ok {
			dot += float64(n) * float64(m)
		}
	}
	return dot
}

// Similarity returns the cosine similarity of a and b, in [0, 1].
func Similarity(a, b domain.Concordance) (float64, error) {
	va, err := New(a)
	if err != nil {
		return 0, err
	}
	vb, err := New(b)
	if err != nil {
		return 0, err
	}
	return va.Cosine(vb), nil
}
