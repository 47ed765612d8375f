package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsearch/internal/domain"
)

func TestBuild(t *testing.T) {
	c, err := Build("this is a test document. this document is a sample.")
	require.NoError(t, err)

	assert.Equal(t, domain.Concordance{
		"this":      2,
		"is":        2,
		"a":         2,
		"test":      1,
		"document.": 1,
		"document":  1,
		"sample.":   1,
	}, c)
}

func TestBuild_CaseInsensitive(t *testing.T) {
	c, err := Build("Fox fox FOX")
	require.NoError(t, err)
	assert.Equal(t, domain.Concordance{"fox": 3}, c)
}

func TestBuild_Empty(t *testing.T) {
	for _, text := range []string{"", " ", "\n\t  "} {
		c, err := Build(text)
		require.NoError(t, err)
		assert.NotNil(t, c)
		assert.Empty(t, c)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"

	first, err := Build(text)
	require.NoError(t, err)
	second, err := Build(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_CountsArePositive(t *testing.T) {
	c, err := Build("a b a c a b")
	require.NoError(t, err)
	for term, n := range c {
		assert.GreaterOrEqual(t, n, 1, "term %q", term)
	}
	assert.Equal(t, 6, c.Total())
}

func TestBuild_InvalidUTF8(t *testing.T) {
	_, err := Build("ok \xff\xfe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildValue(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		c, err := BuildValue("Hello hello")
		require.NoError(t, err)
		assert.Equal(t, domain.Concordance{"hello": 2}, c)
	})

	t.Run("bytes", func(t *testing.T) {
		c, err := BuildValue([]byte("hello world"))
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
	})

	nonText := []struct {
		name  string
		value any
	}{
		{"int", 42},
		{"float", 3.14},
		{"bool", true},
		{"nil", nil},
		{"slice", []string{"hello"}},
		{"map", map[string]any{"text": "hello"}},
	}
	for _, tc := range nonText {
		t.Run(tc.name, func(t *testing.T) {
			c, err := BuildValue(tc.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, c)
		})
	}
}
