package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"vsearch/config"
	"vsearch/internal/usecase"
)

func TestPrintResults_Text(t *testing.T) {
	var buf bytes.Buffer
	results := []usecase.ScoredDocResult{
		{Rank: 1, DocID: "a.txt", Path: "/notes/a.txt", Score: 0.5, Snippet: "the fox"},
		{Rank: 2, DocID: "b", Score: 0.25},
	}

	if err := printResults(&buf, "fox", results, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Found 2 results for: fox") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "  1. 0.5000  /notes/a.txt") {
		t.Errorf("path should be shown when known: %q", out)
	}
	if !strings.Contains(out, "  2. 0.2500  b") {
		t.Errorf("doc id should be shown without a path: %q", out)
	}
}

func TestPrintResults_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printResults(&buf, "fox", nil, true); err != nil {
		t.Fatal(err)
	}

	var decoded []usecase.ScoredDocResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestPresentation(t *testing.T) {
	cfg = config.DefaultConfig()
	defer func() {
		cfg = nil
		queryAll, queryTopK, queryMinScore = false, -1, -1
	}()

	tests := []struct {
		name     string
		all      bool
		topK     int
		minScore float64
		want     usecase.Presentation
	}{
		{"config defaults", false, -1, -1, usecase.Presentation{TopK: 10, HideZero: true}},
		{"flag overrides", false, 3, 0.2, usecase.Presentation{TopK: 3, MinScore: 0.2, HideZero: true}},
		{"unlimited", false, 0, -1, usecase.Presentation{HideZero: true}},
		{"all", true, 3, 0.2, usecase.Presentation{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queryAll, queryTopK, queryMinScore = tt.all, tt.topK, tt.minScore
			if got := presentation(); got != tt.want {
				t.Errorf("presentation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500ms", "<1s"},
		{"42s", "42s"},
		{"3m5s", "3m5s"},
		{"2h7m", "2h7m"},
	}
	for _, tt := range tests {
		d, err := time.ParseDuration(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
