package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Search.TopK)
	}
	if cfg.Search.MinScore != 0 {
		t.Errorf("expected MinScore=0, got %f", cfg.Search.MinScore)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected TTL=5m, got %s", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vsearch.yaml")

	content := `
index:
  workers: 2
search:
  top_k: 3
  min_score: 0.25
cache:
  ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Index.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Index.Workers)
	}
	if cfg.Search.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Search.TopK)
	}
	if cfg.Search.MinScore != 0.25 {
		t.Errorf("expected MinScore=0.25, got %f", cfg.Search.MinScore)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected TTL=30s, got %s", cfg.Cache.TTL)
	}
	if len(cfg.Index.Includes) == 0 {
		t.Error("expected default includes to survive partial config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "vsearch.yaml")
	if err := os.WriteFile(configPath, []byte("search: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".vsearch"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
search:
  top_k: 42
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".vsearch", "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.TopK != 42 {
		t.Errorf("expected TopK=42, got %d", cfg.Search.TopK)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("VSEARCH_LOG_LEVEL", "debug")
	t.Setenv("VSEARCH_TOP_K", "7")
	t.Setenv("VSEARCH_MIN_SCORE", "0.5")
	t.Setenv("VSEARCH_CACHE", "false")
	t.Setenv("VSEARCH_INCLUDES", "**/*.txt, **/*.org")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Search.TopK != 7 {
		t.Errorf("expected TopK=7, got %d", cfg.Search.TopK)
	}
	if cfg.Search.MinScore != 0.5 {
		t.Errorf("expected MinScore=0.5, got %f", cfg.Search.MinScore)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled")
	}
	if len(cfg.Index.Includes) != 2 || cfg.Index.Includes[1] != "**/*.org" {
		t.Errorf("unexpected includes: %v", cfg.Index.Includes)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("VSEARCH_TOP_K", "lots")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric VSEARCH_TOP_K")
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("invalid override should leave TopK unchanged, got %d", cfg.Search.TopK)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.MinScore = 1.5
	cfg.Search.TopK = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vsearch.yaml")
	cfg := DefaultConfig()
	cfg.Search.TopK = 5

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Search.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", loaded.Search.TopK)
	}
}

func TestIndexDBPath(t *testing.T) {
	path := IndexDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".vsearch", "index.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
