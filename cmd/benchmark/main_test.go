package main

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"vsearch/config"
)

func TestOpenIndex_MissingIndex(t *testing.T) {
	dir := t.TempDir()

	_, err := openIndex(dir)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := os.Stat(config.IndexDBPath(dir)); !os.IsNotExist(err) {
		t.Errorf("openIndex must not create a database, stat err = %v", err)
	}
}

func TestOpenIndex_Existing(t *testing.T) {
	dir := t.TempDir()
	if err := config.EnsureIndexDir(dir); err != nil {
		t.Fatal(err)
	}
	st, err := openIndex(dir)
	if err == nil {
		t.Fatal("expected error for a directory without index.db")
	}

	f, err := os.Create(config.IndexDBPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	st, err = openIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	st.Close()
}
