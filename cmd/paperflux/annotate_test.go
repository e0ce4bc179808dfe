package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := expandInputs([]string{filepath.Join(dir, "*.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf")}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("glob expansion = %v, want %v", docs, want)
	}

	// Plain path plus overlapping glob deduplicates.
	docs, err = expandInputs([]string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "*.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("dedup failed: %v", docs)
	}

	if _, err := expandInputs([]string{filepath.Join(dir, "missing.pdf")}); err == nil {
		t.Error("expected error for missing input")
	}
	if _, err := expandInputs([]string{filepath.Join(dir, "*.epub")}); err == nil {
		t.Error("expected error for glob with no matches")
	}
}
