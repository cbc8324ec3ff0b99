package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := expandPatterns([]string{
		filepath.Join(dir, "*.json"),
		filepath.Join(dir, "a.json"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestExpandPatternsNoMatch(t *testing.T) {
	if _, err := expandPatterns([]string{filepath.Join(t.TempDir(), "*.json")}); err == nil {
		t.Fatal("expected error when nothing matches")
	}
}
