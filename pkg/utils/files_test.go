package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "user_feedback.json")

	if err := WriteFileAtomic(path, []byte("[]")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte(`[{"a":1}]`)); err != nil {
		t.Fatalf("WriteFileAtomic overwrite failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(got) != `[{"a":1}]` {
		t.Errorf("Expected overwritten content, got %s", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestListFilesByExt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wav", "a.WAV", "notes.txt", "c.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := MakeDir(filepath.Join(dir, "sub.wav")); err != nil {
		t.Fatal(err)
	}

	files, err := ListFilesByExt(dir, ".wav")
	if err != nil {
		t.Fatalf("ListFilesByExt failed: %v", err)
	}
	want := []string{"a.WAV", "b.wav", "c.wav"}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %v", len(want), files)
	}
	for i, name := range want {
		if filepath.Base(files[i]) != name {
			t.Errorf("Expected %s at %d, got %s", name, i, files[i])
		}
	}
}

func TestListFilesByExtMissingDir(t *testing.T) {
	if _, err := ListFilesByExt(filepath.Join(t.TempDir(), "missing"), ".wav"); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	os.WriteFile(src, []byte("x"), 0o644)

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Expected source to be gone")
	}
	if err := MoveFile(src, dst); err == nil {
		t.Error("Expected error moving a missing file")
	}
}
