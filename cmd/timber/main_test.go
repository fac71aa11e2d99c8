package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	write := func(w io.Writer) (int, error) {
		return w.Write([]byte("print(1)\n"))
	}

	t.Run("no entries creates no file", func(t *testing.T) {
		saveHistory(path, 0, write)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatal("history file created for a session with no entries")
		}
	})

	t.Run("no entries keeps existing file", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		saveHistory(path, 0, write)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != "old\n" {
			t.Errorf("history = %q, want untouched %q", data, "old\n")
		}
	})

	t.Run("entries write the file", func(t *testing.T) {
		saveHistory(path, 2, write)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != "print(1)\n" {
			t.Errorf("history = %q, want %q", data, "print(1)\n")
		}
	})
}
