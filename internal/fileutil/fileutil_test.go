package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b", "c")
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() error = %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("EnsureDir() did not create %s", dir)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for i := 0; i < 2; i++ {
			if err := EnsureDir(dir); err != nil {
				t.Fatalf("EnsureDir() call %d error = %v", i, err)
			}
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := EnsureDir(""); !errors.Is(err, ErrEmptyPath) {
			t.Errorf("EnsureDir(\"\") error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := EnsureDir(path); !errors.Is(err, ErrNotADir) {
			t.Errorf("EnsureDir(file) error = %v, want ErrNotADir", err)
		}
	})
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.png")
		if err := WriteFileAtomic(path, []byte("first")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "first" {
			t.Errorf("content = %q, want %q", got, "first")
		}
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.png")
		for _, content := range []string{"first", "second"} {
			if err := WriteFileAtomic(path, []byte(content)); err != nil {
				t.Fatalf("WriteFileAtomic(%q) error = %v", content, err)
			}
		}

		got, _ := os.ReadFile(path)
		if string(got) != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "out.png")
		if err := WriteFileAtomic(path, []byte("x")); err == nil {
			t.Error("WriteFileAtomic() expected error for missing directory")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := WriteFileAtomic("", nil); !errors.Is(err, ErrEmptyPath) {
			t.Errorf("WriteFileAtomic(\"\") error = %v, want ErrEmptyPath", err)
		}
	})
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"directory", dir, false},
		{"missing", filepath.Join(dir, "nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://unpkg.com/react@18/umd/react.production.min.js", false},
		{"http://localhost:8080/lib.js", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			err := ValidateURL(tt.input)
			if tt.wantErr != (err != nil) {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ValidateURL(%q) error = %v, want ErrInvalidURL", tt.input, err)
			}
		})
	}
}
