package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/puyacodes/folder-hash/fs"
)

// TestReadFS tests the read-only operations used while hashing a tree:
// Open, Stat, ReadDir, ReadFile and Exists.
func TestReadFS(t *testing.T, filesystem fs.Filesystem) {
	testContent := []byte("test file content")

	if err := filesystem.MkdirAll("testdir/sub", 0o755); err != nil {
		t.Fatalf("MkdirAll(testdir/sub): setup failed: %v", err)
	}
	if err := filesystem.WriteFile("testdir/testfile.txt", testContent, 0o644); err != nil {
		t.Fatalf("WriteFile(testdir/testfile.txt): setup failed: %v", err)
	}

	t.Run("Open", func(t *testing.T) {
		f, err := filesystem.Open("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v, want nil", err)
		}
		if !bytes.Equal(data, testContent) {
			t.Errorf("ReadAll(): got %q, want %q", data, testContent)
		}
	})

	t.Run("StatFile", func(t *testing.T) {
		info, err := filesystem.Stat("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = true, want false", "testdir/testfile.txt")
		}
		if info.Size() != int64(len(testContent)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", "testdir/testfile.txt", info.Size(), len(testContent))
		}
	})

	t.Run("StatDir", func(t *testing.T) {
		info, err := filesystem.Stat("testdir")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "testdir", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", "testdir")
		}
	})

	t.Run("ReadDir", func(t *testing.T) {
		entries, err := filesystem.ReadDir("testdir")
		if err != nil {
			t.Fatalf("ReadDir(%q): got error %v, want nil", "testdir", err)
		}
		if len(entries) != 2 {
			t.Fatalf("ReadDir(%q): got %d entries, want 2", "testdir", len(entries))
		}
		kinds := map[string]bool{}
		for _, e := range entries {
			kinds[e.Name()] = e.IsDir()
		}
		if isDir, ok := kinds["sub"]; !ok || !isDir {
			t.Errorf("ReadDir(%q): want directory entry %q", "testdir", "sub")
		}
		if isDir, ok := kinds["testfile.txt"]; !ok || isDir {
			t.Errorf("ReadDir(%q): want file entry %q", "testdir", "testfile.txt")
		}
	})

	t.Run("ReadFile", func(t *testing.T) {
		data, err := filesystem.ReadFile("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", "testdir/testfile.txt", err)
		}
		if !bytes.Equal(data, testContent) {
			t.Errorf("ReadFile(%q): got %q, want %q", "testdir/testfile.txt", data, testContent)
		}
	})

	t.Run("OpenNotExist", func(t *testing.T) {
		_, err := filesystem.Open("nonexistent")
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", "nonexistent", err)
		}
	})

	t.Run("StatNotExist", func(t *testing.T) {
		_, err := filesystem.Stat("nonexistent")
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", "nonexistent", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		for path, want := range map[string]bool{
			"testdir/testfile.txt": true,
			"testdir":              true,
			"nonexistent":          false,
		} {
			got, err := filesystem.Exists(path)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", path, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", path, got, want)
			}
		}
	})
}
