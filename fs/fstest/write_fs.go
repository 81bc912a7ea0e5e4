package fstest

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/puyacodes/folder-hash/fs"
)

// TestWriteFS tests the write operations used when applying changes:
// Create, OpenFile, WriteFile and MkdirAll.
func TestWriteFS(t *testing.T, filesystem fs.Filesystem) {
	t.Run("CreateAndWrite", func(t *testing.T) {
		testData := []byte("test data for Create")

		f, err := filesystem.Create("created.txt")
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", "created.txt", err)
		}
		if _, err := f.Write(testData); err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		assertContent(t, filesystem, "created.txt", testData)
	})

	t.Run("WriteFileOverwrites", func(t *testing.T) {
		if err := filesystem.WriteFile("over.txt", []byte("a much longer first version"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v, want nil", "over.txt", err)
		}
		if err := filesystem.WriteFile("over.txt", []byte("short"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v, want nil", "over.txt", err)
		}
		assertContent(t, filesystem, "over.txt", []byte("short"))
	})

	t.Run("OpenFileTruncate", func(t *testing.T) {
		if err := filesystem.WriteFile("trunc.txt", []byte("0123456789"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): setup failed: %v", "trunc.txt", err)
		}
		f, err := filesystem.OpenFile("trunc.txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%q): got error %v, want nil", "trunc.txt", err)
		}
		if _, err := f.Write([]byte("xy")); err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		_ = f.Close()
		assertContent(t, filesystem, "trunc.txt", []byte("xy"))
	})

	t.Run("MkdirAll", func(t *testing.T) {
		if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", "a/b/c", err)
		}
		// Existing directories are fine.
		if err := filesystem.MkdirAll("a/b", 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", "a/b", err)
		}
		info, err := filesystem.Stat("a/b/c")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "a/b/c", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", "a/b/c")
		}
	})
}

// TestManageFS tests Remove, RemoveAll, Rename, TempDir and Walk.
func TestManageFS(t *testing.T, filesystem fs.Filesystem) {
	t.Run("Remove", func(t *testing.T) {
		if err := filesystem.WriteFile("gone.txt", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
		if err := filesystem.Remove("gone.txt"); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", "gone.txt", err)
		}
		if _, err := filesystem.Stat("gone.txt"); !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Stat(%q) after Remove: got %v, want fs.ErrNotExist", "gone.txt", err)
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		if err := filesystem.MkdirAll("tree/x/y", 0o755); err != nil {
			t.Fatalf("MkdirAll: setup failed: %v", err)
		}
		if err := filesystem.WriteFile("tree/x/y/z.txt", []byte("z"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
		if err := filesystem.RemoveAll("tree"); err != nil {
			t.Fatalf("RemoveAll(%q): got error %v, want nil", "tree", err)
		}
		if ok, _ := filesystem.Exists("tree"); ok {
			t.Errorf("Exists(%q) after RemoveAll: got true, want false", "tree")
		}
		if err := filesystem.RemoveAll("never-existed"); err != nil {
			t.Errorf("RemoveAll(%q): got error %v, want nil", "never-existed", err)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		if err := filesystem.WriteFile("old.txt", []byte("moved"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
		if err := filesystem.Rename("old.txt", "new.txt"); err != nil {
			t.Fatalf("Rename: got error %v, want nil", err)
		}
		assertContent(t, filesystem, "new.txt", []byte("moved"))
	})

	t.Run("TempDir", func(t *testing.T) {
		if err := filesystem.MkdirAll("scratch", 0o755); err != nil {
			t.Fatalf("MkdirAll: setup failed: %v", err)
		}
		first, err := filesystem.TempDir("scratch", "stage-")
		if err != nil {
			t.Fatalf("TempDir: got error %v, want nil", err)
		}
		second, err := filesystem.TempDir("scratch", "stage-")
		if err != nil {
			t.Fatalf("TempDir: got error %v, want nil", err)
		}
		if first == second {
			t.Errorf("TempDir returned %q twice, want unique names", first)
		}
		if !strings.HasPrefix(filepath.Base(first), "stage-") {
			t.Errorf("TempDir: got %q, want prefix %q", first, "stage-")
		}
	})

	t.Run("Walk", func(t *testing.T) {
		if err := filesystem.MkdirAll("walk/x/y", 0o755); err != nil {
			t.Fatalf("MkdirAll: setup failed: %v", err)
		}
		if err := filesystem.WriteFile("walk/x/y/z.txt", []byte("z"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}

		var files int
		err := filesystem.Walk("walk", func(_ string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				files++
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk(%q): got error %v, want nil", "walk", err)
		}
		if files != 1 {
			t.Errorf("Walk(%q): saw %d files, want 1", "walk", files)
		}
	})
}

func assertContent(t *testing.T, filesystem fs.Filesystem, path string, want []byte) {
	t.Helper()
	got, err := filesystem.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", path, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFile(%q): got %q, want %q", path, got, want)
	}
}
