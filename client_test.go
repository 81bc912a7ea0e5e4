package folderhash

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
	"github.com/puyacodes/folder-hash/fs/billy"
	"github.com/puyacodes/folder-hash/internal/testutil"
)

// Helper types and functions for testing
type logEntry struct {
	level string
	msg   string
	path  string
}

type testLogHandler struct {
	logs *[]logEntry
}

func (h *testLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *testLogHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := logEntry{
		level: r.Level.String(),
		msg:   r.Message,
	}

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "path" {
			entry.path = a.Value.String()
		}
		return true
	})

	*h.logs = append(*h.logs, entry)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(name string) slog.Handler {
	return h
}

func newMemClient(t *testing.T, opts ...fhtypes.Option) (*Client, *billy.FS) {
	t.Helper()
	memFS := billy.NewMemory()
	client, err := New(append([]fhtypes.Option{WithFilesystem(memFS)}, opts...)...)
	require.NoError(t, err)
	return client, memFS
}

// openCountingFS tracks how many files are open at the same time.
type openCountingFS struct {
	fs.Filesystem

	mu     sync.Mutex
	open   int
	peak   int
	opened int
}

func (c *openCountingFS) Open(name string) (fs.File, error) {
	f, err := c.Filesystem.Open(name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.open++
	c.opened++
	if c.open > c.peak {
		c.peak = c.open
	}
	c.mu.Unlock()
	return &countedFile{File: f, fs: c}, nil
}

type countedFile struct {
	fs.File
	fs *openCountingFS
}

func (f *countedFile) Close() error {
	f.fs.mu.Lock()
	f.fs.open--
	f.fs.mu.Unlock()
	return f.File.Close()
}

func sampleRootHash() string {
	b := testutil.DirMD5(testutil.MD5Hex("world"))
	return testutil.DirMD5(b, testutil.MD5Hex("hello"))
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client, err := New()
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotNil(t, client.fs)
		assert.NotNil(t, client.logger)
		assert.Empty(t, client.stagingDir)
	})

	t.Run("unknown digest algorithm", func(t *testing.T) {
		_, err := New(WithFilesystem(billy.NewMemory()), WithDigestAlgorithm("crc32"))
		require.Error(t, err)
		assert.True(t, fherrors.HasCode(err, fherrors.CodeInvalidInput))
	})

	t.Run("staging directory must exist", func(t *testing.T) {
		_, err := New(WithFilesystem(billy.NewMemory()), WithStagingDir("/nowhere"))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("metrics registered once", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := New(WithFilesystem(billy.NewMemory()), WithMetrics(reg))
		require.NoError(t, err)

		_, err = New(WithFilesystem(billy.NewMemory()), WithMetrics(reg))
		require.Error(t, err)
	})

	t.Run("existing staging directory", func(t *testing.T) {
		memFS := billy.NewMemory()
		require.NoError(t, memFS.MkdirAll("/staging", 0o755))
		client, err := New(WithFilesystem(memFS), WithStagingDir("/staging"))
		require.NoError(t, err)
		assert.Equal(t, "/staging", client.stagingDir)
	})
}

func TestClient_Hash(t *testing.T) {
	ctx := context.Background()

	t.Run("two invocations agree", func(t *testing.T) {
		dir := t.TempDir()
		testutil.SampleTree(t, billy.NewBaseOSFS(), dir)

		first, err := New()
		require.NoError(t, err)
		second, err := New()
		require.NoError(t, err)

		a, err := first.Hash(ctx, dir)
		require.NoError(t, err)
		b, err := second.Hash(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, sampleRootHash(), a.Hash)
		assert.Equal(t, a.Hash, b.Hash)
	})

	t.Run("default client reads one file at a time", func(t *testing.T) {
		counting := &openCountingFS{Filesystem: billy.NewMemory()}
		testutil.WriteTree(t, counting, "/root", map[string]string{
			"a.txt": "1", "b.txt": "2", "c.txt": "3",
			"d.txt": "4", "e.txt": "5", "f.txt": "6",
		})

		client, err := New(WithFilesystem(counting))
		require.NoError(t, err)

		_, err = client.Hash(ctx, "/root")
		require.NoError(t, err)
		assert.Equal(t, 6, counting.opened)
		assert.Equal(t, 1, counting.peak)
	})

	t.Run("progress sees every entry", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")

		rec := &testutil.EventRecorder{}
		_, err := client.Hash(ctx, "/A", WithProgress(rec.Record))
		require.NoError(t, err)

		assert.Equal(t, 2, rec.Count(fhtypes.FileEntering))
		assert.Equal(t, 1, rec.Count(fhtypes.SubFolderEntering))
	})

	t.Run("default exclusions", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/A", map[string]string{
			"node_modules/dep/index.js": "module.exports = 1",
			"debug.log":                 "noise",
		})

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)
		assert.Equal(t, sampleRootHash(), tree.Hash)
	})

	t.Run("appended exclusions", func(t *testing.T) {
		client, memFS := newMemClient(t, WithExcludeDirs(",b"))
		testutil.SampleTree(t, memFS, "/A")

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)
		assert.Equal(t, testutil.DirMD5(testutil.MD5Hex("hello")), tree.Hash)
	})

	t.Run("digest algorithm", func(t *testing.T) {
		client, memFS := newMemClient(t, WithDigestAlgorithm(digest.SHA256))
		testutil.WriteTree(t, memFS, "/A", map[string]string{"x.txt": "hello"})

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)
		require.Len(t, tree.Files, 1)
		assert.Equal(t, digest.SHA256.FromString("hello").Encoded(), tree.Files[0].Hash)
	})

	t.Run("missing directory", func(t *testing.T) {
		client, _ := newMemClient(t)

		_, err := client.Hash(ctx, "/missing")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestClient_Diff(t *testing.T) {
	ctx := context.Background()

	t.Run("against an empty directory", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/E"))
		require.NoError(t, err)

		assert.Equal(t, []fhtypes.ChangeRecord{
			{From: "/A/b", To: "/E/b", Kind: fhtypes.MissingSubDir, Dir: true, Name: "b"},
			{From: "/A", To: "/E/", Kind: fhtypes.MissingFiles, All: true},
		}, changes)
	})

	t.Run("identical trees", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/A"))
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("independent copies with equal content", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.SampleTree(t, memFS, "/B")

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/B"))
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("names match case-insensitively", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.WriteTree(t, memFS, "/A", map[string]string{"A.txt": "same", "x.txt": "new"})
		testutil.WriteTree(t, memFS, "/B", map[string]string{"a.txt": "same", "x.txt": "old"})

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/B"))
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, fhtypes.FileMismatch, changes[0].Kind)
		assert.Equal(t, "/B/x.txt", changes[0].To)
	})

	t.Run("entries only in the target are ignored", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.WriteTree(t, memFS, "/A", map[string]string{"x.txt": "hello"})
		testutil.WriteTree(t, memFS, "/B", map[string]string{
			"x.txt":      "hello",
			"extra.txt":  "only here",
			"more/z.txt": "only here",
		})

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/B"))
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("change observer", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		rec := &testutil.ChangeRecorder{}
		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/E"), WithOnChange(rec.Record))
		require.NoError(t, err)
		require.Len(t, rec.Changes, len(changes))
		for i, c := range changes {
			assert.Equal(t, c.To, rec.Changes[i].Path)
			assert.Equal(t, c.Kind, rec.Changes[i].Kind)
		}
	})

	t.Run("snapshot against a live directory", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/B", map[string]string{"x.txt": "hello"})

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)
		require.NoError(t, client.SaveSnapshot(ctx, tree, "/snapshots/a.json"))

		changes, err := client.Diff(ctx, FromPath("/snapshots/a.json"), FromPath("/B"),
			WithFromAnchor("/A"))
		require.NoError(t, err)
		assert.Equal(t, []fhtypes.ChangeRecord{
			{From: "/A/b", To: "/B/b", Kind: fhtypes.MissingSubDir, Dir: true, Name: "b"},
		}, changes)
	})

	t.Run("snapshot target anchors at its directory", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/B", map[string]string{"x.txt": "hello"})

		tree, err := client.Hash(ctx, "/B")
		require.NoError(t, err)
		require.NoError(t, client.SaveSnapshot(ctx, tree, "/B/.snapshot.yaml"))

		changes, err := client.Diff(ctx, FromPath("/A"), FromPath("/B/.snapshot.yaml"))
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, "/B/b", changes[0].To)
	})

	t.Run("in-memory source defaults to the working directory", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)

		changes, err := client.Diff(ctx, FromTree(tree), FromPath("/E"))
		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Equal(t, "./b", changes[0].From)
		assert.Equal(t, ".", changes[1].From)
	})

	t.Run("in-memory target needs an anchor", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")

		_, err := client.Diff(ctx, FromPath("/A"), FromTree(&fhtypes.TreeNode{Name: "E"}))
		require.Error(t, err)
		assert.True(t, IsMissingTargetPath(err))

		changes, err := client.Diff(ctx, FromPath("/A"), FromTree(&fhtypes.TreeNode{Name: "E"}),
			WithToAnchor("/E"))
		require.NoError(t, err)
		assert.Len(t, changes, 2)
	})

	t.Run("missing source", func(t *testing.T) {
		client, memFS := newMemClient(t)
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		_, err := client.Diff(ctx, FromPath("/missing"), FromPath("/E"))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))

		_, err = client.Diff(ctx, FromPath("/E"), FromPath("/missing.json"))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("unparsable snapshot", func(t *testing.T) {
		client, memFS := newMemClient(t)
		require.NoError(t, memFS.MkdirAll("/E", 0o755))
		require.NoError(t, memFS.WriteFile("/broken.json", []byte("{not json"), 0o644))

		_, err := client.Diff(ctx, FromPath("/broken.json"), FromPath("/E"))
		require.Error(t, err)
		assert.True(t, IsInvalidSnapshot(err))
	})
}

func TestClient_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("populates an empty directory", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		applied, err := client.Apply(ctx, FromPath("/A"), FromPath("/E"))
		require.NoError(t, err)
		assert.Len(t, applied, 2)

		tree, err := client.Hash(ctx, "/E")
		require.NoError(t, err)
		assert.Equal(t, sampleRootHash(), tree.Hash)
	})

	t.Run("populates an empty directory on disk", func(t *testing.T) {
		root := t.TempDir()
		src := testutil.SampleTree(t, billy.NewBaseOSFS(), filepath.Join(root, "A"))
		dst := filepath.Join(root, "E")
		require.NoError(t, billy.NewBaseOSFS().MkdirAll(dst, 0o755))

		client, err := New()
		require.NoError(t, err)

		_, err = client.Apply(ctx, FromPath(src), FromPath(dst))
		require.NoError(t, err)

		want, err := client.Hash(ctx, src)
		require.NoError(t, err)
		got, err := client.Hash(ctx, dst)
		require.NoError(t, err)
		assert.Equal(t, want.Hash, got.Hash)
	})

	t.Run("overwrites changed files and keeps extra ones", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/B", map[string]string{
			"x.txt":     "stale",
			"b/y.txt":   "world",
			"keep.conf": "local",
		})

		applied, err := client.Apply(ctx, FromPath("/A"), FromPath("/B"))
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, fhtypes.FileMismatch, applied[0].Kind)

		data, err := memFS.ReadFile("/B/x.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		data, err = memFS.ReadFile("/B/keep.conf")
		require.NoError(t, err)
		assert.Equal(t, "local", string(data))
	})

	t.Run("invalid compression level fails before any work", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		require.NoError(t, memFS.MkdirAll("/E", 0o755))

		applied, err := client.Apply(ctx, FromPath("/A"), FromPath("/E"),
			WithCompression("/out/changes.tar.gz"),
			WithCompressionLevel(10),
		)
		require.Error(t, err)
		assert.True(t, IsInvalidCompressionLevel(err))
		assert.Empty(t, applied)

		entries, err := memFS.ReadDir("/E")
		require.NoError(t, err)
		assert.Empty(t, entries)
		exists, err := memFS.Exists("/out")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("compressed apply with nothing to do", func(t *testing.T) {
		memFS := billy.NewMemory()
		require.NoError(t, memFS.MkdirAll("/staging", 0o755))
		client, err := New(WithFilesystem(memFS), WithStagingDir("/staging"))
		require.NoError(t, err)
		testutil.SampleTree(t, memFS, "/A")
		testutil.SampleTree(t, memFS, "/B")

		applied, err := client.Apply(ctx, FromPath("/A"), FromPath("/B"),
			WithCompression("/out/changes.tar.gz"))
		require.NoError(t, err)
		assert.Empty(t, applied)

		exists, err := memFS.Exists("/out/changes.tar.gz")
		require.NoError(t, err)
		assert.False(t, exists)
		leftovers, err := memFS.ReadDir("/staging")
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("compressed apply writes an archive", func(t *testing.T) {
		var logs []logEntry
		logger := slog.New(&testLogHandler{logs: &logs})

		memFS := billy.NewMemory()
		require.NoError(t, memFS.MkdirAll("/staging", 0o755))
		client, err := New(WithFilesystem(memFS), WithStagingDir("/staging"), WithLogger(logger))
		require.NoError(t, err)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/B", map[string]string{"x.txt": "stale"})

		applied, err := client.Apply(ctx, FromPath("/A"), FromPath("/B"),
			WithCompression("/out/changes.tar.gz"),
			WithCompressionLevel(9),
		)
		require.NoError(t, err)
		assert.Len(t, applied, 2)

		// The target is untouched.
		data, err := memFS.ReadFile("/B/x.txt")
		require.NoError(t, err)
		assert.Equal(t, "stale", string(data))

		leftovers, err := memFS.ReadDir("/staging")
		require.NoError(t, err)
		assert.Empty(t, leftovers)

		assert.Equal(t, map[string]string{"x.txt": "hello", "b/y.txt": "world"},
			readTarGz(t, memFS, "/out/changes.tar.gz"))

		var messages []string
		for _, l := range logs {
			if l.level == slog.LevelInfo.String() {
				messages = append(messages, l.msg)
			}
		}
		assert.Equal(t, []string{"staging directory created", "archive written"}, messages)
	})

	t.Run("fail-fast returns the applied prefix", func(t *testing.T) {
		client, memFS := newMemClient(t)
		testutil.SampleTree(t, memFS, "/A")
		testutil.WriteTree(t, memFS, "/E", map[string]string{"x.txt": "stale", "b/y.txt": "old"})

		tree, err := client.Hash(ctx, "/A")
		require.NoError(t, err)
		require.NoError(t, memFS.Remove("/A/x.txt"))

		applied, err := client.Apply(ctx, FromTree(tree), FromPath("/E"), WithDiff(WithFromAnchor("/A")))
		require.Error(t, err)
		assert.True(t, IsIOFailure(err))
		require.Len(t, applied, 1)
		assert.Equal(t, "/E/b/y.txt", applied[0].To)

		data, err := memFS.ReadFile("/E/b/y.txt")
		require.NoError(t, err)
		assert.Equal(t, "world", string(data))
	})
}

func TestClient_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	client, memFS := newMemClient(t, WithMetrics(reg))
	testutil.SampleTree(t, memFS, "/A")
	require.NoError(t, memFS.MkdirAll("/E", 0o755))

	_, err := client.Apply(ctx, FromPath("/A"), FromPath("/E"))
	require.NoError(t, err)
	_, err = client.Hash(ctx, "/missing")
	require.Error(t, err)

	want := `
# HELP folderhash_changes_applied_total Total change records executed
# TYPE folderhash_changes_applied_total counter
folderhash_changes_applied_total{kind="missing-files"} 1
folderhash_changes_applied_total{kind="missing-subdir"} 1
# HELP folderhash_operation_failures_total Total failed operations
# TYPE folderhash_operation_failures_total counter
folderhash_operation_failures_total{operation="hash"} 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(reg, strings.NewReader(want),
		"folderhash_changes_applied_total", "folderhash_operation_failures_total"))
}

func TestClient_Snapshot(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"/snap/tree.json", "/snap/tree.yaml"} {
		t.Run(filepath.Ext(name), func(t *testing.T) {
			client, memFS := newMemClient(t)
			testutil.SampleTree(t, memFS, "/A")

			tree, err := client.Hash(ctx, "/A")
			require.NoError(t, err)
			require.NoError(t, client.SaveSnapshot(ctx, tree, name))

			loaded, err := client.LoadSnapshot(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, tree, loaded)
		})
	}

	t.Run("nil tree", func(t *testing.T) {
		client, _ := newMemClient(t)
		err := client.SaveSnapshot(ctx, nil, "/snap/tree.json")
		require.Error(t, err)
		assert.True(t, IsInvalidSnapshot(err))
	})

	t.Run("missing file", func(t *testing.T) {
		client, _ := newMemClient(t)
		_, err := client.LoadSnapshot(ctx, "/snap/none.json")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestRenderChanges(t *testing.T) {
	changes := []fhtypes.ChangeRecord{
		{From: "/A/b", To: "/E/b", Kind: fhtypes.MissingSubDir, Dir: true, Name: "b"},
		{From: "/A", To: "/E/", Kind: fhtypes.MissingFiles, All: true},
	}

	out, err := RenderChanges(changes, RenderReport)
	require.NoError(t, err)
	assert.Equal(t, "/E misses b sub-dir.\n/E/ is empty and misses all files.", out)

	_, err = RenderChanges(changes, RenderKind("yaml"))
	require.Error(t, err)
}

func readTarGz(t *testing.T, memFS *billy.FS, p string) map[string]string {
	t.Helper()
	data, err := memFS.ReadFile(p)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()

	files := map[string]string{}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = string(content)
	}
	return files
}
