package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveThenLoad_YieldsEqualMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	s, err := Open(path)
	require.NoError(t, err)

	mtime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.Put("/docs/a.txt", Record{
		FileID:         "file-1",
		Fingerprint:    Fingerprint{SizeBytes: 100, ModTime: mtime},
		ContentIndexed: true,
		ChunkCount:     3,
		LastIndexedAt:  mtime,
	})
	require.NoError(t, s.Save())

	reloaded, err := Open(path)
	require.NoError(t, err)

	rec, ok := reloaded.Get("/docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, "file-1", rec.FileID)
	assert.Equal(t, int64(100), rec.Fingerprint.SizeBytes)
	assert.True(t, mtime.Equal(rec.Fingerprint.ModTime))
	assert.Equal(t, 3, rec.ChunkCount)
}

func TestStore_Diff_ClassifiesNewModifiedUnchangedDeleted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	s, err := Open(path)
	require.NoError(t, err)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Put("/a.txt", Record{Fingerprint: Fingerprint{SizeBytes: 10, ModTime: t0}})
	s.Put("/b.txt", Record{Fingerprint: Fingerprint{SizeBytes: 20, ModTime: t0}})
	s.Put("/gone.txt", Record{Fingerprint: Fingerprint{SizeBytes: 5, ModTime: t0}})

	observed := map[string]Fingerprint{
		"/a.txt": {SizeBytes: 10, ModTime: t0}, // unchanged
		"/b.txt": {SizeBytes: 20, ModTime: t1}, // modified: mtime differs
		"/c.txt": {SizeBytes: 1, ModTime: t1},  // new
	}

	newPaths, modified, unchanged, deleted := s.Diff(observed)
	assert.Equal(t, []string{"/c.txt"}, newPaths)
	assert.Equal(t, []string{"/b.txt"}, modified)
	assert.Equal(t, []string{"/a.txt"}, unchanged)
	assert.Equal(t, []string{"/gone.txt"}, deleted)
}

func TestStore_Diff_SecondPassWithNoChangesReportsNothingButUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	s, err := Open(path)
	require.NoError(t, err)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fp := Fingerprint{SizeBytes: 42, ModTime: t0}
	s.Put("/only.txt", Record{Fingerprint: fp})
	require.NoError(t, s.Save())

	observed := map[string]Fingerprint{"/only.txt": fp}
	newPaths, modified, unchanged, deleted := s.Diff(observed)
	assert.Empty(t, newPaths)
	assert.Empty(t, modified)
	assert.Empty(t, deleted)
	assert.Equal(t, []string{"/only.txt"}, unchanged)
}

func TestStore_Diff_SizeOnlyChangeCountsAsModified(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Put("/x.txt", Record{Fingerprint: Fingerprint{SizeBytes: 100, ModTime: t0}})

	observed := map[string]Fingerprint{"/x.txt": {SizeBytes: 200, ModTime: t0}}
	newPaths, modified, unchanged, deleted := s.Diff(observed)
	assert.Empty(t, newPaths)
	assert.Empty(t, unchanged)
	assert.Empty(t, deleted)
	assert.Equal(t, []string{"/x.txt"}, modified)
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count())
}

func TestOpen_UnknownSchemaVersionTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	s, err := Open(path)
	require.NoError(t, err)
	s.Put("/a.txt", Record{Fingerprint: Fingerprint{SizeBytes: 1}})
	require.NoError(t, s.Save())

	// Simulate an old/future schema by writing a different version directly.
	raw := []byte(`{"schema_version":"1.0","files":{"/a.txt":{"file_id":"x"}}}`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Count())
}

func TestRemove_DeletesRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	s.Put("/a.txt", Record{})
	s.Remove("/a.txt")
	_, ok := s.Get("/a.txt")
	assert.False(t, ok)
}
