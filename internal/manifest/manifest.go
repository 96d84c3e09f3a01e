// Package manifest persists the path → FileRecord-fingerprint mapping
// the Incremental Indexer diffs against on every pass. It is grounded on
// the reference implementation's ManifestStore/Manifest
// (src/storage/manifest.py): a single JSON document, atomic-replace on
// save, in-process memoization, and fingerprint-equality diffing.
package manifest

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/filesearch/engine/internal/errors"
)

// SchemaVersion is stamped on every persisted manifest. An on-disk
// manifest carrying a different version is treated as empty rather than
// causing Open to fail, per the specification's "unknown schema versions
// → treat as empty and log" rule for the Manifest Store specifically
// (distinct from the hard failure the Vector store (Schema category) and
// the Lexical store (Storage category) return when their binary formats
// cannot be read back).
const SchemaVersion = "2.0"

// Fingerprint is the (size, mtime) pair that decides whether a path's
// content is unchanged since last indexing.
type Fingerprint struct {
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mtime"`
}

// Equal reports whether two fingerprints describe the same observed
// file state.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.SizeBytes == other.SizeBytes && f.ModTime.Equal(other.ModTime)
}

// Record is the persisted subset of a FileRecord the Manifest Store
// owns exclusively.
type Record struct {
	FileID         string      `json:"file_id"`
	Fingerprint    Fingerprint `json:"fingerprint"`
	ContentIndexed bool        `json:"content_indexed"`
	ChunkCount     int         `json:"chunk_count"`
	LastIndexedAt  time.Time   `json:"last_indexed_at"`
}

type document struct {
	SchemaVersion string            `json:"schema_version"`
	Files         map[string]Record `json:"files"`
	LastUpdatedAt time.Time         `json:"last_updated_at"`
}

// Store is a schema-versioned, JSON-file-backed Manifest. It memoizes
// the document in-process after the first Load and every mutation is
// held under a mutex; Save performs a write-temp-then-rename so a crash
// mid-write leaves the previous consistent file in place.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// Open loads the manifest at path, creating an empty one if it does not
// exist yet. An incompatible schema version is logged as a warning and
// treated as an empty manifest rather than an error.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{SchemaVersion: SchemaVersion, Files: map[string]Record{}}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileNotFound, "read manifest file")
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Corrupt JSON: start fresh rather than fail open().
		return s, nil
	}
	if doc.SchemaVersion != SchemaVersion {
		slog.Warn("manifest schema version mismatch; starting empty",
			"path", path, "found", doc.SchemaVersion, "want", SchemaVersion)
		return s, nil
	}
	if doc.Files == nil {
		doc.Files = map[string]Record{}
	}
	s.doc = doc
	return s, nil
}

// Get returns the Record for path, if known.
func (s *Store) Get(path string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.doc.Files[path]
	return r, ok
}

// FindByFileID scans for the path/Record pair carrying fileID. The
// Manifest indexes by path, not file_id, so this is a linear scan; at
// desktop scale (tens of thousands of files) this is cheap enough to
// call once per selected search result rather than maintain a second
// index that Diff/Put/Remove would need to keep consistent.
func (s *Store) FindByFileID(fileID string) (string, Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for path, rec := range s.doc.Files {
		if rec.FileID == fileID {
			return path, rec, true
		}
	}
	return "", Record{}, false
}

// Put upserts the Record for path.
func (s *Store) Put(path string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Files[path] = rec
}

// Remove deletes path's Record, if any.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Files, path)
}

// AllPaths returns every known path, in no particular order.
func (s *Store) AllPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.doc.Files))
	for p := range s.doc.Files {
		paths = append(paths, p)
	}
	return paths
}

// Diff classifies observedPaths (every path found on this pass, mapped
// to its freshly-stat'd Fingerprint) against the stored manifest: paths
// absent from the manifest are New, paths present with a differing
// Fingerprint are Modified, paths present with an equal Fingerprint are
// Unchanged, and stored paths missing from observedPaths are Deleted.
func (s *Store) Diff(observed map[string]Fingerprint) (newPaths, modified, unchanged, deleted []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for path, fp := range observed {
		rec, ok := s.doc.Files[path]
		switch {
		case !ok:
			newPaths = append(newPaths, path)
		case !rec.Fingerprint.Equal(fp):
			modified = append(modified, path)
		default:
			unchanged = append(unchanged, path)
		}
	}
	for path := range s.doc.Files {
		if _, ok := observed[path]; !ok {
			deleted = append(deleted, path)
		}
	}

	sort.Strings(newPaths)
	sort.Strings(modified)
	sort.Strings(unchanged)
	sort.Strings(deleted)
	return
}

// Save persists the manifest via write-temp-then-rename so a crash
// mid-write never corrupts the previously saved file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.SchemaVersion = SchemaVersion
	s.doc.LastUpdatedAt = time.Now()

	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "marshal manifest")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "create manifest directory")
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "create temp manifest file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "write temp manifest file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "close temp manifest file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeManifestCorrupt, "rename temp manifest file into place")
	}
	return nil
}

// Clear empties the manifest in memory; callers must call Save to
// persist the wipe.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Files = map[string]Record{}
}

// Count returns the number of tracked paths.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Files)
}
