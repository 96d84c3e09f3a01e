// Package store provides the two coupled persistent indexes that back
// retrieval: an HNSW-backed vector store of ChunkRecords and a
// bleve-backed BM25 lexical store of LexicalDocuments. Both are
// process-wide singletons with explicit open/flush/close lifecycles;
// neither dereferences the other's internals — cross-references are by
// opaque file_id/chunk_id only.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/filesearch/engine/internal/chunk"
)

// ChunkRecord is the persisted unit the Vector Store owns. It exists
// only for content-indexed files.
type ChunkRecord struct {
	ChunkID        string
	FileID         string
	ChunkIndex     int
	Text           string
	Location       chunk.Location
	ContentIndexed bool
	CreatedAt      time.Time
}

// VectorSearchResult is one nearest-neighbor hit. Distance is lower-is-closer;
// the retriever, not the store, converts it to a similarity score.
type VectorSearchResult struct {
	ChunkID  string
	FileID   string
	Text     string
	Location chunk.Location
	Distance float32
}

// VectorStoreConfig configures the HNSW-backed vector store.
type VectorStoreConfig struct {
	Dimensions     int
	M              int
	EfConstruction int
	EfSearch       int
}

// DefaultVectorStoreConfig returns sensible HNSW defaults for dims.
func DefaultVectorStoreConfig(dims int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions:     dims,
		M:              16,
		EfConstruction: 128,
		EfSearch:       64,
	}
}

// VectorStore persists ChunkRecords and serves approximate nearest
// neighbor search by embedding.
type VectorStore interface {
	// Add bulk-inserts chunks with their embeddings. len(chunks) must
	// equal len(vectors).
	Add(ctx context.Context, chunks []ChunkRecord, vectors [][]float32) error

	// DeleteByFile cascades deletion of every chunk belonging to fileID.
	DeleteByFile(ctx context.Context, fileID string) error

	// Search returns up to k nearest neighbors to query.
	Search(ctx context.Context, query []float32, k int) ([]VectorSearchResult, error)

	// ChunksByFile returns every chunk belonging to fileID, ordered by
	// ChunkIndex.
	ChunksByFile(fileID string) []ChunkRecord

	// AllFileIDs returns the distinct set of file_ids with chunks present.
	AllFileIDs() []string

	Count() int

	Save(path string) error
	Load(path string) error
	Close() error
}

// ErrDimensionMismatch indicates an embedding does not match the
// store's configured dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// LexicalDocument is the BM25 unit. Exactly one flavor exists per file:
// chunk-level documents (DocID == ChunkID) for content-indexed files, or
// a single file-level document (DocID == FileID, IsFileLevel true) for
// metadata-only files.
type LexicalDocument struct {
	DocID       string
	FileID      string
	Tokens      []string
	IsFileLevel bool
}

// LexicalSearchResult is one BM25 hit. Score is normalized to [0,1] by
// the store (divided by the max score in the result set) before return.
type LexicalSearchResult struct {
	DocID       string
	FileID      string
	Score       float64
	IsFileLevel bool
}

// LexicalStore persists LexicalDocuments and serves BM25 search.
type LexicalStore interface {
	AddDocument(ctx context.Context, doc LexicalDocument) error
	AddDocuments(ctx context.Context, docs []LexicalDocument) error
	RemoveByFile(ctx context.Context, fileID string) error
	Search(ctx context.Context, queryTokens []string, topK int) ([]LexicalSearchResult, error)

	// Compact physically discards tombstoned documents and rebuilds BM25
	// statistics. Safe to run during idle periods; never required for
	// correctness.
	Compact(ctx context.Context) error

	Count() int
	Close() error
}
