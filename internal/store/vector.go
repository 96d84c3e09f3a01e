package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/filesearch/engine/internal/errors"
)

// HNSWVectorStore implements VectorStore on top of coder/hnsw, the pure-Go
// HNSW graph also used for the teacher's code-search index. Records are
// normalized for cosine similarity and kept in a side table keyed by
// chunk_id since the graph itself only holds vectors.
type HNSWVectorStore struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorStoreConfig

	idMap   map[string]uint64 // chunk_id -> internal key
	keyMap  map[uint64]string // internal key -> chunk_id
	records map[string]ChunkRecord
	byFile  map[string][]string // file_id -> chunk_ids, insertion order
	nextKey uint64

	closed bool
}

type vectorMetadata struct {
	IDMap   map[string]uint64
	Records map[string]ChunkRecord
	ByFile  map[string][]string
	NextKey uint64
	Config  VectorStoreConfig
}

// NewHNSWVectorStore constructs an empty vector store under cfg.
func NewHNSWVectorStore(cfg VectorStoreConfig) *HNSWVectorStore {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 64
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &HNSWVectorStore{
		graph:   graph,
		config:  cfg,
		idMap:   make(map[string]uint64),
		keyMap:  make(map[uint64]string),
		records: make(map[string]ChunkRecord),
		byFile:  make(map[string][]string),
	}
}

func (s *HNSWVectorStore) Add(ctx context.Context, chunks []ChunkRecord, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return errors.New(errors.ErrCodeVectorStoreFail, "chunks and vectors length mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrCodeVectorStoreFail, "vector store is closed")
	}

	for _, v := range vectors {
		if len(v) != s.config.Dimensions {
			return ErrDimensionMismatch{Expected: s.config.Dimensions, Got: len(v)}
		}
	}

	for i, rec := range chunks {
		if existingKey, exists := s.idMap[rec.ChunkID]; exists {
			// Lazy deletion: orphan the old key rather than calling
			// graph.Delete, which breaks the graph when removing its
			// last node.
			delete(s.keyMap, existingKey)
			delete(s.idMap, rec.ChunkID)
		}

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		normalizeVectorInPlace(vec)

		key := s.nextKey
		s.nextKey++
		s.graph.Add(hnsw.MakeNode(key, vec))

		s.idMap[rec.ChunkID] = key
		s.keyMap[key] = rec.ChunkID
		s.records[rec.ChunkID] = rec
		s.byFile[rec.FileID] = append(s.byFile[rec.FileID], rec.ChunkID)
	}

	return nil
}

func (s *HNSWVectorStore) DeleteByFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrCodeVectorStoreFail, "vector store is closed")
	}

	for _, chunkID := range s.byFile[fileID] {
		if key, ok := s.idMap[chunkID]; ok {
			delete(s.keyMap, key)
			delete(s.idMap, chunkID)
		}
		delete(s.records, chunkID)
	}
	delete(s.byFile, fileID)
	return nil
}

func (s *HNSWVectorStore) Search(ctx context.Context, query []float32, k int) ([]VectorSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errors.New(errors.ErrCodeVectorStoreFail, "vector store is closed")
	}
	if len(query) != s.config.Dimensions {
		return nil, ErrDimensionMismatch{Expected: s.config.Dimensions, Got: len(query)}
	}
	if s.graph.Len() == 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeVectorInPlace(normalized)

	// Over-fetch to absorb orphaned (lazily deleted) nodes still present
	// in the graph.
	fetch := k * 4
	if fetch < k+8 {
		fetch = k + 8
	}
	nodes := s.graph.Search(normalized, fetch)

	results := make([]VectorSearchResult, 0, k)
	for _, node := range nodes {
		chunkID, ok := s.keyMap[node.Key]
		if !ok {
			continue
		}
		rec, ok := s.records[chunkID]
		if !ok {
			continue
		}
		distance := s.graph.Distance(normalized, node.Value)
		results = append(results, VectorSearchResult{
			ChunkID:  rec.ChunkID,
			FileID:   rec.FileID,
			Text:     rec.Text,
			Location: rec.Location,
			Distance: distance,
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (s *HNSWVectorStore) ChunksByFile(fileID string) []ChunkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byFile[fileID]
	out := make([]ChunkRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}

func (s *HNSWVectorStore) AllFileIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byFile))
	for fileID := range s.byFile {
		ids = append(ids, fileID)
	}
	return ids
}

func (s *HNSWVectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idMap)
}

func (s *HNSWVectorStore) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.New(errors.ErrCodeVectorStoreFail, "vector store is closed")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "create vector store directory")
	}

	tmpIndexPath := path + ".tmp"
	file, err := os.Create(tmpIndexPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "create index temp file")
	}
	if err := s.graph.Export(file); err != nil {
		file.Close()
		os.Remove(tmpIndexPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "export hnsw graph")
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpIndexPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "close index temp file")
	}
	if err := os.Rename(tmpIndexPath, path); err != nil {
		os.Remove(tmpIndexPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "rename index temp file")
	}

	return s.saveMetadata(path + ".meta")
}

func (s *HNSWVectorStore) saveMetadata(path string) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "create metadata temp file")
	}

	meta := vectorMetadata{
		IDMap:   s.idMap,
		Records: s.records,
		ByFile:  s.byFile,
		NextKey: s.nextKey,
		Config:  s.config,
	}

	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "encode metadata")
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "close metadata temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "rename metadata temp file")
	}
	return nil
}

func (s *HNSWVectorStore) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrCodeVectorStoreFail, "vector store is closed")
	}

	if err := s.loadMetadata(path + ".meta"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "open index file")
	}
	defer file.Close()

	if err := s.graph.Import(bufio.NewReader(file)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSchemaCorrupt, "import hnsw graph")
	}
	return nil
}

func (s *HNSWVectorStore) loadMetadata(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var meta vectorMetadata
	if err := gob.NewDecoder(file).Decode(&meta); err != nil {
		return errors.Wrap(err, errors.ErrCodeSchemaCorrupt, "decode vector store metadata")
	}

	s.idMap = meta.IDMap
	s.records = meta.Records
	s.byFile = meta.ByFile
	s.nextKey = meta.NextKey
	s.config = meta.Config
	s.keyMap = make(map[uint64]string, len(s.idMap))
	for id, key := range s.idMap {
		s.keyMap[key] = id
	}
	return nil
}

func (s *HNSWVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.graph = nil
	return nil
}

var _ VectorStore = (*HNSWVectorStore)(nil)

func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

// DistanceToSimilarity converts the store's distance into the [0,1]
// similarity the retriever fuses on: sim = max(0, 1 - distance).
func DistanceToSimilarity(distance float32) float32 {
	sim := 1 - distance
	if sim < 0 {
		return 0
	}
	return sim
}
