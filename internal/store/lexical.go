package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/filesearch/engine/internal/errors"
)

const (
	// lexicalAnalyzerName is the bleve custom analyzer: our tokens have
	// already been produced by internal/lexical.Tokenizer, so the bleve
	// pipeline only needs to split on the space-joined field value, no
	// further analysis.
	lexicalAnalyzerName  = "filesearch_lexical"
	lexicalTokenizerName = "filesearch_pretokenized"

	fieldTokens      = "tokens"
	fieldFileID      = "file_id"
	fieldIsFileLevel = "is_file_level"
)

func init() {
	_ = registry.RegisterTokenizer(lexicalTokenizerName, pretokenizedConstructor)
}

// BleveLexicalStore implements LexicalStore on bleve/v2, mirroring the
// teacher's BM25 wiring but indexing tokens already produced by
// internal/lexical.Tokenizer instead of re-tokenizing code identifiers.
type BleveLexicalStore struct {
	mu        sync.RWMutex
	index     bleve.Index
	path      string
	closed    bool
	tombstone map[string]struct{} // doc_ids removed but not yet compacted
}

type lexicalBleveDoc struct {
	Tokens      string `json:"tokens"`
	FileID      string `json:"file_id"`
	IsFileLevel bool   `json:"is_file_level"`
}

// NewBleveLexicalStore creates or opens a BM25 index at path. An empty
// path creates an in-memory index, used by tests.
func NewBleveLexicalStore(path string) (*BleveLexicalStore, error) {
	indexMapping, err := createLexicalMapping()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "build lexical index mapping")
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "open lexical index")
	}

	return &BleveLexicalStore{index: idx, path: path, tombstone: make(map[string]struct{})}, nil
}

func createLexicalMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	if err := m.AddCustomAnalyzer(lexicalAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": lexicalTokenizerName,
	}); err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = lexicalAnalyzerName
	return m, nil
}

// pretokenizedTokenizer treats its input as already space-separated
// tokens (produced upstream by internal/lexical.Tokenizer) and performs
// no further splitting, stemming, or casing.
type pretokenizedTokenizer struct{}

func pretokenizedConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &pretokenizedTokenizer{}, nil
}

func (t *pretokenizedTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	fields := strings.Fields(text)
	result := make(analysis.TokenStream, 0, len(fields))
	offset := 0
	for i, f := range fields {
		start := strings.Index(text[offset:], f) + offset
		end := start + len(f)
		result = append(result, &analysis.Token{
			Term:     []byte(f),
			Start:    start,
			End:      end,
			Position: i + 1,
			Type:     analysis.AlphaNumeric,
		})
		offset = end
	}
	return result
}

func (s *BleveLexicalStore) AddDocument(ctx context.Context, doc LexicalDocument) error {
	return s.AddDocuments(ctx, []LexicalDocument{doc})
}

func (s *BleveLexicalStore) AddDocuments(ctx context.Context, docs []LexicalDocument) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.ErrCodeLexicalStoreFail, "lexical store is closed")
	}

	batch := s.index.NewBatch()
	for _, doc := range docs {
		delete(s.tombstone, doc.DocID)
		bdoc := lexicalBleveDoc{
			Tokens:      strings.Join(doc.Tokens, " "),
			FileID:      doc.FileID,
			IsFileLevel: doc.IsFileLevel,
		}
		if err := batch.Index(doc.DocID, bdoc); err != nil {
			return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, fmt.Sprintf("index document %s", doc.DocID))
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "execute lexical index batch")
	}
	return nil
}

func (s *BleveLexicalStore) RemoveByFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.ErrCodeLexicalStoreFail, "lexical store is closed")
	}

	query := bleve.NewTermQuery(fileID)
	query.SetField(fieldFileID)
	req := bleve.NewSearchRequest(query)
	docCount, _ := s.index.DocCount()
	req.Size = int(docCount)
	req.Fields = nil

	result, err := s.index.Search(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "find documents for file")
	}

	batch := s.index.NewBatch()
	for _, hit := range result.Hits {
		batch.Delete(hit.ID)
		s.tombstone[hit.ID] = struct{}{}
	}
	if err := s.index.Batch(batch); err != nil {
		return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "delete documents for file")
	}
	return nil
}

func (s *BleveLexicalStore) Search(ctx context.Context, queryTokens []string, topK int) ([]LexicalSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.New(errors.ErrCodeLexicalStoreFail, "lexical store is closed")
	}
	if len(queryTokens) == 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(strings.Join(queryTokens, " "))
	q.SetField(fieldTokens)
	q.Analyzer = lexicalAnalyzerName

	req := bleve.NewSearchRequest(q)
	req.Size = topK
	req.Fields = []string{fieldFileID, fieldIsFileLevel}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "bm25 search")
	}

	hits := make([]LexicalSearchResult, 0, len(result.Hits))
	var maxScore float64
	for _, hit := range result.Hits {
		fileID, _ := hit.Fields[fieldFileID].(string)
		isFileLevel, _ := hit.Fields[fieldIsFileLevel].(bool)
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
		hits = append(hits, LexicalSearchResult{
			DocID:       hit.ID,
			FileID:      fileID,
			Score:       hit.Score,
			IsFileLevel: isFileLevel,
		})
	}

	if maxScore > 0 {
		for i := range hits {
			hits[i].Score = hits[i].Score / maxScore
		}
	}
	return hits, nil
}

// Compact physically discards tombstoned documents. Bleve's Delete
// already removes postings from the live segment; this pass exists to
// drop the bookkeeping and give future extensions (merge-policy tuning)
// a hook without changing the LexicalStore contract.
func (s *BleveLexicalStore) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tombstone = make(map[string]struct{})
	return nil
}

func (s *BleveLexicalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	n, _ := s.index.DocCount()
	return int(n)
}

func (s *BleveLexicalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.index.Close()
}

var _ LexicalStore = (*BleveLexicalStore)(nil)
