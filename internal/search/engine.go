package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/filesearch/engine/internal/embed"
	"github.com/filesearch/engine/internal/errors"
	"github.com/filesearch/engine/internal/index"
	"github.com/filesearch/engine/internal/lexical"
	"github.com/filesearch/engine/internal/manifest"
	"github.com/filesearch/engine/internal/store"
)

const (
	manifestFileName = "manifest.json"
	vectorFileName   = "vector/index.hnsw"
	lexicalDirName   = "bm25.bin"
	lockFileName     = ".engine.lock"

	snippetMaxChars = 300
)

// Config configures Engine.Open.
type Config struct {
	// Dimensions is the embedding width; required even when Embedder is
	// nil so a vector store of the right shape exists for when an
	// embedder becomes available later.
	Dimensions int
	// Embedder is optional. A nil Embedder puts the engine in degraded
	// (lexical-only) mode per spec §7.
	Embedder embed.Embedder
	// Tokenizer is optional; a default whitespace-degraded Tokenizer is
	// used when nil.
	Tokenizer *lexical.Tokenizer
	Search    Options
	Index     index.Options
}

// Engine is the core's sole external surface: open/close/flush/index/
// search/clear, per spec §6.
type Engine struct {
	dataDir string
	lock    *flock.Flock

	manifest  *manifest.Store
	vectors   store.VectorStore
	lexicalIx store.LexicalStore
	embedder  embed.Embedder
	tokenizer *lexical.Tokenizer
	indexer   *index.Indexer

	dims        int
	searchOpts  Options
	indexOpts   index.Options
	vectorPath  string
	lexicalPath string

	mu sync.RWMutex
}

// Open acquires the on-disk engine at dataDir, creating it if absent.
// Per spec §5, the Manifest, Vector, and Lexical stores are process-wide
// singletons that must never be opened twice in one process; Open
// enforces that with an exclusive file lock under dataDir.
func Open(dataDir string, cfg Config) (*Engine, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFilePermission, "create data directory")
	}

	lock := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAlreadyOpen, "acquire engine lock")
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeAlreadyOpen, "engine already open in another process")
	}

	m, err := manifest.Open(filepath.Join(dataDir, manifestFileName))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	vectorPath := filepath.Join(dataDir, vectorFileName)
	vectors := store.NewHNSWVectorStore(store.DefaultVectorStoreConfig(cfg.Dimensions))
	if err := vectors.Load(vectorPath); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	lexicalPath := filepath.Join(dataDir, lexicalDirName)
	lex, err := store.NewBleveLexicalStore(lexicalPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	tok := cfg.Tokenizer
	if tok == nil {
		tok = lexical.NewTokenizer(nil)
	}

	// Embedding is treated as a serialized resource (spec §5): index
	// workers and concurrent search queries share one encoder, so every
	// EncodeBatch call is funneled through a single goroutine rather than
	// invoked directly from whichever goroutine needs a vector.
	var embedder embed.Embedder
	if cfg.Embedder != nil {
		embedder = embed.NewFunnel(cfg.Embedder)
	}

	e := &Engine{
		dataDir:     dataDir,
		lock:        lock,
		manifest:    m,
		vectors:     vectors,
		lexicalIx:   lex,
		embedder:    embedder,
		tokenizer:   tok,
		dims:        cfg.Dimensions,
		searchOpts:  cfg.Search.withDefaults(),
		indexOpts:   cfg.Index,
		vectorPath:  vectorPath,
		lexicalPath: lexicalPath,
	}
	e.indexer = index.New(m, vectors, lex, embedder, tok)
	return e, nil
}

// Index runs the Incremental Indexer over roots and commits the result,
// flushing the Vector and Manifest stores on success so the next Open
// observes a consistent state even without an explicit Flush call.
func (e *Engine) Index(ctx context.Context, roots []string, opts index.Options, progress index.ProgressSink) (index.Report, error) {
	if opts.ChunkSize == 0 && opts.ChunkOverlap == 0 && opts.WorkerCount == 0 {
		opts = e.indexOpts
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.indexer.Index(ctx, roots, opts, progress)
	if err != nil {
		return report, err
	}
	if err := e.vectors.Save(e.vectorPath); err != nil {
		return report, err
	}
	return report, nil
}

// Search implements spec §4.10: tokenize, encode, parallel dense+lexical
// search, RRF fusion on file_id, metadata-only decay, evidence assembly.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (Response, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{Query: query}, nil
	}

	opts = e.mergeOptions(opts)
	degraded := e.embedder == nil

	e.mu.RLock()
	defer e.mu.RUnlock()

	qTokens := e.tokenizer.Tokenize(query)

	var dense []store.VectorSearchResult
	var lexicalHits []store.LexicalSearchResult

	g, gctx := errgroup.WithContext(ctx)

	if !degraded {
		g.Go(func() error {
			vecs, err := e.embedder.EncodeBatch(gctx, []string{query})
			if err != nil || len(vecs) == 0 {
				// Embedding failure mid-search degrades this query only;
				// it does not fail the whole call.
				return nil
			}
			d, err := e.vectors.Search(gctx, vecs[0], opts.TopKDense)
			if err != nil {
				return nil
			}
			dense = d
			return nil
		})
	}
	if len(qTokens) > 0 {
		g.Go(func() error {
			hits, err := e.lexicalIx.Search(gctx, qTokens, opts.TopKBM25)
			if err != nil {
				return nil
			}
			lexicalHits = hits
			return nil
		})
	}

	waitDone := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		return Response{
			Query:     query,
			ElapsedMs: time.Since(start).Milliseconds(),
			Degraded:  degraded,
			Error:     "deadline",
		}, nil
	}

	fused := fuseByFile(dense, lexicalHits, opts.RRFK, opts.MetadataOnlyDecay)
	if len(fused) > opts.MaxResults {
		fused = fused[:opts.MaxResults]
	}

	denseByFile := groupDenseByFile(dense)

	results := make([]Result, 0, len(fused))
	for _, f := range fused {
		path, rec, ok := e.manifest.FindByFileID(f.fileID)
		if !ok {
			// Late-deletion race: drop silently per spec §7.
			continue
		}

		evidences := buildEvidences(denseByFile[f.fileID], opts.MaxEvidencesPerFile)

		results = append(results, Result{
			FileID:           f.fileID,
			Path:             path,
			Score:            f.score,
			MatchType:        f.matchType(),
			ContentAvailable: rec.ContentIndexed,
			Evidences:        evidences,
		})
	}

	return Response{
		Query:     query,
		ElapsedMs: time.Since(start).Milliseconds(),
		Results:   results,
		Degraded:  degraded,
	}, nil
}

func buildEvidences(hits []store.VectorSearchResult, maxEvidences int) []Evidence {
	if len(hits) == 0 {
		return nil
	}
	if len(hits) > maxEvidences {
		hits = hits[:maxEvidences]
	}
	evidences := make([]Evidence, 0, len(hits))
	for _, h := range hits {
		sim := float64(store.DistanceToSimilarity(h.Distance))
		evidences = append(evidences, Evidence{
			Snippet:  truncateSnippet(h.Text),
			Location: h.Location,
			Scores:   EvidenceScores{Dense: sim, Lexical: 0, Final: sim},
		})
	}
	return evidences
}

func truncateSnippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetMaxChars {
		return text
	}
	return string(runes[:snippetMaxChars]) + "..."
}

func (e *Engine) mergeOptions(opts Options) Options {
	base := e.searchOpts
	if opts.TopKDense <= 0 {
		opts.TopKDense = base.TopKDense
	}
	if opts.TopKBM25 <= 0 {
		opts.TopKBM25 = base.TopKBM25
	}
	if opts.RRFK <= 0 {
		opts.RRFK = base.RRFK
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = base.MaxResults
	}
	if opts.MaxEvidencesPerFile <= 0 {
		opts.MaxEvidencesPerFile = base.MaxEvidencesPerFile
	}
	if opts.MetadataOnlyDecay <= 0 {
		opts.MetadataOnlyDecay = base.MetadataOnlyDecay
	}
	return opts
}

// ManifestCount reports the number of files currently tracked by the
// Manifest, for CLI/status reporting.
func (e *Engine) ManifestCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.manifest.Count()
}

// Flush persists the Vector and Manifest stores without closing the
// engine. The Lexical store (bleve) persists each batch as it is
// written, so it has nothing additional to flush.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.vectors.Save(e.vectorPath); err != nil {
		return err
	}
	return e.manifest.Save()
}

// Close flushes and releases the engine's stores and its exclusive
// lock. The Engine must not be used after Close returns.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(e.vectors.Save(e.vectorPath))
	record(e.vectors.Close())
	record(e.lexicalIx.Close())
	record(e.manifest.Save())
	if e.embedder != nil {
		record(e.embedder.Close())
	}
	if err := e.lock.Unlock(); err != nil {
		record(errors.Wrap(err, errors.ErrCodeAlreadyOpen, "release engine lock"))
	}
	return firstErr
}

// Clear wipes every persisted store for a full reset, per spec §6
// Engine::clear().
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.manifest.Clear()
	if err := e.manifest.Save(); err != nil {
		return err
	}

	e.vectors = store.NewHNSWVectorStore(store.DefaultVectorStoreConfig(e.dims))
	if err := os.Remove(e.vectorPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "remove vector store file")
	}
	_ = os.Remove(e.vectorPath + ".meta")

	if err := e.lexicalIx.Close(); err != nil {
		return err
	}
	if err := os.RemoveAll(e.lexicalPath); err != nil {
		return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "remove lexical store directory")
	}
	lex, err := store.NewBleveLexicalStore(e.lexicalPath)
	if err != nil {
		return err
	}
	e.lexicalIx = lex

	e.indexer = index.New(e.manifest, e.vectors, e.lexicalIx, e.embedder, e.tokenizer)
	return nil
}
