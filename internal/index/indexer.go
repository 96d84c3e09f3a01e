package index

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/filesearch/engine/internal/chunk"
	"github.com/filesearch/engine/internal/classify"
	"github.com/filesearch/engine/internal/embed"
	"github.com/filesearch/engine/internal/errors"
	"github.com/filesearch/engine/internal/extract"
	"github.com/filesearch/engine/internal/lexical"
	"github.com/filesearch/engine/internal/manifest"
	"github.com/filesearch/engine/internal/store"
)

// Indexer orchestrates one pass of enumerate → diff → per-file pipeline
// → commit, per the specification's Incremental Indexer (§4.9). It holds
// no state across Index calls beyond the stores it was built with.
type Indexer struct {
	Manifest  *manifest.Store
	Vectors   store.VectorStore
	Lexical   store.LexicalStore
	Embedder  embed.Embedder // nil is tolerated: falls back to lexical-only indexing
	Tokenizer *lexical.Tokenizer
	FS        FilesystemView
}

// New builds an Indexer over the given stores. embedder may be nil, in
// which case content-indexed files are still chunked and tokenized for
// the Lexical Store but never written to the Vector Store.
func New(m *manifest.Store, vectors store.VectorStore, lex store.LexicalStore, embedder embed.Embedder, tok *lexical.Tokenizer) *Indexer {
	return &Indexer{
		Manifest:  m,
		Vectors:   vectors,
		Lexical:   lex,
		Embedder:  embedder,
		Tokenizer: tok,
		FS:        OSFilesystemView{},
	}
}

// Index runs one indexing pass over roots. It never returns a non-nil
// error for per-file failures — those accumulate in Report.Errors — only
// for context cancellation or a hard failure committing the Manifest.
func (ix *Indexer) Index(ctx context.Context, roots []string, opts Options, progress ProgressSink) (Report, error) {
	start := time.Now()
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	observed, enumErrors := ix.enumerate(roots, opts.Enumeration)
	newPaths, modifiedPaths, unchangedPaths, deletedPaths := ix.Manifest.Diff(observed)

	report := Report{
		Total:  len(newPaths) + len(modifiedPaths) + len(unchangedPaths) + len(deletedPaths),
		Errors: enumErrors,
	}

	var mu sync.Mutex
	processed := 0

	for _, path := range unchangedPaths {
		processed++
		report.Indexed++
		progress(ProgressEvent{Total: report.Total, Processed: processed, CurrentPath: path, Kind: ProgressSkippedUnchanged})
	}

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		if workerCount > 4 {
			workerCount = 4
		}
	}
	if workerCount < 1 {
		workerCount = 1
	}

	toProcess := make([]string, 0, len(newPaths)+len(modifiedPaths))
	toProcess = append(toProcess, newPaths...)
	toProcess = append(toProcess, modifiedPaths...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for _, path := range toProcess {
		path := path
		fp := observed[path]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			kind, contentIndexed, procErr := ix.processFile(gctx, path, fp, opts)

			mu.Lock()
			defer mu.Unlock()
			processed++
			if procErr != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, procErr))
				progress(ProgressEvent{Total: report.Total, Processed: processed, CurrentPath: path, Kind: ProgressError})
				return nil
			}
			report.Indexed++
			if contentIndexed {
				report.ContentIndexed++
			} else {
				report.MetadataOnly++
			}
			progress(ProgressEvent{Total: report.Total, Processed: processed, CurrentPath: path, Kind: kind})
			return nil
		})
	}

	groupErr := g.Wait()
	if groupErr != nil {
		report.Elapsed = time.Since(start)
		return report, errors.Wrap(groupErr, errors.ErrCodeCancelled, "index pass cancelled")
	}

	for _, path := range deletedPaths {
		if err := ix.deleteFile(ctx, path); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		processed++
		report.Deleted++
		progress(ProgressEvent{Total: report.Total, Processed: processed, CurrentPath: path, Kind: ProgressDeleted})
	}

	if err := ix.Manifest.Save(); err != nil {
		report.Elapsed = time.Since(start)
		return report, err
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// processFile runs the per-file pipeline for one new or modified path:
// reuse-or-mint file_id, remove stale data on modification, extract,
// chunk, tokenize, embed, and persist. It returns the progress kind to
// report (new or modified) and whether the file ended up content-indexed.
func (ix *Indexer) processFile(ctx context.Context, path string, fp manifest.Fingerprint, opts Options) (ProgressKind, bool, error) {
	kind := ProgressNew
	fileID := uuid.NewString()

	if prior, ok := ix.Manifest.Get(path); ok {
		kind = ProgressModified
		fileID = prior.FileID
		if err := ix.Vectors.DeleteByFile(ctx, fileID); err != nil {
			return kind, false, errors.Wrap(err, errors.ErrCodeVectorStoreFail, "remove stale vectors")
		}
		if err := ix.Lexical.RemoveByFile(ctx, fileID); err != nil {
			return kind, false, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "remove stale lexical documents")
		}
	}

	category, fileType := classify.Classify(path)

	var chunkCount int
	contentIndexed := category == classify.ContentIndexed

	if contentIndexed {
		content, err := ix.FS.ReadFile(path)
		if err != nil {
			return kind, false, errors.Wrap(err, errors.ErrCodeFileNotFound, "read file")
		}

		result := extract.For(fileType, extract.Options{ExcelMaxRows: opts.ExcelMaxRows, ExcelMaxCols: opts.ExcelMaxCols})(path, content)
		if result.Err != nil {
			return kind, false, errors.Wrap(result.Err, errors.ErrCodeParseFailed, "extract content")
		}

		chunker := chunk.NewForFileType(fileType, chunk.Options{ChunkSize: opts.ChunkSize, ChunkOverlap: opts.ChunkOverlap})
		chunks := chunker.Chunk(result.Sections, result.Text)
		chunkCount = len(chunks)

		if chunkCount > 0 {
			records := make([]store.ChunkRecord, chunkCount)
			texts := make([]string, chunkCount)
			docs := make([]store.LexicalDocument, chunkCount)
			now := time.Now()
			for i, c := range chunks {
				chunkID := uuid.NewString()
				records[i] = store.ChunkRecord{
					ChunkID:        chunkID,
					FileID:         fileID,
					ChunkIndex:     c.ChunkIndex,
					Text:           c.Text,
					Location:       c.Location,
					ContentIndexed: true,
					CreatedAt:      now,
				}
				texts[i] = c.Text
				docs[i] = store.LexicalDocument{
					DocID:       chunkID,
					FileID:      fileID,
					Tokens:      ix.Tokenizer.Tokenize(c.Text),
					IsFileLevel: false,
				}
			}

			if ix.Embedder != nil {
				vectors, err := ix.Embedder.EncodeBatch(ctx, texts)
				if err != nil {
					return kind, false, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embed chunks")
				}
				if err := ix.Vectors.Add(ctx, records, vectors); err != nil {
					return kind, false, errors.Wrap(err, errors.ErrCodeVectorStoreFail, "write chunk vectors")
				}
			}

			if err := ix.Lexical.AddDocuments(ctx, docs); err != nil {
				return kind, false, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "write chunk lexical documents")
			}
		}
	} else {
		tokens := fileLevelTokens(path, ix.Tokenizer)
		if err := ix.Lexical.AddDocument(ctx, store.LexicalDocument{
			DocID:       fileID,
			FileID:      fileID,
			Tokens:      tokens,
			IsFileLevel: true,
		}); err != nil {
			return kind, false, errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "write file-level lexical document")
		}
	}

	ix.Manifest.Put(path, manifest.Record{
		FileID:         fileID,
		Fingerprint:    fp,
		ContentIndexed: contentIndexed,
		ChunkCount:     chunkCount,
		LastIndexedAt:  time.Now(),
	})

	return kind, contentIndexed, nil
}

// deleteFile cascades removal of path's data across all three stores.
func (ix *Indexer) deleteFile(ctx context.Context, path string) error {
	rec, ok := ix.Manifest.Get(path)
	if !ok {
		return nil
	}
	if err := ix.Vectors.DeleteByFile(ctx, rec.FileID); err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStoreFail, "delete vectors for removed file")
	}
	if err := ix.Lexical.RemoveByFile(ctx, rec.FileID); err != nil {
		return errors.Wrap(err, errors.ErrCodeLexicalStoreFail, "delete lexical documents for removed file")
	}
	ix.Manifest.Remove(path)
	return nil
}

// enumerate walks every root applying the enumeration rules from
// specification §4.9, returning every surviving path's Fingerprint and
// any per-entry errors encountered (permission denials, broken
// symlinks). A failure on one entry never aborts the walk.
func (ix *Indexer) enumerate(roots []string, opts EnumerationOptions) (map[string]manifest.Fingerprint, []string) {
	observed := make(map[string]manifest.Fingerprint)
	var enumErrors []string

	for _, root := range roots {
		err := ix.FS.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				enumErrors = append(enumErrors, fmt.Sprintf("%s: %v", path, walkErr))
				return nil
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if shouldSkipDir(d.Name(), opts.IncludeHidden) {
					return fs.SkipDir
				}
				if opts.MaxDepth > 0 && dirDepth(root, path) > opts.MaxDepth {
					return fs.SkipDir
				}
				return nil
			}

			if shouldSkipFile(d.Name(), opts.IncludeHidden) {
				return nil
			}
			if !matchesExtensionFilter(path, opts.ExtensionsFilter) {
				return nil
			}
			if rel, relErr := filepath.Rel(root, path); relErr == nil && matchesAnyPattern(rel, opts.ExcludePatterns) {
				return nil
			}

			info, statErr := d.Info()
			if statErr != nil {
				enumErrors = append(enumErrors, fmt.Sprintf("%s: %v", path, statErr))
				return nil
			}
			if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
				return nil
			}

			observed[path] = manifest.Fingerprint{SizeBytes: info.Size(), ModTime: info.ModTime()}
			return nil
		})
		if err != nil {
			enumErrors = append(enumErrors, fmt.Sprintf("%s: %v", root, err))
		}
	}

	return observed, enumErrors
}

// dirDepth reports path's depth relative to root: root's immediate
// children are depth 1.
func dirDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// fileLevelTokens builds the tokens for a METADATA_ONLY file's single
// file-level LexicalDocument: the filename stem plus its last three path
// components, with path/word separators normalized to spaces before
// tokenization.
func fileLevelTokens(path string, tok *lexical.Tokenizer) []string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := append([]string{stem}, lastPathComponents(path, 3)...)
	text := strings.Join(parts, " ")
	text = strings.NewReplacer("_", " ", "-", " ", "/", " ", "\\", " ").Replace(text)
	return tok.Tokenize(text)
}

// lastPathComponents returns up to n directory names immediately
// containing path, in root-to-leaf order, stopping at the filesystem
// root.
func lastPathComponents(path string, n int) []string {
	dir := filepath.Dir(path)
	var comps []string
	for i := 0; i < n; i++ {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == "" {
			break
		}
		comps = append([]string{base}, comps...)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return comps
}
