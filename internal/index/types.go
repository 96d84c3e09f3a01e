// Package index implements the Incremental Indexer: it enumerates
// filesystem roots, diffs the observed state against the Manifest Store,
// and drives each changed file through classify→extract→chunk→tokenize→
// embed→persist, committing results to the Vector and Lexical stores.
package index

import "time"

// EnumerationOptions configures which filesystem entries the walk
// considers, per specification §4.9/§6.
type EnumerationOptions struct {
	IncludeHidden    bool
	MaxDepth         int // 0 = unlimited
	MaxFileSizeBytes int64
	ExtensionsFilter []string
	ExcludePatterns  []string
}

// Options configures one Index call.
type Options struct {
	Enumeration EnumerationOptions

	ChunkSize    int
	ChunkOverlap int
	ExcelMaxRows int
	ExcelMaxCols int

	// WorkerCount bounds file-level parallelism. 0 selects min(4, NumCPU).
	WorkerCount int
}

// ProgressKind classifies one progress event.
type ProgressKind string

const (
	ProgressNew              ProgressKind = "new"
	ProgressModified         ProgressKind = "modified"
	ProgressDeleted          ProgressKind = "deleted"
	ProgressSkippedUnchanged ProgressKind = "skipped_unchanged"
	ProgressError            ProgressKind = "error"
)

// ProgressEvent is delivered synchronously from the worker that produced
// it; the sink must not block for more than O(1) time per the
// specification's progress contract.
type ProgressEvent struct {
	Total       int
	Processed   int
	CurrentPath string
	Kind        ProgressKind
}

// ProgressSink receives ProgressEvents. A nil sink is valid and simply
// discards events.
type ProgressSink func(ProgressEvent)

// Report summarizes one Index call, returned to the caller as
// IndexReport in the specification.
type Report struct {
	Total          int
	Indexed        int
	ContentIndexed int
	MetadataOnly   int
	Deleted        int
	Errors         []string
	Elapsed        time.Duration
}
