// Package search implements the Hybrid Retriever: it fuses dense
// (embedding) and lexical (BM25) search over the Vector and Lexical
// stores by Reciprocal Rank Fusion on file_id, and the Engine facade
// that is the core's sole external entry point (open/close/flush/index/
// search/clear).
package search

import "github.com/filesearch/engine/internal/chunk"

// MatchType classifies how a result file matched the query.
type MatchType string

const (
	MatchHybrid   MatchType = "HYBRID"
	MatchSemantic MatchType = "SEMANTIC"
	MatchLexical  MatchType = "LEXICAL"
)

// EvidenceScores carries the per-evidence score breakdown. Lexical is
// always 0 and Final equals Dense: evidences are built exclusively from
// dense (embedding) hits per the fusion algorithm, never from lexical
// hits.
type EvidenceScores struct {
	Dense   float64
	Lexical float64
	Final   float64
}

// Evidence is one snippet shown to justify why a file matched.
type Evidence struct {
	Snippet  string
	Location chunk.Location
	Scores   EvidenceScores
}

// Result is one file-level hit in a SearchResponse.
type Result struct {
	FileID           string
	Path             string
	Score            float64
	MatchType        MatchType
	ContentAvailable bool
	Evidences        []Evidence
}

// Response is returned from Engine.Search.
type Response struct {
	Query     string
	ElapsedMs int64
	Results   []Result
	// Degraded is true when no embedding provider was available for this
	// search, so every result is necessarily MatchLexical.
	Degraded bool
	// Error carries "deadline" when the query's context deadline expired
	// before fusion completed. Fusion only runs after both lookups return,
	// so Results is empty in that case. Empty string means no error.
	Error string
}

// Options configures one Search call. Zero values are replaced by
// DefaultOptions' values where a field is unset (TopKDense<=0 etc.).
type Options struct {
	TopKDense           int
	TopKBM25            int
	RRFK                int
	MaxResults          int
	MaxEvidencesPerFile int
	MetadataOnlyDecay   float64
}

// DefaultOptions returns the specification's documented defaults.
func DefaultOptions() Options {
	return Options{
		TopKDense:           50,
		TopKBM25:            50,
		RRFK:                60,
		MaxResults:          20,
		MaxEvidencesPerFile: 5,
		MetadataOnlyDecay:   0.4,
	}
}

// withDefaults fills in zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopKDense <= 0 {
		o.TopKDense = d.TopKDense
	}
	if o.TopKBM25 <= 0 {
		o.TopKBM25 = d.TopKBM25
	}
	if o.RRFK <= 0 {
		o.RRFK = d.RRFK
	}
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.MaxEvidencesPerFile <= 0 {
		o.MaxEvidencesPerFile = d.MaxEvidencesPerFile
	}
	if o.MetadataOnlyDecay <= 0 {
		o.MetadataOnlyDecay = d.MetadataOnlyDecay
	}
	return o
}
