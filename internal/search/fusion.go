package search

import (
	"sort"

	"github.com/filesearch/engine/internal/store"
)

// fileFusion accumulates one file's Reciprocal Rank Fusion score across
// the dense and lexical ranked lists.
type fileFusion struct {
	fileID      string
	score       float64
	inDense     bool
	inLexical   bool
	fileLevel   bool // true if this file's deduped lexical hit was file-level
}

// fuseByFile implements spec §4.10 steps 5-6: RRF on file_id with
// dedup-to-first-occurrence per list, followed by the metadata-only
// decay. Returns files sorted by descending score, ties broken
// lexicographically by file_id.
func fuseByFile(dense []store.VectorSearchResult, lexical []store.LexicalSearchResult, rrfK int, decay float64) []*fileFusion {
	files := make(map[string]*fileFusion)

	entry := func(fileID string) *fileFusion {
		f, ok := files[fileID]
		if !ok {
			f = &fileFusion{fileID: fileID}
			files[fileID] = f
		}
		return f
	}

	seenDense := make(map[string]bool)
	for i, d := range dense {
		if seenDense[d.FileID] {
			continue
		}
		seenDense[d.FileID] = true
		rank := i + 1
		f := entry(d.FileID)
		f.score += 1.0 / float64(rrfK+rank)
		f.inDense = true
	}

	seenLexical := make(map[string]bool)
	for i, l := range lexical {
		if seenLexical[l.FileID] {
			continue
		}
		seenLexical[l.FileID] = true
		rank := i + 1
		f := entry(l.FileID)
		f.score += 1.0 / float64(rrfK+rank)
		f.inLexical = true
		f.fileLevel = l.IsFileLevel
	}

	for _, f := range files {
		if f.fileLevel {
			f.score *= decay
		}
	}

	results := make([]*fileFusion, 0, len(files))
	for _, f := range files {
		results = append(results, f)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].fileID < results[j].fileID
	})
	return results
}

func (f *fileFusion) matchType() MatchType {
	switch {
	case f.inDense && f.inLexical:
		return MatchHybrid
	case f.inDense:
		return MatchSemantic
	default:
		return MatchLexical
	}
}

// groupDenseByFile preserves the dense list's similarity-descending
// order within each file's bucket, since the input is already globally
// ranked and a per-file subsequence of a sorted sequence stays sorted.
func groupDenseByFile(dense []store.VectorSearchResult) map[string][]store.VectorSearchResult {
	groups := make(map[string][]store.VectorSearchResult)
	for _, d := range dense {
		groups[d.FileID] = append(groups[d.FileID], d)
	}
	return groups
}
