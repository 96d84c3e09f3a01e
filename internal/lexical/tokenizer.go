// Package lexical tokenizes natural-language text for the BM25 lexical
// store. Korean text is handled through an optional morphological
// analyzer collaborator; everything else falls back to a plain
// whitespace/punctuation split, matching the degraded-but-functional
// contract the specification requires when no analyzer is wired in.
package lexical

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	latinWordPattern = regexp.MustCompile(`[A-Za-z]+`)
	digitRunPattern  = regexp.MustCompile(`[0-9]+`)
)

// MorphemeTag classifies a morpheme surfaced by a KoreanAnalyzer.
type MorphemeTag string

const (
	TagNoun      MorphemeTag = "noun"
	TagVerb      MorphemeTag = "verb"
	TagAdjective MorphemeTag = "adjective"
	TagRoot      MorphemeTag = "root"
	TagOther     MorphemeTag = "other"
)

// Morpheme is one unit a KoreanAnalyzer returns for a span of Korean text.
type Morpheme struct {
	Surface string
	Tag     MorphemeTag
}

// KoreanAnalyzer is the external collaborator interface for Korean
// morphological analysis. No implementation exists in this module's
// dependency set; callers that have one available wire it through
// Tokenizer.Analyzer, and Tokenize degrades gracefully to whitespace
// splitting when Analyzer is nil.
type KoreanAnalyzer interface {
	Analyze(text string) ([]Morpheme, error)
}

// Tokenizer extracts index/query tokens from natural-language text.
type Tokenizer struct {
	Analyzer KoreanAnalyzer
}

// NewTokenizer constructs a Tokenizer. analyzer may be nil, in which
// case Korean text is tokenized via the degraded whitespace fallback.
func NewTokenizer(analyzer KoreanAnalyzer) *Tokenizer {
	return &Tokenizer{Analyzer: analyzer}
}

// Degraded reports whether this Tokenizer will use the degraded
// Korean-recall fallback (no analyzer wired in).
func (t *Tokenizer) Degraded() bool {
	return t.Analyzer == nil
}

// Tokenize runs the full pipeline: Korean morphological analysis (or
// fallback) for Korean spans, Latin word runs, digit runs, each
// lowercased and deduplicated while preserving first-seen order.
func (t *Tokenizer) Tokenize(text string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(tok string) {
		tok = strings.ToLower(tok)
		if len(tok) < 2 {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	if containsHangul(text) {
		if t.Analyzer != nil {
			if morphemes, err := t.Analyzer.Analyze(text); err == nil {
				for _, m := range morphemes {
					if !isContentTag(m.Tag) {
						continue
					}
					add(m.Surface)
				}
			} else {
				for _, tok := range whitespaceSplit(text) {
					add(tok)
				}
			}
		} else {
			for _, tok := range whitespaceSplit(text) {
				add(tok)
			}
		}
	}

	for _, word := range latinWordPattern.FindAllString(text, -1) {
		add(word)
	}
	for _, digits := range digitRunPattern.FindAllString(text, -1) {
		add(digits)
	}

	return out
}

func isContentTag(tag MorphemeTag) bool {
	switch tag {
	case TagNoun, TagVerb, TagAdjective, TagRoot:
		return true
	default:
		return false
	}
}

func containsHangul(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// whitespaceSplit is the degraded Korean-recall fallback: split on
// whitespace/punctuation and keep runs of length >= 2.
func whitespaceSplit(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			if w := cur.String(); len([]rune(w)) >= 2 {
				words = append(words, w)
			}
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return words
}
