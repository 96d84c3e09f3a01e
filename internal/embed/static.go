package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultStaticDimensions is the vector width produced by StaticEmbedder
// when no explicit dimension is requested. It matches the dimensionality
// commonly used by small sentence-embedding models so that indexes built
// in degraded mode stay interchangeable with ones built against a real
// model of similar size.
const DefaultStaticDimensions = 384

// stopWords holds a small set of high-frequency natural-language words
// that carry little retrieval signal on their own. Unlike the teacher's
// programmingStopWords this list has no language-keyword entries; it is
// deliberately short since over-filtering natural prose loses signal
// that a hash-bucket embedding needs to stay discriminative.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "for": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"this": {}, "that": {}, "with": {}, "as": {}, "it": {}, "by": {},
}

// StaticEmbedder is a deterministic, model-free fallback embedder. It
// hashes tokens and character n-grams into fixed-size buckets so that
// documents sharing vocabulary land closer together under cosine/L2
// similarity than unrelated documents, without requiring any model
// weights to be present. It exists so indexing and search keep working
// in degraded mode when no Embedder collaborator is configured or
// reachable.
type StaticEmbedder struct {
	dims int
}

// NewStaticEmbedder returns a StaticEmbedder with the given dimension. A
// non-positive dims falls back to DefaultStaticDimensions.
func NewStaticEmbedder(dims int) *StaticEmbedder {
	if dims <= 0 {
		dims = DefaultStaticDimensions
	}
	return &StaticEmbedder{dims: dims}
}

func (s *StaticEmbedder) Dimensions() int { return s.dims }

func (s *StaticEmbedder) ModelName() string { return "static-hash-fallback" }

func (s *StaticEmbedder) Available(ctx context.Context) bool { return true }

func (s *StaticEmbedder) Close() error { return nil }

func (s *StaticEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = s.encodeOne(t)
	}
	return out, nil
}

func (s *StaticEmbedder) encodeOne(text string) []float32 {
	v := make([]float32, s.dims)
	tokens := tokenizeWords(text)
	for _, tok := range tokens {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		idx := hashToIndex(tok, s.dims)
		v[idx] += 1.0

		for _, gram := range charNgrams(tok, 3) {
			gidx := hashToIndex("#"+gram, s.dims)
			v[gidx] += 0.25
		}
	}
	return normalizeVector(v)
}

// tokenizeWords lower-cases and splits on anything that isn't a letter or
// digit, which is adequate for office-document and email prose (unlike
// the teacher's splitCodeToken/splitCamelCase, which exist to break up
// identifiers rather than natural-language words).
func tokenizeWords(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// charNgrams returns overlapping character n-grams of the given size,
// which lets the static embedder give partial credit to morphological
// variants (plurals, suffixes) sharing substrings.
func charNgrams(token string, n int) []string {
	runes := []rune(token)
	if len(runes) < n {
		return nil
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

func hashToIndex(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}
