package embed

import (
	"context"
	"math"
)

// Embedder is the narrow capability collaborator the indexer and search
// engine depend on. Implementations are expected to be stateless between
// batches and safe for concurrent use by a single caller at a time; the
// indexer serializes calls through one funnel, so Embedder implementations
// do not need to be safe for concurrent EncodeBatch calls from multiple
// goroutines.
type Embedder interface {
	// Dimensions reports the length of vectors this embedder produces.
	Dimensions() int

	// EncodeBatch embeds a batch of texts, returning one L2-normalized
	// vector per input in the same order. An empty texts slice returns
	// an empty result without error.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Available reports whether the embedder is currently usable. A
	// provider backed by a remote process (e.g. Ollama) should perform a
	// cheap liveness check; a purely local provider always returns true.
	Available(ctx context.Context) bool

	// ModelName identifies the embedding model for provenance/logging.
	ModelName() string

	// Close releases any held resources (connections, file handles).
	Close() error
}

// normalizeVector scales v to unit L2 norm in place and returns it. A
// zero vector is left unchanged since there is no direction to normalize
// toward.
func normalizeVector(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
	return v
}
