package embed

import (
	"context"
	"os"

	"github.com/filesearch/engine/internal/errors"
)

// Provider names a concrete Embedder implementation.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderStatic Provider = "static"
)

// Config selects and configures an Embedder.
type Config struct {
	// Provider pins a specific implementation. Empty means auto-detect.
	Provider Provider

	// OllamaBaseURL and OllamaModel configure the Ollama provider.
	OllamaBaseURL string
	OllamaModel   string

	// StaticDimensions configures the fallback embedder's width.
	StaticDimensions int
}

// New builds an Embedder following the same fallback chain shape as the
// ambient stack's config loader: an explicit provider wins outright; with
// no explicit provider, Ollama is tried first since it gives real
// semantic embeddings, falling back to the deterministic static embedder
// so indexing never hard-fails for lack of a reachable model. A caller
// that explicitly requests "static" gets it even if Ollama is reachable.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	if v := os.Getenv("FILESEARCH_EMBED_PROVIDER"); v != "" && cfg.Provider == "" {
		cfg.Provider = Provider(v)
	}

	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaEmbedder(ctx, cfg.OllamaBaseURL, cfg.OllamaModel)
	case ProviderStatic:
		return NewStaticEmbedder(cfg.StaticDimensions), nil
	case "":
		if e, err := NewOllamaEmbedder(ctx, cfg.OllamaBaseURL, cfg.OllamaModel); err == nil {
			return e, nil
		}
		return NewStaticEmbedder(cfg.StaticDimensions), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unknown embedding provider: "+string(cfg.Provider))
	}
}

// Degraded reports whether e is operating without a real embedding
// model, i.e. whether it is the hash-based StaticEmbedder.
func Degraded(e Embedder) bool {
	_, ok := e.(*StaticEmbedder)
	return ok
}
