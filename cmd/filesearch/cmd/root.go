// Package cmd provides the CLI commands for filesearch.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/filesearch/engine/internal/config"
	"github.com/filesearch/engine/internal/embed"
	"github.com/filesearch/engine/internal/index"
	"github.com/filesearch/engine/internal/lexical"
	"github.com/filesearch/engine/internal/logging"
	"github.com/filesearch/engine/internal/search"
)

var dataDir string

// NewRootCmd creates the root command for the filesearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filesearch",
		Short: "Offline hybrid semantic + lexical file search",
		Long: `filesearch indexes the files under one or more directories and answers
queries by fusing dense (embedding) and lexical (BM25) search.

Everything runs locally against a data directory holding the Manifest,
Vector, and Lexical stores; no network access is required once an
embedding provider is reachable (or the static fallback is used).`,
	}

	home, err := os.UserHomeDir()
	defaultDataDir := ".filesearch"
	if err == nil {
		defaultDataDir = filepath.Join(home, ".filesearch")
	}
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir, "directory holding the manifest, vector, and lexical stores")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

// Execute runs the filesearch CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// openEngine loads configuration for dataDir and opens the Engine against
// it, wiring the configured (or auto-detected) embedding provider.
func openEngine(ctx context.Context) (*search.Engine, *config.Config, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.FromServerConfig(cfg.Server)
	if cfg.Server.LogFilePath == "" {
		logCfg.FilePath = logging.LogPathForDataDir(dataDir)
	}
	if _, cleanup, err := logging.Setup(logCfg); err == nil {
		_ = cleanup // released on process exit; Engine.Close does not own logging
	}

	embedder, err := embed.New(ctx, embed.Config{
		Provider:         embed.Provider(cfg.Embeddings.Provider),
		OllamaBaseURL:    cfg.Embeddings.OllamaHost,
		OllamaModel:      cfg.Embeddings.Model,
		StaticDimensions: cfg.Embeddings.StaticDimensions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init embedder: %w", err)
	}

	dims := embedder.Dimensions()
	tok := lexical.NewTokenizer(nil)

	eng, err := search.Open(dataDir, search.Config{
		Dimensions: dims,
		Embedder:   embedder,
		Tokenizer:  tok,
		Search: search.Options{
			TopKDense:           cfg.Search.TopKDense,
			TopKBM25:            cfg.Search.TopKBM25,
			RRFK:                cfg.Search.RRFK,
			MaxResults:          cfg.Search.MaxResults,
			MaxEvidencesPerFile: cfg.Search.MaxEvidencesPerFile,
			MetadataOnlyDecay:   cfg.Search.MetadataOnlyDecay,
		},
		Index: index.Options{
			ChunkSize:    cfg.Chunking.ChunkSize,
			ChunkOverlap: cfg.Chunking.ChunkOverlap,
			ExcelMaxRows: cfg.Chunking.ExcelMaxRows,
			ExcelMaxCols: cfg.Chunking.ExcelMaxCols,
			WorkerCount:  cfg.Performance.WorkerCount,
			Enumeration: index.EnumerationOptions{
				IncludeHidden:    cfg.Enumeration.IncludeHidden,
				MaxDepth:         cfg.Enumeration.MaxDepth,
				MaxFileSizeBytes: cfg.Enumeration.MaxFileSizeBytes,
				ExtensionsFilter: cfg.Enumeration.ExtensionsFilter,
				ExcludePatterns:  append(append([]string{}, cfg.Paths.Exclude...), cfg.Enumeration.ExcludePatterns...),
			},
		},
	})
	if err != nil {
		_ = embedder.Close()
		return nil, nil, fmt.Errorf("open engine: %w", err)
	}

	return eng, cfg, nil
}
