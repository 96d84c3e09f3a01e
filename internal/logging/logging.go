package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/filesearch/engine/internal/config"
	"github.com/filesearch/engine/internal/errors"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Setup always opens it, so an
	// empty path makes Setup return an error.
	FilePath string
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int
	// WriteToStderr whether to also write to stderr (default: true).
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for debug mode.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// FromServerConfig translates the engine's persisted config.ServerConfig
// into a logging.Config, falling back to DefaultConfig's values for any
// level, path, size or file-count field the loaded configuration left at
// its zero value. WriteToStderr is always taken from LogToStderr as-is, so
// an unset LogToStderr turns stderr mirroring off. This is the path
// `cmd/filesearch` actually uses — Setup is never driven by hand-built
// Config literals outside tests.
func FromServerConfig(sc config.ServerConfig) Config {
	cfg := DefaultConfig()
	if sc.LogLevel != "" {
		cfg.Level = sc.LogLevel
	}
	if sc.LogFilePath != "" {
		cfg.FilePath = sc.LogFilePath
	}
	if sc.LogMaxSizeMB > 0 {
		cfg.MaxSizeMB = sc.LogMaxSizeMB
	}
	if sc.LogMaxFiles > 0 {
		cfg.MaxFiles = sc.LogMaxFiles
	}
	cfg.WriteToStderr = sc.LogToStderr
	return cfg
}

// Setup initializes file-based logging and returns a cleanup function.
// The cleanup function should be called to close the log file.
// Returns the configured logger and cleanup function.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if err := EnsureLogDir(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeFilePermission, "ensure log directory")
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	logger := slog.New(handler)

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// SetupDefault sets up logging with DebugConfig (DefaultConfig at debug
// level) and sets it as the default logger.
// Returns cleanup function.
func SetupDefault() (func(), error) {
	logger, cleanup, err := Setup(DebugConfig())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts string level to slog.Level (exported for CLI flag parsing).
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
