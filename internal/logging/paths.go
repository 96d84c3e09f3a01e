package logging

import (
	"os"
	"path/filepath"

	"github.com/filesearch/engine/internal/errors"
)

// DefaultLogDir returns the default log directory (~/.filesearch/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".filesearch", "logs")
	}
	return filepath.Join(home, ".filesearch", "logs")
}

// DefaultLogPath returns the default engine log path, used when neither
// config.ServerConfig.LogFilePath nor a per-engine data directory applies.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "filesearch.log")
}

// LogPathForDataDir returns the log path scoped to one engine's data_dir
// (data_dir/logs/filesearch.log), keeping each Engine instance's logs next
// to the Manifest/Vector/Lexical stores it describes rather than funneling
// every data directory's logs into one shared global file.
func LogPathForDataDir(dataDir string) string {
	return filepath.Join(dataDir, "logs", "filesearch.log")
}

// FindLogFile attempts to find the log file for viewing. Priority:
//  1. Explicit path (if provided)
//  2. ~/.filesearch/logs/filesearch.log (global)
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", errors.New(errors.ErrCodeFileNotFound, "log file not found").WithDetail("path", explicit)
	}

	globalPath := DefaultLogPath()
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", errors.New(errors.ErrCodeFileNotFound, "no log file found").
		WithDetail("expected_path", globalPath).
		WithSuggestion("pass an explicit path to point at a specific data directory's logs")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	if err := os.MkdirAll(DefaultLogDir(), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeFilePermission, "create default log directory")
	}
	return nil
}
