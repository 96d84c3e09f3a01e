package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesearch/engine/internal/config"
	filesearcherrors "github.com/filesearch/engine/internal/errors"
)

func TestDefaultLogDir_ContainsFilesearch(t *testing.T) {
	dir := DefaultLogDir()
	assert.NotEmpty(t, dir)
	assert.True(t, strings.Contains(dir, ".filesearch"))
	assert.True(t, strings.Contains(dir, "logs"))
}

func TestDefaultLogPath_EndsWithFilesearchLog(t *testing.T) {
	path := DefaultLogPath()
	assert.Equal(t, "filesearch.log", filepath.Base(path))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
}

func TestDebugConfig(t *testing.T) {
	assert.Equal(t, "debug", DebugConfig().Level)
}

func TestFromServerConfig_UsesConfiguredFields(t *testing.T) {
	sc := config.ServerConfig{
		LogLevel:     "warn",
		LogFilePath:  "/tmp/custom/filesearch.log",
		LogMaxSizeMB: 20,
		LogMaxFiles:  2,
		LogToStderr:  true,
	}

	cfg := FromServerConfig(sc)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "/tmp/custom/filesearch.log", cfg.FilePath)
	assert.Equal(t, 20, cfg.MaxSizeMB)
	assert.Equal(t, 2, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
}

func TestFromServerConfig_FallsBackToDefaultsForZeroFields(t *testing.T) {
	cfg := FromServerConfig(config.ServerConfig{})
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.False(t, cfg.WriteToStderr)
}

func TestLogPathForDataDir_ScopesUnderDataDir(t *testing.T) {
	path := LogPathForDataDir("/data/project-a")
	assert.Equal(t, filepath.Join("/data/project-a", "logs", "filesearch.log"), path)
}

func TestSetup_CreatesLogFileAndLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	cfg := Config{Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 3, WriteToStderr: false}

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, logger)

	logger.Info("test message")
	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]string{
		"debug": "DEBUG", "DEBUG": "DEBUG",
		"info": "INFO", "INFO": "INFO",
		"warn": "WARN", "warning": "WARN",
		"error": "ERROR", "ERROR": "ERROR",
		"unknown": "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, LevelFromString(in).String(), "input %q", in)
	}
}

func TestFindLogFile_NotFound(t *testing.T) {
	_, err := FindLogFile("/nonexistent/path/to/log.log")
	require.Error(t, err)
	assert.Equal(t, filesearcherrors.ErrCodeFileNotFound, filesearcherrors.GetCode(err))
}

func TestFindLogFile_ExplicitPath(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(logPath, []byte("test"), 0o644))

	found, err := FindLogFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, logPath, found)
}

func TestEnsureLogDir(t *testing.T) {
	assert.NoError(t, EnsureLogDir())
}

func TestRotatingWriter_ImmediateSyncIsVisibleWithoutClose(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	testData := []byte(`{"time":"2026-01-01T00:00:00Z","level":"INFO","msg":"test"}` + "\n")
	n, err := w.Write(testData)
	require.NoError(t, err)
	assert.Equal(t, len(testData), n)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, string(testData), string(content))
}

func TestRotatingWriter_DisableImmediateSyncStillReadableAfterSync(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer w.Close()
	w.SetImmediateSync(false)

	testData := []byte("buffered line\n")
	_, err = w.Write(testData)
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, string(testData), string(content))
}

func TestRotatingWriter_RotatesWhenSizeExceeded(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	w, err := NewRotatingWriter(logPath, 0, 3) // 0MB forces rotation on any write
	require.NoError(t, err)
	defer w.Close()

	large := make([]byte, 2048)
	for i := range large {
		large[i] = 'x'
	}
	_, err = w.Write(large)
	require.NoError(t, err)
	_, err = w.Write(large)
	require.NoError(t, err)

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
	_, err = os.Stat(logPath + ".1")
	assert.NoError(t, err)
}

func TestRotatingWriter_DeletesBeyondMaxFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "maxfiles.log")
	w, err := NewRotatingWriter(logPath, 0, 2)
	require.NoError(t, err)
	defer w.Close()

	chunk := make([]byte, 1024)
	for i := 0; i < 5; i++ {
		_, _ = w.Write(chunk)
	}

	_, err = os.Stat(logPath + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestNewRotatingWriter_UnwritableDirReturnsStructuredIOError(t *testing.T) {
	// A regular file can't be treated as a parent directory; MkdirAll
	// over it must fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewRotatingWriter(filepath.Join(blocker, "sub", "test.log"), 1, 3)
	require.Error(t, err)
	assert.Equal(t, filesearcherrors.ErrCodeFilePermission, filesearcherrors.GetCode(err))
}

func TestRotatingWriter_CloseThenSyncErrorsGracefully(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "close.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)

	_, err = w.Write([]byte("test data\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.Sync())
}

func TestRotatingWriter_SyncPersistsData(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sync.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("test data to sync\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test data to sync")
}

func TestRotatingWriter_ConcurrentWritesDoNotCorrupt(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewRotatingWriter(logPath, 5, 3)
	require.NoError(t, err)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Write([]byte("concurrent line\n"))
		}()
	}
	wg.Wait()

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
