package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/filesearch/engine/internal/errors"
)

// RotatingWriter implements io.Writer with size-based rotation. Every
// failure NewRotatingWriter, Sync and Close return is an *errors.Error
// tagged with an IO-category code; Write returns the underlying file error
// (§7's taxonomy) so a caller can distinguish "disk full" from "permission
// denied" without string-matching.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool // Sync after each write for real-time visibility
}

// NewRotatingWriter creates a new rotating log writer.
// maxSizeMB is the maximum size in megabytes before rotation.
// maxFiles is the maximum number of rotated files to keep.
// Immediate sync is enabled by default for real-time log visibility.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		maxFiles:      maxFiles,
		immediateSync: true, // Enable by default so tailing the file shows each line at once
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFilePermission, "create log directory").WithDetail("dir", dir)
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}

	return w, nil
}

// SetImmediateSync enables or disables immediate sync after each write.
// When enabled, logs are immediately visible to a reader tailing the file.
// When disabled, logs may be buffered for better performance.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write implements io.Writer with automatic rotation. A rotation failure
// is logged to stderr and, if rotation left no file open, the log path is
// reopened so writing continues rather than dropping the log line; the
// rotation failure itself never surfaces as a Write error since slog
// callers treat handler errors as fatal.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if rotErr := w.rotate(); rotErr != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", rotErr)
			if w.file == nil {
				_ = w.openFile()
			}
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)

	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}

	return
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return errors.Wrap(err, errors.ErrCodeFilePermission, "close log file").WithDetail("path", w.path)
		}
	}
	return nil
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		if err := w.file.Sync(); err != nil {
			return errors.Wrap(err, errors.ErrCodeDiskFull, "sync log file").WithDetail("path", w.path)
		}
	}
	return nil
}

// openFile opens or creates the log file.
func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFilePermission, "open log file").WithDetail("path", w.path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrCodeFilePermission, "stat log file").WithDetail("path", w.path)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotate performs log rotation: current.log -> current.log.1 -> current.log.2
// -> ... -> delete oldest beyond maxFiles.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return errors.Wrap(err, errors.ErrCodeFilePermission, "close log file before rotation").WithDetail("path", w.path)
		}
		w.file = nil
	}

	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	pattern := base + ".*"

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFilePermission, "list rotated log files").WithDetail("dir", dir)
	}

	type rotatedFile struct {
		path string
		num  int
	}
	var files []rotatedFile
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), base+".")
		num, err := strconv.Atoi(suffix)
		if err != nil {
			continue // not a numbered rotation file
		}
		files = append(files, rotatedFile{path: m, num: num})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].num > files[j].num
	})

	for _, f := range files {
		if f.num >= w.maxFiles {
			_ = os.Remove(f.path)
		}
	}

	for _, f := range files {
		if f.num < w.maxFiles {
			newPath := fmt.Sprintf("%s.%d", w.path, f.num+1)
			_ = os.Rename(f.path, newPath)
		}
	}

	if _, err := os.Stat(w.path); err == nil {
		newPath := w.path + ".1"
		if err := os.Rename(w.path, newPath); err != nil {
			return errors.Wrap(err, errors.ErrCodeFilePermission, "rotate log file").WithDetail("path", w.path)
		}
	}

	w.written = 0
	return w.openFile()
}
