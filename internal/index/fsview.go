package index

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FilesystemView is the read-only collaborator the Incremental Indexer
// walks and reads through. It is the seam named in the specification's
// external interfaces: a host embedding the engine against a
// non-native filesystem (a FUSE mount, a mocked tree in tests) supplies
// its own implementation instead of OSFilesystemView.
type FilesystemView interface {
	// WalkDir walks root exactly like filepath.WalkDir.
	WalkDir(root string, fn fs.WalkDirFunc) error
	// Stat returns file metadata for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile returns path's full contents.
	ReadFile(path string) ([]byte, error)
}

// OSFilesystemView is the default FilesystemView backed by the local
// operating system's filesystem.
type OSFilesystemView struct{}

func (OSFilesystemView) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

func (OSFilesystemView) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFilesystemView) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
