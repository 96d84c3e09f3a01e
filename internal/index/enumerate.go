package index

import (
	"path/filepath"
	"strings"
)

// denyDirNames are basenames (compared case-insensitively) always skipped
// during enumeration regardless of include_hidden, grounded on the
// reference implementation's _should_skip_dir deny set (system/cache/VCS
// directories a desktop file search has no business descending into).
var denyDirNames = map[string]struct{}{
	"$recycle.bin":        {},
	"appdata":             {},
	"programdata":         {},
	"windows":             {},
	"program files":       {},
	"program files (x86)": {},
	"__pycache__":         {},
	"node_modules":        {},
	".git":                {},
	".svn":                {},
	"venv":                {},
	"env":                 {},
	".env":                {},
	"temp":                {},
	"tmp":                 {},
	"cache":               {},
	".cache":              {},
}

// denySkipExtensions are lowercase file extensions always skipped,
// grounded on the reference implementation's SKIP_EXTENSIONS plus the
// build-artifact suffixes the specification names explicitly
// (".pyc" and friends) that the reference list predates.
var denySkipExtensions = map[string]struct{}{
	".exe": {}, ".dll": {}, ".sys": {}, ".drv": {}, ".ocx": {}, ".lnk": {}, ".url": {},
	".tmp": {}, ".bak": {}, ".swp": {}, ".log": {}, ".ini": {}, ".cfg": {},
	".pyc": {}, ".o": {}, ".obj": {}, ".class": {},
}

// shouldSkipDir reports whether a directory named name should be pruned
// from the walk. includeHidden disables the dot-prefix rule only; the
// built-in deny set always applies.
func shouldSkipDir(name string, includeHidden bool) bool {
	if !includeHidden && isHiddenName(name) {
		return true
	}
	_, denied := denyDirNames[strings.ToLower(name)]
	return denied
}

// shouldSkipFile reports whether a file named name should be excluded
// from enumeration: Office lock files, hidden files (unless
// includeHidden), and known scratch/binary suffixes.
func shouldSkipFile(name string, includeHidden bool) bool {
	if strings.HasPrefix(name, "~$") {
		return true
	}
	if !includeHidden && isHiddenName(name) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, denied := denySkipExtensions[ext]
	return denied
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// matchesAnyPattern reports whether relPath matches any of patterns,
// interpreted as shell globs against the path and its basename (so a
// pattern like "*.log" matches regardless of directory depth).
func matchesAnyPattern(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, relPath); ok {
			return true
		}
	}
	return false
}

// matchesExtensionFilter reports whether path's extension is in filter.
// An empty filter matches everything.
func matchesExtensionFilter(path string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range filter {
		if strings.ToLower(f) == ext {
			return true
		}
	}
	return false
}
