// Package files expands glob patterns and directories into the sorted list of source files
// a read or apply run should process.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/odvcencio/transltr/pkg/ignore"
)

// Options filters expanded paths.
type Options struct {
	Ignore *ignore.Matcher
	// SkipSuffixes drops files whose name ends with one of the suffixes, such as the
	// ".tmp" outputs of an earlier apply run.
	SkipSuffixes []string
}

// Entry is one file selected for processing.
type Entry struct {
	// Path is the slash-separated path as matched, used as the file's group key.
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// Expand resolves pattern to regular files. A directory is walked recursively, skipping
// VCS and hidden directories; anything else is treated as a doublestar glob ("**" crosses
// directories). Results are sorted by path.
func Expand(pattern string, opts Options) ([]Entry, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, errors.New("empty file pattern")
	}

	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		return walkDir(pattern, opts)
	}

	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if skip(match, opts) {
			continue
		}
		entries = append(entries, Entry{Path: filepath.ToSlash(match), SizeBytes: info.Size()})
	}
	sortEntries(entries)
	return entries, nil
}

func walkDir(root string, opts Options) ([]Entry, error) {
	entries := make([]Entry, 0, 64)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == root {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}

		if entry.IsDir() {
			name := entry.Name()
			if name == ".git" || name == ".hg" || name == ".svn" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if opts.Ignore.Match(filepath.ToSlash(relPath), true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() || skip(relPath, opts) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: filepath.ToSlash(path), SizeBytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(entries)
	return entries, nil
}

func skip(path string, opts Options) bool {
	name := filepath.Base(path)
	for _, suffix := range opts.SkipSuffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	if strings.HasSuffix(name, ".partial") {
		return true
	}
	return opts.Ignore.MatchAny(filepath.ToSlash(path))
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// Paths returns the paths of entries.
func Paths(entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}
