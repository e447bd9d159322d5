// Package watch reruns a callback when files under a directory tree change, coalescing bursts
// of filesystem events with a debounce timer.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/odvcencio/transltr/pkg/ignore"
)

const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	Debounce time.Duration
	Ignore   *ignore.Matcher
	// IgnorePaths are absolute paths whose events never trigger a rerun, such as the syntax
	// file a read run writes.
	IgnorePaths []string
	// IgnoreSuffixes drop events for generated files, such as apply outputs.
	IgnoreSuffixes []string
	Logger         *zap.Logger
}

// Root returns the directory to watch for a file pattern: the directory itself, the static
// prefix of a glob, or the parent of a single file.
func Root(pattern string) string {
	if info, err := os.Stat(pattern); err == nil {
		if info.IsDir() {
			return pattern
		}
		return filepath.Dir(pattern)
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	if base == "" {
		return "."
	}
	return filepath.FromSlash(base)
}

// Run watches target recursively until ctx is done, calling onChange with the sorted set of
// paths that changed during each quiet period. A watcher error ends the run.
func Run(ctx context.Context, target string, opts Options, onChange func(changed []string)) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root, root, opts.Ignore); err != nil {
		return err
	}
	logger.Info("watching", zap.String("root", root))

	ignorePaths := make(map[string]bool, len(opts.IgnorePaths))
	for _, path := range opts.IgnorePaths {
		if abs, err := filepath.Abs(path); err == nil {
			ignorePaths[filepath.Clean(abs)] = true
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		pendingPaths[path] = true
		if pending {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			eventPath := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					if !skipDir(root, eventPath, info.Name(), opts.Ignore) {
						_ = addRecursive(watcher, eventPath, root, opts.Ignore)
					}
					continue
				}
			}
			if ignoredPath(eventPath, root, ignorePaths, opts) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change", zap.String("file", eventPath), zap.String("op", event.Op.String()))
			resetDebounce(eventPath)
		case <-timer.C:
			if pending {
				pending = false
				changed := make([]string, 0, len(pendingPaths))
				for path := range pendingPaths {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				pendingPaths = map[string]bool{}
				onChange(changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, dir, root string, matcher *ignore.Matcher) error {
	return filepath.WalkDir(filepath.Clean(dir), func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if skipDir(root, path, entry.Name(), matcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func skipDir(root, path, name string, matcher *ignore.Matcher) bool {
	if path == root {
		return false
	}
	if name == ".git" || name == ".hg" || name == ".svn" || strings.HasPrefix(name, ".") {
		return true
	}
	if relPath, err := filepath.Rel(root, path); err == nil {
		return matcher.Match(filepath.ToSlash(relPath), true)
	}
	return false
}

func ignoredPath(path, root string, ignorePaths map[string]bool, opts Options) bool {
	if ignorePaths[path] {
		return true
	}

	base := filepath.Base(path)
	if base == ".DS_Store" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") || strings.HasSuffix(base, ".partial") {
		return true
	}
	for _, suffix := range opts.IgnoreSuffixes {
		if suffix != "" && strings.HasSuffix(base, suffix) {
			return true
		}
	}
	if relPath, err := filepath.Rel(root, path); err == nil {
		return opts.Ignore.MatchAny(filepath.ToSlash(relPath))
	}
	return false
}
