// Package ignore filters enumerated source files with gitignore-style patterns read from a
// .transltrignore file.
package ignore

import (
	"bufio"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFile is the ignore file looked up in the working directory.
const DefaultFile = ".transltrignore"

type pattern struct {
	negated  bool
	dirOnly  bool
	anchored bool
	glob     string
}

// Matcher evaluates slash-separated relative paths against ignore patterns. The last
// matching pattern decides, so a later "!pattern" re-includes a path.
type Matcher struct {
	patterns []pattern
}

// Load reads patterns from a file, one per line.
func Load(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// LoadIfExists is Load that returns a nil Matcher, which matches nothing, when path does
// not exist.
func LoadIfExists(path string) (*Matcher, error) {
	m, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return m, err
}

// ParsePatterns builds a Matcher from raw pattern lines. Blank lines and "#" comments are
// skipped.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var p pattern
		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			p.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len returns the number of usable patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Match reports whether relPath should be ignored. isDir marks directory paths.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matches(relPath) {
			ignored = !p.negated
		}
	}
	return ignored
}

// MatchAny reports whether relPath or any of its parent directories is ignored.
func (m *Matcher) MatchAny(relPath string) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	for dir := path.Dir(relPath); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		if m.Match(dir, true) {
			return true
		}
	}
	return m.Match(relPath, false)
}

// matches applies gitignore placement rules: a pattern containing a slash, or an anchored
// one, is matched against the whole path; otherwise against any single path component.
func (p pattern) matches(relPath string) bool {
	if p.anchored || strings.Contains(p.glob, "/") {
		matched, _ := doublestar.Match(p.glob, relPath)
		return matched
	}
	for _, part := range strings.Split(relPath, "/") {
		if matched, _ := doublestar.Match(p.glob, part); matched {
			return true
		}
	}
	return false
}
