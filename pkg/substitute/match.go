package substitute

import "github.com/odvcencio/transltr/pkg/model"

// Lookup resolves a source token to its replacement.
type Lookup func(token string) (string, bool)

// LongestMatch finds the longest substring of text beginning at start, at least two runes
// long, that lookup resolves. It returns the matched length in runes and the replacement.
func LongestMatch(text []rune, start int, lookup Lookup) (int, string, bool) {
	if start < 0 || lookup == nil {
		return 0, "", false
	}
	for end := len(text); end >= start+2; end-- {
		if replacement, ok := lookup(string(text[start:end])); ok {
			return end - start, replacement, true
		}
	}
	return 0, "", false
}

// Index answers token lookups per group for a fixed pair of language tags.
type Index struct {
	groups map[string]map[string]string
}

// NewIndex indexes table entries by their from-tag text. The first entry wins when several
// entries of a group share the same source text; entries missing either tag are skipped.
func NewIndex(table model.SyntaxTable, from, to string) *Index {
	idx := &Index{
		groups: make(map[string]map[string]string, len(table)),
	}
	for group, entries := range table {
		byToken := make(map[string]string, len(entries))
		for _, entry := range entries {
			source, ok := entry[from]
			if !ok {
				continue
			}
			target, ok := entry[to]
			if !ok {
				continue
			}
			if _, exists := byToken[source]; exists {
				continue
			}
			byToken[source] = target
		}
		idx.groups[group] = byToken
	}
	return idx
}

// Find returns the replacement for token in group.
func (idx *Index) Find(group, token string) (string, bool) {
	if idx == nil {
		return "", false
	}
	replacement, ok := idx.groups[group][token]
	return replacement, ok
}
