// Package model holds the types shared between the scanner and its consumers.
package model

import "sort"

// SharedGroup is the group key for identifiers that occur in more than one file.
const SharedGroup = "_"

// Position is a 1-based line/column location inside a scanned file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Run is a completed identifier run handed to a visitor.
type Run struct {
	Text   string   `json:"text"`
	Pos    Position `json:"pos"`
	System bool     `json:"system,omitempty"`
}

// Len returns the number of runes in the run.
func (r Run) Len() int {
	return len([]rune(r.Text))
}

// Site is a single identifier occurrence.
type Site struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Entry maps language tags to token text, for example {"en": "begin", "ru": "начало"}.
type Entry map[string]string

// SyntaxTable maps a group key (file name or SharedGroup) to its ordered translation entries.
type SyntaxTable map[string][]Entry

// NewSyntaxTable returns a table holding only an empty shared group.
func NewSyntaxTable() SyntaxTable {
	return SyntaxTable{SharedGroup: nil}
}

// Groups returns the group keys in sorted order.
func (t SyntaxTable) Groups() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EntryCount returns the total number of entries across all groups.
func (t SyntaxTable) EntryCount() int {
	total := 0
	for _, entries := range t {
		total += len(entries)
	}
	return total
}

// BucketMap maps a group key to identifiers ordered by descending global count.
type BucketMap map[string][]string

// Groups returns the bucket keys in sorted order.
func (b BucketMap) Groups() []string {
	keys := make([]string, 0, len(b))
	for key := range b {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FileError records a file that failed to scan or rewrite.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
