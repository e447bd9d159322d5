// Package occurs records identifier occurrences produced by the scanner: a count per
// identifier and the ordered list of sites where it was seen.
package occurs

import (
	"sort"

	"github.com/odvcencio/transltr/pkg/model"
)

// Table accumulates identifier counts and occurrence sites. Sites keep scan order.
type Table struct {
	counts map[string]int
	sites  map[string][]model.Site
	order  []string
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		counts: make(map[string]int),
		sites:  make(map[string][]model.Site),
	}
}

// Add records one occurrence of ident at site.
func (t *Table) Add(ident string, site model.Site) {
	if _, seen := t.counts[ident]; !seen {
		t.order = append(t.order, ident)
	}
	t.counts[ident]++
	t.sites[ident] = append(t.sites[ident], site)
}

// Count returns the number of recorded occurrences of ident.
func (t *Table) Count(ident string) int {
	if t == nil {
		return 0
	}
	return t.counts[ident]
}

// Sites returns the occurrence sites of ident in scan order.
func (t *Table) Sites(ident string) []model.Site {
	if t == nil {
		return nil
	}
	return t.sites[ident]
}

// Has reports whether ident was recorded at least once.
func (t *Table) Has(ident string) bool {
	if t == nil {
		return false
	}
	_, ok := t.counts[ident]
	return ok
}

// Len returns the number of distinct identifiers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Total returns the number of recorded occurrences across all identifiers.
func (t *Table) Total() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, count := range t.counts {
		total += count
	}
	return total
}

// Identifiers returns identifiers in first-seen order.
func (t *Table) Identifiers() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// MostCommon returns identifiers by descending count. Ties keep first-seen order.
func (t *Table) MostCommon() []string {
	idents := t.Identifiers()
	sort.SliceStable(idents, func(i, j int) bool {
		return t.counts[idents[i]] > t.counts[idents[j]]
	})
	return idents
}

// Files returns the distinct files ident occurs in, in first-seen order.
func (t *Table) Files(ident string) []string {
	seen := map[string]bool{}
	files := make([]string, 0, 1)
	for _, site := range t.Sites(ident) {
		if seen[site.File] {
			continue
		}
		seen[site.File] = true
		files = append(files, site.File)
	}
	return files
}

// Merge appends every occurrence recorded in other after the ones already in t.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for _, ident := range other.order {
		if _, seen := t.counts[ident]; !seen {
			t.order = append(t.order, ident)
		}
		t.counts[ident] += other.counts[ident]
		t.sites[ident] = append(t.sites[ident], other.sites[ident]...)
	}
}
