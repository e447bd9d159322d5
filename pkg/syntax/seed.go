package syntax

import (
	"github.com/odvcencio/transltr/pkg/model"
)

// Seed turns a bucket map into a syntax table. Every identifier maps to itself under both
// tags unless existing already holds an entry with that source text, in which case the
// existing entry is kept so earlier manual translations survive a rescan. Entries from the
// same group are preferred, then the shared group, then any other group in sorted order.
func Seed(buckets model.BucketMap, existing model.SyntaxTable, from, to string) model.SyntaxTable {
	known := indexExisting(existing, from)

	table := make(model.SyntaxTable, len(buckets))
	for _, group := range buckets.Groups() {
		idents := buckets[group]
		entries := make([]model.Entry, 0, len(idents))
		for _, ident := range idents {
			entry := known.find(group, ident)
			if entry == nil {
				entries = append(entries, model.Entry{from: ident, to: ident})
				continue
			}
			clone := make(model.Entry, len(entry))
			for tag, text := range entry {
				clone[tag] = text
			}
			if _, ok := clone[to]; !ok {
				clone[to] = ident
			}
			entries = append(entries, clone)
		}
		table[group] = entries
	}
	if len(table) == 0 {
		return model.NewSyntaxTable()
	}
	return table
}

type existingIndex struct {
	byGroup map[string]map[string]model.Entry
	any     map[string]model.Entry
}

func indexExisting(existing model.SyntaxTable, from string) existingIndex {
	idx := existingIndex{
		byGroup: make(map[string]map[string]model.Entry, len(existing)),
		any:     make(map[string]model.Entry),
	}
	for _, group := range existing.Groups() {
		byText := make(map[string]model.Entry, len(existing[group]))
		for _, entry := range existing[group] {
			source, ok := entry[from]
			if !ok {
				continue
			}
			if _, dup := byText[source]; !dup {
				byText[source] = entry
			}
			if _, dup := idx.any[source]; !dup {
				idx.any[source] = entry
			}
		}
		idx.byGroup[group] = byText
	}
	return idx
}

func (idx existingIndex) find(group, ident string) model.Entry {
	if entry, ok := idx.byGroup[group][ident]; ok {
		return entry
	}
	if entry, ok := idx.byGroup[model.SharedGroup][ident]; ok {
		return entry
	}
	return idx.any[ident]
}
