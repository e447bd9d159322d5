// Package bucket groups recorded identifiers by the file they are unique to, or under the
// shared group when they occur in more than one file.
package bucket

import (
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/occurs"
)

// Build walks identifiers by descending count and places each in exactly one bucket.
func Build(table *occurs.Table) model.BucketMap {
	buckets := model.BucketMap{}
	if table == nil {
		return buckets
	}
	for _, ident := range table.MostCommon() {
		files := table.Files(ident)
		group := model.SharedGroup
		if len(files) == 1 {
			group = files[0]
		}
		buckets[group] = append(buckets[group], ident)
	}
	return buckets
}

// Summary counts identifiers per bucket.
type Summary struct {
	Group       string `json:"group"`
	Identifiers int    `json:"identifiers"`
}

// Summarize reports bucket sizes in sorted group order.
func Summarize(buckets model.BucketMap) []Summary {
	groups := buckets.Groups()
	summaries := make([]Summary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, Summary{Group: group, Identifiers: len(buckets[group])})
	}
	return summaries
}
