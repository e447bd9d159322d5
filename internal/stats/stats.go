package stats

import (
	"fmt"
	"sort"

	"github.com/odvcencio/transltr/pkg/bucket"
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/pipeline"
)

type Options struct {
	TopIdentifiers int
	TopFiles       int
}

type IdentifierCount struct {
	Identifier string `json:"identifier"`
	Count      int    `json:"count"`
	Files      int    `json:"files"`
}

type FileMetric struct {
	Path        string `json:"path"`
	Identifiers int    `json:"identifiers"`
	Unique      int    `json:"unique"`
	Occurrences int    `json:"occurrences"`
}

type Report struct {
	FileCount       int               `json:"file_count"`
	IdentifierCount int               `json:"identifier_count"`
	OccurrenceCount int               `json:"occurrence_count"`
	FailedCount     int               `json:"failed_count"`
	SharedCount     int               `json:"shared_count"`
	SharedRatio     float64           `json:"shared_ratio"`
	TopIdentifiers  []IdentifierCount `json:"top_identifiers,omitempty"`
	TopFiles        []FileMetric      `json:"top_files,omitempty"`
	Groups          []bucket.Summary  `json:"groups,omitempty"`
}

// Build summarizes a read run: the most frequent identifiers, how many identifiers each file
// uses and owns, and the share of identifiers that ended up in the shared group.
func Build(read *pipeline.ReadReport, opts Options) (Report, error) {
	if read == nil || read.Table == nil {
		return Report{}, fmt.Errorf("read report is nil")
	}
	if opts.TopIdentifiers <= 0 {
		opts.TopIdentifiers = 20
	}
	if opts.TopFiles <= 0 {
		opts.TopFiles = 10
	}
	table := read.Table

	type fileAgg struct {
		identifiers int
		occurrences int
	}
	perFile := make(map[string]*fileAgg, len(read.Files))
	for _, path := range read.Files {
		perFile[path] = &fileAgg{}
	}

	for _, ident := range table.Identifiers() {
		seen := map[string]bool{}
		for _, site := range table.Sites(ident) {
			agg, ok := perFile[site.File]
			if !ok {
				agg = &fileAgg{}
				perFile[site.File] = agg
			}
			agg.occurrences++
			if !seen[site.File] {
				seen[site.File] = true
				agg.identifiers++
			}
		}
	}

	fileMetrics := make([]FileMetric, 0, len(perFile))
	for path, agg := range perFile {
		fileMetrics = append(fileMetrics, FileMetric{
			Path:        path,
			Identifiers: agg.identifiers,
			Unique:      len(read.Buckets[path]),
			Occurrences: agg.occurrences,
		})
	}
	sort.Slice(fileMetrics, func(i, j int) bool {
		if fileMetrics[i].Occurrences == fileMetrics[j].Occurrences {
			return fileMetrics[i].Path < fileMetrics[j].Path
		}
		return fileMetrics[i].Occurrences > fileMetrics[j].Occurrences
	})
	if opts.TopFiles < len(fileMetrics) {
		fileMetrics = fileMetrics[:opts.TopFiles]
	}

	common := table.MostCommon()
	if opts.TopIdentifiers < len(common) {
		common = common[:opts.TopIdentifiers]
	}
	identList := make([]IdentifierCount, 0, len(common))
	for _, ident := range common {
		identList = append(identList, IdentifierCount{
			Identifier: ident,
			Count:      table.Count(ident),
			Files:      len(table.Files(ident)),
		})
	}

	report := Report{
		FileCount:       len(read.Files),
		IdentifierCount: table.Len(),
		OccurrenceCount: table.Total(),
		FailedCount:     read.Failed(),
		SharedCount:     len(read.Buckets[model.SharedGroup]),
		TopIdentifiers:  identList,
		TopFiles:        fileMetrics,
		Groups:          bucket.Summarize(read.Buckets),
	}
	if report.IdentifierCount > 0 {
		report.SharedRatio = float64(report.SharedCount) / float64(report.IdentifierCount)
	}
	return report, nil
}
