package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/odvcencio/transltr/pkg/bucket"
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/occurs"
	"github.com/odvcencio/transltr/pkg/scan"
	"github.com/odvcencio/transltr/pkg/source"
	"github.com/odvcencio/transltr/pkg/syntax"
)

// DefaultReadEncoding is the source encoding read mode assumes when none is configured.
const DefaultReadEncoding = "latin-1"

// ReadOptions configures a read run.
type ReadOptions struct {
	Options
	// Existing is the previous syntax table; its translations survive re-seeding.
	Existing model.SyntaxTable
	From     string
	To       string
	// Out is where the seeded table is saved. Empty skips saving.
	Out string
}

// ReadReport is the outcome of a read run.
type ReadReport struct {
	Files    []string          `json:"files"`
	Buckets  model.BucketMap   `json:"buckets"`
	Syntax   model.SyntaxTable `json:"-"`
	Table    *occurs.Table     `json:"-"`
	Warnings []Warning         `json:"warnings,omitempty"`
	Saved    string            `json:"saved,omitempty"`
	failures
}

type readResult struct {
	table      *occurs.Table
	unfinished string
}

// Read records identifier occurrences in every path, buckets them by file uniqueness and
// seeds a syntax table from the buckets. Files that fail to decode are reported and skipped.
// The returned error is non-nil only when saving the table fails.
func Read(ctx context.Context, paths []string, opts ReadOptions) (*ReadReport, error) {
	logger := opts.logger()
	encoding := opts.Encoding
	if encoding == "" {
		encoding = DefaultReadEncoding
	}

	results, errs := runFiles(ctx, paths, opts.Workers, func(path string) (readResult, error) {
		return recordFile(path, encoding, opts.Scan)
	})

	report := &ReadReport{Files: make([]string, 0, len(paths)), Table: occurs.NewTable()}
	for i, path := range paths {
		if errs[i] != nil {
			logger.Warn("read failed", zap.String("file", path), zap.Error(errs[i]))
			report.add(path, errs[i])
			continue
		}
		result := results[i]
		if result.unfinished != "" {
			logger.Warn("file ends inside "+result.unfinished, zap.String("file", path))
			report.Warnings = append(report.Warnings, Warning{Path: path, Message: "unterminated " + result.unfinished})
		}
		logger.Debug("file scanned",
			zap.String("file", path),
			zap.Int("identifiers", result.table.Len()),
			zap.Int("occurrences", result.table.Total()),
		)
		report.Table.Merge(result.table)
		report.Files = append(report.Files, path)
	}

	report.Buckets = bucket.Build(report.Table)
	report.Syntax = syntax.Seed(report.Buckets, opts.Existing, opts.From, opts.To)

	if opts.Out != "" {
		if err := syntax.Save(opts.Out, report.Syntax); err != nil {
			return report, fmt.Errorf("save %s: %w", opts.Out, err)
		}
		report.Saved = opts.Out
		logger.Info("syntax file written",
			zap.String("path", opts.Out),
			zap.Int("groups", len(report.Syntax)),
			zap.Int("entries", report.Syntax.EntryCount()),
		)
	}
	return report, nil
}

func recordFile(path, encoding string, scanOpts scan.Options) (readResult, error) {
	file, err := source.Open(path, encoding)
	if err != nil {
		return readResult{}, err
	}
	defer file.Close()

	table := occurs.NewTable()
	scanner := scan.New(scanOpts)
	if err := scanner.Scan(occurs.NewRecorder(table, path), file); err != nil {
		return readResult{}, err
	}
	return readResult{table: table, unfinished: scanner.Unterminated()}, nil
}
