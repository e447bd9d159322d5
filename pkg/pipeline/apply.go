package pipeline

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/odvcencio/transltr/pkg/atomicfile"
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/scan"
	"github.com/odvcencio/transltr/pkg/source"
	"github.com/odvcencio/transltr/pkg/substitute"
)

const (
	// DefaultApplyEncoding is the source encoding apply mode assumes when none is configured.
	DefaultApplyEncoding = source.UTF8
	// DefaultOutputSuffix names the rewritten copy written next to each source file.
	DefaultOutputSuffix = ".tmp"
)

// ApplyOptions configures an apply run.
type ApplyOptions struct {
	Options
	Substitute substitute.Options
	// Suffix is appended to each source path to name its output.
	Suffix string
	// InPlace moves each finished output over its source file.
	InPlace bool
}

// AppliedFile describes one rewritten file.
type AppliedFile struct {
	Path   string           `json:"path"`
	Output string           `json:"output"`
	Stats  substitute.Stats `json:"stats"`
}

// ApplyReport is the outcome of an apply run.
type ApplyReport struct {
	Files    []AppliedFile `json:"files"`
	Warnings []Warning     `json:"warnings,omitempty"`
	failures
}

// Totals sums the substitution stats of every rewritten file.
func (r *ApplyReport) Totals() substitute.Stats {
	var total substitute.Stats
	for _, file := range r.Files {
		total.Substituted += file.Stats.Substituted
		total.Unchanged += file.Stats.Unchanged
		total.System += file.Stats.System
	}
	return total
}

type applyResult struct {
	file       AppliedFile
	unfinished string
}

// Apply rewrites every path through table. Each output is written atomically to
// path+Suffix, so a failed file leaves no partial output behind.
func Apply(ctx context.Context, paths []string, table model.SyntaxTable, opts ApplyOptions) *ApplyReport {
	logger := opts.logger()
	if opts.Encoding == "" {
		opts.Encoding = DefaultApplyEncoding
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultOutputSuffix
	}
	index := substitute.NewIndex(table, opts.Substitute.From, opts.Substitute.To)

	results, errs := runFiles(ctx, paths, opts.Workers, func(path string) (applyResult, error) {
		return rewriteFile(path, index, opts)
	})

	report := &ApplyReport{Files: make([]AppliedFile, 0, len(paths))}
	for i, path := range paths {
		if errs[i] != nil {
			logger.Warn("apply failed", zap.String("file", path), zap.Error(errs[i]))
			report.add(path, errs[i])
			continue
		}
		result := results[i]
		if result.unfinished != "" {
			logger.Warn("file ends inside "+result.unfinished, zap.String("file", path))
			report.Warnings = append(report.Warnings, Warning{Path: path, Message: "unterminated " + result.unfinished})
		}
		logger.Debug("file rewritten",
			zap.String("file", path),
			zap.String("output", result.file.Output),
			zap.Int("substituted", result.file.Stats.Substituted),
		)
		report.Files = append(report.Files, result.file)
	}
	return report
}

func rewriteFile(path string, index *substitute.Index, opts ApplyOptions) (applyResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return applyResult{}, err
	}

	output := path + opts.Suffix
	var (
		stats      substitute.Stats
		unfinished string
	)
	err = atomicfile.Write(output, info.Mode().Perm(), func(w io.Writer) error {
		in, err := source.Open(path, opts.Encoding)
		if err != nil {
			return err
		}
		defer in.Close()

		engine := substitute.NewEngine(index, path, w, opts.Substitute)
		scanner := scan.New(opts.Scan)
		if err := scanner.Scan(engine, in); err != nil {
			return err
		}
		if err := engine.Flush(); err != nil {
			return err
		}
		stats = engine.Stats()
		unfinished = scanner.Unterminated()
		return nil
	})
	if err != nil {
		return applyResult{}, err
	}

	if opts.InPlace {
		if err := atomicfile.Rename(output, path); err != nil {
			return applyResult{}, err
		}
		output = path
	}
	return applyResult{
		file:       AppliedFile{Path: path, Output: output, Stats: stats},
		unfinished: unfinished,
	}, nil
}
