package pipeline

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/scan"
)

// Options holds settings shared by both passes.
type Options struct {
	Scan     scan.Options
	Encoding string
	Workers  int
	Logger   *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Warning flags a file that scanned successfully but ended inside a quote or comment.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// failures collects per-file errors. A failed file never aborts the run.
type failures struct {
	Errors []model.FileError `json:"errors,omitempty"`
	errs   []error
}

func (f *failures) add(path string, err error) {
	f.Errors = append(f.Errors, model.FileError{Path: path, Error: err.Error()})
	f.errs = append(f.errs, err)
}

// Err combines every per-file error, or returns nil when all files succeeded.
func (f *failures) Err() error {
	return multierr.Combine(f.errs...)
}

// Failed returns the number of files that failed.
func (f *failures) Failed() int {
	return len(f.Errors)
}
