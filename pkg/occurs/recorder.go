package occurs

import (
	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/scan"
)

// Recorder is a scan.Visitor that records identifier runs of one file into a Table.
type Recorder struct {
	table *Table
	file  string
}

var _ scan.Visitor = (*Recorder)(nil)

// NewRecorder returns a Recorder that tags every occurrence with file.
func NewRecorder(table *Table, file string) *Recorder {
	return &Recorder{table: table, file: file}
}

// ReadIdent records runs longer than one rune. Single-rune identifiers are noise and are
// never counted.
func (r *Recorder) ReadIdent(run model.Run) {
	if run.Len() <= 1 {
		return
	}
	r.table.Add(run.Text, model.Site{
		File:   r.file,
		Line:   run.Pos.Line,
		Column: run.Pos.Column,
	})
}

// ReadChar ignores plain characters.
func (r *Recorder) ReadChar(rune, model.Position, scan.Quote) {}

