// Package substitute rewrites identifier runs through a syntax mapping table, choosing the
// longest known token at each position and copying everything else through unchanged.
package substitute

import (
	"bufio"
	"io"

	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/scan"
)

// DefaultSystemPrefix is written in front of every system-expression run.
const DefaultSystemPrefix = "$ "

// Options selects the tags used for lookup and the system-expression prefix.
type Options struct {
	From         string
	To           string
	SystemPrefix string
}

// Stats counts what the engine did with each token.
type Stats struct {
	Substituted int `json:"substituted"`
	Unchanged   int `json:"unchanged"`
	System      int `json:"system"`
}

// Engine is a scan.Visitor that writes the rewritten file to an output stream. The first
// write error is latched and returned by Flush; visitor calls never fail.
type Engine struct {
	index  *Index
	file   string
	prefix string

	out   *bufio.Writer
	err   error
	stats Stats
}

var _ scan.Visitor = (*Engine)(nil)

// NewEngine returns an Engine rewriting file into w using index.
func NewEngine(index *Index, file string, w io.Writer, opts Options) *Engine {
	prefix := opts.SystemPrefix
	if prefix == "" {
		prefix = DefaultSystemPrefix
	}
	return &Engine{
		index:  index,
		file:   file,
		prefix: prefix,
		out:    bufio.NewWriter(w),
	}
}

// ReadChar copies ch through unchanged.
func (e *Engine) ReadChar(ch rune, _ model.Position, _ scan.Quote) {
	e.writeRune(ch)
}

// ReadIdent writes the run, substituting known tokens.
func (e *Engine) ReadIdent(run model.Run) {
	if run.System {
		e.stats.System++
		e.writeString(e.prefix)
		e.writeString(run.Text)
		return
	}

	chars := []rune(run.Text)
	if len(chars) == 1 {
		if replacement, ok := e.index.Find(model.SharedGroup, run.Text); ok {
			e.stats.Substituted++
			e.writeString(replacement)
			return
		}
		e.stats.Unchanged++
		e.writeString(run.Text)
		return
	}

	for pos := 0; pos < len(chars); {
		if n, replacement, ok := LongestMatch(chars, pos, e.lookup); ok {
			e.stats.Substituted++
			e.writeString(replacement)
			pos += n
		} else {
			end := pos
			for end < len(chars) && chars[end] != ' ' {
				end++
			}
			if end > pos {
				e.stats.Unchanged++
				e.writeString(string(chars[pos:end]))
			}
			pos = end
		}
		for pos < len(chars) && chars[pos] == ' ' {
			e.writeRune(' ')
			pos++
		}
	}
}

// lookup prefers the file's own group and falls back to the shared group.
func (e *Engine) lookup(token string) (string, bool) {
	if replacement, ok := e.index.Find(e.file, token); ok {
		return replacement, true
	}
	return e.index.Find(model.SharedGroup, token)
}

// Flush writes buffered output and returns the first error seen.
func (e *Engine) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.out.Flush()
	return e.err
}

// Stats returns token counters for the rewritten file.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.out.WriteString(s)
}

func (e *Engine) writeRune(ch rune) {
	if e.err != nil {
		return
	}
	_, e.err = e.out.WriteRune(ch)
}
