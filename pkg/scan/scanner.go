// Package scan implements the character-driven lexical scanner that separates comments,
// quoted literals, and identifier runs, and streams every rune to a Visitor.
package scan

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/odvcencio/transltr/pkg/model"
)

// SystemMarker introduces a system-expression run.
const SystemMarker = '$'

// Quote reports which quoted literal, if any, a rune was read in.
type Quote struct {
	Single bool
	Double bool
}

// Visitor consumes the scanner output.
type Visitor interface {
	// ReadChar receives every rune that is not part of an identifier run.
	ReadChar(ch rune, pos model.Position, quote Quote)
	// ReadIdent receives a completed identifier run.
	ReadIdent(run model.Run)
}

// Options tunes identifier recognition and comment nesting.
type Options struct {
	// ExtendedSymbols lets SymbolChars start and continue identifier runs.
	ExtendedSymbols bool
	SymbolChars     []rune
	// NestComments counts "(*" inside a block comment as a nested opener.
	NestComments bool
}

// DefaultSymbolChars returns the symbol set used when Options.SymbolChars is empty.
func DefaultSymbolChars() []rune {
	return []rune{'=', '>'}
}

// Scanner tracks lexical state for one file at a time. A Scanner is not safe for
// concurrent use; create one per goroutine.
type Scanner struct {
	opts    Options
	symbols map[rune]bool

	st   state
	line int
	col  int
}

// New returns a Scanner configured with opts.
func New(opts Options) *Scanner {
	chars := opts.SymbolChars
	if len(chars) == 0 {
		chars = DefaultSymbolChars()
	}
	symbols := make(map[rune]bool, len(chars))
	for _, ch := range chars {
		symbols[ch] = true
	}
	return &Scanner{opts: opts, symbols: symbols}
}

// Scan reads r to exhaustion and drives v. Lexical state is reset at the start of every call.
// A read error aborts the scan; there is no partial recovery.
func (s *Scanner) Scan(v Visitor, r io.RuneReader) error {
	s.st = state{}
	s.line = 1
	s.resetLine()

	for {
		ch, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d column %d: %w", s.line, s.col, err)
		}
		s.step(v, ch)
		if ch == '\n' {
			s.endLine(v)
		}
	}

	if s.st.inIdent {
		s.flush(v)
	}
	return nil
}

// ScanString is Scan over an in-memory string.
func (s *Scanner) ScanString(v Visitor, text string) error {
	return s.Scan(v, strings.NewReader(text))
}

// Unterminated names the quote or block comment left open by the last Scan, or "" when the
// scan ended in code.
func (s *Scanner) Unterminated() string {
	switch s.st.ctx {
	case blockComment:
		return "block comment"
	case singleQuote:
		return "single-quoted literal"
	case doubleQuote:
		return "double-quoted literal"
	default:
		return ""
	}
}

func (s *Scanner) step(v Visitor, ch rune) {
	st := &s.st

	if st.inIdent {
		s.extendIdent(v, ch)
	}

	if st.ctx == singleQuote {
		st.quoted = append(st.quoted, ch)
	}

	if !s.transition(ch) && !st.inIdent && st.ctx == codeContext {
		switch {
		case isIdentStart(ch) || s.isSymbol(ch):
			st.inIdent = true
			st.run = append(st.run, ch)
		case ch == SystemMarker:
			st.inIdent = true
			st.system = true
		}
	}

	if !st.inIdent {
		v.ReadChar(ch, model.Position{Line: s.line, Column: s.col}, Quote{
			Single: st.ctx == singleQuote,
			Double: st.ctx == doubleQuote,
		})
	}

	if ch == '\\' {
		st.escape = !st.escape
	} else {
		st.escape = false
	}
	st.prev = ch
	s.col++
}

// extendIdent appends ch to the open run or terminates it.
func (s *Scanner) extendIdent(v Visitor, ch rune) {
	st := &s.st
	switch {
	case isIdentRune(ch):
		st.run = append(st.run, ch)
	case s.isSymbol(ch):
		if st.system {
			st.inIdent = false
		} else {
			st.run = append(st.run, ch)
		}
	case ch == ' ':
		if !st.system {
			st.run = append(st.run, ch)
		} else if len(st.run) > 0 {
			st.inIdent = false
		}
	default:
		st.inIdent = false
	}

	if st.inIdent {
		return
	}
	s.flush(v)
	if ch == SystemMarker {
		st.inIdent = true
		st.system = true
	}
}

// transition applies comment and quote changes for delimiter runes. It reports whether ch is
// a delimiter rune, in which case it can never open an identifier.
func (s *Scanner) transition(ch rune) bool {
	st := &s.st
	switch ch {
	case '#':
		if !st.escape && st.ctx == codeContext {
			st.ctx = lineComment
		}
	case '\\':
	case '*':
		if st.escape || st.prev != '(' {
			break
		}
		switch {
		case st.ctx == codeContext:
			st.ctx = blockComment
			st.depth = 1
		case st.ctx == blockComment && s.opts.NestComments:
			st.depth++
		}
	case ')':
		if !st.escape && st.prev == '*' && st.ctx == blockComment {
			st.depth--
			if st.depth <= 0 || !s.opts.NestComments {
				st.depth = 0
				st.ctx = codeContext
			}
		}
	case '"':
		if st.escape {
			break
		}
		switch st.ctx {
		case codeContext:
			st.ctx = doubleQuote
		case doubleQuote:
			st.ctx = codeContext
		}
	case '\'':
		if st.escape {
			break
		}
		switch st.ctx {
		case codeContext:
			st.ctx = singleQuote
		case singleQuote:
			if len(st.quoted) > 1 {
				st.ctx = codeContext
				st.quoted = st.quoted[:0]
			} else {
				st.quoted = append(st.quoted, ch)
			}
		}
	default:
		return false
	}
	return true
}

// flush hands the open run to the visitor. An empty system-expression run is still reported
// so the consumer can reproduce the swallowed marker.
func (s *Scanner) flush(v Visitor) {
	st := &s.st
	if len(st.run) > 0 || st.system {
		v.ReadIdent(model.Run{
			Text:   string(st.run),
			Pos:    model.Position{Line: s.line, Column: s.col},
			System: st.system,
		})
	}
	st.inIdent = false
	st.system = false
	st.run = st.run[:0]
}

func (s *Scanner) endLine(v Visitor) {
	if s.st.inIdent {
		s.flush(v)
	}
	if s.st.ctx == lineComment {
		s.st.ctx = codeContext
	}
	s.line++
	s.resetLine()
}

func (s *Scanner) resetLine() {
	s.col = 1
	s.st.prev = ' '
	s.st.escape = false
	s.st.inIdent = false
	s.st.system = false
	s.st.run = s.st.run[:0]
	s.st.quoted = s.st.quoted[:0]
}

func (s *Scanner) isSymbol(ch rune) bool {
	return s.opts.ExtendedSymbols && s.symbols[ch]
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsNumber(ch) || ch == '_'
}
