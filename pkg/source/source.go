// Package source opens source files as streams of decoded runes for a named text encoding.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// UTF8 is the canonical name of the strict UTF-8 encoding.
const UTF8 = "utf-8"

// DecodeError reports bytes that are invalid for the declared encoding.
type DecodeError struct {
	Path     string
	Encoding string
	Offset   int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid %s byte sequence at offset %d", e.Path, e.Encoding, e.Offset)
}

var aliases = map[string]encoding.Encoding{
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"l1":           charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp1251":       charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
}

// Normalize returns the lookup form of an encoding name.
func Normalize(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "utf8", UTF8:
		return UTF8
	}
	return strings.ReplaceAll(normalized, "_", "-")
}

// Lookup resolves an encoding name. It returns a nil encoding for UTF-8, which is decoded
// strictly instead of through a transformer.
func Lookup(name string) (encoding.Encoding, error) {
	normalized := Normalize(name)
	if normalized == UTF8 {
		return nil, nil
	}
	if enc, ok := aliases[normalized]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil {
		// IANA names such as Shift_JIS keep their underscore.
		enc, err = ianaindex.IANA.Encoding(strings.TrimSpace(name))
	}
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// NewReader decodes r according to encodingName. path only labels decode errors.
func NewReader(r io.Reader, encodingName, path string) (io.RuneReader, error) {
	enc, err := Lookup(encodingName)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return &strictReader{in: bufio.NewReader(r), path: path}, nil
	}
	name := Normalize(encodingName)
	if table, ok := enc.(*charmap.Charmap); ok {
		return &charmapReader{in: bufio.NewReader(r), table: table, path: path, encoding: name}, nil
	}
	decoded := bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))
	return &replacementReader{in: decoded, path: path, encoding: name}, nil
}

// File is an open source file readable rune by rune.
type File struct {
	io.RuneReader
	file *os.File
}

// Open opens path for decoding with encodingName.
func Open(path, encodingName string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(file, encodingName, path)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &File{RuneReader: reader, file: file}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

type strictReader struct {
	in     *bufio.Reader
	path   string
	offset int64
}

func (s *strictReader) ReadRune() (rune, int, error) {
	ch, size, err := s.in.ReadRune()
	if err != nil {
		return ch, size, err
	}
	if ch == utf8.RuneError && size == 1 {
		return 0, 0, &DecodeError{Path: s.path, Encoding: UTF8, Offset: s.offset}
	}
	s.offset += int64(size)
	return ch, size, nil
}

// charmapReader decodes a single-byte code page and rejects bytes the page leaves
// undefined.
type charmapReader struct {
	in       *bufio.Reader
	table    *charmap.Charmap
	path     string
	encoding string
	offset   int64
}

func (c *charmapReader) ReadRune() (rune, int, error) {
	b, err := c.in.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	ch := c.table.DecodeByte(b)
	if ch == utf8.RuneError {
		return 0, 0, &DecodeError{Path: c.path, Encoding: c.encoding, Offset: c.offset}
	}
	c.offset++
	return ch, 1, nil
}

// replacementReader fails on the replacement character a multi-byte decoder emits for
// invalid input. Offset counts decoded UTF-8 bytes since the source offset is not known.
type replacementReader struct {
	in       *bufio.Reader
	path     string
	encoding string
	offset   int64
}

func (r *replacementReader) ReadRune() (rune, int, error) {
	ch, size, err := r.in.ReadRune()
	if err != nil {
		return ch, size, err
	}
	if ch == utf8.RuneError {
		return 0, 0, &DecodeError{Path: r.path, Encoding: r.encoding, Offset: r.offset}
	}
	r.offset += int64(size)
	return ch, size, nil
}
