// Package syntax reads and writes syntax mapping files: a YAML stream with one tagged
// document per group, each listing translation entries keyed by language tag.
package syntax

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/transltr/pkg/atomicfile"
	"github.com/odvcencio/transltr/pkg/model"
)

// DocumentTag marks every group document in a syntax file.
const DocumentTag = "!Transl"

type document struct {
	FileName    string        `yaml:"fileName"`
	Identifiers []model.Entry `yaml:"identifiers"`
}

// Decode reads every document of a syntax stream. A later document for the same group
// replaces an earlier one. An empty stream yields a table holding only the shared group.
func Decode(r io.Reader) (model.SyntaxTable, error) {
	table := model.SyntaxTable{}
	decoder := yaml.NewDecoder(r)
	for i := 0; ; i++ {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		content := &node
		if node.Kind == yaml.DocumentNode {
			if len(node.Content) == 0 {
				continue
			}
			content = node.Content[0]
		}
		if content.Kind == yaml.ScalarNode && content.ShortTag() == "!!null" {
			continue
		}
		if content.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("document %d: expected mapping at line %d", i, content.Line)
		}
		switch content.Tag {
		case "", DocumentTag, "!!map":
		default:
			return nil, fmt.Errorf("document %d: unexpected tag %q", i, content.Tag)
		}
		content.Tag = ""

		var doc document
		if err := content.Decode(&doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		table[doc.FileName] = doc.Identifiers
	}

	if len(table) == 0 {
		return model.NewSyntaxTable(), nil
	}
	return table, nil
}

// Load reads the syntax file at path.
func Load(path string) (model.SyntaxTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// LoadOrEmpty loads path, treating a missing or unreadable file as an empty table.
func LoadOrEmpty(path string, logger *zap.Logger) model.SyntaxTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	table, err := Load(path)
	switch {
	case err == nil:
		logger.Debug("syntax loaded",
			zap.String("path", path),
			zap.Int("groups", len(table)),
			zap.Int("entries", table.EntryCount()),
		)
		return table
	case errors.Is(err, os.ErrNotExist):
		logger.Info("syntax file not found, starting empty", zap.String("path", path))
	default:
		logger.Warn("syntax file unusable, starting empty", zap.String("path", path), zap.Error(err))
	}
	return model.NewSyntaxTable()
}

// Encode writes table as a YAML stream, one tagged document per group in sorted group order.
func Encode(w io.Writer, table model.SyntaxTable) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	for _, group := range table.Groups() {
		entries := table[group]
		if entries == nil {
			entries = []model.Entry{}
		}

		var node yaml.Node
		if err := node.Encode(document{FileName: group, Identifiers: entries}); err != nil {
			return fmt.Errorf("encode group %q: %w", group, err)
		}
		node.Tag = DocumentTag
		if err := encoder.Encode(&node); err != nil {
			return fmt.Errorf("encode group %q: %w", group, err)
		}
	}
	return encoder.Close()
}

// Save writes table to path atomically.
func Save(path string, table model.SyntaxTable) error {
	return atomicfile.Write(path, 0o644, func(w io.Writer) error {
		return Encode(w, table)
	})
}
