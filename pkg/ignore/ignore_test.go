package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePatterns_BlankAndComments(t *testing.T) {
	m := ParsePatterns([]string{"", "  ", "# comment", "  # indented comment", "!", "/"})
	if m.Len() != 0 {
		t.Fatalf("expected 0 patterns, got %d", m.Len())
	}
}

func TestMatch_LiteralName(t *testing.T) {
	m := ParsePatterns([]string{"seed7_syntax.yaml"})
	if !m.Match("seed7_syntax.yaml", false) {
		t.Error("expected match on exact name")
	}
	if !m.Match("lib/seed7_syntax.yaml", false) {
		t.Error("expected match on nested path")
	}
	if m.Match("seed7_syntax.yml", false) {
		t.Error("unexpected match on different name")
	}
}

func TestMatch_GlobPattern(t *testing.T) {
	m := ParsePatterns([]string{"*.tmp"})
	if !m.Match("prog.sd7.tmp", false) {
		t.Error("expected match on .tmp file")
	}
	if !m.Match("lib/array.s7i.tmp", false) {
		t.Error("expected match on nested .tmp file")
	}
	if m.Match("prog.sd7", false) {
		t.Error("unexpected match on source file")
	}
}

func TestMatch_DirectoryPattern(t *testing.T) {
	m := ParsePatterns([]string{"build/"})
	if !m.Match("build", true) {
		t.Error("expected match on directory")
	}
	if m.Match("build", false) {
		t.Error("unexpected match on file named build")
	}
	if !m.Match("project/build", true) {
		t.Error("expected match on nested directory")
	}
}

func TestMatch_Negation(t *testing.T) {
	m := ParsePatterns([]string{"*.s7i", "!array.s7i"})
	if !m.Match("lib/bitset.s7i", false) {
		t.Error("expected match on bitset.s7i")
	}
	if m.Match("lib/array.s7i", false) {
		t.Error("unexpected match on negated array.s7i")
	}
}

func TestMatch_PathWithSlashAndDoubleStar(t *testing.T) {
	m := ParsePatterns([]string{"lib/generated/*", "test/**/fixtures"})
	if !m.Match("lib/generated/tokens.s7i", false) {
		t.Error("expected match on path pattern")
	}
	if m.Match("lib/other/tokens.s7i", false) {
		t.Error("unexpected match on non-matching path")
	}
	if !m.Match("test/a/b/fixtures", true) {
		t.Error("expected ** to span directories")
	}
}

func TestMatch_Anchored(t *testing.T) {
	m := ParsePatterns([]string{"/prg"})
	if !m.Match("prg", true) {
		t.Error("expected anchored match at root")
	}
	if m.Match("lib/prg", true) {
		t.Error("anchored pattern should not match nested path")
	}
}

func TestMatchAny_ParentDirectory(t *testing.T) {
	m := ParsePatterns([]string{"vendor/"})
	if !m.MatchAny("vendor/lib/x.s7i") {
		t.Error("expected file under ignored directory to be ignored")
	}
	if !m.MatchAny("./vendor/x.s7i") {
		t.Error("expected leading ./ to be ignored")
	}
	if m.MatchAny("lib/x.s7i") {
		t.Error("unexpected match outside ignored directory")
	}
}

func TestMatch_NilMatcher(t *testing.T) {
	var m *Matcher
	if m.Match("anything", false) || m.MatchAny("any/thing") {
		t.Error("nil matcher should never match")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	content := "*.tmp\n# comment\nbuild/\n!keep.tmp\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 patterns, got %d", m.Len())
	}
	if !m.Match("a.tmp", false) {
		t.Error("expected match on .tmp")
	}
	if m.Match("keep.tmp", false) {
		t.Error("unexpected match on negated pattern")
	}
}

func TestLoadIfExists(t *testing.T) {
	m, err := LoadIfExists(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if m != nil {
		t.Fatal("expected nil matcher for missing file")
	}
	if _, err := Load("/nonexistent/" + DefaultFile); err == nil {
		t.Error("expected error for missing file")
	}
}
