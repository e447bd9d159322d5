package files

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/odvcencio/transltr/pkg/ignore"
)

func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte("begin end"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func relPaths(t *testing.T, root string, entries []Entry) []string {
	t.Helper()
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		rel, err := filepath.Rel(root, filepath.FromSlash(entry.Path))
		if err != nil {
			t.Fatalf("Rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestExpandGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "b.sd7", "a.sd7", "c.s7i", "a.sd7.tmp")

	entries, err := Expand(filepath.Join(root, "*.sd7"), Options{})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got := relPaths(t, root, entries); !reflect.DeepEqual(got, []string{"a.sd7", "b.sd7"}) {
		t.Fatalf("Expand = %q", got)
	}
	if entries[0].SizeBytes != int64(len("begin end")) {
		t.Fatalf("unexpected size: %+v", entries[0])
	}
}

func TestExpandDoubleStarAndSkipSuffixes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "lib/x.s7i", "lib/deep/y.s7i", "lib/deep/y.s7i.tmp", "top.s7i")

	entries, err := Expand(filepath.Join(root, "**", "*.s7i*"), Options{SkipSuffixes: []string{".tmp"}})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	want := []string{"lib/deep/y.s7i", "lib/x.s7i", "top.s7i"}
	if got := relPaths(t, root, entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %q, want %q", got, want)
	}
}

func TestExpandDirectoryWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.sd7", ".git/config", ".hidden/x.sd7", "gen/out.sd7", "src/b.sd7")

	entries, err := Expand(root, Options{Ignore: ignore.ParsePatterns([]string{"gen/"})})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	want := []string{"a.sd7", "src/b.sd7"}
	if got := relPaths(t, root, entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %q, want %q", got, want)
	}
}

func TestExpandIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "keep.sd7", "drop.sd7")

	entries, err := Expand(filepath.Join(root, "*.sd7"), Options{Ignore: ignore.ParsePatterns([]string{"drop.sd7"})})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got := relPaths(t, root, entries); !reflect.DeepEqual(got, []string{"keep.sd7"}) {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandNoMatchesAndErrors(t *testing.T) {
	entries, err := Expand(filepath.Join(t.TempDir(), "*.none"), Options{})
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected no matches, got %v, %v", entries, err)
	}
	if _, err := Expand("  ", Options{}); err == nil {
		t.Fatal("expected empty pattern to fail")
	}
	if _, err := Expand("[", Options{}); err == nil {
		t.Fatal("expected invalid pattern to fail")
	}
}

func TestPaths(t *testing.T) {
	got := Paths([]Entry{{Path: "a"}, {Path: "b"}})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Paths = %q", got)
	}
}
