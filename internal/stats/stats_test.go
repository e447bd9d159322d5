package stats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/transltr/pkg/pipeline"
)

func readFixture(t *testing.T, files map[string]string) (*pipeline.ReadReport, map[string]string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	byName := map[string]string{}
	for _, name := range []string{"a.sd7", "b.sd7", "c.sd7"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.ToSlash(filepath.Join(dir, name))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		paths = append(paths, path)
		byName[name] = path
	}

	report, err := pipeline.Read(context.Background(), paths, pipeline.ReadOptions{From: "en", To: "ru"})
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	return report, byName
}

func TestBuildAggregatesCounts(t *testing.T) {
	read, paths := readFixture(t, map[string]string{
		"a.sd7": "begin;writeln;writeln;local;\n",
		"b.sd7": "begin;writeln;\n",
	})

	report, err := Build(read, Options{TopIdentifiers: 2, TopFiles: 1})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if report.FileCount != 2 || report.IdentifierCount != 3 || report.OccurrenceCount != 6 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
	if report.SharedCount != 2 || report.SharedRatio < 0.66 || report.SharedRatio > 0.67 {
		t.Fatalf("unexpected shared stats: count=%d ratio=%f", report.SharedCount, report.SharedRatio)
	}
	if len(report.TopIdentifiers) != 2 {
		t.Fatalf("expected 2 top identifiers, got %+v", report.TopIdentifiers)
	}
	if top := report.TopIdentifiers[0]; top.Identifier != "writeln" || top.Count != 3 || top.Files != 2 {
		t.Fatalf("unexpected top identifier: %+v", top)
	}
	if len(report.TopFiles) != 1 || report.TopFiles[0].Path != paths["a.sd7"] {
		t.Fatalf("unexpected top files: %+v", report.TopFiles)
	}
	if file := report.TopFiles[0]; file.Identifiers != 3 || file.Unique != 1 || file.Occurrences != 4 {
		t.Fatalf("unexpected file metric: %+v", file)
	}
	if len(report.Groups) != 2 {
		t.Fatalf("unexpected groups: %+v", report.Groups)
	}
}

func TestBuildEmptyRun(t *testing.T) {
	read, _ := readFixture(t, map[string]string{"a.sd7": "x;\n"})
	report, err := Build(read, Options{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if report.IdentifierCount != 0 || report.SharedRatio != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestBuildNilReport(t *testing.T) {
	_, err := Build(nil, Options{})
	if err == nil {
		t.Fatal("expected nil report to fail")
	}
}
