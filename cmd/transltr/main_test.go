package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/transltr/pkg/model"
	"github.com/odvcencio/transltr/pkg/syntax"
)

func captureStdout(t *testing.T, run func() error) (string, error) {
	t.Helper()
	originalStdout := os.Stdout
	readPipe, writePipe, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = writePipe
	defer func() {
		os.Stdout = originalStdout
	}()

	runErr := run()
	_ = writePipe.Close()

	var output bytes.Buffer
	if _, err := output.ReadFrom(readPipe); err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	return output.String(), runErr
}

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return tmpDir
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var withCode interface{ ExitCode() int }
	if !errors.As(err, &withCode) {
		t.Fatalf("expected exit-code error, got %T: %v", err, err)
	}
	if got := withCode.ExitCode(); got != want {
		t.Fatalf("exit code = %d, want %d", got, want)
	}
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"read", "apply", "stats", "refs"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing command %q: %v", name, err)
		}
	}
}

func TestRootMissingModeIsUsageError(t *testing.T) {
	for _, args := range [][]string{{}, {"translate"}} {
		root := newRootCmd()
		root.SetArgs(args)
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		err := root.Execute()
		if err == nil {
			t.Fatalf("expected %q to fail", args)
		}
		if !isUsageError(err) {
			t.Fatalf("expected usage error for %q, got %v", args, err)
		}
		assertExitCode(t, err, usageExitCode)
	}
}

func TestRunReadWritesSyntaxFile(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{
		"a.sd7": "alpha;beta;alpha;\n",
		"b.sd7": "alpha;gamma;\n",
	})
	syntaxPath := filepath.Join(tmpDir, "syntax.yaml")

	text, err := captureStdout(t, func() error {
		return runRead([]string{filepath.Join(tmpDir, "*.sd7"), syntaxPath})
	})
	if err != nil {
		t.Fatalf("runRead returned error: %v", err)
	}
	for _, expected := range []string{"read: files=2 identifiers=3 occurrences=5 groups=3 errors=0", "_ identifiers=1", "saved: " + syntaxPath} {
		if !strings.Contains(text, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, text)
		}
	}

	table, err := syntax.Load(syntaxPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	shared := table[model.SharedGroup]
	if len(shared) != 1 || shared[0]["en"] != "alpha" || shared[0]["ru"] != "alpha" {
		t.Fatalf("unexpected shared group: %#v", shared)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(table))
	}
}

func TestRunReadOutFlagLeavesSyntaxFile(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{"a.sd7": "alpha;\n"})
	syntaxPath := filepath.Join(tmpDir, "syntax.yaml")
	outPath := filepath.Join(tmpDir, "next.yaml")

	_, err := captureStdout(t, func() error {
		return runRead([]string{filepath.Join(tmpDir, "*.sd7"), syntaxPath, "--out", outPath})
	})
	if err != nil {
		t.Fatalf("runRead returned error: %v", err)
	}
	if _, err := os.Stat(syntaxPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("syntax file should not be written, stat err = %v", err)
	}
	if _, err := syntax.Load(outPath); err != nil {
		t.Fatalf("expected table at --out: %v", err)
	}
}

func TestRunReadThenApplyIsIdentity(t *testing.T) {
	source := "var x is 5; (* comment *) writeln(\"text\");\n"
	tmpDir := writeSources(t, map[string]string{"prog.sd7": source})
	syntaxPath := filepath.Join(tmpDir, "syntax.yaml")
	glob := filepath.Join(tmpDir, "*.sd7")

	if _, err := captureStdout(t, func() error { return runRead([]string{glob, syntaxPath}) }); err != nil {
		t.Fatalf("runRead returned error: %v", err)
	}
	text, err := captureStdout(t, func() error { return runApply([]string{glob, syntaxPath}) })
	if err != nil {
		t.Fatalf("runApply returned error: %v", err)
	}
	if !strings.Contains(text, "apply: files=1") {
		t.Fatalf("unexpected apply output:\n%s", text)
	}

	output, err := os.ReadFile(filepath.Join(tmpDir, "prog.sd7.tmp"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(output) != source {
		t.Fatalf("identity mapping changed the file:\n got %q\nwant %q", output, source)
	}
}

func TestRunApplyInPlace(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{
		"prog.sd7": "var x is 5;\n",
		"syntax.yaml": "!Transl\nfileName: _\nidentifiers:\n" +
			"  - en: var\n    ru: val\n" +
			"  - en: is\n    ru: equals\n",
	})
	progPath := filepath.Join(tmpDir, "prog.sd7")

	_, err := captureStdout(t, func() error {
		return runApply([]string{progPath, filepath.Join(tmpDir, "syntax.yaml"), "--in-place"})
	})
	if err != nil {
		t.Fatalf("runApply returned error: %v", err)
	}
	data, err := os.ReadFile(progPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "val x equals 5;\n" {
		t.Fatalf("rewritten file = %q", data)
	}
}

func TestRunApplyReportsFailures(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{"bad.sd7": "alpha;\xff;\n"})

	_, err := captureStdout(t, func() error {
		return runApply([]string{filepath.Join(tmpDir, "*.sd7"), filepath.Join(tmpDir, "missing.yaml")})
	})
	if err == nil {
		t.Fatal("expected invalid UTF-8 input to fail")
	}
	assertExitCode(t, err, 1)
	if _, statErr := os.Stat(filepath.Join(tmpDir, "bad.sd7.tmp")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed file must not leave output, stat err = %v", statErr)
	}
}

func TestRunApplyCustomSuffixSkipsEarlierOutputs(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{"prog.sd7": "var x is 5;\n"})
	glob := filepath.Join(tmpDir, "prog*")
	syntaxPath := filepath.Join(tmpDir, "syntax.yaml")

	for run := 0; run < 2; run++ {
		if _, err := captureStdout(t, func() error {
			return runApply([]string{glob, syntaxPath, "--suffix", ".out"})
		}); err != nil {
			t.Fatalf("runApply #%d returned error: %v", run+1, err)
		}
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if strings.Join(names, ",") != "prog.sd7,prog.sd7.out" {
		t.Fatalf("files after two runs = %q", names)
	}
}

func TestRunApplyWatchWithInPlaceIsUsageError(t *testing.T) {
	err := runApply([]string{"*.sd7", "--watch", "--in-place"})
	if err == nil {
		t.Fatal("expected --watch --in-place to fail")
	}
	assertExitCode(t, err, usageExitCode)
}

func TestRunStats(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{
		"a.sd7": "begin;writeln;writeln;writeln;\n",
		"b.sd7": "begin;local;\n",
	})

	text, err := captureStdout(t, func() error {
		return runStats([]string{filepath.Join(tmpDir, "*.sd7"), "--top", "1"})
	})
	if err != nil {
		t.Fatalf("runStats returned error: %v", err)
	}
	for _, expected := range []string{"stats: files=2 identifiers=3 occurrences=6 shared=1", "top identifiers (limit=1):", "\"writeln\" count=3 files=1", "top files"} {
		if !strings.Contains(text, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, text)
		}
	}
}

func TestRunRefs(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{
		"a.sd7": "alpha;beta;alpha;\n",
		"b.sd7": "alpha;gamma;\n",
	})
	glob := filepath.Join(tmpDir, "*.sd7")

	text, err := captureStdout(t, func() error { return runRefs([]string{"alpha", glob}) })
	if err != nil {
		t.Fatalf("runRefs returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 references, got:\n%s", text)
	}
	wantFirst := filepath.ToSlash(filepath.Join(tmpDir, "a.sd7")) + ":1:6 \"alpha\""
	if lines[0] != wantFirst {
		t.Fatalf("first reference = %q, want %q", lines[0], wantFirst)
	}

	text, err = captureStdout(t, func() error { return runRefs([]string{"^(beta|gamma)$", glob, "--regex", "--count"}) })
	if err != nil {
		t.Fatalf("runRefs returned error: %v", err)
	}
	if strings.TrimSpace(text) != "2" {
		t.Fatalf("regex count = %q, want 2", text)
	}
}

func TestRunRefsCountReportsFailures(t *testing.T) {
	tmpDir := writeSources(t, map[string]string{
		"a.sd7":   "alpha;\n",
		"bad.sd7": "alpha;\xff;\n",
	})

	for _, mode := range [][]string{{"--count"}, {"--count", "--json"}, {"--json"}} {
		args := append([]string{"alpha", filepath.Join(tmpDir, "*.sd7"), "--encoding", "utf-8"}, mode...)
		text, err := captureStdout(t, func() error { return runRefs(args) })
		if err == nil {
			t.Fatalf("refs %q: expected failure for undecodable file", mode)
		}
		assertExitCode(t, err, 1)
		if !strings.Contains(text, "1") {
			t.Fatalf("refs %q: expected the good file's match in output, got %q", mode, text)
		}
	}
}
