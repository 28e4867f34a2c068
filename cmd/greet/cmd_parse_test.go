package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sfinnie/helloLSP/greet"
)

func TestParseFiles(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	good := filepath.Join(dir, "good.greet")
	bad := filepath.Join(dir, "bad.greet")
	os.WriteFile(good, []byte("hello Alice\ngoodbye Bob\n"), 0o644)
	os.WriteFile(bad, []byte("hello"), 0o644)

	results, err := parseFiles(greet.NewParser(), []string{good, bad})
	if err != nil {
		t.Fatalf("parseFiles: %v", err)
	}
	if len(results) != 2 || results[0].name != good || results[1].name != bad {
		t.Fatalf("results out of order: %v", results)
	}

	var stdout, stderr bytes.Buffer
	err = printResults(&stdout, &stderr, greetingsFormat, results)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("printResults error = %v, want 1 of 2 failed", err)
	}

	wantOut := good + ":1:1\tgreeting\thello\tAlice\n" + good + ":2:1\tfarewell\tgoodbye\tBob\n"
	if stdout.String() != wantOut {
		t.Errorf("stdout = %q, want %q", stdout.String(), wantOut)
	}
	if !strings.HasPrefix(stderr.String(), bad+":1:6: unexpected end of input") {
		t.Errorf("stderr = %q, want a diagnostic for %s", stderr.String(), bad)
	}
}

func TestPrintResultsRecoveredBeforeFatal(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	name := filepath.Join(dir, "digits.greet")
	os.WriteFile(name, []byte("hello 42"), 0o644)

	results, err := parseFiles(greet.NewParser(), []string{name})
	if err != nil {
		t.Fatalf("parseFiles: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if err := printResults(&stdout, &stderr, "sexp", results); err == nil {
		t.Errorf("printResults succeeded, want a failure")
	}
	out := stderr.String()
	lexical := strings.Index(out, name+":1:7: lexical error")
	fatal := strings.Index(out, name+":1:9: unexpected end of input")
	if lexical < 0 || fatal < 0 || lexical > fatal {
		t.Errorf("stderr = %q, want the lexical error and then the end of input error", out)
	}
}

func TestParseFilesMissing(t *testing.T) {
	_, err := parseFiles(greet.NewParser(), []string{filepath.Join(t.TempDir(), "missing.greet")})
	if err == nil {
		t.Errorf("parseFiles of a missing file succeeded")
	}
}

func TestPrintTreeFormats(t *testing.T) {
	results, err := parseFiles(greet.NewParser(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("parseFiles(nil) = %v, %v", results, err)
	}

	tree, err := greet.NewParser().Parse([]byte("hello Alice"))
	if err != nil {
		t.Fatal(err)
	}
	r := &parseResult{name: "x", source: []byte("hello Alice"), tree: tree}
	for _, name := range []string{"sexp", "json", "lines"} {
		var buf bytes.Buffer
		if err := printTree(&buf, name, r); err != nil {
			t.Errorf("printTree(%s): %v", name, err)
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Errorf("printTree(%s) output %q does not end in a newline", name, buf.String())
		}
	}
}

func TestDumpTables(t *testing.T) {
	var buf bytes.Buffer
	if err := dumpTables(&buf, greet.Language()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"language greet: 8 states", "shift(5)", "accept", "goto(6)", "recover"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
}
