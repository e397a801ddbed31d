package imports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/diag"
)

// fakeDisplay is a stand-in statement used purely so inlined programs
// are distinguishable by identity in assertions below.
type fakeDisplay struct {
	ast.DisplayStatement
	tag string
}

// fakeParse pretends to parse WFL source by inspecting its raw text for
// `load module from "path"` lines and `display <tag>` lines, avoiding a
// real dependency on internal/parser/internal/lexer in this unit test.
func fakeParse(filename, source string, rep *diag.Reporter) *ast.Program {
	prog := &ast.Program{}
	for _, line := range splitLines(source) {
		switch {
		case hasPrefix(line, "load module from "):
			path := trimQuotes(line[len("load module from "):])
			prog.Statements = append(prog.Statements, &ast.LoadModuleStatement{Path: path})
		case hasPrefix(line, "display "):
			tag := line[len("display "):]
			prog.Statements = append(prog.Statements, &fakeDisplay{tag: tag})
		}
	}
	return prog
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestResolveInlinesModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.wfl", "display from-greet\n")
	mainPath := writeFile(t, dir, "main.wfl", "display before\nload module from \"greet.wfl\"\ndisplay after\n")

	rep := diag.NewReporter()
	r := New(fakeParse, rep)
	prog, err := r.ResolveFile(mainPath)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if rep.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", rep.Diagnostics)
	}

	var tags []string
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*fakeDisplay); ok {
			tags = append(tags, fd.tag)
		}
	}
	want := []string{"before", "from-greet", "after"}
	if len(tags) != len(want) {
		t.Fatalf("got tags %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.wfl", "load module from \"b.wfl\"\n")
	bPath := writeFile(t, dir, "b.wfl", "load module from \"a.wfl\"\n")

	rep := diag.NewReporter()
	r := New(fakeParse, rep)
	_, err := r.ResolveFile(bPath)
	if err != nil {
		t.Fatalf("ResolveFile returned an error instead of reporting a diagnostic: %v", err)
	}
	if !rep.HasErrors() {
		t.Fatalf("expected a circular-import diagnostic")
	}
	found := false
	for _, d := range rep.Diagnostics {
		if d.Code == "IMPORT-CYCLE" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an IMPORT-CYCLE diagnostic, got %+v", rep.Diagnostics)
	}
}

func TestResolveMissingModule(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "main.wfl", "load module from \"missing.wfl\"\n")

	rep := diag.NewReporter()
	r := New(fakeParse, rep)
	_, err := r.ResolveFile(mainPath)
	if err != nil {
		t.Fatalf("ResolveFile returned an error instead of reporting a diagnostic: %v", err)
	}
	if !rep.HasErrors() {
		t.Fatalf("expected an IMPORT-NOT-FOUND diagnostic")
	}
}

// compile-time assurance that LoadModuleStatement still satisfies
// ast.Statement after any field changes.
var _ ast.Statement = (*ast.LoadModuleStatement)(nil)
