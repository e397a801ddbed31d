package main

import (
	"fmt"
	"os"

	"github.com/wflang/wfl/internal/analyzer"
	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/diag"
	"github.com/wflang/wfl/internal/imports"
	"github.com/wflang/wfl/internal/parser"
	"github.com/wflang/wfl/internal/types"
)

// compileResult holds everything the lex -> parse -> resolve -> analyze
// -> type-check front end produced for one entry file.
type compileResult struct {
	Program  *ast.Program
	Reporter *diag.Reporter
}

// frontEnd runs every phase that happens before interpretation/
// transpilation (spec §2's left-to-right pipeline). It always returns a
// Reporter; callers decide whether diagnostics are fatal for their
// command the way spec §7 "Propagation policy" describes: execution
// never begins if any phase produced an Error.
func frontEnd(path string) (*compileResult, error) {
	rep := diag.NewReporter()

	resolver := imports.New(parser.Parse, rep)
	prog, err := resolver.ResolveFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	analyzer.New(path, rep).Analyze(prog)
	types.New(path, rep).Check(prog)

	return &compileResult{Program: prog, Reporter: rep}, nil
}

// printDiagnostics writes every collected diagnostic to stderr in
// position order (spec §4.7 "Rendering is delegated to an external
// pretty-printer"; this is the CLI's minimal stand-in for one).
func printDiagnostics(rep *diag.Reporter) {
	for _, d := range rep.Sorted() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}
