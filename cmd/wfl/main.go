// Command wfl is the thin CLI shell over the language pipeline (spec
// §1, §6 "Execution entry"): lex -> parse -> resolve imports ->
// analyze -> type-check -> interpret, with an optional transpile step.
// It carries none of the core's test surface itself; it only wires the
// internal/* packages together, in the spirit of the teacher's
// cmd/gmx verb-per-file layout (see DESIGN.md).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wfl",
		Short: "Run, check, and transpile WFL scripts",
		Long: `wfl is the command-line entry point for the WFL language
pipeline: a lexer, a recursive-descent parser, a static analyzer, a
type checker, and a tree-walking interpreter, with an optional
JavaScript transpile step.`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newTranspileCmd())
	return root
}
