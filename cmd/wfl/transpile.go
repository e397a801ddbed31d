package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wflang/wfl/internal/transpile"
)

func newTranspileCmd() *cobra.Command {
	var out string
	var esModule bool
	var noIIFE bool
	var noPrelude bool

	cmd := &cobra.Command{
		Use:   "transpile <script.wfl>",
		Short: "Emit the equivalent JavaScript source for a script (spec §6)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			result, err := frontEnd(path)
			if err != nil {
				return err
			}
			if result.Reporter.HasErrors() {
				printDiagnostics(result.Reporter)
				return fmt.Errorf("compilation failed with errors")
			}

			js := transpile.Transpile(result.Program, transpile.Options{
				IIFE:        !noIIFE,
				ESModule:    esModule,
				EmitPrelude: !noPrelude,
			})

			if out == "" {
				fmt.Print(js.JS)
				return nil
			}
			return os.WriteFile(out, []byte(js.JS), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&esModule, "es-module", false, "emit top-level code suitable for an ES module instead of an IIFE")
	cmd.Flags().BoolVar(&noIIFE, "no-iife", false, "omit the IIFE wrapper")
	cmd.Flags().BoolVar(&noPrelude, "no-prelude", false, "omit the inlined WFL runtime helper prelude")
	return cmd
}
