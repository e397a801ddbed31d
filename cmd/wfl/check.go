package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script.wfl>",
		Short: "Run the lex/parse/analyze/type-check phases without interpreting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			result, err := frontEnd(path)
			if err != nil {
				return err
			}
			printDiagnostics(result.Reporter)
			if result.Reporter.HasErrors() {
				return fmt.Errorf("%d diagnostic(s) reported", len(result.Reporter.Diagnostics))
			}
			return nil
		},
	}
}
