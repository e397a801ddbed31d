package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflang/wfl/internal/interp"
)

func newRunCmd() *cobra.Command {
	var timeout time.Duration
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <script.wfl>",
		Short: "Lex, parse, analyze, type-check, and interpret a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !watch {
				return runOnce(path, timeout)
			}
			return watchAndRun(path, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "execution deadline (0 = no deadline, spec §5)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run the script whenever it or an imported file changes")
	return cmd
}

// runOnce executes path a single time, returning a non-nil error on any
// fatal diagnostic or runtime error (spec §6 "Exit codes": 0 success,
// 1 otherwise).
func runOnce(path string, timeout time.Duration) error {
	result, err := frontEnd(path)
	if err != nil {
		return err
	}
	if result.Reporter.HasErrors() {
		printDiagnostics(result.Reporter)
		return fmt.Errorf("compilation failed with errors")
	}
	printDiagnostics(result.Reporter) // warnings only at this point

	in := interp.New(path, os.Stdout, timeout)
	start := time.Now()
	err = in.Run(result.Program)
	slog.Debug("run finished", "file", path, "elapsed", time.Since(start))
	return err
}
