package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"solver/internal/version"
)

// errFailed signals a command that already reported its failure as diagnostics.
var errFailed = errors.New("command failed")

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "solver",
		Short:         "Impl-header pattern engine and coherence checker",
		Long:          `solver validates impl headers declared in solver.toml, checks that impls of the same trait do not overlap, and resolves concrete types against them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColor(cmd); err != nil {
				return err
			}
			if err := setupProfiling(cmd); err != nil {
				return err
			}
			return setupTracing(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			runCleanups(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show (0=unlimited)")
	pf.String("trace", "", "trace output path (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the trace ring buffer")
	pf.Duration("trace-heartbeat", 0, "emit trace heartbeats at this interval (0=off)")
	pf.String("cpu-profile", "", "write a CPU profile to this path")
	pf.String("mem-profile", "", "write a heap profile to this path on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this path")

	cmd.AddCommand(newCheckCmd(), newMatchCmd(), newFmtCmd(), newVersionCmd())
	return cmd
}

func main() {
	cmd, err := rootCmd.ExecuteC()
	// PersistentPostRun is skipped when RunE fails
	runCleanups(cmd)
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		os.Exit(1)
	}
}

func applyColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
