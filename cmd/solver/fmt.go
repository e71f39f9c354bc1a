package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"solver/internal/diag"
	"solver/internal/header"
	"solver/internal/manifest"
	"solver/internal/types"
)

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <header>...",
		Short: "Validate impl headers and print their canonical form",
		Long: `fmt compiles each argument against the items declared in the manifest and
prints it in canonical form. With --type the arguments are type expressions.`,
		Example: `  solver fmt 'impl  B<( _ )>as Clone;'
  solver fmt --type '&mut  [u8]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFmt,
	}
	cmd.Flags().Bool("type", false, "arguments are type expressions, not impl headers")
	cmd.Flags().String("manifest", "", "manifest file or directory (default: search upwards)")
	return cmd
}

func runFmt(cmd *cobra.Command, args []string) error {
	asType, err := cmd.Flags().GetBool("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	_, in, _, err := loadAndBuild(cmd)
	if err != nil {
		return err
	}

	bag := diag.NewBag(0)
	out := cmd.OutOrStdout()
	for i, text := range args {
		rendered, err := formatArg(in, text, asType)
		if err != nil {
			bag.Add(manifest.HeaderDiagnostic("arg"+strconv.Itoa(i+1), text, err))
			continue
		}
		fmt.Fprintln(out, rendered)
	}
	if bag.Len() == 0 {
		return nil
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), bag, "short", false, "", false); err != nil {
		return err
	}
	return errFailed
}

func formatArg(in *types.Interner, text string, asType bool) (string, error) {
	if asType {
		p, err := header.CompileType(in, text)
		if err != nil {
			return "", err
		}
		return p.Render(in), nil
	}
	c, err := header.CompileImpl(in, text)
	if err != nil {
		return "", err
	}
	return c.Render(in), nil
}
