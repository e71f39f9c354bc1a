package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"solver/internal/coherence"
	"solver/internal/diag"
	"solver/internal/manifest"
	"solver/internal/trace"
	"solver/internal/types"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <type>",
		Short: "List the impls that apply to a concrete type",
		Long: `match resolves a concrete type, and optionally a trait with its arguments,
against the impls of the manifest. Without --trait inherent impls are searched.
Exits with status 1 when nothing matches.`,
		Example: `  solver match 'B<i32>' --trait Clone
  solver match '&mut A' --trait 'From<u8>'`,
		Args: cobra.ExactArgs(1),
		RunE: runMatch,
	}
	cmd.Flags().String("trait", "", "trait with generic arguments, e.g. From<u8>")
	cmd.Flags().String("manifest", "", "manifest file or directory (default: search upwards)")
	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	traitText, err := cmd.Flags().GetString("trait")
	if err != nil {
		return fmt.Errorf("failed to get trait flag: %w", err)
	}
	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "match")
	defer span.End("")

	_, _, set, err := loadAndBuild(cmd)
	if err != nil {
		return err
	}
	query := "impl " + args[0]
	if traitText = strings.TrimSpace(traitText); traitText != "" {
		query += " as " + traitText
	}
	trace.Point(ctx, trace.ScopePass, "query", query)

	matches, err := coherence.Query(set, query)
	if errors.Is(err, coherence.ErrInexactQuery) {
		bag := diag.NewBag(0)
		bag.Add(diag.NewError(diag.PatInferenceMarker, "query", err.Error()))
		if err := printDiagnostics(cmd.ErrOrStderr(), bag, "short", false, "", false); err != nil {
			return err
		}
		return errFailed
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "no impl matches %s\n", query)
		return errFailed
	}
	for _, im := range matches {
		fmt.Fprintf(out, "%s  %s\n", color.CyanString(im.Name), im.Header)
	}
	return nil
}

// loadAndBuild loads the manifest named by --manifest and builds its items
// and impls. Build diagnostics go to stderr unless --quiet is set.
func loadAndBuild(cmd *cobra.Command) (*manifest.Manifest, *types.Interner, *coherence.Set, error) {
	target, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get manifest flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	m, err := manifest.LoadFrom(target)
	if err != nil {
		return nil, nil, nil, err
	}
	in, set, bag := manifest.Build(m)
	if bag.Len() > 0 && !quiet {
		bag.Sort()
		if err := printDiagnostics(cmd.ErrOrStderr(), bag, "short", false, m.Path, false); err != nil {
			return nil, nil, nil, err
		}
	}
	if bag.HasErrors() {
		trace.Point(cmd.Context(), trace.ScopePass, "build", fmt.Sprintf("%d diagnostics", bag.Len()))
	}
	return m, in, set, nil
}
