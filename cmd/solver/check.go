package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"solver/internal/cache"
	"solver/internal/coherence"
	"solver/internal/diag"
	"solver/internal/manifest"
	"solver/internal/observ"
	"solver/internal/trace"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir|solver.toml]",
		Short: "Validate impl headers and report overlapping impls",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=manifest or auto)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the report cache")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().String("format", "short", "output format (short|json)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in short output")
	return cmd
}

type checkFlags struct {
	jobs           int
	noCache        bool
	ui             progressUI
	format         string
	withNotes      bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = parseProgressUI(uiStr); err != nil {
		return f, err
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.format != "short" && f.format != "json" {
		return f, fmt.Errorf("unsupported format %q (must be short or json)", f.format)
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	pf := cmd.Root().PersistentFlags()
	if f.quiet, err = pf.GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = pf.GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return f, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "check")
	defer span.End("")
	timer := observ.NewTimer()

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	endLoad := timer.Track("load")
	m, err := manifest.LoadFrom(target)
	endLoad(target)
	if err != nil {
		dumpTrace(cmd)
		return err
	}
	trace.Point(ctx, trace.ScopePass, "manifest", m.Path)

	store := openCache(cmd, flags.noCache)
	key := cache.KeyOf(m.Data)
	entry, cached := lookupCache(cmd, store, key)
	if !cached {
		entry, err = runFreshCheck(ctx, m, flags, timer)
		if err != nil {
			dumpTrace(cmd)
			return err
		}
		if store != nil {
			if err := store.Put(key, entry); err != nil && !flags.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
			}
		}
	}
	span.WithExtra("cached", fmt.Sprint(cached))

	limit := flags.maxDiagnostics
	if m.Config.Check.MaxDiagnostics > 0 && !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		limit = m.Config.Check.MaxDiagnostics
	}
	bag := diag.NewBag(limit)
	for _, d := range entry.Build {
		bag.Add(d)
	}
	for _, d := range entry.Report.Diagnostics {
		bag.Add(d)
	}

	endRender := timer.Track("render")
	out := cmd.OutOrStdout()
	if err := printDiagnostics(out, bag, flags.format, flags.withNotes, m.Path, cached); err != nil {
		return err
	}
	endRender("")
	if flags.format == "short" && !flags.quiet {
		printSummary(out, m.Config.Package.Name, entry, cached)
	}
	if flags.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if hasErrors(entry) {
		dumpTrace(cmd)
		return errFailed
	}
	return nil
}

func runFreshCheck(ctx context.Context, m *manifest.Manifest, flags checkFlags, timer *observ.Timer) (*cache.Entry, error) {
	endBuild := timer.Track("build")
	_, set, buildBag := manifest.Build(m)
	endBuild(fmt.Sprintf("%d impls", set.Len()))

	jobs := flags.jobs
	if jobs == 0 {
		jobs = m.Config.Check.Jobs
	}
	opts := coherence.Options{Jobs: jobs, Timer: timer}

	var report *coherence.Report
	var err error
	if flags.ui.show(flags, isTerminal(os.Stdout)) {
		report, err = runCheckWithUI(ctx, "checking "+m.Config.Package.Name, set, opts)
	} else {
		report, err = coherence.Check(ctx, set, opts)
	}
	if err != nil {
		return nil, err
	}
	return &cache.Entry{
		Manifest: m.Path,
		Created:  time.Now(),
		Build:    buildBag.Items(),
		Report:   *report,
	}, nil
}

func openCache(cmd *cobra.Command, disabled bool) *cache.Cache {
	if disabled {
		return nil
	}
	store, err := cache.OpenDefault("solver")
	if err != nil {
		trace.Point(cmd.Context(), trace.ScopePass, "cache-unavailable", err.Error())
		return nil
	}
	return store
}

func lookupCache(cmd *cobra.Command, store *cache.Cache, key cache.Key) (*cache.Entry, bool) {
	if store == nil {
		return nil, false
	}
	entry, ok, err := store.Get(key)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
		return nil, false
	}
	return entry, ok
}

func hasErrors(e *cache.Entry) bool {
	for _, list := range [][]diag.Diagnostic{e.Build, e.Report.Diagnostics} {
		for _, d := range list {
			if d.Severity >= diag.SevError {
				return true
			}
		}
	}
	return false
}

func printSummary(out io.Writer, name string, e *cache.Entry, cached bool) {
	impls := 0
	for _, g := range e.Report.Groups {
		impls += g.Impls
	}
	status := color.GreenString("ok")
	if hasErrors(e) {
		status = color.RedString("failed")
	}
	suffix := ""
	if cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(out, "%s: %s, %d impls in %d groups, %d overlaps%s\n",
		name, status, impls, len(e.Report.Groups), e.Report.Overlaps(), suffix)
}
