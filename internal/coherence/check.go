package coherence

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"solver/internal/diag"
	"solver/internal/observ"
	"solver/internal/trace"
	"solver/internal/types"
)

// InherentGroup names the group holding every inherent impl.
const InherentGroup = "(inherent)"

// Options configure Check.
type Options struct {
	Jobs     int // <= 0 means GOMAXPROCS
	Progress ProgressSink
	Timer    *observ.Timer
}

// GroupResult summarises one checked group.
type GroupResult struct {
	Name     string `msgpack:"name"`
	Impls    int    `msgpack:"impls"`
	Skipped  int    `msgpack:"skipped"`
	Pairs    int    `msgpack:"pairs"`
	Overlaps int    `msgpack:"overlaps"`
}

// Report is the outcome of Check. Diagnostics follow group order, then pair
// order within a group.
type Report struct {
	Groups      []GroupResult     `msgpack:"groups"`
	Diagnostics []diag.Diagnostic `msgpack:"diagnostics"`
}

// Overlaps counts overlapping pairs across all groups.
func (r *Report) Overlaps() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Overlaps
	}
	return n
}

type group struct {
	name  string
	impls []Impl
}

// Check reports every pair of impls in the same group whose exact patterns
// are not disjoint. Trait impls are grouped per trait; inherent impls form a
// single group. Impls with inference markers are skipped with a warning.
func Check(ctx context.Context, s *Set, opts Options) (*Report, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "coherence")
	groups := groupImpls(s)
	span.WithExtra("groups", strconv.Itoa(len(groups))).WithExtra("impls", strconv.Itoa(s.Len()))
	defer span.End("")

	for _, g := range groups {
		emit(opts.Progress, Event{Group: g.name, Status: StatusQueued, Impls: len(g.impls)})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	started := time.Now()
	results := make([]groupOutcome, len(groups))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, min(jobs, len(groups))))
	for i, g := range groups {
		eg.Go(func() error {
			out, err := checkGroup(gctx, g, opts)
			results[i] = out
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("coherence check: %w", err)
	}

	report := &Report{Groups: make([]GroupResult, 0, len(groups))}
	for _, out := range results {
		report.Groups = append(report.Groups, out.result)
		report.Diagnostics = append(report.Diagnostics, out.diags...)
	}
	emit(opts.Progress, Event{Status: StatusDone, Impls: s.Len(), Overlaps: report.Overlaps(), Elapsed: time.Since(started)})
	return report, nil
}

type groupOutcome struct {
	result GroupResult
	diags  []diag.Diagnostic
}

func checkGroup(ctx context.Context, g group, opts Options) (groupOutcome, error) {
	ctx, span := trace.Start(ctx, trace.ScopeTrait, "group:"+g.name)
	done := opts.Timer.Track("group:" + g.name)
	started := time.Now()
	emit(opts.Progress, Event{Group: g.name, Status: StatusWorking, Impls: len(g.impls)})

	out := groupOutcome{result: GroupResult{Name: g.name, Impls: len(g.impls)}}
	exact := make([]Impl, 0, len(g.impls))
	for _, im := range g.impls {
		if !im.IsExact {
			out.result.Skipped++
			out.diags = append(out.diags, diag.NewWarning(diag.CohSkipped, im.Name,
				fmt.Sprintf("%s contains inference markers and is not checked for overlap", im.Header)))
			continue
		}
		exact = append(exact, im)
	}

	for i := range exact {
		if err := ctx.Err(); err != nil {
			span.End("cancelled")
			done("cancelled")
			return out, err
		}
		for j := i + 1; j < len(exact); j++ {
			a, b := exact[i], exact[j]
			out.result.Pairs++
			if a.Exact.DisjointWith(b.Exact) {
				continue
			}
			trace.Point(ctx, trace.ScopePair, "overlap", a.Name+" ~ "+b.Name)
			out.result.Overlaps++
			out.diags = append(out.diags, overlapDiagnostic(a, b))
		}
	}

	status := StatusDone
	if out.result.Overlaps > 0 {
		status = StatusConflict
	}
	emit(opts.Progress, Event{
		Group:    g.name,
		Status:   status,
		Impls:    len(g.impls),
		Pairs:    out.result.Pairs,
		Overlaps: out.result.Overlaps,
		Elapsed:  time.Since(started),
	})
	detail := fmt.Sprintf("%d pairs, %d overlaps", out.result.Pairs, out.result.Overlaps)
	span.End(detail)
	done(detail)
	return out, nil
}

func overlapDiagnostic(first, second Impl) diag.Diagnostic {
	if !second.HasTrait {
		return diag.NewWarning(diag.CohInherentOverlap, second.Name,
			fmt.Sprintf("inherent impls overlap: %s and %s", second.Header, first.Header)).
			WithNote(first.Name, "overlapping impl: "+first.Header)
	}
	return diag.NewError(diag.CohOverlap, second.Name,
		fmt.Sprintf("conflicting implementations: %s overlaps %s", second.Header, first.Header)).
		WithNote(first.Name, "first implementation: "+first.Header)
}

// groupImpls buckets impls by trait, ordered by trait name, with the
// inherent group last. Impls keep insertion order within a group.
func groupImpls(s *Set) []group {
	byTrait := make(map[types.TraitID]int)
	var groups []group
	var inherent []Impl
	for _, im := range s.impls {
		if !im.HasTrait {
			inherent = append(inherent, im)
			continue
		}
		idx, ok := byTrait[im.Trait]
		if !ok {
			idx = len(groups)
			byTrait[im.Trait] = idx
			groups = append(groups, group{name: s.in.Trait(im.Trait).Name})
		}
		groups[idx].impls = append(groups[idx].impls, im)
	}
	slices.SortStableFunc(groups, func(a, b group) int { return cmp.Compare(a.name, b.name) })
	if len(inherent) > 0 {
		groups = append(groups, group{name: InherentGroup, impls: inherent})
	}
	return groups
}
