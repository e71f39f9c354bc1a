package coherence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"solver/internal/diag"
	"solver/internal/observ"
	"solver/internal/types"
)

func newSet(t *testing.T, headers map[string]string, order ...string) *Set {
	t.Helper()
	in := types.NewInterner()
	in.MustAdt("A")
	in.MustAdt("B", types.ArgType)
	in.MustTrait("Clone")
	in.MustTrait("From", types.ArgType)
	s := NewSet(in)
	for _, name := range order {
		if _, err := s.AddHeader(name, headers[name]); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	return s
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func TestCheckFindsOverlaps(t *testing.T) {
	headers := map[string]string{
		"a_clone":   "impl A as Clone",
		"b_clone":   "impl B<_> as Clone",
		"bi_clone":  "impl B<i32> as Clone",
		"from_u8":   "impl A as From<u8>",
		"from_i8":   "impl A as From<i8>",
		"infer":     "impl B<?> as Clone",
		"inh_b":     "impl B<_>",
		"inh_slice": "impl [u8]",
	}
	s := newSet(t, headers, "a_clone", "b_clone", "bi_clone", "from_u8", "from_i8", "infer", "inh_b", "inh_slice")

	sink := &recordingSink{}
	timer := observ.NewTimer()
	report, err := Check(context.Background(), s, Options{Jobs: 2, Progress: sink, Timer: timer})
	if err != nil {
		t.Fatal(err)
	}

	wantGroups := []GroupResult{
		{Name: "Clone", Impls: 4, Skipped: 1, Pairs: 3, Overlaps: 1},
		{Name: "From", Impls: 2, Pairs: 1},
		{Name: InherentGroup, Impls: 2, Pairs: 1},
	}
	if len(report.Groups) != len(wantGroups) {
		t.Fatalf("got %d groups, want %d", len(report.Groups), len(wantGroups))
	}
	for i, want := range wantGroups {
		if report.Groups[i] != want {
			t.Fatalf("group %d: got %+v, want %+v", i, report.Groups[i], want)
		}
	}
	if report.Overlaps() != 1 {
		t.Fatalf("expected one overlap, got %d", report.Overlaps())
	}

	var overlap, skipped *diag.Diagnostic
	for i := range report.Diagnostics {
		switch report.Diagnostics[i].Code {
		case diag.CohOverlap:
			overlap = &report.Diagnostics[i]
		case diag.CohSkipped:
			skipped = &report.Diagnostics[i]
		}
	}
	if overlap == nil || overlap.Subject != "bi_clone" || len(overlap.Notes) != 1 || overlap.Notes[0].Subject != "b_clone" {
		t.Fatalf("unexpected overlap diagnostic %+v", overlap)
	}
	if !strings.Contains(overlap.Message, "impl B<i32> as Clone overlaps impl B<_> as Clone") {
		t.Fatalf("unexpected overlap message %q", overlap.Message)
	}
	if skipped == nil || skipped.Subject != "infer" || skipped.Severity != diag.SevWarning {
		t.Fatalf("unexpected skip diagnostic %+v", skipped)
	}

	last := sink.events[len(sink.events)-1]
	if last.Group != "" || last.Status != StatusDone || last.Overlaps != 1 {
		t.Fatalf("unexpected final event %+v", last)
	}
	conflicts := 0
	for _, ev := range sink.events {
		if ev.Status == StatusConflict {
			conflicts++
			if ev.Group != "Clone" {
				t.Fatalf("unexpected conflicting group %q", ev.Group)
			}
		}
	}
	if conflicts != 1 {
		t.Fatalf("expected one conflict event, got %d", conflicts)
	}
	if got := len(timer.Report().Phases); got != 3 {
		t.Fatalf("expected a timer phase per group, got %d", got)
	}
}

func TestCheckInherentOverlapIsWarning(t *testing.T) {
	s := newSet(t, map[string]string{"x": "impl &mut _", "y": "impl &mut A"}, "x", "y")
	report, err := Check(context.Background(), s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(report.Diagnostics))
	}
	d := report.Diagnostics[0]
	if d.Code != diag.CohInherentOverlap || d.Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestCheckDeterministic(t *testing.T) {
	headers := map[string]string{
		"a": "impl A as Clone",
		"b": "impl _ as Clone",
		"c": "impl B<A> as Clone",
		"d": "impl A as From<_>",
		"e": "impl _ as From<u8>",
	}
	s := newSet(t, headers, "a", "b", "c", "d", "e")
	first, err := Check(context.Background(), s, Options{Jobs: 4})
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := Check(context.Background(), s, Options{Jobs: 4})
		if err != nil {
			t.Fatal(err)
		}
		if diag.FormatShort(again.Diagnostics, true) != diag.FormatShort(first.Diagnostics, true) {
			t.Fatalf("diagnostics differ between runs")
		}
	}
	if first.Overlaps() != 3 {
		t.Fatalf("expected 3 overlaps, got %d", first.Overlaps())
	}
}

func TestCheckCancelled(t *testing.T) {
	s := newSet(t, map[string]string{"a": "impl A as Clone", "b": "impl _ as Clone"}, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, s, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSetNames(t *testing.T) {
	s := newSet(t, nil)
	first, err := s.AddHeader("", "impl A as Clone")
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != "impl#1" {
		t.Fatalf("unexpected generated name %q", first.Name)
	}
	if _, err := s.AddHeader("impl#1", "impl B<_> as Clone"); err == nil {
		t.Fatalf("duplicate names must be rejected")
	}
	if got, ok := s.Lookup("impl#1"); !ok || got.Header != "impl A as Clone" {
		t.Fatalf("lookup failed: %+v", got)
	}
}

func TestQuery(t *testing.T) {
	headers := map[string]string{
		"any_clone": "impl _ as Clone",
		"b_clone":   "impl B<i32> as Clone",
		"from_u8":   "impl B<_> as From<u8>",
		"infer":     "impl B<?> as Clone",
		"inh":       "impl B<_>",
	}
	s := newSet(t, headers, "any_clone", "b_clone", "from_u8", "infer", "inh")
	tests := []struct {
		query string
		want  []string
	}{
		{"impl B<i32> as Clone", []string{"any_clone", "b_clone"}},
		{"impl A as Clone", []string{"any_clone"}},
		{"impl B<bool> as From<u8>", []string{"from_u8"}},
		{"impl B<bool> as From<i8>", nil},
		{"impl B<A>", []string{"inh"}},
		{"impl A", nil},
	}
	for _, tt := range tests {
		got, err := Query(s, tt.query)
		if err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		var names []string
		for _, im := range got {
			names = append(names, im.Name)
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Fatalf("%q: got %v, want %v", tt.query, names, tt.want)
		}
	}
	if _, err := Query(s, "impl B<?> as Clone"); !errors.Is(err, ErrInexactQuery) {
		t.Fatalf("inference markers in a query must be rejected")
	}
}
