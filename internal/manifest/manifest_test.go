package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"solver/internal/coherence"
	"solver/internal/diag"
)

const sample = `
[package]
name = "demo"

[[adt]]
name = "A"

[[adt]]
name = "B"
params = ["T"]

[[trait]]
name = "Clone"

[[trait]]
name = "From"
params = ["T"]

[[impl]]
name = "a_clone"
header = "impl A as Clone"

[[impl]]
header = "impl B<_> as Clone"

[[impl]]
name = "from_u8"
header = "impl A as From<u8>"

[check]
jobs = 2
max_diagnostics = 50
`

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindWalksParents(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, sample)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	m, err := LoadFrom(nested)
	if err != nil {
		t.Fatal(err)
	}
	if m.Root != root || m.Config.Package.Name != "demo" {
		t.Fatalf("unexpected manifest %+v", m)
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	// tolerate a solver.toml above the temp dir
	if err != nil && !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"[check]\njobs = 1\n", "missing [package]"},
		{"[package]\nname = \"  \"\n", "missing [package].name"},
		{"[package]\nname = \"x\"\n[check]\njobs = -1\n", "jobs must not be negative"},
		{"[package\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		_, err := Decode("solver.toml", []byte(tt.body))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%q: expected error containing %q, got %v", tt.body, tt.want, err)
		}
	}
}

func TestBuild(t *testing.T) {
	m, err := Decode("solver.toml", []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	in, set, bag := Build(m)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShort(bag.Items(), true))
	}
	if in.Len() != 4 || set.Len() != 3 {
		t.Fatalf("expected 4 items and 3 impls, got %d and %d", in.Len(), set.Len())
	}
	if im, ok := set.Lookup("impl[1]"); !ok || im.Header != "impl B<_> as Clone" {
		t.Fatalf("unnamed impl should be named by index, got %+v", im)
	}
	if m.Config.Check.Jobs != 2 || m.Config.Check.MaxDiagnostics != 50 {
		t.Fatalf("unexpected check config %+v", m.Config.Check)
	}
}

func TestBuildReportsProblems(t *testing.T) {
	body := `
[package]
name = "broken"
colour = "blue"

[[adt]]
name = "A"

[[adt]]
name = "A"

[[adt]]
name = "i32"

[[adt]]
name = "B<T>"

[[trait]]
name = "Clone"

[[impl]]
name = "syntax"
header = "impl A as"

[[impl]]
name = "unknown"
header = "impl Missing as Clone"

[[impl]]
name = "empty"

[[impl]]
name = "dup"
header = "impl A as Clone"

[[impl]]
name = "dup"
header = "impl A as Clone"
`
	m, err := Decode("solver.toml", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	_, set, bag := Build(m)
	codes := make(map[string]diag.Code)
	for _, d := range bag.Items() {
		codes[d.Subject] = d.Code
	}
	want := map[string]diag.Code{
		"package.colour": diag.CfgUnknownKey,
		"adt[1]":         diag.CfgDuplicateItem,
		"adt[2]":         diag.CfgInvalidItem,
		"adt[3]":         diag.CfgInvalidItem,
		"syntax":         diag.HdrSyntax,
		"unknown":        diag.HdrResolve,
		"empty":          diag.CfgMissingField,
		"dup":            diag.CfgDuplicateItem,
	}
	for subject, code := range want {
		if codes[subject] != code {
			t.Fatalf("%s: got %s, want %s\n%s", subject, codes[subject].ID(), code.ID(), diag.FormatShort(bag.Items(), false))
		}
	}
	if set.Len() != 1 {
		t.Fatalf("only the first dup impl should be registered, got %d", set.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestDemoManifest(t *testing.T) {
	m, err := LoadFrom(filepath.Join("..", "..", "testdata", "demo"))
	if err != nil {
		t.Fatal(err)
	}
	_, set, bag := Build(m)
	if bag.Len() != 0 {
		t.Fatalf("unexpected build diagnostics: %v", bag.Items())
	}
	report, err := coherence.Check(context.Background(), set, coherence.Options{Jobs: m.Config.Check.Jobs})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Groups) != 3 || report.Overlaps() != 1 {
		t.Fatalf("unexpected report: %+v", report.Groups)
	}
	codes := map[diag.Code]string{}
	for _, d := range report.Diagnostics {
		codes[d.Code] = d.Subject
	}
	if codes[diag.CohOverlap] != "clone_vec_u8" || codes[diag.CohSkipped] != "map_any" || len(codes) != 2 {
		t.Fatalf("unexpected diagnostics: %+v", report.Diagnostics)
	}
}
