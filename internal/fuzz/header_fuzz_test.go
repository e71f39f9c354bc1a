package fuzztests

import (
	"testing"

	"solver/internal/header"
	"solver/internal/testkit"
)

// FuzzCompileImpl checks that compiling arbitrary text never panics and that
// canonical output is a fixed point of compile+render.
func FuzzCompileImpl(f *testing.F) {
	addHeaderSeeds(f)
	in := newInterner()
	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > maxFuzzInput {
			src = src[:maxFuzzInput]
		}
		c, err := header.CompileImpl(in, src)
		if err != nil {
			return
		}
		if err := testkit.CheckSeqInvariants(c.Seq); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		rendered := c.Render(in)
		again, err := header.CompileImpl(in, rendered)
		if err != nil {
			t.Fatalf("canonical form %q of %q does not compile: %v", rendered, src, err)
		}
		if got := again.Render(in); got != rendered {
			t.Fatalf("render is not stable: %q -> %q", rendered, got)
		}
	})
}

// FuzzOverlapProperties checks that disjointness is symmetric and that a
// match always implies overlap.
func FuzzOverlapProperties(f *testing.F) {
	addPairSeeds(f)
	in := newInterner()
	f.Fuzz(func(t *testing.T, a, b string) {
		if len(a) > maxFuzzInput || len(b) > maxFuzzInput {
			return
		}
		ca, err := header.CompileImpl(in, a)
		if err != nil || !ca.IsExact {
			return
		}
		cb, err := header.CompileImpl(in, b)
		if err != nil || !cb.IsExact {
			return
		}
		if ca.HasTrait != cb.HasTrait || ca.Trait != cb.Trait {
			return
		}
		ab, ba := ca.Exact.DisjointWith(cb.Exact), cb.Exact.DisjointWith(ca.Exact)
		if ab != ba {
			t.Fatalf("asymmetric disjointness: %q vs %q (%v, %v)", a, b, ab, ba)
		}
		if ca.Exact.DisjointWith(ca.Exact) {
			t.Fatalf("%q is disjoint with itself", a)
		}
		if ca.Seq.Matches(cb.Exact) && ab {
			t.Fatalf("%q matches %q but they are disjoint", a, b)
		}
		if !ca.Seq.Matches(ca.Exact) {
			t.Fatalf("%q does not match itself", a)
		}
	})
}
