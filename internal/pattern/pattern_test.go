package pattern_test

import (
	"errors"
	"strings"
	"testing"

	"solver/internal/pattern"
	"solver/internal/testkit"
	"solver/internal/types"
)

type fixture struct {
	in    *types.Interner
	A     types.AdtID
	B     types.AdtID
	Pair  types.AdtID
	Clone types.TraitID
	From  types.TraitID
}

func newFixture() fixture {
	in := types.NewInterner()
	return fixture{
		in:    in,
		A:     in.MustAdt("A"),
		B:     in.MustAdt("B", types.ArgType),
		Pair:  in.MustAdt("Pair", types.ArgType, types.ArgType),
		Clone: in.MustTrait("Clone"),
		From:  in.MustTrait("From", types.ArgType),
	}
}

func adt(id types.AdtID, argsLen int) pattern.Element {
	return pattern.Ctor(types.MakeAdt(id), argsLen)
}

func scalar(s types.Scalar) pattern.Element {
	return pattern.Ctor(types.MakeScalar(s), 0)
}

var (
	hole  = pattern.Placeholder()
	infer = pattern.Inferred()
)

func (f fixture) seq(t *testing.T, elems ...pattern.Element) pattern.Seq {
	t.Helper()
	s, ok := pattern.NewSeq(f.in, elems)
	if !ok {
		t.Fatalf("expected valid sequence: %v", elems)
	}
	return s
}

func (f fixture) exactSeq(t *testing.T, elems ...pattern.Element) pattern.ExactSeq {
	t.Helper()
	s, ok := pattern.NewExactSeq(f.seq(t, elems...))
	if !ok {
		t.Fatalf("expected exact sequence: %v", elems)
	}
	return s
}

func (f fixture) pat(t *testing.T, elems ...pattern.Element) pattern.Pattern {
	t.Helper()
	p, rest, ok := pattern.NewPattern(f.in, elems)
	if !ok || len(rest) != 0 {
		t.Fatalf("expected a single pattern: %v", elems)
	}
	return p
}

func (f fixture) exact(t *testing.T, elems ...pattern.Element) pattern.ExactPattern {
	t.Helper()
	p, ok := pattern.NewExactPattern(f.pat(t, elems...))
	if !ok {
		t.Fatalf("expected exact pattern: %v", elems)
	}
	return p
}

func expectContractPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected a contract violation panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, pattern.ErrContract) {
			t.Fatalf("expected ErrContract, got %v", r)
		}
	}()
	fn()
}

func TestNewSeqValidation(t *testing.T) {
	f := newFixture()
	ref := func(q types.RefQual, n int) pattern.Element { return pattern.Ctor(types.MakeRef(q), n) }
	slice := func(n int) pattern.Element { return pattern.Ctor(types.MakeSlice(), n) }

	tests := []struct {
		name  string
		elems []pattern.Element
		ok    bool
	}{
		{"empty", nil, false},
		{"scalar", []pattern.Element{scalar(types.I32)}, true},
		{"placeholder and inferred", []pattern.Element{hole, infer}, true},
		{"adt one arg", []pattern.Element{adt(f.B, 1), scalar(types.I32)}, true},
		{"two slots", []pattern.Element{adt(f.B, 1), scalar(types.I32), scalar(types.Bool)}, true},
		{"nested", []pattern.Element{adt(f.Pair, 4), ref(types.RefMut, 1), scalar(types.I32), slice(1), scalar(types.Bool)}, true},
		{"adt missing arg", []pattern.Element{adt(f.B, 0)}, false},
		{"adt args length too large", []pattern.Element{adt(f.B, 2), scalar(types.I32), scalar(types.Bool)}, false},
		{"leaf adt with args", []pattern.Element{adt(f.A, 1), scalar(types.I32)}, false},
		{"builtin truncated", []pattern.Element{ref(types.RefPlain, 1)}, false},
		{"slice without arg", []pattern.Element{slice(0)}, false},
		{"scalar with args", []pattern.Element{pattern.Ctor(types.MakeScalar(types.I32), 1), scalar(types.Bool)}, false},
		{"window past end", []pattern.Element{adt(f.Pair, 2), scalar(types.I32)}, false},
		{"pair args too short", []pattern.Element{adt(f.Pair, 1), scalar(types.I32), scalar(types.Bool)}, false},
		{"negative args length", []pattern.Element{pattern.Ctor(types.MakeNever(), -1)}, false},
		{"zero element", []pattern.Element{{}}, false},
		{"invalid scalar", []pattern.Element{scalar(types.Scalar{Kind: types.ScalarInt})}, false},
		{"no adt id", []pattern.Element{pattern.Ctor(types.MakeAdt(types.NoAdtID), 0)}, false},
		{"unregistered adt id", []pattern.Element{pattern.Ctor(types.MakeAdt(99), 0)}, false},
		{"trait id used as adt", []pattern.Element{pattern.Ctor(types.MakeAdt(types.AdtID(f.Clone)), 0)}, false},
		{"ref qualifier out of range", []pattern.Element{pattern.Ctor(types.TypeID{Kind: types.KindRef, RefQual: 9}, 1), scalar(types.U8)}, false},
		{"ptr qualifier out of range", []pattern.Element{pattern.Ctor(types.TypeID{Kind: types.KindPtr, PtrQual: 2}, 1), scalar(types.U8)}, false},
		{"slice with stray fields", []pattern.Element{pattern.Ctor(types.TypeID{Kind: types.KindSlice, Adt: f.A, RefQual: types.RefMut}, 1), scalar(types.U8)}, false},
		{"scalar with stray qualifier", []pattern.Element{pattern.Ctor(types.TypeID{Kind: types.KindScalar, Scalar: types.I32, PtrQual: types.PtrMut}, 0)}, false},
		{"unknown kind", []pattern.Element{pattern.Ctor(types.TypeID{Kind: types.KindNever + 1}, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, ok := pattern.NewSeq(f.in, tt.elems)
			if ok != tt.ok {
				t.Fatalf("NewSeq(%v) ok = %v, want %v", tt.elems, ok, tt.ok)
			}
			if ok {
				if err := testkit.CheckSeqInvariants(seq); err != nil {
					t.Fatalf("invariants: %v", err)
				}
			}
		})
	}
}

func TestNewSeqDepthLimit(t *testing.T) {
	f := newFixture()
	nest := func(depth int) []pattern.Element {
		elems := make([]pattern.Element, 0, depth+1)
		for i := range depth {
			elems = append(elems, pattern.Ctor(types.MakeRef(types.RefPlain), depth-i))
		}
		return append(elems, scalar(types.U8))
	}
	if _, ok := pattern.NewSeq(f.in, nest(100)); !ok {
		t.Fatalf("moderately nested pattern should validate")
	}
	if _, ok := pattern.NewSeq(f.in, nest(pattern.MaxDepth+10)); ok {
		t.Fatalf("pattern deeper than MaxDepth must be rejected")
	}
}

func TestNewPatternReturnsTail(t *testing.T) {
	f := newFixture()
	elems := []pattern.Element{adt(f.B, 1), hole, scalar(types.Char)}
	p, rest, ok := pattern.NewPattern(f.in, elems)
	if !ok || p.Len() != 2 || len(rest) != 1 {
		t.Fatalf("unexpected decode: ok=%v len=%d rest=%d", ok, p.Len(), len(rest))
	}
	if _, _, ok := pattern.NewPatternOfKind(f.in, elems, pattern.KindType); !ok {
		t.Fatalf("type kind should decode")
	}
}

func TestNewTraitImpl(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name  string
		trait types.TraitID
		elems []pattern.Element
		ok    bool
	}{
		{"clone implementor only", f.Clone, []pattern.Element{adt(f.A, 0)}, true},
		{"clone extra slot", f.Clone, []pattern.Element{adt(f.A, 0), scalar(types.I32)}, false},
		{"from with arg", f.From, []pattern.Element{scalar(types.I64), scalar(types.I32)}, true},
		{"from missing arg", f.From, []pattern.Element{scalar(types.I64)}, false},
		{"malformed", f.Clone, []pattern.Element{adt(f.B, 0)}, false},
		{"unregistered trait", types.TraitID(99), []pattern.Element{adt(f.A, 0)}, false},
		{"adt id used as trait", types.TraitID(f.A), []pattern.Element{adt(f.A, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := pattern.NewTraitImpl(f.in, tt.elems, tt.trait); ok != tt.ok {
				t.Fatalf("NewTraitImpl ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestSplitFirstRoundTrip(t *testing.T) {
	f := newFixture()
	elems := []pattern.Element{
		adt(f.Pair, 3), adt(f.B, 1), hole, scalar(types.F32),
		pattern.Ctor(types.MakePtr(types.PtrMut), 1), infer,
		scalar(types.USize),
	}
	seq := f.seq(t, elems...)
	var got []pattern.Element
	slots := 0
	for slot := range seq.All() {
		got = append(got, slot.Elements()...)
		slots++
	}
	if slots != 3 || seq.Slots() != 3 {
		t.Fatalf("expected 3 slots, got %d", slots)
	}
	if len(got) != len(elems) {
		t.Fatalf("visited %d elements, want %d", len(got), len(elems))
	}
	for i := range elems {
		if got[i] != elems[i] {
			t.Fatalf("element %d differs: %v vs %v", i, got[i], elems[i])
		}
	}
	// restartable
	if seq.Slots() != 3 {
		t.Fatalf("second traversal differs")
	}
}

func TestArgs(t *testing.T) {
	f := newFixture()
	p := f.pat(t, adt(f.Pair, 2), scalar(types.I8), scalar(types.U8))
	args, ok := p.Args()
	if !ok || args.Slots() != 2 {
		t.Fatalf("Pair<i8, u8> should have two argument slots")
	}
	if _, ok := f.pat(t, adt(f.A, 0)).Args(); ok {
		t.Fatalf("leaf has no args")
	}
}

func TestHasSameStructureAs(t *testing.T) {
	f := newFixture()
	seq := f.seq(t, scalar(types.I32), hole)
	if !seq.HasSameStructureAs([]pattern.Kind{pattern.KindType, pattern.KindType}) {
		t.Fatalf("two type slots expected")
	}
	if seq.HasSameStructureAs([]pattern.Kind{pattern.KindType}) {
		t.Fatalf("too few kinds must not match")
	}
	if seq.HasSameStructureAs([]pattern.Kind{pattern.KindType, pattern.KindType, pattern.KindType}) {
		t.Fatalf("too many kinds must not match")
	}
}

func TestExactRefinement(t *testing.T) {
	f := newFixture()
	if _, ok := pattern.NewExactSeq(f.seq(t, adt(f.B, 1), infer)); ok {
		t.Fatalf("sequence with inference marker is not exact")
	}
	if _, ok := pattern.NewExactSeq(f.seq(t, adt(f.B, 1), hole)); !ok {
		t.Fatalf("placeholders are allowed in exact sequences")
	}
	if _, ok := pattern.NewExactPattern(f.pat(t, infer)); ok {
		t.Fatalf("inference marker is not exact")
	}
}

func TestMatches(t *testing.T) {
	f := newFixture()
	bI32 := []pattern.Element{adt(f.B, 1), scalar(types.I32)}
	bBool := []pattern.Element{adt(f.B, 1), scalar(types.Bool)}
	refMutI32 := []pattern.Element{pattern.Ctor(types.MakeRef(types.RefMut), 1), scalar(types.I32)}
	refI32 := []pattern.Element{pattern.Ctor(types.MakeRef(types.RefPlain), 1), scalar(types.I32)}

	tests := []struct {
		name    string
		pattern []pattern.Element
		query   []pattern.Element
		want    bool
	}{
		{"reflexive", bI32, bI32, true},
		{"different arg", bI32, bBool, false},
		{"placeholder arg", []pattern.Element{adt(f.B, 1), hole}, bBool, true},
		{"placeholder root", []pattern.Element{hole}, refMutI32, true},
		{"qualifier differs", refI32, refMutI32, false},
		{"ctor vs query placeholder", bI32, []pattern.Element{adt(f.B, 1), hole}, false},
		{"different adt", []pattern.Element{adt(f.A, 0)}, bI32, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.pat(t, tt.pattern...).Matches(f.exact(t, tt.query...)); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceholderMatchesEverything(t *testing.T) {
	f := newFixture()
	wildcard := f.pat(t, hole)
	queries := [][]pattern.Element{
		{scalar(types.Char)},
		{pattern.Ctor(types.MakeNever(), 0)},
		{adt(f.Pair, 2), scalar(types.I8), hole},
		{pattern.Ctor(types.MakeNonZero(), 1), scalar(types.U64)},
	}
	for _, q := range queries {
		if !wildcard.Matches(f.exact(t, q...)) {
			t.Fatalf("_ should match %v", q)
		}
	}
}

func TestSeqMatches(t *testing.T) {
	f := newFixture()
	p := f.seq(t, adt(f.B, 1), hole, scalar(types.I32))
	if !p.Matches(f.exactSeq(t, adt(f.B, 1), scalar(types.U8), scalar(types.I32))) {
		t.Fatalf("B<_>, i32 should match B<u8>, i32")
	}
	if p.Matches(f.exactSeq(t, adt(f.B, 1), scalar(types.U8), scalar(types.I64))) {
		t.Fatalf("second slot differs")
	}
	if p.Matches(f.exactSeq(t, adt(f.B, 1), scalar(types.U8))) {
		t.Fatalf("differing slot counts must not match")
	}
}

func TestMatchesInferenceMarkerPanics(t *testing.T) {
	f := newFixture()
	q := f.exact(t, scalar(types.I32))
	expectContractPanic(t, func() {
		f.pat(t, infer).Matches(q)
	})
	inner := f.pat(t, adt(f.B, 1), infer)
	expectContractPanic(t, func() {
		inner.Matches(f.exact(t, adt(f.B, 1), scalar(types.I32)))
	})
}

func TestDisjointWith(t *testing.T) {
	f := newFixture()
	bI32 := []pattern.Element{adt(f.B, 1), scalar(types.I32)}
	bBool := []pattern.Element{adt(f.B, 1), scalar(types.Bool)}
	bHole := []pattern.Element{adt(f.B, 1), hole}

	tests := []struct {
		name string
		a, b []pattern.Element
		want bool
	}{
		{"irreflexive", bI32, bI32, false},
		{"arg differs", bI32, bBool, true},
		{"root differs", bI32, []pattern.Element{adt(f.A, 0)}, true},
		{"placeholder arg vs concrete", bHole, bI32, false},
		{"placeholder vs placeholder", bHole, bHole, false},
		{"root placeholder", []pattern.Element{hole}, []pattern.Element{adt(f.A, 0)}, false},
		{"one slot enough", []pattern.Element{adt(f.Pair, 2), hole, scalar(types.I8)}, []pattern.Element{adt(f.Pair, 2), scalar(types.U8), scalar(types.U8)}, true},
		{"pair overlaps", []pattern.Element{adt(f.Pair, 2), hole, scalar(types.I8)}, []pattern.Element{adt(f.Pair, 2), scalar(types.U8), hole}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := f.exact(t, tt.a...), f.exact(t, tt.b...)
			if got := a.DisjointWith(b); got != tt.want {
				t.Fatalf("DisjointWith = %v, want %v", got, tt.want)
			}
			if got := b.DisjointWith(a); got != tt.want {
				t.Fatalf("DisjointWith is not symmetric")
			}
		})
	}
}

func TestDisjointImpliesNoCommonInstance(t *testing.T) {
	f := newFixture()
	a := f.exact(t, adt(f.B, 1), scalar(types.I32))
	b := f.exact(t, adt(f.B, 1), scalar(types.Bool))
	if !a.DisjointWith(b) {
		t.Fatalf("B<i32> and B<bool> must be disjoint")
	}
	for _, q := range []pattern.ExactPattern{a, b} {
		if a.Pattern().Matches(q) && b.Pattern().Matches(q) {
			t.Fatalf("%v matches both disjoint patterns", q)
		}
	}
}

func TestExactSeqDisjointSlotCounts(t *testing.T) {
	f := newFixture()
	one := f.exactSeq(t, scalar(types.I32))
	two := f.exactSeq(t, scalar(types.I32), scalar(types.I32))
	if !one.DisjointWith(two) {
		t.Fatalf("differing slot counts are treated as disjoint")
	}
	if one.DisjointWith(one) {
		t.Fatalf("a sequence is never disjoint with itself")
	}
}

func TestImplHeadersEndToEnd(t *testing.T) {
	f := newFixture()
	bAsClone, ok := pattern.NewTraitImpl(f.in, []pattern.Element{adt(f.B, 1), hole}, f.Clone)
	if !ok {
		t.Fatalf("impl B<_> as Clone should validate")
	}
	aAsClone, ok := pattern.NewTraitImpl(f.in, []pattern.Element{adt(f.A, 0)}, f.Clone)
	if !ok {
		t.Fatalf("impl A as Clone should validate")
	}
	inferAsClone, ok := pattern.NewTraitImpl(f.in, []pattern.Element{adt(f.B, 1), infer}, f.Clone)
	if !ok {
		t.Fatalf("impl B<?> as Clone should validate as a general pattern")
	}

	exactB, ok := pattern.NewExactSeq(bAsClone)
	if !ok {
		t.Fatalf("impl B<_> as Clone should be exact")
	}
	exactA, ok := pattern.NewExactSeq(aAsClone)
	if !ok {
		t.Fatalf("impl A as Clone should be exact")
	}
	if !exactA.DisjointWith(exactB) || !exactB.DisjointWith(exactA) {
		t.Fatalf("impls for A and B<_> must be disjoint")
	}
	if _, ok := pattern.NewExactSeq(inferAsClone); ok {
		t.Fatalf("impl B<?> as Clone must not be exact")
	}

	var b strings.Builder
	if err := aAsClone.FormatTraitImpl(f.in, f.Clone, &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "impl A as Clone" {
		t.Fatalf("unexpected rendering %q", b.String())
	}
	b.Reset()
	if err := inferAsClone.FormatTraitImpl(f.in, f.Clone, &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "impl B<?> as Clone" {
		t.Fatalf("unexpected rendering %q", b.String())
	}
}

func TestFormatCanonicalForms(t *testing.T) {
	f := newFixture()
	tests := []struct {
		elems []pattern.Element
		want  string
	}{
		{[]pattern.Element{pattern.Ctor(types.MakeRef(types.RefMut), 1), scalar(types.I32)}, "&mut i32"},
		{[]pattern.Element{pattern.Ctor(types.MakeRef(types.RefDrop), 1), hole}, "&drop _"},
		{[]pattern.Element{pattern.Ctor(types.MakeRef(types.RefPlain), 1), infer}, "&?"},
		{[]pattern.Element{pattern.Ctor(types.MakePtr(types.PtrMut), 1), scalar(types.UChar)}, "*mut uchar"},
		{[]pattern.Element{pattern.Ctor(types.MakePtr(types.PtrPlain), 1), pattern.Ctor(types.MakeNever(), 0)}, "*!"},
		{[]pattern.Element{pattern.Ctor(types.MakeNonZero(), 1), scalar(types.U8)}, "NonZero<u8>"},
		{[]pattern.Element{pattern.Ctor(types.MakeSlice(), 1), scalar(types.Bool)}, "[bool]"},
		{[]pattern.Element{adt(f.B, 1), adt(f.A, 0)}, "B<A>"},
		{[]pattern.Element{adt(f.Pair, 3), pattern.Ctor(types.MakeSlice(), 1), scalar(types.F16), hole}, "Pair<[f16], _>"},
	}
	for _, tt := range tests {
		if got := f.pat(t, tt.elems...).Render(f.in); got != tt.want {
			t.Fatalf("Render = %q, want %q", got, tt.want)
		}
	}
	seq := f.seq(t, scalar(types.ISize), hole)
	if got := seq.Render(f.in); got != "isize, _" {
		t.Fatalf("seq Render = %q", got)
	}
}

func TestFormatImplContracts(t *testing.T) {
	f := newFixture()
	var b strings.Builder
	single := f.seq(t, adt(f.A, 0))
	if err := single.FormatInherentImpl(f.in, &b); err != nil || b.String() != "impl A" {
		t.Fatalf("unexpected inherent rendering %q (%v)", b.String(), err)
	}
	b.Reset()
	from := f.seq(t, scalar(types.I64), scalar(types.I32))
	if err := from.FormatTraitImpl(f.in, f.From, &b); err != nil || b.String() != "impl i64 as From<i32>" {
		t.Fatalf("unexpected trait rendering %q (%v)", b.String(), err)
	}

	expectContractPanic(t, func() { _ = from.FormatInherentImpl(f.in, &b) })
	expectContractPanic(t, func() { _ = single.FormatTraitImpl(f.in, f.From, &b) })
	expectContractPanic(t, func() { _ = from.FormatTraitImpl(f.in, f.Clone, &b) })
}

func TestClone(t *testing.T) {
	f := newFixture()
	backing := []pattern.Element{adt(f.B, 1), scalar(types.I32)}
	seq := f.seq(t, backing...)
	owned := seq.Clone()
	backing[1] = scalar(types.Bool)
	if got := owned.Render(f.in); got != "B<i32>" {
		t.Fatalf("clone must not alias its source, got %q", got)
	}
}
