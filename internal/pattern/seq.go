package pattern

import (
	"iter"
	"slices"
	"strings"
)

// Seq is a validated window over one or more concatenated patterns (type slots).
// The zero value is not a valid sequence and is only returned together with a
// false flag.
type Seq struct{ elems []Element }

// Pattern is a validated window over exactly one type tree.
type Pattern struct{ elems []Element }

// ExactSeq is a Seq with no inference markers anywhere.
type ExactSeq struct{ seq Seq }

// ExactPattern is a Pattern with no inference markers anywhere.
type ExactPattern struct{ pat Pattern }

// NewSeqUnchecked wraps elems without validation. elems must already form a
// valid sequence.
func NewSeqUnchecked(elems []Element) Seq { return Seq{elems: clip(elems)} }

// NewPatternUnchecked wraps elems without validation. elems must already form
// exactly one valid pattern.
func NewPatternUnchecked(elems []Element) Pattern { return Pattern{elems: clip(elems)} }

// NewExactSeqUnchecked wraps elems without validation.
func NewExactSeqUnchecked(elems []Element) ExactSeq { return ExactSeq{seq: NewSeqUnchecked(elems)} }

// NewExactPatternUnchecked wraps elems without validation.
func NewExactPatternUnchecked(elems []Element) ExactPattern {
	return ExactPattern{pat: NewPatternUnchecked(elems)}
}

func clip(elems []Element) []Element { return elems[:len(elems):len(elems)] }

// Seq -----------------------------------------------------------------------

// Elements returns the underlying window. Callers must not modify it.
func (s Seq) Elements() []Element { return s.elems }

// Len returns the number of flattened elements (not slots).
func (s Seq) Len() int { return len(s.elems) }

// Valid reports whether s is a non-zero sequence.
func (s Seq) Valid() bool { return len(s.elems) != 0 }

// Clone returns a sequence over an owned copy of the elements.
func (s Seq) Clone() Seq { return Seq{elems: slices.Clone(s.elems)} }

// SplitFirst returns the first slot and, if present, the remaining slots.
// It only reads the head element.
func (s Seq) SplitFirst() (head Pattern, rest Seq, ok bool) {
	if len(s.elems) == 0 {
		contractf("split of an empty sequence")
	}
	n := s.elems[0].width()
	head = Pattern{elems: s.elems[:n:n]}
	if n == len(s.elems) {
		return head, Seq{}, false
	}
	return head, Seq{elems: s.elems[n:]}, true
}

// All iterates over the top-level slots of s.
func (s Seq) All() iter.Seq[Pattern] {
	return func(yield func(Pattern) bool) {
		if len(s.elems) == 0 {
			return
		}
		cur, more := s, true
		for more {
			var head Pattern
			head, cur, more = cur.SplitFirst()
			if !yield(head) {
				return
			}
		}
	}
}

// Slots returns the number of top-level slots.
func (s Seq) Slots() int {
	n := 0
	for range s.All() {
		n++
	}
	return n
}

func (s Seq) String() string { return elementsString(s.elems) }

// Pattern -------------------------------------------------------------------

// Seq views p as a single-slot sequence.
func (p Pattern) Seq() Seq { return Seq(p) }

// Elements returns the underlying window. Callers must not modify it.
func (p Pattern) Elements() []Element { return p.elems }

// Len returns the number of flattened elements.
func (p Pattern) Len() int { return len(p.elems) }

// Valid reports whether p is a non-zero pattern.
func (p Pattern) Valid() bool { return len(p.elems) != 0 }

// Clone returns a pattern over an owned copy of the elements.
func (p Pattern) Clone() Pattern { return Pattern{elems: slices.Clone(p.elems)} }

// First returns the root element.
func (p Pattern) First() Element {
	if len(p.elems) == 0 {
		contractf("empty pattern")
	}
	return p.elems[0]
}

// Kind returns the kind of the pattern.
func (p Pattern) Kind() Kind { return p.First().PatternKind() }

// Args returns the immediate arguments of the root as a sequence. Leaf
// patterns have none.
func (p Pattern) Args() (Seq, bool) {
	if len(p.elems) <= 1 {
		return Seq{}, false
	}
	return Seq{elems: p.elems[1:]}, true
}

func (p Pattern) String() string { return elementsString(p.elems) }

// ExactSeq ------------------------------------------------------------------

// Seq drops the exactness guarantee.
func (s ExactSeq) Seq() Seq { return s.seq }

// Elements returns the underlying window. Callers must not modify it.
func (s ExactSeq) Elements() []Element { return s.seq.elems }

// Valid reports whether s is a non-zero sequence.
func (s ExactSeq) Valid() bool { return s.seq.Valid() }

// Clone returns a sequence over an owned copy of the elements.
func (s ExactSeq) Clone() ExactSeq { return ExactSeq{seq: s.seq.Clone()} }

// SplitFirst is Seq.SplitFirst preserving exactness.
func (s ExactSeq) SplitFirst() (head ExactPattern, rest ExactSeq, ok bool) {
	h, r, ok := s.seq.SplitFirst()
	return ExactPattern{pat: h}, ExactSeq{seq: r}, ok
}

// All iterates over the top-level slots of s.
func (s ExactSeq) All() iter.Seq[ExactPattern] {
	return func(yield func(ExactPattern) bool) {
		for p := range s.seq.All() {
			if !yield(ExactPattern{pat: p}) {
				return
			}
		}
	}
}

func (s ExactSeq) String() string { return s.seq.String() }

// ExactPattern --------------------------------------------------------------

// Pattern drops the exactness guarantee.
func (p ExactPattern) Pattern() Pattern { return p.pat }

// Seq views p as a single-slot exact sequence.
func (p ExactPattern) Seq() ExactSeq { return ExactSeq{seq: p.pat.Seq()} }

// Elements returns the underlying window. Callers must not modify it.
func (p ExactPattern) Elements() []Element { return p.pat.elems }

// First returns the root element.
func (p ExactPattern) First() Element { return p.pat.First() }

// Clone returns a pattern over an owned copy of the elements.
func (p ExactPattern) Clone() ExactPattern { return ExactPattern{pat: p.pat.Clone()} }

// Args returns the immediate arguments of the root; any subtree of an exact
// pattern is exact as well.
func (p ExactPattern) Args() (ExactSeq, bool) {
	args, ok := p.pat.Args()
	return ExactSeq{seq: args}, ok
}

func (p ExactPattern) String() string { return p.pat.String() }

func elementsString(elems []Element) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}
