package pattern

import (
	"slices"

	"solver/internal/types"
)

// NewSeq validates that elems is a concatenation of one or more well-formed
// patterns. Arity comes from the fixed built-in table or, for ADTs, from r.
func NewSeq(r Resolver, elems []Element) (Seq, bool) {
	if len(elems) == 0 {
		return Seq{}, false
	}
	rest := elems
	for len(rest) != 0 {
		n, ok := decodeAny(r, rest, 0)
		if !ok {
			return Seq{}, false
		}
		rest = rest[n:]
	}
	return NewSeqUnchecked(elems), true
}

// NewPattern decodes exactly one pattern from the front of elems and returns
// it together with the unconsumed tail.
func NewPattern(r Resolver, elems []Element) (Pattern, []Element, bool) {
	n, ok := decodeAny(r, elems, 0)
	if !ok {
		return Pattern{}, nil, false
	}
	return NewPatternUnchecked(elems[:n]), elems[n:], true
}

// NewPatternOfKind is NewPattern that also requires the decoded slot to be of kind.
func NewPatternOfKind(r Resolver, elems []Element, kind Kind) (Pattern, []Element, bool) {
	n, ok := decodeOfKind(r, elems, kind, 0)
	if !ok {
		return Pattern{}, nil, false
	}
	return NewPatternUnchecked(elems[:n]), elems[n:], true
}

// NewTraitImpl validates elems as the header of an impl of trait: slot 0 is
// the implementor type, the remaining slots are the trait's generic arguments.
func NewTraitImpl(r Resolver, elems []Element, trait types.TraitID) (Seq, bool) {
	seq, ok := NewSeq(r, elems)
	if !ok {
		return Seq{}, false
	}
	data, ok := r.LookupTraitID(trait)
	if !ok || !seq.HasSameStructureAs(TraitImplKinds(data)) {
		return Seq{}, false
	}
	return seq, true
}

// TraitImplKinds returns [Type] ++ trait.GenericArgs.
func TraitImplKinds(trait types.TraitData) []Kind {
	return slices.Concat([]Kind{KindType}, KindsOf(trait.GenericArgs))
}

// NewExactSeq refines seq when it holds no inference markers.
func NewExactSeq(seq Seq) (ExactSeq, bool) {
	if slices.ContainsFunc(seq.elems, Element.IsInferenceVar) {
		return ExactSeq{}, false
	}
	return ExactSeq{seq: seq}, true
}

// NewExactPattern refines p when it holds no inference markers.
func NewExactPattern(p Pattern) (ExactPattern, bool) {
	if slices.ContainsFunc(p.elems, Element.IsInferenceVar) {
		return ExactPattern{}, false
	}
	return ExactPattern{pat: p}, true
}

func decodeAny(r Resolver, elems []Element, depth int) (int, bool) {
	if len(elems) == 0 {
		return 0, false
	}
	switch elems[0].Kind {
	case ElemConstructor, ElemPlaceholder, ElemInferred:
		return decodeType(r, elems, depth)
	default:
		return 0, false
	}
}

func decodeOfKind(r Resolver, elems []Element, kind Kind, depth int) (int, bool) {
	switch kind {
	case KindType:
		return decodeType(r, elems, depth)
	default:
		return 0, false
	}
}

// decodeType returns the width of the type pattern at the front of elems.
func decodeType(r Resolver, elems []Element, depth int) (int, bool) {
	if len(elems) == 0 || depth > MaxDepth {
		return 0, false
	}
	head := elems[0]
	switch head.Kind {
	case ElemPlaceholder, ElemInferred:
		return 1, true
	case ElemConstructor:
	default:
		return 0, false
	}
	if head.ArgsLen < 0 || head.ArgsLen > len(elems)-1 {
		return 0, false
	}
	args, ok := argTypes(r, head.Type)
	if !ok {
		return 0, false
	}
	window := elems[1 : 1+head.ArgsLen]
	for _, arg := range args {
		n, ok := decodeOfKind(r, window, KindOf(arg), depth+1)
		if !ok {
			return 0, false
		}
		window = window[n:]
	}
	// ArgsLen must be exactly the sum of the argument widths.
	if len(window) != 0 {
		return 0, false
	}
	return 1 + head.ArgsLen, true
}

// argTypes rejects non-canonical ids and ADTs the resolver does not know.
func argTypes(r Resolver, t types.TypeID) ([]types.GenericArgType, bool) {
	if !t.Canonical() {
		return nil, false
	}
	if t.Kind == types.KindAdt {
		data, ok := r.LookupAdtID(t.Adt)
		if !ok {
			return nil, false
		}
		return data.GenericArgs, true
	}
	args, _, _ := t.GenericArgTypes()
	return args, true
}
