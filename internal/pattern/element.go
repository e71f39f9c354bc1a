package pattern

import (
	"errors"
	"fmt"

	"solver/internal/types"
)

// ErrContract is wrapped by every panic raised for a broken upstream invariant,
// e.g. an inference marker reaching the matcher. Recover and test with errors.Is.
var ErrContract = errors.New("pattern: contract violation")

func contractf(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrContract}, args...)...))
}

// MaxDepth bounds the nesting of a validated pattern. Deeper inputs are rejected
// by the validating constructors, which keeps every recursive algorithm in this
// package within a fixed stack budget.
const MaxDepth = 256

// Resolver is the interner contract consumed by the pattern engine.
// Adt and Trait may panic on unknown ids and are only used on already
// validated patterns; the validating constructors use the Lookup forms.
type Resolver interface {
	Adt(id types.AdtID) types.AdtData
	Trait(id types.TraitID) types.TraitData
	LookupAdtID(id types.AdtID) (types.AdtData, bool)
	LookupTraitID(id types.TraitID) (types.TraitData, bool)
}

// Kind is the kind of a pattern slot. Only types exist today.
type Kind uint8

const (
	KindType Kind = iota
)

func (k Kind) String() string {
	if k == KindType {
		return "type"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindOf maps a declared generic parameter kind to the pattern kind filling it.
func KindOf(arg types.GenericArgType) Kind {
	switch arg {
	case types.ArgType:
		return KindType
	default:
		panic(fmt.Errorf("pattern: unknown generic arg type %d", arg))
	}
}

// KindsOf maps a declared generic parameter list.
func KindsOf(args []types.GenericArgType) []Kind {
	out := make([]Kind, len(args))
	for i, a := range args {
		out[i] = KindOf(a)
	}
	return out
}

// ElementKind tags a PatternElement.
type ElementKind uint8

const (
	// ElemConstructor is a concrete type constructor (built-in or ADT).
	ElemConstructor ElementKind = iota + 1
	// ElemPlaceholder is an opaque type (generic parameter, opaque alias).
	ElemPlaceholder
	// ElemInferred is a yet unknown type (inference variable).
	ElemInferred
)

func (k ElementKind) String() string {
	switch k {
	case ElemConstructor:
		return "ctor"
	case ElemPlaceholder:
		return "placeholder"
	case ElemInferred:
		return "inferred"
	default:
		return fmt.Sprintf("ElementKind(%d)", k)
	}
}

// Element is one token of the flattened pre-order encoding.
// ArgsLen counts the elements occupied by the constructor's arguments subtree
// and is zero for placeholders and inference markers.
type Element struct {
	Kind    ElementKind
	ArgsLen int
	Type    types.TypeID
}

// Ctor builds a constructor element.
func Ctor(t types.TypeID, argsLen int) Element {
	return Element{Kind: ElemConstructor, ArgsLen: argsLen, Type: t}
}

// Placeholder builds a `_` element.
func Placeholder() Element { return Element{Kind: ElemPlaceholder} }

// Inferred builds a `?` element.
func Inferred() Element { return Element{Kind: ElemInferred} }

// IsInferenceVar reports whether e stands for a type still to be inferred.
func (e Element) IsInferenceVar() bool { return e.Kind == ElemInferred }

// PatternKind returns the kind of slot e starts.
func (e Element) PatternKind() Kind { return KindType }

// width is the number of elements the subtree rooted at e occupies.
func (e Element) width() int {
	if e.Kind == ElemConstructor {
		return 1 + e.ArgsLen
	}
	return 1
}

func (e Element) String() string {
	switch e.Kind {
	case ElemConstructor:
		return fmt.Sprintf("%s/%d", e.Type, e.ArgsLen)
	case ElemPlaceholder:
		return "_"
	case ElemInferred:
		return "?"
	default:
		return e.Kind.String()
	}
}
