package header

import (
	"solver/internal/types"
)

// TypeKind tags a parsed type expression.
type TypeKind uint8

const (
	TypeNever TypeKind = iota + 1
	TypePlaceholder
	TypeInferred
	TypeSlice
	TypeRef
	TypePtr
	TypePath
)

// Type is a parsed type expression. Parenthesized groups are unwrapped by the
// parser and never appear in the tree.
type Type struct {
	Kind    TypeKind
	Pos     int
	RefQual types.RefQual // TypeRef
	PtrQual types.PtrQual // TypePtr
	Elem    *Type         // TypeSlice, TypeRef, TypePtr
	Path    *Path         // TypePath
}

// Path is a name with optional generic arguments: Name or Name<A, B>.
type Path struct {
	Pos  int
	Name string
	Args []*Type
}

// Impl is a parsed `impl T` or `impl T as Trait<...>` header.
type Impl struct {
	Pos         int
	Implementor *Type
	Trait       *Path // nil for inherent impls
}

// HasInferenceVars reports whether t mentions `?` anywhere.
func (t *Type) HasInferenceVars() bool {
	switch t.Kind {
	case TypeInferred:
		return true
	case TypeSlice, TypeRef, TypePtr:
		return t.Elem.HasInferenceVars()
	case TypePath:
		return t.Path.HasInferenceVars()
	default:
		return false
	}
}

// HasInferenceVars reports whether any generic argument mentions `?`.
func (p *Path) HasInferenceVars() bool {
	for _, arg := range p.Args {
		if arg.HasInferenceVars() {
			return true
		}
	}
	return false
}

// HasInferenceVars reports whether the implementor or trait arguments mention `?`.
func (im *Impl) HasInferenceVars() bool {
	if im.Implementor.HasInferenceVars() {
		return true
	}
	return im.Trait != nil && im.Trait.HasInferenceVars()
}
