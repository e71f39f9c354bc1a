package header

import (
	"solver/internal/pattern"
	"solver/internal/types"
)

// Lower flattens t into pre-order pattern elements, resolving names against in.
// Scalar names and NonZero resolve to built-ins; anything else must be a
// declared ADT with a matching number of arguments.
func Lower(in *types.Interner, t *Type) ([]pattern.Element, error) {
	return appendType(in, nil, t)
}

// LowerImpl flattens an impl header into its slots: the implementor followed
// by the trait's generic arguments. hasTrait is false for inherent impls.
func LowerImpl(in *types.Interner, im *Impl) (elems []pattern.Element, trait types.TraitID, hasTrait bool, err error) {
	elems, err = appendType(in, nil, im.Implementor)
	if err != nil {
		return nil, types.NoTraitID, false, err
	}
	if im.Trait == nil {
		return elems, types.NoTraitID, false, nil
	}
	trait, ok := in.LookupTrait(im.Trait.Name)
	if !ok {
		return nil, types.NoTraitID, false, resolvef(im.Trait.Pos, "unknown trait %q", im.Trait.Name)
	}
	data := in.Trait(trait)
	if len(im.Trait.Args) != len(data.GenericArgs) {
		return nil, types.NoTraitID, false, resolvef(im.Trait.Pos, "trait %s expects %d generic argument(s), got %d",
			data.Name, len(data.GenericArgs), len(im.Trait.Args))
	}
	for _, arg := range im.Trait.Args {
		if elems, err = appendType(in, elems, arg); err != nil {
			return nil, types.NoTraitID, false, err
		}
	}
	return elems, trait, true, nil
}

func appendType(in *types.Interner, out []pattern.Element, t *Type) ([]pattern.Element, error) {
	switch t.Kind {
	case TypeNever:
		return append(out, pattern.Ctor(types.MakeNever(), 0)), nil
	case TypePlaceholder:
		return append(out, pattern.Placeholder()), nil
	case TypeInferred:
		return append(out, pattern.Inferred()), nil
	case TypeSlice:
		return appendWrapper(in, out, types.MakeSlice(), t.Elem)
	case TypeRef:
		return appendWrapper(in, out, types.MakeRef(t.RefQual), t.Elem)
	case TypePtr:
		return appendWrapper(in, out, types.MakePtr(t.PtrQual), t.Elem)
	case TypePath:
		return appendPath(in, out, t.Path)
	default:
		return nil, resolvef(t.Pos, "unsupported type expression")
	}
}

// appendWrapper emits a single-argument constructor followed by its argument
// and back-patches ArgsLen once the argument width is known.
func appendWrapper(in *types.Interner, out []pattern.Element, id types.TypeID, elem *Type) ([]pattern.Element, error) {
	root := len(out)
	out = append(out, pattern.Ctor(id, 0))
	out, err := appendType(in, out, elem)
	if err != nil {
		return nil, err
	}
	out[root].ArgsLen = len(out) - root - 1
	return out, nil
}

func appendPath(in *types.Interner, out []pattern.Element, path *Path) ([]pattern.Element, error) {
	if s, ok := types.ParseScalar(path.Name); ok {
		if len(path.Args) != 0 {
			return nil, resolvef(path.Pos, "scalar %s takes no generic arguments", path.Name)
		}
		return append(out, pattern.Ctor(types.MakeScalar(s), 0)), nil
	}
	if path.Name == "NonZero" {
		if len(path.Args) != 1 {
			return nil, resolvef(path.Pos, "NonZero expects 1 generic argument, got %d", len(path.Args))
		}
		return appendWrapper(in, out, types.MakeNonZero(), path.Args[0])
	}

	id, ok := in.LookupAdt(path.Name)
	if !ok {
		return nil, resolvef(path.Pos, "unknown type %q", path.Name)
	}
	if want := len(in.AdtArity(id)); want != len(path.Args) {
		return nil, resolvef(path.Pos, "type %s expects %d generic argument(s), got %d", path.Name, want, len(path.Args))
	}
	root := len(out)
	out = append(out, pattern.Ctor(types.MakeAdt(id), 0))
	for _, arg := range path.Args {
		var err error
		if out, err = appendType(in, out, arg); err != nil {
			return nil, err
		}
	}
	out[root].ArgsLen = len(out) - root - 1
	return out, nil
}
