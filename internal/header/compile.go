package header

import (
	"fmt"
	"strings"

	"solver/internal/pattern"
	"solver/internal/types"
)

// CompiledImpl is an impl header parsed, lowered and validated against an interner.
type CompiledImpl struct {
	Text     string
	Trait    types.TraitID
	HasTrait bool
	Seq      pattern.Seq
	Exact    pattern.ExactSeq
	IsExact  bool
}

// CompileImpl turns header text into a validated pattern sequence. Trait
// impls are validated with pattern.NewTraitImpl, inherent impls must have
// exactly one slot.
func CompileImpl(in *types.Interner, text string) (CompiledImpl, error) {
	im, err := ParseImpl(text)
	if err != nil {
		return CompiledImpl{}, err
	}
	elems, trait, hasTrait, err := LowerImpl(in, im)
	if err != nil {
		return CompiledImpl{}, err
	}
	var seq pattern.Seq
	var ok bool
	if hasTrait {
		seq, ok = pattern.NewTraitImpl(in, elems, trait)
	} else {
		seq, ok = pattern.NewSeq(in, elems)
		ok = ok && seq.Slots() == 1
	}
	if !ok {
		return CompiledImpl{}, &Error{Pos: im.Pos, Kind: ShapeError, Msg: "header does not form a valid impl pattern"}
	}
	out := CompiledImpl{Text: text, Trait: trait, HasTrait: hasTrait, Seq: seq}
	out.Exact, out.IsExact = pattern.NewExactSeq(seq)
	return out, nil
}

// CompileType parses a type expression into a validated single pattern.
func CompileType(in *types.Interner, text string) (pattern.Pattern, error) {
	t, err := ParseType(text)
	if err != nil {
		return pattern.Pattern{}, err
	}
	elems, err := Lower(in, t)
	if err != nil {
		return pattern.Pattern{}, err
	}
	p, rest, ok := pattern.NewPattern(in, elems)
	if !ok || len(rest) != 0 {
		return pattern.Pattern{}, &Error{Pos: t.Pos, Kind: ShapeError, Msg: "type does not form a valid pattern"}
	}
	return p, nil
}

// CompileExactType is CompileType that rejects inference markers.
func CompileExactType(in *types.Interner, text string) (pattern.ExactPattern, error) {
	p, err := CompileType(in, text)
	if err != nil {
		return pattern.ExactPattern{}, err
	}
	exact, ok := pattern.NewExactPattern(p)
	if !ok {
		return pattern.ExactPattern{}, &Error{Kind: ShapeError, Msg: fmt.Sprintf("type %q contains inference markers", text)}
	}
	return exact, nil
}

// Render formats a compiled impl back to canonical text.
func (c CompiledImpl) Render(in *types.Interner) string {
	var b strings.Builder
	if c.HasTrait {
		_ = c.Seq.FormatTraitImpl(in, c.Trait, &b)
	} else {
		_ = c.Seq.FormatInherentImpl(in, &b)
	}
	return b.String()
}
