package coherence

import (
	"errors"
	"fmt"

	"solver/internal/header"
	"solver/internal/pattern"
	"solver/internal/types"
)

// Resolve returns the impls of trait whose patterns match query, in
// insertion order. query holds the implementor followed by the trait
// arguments. Impls with inference markers never match.
func Resolve(s *Set, trait types.TraitID, query pattern.ExactSeq) []Impl {
	var out []Impl
	for _, im := range s.impls {
		if !im.HasTrait || im.Trait != trait || !im.IsExact {
			continue
		}
		if im.Seq.Matches(query) {
			out = append(out, im)
		}
	}
	return out
}

// ResolveInherent returns the inherent impls whose implementor matches ty.
func ResolveInherent(s *Set, ty pattern.ExactPattern) []Impl {
	query := ty.Seq()
	var out []Impl
	for _, im := range s.impls {
		if im.HasTrait || !im.IsExact {
			continue
		}
		if im.Seq.Matches(query) {
			out = append(out, im)
		}
	}
	return out
}

// ErrInexactQuery is returned by Query for headers with inference markers.
var ErrInexactQuery = errors.New("query contains inference markers")

// Query resolves an impl header such as "impl B<i32> as From<u8>" against s.
// The header must be concrete: no inference markers.
func Query(s *Set, text string) ([]Impl, error) {
	c, err := header.CompileImpl(s.in, text)
	if err != nil {
		return nil, err
	}
	if !c.IsExact {
		return nil, fmt.Errorf("%q: %w", text, ErrInexactQuery)
	}
	if c.HasTrait {
		return Resolve(s, c.Trait, c.Exact), nil
	}
	implementor, _, _ := c.Exact.SplitFirst()
	return ResolveInherent(s, implementor), nil
}
