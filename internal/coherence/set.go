package coherence

import (
	"fmt"
	"slices"

	"solver/internal/header"
	"solver/internal/pattern"
	"solver/internal/types"
)

// Impl is one compiled impl header registered in a Set.
type Impl struct {
	Name     string
	Header   string // canonical text
	Trait    types.TraitID
	HasTrait bool
	Seq      pattern.Seq
	Exact    pattern.ExactSeq
	IsExact  bool
}

// Set holds the impls checked and resolved against one interner.
// Adding is not safe for concurrent use; reading after the last Add is.
type Set struct {
	in     *types.Interner
	impls  []Impl
	byName map[string]int
}

func NewSet(in *types.Interner) *Set {
	return &Set{in: in, byName: make(map[string]int)}
}

func (s *Set) Interner() *types.Interner { return s.in }

// Add registers c under name. An empty name becomes "impl#N" with N the
// 1-based insertion index.
func (s *Set) Add(name string, c header.CompiledImpl) (Impl, error) {
	if name == "" {
		name = fmt.Sprintf("impl#%d", len(s.impls)+1)
	}
	if _, dup := s.byName[name]; dup {
		return Impl{}, fmt.Errorf("duplicate impl name %q", name)
	}
	im := Impl{
		Name:     name,
		Header:   c.Render(s.in),
		Trait:    c.Trait,
		HasTrait: c.HasTrait,
		Seq:      c.Seq,
		Exact:    c.Exact,
		IsExact:  c.IsExact,
	}
	s.byName[name] = len(s.impls)
	s.impls = append(s.impls, im)
	return im, nil
}

// AddHeader compiles text and registers the result.
func (s *Set) AddHeader(name, text string) (Impl, error) {
	c, err := header.CompileImpl(s.in, text)
	if err != nil {
		return Impl{}, err
	}
	return s.Add(name, c)
}

func (s *Set) Len() int { return len(s.impls) }

// Impls returns the impls in insertion order.
func (s *Set) Impls() []Impl { return slices.Clone(s.impls) }

func (s *Set) Lookup(name string) (Impl, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Impl{}, false
	}
	return s.impls[i], true
}
