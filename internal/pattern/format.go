package pattern

import (
	"io"
	"strings"

	"solver/internal/types"
)

// Format writes the canonical text of p.
func (p Pattern) Format(r Resolver, w io.Writer) error {
	var b strings.Builder
	p.format(r, &b)
	_, err := io.WriteString(w, b.String())
	return err
}

// Render returns the canonical text of p.
func (p Pattern) Render(r Resolver) string {
	var b strings.Builder
	p.format(r, &b)
	return b.String()
}

// Format writes the slots of s separated by ", ".
func (s Seq) Format(r Resolver, w io.Writer) error {
	var b strings.Builder
	s.format(r, &b)
	_, err := io.WriteString(w, b.String())
	return err
}

// Render returns the slots of s separated by ", ".
func (s Seq) Render(r Resolver) string {
	var b strings.Builder
	s.format(r, &b)
	return b.String()
}

// FormatInherentImpl writes "impl <implementor>". s must hold exactly one slot.
func (s Seq) FormatInherentImpl(r Resolver, w io.Writer) error {
	implementor, _, more := s.SplitFirst()
	if implementor.Kind() != KindType {
		contractf("implementor of an inherent impl must be a type: %s", implementor)
	}
	if more {
		contractf("pattern is too long for an inherent impl: %s", s)
	}
	var b strings.Builder
	b.WriteString("impl ")
	implementor.format(r, &b)
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatTraitImpl writes "impl <implementor> as Trait<args>". s must have been
// validated against trait, e.g. by NewTraitImpl.
func (s Seq) FormatTraitImpl(r Resolver, trait types.TraitID, w io.Writer) error {
	implementor, traitArgs, hasArgs := s.SplitFirst()
	if implementor.Kind() != KindType {
		contractf("implementor of a trait impl must be a type: %s", implementor)
	}
	data := r.Trait(trait)
	var b strings.Builder
	b.WriteString("impl ")
	implementor.format(r, &b)
	b.WriteString(" as ")
	b.WriteString(data.Name)
	switch {
	case len(data.GenericArgs) != 0 && !hasArgs:
		contractf("trait %s expected generic arguments %v, but none were provided", data.Name, data.GenericArgs)
	case len(data.GenericArgs) != 0:
		if !traitArgs.HasSameStructureAs(KindsOf(data.GenericArgs)) {
			contractf("invalid generic arguments for trait %s: expected %v, got %s", data.Name, data.GenericArgs, traitArgs)
		}
		b.WriteByte('<')
		traitArgs.format(r, &b)
		b.WriteByte('>')
	case hasArgs:
		contractf("trait %s didn't expect generic arguments, got %s", data.Name, traitArgs)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s Seq) format(r Resolver, b *strings.Builder) {
	first := true
	for slot := range s.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		slot.format(r, b)
	}
}

func (p Pattern) format(r Resolver, b *strings.Builder) {
	head := p.First()
	switch head.Kind {
	case ElemPlaceholder:
		b.WriteByte('_')
		return
	case ElemInferred:
		b.WriteByte('?')
		return
	}
	// built-in wrappers have a single argument occupying the rest of p
	arg := Pattern{elems: p.elems[min(1, len(p.elems)):]}
	switch t := head.Type; t.Kind {
	case types.KindScalar:
		b.WriteString(t.Scalar.String())
	case types.KindNever:
		b.WriteByte('!')
	case types.KindNonZero:
		b.WriteString("NonZero<")
		arg.format(r, b)
		b.WriteByte('>')
	case types.KindSlice:
		b.WriteByte('[')
		arg.format(r, b)
		b.WriteByte(']')
	case types.KindRef:
		b.WriteByte('&')
		b.WriteString(t.RefQual.Prefix())
		arg.format(r, b)
	case types.KindPtr:
		b.WriteByte('*')
		b.WriteString(t.PtrQual.Prefix())
		arg.format(r, b)
	case types.KindAdt:
		b.WriteString(r.Adt(t.Adt).Name)
		if args, ok := p.Args(); ok {
			b.WriteByte('<')
			args.format(r, b)
			b.WriteByte('>')
		}
	default:
		contractf("unknown type constructor %v", t.Kind)
	}
}

// Format writes the canonical text of p.
func (p ExactPattern) Format(r Resolver, w io.Writer) error { return p.pat.Format(r, w) }

// Render returns the canonical text of p.
func (p ExactPattern) Render(r Resolver) string { return p.pat.Render(r) }

// Format writes the slots of s separated by ", ".
func (s ExactSeq) Format(r Resolver, w io.Writer) error { return s.seq.Format(r, w) }

// Render returns the slots of s separated by ", ".
func (s ExactSeq) Render(r Resolver) string { return s.seq.Render(r) }
