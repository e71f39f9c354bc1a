package pattern

// DisjointWith reports whether p and other can never denote the same type.
// Placeholders may specialize to anything, so they never force disjointness.
func (p ExactPattern) DisjointWith(other ExactPattern) bool {
	ph, oh := p.First(), other.First()
	if ph.Kind == ElemInferred || oh.Kind == ElemInferred {
		contractf("inference marker in disjointness check: %s vs %s", p, other)
	}
	if ph.Kind == ElemPlaceholder || oh.Kind == ElemPlaceholder {
		return false
	}
	if ph.Type != oh.Type {
		return true
	}
	args, hasArgs := p.Args()
	oargs, oHasArgs := other.Args()
	switch {
	case hasArgs && oHasArgs:
		return args.DisjointWith(oargs)
	case !hasArgs && !oHasArgs:
		return false
	default:
		contractf("arity mismatch under equal constructors: %s vs %s", p, other)
		return false
	}
}

// DisjointWith is existential over slot pairs: one irreconcilable slot is
// enough. Differing slot counts are treated as disjoint.
func (s ExactSeq) DisjointWith(other ExactSeq) bool {
	head, rest, more := s.SplitFirst()
	ohead, orest, omore := other.SplitFirst()
	for {
		if head.DisjointWith(ohead) {
			return true
		}
		switch {
		case more && omore:
			head, rest, more = rest.SplitFirst()
			ohead, orest, omore = orest.SplitFirst()
		case !more && !omore:
			return false
		default:
			return true
		}
	}
}
