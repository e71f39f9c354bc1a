package pattern

// HasSameStructureAs reports whether the top-level slots of s have exactly the
// given kinds, in order.
func (s Seq) HasSameStructureAs(kinds []Kind) bool {
	i := 0
	for slot := range s.All() {
		if i >= len(kinds) || slot.Kind() != kinds[i] {
			return false
		}
		i++
	}
	return i == len(kinds)
}

// Matches reports whether the concrete type query is an instance of p.
// Placeholders in p match anything; a constructor in p never matches a
// placeholder in query. Inference markers on either side are a contract
// violation.
func (p Pattern) Matches(query ExactPattern) bool {
	ph, qh := p.First(), query.First()
	if ph.Kind == ElemInferred {
		contractf("inference marker on the matcher side: %s", p)
	}
	if qh.Kind == ElemInferred {
		contractf("inference marker in exact pattern: %s", query)
	}
	switch {
	case ph.Kind == ElemPlaceholder:
		return true
	case qh.Kind == ElemPlaceholder:
		return false
	}
	if ph.Type != qh.Type {
		return false
	}
	args, hasArgs := p.Args()
	qargs, qHasArgs := query.Args()
	switch {
	case hasArgs && qHasArgs:
		return args.Matches(qargs)
	case !hasArgs && !qHasArgs:
		return true
	default:
		contractf("arity mismatch under equal constructors: %s vs %s", p, query)
		return false
	}
}

// Matches is the slot-wise conjunction of Pattern.Matches. Differing slot
// counts do not match.
func (s Seq) Matches(query ExactSeq) bool {
	head, rest, more := s.SplitFirst()
	qhead, qrest, qmore := query.SplitFirst()
	for {
		if !head.Matches(qhead) {
			return false
		}
		switch {
		case more && qmore:
			head, rest, more = rest.SplitFirst()
			qhead, qrest, qmore = qrest.SplitFirst()
		case !more && !qmore:
			return true
		default:
			return false
		}
	}
}
