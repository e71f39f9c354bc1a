package manifest

import (
	"errors"
	"fmt"

	"solver/internal/coherence"
	"solver/internal/diag"
	"solver/internal/header"
	"solver/internal/types"
)

// Build registers the declared items and compiles every impl header.
// Problems become diagnostics; entries that fail are left out of the set.
func Build(m *Manifest) (*types.Interner, *coherence.Set, *diag.Bag) {
	bag := diag.NewBag(m.Config.Check.MaxDiagnostics)
	r := diag.NewDedupReporter(diag.NewBagReporter(bag))
	in := types.NewInterner()

	for _, key := range m.Unknown {
		r.Report(diag.NewWarning(diag.CfgUnknownKey, key, fmt.Sprintf("unknown manifest key %q", key)))
	}
	for i, item := range m.Config.Adts {
		subject := fmt.Sprintf("adt[%d]", i)
		if !checkItem(r, subject, "adt", item) {
			continue
		}
		if _, err := in.RegisterAdt(item.Name, types.TypeParams(len(item.Params))); err != nil {
			r.Report(registerDiagnostic(subject, err))
		}
	}
	for i, item := range m.Config.Traits {
		subject := fmt.Sprintf("trait[%d]", i)
		if !checkItem(r, subject, "trait", item) {
			continue
		}
		if _, err := in.RegisterTrait(item.Name, types.TypeParams(len(item.Params))); err != nil {
			r.Report(registerDiagnostic(subject, err))
		}
	}

	set := coherence.NewSet(in)
	for i, ic := range m.Config.Impls {
		name := ic.Name
		if name == "" {
			name = fmt.Sprintf("impl[%d]", i)
		}
		if ic.Header == "" {
			r.Report(diag.NewError(diag.CfgMissingField, name, "missing header"))
			continue
		}
		c, err := header.CompileImpl(in, ic.Header)
		if err != nil {
			r.Report(HeaderDiagnostic(name, ic.Header, err))
			continue
		}
		if _, err := set.Add(name, c); err != nil {
			r.Report(diag.NewError(diag.CfgDuplicateItem, name, err.Error()))
		}
	}
	return in, set, bag
}

func checkItem(r diag.Reporter, subject, kind string, item ItemConfig) bool {
	if item.Name == "" {
		r.Report(diag.NewError(diag.CfgMissingField, subject, kind+" declaration without a name"))
		return false
	}
	if !header.IsIdent(item.Name) {
		r.Report(diag.NewError(diag.CfgInvalidItem, subject, fmt.Sprintf("%q is not a valid %s name", item.Name, kind)))
		return false
	}
	return true
}

func registerDiagnostic(subject string, err error) diag.Diagnostic {
	code := diag.CfgInvalidItem
	if errors.Is(err, types.ErrDuplicateItem) {
		code = diag.CfgDuplicateItem
	}
	return diag.NewError(code, subject, err.Error())
}

// HeaderDiagnostic classifies a header.CompileImpl/CompileType failure into
// an HDR diagnostic about subject.
func HeaderDiagnostic(name, text string, err error) diag.Diagnostic {
	code := diag.HdrSyntax
	var herr *header.Error
	if errors.As(err, &herr) {
		switch herr.Kind {
		case header.ResolveError:
			code = diag.HdrResolve
		case header.ShapeError:
			code = diag.HdrShape
		}
	}
	return diag.NewError(code, name, fmt.Sprintf("%s: %v", text, err))
}
