package types

import "slices"

// ItemID is an index into the interner's append-only item table.
type ItemID uint32

// NoItemID marks the absence of an item.
const NoItemID ItemID = 0

// AdtID identifies a user-defined nominal type.
type AdtID ItemID

// NoAdtID marks the absence of an ADT.
const NoAdtID AdtID = 0

// Item returns the underlying registry index.
func (id AdtID) Item() ItemID { return ItemID(id) }

// TraitID identifies a trait declaration.
type TraitID ItemID

// NoTraitID marks the absence of a trait.
const NoTraitID TraitID = 0

// Item returns the underlying registry index.
func (id TraitID) Item() ItemID { return ItemID(id) }

// GenericArgType is the kind of a declared generic parameter.
// Only type parameters exist today.
type GenericArgType uint8

const (
	ArgType GenericArgType = iota
)

func (g GenericArgType) String() string {
	if g == ArgType {
		return "type"
	}
	return "unknown"
}

// AdtData is the arity contract of a nominal type.
type AdtData struct {
	Name        string
	GenericArgs []GenericArgType
}

// TraitData is the arity contract of a trait.
type TraitData struct {
	Name        string
	GenericArgs []GenericArgType
}

func cloneArgs(args []GenericArgType) []GenericArgType {
	if len(args) == 0 {
		return nil
	}
	return slices.Clone(args)
}

// TypeParams builds an argument list of n type parameters.
func TypeParams(n int) []GenericArgType {
	if n <= 0 {
		return nil
	}
	out := make([]GenericArgType, n)
	for i := range out {
		out[i] = ArgType
	}
	return out
}
