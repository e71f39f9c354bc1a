package types

import "fmt"

// Kind enumerates the built-in type constructors plus nominal ADTs.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAdt
	KindScalar
	KindNonZero
	KindSlice
	KindRef
	KindPtr
	KindNever
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAdt:
		return "adt"
	case KindScalar:
		return "scalar"
	case KindNonZero:
		return "nonzero"
	case KindSlice:
		return "slice"
	case KindRef:
		return "ref"
	case KindPtr:
		return "ptr"
	case KindNever:
		return "never"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny  Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	WidthSize Width = 0xff // isize/usize
)

// ScalarKind enumerates scalar families.
type ScalarKind uint8

const (
	ScalarInvalid ScalarKind = iota
	ScalarBool
	ScalarChar
	ScalarUChar
	ScalarInt
	ScalarUInt
	ScalarFloat
)

// Scalar is a primitive leaf type. Width is only meaningful for numeric kinds.
type Scalar struct {
	Kind  ScalarKind
	Width Width
}

// Canonical scalars.
var (
	Bool  = Scalar{Kind: ScalarBool}
	Char  = Scalar{Kind: ScalarChar}
	UChar = Scalar{Kind: ScalarUChar}
	I8    = Scalar{Kind: ScalarInt, Width: Width8}
	I16   = Scalar{Kind: ScalarInt, Width: Width16}
	I32   = Scalar{Kind: ScalarInt, Width: Width32}
	I64   = Scalar{Kind: ScalarInt, Width: Width64}
	ISize = Scalar{Kind: ScalarInt, Width: WidthSize}
	U8    = Scalar{Kind: ScalarUInt, Width: Width8}
	U16   = Scalar{Kind: ScalarUInt, Width: Width16}
	U32   = Scalar{Kind: ScalarUInt, Width: Width32}
	U64   = Scalar{Kind: ScalarUInt, Width: Width64}
	USize = Scalar{Kind: ScalarUInt, Width: WidthSize}
	F16   = Scalar{Kind: ScalarFloat, Width: Width16}
	F32   = Scalar{Kind: ScalarFloat, Width: Width32}
	F64   = Scalar{Kind: ScalarFloat, Width: Width64}
)

var scalarNames = map[string]Scalar{
	"bool": Bool, "char": Char, "uchar": UChar,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "isize": ISize,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "usize": USize,
	"f16": F16, "f32": F32, "f64": F64,
}

// ParseScalar resolves a canonical scalar name such as "i32" or "usize".
func ParseScalar(name string) (Scalar, bool) {
	s, ok := scalarNames[name]
	return s, ok
}

// Valid reports whether s is one of the canonical scalars.
func (s Scalar) Valid() bool {
	_, ok := scalarNames[s.String()]
	return ok
}

func (s Scalar) String() string {
	switch s.Kind {
	case ScalarBool:
		return "bool"
	case ScalarChar:
		return "char"
	case ScalarUChar:
		return "uchar"
	case ScalarInt:
		return "i" + s.Width.suffix()
	case ScalarUInt:
		return "u" + s.Width.suffix()
	case ScalarFloat:
		return "f" + s.Width.suffix()
	default:
		return fmt.Sprintf("Scalar(%d)", s.Kind)
	}
}

func (w Width) suffix() string {
	if w == WidthSize {
		return "size"
	}
	return fmt.Sprintf("%d", w)
}

// RefQual qualifies a reference. RefPlain is the unqualified `&T`.
type RefQual uint8

const (
	RefPlain RefQual = iota
	RefMut
	RefDrop
)

// Prefix renders the qualifier as it appears after `&`.
func (q RefQual) Prefix() string {
	switch q {
	case RefMut:
		return "mut "
	case RefDrop:
		return "drop "
	default:
		return ""
	}
}

// PtrQual qualifies a raw pointer. PtrPlain is the unqualified `*T`.
type PtrQual uint8

const (
	PtrPlain PtrQual = iota
	PtrMut
)

// Prefix renders the qualifier as it appears after `*`.
func (q PtrQual) Prefix() string {
	if q == PtrMut {
		return "mut "
	}
	return ""
}

// TypeID names a type constructor without its arguments. Fields that do not
// apply to Kind are always zero, so == is structural identity.
type TypeID struct {
	Kind    Kind
	Adt     AdtID
	Scalar  Scalar
	RefQual RefQual
	PtrQual PtrQual
}

// Canonical reports whether t is exactly what the Make* helper for its Kind
// would produce: fields that do not apply are zero and qualifiers are in
// range. Only canonical ids may enter a validated pattern.
func (t TypeID) Canonical() bool {
	switch t.Kind {
	case KindAdt:
		return t.Adt != NoAdtID && t == MakeAdt(t.Adt)
	case KindScalar:
		return t.Scalar.Valid() && t == MakeScalar(t.Scalar)
	case KindRef:
		return t.RefQual <= RefDrop && t == MakeRef(t.RefQual)
	case KindPtr:
		return t.PtrQual <= PtrMut && t == MakePtr(t.PtrQual)
	case KindNonZero, KindSlice, KindNever:
		return t == TypeID{Kind: t.Kind}
	default:
		return false
	}
}

// Descriptor helpers ---------------------------------------------------------

// MakeAdt names a nominal user-defined type.
func MakeAdt(id AdtID) TypeID { return TypeID{Kind: KindAdt, Adt: id} }

// MakeScalar names a primitive scalar.
func MakeScalar(s Scalar) TypeID { return TypeID{Kind: KindScalar, Scalar: s} }

// MakeNonZero names the NonZero<T> wrapper.
func MakeNonZero() TypeID { return TypeID{Kind: KindNonZero} }

// MakeSlice names [T].
func MakeSlice() TypeID { return TypeID{Kind: KindSlice} }

// MakeRef names &T, &mut T or &drop T.
func MakeRef(q RefQual) TypeID { return TypeID{Kind: KindRef, RefQual: q} }

// MakePtr names *T or *mut T.
func MakePtr(q PtrQual) TypeID { return TypeID{Kind: KindPtr, PtrQual: q} }

// MakeNever names !.
func MakeNever() TypeID { return TypeID{Kind: KindNever} }

var unaryArgs = []GenericArgType{ArgType}

// GenericArgTypes returns the fixed argument kinds of a built-in constructor.
// For ADTs it returns ok == false together with the id to look up.
func (t TypeID) GenericArgTypes() (args []GenericArgType, adt AdtID, ok bool) {
	switch t.Kind {
	case KindAdt:
		return nil, t.Adt, false
	case KindNonZero, KindSlice, KindRef, KindPtr:
		return unaryArgs, NoAdtID, true
	case KindScalar, KindNever:
		return nil, NoAdtID, true
	default:
		panic(fmt.Errorf("types: arity of invalid type id %v", t.Kind))
	}
}

func (t TypeID) String() string {
	switch t.Kind {
	case KindAdt:
		return fmt.Sprintf("adt#%d", t.Adt)
	case KindScalar:
		return t.Scalar.String()
	case KindNonZero:
		return "NonZero"
	case KindSlice:
		return "[]"
	case KindRef:
		return "&" + t.RefQual.Prefix()
	case KindPtr:
		return "*" + t.PtrQual.Prefix()
	case KindNever:
		return "!"
	default:
		return t.Kind.String()
	}
}
