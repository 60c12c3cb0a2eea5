package semantic

import "strings"

// Kind is the closed set of resolved type shapes the analyser reasons
// about once ast.Type nodes have been looked up against the class/
// function registry.
type Kind int

const (
	KInt Kind = iota
	KLong
	KFloat
	KBit
	KChar
	KString
	KBoolean
	KQubit
	KVoid
	KNull
	KClass
	KArray
	KUnknown // produced after a reported error, to keep checking going locally
)

func (k Kind) String() string {
	switch k {
	case KInt:
		return "int"
	case KLong:
		return "long"
	case KFloat:
		return "float"
	case KBit:
		return "bit"
	case KChar:
		return "char"
	case KString:
		return "string"
	case KBoolean:
		return "boolean"
	case KQubit:
		return "qubit"
	case KVoid:
		return "void"
	case KNull:
		return "null"
	case KClass:
		return "class"
	case KArray:
		return "array"
	default:
		return "<unknown>"
	}
}

// Type is a resolved type: a scalar kind, or (for KClass/KArray) the
// extra shape that kind needs.
type Type struct {
	Kind Kind

	// KClass
	Class    *ClassInfo
	TypeArgs []*Type

	// KArray
	Elem         *Type
	HasFixedSize bool
	FixedSize    int
}

func primitive(k Kind) *Type { return &Type{Kind: k} }

var (
	tInt     = primitive(KInt)
	tLong    = primitive(KLong)
	tFloat   = primitive(KFloat)
	tBit     = primitive(KBit)
	tChar    = primitive(KChar)
	tString  = primitive(KString)
	tBoolean = primitive(KBoolean)
	tQubit   = primitive(KQubit)
	tVoid    = primitive(KVoid)
	tNull    = primitive(KNull)
	tUnknown = primitive(KUnknown)
)

func (t *Type) String() string {
	switch t.Kind {
	case KClass:
		if len(t.TypeArgs) == 0 {
			return t.Class.Name
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return t.Class.Name + "<" + strings.Join(parts, ", ") + ">"
	case KArray:
		return t.Elem.String() + "[]"
	default:
		return t.Kind.String()
	}
}

func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case KInt, KLong, KFloat, KBit:
		return true
	default:
		return false
	}
}

// IsIntegral reports whether t is one of the whole-number kinds %
// requires; unlike IsNumeric it excludes float.
func (t *Type) IsIntegral() bool {
	switch t.Kind {
	case KInt, KLong, KBit:
		return true
	default:
		return false
	}
}

// sameType is structural equality: same kind, and for arrays/classes the
// same element/class-and-type-arguments shape.
func sameType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KArray:
		return sameType(a.Elem, b.Elem)
	case KClass:
		if a.Class != b.Class {
			return false
		}
		if len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !sameType(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// widensTo is the implicit numeric-widening lattice:
// bit -> int -> long -> float. No other implicit numeric conversions
// exist (int and char convert only via an explicit cast).
var widensTo = map[Kind][]Kind{
	KBit:  {KInt, KLong, KFloat},
	KInt:  {KLong, KFloat},
	KLong: {KFloat},
}

// assignable reports whether a value of type from may be assigned,
// passed, or returned where a value of type to is expected.
func assignable(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Kind == KUnknown || to.Kind == KUnknown {
		return true // already reported; don't cascade
	}
	if sameType(from, to) {
		return true
	}
	if from.Kind == KNull && to.Kind == KClass {
		return true
	}
	for _, k := range widensTo[from.Kind] {
		if k == to.Kind {
			return true
		}
	}
	if from.Kind == KClass && to.Kind == KClass {
		if to.Class.IsRoot {
			return true
		}
		for c := from.Class; c != nil; c = c.Base {
			if c == to.Class {
				return true
			}
		}
	}
	return false
}

// castAllowed is the explicit-cast lattice: any numeric pair
// among {bit,int,long,float}, plus int<->char. Casts to char, void, or
// class types are never syntactically reachable (the parser restricts
// cast targets to the four primitive keywords), but the rule is kept
// symmetric here rather than special-cased for one direction.
func castAllowed(from, to Kind) bool {
	numeric := map[Kind]bool{KBit: true, KInt: true, KLong: true, KFloat: true}
	if numeric[from] && numeric[to] {
		return true
	}
	if (from == KChar && to == KInt) || (from == KInt && to == KChar) {
		return true
	}
	return false
}
