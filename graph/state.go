// Package graph implements the interned expression/type algebra and the
// declaration graph that the dependency resolver schedules for emission.
package graph

// State is the total order a declaration's emission progresses through:
// Unresolved < Partial < Complete. Partial means a forward declaration has
// been emitted; Complete means the full body is known.
type State int

const (
	StateUnresolved State = iota
	StatePartial
	StateComplete
)

func (s State) String() string {
	switch s {
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	default:
		return "unresolved"
	}
}

// Visibility is a class member's access level.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// Qualifier is a bitmask composed over a type expression. Composition is
// idempotent under interning: re-applying a qualifier that is already set
// yields the same interned instance.
type Qualifier int

const (
	QualNone Qualifier = 0
	Const    Qualifier = 1 << iota
	Pointer
	Reference
	RValueRef
	Variadic
)

func (q Qualifier) Has(bit Qualifier) bool { return q&bit != 0 }

// ReasonKind names the role a dependency edge plays, used both to drive
// resolver scheduling and to format cycle diagnostics.
type ReasonKind int

const (
	ReasonBaseClass ReasonKind = iota
	ReasonType
	ReasonReturnType
	ReasonParameterType
	ReasonAliasType
	ReasonConstraint
	ReasonInnerClass
	ReasonMember
)

func (r ReasonKind) String() string {
	switch r {
	case ReasonBaseClass:
		return "base class"
	case ReasonType:
		return "type"
	case ReasonReturnType:
		return "return type"
	case ReasonParameterType:
		return "parameter type"
	case ReasonAliasType:
		return "alias type"
	case ReasonConstraint:
		return "constraint"
	case ReasonInnerClass:
		return "inner class"
	case ReasonMember:
		return "member"
	default:
		return "unknown"
	}
}
