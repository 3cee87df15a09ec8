package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Dependency records that emitting something requires Declaration to have
// reached RequiredState first, and names the Reason the edge exists so a
// cycle can be explained in terms a reader recognizes.
type Dependency struct {
	RequiredState State
	Declaration   Declaration
	Reason        ReasonKind
}

// Expr is the sum type over the expression/type algebra. All
// implementations are immutable once constructed and obtained exclusively
// through an *Algebra, which interns them by structural key.
type Expr interface {
	// Key is the structural key used for interning; two expressions with
	// equal keys are, by construction, the same instance.
	Key() string

	// Write renders the canonical textual form of the expression relative
	// to ns (used only to shorten declared-type paths).
	Write(ns *Namespace, fullyQualified bool) string

	// Dependencies returns what must be satisfied, and at which state,
	// before this expression can be written.
	Dependencies() []Dependency

	// ReferencedTypes returns the class declarations this expression
	// mentions directly (used by getReferencedTypes()).
	ReferencedTypes() []*ClassDecl
}

// ---- Literal name ----------------------------------------------------

type LiteralName struct{ name string }

func (e *LiteralName) Key() string                                   { return "name:" + e.name }
func (e *LiteralName) Write(_ *Namespace, _ bool) string              { return e.name }
func (e *LiteralName) Dependencies() []Dependency                    { return nil }
func (e *LiteralName) ReferencedTypes() []*ClassDecl                  { return nil }

// ---- Declared type -----------------------------------------------------

// DeclaredType references a class declaration directly; writing it resolves
// the shortest path from the current namespace to the class (or the fully
// qualified path when requested).
type DeclaredType struct{ decl *ClassDecl }

func (e *DeclaredType) Key() string { return "decl:" + strconv.Itoa(e.decl.ID()) }

func (e *DeclaredType) Write(ns *Namespace, fullyQualified bool) string {
	name := e.decl.EscapedName()
	outer := Declaration(e.decl)
	for outer.ParentDecl() != nil {
		outer = outer.ParentDecl()
		name = outer.EscapedName() + "::" + name
	}
	return WritePath(outer.Namespace(), name, ns, fullyQualified)
}

func (e *DeclaredType) Dependencies() []Dependency {
	return []Dependency{{RequiredState: StatePartial, Declaration: e.decl, Reason: ReasonType}}
}

func (e *DeclaredType) ReferencedTypes() []*ClassDecl { return []*ClassDecl{e.decl} }

// Decl returns the referenced class declaration.
func (e *DeclaredType) Decl() *ClassDecl { return e.decl }

// ---- Qualified ----------------------------------------------------------

// Qualified composes const/pointer/reference/rvalue-reference/variadic
// bits over an inner expression. InnerState optionally overrides the
// Partial requirement the pointer/reference bits would otherwise impose,
// forcing Complete instead (used for template parameters of constrained
// classes).
type Qualified struct {
	inner      Expr
	bits       Qualifier
	innerState State // StateUnresolved means "no override"
}

func (e *Qualified) Key() string {
	return fmt.Sprintf("qual:%d:%d:%s", e.bits, e.innerState, e.inner.Key())
}

func (e *Qualified) Write(ns *Namespace, fullyQualified bool) string {
	var sb strings.Builder
	if e.bits.Has(Const) {
		sb.WriteString("const ")
	}
	sb.WriteString(e.inner.Write(ns, fullyQualified))
	if e.bits.Has(Pointer) {
		sb.WriteString("*")
	}
	if e.bits.Has(RValueRef) {
		sb.WriteString("&&")
	} else if e.bits.Has(Reference) {
		sb.WriteString("&")
	}
	if e.bits.Has(Variadic) {
		sb.WriteString("...")
	}
	return sb.String()
}

func (e *Qualified) Dependencies() []Dependency {
	inner := e.inner.Dependencies()
	if !(e.bits.Has(Pointer) || e.bits.Has(Reference) || e.bits.Has(RValueRef)) {
		return inner
	}
	state := StatePartial
	if e.innerState == StateComplete {
		state = StateComplete
	}
	out := make([]Dependency, len(inner))
	for i, d := range inner {
		out[i] = Dependency{RequiredState: state, Declaration: d.Declaration, Reason: d.Reason}
	}
	return out
}

func (e *Qualified) ReferencedTypes() []*ClassDecl { return e.inner.ReferencedTypes() }

// Bits returns the qualifier bitmask carried by this wrapper.
func (e *Qualified) Bits() Qualifier { return e.bits }

// Inner returns the wrapped expression.
func (e *Qualified) Inner() Expr { return e.inner }

// ---- Member type ----------------------------------------------------------

// MemberType is `inner::member`; referencing a nested member requires the
// enclosing type to be Complete.
type MemberType struct {
	inner  Expr
	member string
}

func (e *MemberType) Key() string { return "member:" + e.inner.Key() + ":" + e.member }

func (e *MemberType) Write(ns *Namespace, fullyQualified bool) string {
	return e.inner.Write(ns, fullyQualified) + "::" + e.member
}

func (e *MemberType) Dependencies() []Dependency {
	inner := e.inner.Dependencies()
	out := make([]Dependency, len(inner))
	for i, d := range inner {
		out[i] = Dependency{RequiredState: StateComplete, Declaration: d.Declaration, Reason: d.Reason}
	}
	return out
}

func (e *MemberType) ReferencedTypes() []*ClassDecl { return e.inner.ReferencedTypes() }

// ---- Template application ---------------------------------------------

// TemplateApp is `head<args...>`. When head names a class declaring
// constraint expressions, every argument must reach Complete state so the
// constraints can be checked at instantiation.
type TemplateApp struct {
	head Expr
	args []Expr
}

func (e *TemplateApp) Key() string {
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		parts[i] = a.Key()
	}
	return "tmpl:" + e.head.Key() + "<" + strings.Join(parts, ",") + ">"
}

func (e *TemplateApp) Write(ns *Namespace, fullyQualified bool) string {
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		parts[i] = a.Write(ns, fullyQualified)
	}
	return e.head.Write(ns, fullyQualified) + "<" + strings.Join(parts, ", ") + ">"
}

// headConstrained is evaluated lazily rather than at construction time:
// the frontend may fill in a class's constraint list after type
// expressions referencing it have already been interned.
func (e *TemplateApp) headConstrained() bool {
	dt, ok := e.head.(*DeclaredType)
	return ok && len(dt.decl.Constraints) > 0
}

func (e *TemplateApp) argDependencies() []Dependency {
	var deps []Dependency
	constrained := e.headConstrained()
	for _, a := range e.args {
		for _, d := range a.Dependencies() {
			state := d.RequiredState
			if constrained && state < StateComplete {
				state = StateComplete
			}
			deps = append(deps, Dependency{RequiredState: state, Declaration: d.Declaration, Reason: d.Reason})
		}
	}
	return deps
}

func (e *TemplateApp) Dependencies() []Dependency {
	var deps []Dependency
	for _, d := range e.head.Dependencies() {
		deps = append(deps, Dependency{RequiredState: StatePartial, Declaration: d.Declaration, Reason: d.Reason})
	}
	return append(deps, e.argDependencies()...)
}

func (e *TemplateApp) ReferencedTypes() []*ClassDecl {
	out := e.head.ReferencedTypes()
	for _, a := range e.args {
		out = append(out, a.ReferencedTypes()...)
	}
	return out
}

// Head returns the template's unqualified head expression.
func (e *TemplateApp) Head() Expr { return e.head }

// Args returns the ordered template arguments.
func (e *TemplateApp) Args() []Expr { return e.args }

// ---- C-style function type ---------------------------------------------

// FuncType is a bare C-style function type (return(params...)); all of its
// constituents require only Partial state. It is normally wrapped by
// FunctionOf into a _Function<...> template application.
type FuncType struct {
	ret    Expr // nil means void
	params []Expr
}

func (e *FuncType) Key() string {
	retKey := "void"
	if e.ret != nil {
		retKey = e.ret.Key()
	}
	parts := make([]string, len(e.params))
	for i, p := range e.params {
		parts[i] = p.Key()
	}
	return "func:" + retKey + "(" + strings.Join(parts, ",") + ")"
}

func (e *FuncType) Write(ns *Namespace, fullyQualified bool) string {
	ret := "void"
	if e.ret != nil {
		ret = e.ret.Write(ns, fullyQualified)
	}
	parts := make([]string, len(e.params))
	for i, p := range e.params {
		parts[i] = p.Write(ns, fullyQualified)
	}
	return ret + "(" + strings.Join(parts, ", ") + ")"
}

func (e *FuncType) Dependencies() []Dependency {
	var deps []Dependency
	if e.ret != nil {
		for _, d := range e.ret.Dependencies() {
			deps = append(deps, Dependency{RequiredState: StatePartial, Declaration: d.Declaration, Reason: d.Reason})
		}
	}
	for _, p := range e.params {
		for _, d := range p.Dependencies() {
			deps = append(deps, Dependency{RequiredState: StatePartial, Declaration: d.Declaration, Reason: d.Reason})
		}
	}
	return deps
}

func (e *FuncType) ReferencedTypes() []*ClassDecl {
	var out []*ClassDecl
	if e.ret != nil {
		out = append(out, e.ret.ReferencedTypes()...)
	}
	for _, p := range e.params {
		out = append(out, p.ReferencedTypes()...)
	}
	return out
}

// Return returns the function's return type, or nil for void.
func (e *FuncType) Return() Expr { return e.ret }

// Params returns the ordered parameter types.
func (e *FuncType) Params() []Expr { return e.params }

// ---- Compound boolean expression ---------------------------------------

type CompoundOp int

const (
	OpAnd CompoundOp = iota
	OpOr
)

func (o CompoundOp) String() string {
	if o == OpOr {
		return "||"
	}
	return "&&"
}

// Compound joins boolean-valued constraint expressions with && or ||.
type Compound struct {
	op       CompoundOp
	children []Expr
}

func (e *Compound) Key() string {
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.Key()
	}
	return fmt.Sprintf("compound:%d:%s", e.op, strings.Join(parts, ","))
}

func (e *Compound) Write(ns *Namespace, fullyQualified bool) string {
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.Write(ns, fullyQualified)
	}
	return strings.Join(parts, " "+e.op.String()+" ")
}

func (e *Compound) Dependencies() []Dependency {
	var deps []Dependency
	for _, c := range e.children {
		for _, d := range c.Dependencies() {
			deps = append(deps, Dependency{RequiredState: StatePartial, Declaration: d.Declaration, Reason: d.Reason})
		}
	}
	return deps
}

func (e *Compound) ReferencedTypes() []*ClassDecl {
	var out []*ClassDecl
	for _, c := range e.children {
		out = append(out, c.ReferencedTypes()...)
	}
	return out
}

func (e *Compound) Op() CompoundOp   { return e.op }
func (e *Compound) Children() []Expr { return e.children }

// ---- Boolean literal ------------------------------------------------------

type BoolLiteral struct{ value bool }

func (e *BoolLiteral) Key() string {
	if e.value {
		return "bool:true"
	}
	return "bool:false"
}

func (e *BoolLiteral) Write(_ *Namespace, _ bool) string {
	if e.value {
		return "true"
	}
	return "false"
}

func (e *BoolLiteral) Dependencies() []Dependency   { return nil }
func (e *BoolLiteral) ReferencedTypes() []*ClassDecl { return nil }
func (e *BoolLiteral) Value() bool                  { return e.value }

// BaseDependencies returns the dependencies of t used as a base-class
// type: the base subobject must be known in full when the derived class
// is completed, so a declared head escalates to Complete. Pointer and
// reference wrappers still demote to Partial as usual.
func BaseDependencies(t Expr) []Dependency {
	switch e := t.(type) {
	case *DeclaredType:
		return []Dependency{{RequiredState: StateComplete, Declaration: e.decl, Reason: ReasonBaseClass}}
	case *Qualified:
		if e.bits.Has(Pointer) || e.bits.Has(Reference) || e.bits.Has(RValueRef) {
			return e.Dependencies()
		}
		return BaseDependencies(e.inner)
	case *TemplateApp:
		return append(BaseDependencies(e.head), e.argDependencies()...)
	default:
		return t.Dependencies()
	}
}
