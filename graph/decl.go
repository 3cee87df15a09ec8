package graph

import (
	"strconv"
	"strings"
)

// ReferenceData is the causal record of the first place a declaration was
// referenced from, populated by the reference analyzer and consumed by the
// cycle-diagnostic formatter. It is set at most once
// per declaration.
type ReferenceData struct {
	ReferencedBy Declaration
	ReferencedIn Declaration
	Reason       ReasonKind
}

// Declaration is the tagged-sum interface every AST node implements:
// Namespace is the exception (a path element, not an AST node); Class,
// Function, Variable, and TypeAlias all satisfy this.
type Declaration interface {
	ID() int
	Name() string
	EscapedName() string

	// Namespace is the declaration's enclosing namespace, or nil when it is
	// a member of a class (use ParentDecl for that case).
	Namespace() *Namespace

	// ParentDecl is the enclosing class declaration for a member, or nil
	// for a top-level declaration.
	ParentDecl() Declaration

	// MaxState is the highest state this declaration variant can ever
	// reach: Complete for classes, Partial for everything else.
	MaxState() State

	// Children returns this declaration's direct members/params in
	// declaration order (empty for leaves).
	Children() []Declaration

	// DirectDependencies returns what this declaration needs satisfied to
	// be emitted at the given state.
	DirectDependencies(state State) []Dependency

	// StructuralKey identifies the declaration's shape (kind, name,
	// types) independent of its id, for the duplicate-removal pass.
	StructuralKey() string

	OriginFile() string

	ReferenceData() *ReferenceData
	SetReferenceData(*ReferenceData)
}

// declBase carries the fields every declaration variant shares.
type declBase struct {
	id          int
	name        string
	escapedName string
	namespace   *Namespace
	parentDecl  Declaration
	originFile  string
	refData     *ReferenceData
}

func (d *declBase) ID() int                  { return d.id }
func (d *declBase) Name() string              { return d.name }
func (d *declBase) EscapedName() string {
	if d.escapedName != "" {
		return d.escapedName
	}
	return d.name
}
func (d *declBase) Namespace() *Namespace          { return d.namespace }
func (d *declBase) ParentDecl() Declaration        { return d.parentDecl }
func (d *declBase) OriginFile() string             { return d.originFile }
func (d *declBase) ReferenceData() *ReferenceData  { return d.refData }
func (d *declBase) SetReferenceData(r *ReferenceData) {
	if d.refData == nil {
		d.refData = r
	}
}

// idAllocator hands out stable, monotonically increasing identities. A
// Builder owns exactly one.
type idAllocator struct{ next int }

func (a *idAllocator) next_() int {
	a.next++
	return a.next
}

// Base (Type, Visibility, virtual-flag) tuple for a class's inheritance list.
type Base struct {
	Type       Expr
	Visibility Visibility
	Virtual    bool
}

// Member pairs a declaration with the visibility it is declared under.
type Member struct {
	Decl       Declaration
	Visibility Visibility
}

// TemplateParam is one entry of a template parameter list.
type TemplateParam struct {
	Name     string
	Variadic bool
	Default  Expr // nil if no default
}

// Template is a mix-in embedded by Class/Function/TypeAlias declarations
// that are generic.
type Template struct {
	Params  []TemplateParam
	Basic   Declaration // the paired non-generic variant, if any
}

func (t *Template) IsGeneric() bool { return len(t.Params) > 0 }

// ClassDecl is a class/struct/interface declaration.
type ClassDecl struct {
	declBase
	Template

	Members     []Member
	Bases       []Base
	Constraints []Expr
	Using       map[string]bool // base-member using-declaration names
}

func (c *ClassDecl) MaxState() State { return StateComplete }

func (c *ClassDecl) StructuralKey() string {
	return "class:" + c.name + ":" + strconv.Itoa(len(c.Template.Params))
}

func (c *ClassDecl) Children() []Declaration {
	out := make([]Declaration, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Decl
	}
	return out
}

// DirectDependencies returns nothing at Partial (a forward declaration
// needs no prior emissions) and, at Complete, the base-class dependencies
// (escalated to Complete on the base's declared head, since a base
// subobject must be fully known), the constraint-expression dependencies,
// and the hoisted dependencies of every member the class body will
// contain. Excluded edges: anything targeting a descendant of c, D->D
// Partial self-edges, and base self-edges (the CRTP pattern, where the
// class names itself as its own template argument).
func (c *ClassDecl) DirectDependencies(state State) []Dependency {
	if state != StateComplete {
		return nil
	}
	var deps []Dependency
	for _, b := range c.Bases {
		for _, d := range BaseDependencies(b.Type) {
			if d.Declaration == Declaration(c) {
				continue
			}
			deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonBaseClass})
		}
	}
	for _, cons := range c.Constraints {
		for _, d := range cons.Dependencies() {
			if d.Declaration == Declaration(c) {
				continue
			}
			deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonConstraint})
		}
	}
	isDescendant := func(target Declaration) bool {
		for cur := target.ParentDecl(); cur != nil; cur = cur.ParentDecl() {
			if cur == Declaration(c) {
				return true
			}
		}
		return false
	}
	for _, m := range c.Members {
		var memberDeps []Dependency
		switch md := m.Decl.(type) {
		case *ClassDecl:
			// An unmarked inner class only contributes a forward
			// declaration to the body, which needs nothing; a marked one
			// is expanded in full, so its Complete dependencies hoist.
			if !IsReferenced(md) {
				continue
			}
			memberDeps = md.DirectDependencies(StateComplete)
		default:
			memberDeps = m.Decl.DirectDependencies(StatePartial)
		}
		for _, d := range memberDeps {
			if d.Declaration == Declaration(c) && d.RequiredState == StatePartial {
				continue // D -> D Partial self-edge, redundant
			}
			if isDescendant(d.Declaration) {
				continue
			}
			deps = append(deps, d)
		}
	}
	return deps
}

// Param is a function parameter: type, name, and an optional default-value
// literal string (kept as text because the source IDL's default-value
// expressions are opaque to this backend).
type Param struct {
	Type    Expr
	Name    string
	Default string // "" means no default
}

// Init is one constructor initializer-list entry: name(value).
type Init struct {
	Name  string
	Value string
}

// FuncFlags is a bitmask of function modifiers.
type FuncFlags int

const (
	FuncStatic FuncFlags = 1 << iota
	FuncConst
	FuncExplicit
	FuncInline
	FuncNoexcept
	FuncExtern
)

func (f FuncFlags) Has(bit FuncFlags) bool { return f&bit != 0 }

// FunctionDecl models a free function, method, constructor, or index
// signature.
type FunctionDecl struct {
	declBase
	Template

	Return        Expr // nil means void/constructor
	Params        []Param
	Inits         []Init
	ExtraDeps     []Dependency
	Body          string // "" means declaration only (no body emitted)
	Flags         FuncFlags
	InterfaceName string
}

func (f *FunctionDecl) MaxState() State          { return StatePartial }
func (f *FunctionDecl) Children() []Declaration  { return nil }

func (f *FunctionDecl) StructuralKey() string {
	var sb strings.Builder
	sb.WriteString("func:")
	sb.WriteString(f.name)
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(int(f.Flags)))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(len(f.Template.Params)))
	sb.WriteString(":")
	if f.Return != nil {
		sb.WriteString(f.Return.Key())
	}
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(p.Type.Key())
	}
	sb.WriteString(")")
	return sb.String()
}

func (f *FunctionDecl) DirectDependencies(_ State) []Dependency {
	var deps []Dependency
	if f.Return != nil {
		for _, d := range f.Return.Dependencies() {
			deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonReturnType})
		}
	}
	for _, p := range f.Params {
		for _, d := range p.Type.Dependencies() {
			deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonParameterType})
		}
	}
	deps = append(deps, f.ExtraDeps...)
	return deps
}

// VariableDecl models a (possibly static/extern) variable.
type VariableDecl struct {
	declBase
	Type  Expr
	Flags FuncFlags // Static/Extern apply
}

func (v *VariableDecl) MaxState() State         { return StatePartial }
func (v *VariableDecl) Children() []Declaration { return nil }

func (v *VariableDecl) StructuralKey() string {
	key := "var:" + v.name + ":" + strconv.Itoa(int(v.Flags)) + ":"
	if v.Type != nil {
		key += v.Type.Key()
	}
	return key
}

func (v *VariableDecl) DirectDependencies(_ State) []Dependency {
	var deps []Dependency
	for _, d := range v.Type.Dependencies() {
		deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonType})
	}
	return deps
}

// TypeAliasDecl models a `using Name = Target;` declaration.
type TypeAliasDecl struct {
	declBase
	Template

	Target Expr
}

func (a *TypeAliasDecl) MaxState() State         { return StatePartial }
func (a *TypeAliasDecl) Children() []Declaration { return nil }

func (a *TypeAliasDecl) StructuralKey() string {
	key := "alias:" + a.name + ":" + strconv.Itoa(len(a.Template.Params)) + ":"
	if a.Target != nil {
		key += a.Target.Key()
	}
	return key
}

func (a *TypeAliasDecl) DirectDependencies(_ State) []Dependency {
	var deps []Dependency
	for _, d := range a.Target.Dependencies() {
		deps = append(deps, Dependency{RequiredState: d.RequiredState, Declaration: d.Declaration, Reason: ReasonAliasType})
	}
	return deps
}
