// Package frontend defines the seam between an external source-IDL reader
// and the declaration graph. Everything
// upstream of this package — parsing the source IDL, resolving its own
// imports, deciding what a "module" is — is the frontend's problem; this
// package only fixes the shape of what crosses the boundary.
package frontend

import "github.com/oxhq/cppgen/graph"

// Classification names which declaration kind a top-level name ingests as
//.
type Classification int

const (
	ClassKind Classification = iota
	FunctionKind
	VariableKind
	TypeAliasKind
	NamespaceKind
)

func (c Classification) String() string {
	switch c {
	case FunctionKind:
		return "function"
	case VariableKind:
		return "variable"
	case TypeAliasKind:
		return "type alias"
	case NamespaceKind:
		return "namespace"
	default:
		return "class"
	}
}

// Symbol is one top-level name a SymbolSource contributes. OriginFile is
// opaque to the core; it is only ever compared for equality against the
// library's in-scope set.
type Symbol struct {
	Name           string
	Classification Classification
	OriginFile     string
}

// SymbolSource is the minimal interface the core needs from whatever
// enumerates a run's top-level names: one ingestion pass, not a full
// parser contract.
type SymbolSource interface {
	// Symbols returns every top-level name this source contributes, in
	// ingestion order.
	Symbols() []Symbol
}

// TypeBuilder is the minimal interface the core needs from whatever
// representation a frontend uses for type references: turn it into an
// interned Expr via the algebra.
type TypeBuilder interface {
	BuildType(alg *graph.Algebra) graph.Expr
}

// ClassSource supplies the per-class detail the core cannot infer from a
// bare Symbol: bases, members, constraints, and template parameters
//.
type ClassSource interface {
	Bases() []BaseSpec
	Members() []MemberSpec
	Constraints(alg *graph.Algebra) []graph.Expr
	TemplateParams(alg *graph.Algebra) []graph.TemplateParam
}

// BaseSpec is one entry of a class's base-type list.
type BaseSpec struct {
	Type       TypeBuilder
	Visibility graph.Visibility
}

// MemberSpec names one member a ClassSource contributes and the
// visibility it was declared under; Classification picks which of
// FunctionSource/VariableSource/AliasSource/ClassSource the builder should
// expect back from Source.
type MemberSpec struct {
	Name           string
	Visibility     graph.Visibility
	Classification Classification
	OriginFile     string
	Source         any // FunctionSource, VariableSource, AliasSource, or ClassSource
}

// FunctionSource supplies the per-function detail a Symbol classified as
// FunctionKind needs.
type FunctionSource interface {
	Return() TypeBuilder // nil means void/constructor
	Params() []ParamSpec
	Inits() []graph.Init
	Flags() graph.FuncFlags
	Body() string
	InterfaceName() string
	TemplateParams(alg *graph.Algebra) []graph.TemplateParam
}

// ParamSpec is one function parameter.
type ParamSpec struct {
	Type    TypeBuilder
	Name    string
	Default string
}

// VariableSource supplies the per-variable detail a Symbol classified as
// VariableKind needs.
type VariableSource interface {
	Type() TypeBuilder
	Flags() graph.FuncFlags
}

// AliasSource supplies the per-alias detail a Symbol classified as
// TypeAliasKind needs.
type AliasSource interface {
	Target() TypeBuilder
	TemplateParams(alg *graph.Algebra) []graph.TemplateParam
}
