package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppgen/graph"
)

// TestLoadModulesWiresNestedClassAsMember is a regression test: a nested
// class is registered by its qualified path ("Outer::Inner"), and must be
// looked back up by that same qualified path when wiring it in as a member
// of its enclosing class, not by its bare name.
func TestLoadModulesWiresNestedClassAsMember(t *testing.T) {
	outer := &JSONClass{
		Name: "Outer",
		Members: []JSONMember{
			{Name: "Inner", Classification: "class", Class: &JSONClass{Name: "Inner"}},
		},
	}
	mod := &JSONModule{OriginFile: "outer.h", Classes: []*JSONClass{outer}}

	loader := NewJSONLoader(graph.NewBuilder())
	decls := loader.LoadModules([]*JSONModule{mod})

	require.Len(t, decls, 1)
	outerDecl, ok := decls[0].(*graph.ClassDecl)
	require.True(t, ok)
	require.Len(t, outerDecl.Members, 1, "the nested class member must survive the two-phase load")
	assert.Equal(t, "Inner", outerDecl.Members[0].Decl.Name())

	innerByPath, ok := loader.reg.Lookup("Outer::Inner")
	require.True(t, ok)
	assert.Same(t, outerDecl.Members[0].Decl, graph.Declaration(innerByPath))
}

// TestLoadModulesWiresDoublyNestedClass checks the same wiring two levels
// deep, so the qualPrefix threading survives recursive nesting.
func TestLoadModulesWiresDoublyNestedClass(t *testing.T) {
	innermost := &JSONClass{Name: "Innermost"}
	middle := &JSONClass{
		Name: "Middle",
		Members: []JSONMember{
			{Name: "Innermost", Classification: "class", Class: innermost},
		},
	}
	outer := &JSONClass{
		Name: "Outer",
		Members: []JSONMember{
			{Name: "Middle", Classification: "class", Class: middle},
		},
	}
	mod := &JSONModule{OriginFile: "outer.h", Classes: []*JSONClass{outer}}

	loader := NewJSONLoader(graph.NewBuilder())
	decls := loader.LoadModules([]*JSONModule{mod})

	require.Len(t, decls, 1)
	outerDecl := decls[0].(*graph.ClassDecl)
	require.Len(t, outerDecl.Members, 1)
	middleDecl := outerDecl.Members[0].Decl.(*graph.ClassDecl)
	require.Len(t, middleDecl.Members, 1)
	assert.Equal(t, "Innermost", middleDecl.Members[0].Decl.Name())

	_, ok := loader.reg.Lookup("Outer::Middle::Innermost")
	assert.True(t, ok)
}

// TestLoadModulesForwardDeclaredBase checks that a base referencing a class
// defined later in the same module resolves via the two-phase load.
func TestLoadModulesForwardDeclaredBase(t *testing.T) {
	derived := &JSONClass{
		Name: "Derived",
		Bases: []JSONBase{
			{Type: &JSONType{Kind: "declared", Name: "Base"}, Visibility: "public"},
		},
	}
	base := &JSONClass{Name: "Base"}
	mod := &JSONModule{OriginFile: "x.h", Classes: []*JSONClass{derived, base}}

	loader := NewJSONLoader(graph.NewBuilder())
	decls := loader.LoadModules([]*JSONModule{mod})

	require.Len(t, decls, 2)
	derivedDecl := decls[0].(*graph.ClassDecl)
	require.Len(t, derivedDecl.Bases, 1)

	baseDecl := decls[1].(*graph.ClassDecl)
	dt, ok := derivedDecl.Bases[0].Type.(*graph.DeclaredType)
	require.True(t, ok)
	assert.Same(t, baseDecl, dt.Decl())
}

// TestLoadModulesFreeDeclarations checks that top-level functions,
// variables, and aliases load alongside classes in module order.
func TestLoadModulesFreeDeclarations(t *testing.T) {
	mod := &JSONModule{
		OriginFile: "free.h",
		Functions:  []*JSONFunction{{Name: "doThing", Return: &JSONType{Kind: "name", Name: "void"}}},
		Variables:  []*JSONVariable{{Name: "counter", Type: &JSONType{Kind: "name", Name: "int"}}},
		Aliases:    []*JSONAlias{{Name: "Id", Target: &JSONType{Kind: "name", Name: "int"}}},
	}

	loader := NewJSONLoader(graph.NewBuilder())
	decls := loader.LoadModules([]*JSONModule{mod})

	require.Len(t, decls, 3)
	assert.Equal(t, "doThing", decls[0].Name())
	assert.Equal(t, "counter", decls[1].Name())
	assert.Equal(t, "Id", decls[2].Name())
}
