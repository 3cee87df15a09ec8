package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(names ...string) *Namespace {
	var cur *Namespace
	for _, n := range names {
		cur = &Namespace{Name: n, Parent: cur}
	}
	return cur
}

func TestCommonAncestor(t *testing.T) {
	root := chain("a")
	left := &Namespace{Name: "b", Parent: root}
	right := &Namespace{Name: "c", Parent: root}

	assert.Same(t, root, CommonAncestor(left, right))
	assert.Same(t, root, CommonAncestor(root, right))
	assert.Nil(t, CommonAncestor(nil, left), "global namespace is the ancestor of everything")

	deepLeft := &Namespace{Name: "d", Parent: left}
	assert.Same(t, root, CommonAncestor(deepLeft, right))
	assert.Same(t, left, CommonAncestor(deepLeft, left))
}

func TestChangeNamespaceBracketing(t *testing.T) {
	root := chain("outer")
	a := &Namespace{Name: "a", Parent: root}
	b := &Namespace{Name: "b", Parent: root}

	ops := ChangeNamespace(a, b)
	require.Len(t, ops, 2)
	assert.False(t, ops[0].Open)
	assert.Same(t, a, ops[0].NS)
	assert.True(t, ops[1].Open)
	assert.Same(t, b, ops[1].NS)
}

func TestChangeNamespaceFromNilToDeep(t *testing.T) {
	outer := chain("outer")
	inner := &Namespace{Name: "inner", Parent: outer}

	ops := ChangeNamespace(nil, inner)
	require.Len(t, ops, 2)
	assert.True(t, ops[0].Open)
	assert.Same(t, outer, ops[0].NS)
	assert.True(t, ops[1].Open)
	assert.Same(t, inner, ops[1].NS)
}

func TestChangeNamespaceNoOp(t *testing.T) {
	ns := chain("x")
	assert.Nil(t, ChangeNamespace(ns, ns))
}

func TestWritePathRelative(t *testing.T) {
	outer := chain("outer")
	inner := &Namespace{Name: "inner", Parent: outer}

	assert.Equal(t, "Widget", WritePath(outer, "Widget", outer, false))
	assert.Equal(t, "inner::Widget", WritePath(inner, "Widget", outer, false))
	assert.Equal(t, "outer::inner::Widget", WritePath(inner, "Widget", nil, false))
}

func TestWritePathFullyQualifiedOverridesRelative(t *testing.T) {
	outer := chain("outer")
	inner := &Namespace{Name: "inner", Parent: outer}

	assert.Equal(t, "outer::inner::Widget", WritePath(inner, "Widget", inner, true))
}

func TestWritePathFallsBackWhenFromIsNotAncestor(t *testing.T) {
	a := chain("a")
	b := chain("b")

	assert.Equal(t, "a::Widget", WritePath(a, "Widget", b, false))
}
