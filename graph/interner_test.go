package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClass(id int, name string) *ClassDecl {
	return &ClassDecl{declBase: declBase{id: id, name: name}}
}

// TestInterningIdentity checks the core interning invariant: two
// expressions built from the same variant and fields intern to the same
// instance, and key equality implies instance equality.
func TestInterningIdentity(t *testing.T) {
	alg := NewAlgebra()

	a1 := alg.Name("Foo")
	a2 := alg.Name("Foo")
	assert.Same(t, a1, a2, "equal LiteralName constructions must intern to the same instance")

	c := newTestClass(1, "Widget")
	d1 := alg.Declared(c)
	d2 := alg.Declared(c)
	assert.Same(t, d1, d2)

	p1 := alg.Pointer(d1)
	p2 := alg.Pointer(d2)
	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, d1, "qualifying must not mutate or alias the unqualified expression")
}

// TestQualifierComposition checks that t.Pointer() then ConstPointer()
// composes bits rather than nesting wrappers, and re-interning never loses
// a previously set bit.
func TestQualifierComposition(t *testing.T) {
	alg := NewAlgebra()
	base := alg.Name("int")

	ptr := alg.Pointer(base)
	constPtr := alg.ConstPointer(ptr)

	q, ok := constPtr.(*Qualified)
	require.True(t, ok)
	assert.True(t, q.Bits().Has(Const))
	assert.True(t, q.Bits().Has(Pointer))
	assert.Same(t, base, q.Inner(), "composing qualifiers must flatten to a single wrapper around the unqualified base")

	manual := alg.qualify(alg.qualify(base, Pointer, StateUnresolved), Const, StateUnresolved)
	assert.Same(t, constPtr, manual)
}

func TestRemoveQualifiersKeepsVariadic(t *testing.T) {
	alg := NewAlgebra()
	base := alg.Name("T")
	variadicPtr := alg.Expand(alg.Pointer(base))

	stripped := alg.RemoveQualifiers(variadicPtr)
	q, ok := stripped.(*Qualified)
	require.True(t, ok)
	assert.True(t, q.Bits().Has(Variadic))
	assert.False(t, q.Bits().Has(Pointer))

	strippedPlain := alg.RemoveQualifiers(alg.Pointer(base))
	assert.Same(t, base, strippedPlain, "stripping every bit returns the bare inner expression")
}

// TestUnionCanonicalization checks the three UnionOf laws:
// dedup collapse, nested-union flattening, and _Any* absorption.
func TestUnionCanonicalization(t *testing.T) {
	alg := NewAlgebra()
	tType := alg.Name("T")

	t.Run("dedup_collapses_to_bare_qualified_type", func(t *testing.T) {
		u := alg.UnionOf(Pointer, tType, tType)
		assert.Equal(t, alg.Pointer(tType).Key(), u.Key())
	})

	t.Run("nested_union_flattens_into_parent", func(t *testing.T) {
		a := alg.Name("A")
		b := alg.Name("B")
		c := alg.Name("C")
		inner := alg.UnionOf(Pointer, a, b)
		outer := alg.UnionOf(Pointer, inner, c)
		direct := alg.UnionOf(Pointer, a, b, c)
		assert.Equal(t, direct.Key(), outer.Key())
	})

	t.Run("any_star_absorbs_whole_union", func(t *testing.T) {
		x := alg.Name("X")
		any := alg.Pointer(alg.Name(anyStarName))
		u := alg.UnionOf(Pointer, any, x)
		assert.Equal(t, alg.qualify(alg.Name(anyStarName), Pointer, StateUnresolved).Key(), u.Key())
	})
}

// TestEnableIfFolding checks that an always-true condition folds
// enable_if away entirely.
func TestEnableIfFolding(t *testing.T) {
	alg := NewAlgebra()
	tType := alg.Name("T")

	same := alg.intern(&TemplateApp{head: alg.Name("is_same"), args: []Expr{tType, tType}})
	assert.True(t, alg.IsAlwaysTrue(same))

	folded := alg.EnableIf(same, tType)
	assert.Same(t, tType, folded)

	foldedVoid := alg.EnableIf(same, nil)
	assert.Equal(t, "void", foldedVoid.Write(nil, false))
}

func TestEnableIfMergesConditions(t *testing.T) {
	alg := NewAlgebra()
	tType := alg.Name("T")
	condA := alg.intern(&TemplateApp{head: alg.Name("cond_a"), args: []Expr{tType}})
	condB := alg.intern(&TemplateApp{head: alg.Name("cond_b"), args: []Expr{tType}})

	once := alg.EnableIf(condA, tType)
	twice := alg.EnableIf(condB, once)

	app, ok := twice.(*TemplateApp)
	require.True(t, ok)
	nameHead, ok := app.Head().(*LiteralName)
	require.True(t, ok)
	assert.Equal(t, "enable_if", nameHead.Write(nil, false))

	cond, ok := app.Args()[0].(*Compound)
	require.True(t, ok)
	assert.Equal(t, OpAnd, cond.Op())
}

func TestCanCastAbsorption(t *testing.T) {
	alg := NewAlgebra()
	from := alg.Name("From")
	any := alg.Pointer(alg.Name(anyStarName))
	to := alg.Name("To")

	cast := alg.CanCast(from, to, any)
	b, ok := cast.(*BoolLiteral)
	require.True(t, ok)
	assert.True(t, b.Value())
}

func TestArrayElementType(t *testing.T) {
	alg := NewAlgebra()
	c := newTestClass(1, "Array")
	elem := alg.Name("Elem")
	arr := alg.TemplateOf(alg.Declared(c), elem)

	assert.Same(t, elem, alg.ArrayElementType(arr))

	bare := alg.Declared(c)
	anyPtr := alg.ArrayElementType(bare)
	q, ok := anyPtr.(*Qualified)
	require.True(t, ok)
	assert.True(t, q.Bits().Has(Pointer))

	other := alg.Name("Other")
	fallback := alg.ArrayElementType(other)
	app, ok := fallback.(*TemplateApp)
	require.True(t, ok)
	ln := app.Head().(*LiteralName)
	assert.Equal(t, "ArrayElementTypeT", ln.Write(nil, false))
}

func TestIsVoidLike(t *testing.T) {
	alg := NewAlgebra()
	assert.True(t, alg.IsVoidLike(alg.Name("void")))
	assert.False(t, alg.IsVoidLike(alg.Name("int")))

	same := alg.intern(&TemplateApp{head: alg.Name("is_same"), args: []Expr{alg.Name("T"), alg.Name("T")}})
	wrapped := alg.EnableIf(alg.Bool(false), alg.Name("void"))
	_ = same
	assert.True(t, alg.IsVoidLike(wrapped))
}

// TestQualifiedWriteOrdering checks the fixed qualifier ordering:
// const, type, *, &/&&, ....
func TestQualifiedWriteOrdering(t *testing.T) {
	alg := NewAlgebra()
	base := alg.Name("T")

	constRef := alg.ConstReference(base)
	assert.Equal(t, "const T&", constRef.Write(nil, false))

	rvalue := alg.RvalueReference(base)
	assert.Equal(t, "T&&", rvalue.Write(nil, false))

	variadicPtr := alg.Expand(alg.Pointer(base))
	assert.Equal(t, "T*...", variadicPtr.Write(nil, false))
}

func TestFunctionOfWraps(t *testing.T) {
	alg := NewAlgebra()
	ret := alg.Name("int")
	p1 := alg.Name("char")

	fn := alg.FunctionOf(ret, p1)
	app, ok := fn.(*TemplateApp)
	require.True(t, ok)
	ln := app.Head().(*LiteralName)
	assert.Equal(t, "_Function", ln.Write(nil, false))
	assert.Equal(t, "_Function<int(char)>", fn.Write(nil, false))
}

func TestTemplateAppConstrainedParamsForceComplete(t *testing.T) {
	alg := NewAlgebra()
	constrained := newTestClass(1, "Constrained")
	constrained.Constraints = []Expr{alg.Bool(true)}

	paramClass := newTestClass(2, "Param")
	paramRef := alg.Pointer(alg.Declared(paramClass))

	app := alg.TemplateOf(alg.Declared(constrained), paramRef)
	deps := app.Dependencies()

	var sawParamComplete bool
	for _, d := range deps {
		if d.Declaration == Declaration(paramClass) && d.RequiredState == StateComplete {
			sawParamComplete = true
		}
	}
	assert.True(t, sawParamComplete, "template parameters of a constrained class head must require Complete")
}
