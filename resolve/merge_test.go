package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppgen/graph"
)

func newFunc(b *graph.Builder, name string, ret graph.Expr, paramType graph.Expr) *graph.FunctionDecl {
	f := b.Function(name, nil, "")
	f.Return = ret
	f.Params = []graph.Param{{Type: paramType, Name: "a"}}
	return f
}

// TestMergeSiblingsOverloadAcceptance checks that two sibling
// overloads with unrelated parameter/return types still merge, each
// position folding into a _Union.
func TestMergeSiblingsOverloadAcceptance(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra
	stringClass := b.Class("String", nil, "")

	foo1 := newFunc(b, "foo", alg.Name("double"), alg.Pointer(alg.Declared(stringClass)))
	foo2 := newFunc(b, "foo", alg.Pointer(alg.Declared(stringClass)), alg.Name("double"))

	out := MergeSiblings(alg, []graph.Declaration{foo1, foo2})
	require.Len(t, out, 1, "compatible overloads fold into a single representative")

	merged := out[0].(*graph.FunctionDecl)
	assert.Same(t, foo1, graph.Declaration(merged), "the first occurrence keeps its identity across the merge")
	assert.Equal(t, "const _Union<String*, double>&", merged.Params[0].Type.Write(nil, false))
	assert.Equal(t, "_Union<double, String*>*", merged.Return.Write(nil, false))
}

// TestMergeSiblingsRejectsArityMismatch checks the arity precondition:
// differing parameter counts reject the merge, leaving both
// declarations as separate entries.
func TestMergeSiblingsRejectsArityMismatch(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra

	foo1 := newFunc(b, "foo", nil, alg.Name("int"))
	foo2 := b.Function("foo", nil, "")
	foo2.Return = nil
	foo2.Params = []graph.Param{{Type: alg.Name("int")}, {Type: alg.Name("int")}}

	out := MergeSiblings(alg, []graph.Declaration{foo1, foo2})
	assert.Len(t, out, 2, "mismatched arity must reject the merge")
}

// TestMergeSiblingsRejectsConstMismatch checks the const-ness precondition.
func TestMergeSiblingsRejectsConstMismatch(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra

	foo1 := newFunc(b, "foo", nil, alg.Name("int"))
	foo2 := newFunc(b, "foo", nil, alg.Name("double"))
	foo2.Flags = graph.FuncConst

	out := MergeSiblings(alg, []graph.Declaration{foo1, foo2})
	assert.Len(t, out, 2, "differing const-ness must reject the merge")
}

// TestMergeSiblingsExactDuplicatesFold checks the structural-key dedup
// half of the pass: two declarations with the same shape are duplicates
// and fold to one, regardless of variant.
func TestMergeSiblingsExactDuplicatesFold(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra

	v1 := b.Variable("x", nil, "")
	v1.Type = alg.Name("int")
	v2 := b.Variable("x", nil, "")
	v2.Type = alg.Name("int")

	out := MergeSiblings(alg, []graph.Declaration{v1, v2})
	if assert.Len(t, out, 1) {
		assert.Same(t, v1, out[0].(*graph.VariableDecl))
	}
}

// TestMergeSiblingsNonFunctionsRejectWhenDistinct checks the "Default:
// reject" rule: two same-named variables with differing types
// are not duplicates and no merge predicate accepts them.
func TestMergeSiblingsNonFunctionsRejectWhenDistinct(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra

	v1 := b.Variable("x", nil, "")
	v1.Type = alg.Name("int")
	v2 := b.Variable("x", nil, "")
	v2.Type = alg.Name("double")

	out := MergeSiblings(alg, []graph.Declaration{v1, v2})
	assert.Len(t, out, 2)
}

// TestMergeFunctionTypesLongerArityWins checks merge_function:
// the longer parameter list dictates arity, shared positions union, the
// tail of the longer list is retained unchanged.
func TestMergeFunctionTypesLongerArityWins(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra

	shortFn := alg.FunctionOf(alg.Name("void"), alg.Name("int"))
	longFn := alg.FunctionOf(alg.Name("void"), alg.Name("bool"), alg.Name("char"))

	sf, ok := asFunctionType(alg.RemoveQualifiers(shortFn))
	require.True(t, ok)
	lf, ok := asFunctionType(alg.RemoveQualifiers(longFn))
	require.True(t, ok)

	merged := mergeFunctionTypes(alg, sf, lf)
	assert.Equal(t, "_Function<void(_Union<int, bool>*, char)>", merged.Write(nil, false))
}

// TestMergeSiblingsThreeOverloadsFlattenUnion checks that three overloads
// with different parameter types fold into one representative, the second
// accept extending the existing union instead of nesting it.
func TestMergeSiblingsThreeOverloadsFlattenUnion(t *testing.T) {
	b := graph.NewBuilder()
	alg := b.Algebra
	stringClass := b.Class("String", nil, "")

	foo1 := newFunc(b, "foo", nil, alg.Pointer(alg.Declared(stringClass)))
	foo2 := newFunc(b, "foo", nil, alg.Name("double"))
	foo3 := newFunc(b, "foo", nil, alg.Name("bool"))

	out := MergeSiblings(alg, []graph.Declaration{foo1, foo2, foo3})
	require.Len(t, out, 1)
	merged := out[0].(*graph.FunctionDecl)
	assert.Equal(t, "const _Union<String*, double, bool>&", merged.Params[0].Type.Write(nil, false))
}
