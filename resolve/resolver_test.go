package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppgen/graph"
)

// emission is one recorded (declaration, state) pair from a test resolver
// run, in emission order.
type emission struct {
	decl  graph.Declaration
	state graph.State
}

func recordingResolver(opts ...Option) (*Resolver, *[]emission) {
	var out []emission
	r := NewResolver(func(d graph.Declaration, s graph.State) error {
		out = append(out, emission{decl: d, state: s})
		return nil
	}, opts...)
	return r, &out
}

// TestResolverSoundness checks that for every emitted (T, s), every
// dependency of T at a state <= s was emitted earlier in the stream. Here,
// B derives from A, so A must be emitted Complete before B is.
func TestResolverSoundness(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")
	b.AddBase(bb, b.Declared(a), graph.Public)

	r, emissions := recordingResolver()
	err := r.Resolve([]Target{NewTarget(bb, graph.StateComplete)})
	require.NoError(t, err)

	require.Len(t, *emissions, 2)
	assert.Equal(t, graph.Declaration(a), (*emissions)[0].decl)
	assert.Equal(t, graph.StateComplete, (*emissions)[0].state)
	assert.Equal(t, graph.Declaration(bb), (*emissions)[1].decl)
	assert.Equal(t, graph.StateComplete, (*emissions)[1].state)
}

// TestResolverSingleCompleteEmission checks that no declaration is
// emitted at Complete more than once even when several targets reach it
// via different paths.
func TestResolverSingleCompleteEmission(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")
	cc := b.Class("C", nil, "")
	b.AddBase(bb, b.Declared(a), graph.Public)
	b.AddBase(cc, b.Declared(a), graph.Public)

	r, emissions := recordingResolver()
	err := r.Resolve([]Target{
		NewTarget(bb, graph.StateComplete),
		NewTarget(cc, graph.StateComplete),
		NewTarget(a, graph.StateComplete),
	})
	require.NoError(t, err)

	completions := 0
	for _, e := range *emissions {
		if e.decl == graph.Declaration(a) && e.state == graph.StateComplete {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

// TestResolverTolerableBackEdge checks that a pointer-qualified
// back-reference (Partial suffices) between two mutually referencing
// classes resolves without error, because the cycle is broken by a
// forward declaration.
func TestResolverTolerableBackEdge(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")

	getB := b.Function("getB", nil, "")
	getB.Return = b.Pointer(b.Declared(bb))
	b.AddMember(a, getB, graph.Public)

	getA := b.Function("getA", nil, "")
	getA.Return = b.Pointer(b.Declared(a))
	b.AddMember(bb, getA, graph.Public)

	r, _ := recordingResolver()
	err := r.Resolve([]Target{
		NewTarget(a, graph.StateComplete),
		NewTarget(bb, graph.StateComplete),
	})
	assert.NoError(t, err)
}

// TestResolverUnbreakableCycleReported checks that when a
// dependency chain genuinely requires some declaration to reach Complete
// transitively via itself with no pointer/reference break, the resolver
// raises a CycleError carrying the causal chain.
func TestResolverUnbreakableCycleReported(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")

	// B derives from A while A's member needs B::value_type: completing A
	// requires B complete, which requires A complete again with no
	// pointer/reference edge anywhere to break the loop.
	b.AddBase(bb, b.Declared(a), graph.Public)
	forced := b.Function("selfRef", nil, "")
	forced.Return = b.Member(b.Declared(a), "value_type")
	b.AddMember(bb, forced, graph.Public)

	aNeedsB := b.Function("needsB", nil, "")
	aNeedsB.Return = b.Member(b.Declared(bb), "value_type")
	b.AddMember(a, aNeedsB, graph.Public)

	r, _ := recordingResolver()
	err := r.Resolve([]Target{NewTarget(a, graph.StateComplete)})
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Frames)
}

// TestResolverIgnoreErrorsDowngrades checks that in ignore-errors mode,
// an unbreakable cycle downgrades the offending
// Complete emission to Partial and the run continues rather than
// aborting.
func TestResolverIgnoreErrorsDowngrades(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")

	b.AddBase(bb, b.Declared(a), graph.Public)
	forced := b.Function("selfRef", nil, "")
	forced.Return = b.Member(b.Declared(a), "value_type")
	b.AddMember(bb, forced, graph.Public)

	aNeedsB := b.Function("needsB", nil, "")
	aNeedsB.Return = b.Member(b.Declared(bb), "value_type")
	b.AddMember(a, aNeedsB, graph.Public)

	r, emissions := recordingResolver(IgnoreErrors(true))
	err := r.Resolve([]Target{NewTarget(a, graph.StateComplete)})
	require.NoError(t, err)
	assert.NotEmpty(t, r.Diagnostics)

	var sawPartial bool
	for _, e := range *emissions {
		if e.decl == graph.Declaration(a) && e.state == graph.StatePartial {
			sawPartial = true
		}
	}
	assert.True(t, sawPartial, "the offending declaration must still be emitted, downgraded to Partial")
}

// TestCycleErrorFormat checks the trace shape: a header naming
// the root, "required ..." lines for every frame including the closing
// back-edge, and "because ... is referenced as a <role> of ..." lines for
// each reasoned link.
func TestCycleErrorFormat(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")

	b.AddBase(bb, b.Declared(a), graph.Public)
	aNeedsB := b.Function("needsB", nil, "")
	aNeedsB.Return = b.Member(b.Declared(bb), "value_type")
	b.AddMember(a, aNeedsB, graph.Public)

	r, _ := recordingResolver()
	err := r.Resolve([]Target{NewTarget(a, graph.StateComplete)})
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	trace := cycleErr.Format()
	assert.Contains(t, trace, "dependency cycle detected while generating A")
	assert.Contains(t, trace, "required A at complete")
	assert.Contains(t, trace, "required B at complete")
	assert.Contains(t, trace, "because B is referenced as a return type of A")
	assert.Contains(t, trace, "because A is referenced as a base class of B")
}

// TestResolverNestedViaParent checks the file-scope rule for nested
// declarations: a Partial dependency on an inner class is satisfied by
// completing its enclosing class (whose body carries the forward
// declaration), never by emitting the inner class at file scope itself.
func TestResolverNestedViaParent(t *testing.T) {
	b := graph.NewBuilder()
	outer := b.Class("Outer", nil, "")
	inner := b.Class("Inner", nil, "")
	b.AddMember(outer, inner, graph.Public)

	user := b.Class("User", nil, "")
	field := b.Variable("p", nil, "")
	field.Type = b.Pointer(b.Declared(inner))
	b.AddMember(user, field, graph.Public)

	graph.Analyze(outer)
	graph.Analyze(user)

	r, emissions := recordingResolver(NestedViaParent(true))
	err := r.Resolve([]Target{NewTarget(user, graph.StateComplete)})
	require.NoError(t, err)

	var sawOuterComplete, sawInnerAlone bool
	for _, e := range *emissions {
		if e.decl == graph.Declaration(outer) && e.state == graph.StateComplete {
			sawOuterComplete = true
		}
		if e.decl == graph.Declaration(inner) {
			sawInnerAlone = true
		}
	}
	assert.True(t, sawOuterComplete, "the enclosing class must be completed to announce its nested member")
	assert.False(t, sawInnerAlone, "the nested class itself must not be emitted at file scope for a Partial need")
}

// TestResolverInputOrderAuthoritative checks the tie-breaking rule:
// when no dependency forces otherwise, independent targets emit in
// their given input order.
func TestResolverInputOrderAuthoritative(t *testing.T) {
	b := graph.NewBuilder()
	a := b.Class("A", nil, "")
	bb := b.Class("B", nil, "")

	r, emissions := recordingResolver()
	err := r.Resolve([]Target{
		NewTarget(bb, graph.StateComplete),
		NewTarget(a, graph.StateComplete),
	})
	require.NoError(t, err)
	require.Len(t, *emissions, 2)
	assert.Equal(t, graph.Declaration(bb), (*emissions)[0].decl)
	assert.Equal(t, graph.Declaration(a), (*emissions)[1].decl)
}
