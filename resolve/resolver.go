// Package resolve implements the dependency resolver, the
// class body planner, and the global passes that run over
// the declaration graph built with package graph.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oxhq/cppgen/graph"
)

// Target is one of the resolver's scheduling units: a global, a class
// member, or a library entry.
type Target struct {
	decl  graph.Declaration
	state graph.State
}

// NewTarget pairs a declaration with the state it must reach.
func NewTarget(d graph.Declaration, state graph.State) Target { return Target{decl: d, state: state} }

func (t Target) Declaration() graph.Declaration { return t.decl }
func (t Target) TargetState() graph.State       { return t.state }

// frame is one entry of the resolver's in-progress reason stack.
type frame struct {
	decl   graph.Declaration
	state  graph.State
	reason graph.ReasonKind
	hasReason bool
}

// CycleFrame is one step of a reported cycle's causal chain.
type CycleFrame struct {
	Decl          graph.Declaration
	RequiredState graph.State
	Reason        graph.ReasonKind
	HasReason     bool
}

// CycleError is raised when a dependency chain requires some declaration
// to reach a state it can never reach without first reaching that very
// state again, with no intervening pointer/reference edge to break the
// loop.
type CycleError struct {
	Root   graph.Declaration
	Frames []CycleFrame
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected while generating %s", declPath(e.Root))
}

// Format renders the full human-readable trace: a header line followed by
// indented "required ..." lines interleaved with "because ... is
// referenced as a <role> of ..." lines. Frames whose
// declaration carries reference data (inner declarations the analyzer
// marked) additionally print that causal chain, since it explains why the
// declaration had to be completed inside its parent at all.
func (e *CycleError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dependency cycle detected while generating %s\n", declPath(e.Root))
	for i, f := range e.Frames {
		fmt.Fprintf(&sb, "  required %s at %s\n", declPath(f.Decl), f.RequiredState)
		writeReferenceChain(&sb, f.Decl)
		if i+1 < len(e.Frames) && e.Frames[i+1].HasReason {
			next := e.Frames[i+1]
			fmt.Fprintf(&sb, "  because %s is referenced as a %s of %s\n",
				declPath(next.Decl), next.Reason, declPath(f.Decl))
		}
	}
	return sb.String()
}

func writeReferenceChain(sb *strings.Builder, d graph.Declaration) {
	seen := make(map[graph.Declaration]bool)
	for cur := d; cur != nil && !seen[cur]; {
		seen[cur] = true
		rd := cur.ReferenceData()
		if rd == nil || rd.ReferencedBy == nil {
			return
		}
		fmt.Fprintf(sb, "  because %s is referenced as a %s of %s\n",
			declPath(rd.ReferencedBy), rd.Reason, declPath(rd.ReferencedIn))
		cur = rd.ReferencedBy
	}
}

func declPath(d graph.Declaration) string {
	if d == nil {
		return "<nil>"
	}
	if ns := d.Namespace(); ns != nil {
		return graph.WritePath(ns, d.Name(), nil, true)
	}
	if p := d.ParentDecl(); p != nil {
		return declPath(p) + "::" + d.Name()
	}
	return d.Name()
}

// ClassBodyPlanner is invoked whenever a class reaches Complete state; it
// computes the class body plan (Planner caches it for PlanFor) and returns
// any error raised while resolving the class's members, such as a
// CycleError among them.
type ClassBodyPlanner func(*graph.ClassDecl) error

// Diagnostic records a notable resolver event for the caller's run report
// (downgrades in ignore-errors mode).
type Diagnostic struct {
	Declaration graph.Declaration
	Message     string
}

// Resolver schedules declarations into a totally ordered emission stream
// that satisfies every dependency.
type Resolver struct {
	current         map[graph.Declaration]graph.State
	stack           []frame
	ignoreErrors    bool
	nestedViaParent bool
	onEmit          func(graph.Declaration, graph.State) error
	planClass       ClassBodyPlanner
	Diagnostics     []Diagnostic
}

// Option configures a Resolver.
type Option func(*Resolver)

// IgnoreErrors enables the "ignore errors" mode: cycles downgrade the offending Complete emission to
// Partial instead of aborting the run.
func IgnoreErrors(ignore bool) Option {
	return func(r *Resolver) { r.ignoreErrors = ignore }
}

// WithClassBodyPlanner registers the callback invoked whenever a class is
// about to be emitted at Complete state.
func WithClassBodyPlanner(p ClassBodyPlanner) Option {
	return func(r *Resolver) { r.planClass = p }
}

// NestedViaParent makes the resolver satisfy a dependency on a nested
// declaration by completing its enclosing class first: the parent's body
// is where the nested declaration's forward (or, when marked by the
// reference analyzer, complete) declaration actually appears. This is the
// behavior the file-scope stream needs; the class body planner runs its
// own scoped resolver with this off, since there the members themselves
// are the emission stream.
func NestedViaParent(enabled bool) Option {
	return func(r *Resolver) { r.nestedViaParent = enabled }
}

// NewResolver constructs a Resolver whose write callback is onEmit.
func NewResolver(onEmit func(graph.Declaration, graph.State) error, opts ...Option) *Resolver {
	r := &Resolver{
		current: make(map[graph.Declaration]graph.State),
		onEmit:  onEmit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve drives resolve(t, t.target_state()) for each input target in
// order; input order is authoritative and the resolver
// only reorders to break cycles or satisfy ordering constraints.
func (r *Resolver) Resolve(targets []Target) error {
	for _, t := range targets {
		if err := r.resolveReason(t.Declaration(), t.TargetState(), 0, false); err != nil {
			return err
		}
	}
	return nil
}

// CurrentState returns what has been emitted for d so far.
func (r *Resolver) CurrentState(d graph.Declaration) graph.State { return r.current[d] }

func (r *Resolver) resolveReason(d graph.Declaration, needed graph.State, reason graph.ReasonKind, hasReason bool) error {
	if r.current[d] >= needed {
		return nil
	}

	if r.nestedViaParent {
		if parent := d.ParentDecl(); parent != nil {
			if _, _, onStack := r.findOnStack(parent); !onStack {
				if err := r.resolveReason(parent, graph.StateComplete, graph.ReasonInnerClass, true); err != nil {
					return err
				}
				// The parent's body has now either forward-declared d (so
				// Partial is satisfied) or, when the reference analyzer
				// marked it, expanded it in full.
				reached := graph.StatePartial
				if graph.IsReferenced(d) {
					reached = d.MaxState()
				}
				if r.current[d] < reached {
					r.current[d] = reached
				}
				if r.current[d] >= needed {
					return nil
				}
			}
		}
	}

	if idx, pendingState, ok := r.findOnStack(d); ok {
		if needed < pendingState {
			// Tolerable back-edge: the pending Complete emission only
			// needs this declaration announced, and a forward declaration
			// has no dependencies of its own, so emit it in place.
			r.current[d] = needed
			return r.onEmit(d, needed)
		}
		return r.buildCycleError(idx, d, needed, reason, hasReason)
	}

	r.stack = append(r.stack, frame{decl: d, state: needed, reason: reason, hasReason: hasReason})

	for _, dep := range d.DirectDependencies(needed) {
		if err := r.resolveReason(dep.Declaration, dep.RequiredState, dep.Reason, true); err != nil {
			var cycleErr *CycleError
			if errors.As(err, &cycleErr) && r.ignoreErrors && needed == graph.StateComplete && cycleErr.Root == d {
				r.popStack()
				r.Diagnostics = append(r.Diagnostics, Diagnostic{
					Declaration: d,
					Message:     fmt.Sprintf("downgraded %s to partial: %s", declPath(d), cycleErr.Error()),
				})
				return r.resolveReason(d, graph.StatePartial, reason, hasReason)
			}
			r.popStack()
			return err
		}
	}

	if needed == graph.StateComplete {
		if cd, ok := d.(*graph.ClassDecl); ok && r.planClass != nil {
			if err := r.planClass(cd); err != nil {
				r.popStack()
				return err
			}
		}
	}

	r.current[d] = needed
	r.popStack()
	return r.onEmit(d, needed)
}

func (r *Resolver) popStack() { r.stack = r.stack[:len(r.stack)-1] }

func (r *Resolver) findOnStack(d graph.Declaration) (idx int, state graph.State, ok bool) {
	for i, f := range r.stack {
		if f.decl == d {
			return i, f.state, true
		}
	}
	return 0, graph.StateUnresolved, false
}

// buildCycleError captures the pending stack from the first frame of the
// offending declaration down, plus the closing back-edge that re-required
// it, so the formatted trace shows the full loop.
func (r *Resolver) buildCycleError(fromIdx int, d graph.Declaration, needed graph.State, reason graph.ReasonKind, hasReason bool) *CycleError {
	chain := r.stack[fromIdx:]
	frames := make([]CycleFrame, len(chain), len(chain)+1)
	for i, f := range chain {
		frames[i] = CycleFrame{Decl: f.decl, RequiredState: f.state, Reason: f.reason, HasReason: f.hasReason}
	}
	frames = append(frames, CycleFrame{Decl: d, RequiredState: needed, Reason: reason, HasReason: hasReason})
	return &CycleError{Root: chain[0].decl, Frames: frames}
}
