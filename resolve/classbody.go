package resolve

import (
	"sort"

	"github.com/oxhq/cppgen/graph"
)

// MemberEmission is one entry of a class body's ordered member stream,
// annotated with the visibility section it belongs to.
type MemberEmission struct {
	Decl       graph.Declaration
	State      graph.State
	Visibility graph.Visibility
}

// ClassBodyPlan is the result of re-running the resolver scoped to a
// class's members: an ordered emission stream plus the
// using-declaration names that must trail the body.
type ClassBodyPlan struct {
	Class      *graph.ClassDecl
	Emissions  []MemberEmission
	UsingNames []string
}

// Planner runs the class body planner for every class the global
// resolver completes, caching one ClassBodyPlan per class so the library
// writer can retrieve it when it actually emits the class body text.
type Planner struct {
	plans map[*graph.ClassDecl]*ClassBodyPlan
}

// NewPlanner returns an empty planner.
func NewPlanner() *Planner {
	return &Planner{plans: make(map[*graph.ClassDecl]*ClassBodyPlan)}
}

// AsClassBodyPlanner adapts p into the callback the top-level Resolver
// invokes when a class reaches Complete state.
func (p *Planner) AsClassBodyPlanner() ClassBodyPlanner { return p.Plan }

// Plan re-runs the resolver scoped to c's direct members: an inner class
// member targets Complete only if the reference analyzer marked it
// referenced, otherwise Partial (a forward declaration suffices); every
// other member kind is Partial-only per its own MaxState.
func (p *Planner) Plan(c *graph.ClassDecl) error {
	targets := make([]Target, 0, len(c.Members))
	visByDecl := make(map[graph.Declaration]graph.Visibility, len(c.Members))
	for _, m := range c.Members {
		state := m.Decl.MaxState()
		if inner, ok := m.Decl.(*graph.ClassDecl); ok {
			if !graph.IsReferenced(inner) {
				state = graph.StatePartial
			}
		}
		targets = append(targets, NewTarget(m.Decl, state))
		visByDecl[m.Decl] = m.Visibility
	}

	var emissions []MemberEmission
	nested := NewResolver(func(d graph.Declaration, s graph.State) error {
		// Resolving a member's dependencies (e.g. a pointer field's pointee)
		// walks declarations that are not themselves members of c; the
		// global resolver already satisfies and emits those at file scope
		// before planClass runs, so only c's own members belong in the
		// body's emission stream.
		if vis, isMember := visByDecl[d]; isMember {
			emissions = append(emissions, MemberEmission{Decl: d, State: s, Visibility: vis})
		}
		return nil
	}, WithClassBodyPlanner(p.AsClassBodyPlanner()))
	if err := nested.Resolve(targets); err != nil {
		return err
	}

	usingNames := make([]string, 0, len(c.Using))
	for name := range c.Using {
		usingNames = append(usingNames, name)
	}
	sort.Strings(usingNames)

	p.plans[c] = &ClassBodyPlan{Class: c, Emissions: emissions, UsingNames: usingNames}
	return nil
}

// PlanFor retrieves the cached plan for a class that has already reached
// Complete state. It returns nil if the class was never completed (e.g.
// it was only ever forward-declared).
func (p *Planner) PlanFor(c *graph.ClassDecl) *ClassBodyPlan { return p.plans[c] }
