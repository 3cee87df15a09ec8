package frontend

import "github.com/oxhq/cppgen/graph"

// Registry maps a class's qualified path (its nesting chain, joined with
// "::", e.g. "outer::inner") to the declaration a loader created for it,
// so a "declared" type reference can resolve forward across an entire
// run regardless of which file actually defines the target class.
type Registry struct {
	classes map[string]*graph.ClassDecl
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*graph.ClassDecl)}
}

func (r *Registry) register(path string, c *graph.ClassDecl) {
	r.classes[path] = c
}

// Lookup returns the class registered under path, if any.
func (r *Registry) Lookup(path string) (*graph.ClassDecl, bool) {
	c, ok := r.classes[path]
	return c, ok
}
