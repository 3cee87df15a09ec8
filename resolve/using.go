package resolve

import "github.com/oxhq/cppgen/graph"

// DefaultUsingNames is the default set of member names eligible for
// base-member using-declarations: one entry, operator[].
// ComputeUsingDeclarations takes the set as a parameter, and
// library.UsingNames overrides it for a Library.
var DefaultUsingNames = []string{"operator[]"}

// ComputeUsingDeclarations runs the base-member using-declaration pass
// over c: for each name in names, if c itself declares a
// member of that name and some publicly-inherited base also publicly
// declares a member of that name (which c's declaration would otherwise
// shadow), records "Base::name" in c.Using so the base overloads remain
// reachable.
func ComputeUsingDeclarations(c *graph.ClassDecl, names []string) {
	own := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		own[m.Decl.Name()] = true
	}

	for _, name := range names {
		if !own[name] {
			continue
		}
		for _, b := range c.Bases {
			if b.Visibility != graph.Public {
				continue
			}
			base, ok := declaredBase(b.Type)
			if !ok || !basePubliclyDeclares(base, name) {
				continue
			}
			if c.Using == nil {
				c.Using = make(map[string]bool)
			}
			c.Using[base.Name()+"::"+name] = true
		}
	}
}

func basePubliclyDeclares(c *graph.ClassDecl, name string) bool {
	for _, m := range c.Members {
		if m.Visibility == graph.Public && m.Decl.Name() == name {
			return true
		}
	}
	return false
}
