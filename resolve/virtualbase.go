package resolve

import "github.com/oxhq/cppgen/graph"

// ComputeVirtualBases runs the virtual-base pass over one root
// class: it counts each structural key's occurrences in the transitive
// base multiset, then marks every Base entry whose key recurs two or more
// times as virtual, mirroring the standard diamond-to-virtual-diamond
// transformation. A base once marked virtual stays virtual across repeat
// calls from other roots sharing the same subclass.
func ComputeVirtualBases(root *graph.ClassDecl) {
	counts := make(map[string]int)
	countBases(root, counts)
	markVirtual(root, counts)
}

func countBases(c *graph.ClassDecl, counts map[string]int) {
	for _, b := range c.Bases {
		counts[b.Type.Key()]++
		if base, ok := declaredBase(b.Type); ok {
			countBases(base, counts)
		}
	}
}

func markVirtual(c *graph.ClassDecl, counts map[string]int) {
	for i := range c.Bases {
		if counts[c.Bases[i].Type.Key()] >= 2 {
			c.Bases[i].Virtual = true
		}
		if base, ok := declaredBase(c.Bases[i].Type); ok {
			markVirtual(base, counts)
		}
	}
}

func declaredBase(t graph.Expr) (*graph.ClassDecl, bool) {
	dt, ok := t.(*graph.DeclaredType)
	if !ok {
		return nil, false
	}
	return dt.Decl(), true
}
