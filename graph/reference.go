package graph

// Analyze runs the reference analyzer over d, one top-level
// declaration at a time, before the resolver is invoked. It decides which
// inner declarations must be fully completed within their enclosing class
// body rather than merely forward-declared, recording the decision as
// each marked declaration's ReferenceData.
func Analyze(d Declaration) { analyze(d, d) }

func analyze(d Declaration, root Declaration) {
	for _, dep := range d.DirectDependencies(StateComplete) {
		node := dep.Declaration
		if dep.RequiredState != StateComplete {
			node = node.ParentDecl()
		}
		markChain(node, root, d, d, dep.Reason)
	}

	for _, child := range d.Children() {
		for _, dep := range child.DirectDependencies(StatePartial) {
			node := dep.Declaration
			if dep.RequiredState != StateComplete {
				node = node.ParentDecl()
			}
			markChain(node, root, child, d, dep.Reason)
		}
	}

	for _, child := range d.Children() {
		if child.ReferenceData() == nil {
			analyze(child, child)
		}
	}
}

// markChain walks node upward through ParentDecl links, marking every
// still-unmarked declaration that remains a proper descendant of root, and
// immediately re-analyzes each newly-marked node using the same root
//. It stops at the first already-marked ancestor or
// once it leaves root's subtree.
func markChain(node Declaration, root, referencedBy, referencedIn Declaration, reason ReasonKind) {
	for node != nil && node != root && isDescendant(node, root) && node.ReferenceData() == nil {
		node.SetReferenceData(&ReferenceData{ReferencedBy: referencedBy, ReferencedIn: referencedIn, Reason: reason})
		analyze(node, root)
		node = node.ParentDecl()
	}
}

// isDescendant reports whether node is nested, at any depth, inside root.
func isDescendant(node, root Declaration) bool {
	if node == nil {
		return false
	}
	for cur := node.ParentDecl(); cur != nil; cur = cur.ParentDecl() {
		if cur == root {
			return true
		}
	}
	return false
}

// IsReferenced reports whether the analyzer decided this declaration must
// be completed within its enclosing class rather than forward-declared.
func IsReferenced(d Declaration) bool { return d.ReferenceData() != nil }
