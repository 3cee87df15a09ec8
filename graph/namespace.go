package graph

import "strings"

// Namespace is a linked-list node describing a nesting path. It
// is not itself an AST node — classes, functions, and friends each carry a
// pointer to the Namespace they live in, never the reverse.
type Namespace struct {
	Name          string
	Parent        *Namespace
	Attrs         []string
	InterfaceName string
}

// depth returns the number of namespace levels from the global namespace
// down to n, counting n itself (nil, the global namespace, has depth 0).
func (n *Namespace) depth() int {
	d := 0
	for cur := n; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}

// CommonAncestor computes the deepest namespace shared by a and b by
// aligning depths, then walking parents in lockstep.
func CommonAncestor(a, b *Namespace) *Namespace {
	da, db := a.depth(), b.depth()
	for da > db {
		a = a.Parent
		da--
	}
	for db > da {
		b = b.Parent
		db--
	}
	for a != b {
		a = a.Parent
		b = b.Parent
	}
	return a
}

// NamespaceOp is one bracketing operation the writer emits while changing
// namespace context.
type NamespaceOp struct {
	Open bool // true to open (namespace N {), false to close (})
	NS   *Namespace
}

// ChangeNamespace computes the close/open sequence needed to move the
// writer's context from `from` to `to`: close from `from` down to their
// common ancestor, then open from the ancestor down to `to`.
func ChangeNamespace(from, to *Namespace) []NamespaceOp {
	if from == to {
		return nil
	}
	anchor := CommonAncestor(from, to)

	var ops []NamespaceOp
	for cur := from; cur != anchor; cur = cur.Parent {
		ops = append(ops, NamespaceOp{Open: false, NS: cur})
	}

	var openChain []*Namespace
	for cur := to; cur != anchor; cur = cur.Parent {
		openChain = append(openChain, cur)
	}
	for i := len(openChain) - 1; i >= 0; i-- {
		ops = append(ops, NamespaceOp{Open: true, NS: openChain[i]})
	}
	return ops
}

// WritePath renders `name`, declared in namespace `declNS`, relative to the
// current namespace `from`. It walks ancestors of declNS upward until the
// parent equals `from`, joining names with "::"; when fullyQualified is set
// it always renders from the global namespace instead.
func WritePath(declNS *Namespace, name string, from *Namespace, fullyQualified bool) string {
	if fullyQualified {
		from = nil
	}

	var segments []string
	cur := declNS
	for cur != nil && cur != from {
		segments = append(segments, cur.Name)
		cur = cur.Parent
	}

	if cur != from {
		// from is not an ancestor of declNS: fall back to a fully
		// qualified path so the reference is still unambiguous.
		segments = segments[:0]
		for c := declNS; c != nil; c = c.Parent {
			segments = append(segments, c.Name)
		}
	}

	if len(segments) == 0 {
		return name
	}

	var sb strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		sb.WriteString(segments[i])
		sb.WriteString("::")
	}
	sb.WriteString(name)
	return sb.String()
}
