package graph

// Builder assigns stable identities and wires parent/child ownership as the
// frontend populates the declaration graph. A Builder and the Algebra it wraps are created once per run.
type Builder struct {
	*Algebra
	ids idAllocator
}

// NewBuilder returns a Builder backed by a fresh intern table.
func NewBuilder() *Builder {
	return &Builder{Algebra: NewAlgebra()}
}

// Namespace returns a namespace path element nested under parent.
func (b *Builder) Namespace(name string, parent *Namespace) *Namespace {
	return &Namespace{Name: name, Parent: parent}
}

// Class creates a top-level class declaration under ns, tagged with the
// origin file it came from.
func (b *Builder) Class(name string, ns *Namespace, originFile string) *ClassDecl {
	return &ClassDecl{declBase: declBase{id: b.ids.next_(), name: name, namespace: ns, originFile: originFile}}
}

// Function creates a top-level function declaration under ns.
func (b *Builder) Function(name string, ns *Namespace, originFile string) *FunctionDecl {
	return &FunctionDecl{declBase: declBase{id: b.ids.next_(), name: name, namespace: ns, originFile: originFile}}
}

// Variable creates a top-level variable declaration under ns.
func (b *Builder) Variable(name string, ns *Namespace, originFile string) *VariableDecl {
	return &VariableDecl{declBase: declBase{id: b.ids.next_(), name: name, namespace: ns, originFile: originFile}}
}

// TypeAlias creates a top-level type alias declaration under ns.
func (b *Builder) TypeAlias(name string, ns *Namespace, originFile string) *TypeAliasDecl {
	return &TypeAliasDecl{declBase: declBase{id: b.ids.next_(), name: name, namespace: ns, originFile: originFile}}
}

// AddMember appends member to parent's member list at the given visibility
// and assigns member's parent pointer. Setting a parent is a one-way
// assignment; members are never shared between classes.
func (b *Builder) AddMember(parent *ClassDecl, member Declaration, vis Visibility) {
	setParentDecl(member, parent)
	parent.Members = append(parent.Members, Member{Decl: member, Visibility: vis})
}

// AddBase appends a base-class entry to a class's inheritance list.
func (b *Builder) AddBase(c *ClassDecl, t Expr, vis Visibility) {
	c.Bases = append(c.Bases, Base{Type: t, Visibility: vis})
}

// setParentDecl assigns the nested-member parent pointer. Declared here
// (rather than as an exported field setter) so the one-way-assignment
// invariant can't be violated by reassigning an already-parented member.
func setParentDecl(member Declaration, parent *ClassDecl) {
	switch m := member.(type) {
	case *ClassDecl:
		if m.parentDecl == nil {
			m.parentDecl = parent
		}
	case *FunctionDecl:
		if m.parentDecl == nil {
			m.parentDecl = parent
		}
	case *VariableDecl:
		if m.parentDecl == nil {
			m.parentDecl = parent
		}
	case *TypeAliasDecl:
		if m.parentDecl == nil {
			m.parentDecl = parent
		}
	}
}
