package graph

// Algebra is the structural-key intern table for expressions. All expression construction goes through an *Algebra so
// that equal structural keys always resolve to the same instance; equality
// of expressions is therefore reference identity.
type Algebra struct {
	table map[string]Expr
}

// NewAlgebra returns an empty intern table. The table is instantiated
// per-run rather than held as a true process global, so tests can run in
// isolation.
func NewAlgebra() *Algebra {
	return &Algebra{table: make(map[string]Expr)}
}

func (a *Algebra) intern(e Expr) Expr {
	if existing, ok := a.table[e.Key()]; ok {
		return existing
	}
	a.table[e.Key()] = e
	return e
}

// Name interns a bare literal name expression.
func (a *Algebra) Name(name string) Expr {
	return a.intern(&LiteralName{name: name})
}

// Declared interns a reference to a class declaration.
func (a *Algebra) Declared(decl *ClassDecl) Expr {
	return a.intern(&DeclaredType{decl: decl})
}

func (a *Algebra) qualify(inner Expr, add Qualifier, innerState State) Expr {
	bits := add
	if q, ok := inner.(*Qualified); ok {
		bits |= q.bits
		inner = q.inner
		if innerState == StateUnresolved {
			innerState = q.innerState
		}
	}
	return a.intern(&Qualified{inner: inner, bits: bits, innerState: innerState})
}

// Pointer returns `t*`.
func (a *Algebra) Pointer(t Expr) Expr { return a.qualify(t, Pointer, StateUnresolved) }

// ConstPointer returns `const t*`.
func (a *Algebra) ConstPointer(t Expr) Expr { return a.qualify(t, Const|Pointer, StateUnresolved) }

// Reference returns `t&`.
func (a *Algebra) Reference(t Expr) Expr { return a.qualify(t, Reference, StateUnresolved) }

// ConstReference returns `const t&`.
func (a *Algebra) ConstReference(t Expr) Expr { return a.qualify(t, Const|Reference, StateUnresolved) }

// RvalueReference returns `t&&`.
func (a *Algebra) RvalueReference(t Expr) Expr { return a.qualify(t, RValueRef, StateUnresolved) }

// Expand returns `t...` (variadic pack expansion).
func (a *Algebra) Expand(t Expr) Expr { return a.qualify(t, Variadic, StateUnresolved) }

// QualifyComplete applies the given qualifier bits but forces the inner
// dependency to Complete rather than the usual Partial (used for template
// parameters of constrained classes).
func (a *Algebra) QualifyComplete(t Expr, bits Qualifier) Expr {
	return a.qualify(t, bits, StateComplete)
}

// RemoveQualifiers strips Const/Pointer/Reference/RValueRef, keeping
// Variadic.
func (a *Algebra) RemoveQualifiers(t Expr) Expr {
	q, ok := t.(*Qualified)
	if !ok {
		return t
	}
	kept := q.bits & Variadic
	if kept == 0 {
		return q.inner
	}
	return a.intern(&Qualified{inner: q.inner, bits: kept})
}

// Member interns `inner::member`.
func (a *Algebra) Member(inner Expr, member string) Expr {
	return a.intern(&MemberType{inner: inner, member: member})
}

// TemplateOf constructs `head<args...>`.
func (a *Algebra) TemplateOf(head Expr, args ...Expr) Expr {
	cp := make([]Expr, len(args))
	copy(cp, args)
	return a.intern(&TemplateApp{head: head, args: cp})
}

// anyStarName is the sentinel type name that absorbs unions/casts: when it
// appears among a set of candidate types, the whole expression collapses.
const anyStarName = "_Any"

func (a *Algebra) isAnyPointer(t Expr) bool {
	q, ok := t.(*Qualified)
	if !ok || !q.bits.Has(Pointer) {
		return false
	}
	n, ok := q.inner.(*LiteralName)
	return ok && n.name == anyStarName
}

func (a *Algebra) isAny(t Expr) bool {
	n, ok := t.(*LiteralName)
	return ok && n.name == anyStarName
}

// asUnion reports whether t is a `_Union<...>` template application, after
// stripping any `*Qualified` wrapper — UnionOf always wraps its result in a
// Qualified (even with an empty bitmask, see qualify), so a nested union fed
// back through UnionOf arrives wrapped, not bare. The nested wrapper's own
// qualifier is discarded on flatten, matching
// `union_of(q, union_of(q', a, b), c) == union_of(q, a, b, c)`.
func asUnion(t Expr) (*TemplateApp, bool) {
	if q, ok := t.(*Qualified); ok {
		t = q.inner
	}
	app, ok := t.(*TemplateApp)
	if !ok {
		return nil, false
	}
	n, ok := app.head.(*LiteralName)
	if !ok || n.name != "_Union" {
		return nil, false
	}
	return app, true
}

// UnionOf constructs `_Union<types...>` with canonicalization: duplicate
// arguments are removed, a nested _Union is flattened into its parent, an
// `_Any*` argument absorbs the whole union to `_Any`, and a single
// remaining type is returned bare (qualified as requested) rather than
// wrapped.
func (a *Algebra) UnionOf(qualifier Qualifier, types ...Expr) Expr {
	var flat []Expr
	seen := make(map[string]bool)
	add := func(t Expr) {
		if a.isAnyPointer(t) {
			return
		}
		if !seen[t.Key()] {
			seen[t.Key()] = true
			flat = append(flat, t)
		}
	}
	absorbed := false
	for _, t := range types {
		if a.isAnyPointer(t) {
			absorbed = true
			continue
		}
		if app, ok := asUnion(t); ok {
			for _, inner := range app.args {
				if a.isAnyPointer(inner) {
					absorbed = true
					continue
				}
				add(inner)
			}
			continue
		}
		add(t)
	}
	if absorbed {
		return a.qualify(a.Name(anyStarName), qualifier, StateUnresolved)
	}
	if len(flat) == 1 {
		return a.qualify(flat[0], qualifier, StateUnresolved)
	}
	app := a.intern(&TemplateApp{head: a.Name("_Union"), args: flat}).(*TemplateApp)
	return a.qualify(app, qualifier, StateUnresolved)
}

// FunctionOf constructs a C-style function type wrapped in `_Function<...>`.
func (a *Algebra) FunctionOf(ret Expr, params ...Expr) Expr {
	cp := make([]Expr, len(params))
	copy(cp, params)
	ft := a.intern(&FuncType{ret: ret, params: cp})
	return a.intern(&TemplateApp{head: a.Name("_Function"), args: []Expr{ft}})
}

// EnableIf constructs `enable_if<cond, type>`, folding: an always-true
// condition returns type (or void); merging into an existing enable_if
// combines conditions with logical-and.
func (a *Algebra) EnableIf(cond Expr, typ Expr) Expr {
	if a.IsAlwaysTrue(cond) {
		if typ == nil {
			return a.Name("void")
		}
		return typ
	}
	if app, ok := typ.(*TemplateApp); ok {
		if n, ok := app.head.(*LiteralName); ok && n.name == "enable_if" && len(app.args) >= 1 {
			merged := a.intern(&Compound{op: OpAnd, children: []Expr{cond, app.args[0]}})
			var inner Expr
			if len(app.args) > 1 {
				inner = app.args[1]
			}
			return a.EnableIf(merged, inner)
		}
	}
	args := []Expr{cond}
	if typ != nil {
		args = append(args, typ)
	} else {
		args = append(args, a.Name("void"))
	}
	return a.intern(&TemplateApp{head: a.Name("enable_if"), args: args})
}

// ArrayElementType returns the element type of t: a template whose head
// is a declared type yields its first parameter, a bare declared type
// yields `_Any*`, otherwise `ArrayElementTypeT<t>`.
func (a *Algebra) ArrayElementType(t Expr) Expr {
	if app, ok := t.(*TemplateApp); ok {
		if _, isDecl := app.head.(*DeclaredType); isDecl && len(app.args) > 0 {
			return app.args[0]
		}
	}
	if _, ok := t.(*DeclaredType); ok {
		return a.qualify(a.Name(anyStarName), Pointer, StateUnresolved)
	}
	return a.intern(&TemplateApp{head: a.Name("ArrayElementTypeT"), args: []Expr{t}})
}

// CanCast constructs a predicate template `can_cast<from, to...>`,
// collapsing to `true` if `_Any*` appears in to.
func (a *Algebra) CanCast(from Expr, to ...Expr) Expr {
	return a.castPredicate("can_cast", from, to)
}

// CanCastArgs constructs `can_cast_args<from, to...>` with the same
// `_Any*`-absorption rule as CanCast.
func (a *Algebra) CanCastArgs(from Expr, to ...Expr) Expr {
	return a.castPredicate("can_cast_args", from, to)
}

func (a *Algebra) castPredicate(name string, from Expr, to []Expr) Expr {
	for _, t := range to {
		if a.isAnyPointer(t) || a.isAny(t) {
			return a.intern(&BoolLiteral{value: true})
		}
	}
	args := append([]Expr{from}, to...)
	return a.intern(&TemplateApp{head: a.Name(name), args: args})
}

// IsAlwaysTrue constant-folds `is_same<T,T>` and any can_cast family
// expression that contains `_Any*` in its target list.
func (a *Algebra) IsAlwaysTrue(e Expr) bool {
	if b, ok := e.(*BoolLiteral); ok {
		return b.value
	}
	app, ok := e.(*TemplateApp)
	if !ok {
		return false
	}
	n, ok := app.head.(*LiteralName)
	if !ok {
		return false
	}
	switch n.name {
	case "is_same":
		return len(app.args) == 2 && app.args[0].Key() == app.args[1].Key()
	case "can_cast", "can_cast_args":
		for _, t := range app.args {
			if a.isAnyPointer(t) || a.isAny(t) {
				return true
			}
		}
	}
	return false
}

// IsVoidLike reports whether e is `void` or `enable_if<cond, void>`.
func (a *Algebra) IsVoidLike(e Expr) bool {
	if n, ok := e.(*LiteralName); ok {
		return n.name == "void"
	}
	if app, ok := e.(*TemplateApp); ok {
		if n, ok := app.head.(*LiteralName); ok && n.name == "enable_if" && len(app.args) == 2 {
			return a.IsVoidLike(app.args[1])
		}
	}
	return false
}

// And constructs a logical-and Compound expression.
func (a *Algebra) And(children ...Expr) Expr {
	return a.intern(&Compound{op: OpAnd, children: append([]Expr{}, children...)})
}

// Or constructs a logical-or Compound expression.
func (a *Algebra) Or(children ...Expr) Expr {
	return a.intern(&Compound{op: OpOr, children: append([]Expr{}, children...)})
}

// Bool interns a boolean literal.
func (a *Algebra) Bool(v bool) Expr { return a.intern(&BoolLiteral{value: v}) }
