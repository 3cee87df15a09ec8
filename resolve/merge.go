package resolve

import "github.com/oxhq/cppgen/graph"

// MergeSiblings runs the duplicate-removal pass over one set of
// sibling declarations (a namespace's direct children, or a class's member
// list): declarations sharing a name are folded, left to right, via
// mergeDecl; a rejected merge leaves both declarations as separate entries.
func MergeSiblings(alg *graph.Algebra, decls []graph.Declaration) []graph.Declaration {
	groups := make(map[string][]graph.Declaration)
	var order []string
	for _, d := range decls {
		key := d.Name()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}

	var out []graph.Declaration
	for _, key := range order {
		group := groups[key]
		rep := group[0]
		for _, next := range group[1:] {
			if merged, ok := mergeDecl(alg, rep, next); ok {
				rep = merged
			} else {
				out = append(out, rep)
				rep = next
			}
		}
		out = append(out, rep)
	}
	return out
}

// MergeClassMembers runs MergeSiblings over c's own member list, replacing
// it with the folded result. A group's visibility is taken from whichever
// member first carried that name.
func MergeClassMembers(alg *graph.Algebra, c *graph.ClassDecl) {
	decls := make([]graph.Declaration, len(c.Members))
	visOf := make(map[graph.Declaration]graph.Visibility, len(c.Members))
	for i, m := range c.Members {
		decls[i] = m.Decl
		if _, ok := visOf[m.Decl]; !ok {
			visOf[m.Decl] = m.Visibility
		}
	}
	merged := MergeSiblings(alg, decls)
	out := make([]graph.Member, len(merged))
	for i, d := range merged {
		out[i] = graph.Member{Decl: d, Visibility: visOf[d]}
	}
	c.Members = out
}

// mergeDecl dispatches the variant-specific merge predicate. Two
// declarations sharing a structural key are exact duplicates and always
// fold; beyond that, only sibling functions define an accept condition
// — every other variant pair defaults to reject.
func mergeDecl(alg *graph.Algebra, a, b graph.Declaration) (graph.Declaration, bool) {
	if a.StructuralKey() == b.StructuralKey() {
		return a, true
	}
	fa, aok := a.(*graph.FunctionDecl)
	fb, bok := b.(*graph.FunctionDecl)
	if aok && bok {
		return mergeFunctions(alg, fa, fb)
	}
	return a, false
}

// mergeFunctions implements the function-overload accept rule:
// same parameter count, same type-parameter count, same const-ness, and
// every parameter position either identical or reducible to a compatible
// union/function-type pair. Acceptance mutates and returns f in place,
// preserving its identity for any declaration that already references it.
func mergeFunctions(alg *graph.Algebra, f, g *graph.FunctionDecl) (*graph.FunctionDecl, bool) {
	if len(f.Params) != len(g.Params) {
		return nil, false
	}
	if len(f.Template.Params) != len(g.Template.Params) {
		return nil, false
	}
	if f.Flags.Has(graph.FuncConst) != g.Flags.Has(graph.FuncConst) {
		return nil, false
	}

	merged := make([]graph.Param, len(f.Params))
	for i := range f.Params {
		mt, ok := mergeParamType(alg, f.Params[i].Type, g.Params[i].Type)
		if !ok {
			return nil, false
		}
		merged[i] = graph.Param{Type: mt, Name: f.Params[i].Name, Default: f.Params[i].Default}
	}

	f.Params = merged
	f.Return = mergeReturnType(alg, f.Return, g.Return)
	return f, true
}

// paramUnionQualifier is the qualifier a merged parameter position's union
// carries: passed by const reference, so the merged overload never copies
// whichever original-overload argument the caller actually supplies.
const paramUnionQualifier = graph.Const | graph.Reference

// mergeParamType implements one parameter position's merge rule: identical
// types pass through unchanged; two function-template types merge via
// mergeFunctionTypes; otherwise each side contributes its own members to a
// shared union (a side already shaped as `_Union<...>` contributes its
// existing arguments, so repeated merges flatten instead of nesting; any
// other side contributes itself, keeping whatever qualifier it already
// carries, e.g. the pointer on a class-typed parameter).
func mergeParamType(alg *graph.Algebra, a, b graph.Expr) (graph.Expr, bool) {
	if a.Key() == b.Key() {
		return a, true
	}
	sa := alg.RemoveQualifiers(a)
	sb := alg.RemoveQualifiers(b)

	if fa, ok := asFunctionType(sa); ok {
		if fb, ok2 := asFunctionType(sb); ok2 {
			return mergeFunctionTypes(alg, fa, fb), true
		}
	}

	members := append(unionMembersOf(sa, a), unionMembersOf(sb, b)...)
	return alg.UnionOf(paramUnionQualifier, members...), true
}

// unionMembersOf returns the flattened member list a side contributes to a
// merged union: stripped's own arguments if it already reduces to
// `_Union<...>`, otherwise original as a single member.
func unionMembersOf(stripped, original graph.Expr) []graph.Expr {
	if args, ok := asUnionArgs(stripped); ok {
		return args
	}
	return []graph.Expr{original}
}

// mergeFunctionTypes implements merge_function(f, g): the
// longer parameter list dictates arity; shared positions become
// `_Union<param_f, param_g>*`; the longer list's tail is retained
// unchanged; the return type merges via mergeReturnType.
func mergeFunctionTypes(alg *graph.Algebra, f, g *graph.FuncType) graph.Expr {
	fp, gp := f.Params(), g.Params()
	n := len(fp)
	if len(gp) > n {
		n = len(gp)
	}
	params := make([]graph.Expr, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(fp) && i < len(gp):
			params[i] = alg.UnionOf(graph.Pointer, fp[i], gp[i])
		case i < len(fp):
			params[i] = fp[i]
		default:
			params[i] = gp[i]
		}
	}
	ret := mergeReturnType(alg, f.Return(), g.Return())
	return alg.FunctionOf(ret, params...)
}

// mergeReturnType implements the shared return-type merge rule used by
// both function-overload merge and merge_function: an undefined or
// void-like side yields the other side unchanged, otherwise the two
// return types are unioned.
func mergeReturnType(alg *graph.Algebra, a, b graph.Expr) graph.Expr {
	if a == nil || alg.IsVoidLike(a) {
		return b
	}
	if b == nil || alg.IsVoidLike(b) {
		return a
	}
	return alg.UnionOf(graph.Pointer, a, b)
}

func asUnionArgs(t graph.Expr) ([]graph.Expr, bool) {
	app, ok := t.(*graph.TemplateApp)
	if !ok {
		return nil, false
	}
	ln, ok := app.Head().(*graph.LiteralName)
	if !ok || ln.Write(nil, false) != "_Union" {
		return nil, false
	}
	return app.Args(), true
}

func asFunctionType(t graph.Expr) (*graph.FuncType, bool) {
	app, ok := t.(*graph.TemplateApp)
	if !ok || len(app.Args()) != 1 {
		return nil, false
	}
	ln, ok := app.Head().(*graph.LiteralName)
	if !ok || ln.Write(nil, false) != "_Function" {
		return nil, false
	}
	ft, ok := app.Args()[0].(*graph.FuncType)
	return ft, ok
}
