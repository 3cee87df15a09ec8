package library

import (
	"fmt"

	"github.com/oxhq/cppgen/graph"
	"github.com/oxhq/cppgen/resolve"
	"github.com/oxhq/cppgen/sink"
)

// WriteOptions controls how declaration text is rendered.
type WriteOptions struct {
	FullyQualified  bool
	EmitConstraints bool

	// inClassBody is set while rendering a class body's members: member
	// declarations use their bare name, while a nested class completed at
	// file scope must be qualified with its enclosing class path.
	inClassBody bool
}

// qualifiedClassName renders c's name prefixed with its enclosing class
// chain, for out-of-line definition of a nested class.
func qualifiedClassName(c *graph.ClassDecl) string {
	name := c.EscapedName()
	for p := c.ParentDecl(); p != nil; p = p.ParentDecl() {
		name = p.EscapedName() + "::" + name
	}
	return name
}

func visKeyword(v graph.Visibility) string {
	switch v {
	case graph.Protected:
		return "protected"
	case graph.Private:
		return "private"
	default:
		return "public"
	}
}

func writeTemplateHeader(w sink.Sink, ns *graph.Namespace, params []graph.TemplateParam, fq bool) {
	if len(params) == 0 {
		return
	}
	w.Write("template<")
	for i, p := range params {
		if i > 0 {
			w.Write(",")
			w.WriteSpace(true)
		}
		w.Write("typename")
		w.WriteSpace(true)
		if p.Variadic {
			w.Write("...")
		}
		w.Write(p.Name)
		if p.Default != nil {
			w.WriteSpace(true)
			w.Write("=")
			w.WriteSpace(true)
			w.Write(p.Default.Write(ns, fq))
		}
	}
	w.Write(">")
	w.WriteLine(false)
}

// WriteDeclaration dispatches to the writer for d's concrete kind.
func WriteDeclaration(w sink.Sink, ns *graph.Namespace, d graph.Declaration, state graph.State, planner *resolve.Planner, opts WriteOptions) {
	switch v := d.(type) {
	case *graph.ClassDecl:
		WriteClass(w, ns, v, state, planner, opts)
	case *graph.FunctionDecl:
		WriteFunction(w, ns, v, opts)
	case *graph.VariableDecl:
		WriteVariable(w, ns, v, opts)
	case *graph.TypeAliasDecl:
		WriteTypeAlias(w, ns, v, opts)
	}
}

// WriteClass renders a class at Partial (`class Name;`) or Complete
// (full body, driven by the class body planner) state.
func WriteClass(w sink.Sink, ns *graph.Namespace, c *graph.ClassDecl, state graph.State, planner *resolve.Planner, opts WriteOptions) {
	if state != graph.StateComplete {
		w.Write("class")
		w.WriteSpace(true)
		w.Write(c.EscapedName())
		w.Write(";")
		w.WriteLine(true)
		return
	}

	name := c.EscapedName()
	if !opts.inClassBody {
		name = qualifiedClassName(c)
	}
	writeTemplateHeader(w, ns, c.Template.Params, opts.FullyQualified)
	w.Write("class")
	w.WriteSpace(true)
	w.Write(name)
	if len(c.Bases) > 0 {
		w.WriteSpace(true)
		w.Write(":")
		for i, b := range c.Bases {
			if i > 0 {
				w.Write(",")
			}
			w.WriteSpace(true)
			w.Write(visKeyword(b.Visibility))
			w.WriteSpace(true)
			if b.Virtual {
				w.Write("virtual")
				w.WriteSpace(true)
			}
			w.Write(b.Type.Write(ns, opts.FullyQualified))
		}
	}
	w.WriteSpace(true)
	w.WriteBlockOpen()

	if opts.EmitConstraints {
		for _, cons := range c.Constraints {
			w.Write("static_assert(")
			w.Write(cons.Write(ns, opts.FullyQualified))
			w.Write(");")
			w.WriteLine(true)
		}
	}

	if plan := planner.PlanFor(c); plan != nil {
		memberOpts := opts
		memberOpts.inClassBody = true
		currentVis := graph.Visibility(-1)
		for _, em := range plan.Emissions {
			if em.Visibility != currentVis {
				currentVis = em.Visibility
				w.Write(visKeyword(currentVis))
				w.Write(":")
				w.WriteLine(true)
			}
			WriteDeclaration(w, ns, em.Decl, em.State, planner, memberOpts)
		}
		if len(plan.UsingNames) > 0 {
			w.Write("public:")
			w.WriteLine(true)
			for _, name := range plan.UsingNames {
				w.Write("using")
				w.WriteSpace(true)
				w.Write(name)
				w.Write(";")
				w.WriteLine(true)
			}
		}
	}

	w.WriteBlockClose()
	w.Write(";")
	w.WriteLine(true)
}

// WriteFunction renders a free function, method, or constructor.
func WriteFunction(w sink.Sink, ns *graph.Namespace, f *graph.FunctionDecl, opts WriteOptions) {
	writeTemplateHeader(w, ns, f.Template.Params, opts.FullyQualified)
	if f.InterfaceName != "" {
		w.Write(fmt.Sprintf("[[interface_name(%q)]]", f.InterfaceName))
		w.WriteLine(false)
	}
	if f.Flags.Has(graph.FuncStatic) {
		w.Write("static")
		w.WriteSpace(true)
	}
	if f.Flags.Has(graph.FuncExtern) {
		w.Write("extern")
		w.WriteSpace(true)
	}
	if f.Flags.Has(graph.FuncExplicit) {
		w.Write("explicit")
		w.WriteSpace(true)
	}
	if f.Flags.Has(graph.FuncInline) {
		w.Write("inline")
		w.WriteSpace(true)
	}
	if f.Return != nil {
		w.Write(f.Return.Write(ns, opts.FullyQualified))
		w.WriteSpace(true)
	}
	w.Write(f.EscapedName())
	w.Write("(")
	for i, p := range f.Params {
		if i > 0 {
			w.Write(",")
			w.WriteSpace(true)
		}
		w.Write(p.Type.Write(ns, opts.FullyQualified))
		if p.Name != "" {
			w.WriteSpace(true)
			w.Write(p.Name)
		}
		if p.Default != "" {
			w.WriteSpace(true)
			w.Write("=")
			w.WriteSpace(true)
			w.Write(p.Default)
		}
	}
	w.Write(")")
	if f.Flags.Has(graph.FuncConst) {
		w.WriteSpace(true)
		w.Write("const")
	}
	if f.Flags.Has(graph.FuncNoexcept) {
		w.WriteSpace(true)
		w.Write("noexcept")
	}
	if len(f.Inits) > 0 {
		w.WriteSpace(true)
		w.Write(":")
		for i, in := range f.Inits {
			if i > 0 {
				w.Write(",")
			}
			w.WriteSpace(true)
			w.Write(in.Name)
			w.Write("(")
			w.Write(in.Value)
			w.Write(")")
		}
	}
	if f.Body != "" {
		w.WriteSpace(true)
		w.WriteBlockOpen()
		w.Write(f.Body)
		w.WriteLine(true)
		w.WriteBlockClose()
	} else {
		w.Write(";")
	}
	w.WriteLine(true)
}

// WriteVariable renders a (possibly static/extern) variable declaration.
func WriteVariable(w sink.Sink, ns *graph.Namespace, v *graph.VariableDecl, opts WriteOptions) {
	if v.Flags.Has(graph.FuncExtern) {
		w.Write("extern")
		w.WriteSpace(true)
	}
	if v.Flags.Has(graph.FuncStatic) {
		w.Write("static")
		w.WriteSpace(true)
	}
	w.Write(v.Type.Write(ns, opts.FullyQualified))
	w.WriteSpace(true)
	w.Write(v.EscapedName())
	w.Write(";")
	w.WriteLine(true)
}

// WriteTypeAlias renders a `using Name = Target;` declaration.
func WriteTypeAlias(w sink.Sink, ns *graph.Namespace, a *graph.TypeAliasDecl, opts WriteOptions) {
	writeTemplateHeader(w, ns, a.Template.Params, opts.FullyQualified)
	w.Write("using")
	w.WriteSpace(true)
	w.Write(a.EscapedName())
	w.WriteSpace(true)
	w.Write("=")
	w.WriteSpace(true)
	w.Write(a.Target.Write(ns, opts.FullyQualified))
	w.Write(";")
	w.WriteLine(true)
}
