package frontend

import "github.com/oxhq/cppgen/graph"

// JSONModule is one input file's worth of top-level declarations: the
// default, self-contained input format the CLI reads when no other
// frontend is wired in.
type JSONModule struct {
	OriginFile string          `json:"origin_file"`
	Namespace  []string        `json:"namespace"`
	Classes    []*JSONClass    `json:"classes,omitempty"`
	Functions  []*JSONFunction `json:"functions,omitempty"`
	Variables  []*JSONVariable `json:"variables,omitempty"`
	Aliases    []*JSONAlias    `json:"aliases,omitempty"`
}

// JSONType is a recursive type-expression node decoded from JSON and
// built into an interned graph.Expr via Build. "declared" references
// another class by its registry-qualified name (its enclosing-class
// nesting path joined with "::"; the module namespace is not part of the
// key); unresolved names fall back to a bare literal name rather than
// failing the load.
type JSONType struct {
	Kind      string      `json:"kind"`
	Name      string      `json:"name,omitempty"`
	Inner     *JSONType   `json:"inner,omitempty"`
	Member    string      `json:"member,omitempty"`
	Head      *JSONType   `json:"head,omitempty"`
	Args      []*JSONType `json:"args,omitempty"`
	Return    *JSONType   `json:"return,omitempty"`
	Condition *JSONType   `json:"condition,omitempty"`
	Value     *JSONType   `json:"value,omitempty"`
}

// Build realizes t as an interned expression.
func (t *JSONType) Build(alg *graph.Algebra, reg *Registry) graph.Expr {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case "name":
		return alg.Name(t.Name)
	case "bool":
		return alg.Bool(t.Name == "true")
	case "declared":
		if c, ok := reg.Lookup(t.Name); ok {
			return alg.Declared(c)
		}
		return alg.Name(t.Name)
	case "pointer":
		return alg.Pointer(t.Inner.Build(alg, reg))
	case "const_pointer":
		return alg.ConstPointer(t.Inner.Build(alg, reg))
	case "reference":
		return alg.Reference(t.Inner.Build(alg, reg))
	case "const_reference":
		return alg.ConstReference(t.Inner.Build(alg, reg))
	case "rvalue_reference":
		return alg.RvalueReference(t.Inner.Build(alg, reg))
	case "variadic":
		return alg.Expand(t.Inner.Build(alg, reg))
	case "member":
		return alg.Member(t.Inner.Build(alg, reg), t.Member)
	case "template":
		return alg.TemplateOf(t.Head.Build(alg, reg), buildArgs(t.Args, alg, reg)...)
	case "union":
		return alg.UnionOf(graph.Pointer, buildArgs(t.Args, alg, reg)...)
	case "function":
		return alg.FunctionOf(t.Return.Build(alg, reg), buildArgs(t.Args, alg, reg)...)
	case "enable_if":
		return alg.EnableIf(t.Condition.Build(alg, reg), t.Value.Build(alg, reg))
	default:
		return alg.Name(t.Name)
	}
}

func buildArgs(args []*JSONType, alg *graph.Algebra, reg *Registry) []graph.Expr {
	out := make([]graph.Expr, len(args))
	for i, a := range args {
		out[i] = a.Build(alg, reg)
	}
	return out
}

// JSONTemplateParam decodes one template parameter entry.
type JSONTemplateParam struct {
	Name     string    `json:"name"`
	Variadic bool      `json:"variadic,omitempty"`
	Default  *JSONType `json:"default,omitempty"`
}

// JSONClass decodes one class/interface declaration.
type JSONClass struct {
	Name        string              `json:"name"`
	Bases       []JSONBase          `json:"bases,omitempty"`
	Members     []JSONMember        `json:"members,omitempty"`
	Constraints []*JSONType         `json:"constraints,omitempty"`
	Params      []JSONTemplateParam `json:"params,omitempty"`
}

// JSONBase decodes one base-class list entry.
type JSONBase struct {
	Type       *JSONType `json:"type"`
	Visibility string    `json:"visibility,omitempty"`
}

// JSONMember decodes one class member; Classification selects which of
// Class/Function/Variable/Alias is populated.
type JSONMember struct {
	Name           string        `json:"name"`
	Visibility     string        `json:"visibility,omitempty"`
	Classification string        `json:"kind"`
	Class          *JSONClass    `json:"class,omitempty"`
	Function       *JSONFunction `json:"function,omitempty"`
	Variable       *JSONVariable `json:"variable,omitempty"`
	Alias          *JSONAlias    `json:"alias,omitempty"`
}

// JSONParam decodes one function parameter.
type JSONParam struct {
	Type    *JSONType `json:"type"`
	Name    string    `json:"name,omitempty"`
	Default string    `json:"default,omitempty"`
}

// JSONInit decodes one constructor initializer-list entry.
type JSONInit struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// JSONFunction decodes one function/method/constructor declaration.
// Flags is the textual spelling of graph.FuncFlags bits: static, const,
// explicit, inline, noexcept, extern.
type JSONFunction struct {
	Name          string              `json:"name"`
	Return        *JSONType           `json:"return,omitempty"`
	Params        []JSONParam         `json:"params,omitempty"`
	Inits         []JSONInit          `json:"inits,omitempty"`
	Flags         []string            `json:"flags,omitempty"`
	Body          string              `json:"body,omitempty"`
	InterfaceName string              `json:"interface_name,omitempty"`
	TemplateParams []JSONTemplateParam `json:"template_params,omitempty"`
}

// JSONVariable decodes one variable declaration.
type JSONVariable struct {
	Name  string    `json:"name"`
	Type  *JSONType `json:"type"`
	Flags []string  `json:"flags,omitempty"`
}

// JSONAlias decodes one `using Name = Target;` declaration.
type JSONAlias struct {
	Name   string              `json:"name"`
	Target *JSONType           `json:"target"`
	Params []JSONTemplateParam `json:"params,omitempty"`
}

func visibilityOf(s string) graph.Visibility {
	switch s {
	case "protected":
		return graph.Protected
	case "private":
		return graph.Private
	default:
		return graph.Public
	}
}

func flagsOf(names []string) graph.FuncFlags {
	var f graph.FuncFlags
	for _, n := range names {
		switch n {
		case "static":
			f |= graph.FuncStatic
		case "const":
			f |= graph.FuncConst
		case "explicit":
			f |= graph.FuncExplicit
		case "inline":
			f |= graph.FuncInline
		case "noexcept":
			f |= graph.FuncNoexcept
		case "extern":
			f |= graph.FuncExtern
		}
	}
	return f
}

func buildTemplateParams(params []JSONTemplateParam, alg *graph.Algebra, reg *Registry) []graph.TemplateParam {
	out := make([]graph.TemplateParam, len(params))
	for i, p := range params {
		out[i] = graph.TemplateParam{Name: p.Name, Variadic: p.Variadic, Default: p.Default.Build(alg, reg)}
	}
	return out
}
