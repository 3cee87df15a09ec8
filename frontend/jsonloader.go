package frontend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oxhq/cppgen/graph"
)

// JSONLoader builds a declaration graph from JSONModule documents. It is
// the concrete, self-contained frontend the CLI ships as its default
// input format; a real source-IDL reader would instead drive a
// graph.Builder directly through the SymbolSource/ClassSource/...
// interfaces in frontend.go.
//
// Loading runs in two phases so a "declared" type reference can name a
// class defined later in the same file, or in any other file in the
// run: phase one walks every module and creates a stub ClassDecl for
// each class (registering it by qualified name), phase two fills in
// bases, members, constraints, and template parameters now that every
// class in the run is registered.
type JSONLoader struct {
	builder *graph.Builder
	reg     *Registry
	classes []*graph.ClassDecl
}

// NewJSONLoader returns a loader that builds declarations with b.
func NewJSONLoader(b *graph.Builder) *JSONLoader {
	return &JSONLoader{builder: b, reg: NewRegistry()}
}

// Classes returns every class the loader has registered so far, in
// registration order, for passing to library.Library.RunGlobalPasses.
func (l *JSONLoader) Classes() []*graph.ClassDecl { return l.classes }

// DecodeModule parses one JSON document into a JSONModule.
func DecodeModule(data []byte) (*JSONModule, error) {
	var m JSONModule
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("frontend: decoding module: %w", err)
	}
	return &m, nil
}

// LoadModules builds every declaration the given modules contribute and
// returns them in module, then within-module, order.
func (l *JSONLoader) LoadModules(modules []*JSONModule) []graph.Declaration {
	nsCache := make(map[string]*graph.Namespace)
	moduleNS := make([]*graph.Namespace, len(modules))
	classByModule := make([][]*graph.ClassDecl, len(modules))

	var stubs []*JSONClass
	var stubDecls []*graph.ClassDecl
	var stubPrefixes []string

	var registerClass func(src *JSONClass, ns *graph.Namespace, qualPrefix, origin string) *graph.ClassDecl
	registerClass = func(src *JSONClass, ns *graph.Namespace, qualPrefix, origin string) *graph.ClassDecl {
		c := l.builder.Class(src.Name, ns, origin)
		qualified := src.Name
		if qualPrefix != "" {
			qualified = qualPrefix + "::" + src.Name
		}
		l.reg.register(qualified, c)
		stubs = append(stubs, src)
		stubDecls = append(stubDecls, c)
		stubPrefixes = append(stubPrefixes, qualPrefix)
		l.classes = append(l.classes, c)
		for _, m := range src.Members {
			if m.Classification == "class" && m.Class != nil {
				registerClass(m.Class, nil, qualified, origin)
			}
		}
		return c
	}

	for mi, mod := range modules {
		ns := l.namespaceFor(nsCache, mod.Namespace)
		moduleNS[mi] = ns
		classByModule[mi] = make([]*graph.ClassDecl, len(mod.Classes))
		for ci, c := range mod.Classes {
			classByModule[mi][ci] = registerClass(c, ns, "", mod.OriginFile)
		}
	}

	for i, src := range stubs {
		l.fillClass(stubDecls[i], src, stubPrefixes[i])
	}

	var out []graph.Declaration
	for mi, mod := range modules {
		ns := moduleNS[mi]
		for _, c := range classByModule[mi] {
			out = append(out, c)
		}
		for _, f := range mod.Functions {
			out = append(out, l.buildFunction(f, ns, mod.OriginFile))
		}
		for _, v := range mod.Variables {
			out = append(out, l.buildVariable(v, ns, mod.OriginFile))
		}
		for _, a := range mod.Aliases {
			out = append(out, l.buildAlias(a, ns, mod.OriginFile))
		}
	}
	return out
}

func (l *JSONLoader) namespaceFor(cache map[string]*graph.Namespace, path []string) *graph.Namespace {
	var cur *graph.Namespace
	var built strings.Builder
	for i, seg := range path {
		if i > 0 {
			built.WriteString("::")
		}
		built.WriteString(seg)
		key := built.String()
		if ns, ok := cache[key]; ok {
			cur = ns
			continue
		}
		cur = l.builder.Namespace(seg, cur)
		cache[key] = cur
	}
	return cur
}

func (l *JSONLoader) fillClass(c *graph.ClassDecl, src *JSONClass, qualPrefix string) {
	alg := l.builder.Algebra
	c.Template.Params = buildTemplateParams(src.Params, alg, l.reg)
	for _, b := range src.Bases {
		l.builder.AddBase(c, b.Type.Build(alg, l.reg), visibilityOf(b.Visibility))
	}
	c.Constraints = buildArgs(src.Constraints, alg, l.reg)
	qualified := src.Name
	if qualPrefix != "" {
		qualified = qualPrefix + "::" + src.Name
	}
	for _, m := range src.Members {
		member := l.buildMember(m, c.OriginFile(), qualified)
		if member != nil {
			l.builder.AddMember(c, member, visibilityOf(m.Visibility))
		}
	}
}

// buildMember resolves one member declaration. qualPrefix is the
// registry-qualified path of the enclosing class: a nested class is
// registered once, up front, by its qualified path, and this looks it
// back up by that same key to wire it in as a member.
func (l *JSONLoader) buildMember(m JSONMember, origin, qualPrefix string) graph.Declaration {
	switch m.Classification {
	case "class":
		qualified := m.Class.Name
		if qualPrefix != "" {
			qualified = qualPrefix + "::" + m.Class.Name
		}
		decl, ok := l.reg.Lookup(qualified)
		if !ok {
			return nil
		}
		return decl
	case "function":
		return l.buildFunction(m.Function, nil, origin)
	case "variable":
		return l.buildVariable(m.Variable, nil, origin)
	case "alias":
		return l.buildAlias(m.Alias, nil, origin)
	default:
		return nil
	}
}

func (l *JSONLoader) buildFunction(src *JSONFunction, ns *graph.Namespace, origin string) *graph.FunctionDecl {
	alg := l.builder.Algebra
	f := l.builder.Function(src.Name, ns, origin)
	f.Template.Params = buildTemplateParams(src.TemplateParams, alg, l.reg)
	f.Return = src.Return.Build(alg, l.reg)
	for _, p := range src.Params {
		f.Params = append(f.Params, graph.Param{Type: p.Type.Build(alg, l.reg), Name: p.Name, Default: p.Default})
	}
	for _, in := range src.Inits {
		f.Inits = append(f.Inits, graph.Init{Name: in.Name, Value: in.Value})
	}
	f.Flags = flagsOf(src.Flags)
	f.Body = src.Body
	f.InterfaceName = src.InterfaceName
	return f
}

func (l *JSONLoader) buildVariable(src *JSONVariable, ns *graph.Namespace, origin string) *graph.VariableDecl {
	alg := l.builder.Algebra
	v := l.builder.Variable(src.Name, ns, origin)
	v.Type = src.Type.Build(alg, l.reg)
	v.Flags = flagsOf(src.Flags)
	return v
}

func (l *JSONLoader) buildAlias(src *JSONAlias, ns *graph.Namespace, origin string) *graph.TypeAliasDecl {
	alg := l.builder.Algebra
	a := l.builder.TypeAlias(src.Name, ns, origin)
	a.Template.Params = buildTemplateParams(src.Params, alg, l.reg)
	a.Target = src.Target.Build(alg, l.reg)
	return a
}
