// Package library implements the library/file writer: it
// orders owned files into a DAG topological sequence, drives the
// dependency resolver once across every registered declaration, and
// steers each emission into its preferred file while preserving the
// single global forward-declaration invariant a per-file resolver would
// lose.
package library

import (
	"fmt"
	"sort"

	"github.com/oxhq/cppgen/graph"
	"github.com/oxhq/cppgen/resolve"
	"github.com/oxhq/cppgen/sink"
)

// regTarget pairs a registered declaration's resolver target with the
// file it prefers to land in.
type regTarget struct {
	decl      graph.Declaration
	state     graph.State
	preferred *OutputFile
}

// Library owns a set of output files and the declarations registered for
// emission into them.
type Library struct {
	alg     *graph.Algebra
	planner *resolve.Planner

	files   []*OutputFile
	targets []regTarget
	inScope map[string]bool

	usingNames      []string
	ignoreErrors    bool
	pretty          bool
	fullyQualified  bool
	emitConstraints bool
}

// Option configures a Library.
type Option func(*Library)

// Pretty selects pretty-mode (true) or compact-mode (false) text output.
func Pretty(pretty bool) Option { return func(l *Library) { l.pretty = pretty } }

// FullyQualified forces every declared-type reference to render its fully
// qualified path rather than the shortest path from the writing namespace.
func FullyQualified(fq bool) Option { return func(l *Library) { l.fullyQualified = fq } }

// EmitConstraints enables static_assert emission for class constraint
// expressions.
func EmitConstraints(emit bool) Option { return func(l *Library) { l.emitConstraints = emit } }

// IgnoreErrors enables the resolver's ignore-errors mode.
func IgnoreErrors(ignore bool) Option { return func(l *Library) { l.ignoreErrors = ignore } }

// UsingNames overrides the base-member using-declaration name set;
// defaults to resolve.DefaultUsingNames.
func UsingNames(names []string) Option { return func(l *Library) { l.usingNames = names } }

// New constructs an empty library backed by alg's intern table.
func New(alg *graph.Algebra, opts ...Option) *Library {
	l := &Library{
		alg:        alg,
		planner:    resolve.NewPlanner(),
		inScope:    make(map[string]bool),
		usingNames: resolve.DefaultUsingNames,
		pretty:     true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddFile registers a new owned output file.
func (l *Library) AddFile(name string) *OutputFile {
	f := &OutputFile{Name: name}
	l.files = append(l.files, f)
	return f
}

// InScope marks an origin-file tag as one the writer emits declarations
// for; declarations carrying any other origin tag stay registered in the
// graph for reference resolution but are skipped by the writer.
// An empty origin tag is always in scope.
func (l *Library) InScope(originFile string) { l.inScope[originFile] = true }

// Register schedules decl for emission at the given target state,
// preferring the given file.
func (l *Library) Register(decl graph.Declaration, state graph.State, preferred *OutputFile) {
	l.targets = append(l.targets, regTarget{decl: decl, state: state, preferred: preferred})
}

// RunGlobalPasses executes the duplicate-merge, virtual-base, and
// base-member using-declaration passes over every class the
// frontend built. Merge runs first so the virtual-base walk and the
// using-declaration scan both see the deduplicated member and base lists.
func (l *Library) RunGlobalPasses(classes []*graph.ClassDecl) {
	for _, c := range classes {
		resolve.MergeClassMembers(l.alg, c)
	}
	for _, c := range classes {
		resolve.ComputeVirtualBases(c)
	}
	for _, c := range classes {
		resolve.ComputeUsingDeclarations(c, l.usingNames)
	}
}

func (l *Library) newSink() sink.Sink {
	if l.pretty {
		return sink.NewPretty()
	}
	return sink.NewCompact()
}

func writeFileHeader(f *OutputFile) {
	guard := f.Guard()
	f.sink.Write("#ifndef " + guard)
	f.sink.WriteLine(true)
	f.sink.Write("#define " + guard)
	f.sink.WriteLine(true)
	for _, inc := range f.Includes {
		if inc.Internal {
			f.sink.Write(fmt.Sprintf("#include %q", inc.Name))
		} else {
			f.sink.Write(fmt.Sprintf("#include <%s>", inc.Name))
		}
		f.sink.WriteLine(true)
	}
	f.sink.WriteLine(false)
}

func writeFileFooter(f *OutputFile) {
	f.sink.Write("#endif")
	f.sink.WriteLine(true)
}

// Generate runs the full library-writer algorithm and returns
// the rendered text of every owned file keyed by file name, plus whatever
// diagnostics the resolver accumulated (downgrades under ignore-errors
// mode).
func (l *Library) Generate() (map[string]string, []resolve.Diagnostic, error) {
	order := orderFiles(l.files)
	fileIndex := make(map[*OutputFile]int, len(order))
	for i, f := range order {
		fileIndex[f] = i
	}

	sorted := make([]regTarget, len(l.targets))
	copy(sorted, l.targets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fileIndex[sorted[i].preferred] < fileIndex[sorted[j].preferred]
	})
	sorted = expandNestedTargets(sorted)

	for _, f := range order {
		f.remaining = 0
		f.currentNS = nil
		f.sink = l.newSink()
	}
	targetState := make(map[graph.Declaration]graph.State, len(sorted))
	preferredOf := make(map[graph.Declaration]*OutputFile, len(sorted))
	for _, t := range sorted {
		t.preferred.remaining++
		targetState[t.decl] = t.state
		preferredOf[t.decl] = t.preferred
	}

	for _, f := range order {
		writeFileHeader(f)
	}

	opts := WriteOptions{FullyQualified: l.fullyQualified, EmitConstraints: l.emitConstraints}
	decremented := make(map[graph.Declaration]bool, len(sorted))
	cursor := 0

	emit := func(d graph.Declaration, state graph.State) error {
		for cursor < len(order) && order[cursor].remaining == 0 {
			cursor++
		}
		if cursor >= len(order) {
			return fmt.Errorf("library: no file with remaining capacity left to receive %s", d.Name())
		}
		current := order[cursor]

		if declNS := enclosingNamespace(d); declNS != nil || current.currentNS != nil {
			for _, op := range graph.ChangeNamespace(current.currentNS, declNS) {
				if op.Open {
					current.sink.Write("namespace")
					current.sink.WriteSpace(true)
					for _, attr := range op.NS.Attrs {
						current.sink.Write("[[" + attr + "]]")
						current.sink.WriteSpace(true)
					}
					current.sink.Write(op.NS.Name)
					current.sink.WriteSpace(true)
					current.sink.WriteBlockOpen()
				} else {
					current.sink.WriteBlockClose()
					current.sink.WriteLine(true)
				}
			}
			current.currentNS = declNS
		}

		if origin := d.OriginFile(); origin == "" || l.inScope[origin] {
			WriteDeclaration(current.sink, current.currentNS, d, state, l.planner, opts)
		}

		if pref, ok := preferredOf[d]; ok && !decremented[d] && state >= targetState[d] {
			pref.remaining--
			decremented[d] = true
		}
		return nil
	}

	r := resolve.NewResolver(emit,
		resolve.IgnoreErrors(l.ignoreErrors),
		resolve.WithClassBodyPlanner(l.planner.AsClassBodyPlanner()),
		resolve.NestedViaParent(true),
	)

	resolverTargets := make([]resolve.Target, len(sorted))
	for i, t := range sorted {
		resolverTargets[i] = resolve.NewTarget(t.decl, t.state)
	}
	if err := r.Resolve(resolverTargets); err != nil {
		return nil, r.Diagnostics, err
	}

	out := make(map[string]string, len(order))
	for _, f := range order {
		for f.currentNS != nil {
			f.sink.WriteBlockClose()
			f.sink.WriteLine(true)
			f.currentNS = f.currentNS.Parent
		}
		writeFileFooter(f)
		out[f.Name] = f.sink.String()
	}
	return out, r.Diagnostics, nil
}

// enclosingNamespace returns the namespace a declaration's file-scope
// emission belongs to: its own for top-level declarations, the outermost
// ancestor's for nested ones (a nested class completed out of line still
// lives in the namespace of the class that contains it).
func enclosingNamespace(d graph.Declaration) *graph.Namespace {
	for d.ParentDecl() != nil {
		d = d.ParentDecl()
	}
	return d.Namespace()
}

// expandNestedTargets appends, after every Complete class target, the
// nested class members the reference analyzer left unmarked: their bodies
// are not expanded inside the parent (only forward-declared there), so
// they still need a file-scope Complete emission of their own, directly
// after the class whose body announced them.
func expandNestedTargets(sorted []regTarget) []regTarget {
	seen := make(map[graph.Declaration]bool, len(sorted))
	for _, t := range sorted {
		seen[t.decl] = true
	}
	out := make([]regTarget, 0, len(sorted))
	var collect func(c *graph.ClassDecl, preferred *OutputFile)
	collect = func(c *graph.ClassDecl, preferred *OutputFile) {
		for _, m := range c.Members {
			inner, ok := m.Decl.(*graph.ClassDecl)
			if !ok {
				continue
			}
			if !graph.IsReferenced(inner) && !seen[inner] {
				seen[inner] = true
				out = append(out, regTarget{decl: inner, state: graph.StateComplete, preferred: preferred})
			}
			collect(inner, preferred)
		}
	}
	for _, t := range sorted {
		out = append(out, t)
		if c, ok := t.decl.(*graph.ClassDecl); ok && t.state == graph.StateComplete {
			collect(c, t.preferred)
		}
	}
	return out
}
