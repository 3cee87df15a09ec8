package library

import (
	"strings"

	"github.com/oxhq/cppgen/graph"
	"github.com/oxhq/cppgen/sink"
)

// Include is one entry of a file's include list: an internal
// include references another file owned by the same library; an external
// include names a system or third-party header.
type Include struct {
	Name     string
	Internal bool
	File     *OutputFile
}

// OutputFile is one emitted header: a name, an ordered include list, and
// the running state the writer accumulates as it streams declarations
// into it.
type OutputFile struct {
	Name     string
	Includes []Include

	remaining int // declarations still preferred to this file, not yet emitted
	currentNS *graph.Namespace
	sink      sink.Sink
}

// Guard derives the include-guard macro name by uppercasing the file name
// and replacing every non-alphanumeric separator with an underscore.
func (f *OutputFile) Guard() string {
	var sb strings.Builder
	for _, r := range f.Name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// IncludeExternal appends a system/library header include, rendered as
// `#include <name>`.
func (f *OutputFile) IncludeExternal(name string) {
	f.Includes = append(f.Includes, Include{Name: name})
}

// IncludeFile appends an include of another file owned by this library,
// rendered as `#include "name"`.
func (f *OutputFile) IncludeFile(other *OutputFile) {
	f.Includes = append(f.Includes, Include{Name: other.Name, Internal: true, File: other})
}

// orderFiles computes the DAG topological order of files: every internal include is emitted before the file that includes it,
// ties broken by insertion order (a depth-first post-order walk).
func orderFiles(files []*OutputFile) []*OutputFile {
	order := make([]*OutputFile, 0, len(files))
	visited := make(map[*OutputFile]bool, len(files))

	var visit func(f *OutputFile)
	visit = func(f *OutputFile) {
		if visited[f] {
			return
		}
		visited[f] = true
		for _, inc := range f.Includes {
			if inc.Internal && inc.File != nil {
				visit(inc.File)
			}
		}
		order = append(order, f)
	}
	for _, f := range files {
		visit(f)
	}
	return order
}
