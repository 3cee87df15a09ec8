// Package diag implements the run-scoped diagnostic log a generate run
// accumulates: cycle downgrades, per-file declaration counts, and the
// overall outcome, keyed by a unique run ID the way a session-history
// record would be.
package diag

import (
	"github.com/google/uuid"

	"github.com/oxhq/cppgen/resolve"
)

// EventKind classifies one diagnostic event.
type EventKind string

const (
	EventDowngrade EventKind = "downgrade"
	EventFileCount EventKind = "file_count"
)

// Event is a single notable occurrence during a generate run.
type Event struct {
	Kind       EventKind `json:"kind"`
	Message    string    `json:"message"`
	File       string    `json:"file,omitempty"`
	Declared   int       `json:"declared,omitempty"`
}

// Run is the envelope for one generate invocation's diagnostics.
type Run struct {
	ID      string  `json:"id"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Events  []Event `json:"events,omitempty"`
}

// NewRun starts a run record stamped with a fresh UUID.
func NewRun() *Run {
	return &Run{ID: uuid.NewString()}
}

// RecordResolverDiagnostics appends one downgrade event per diagnostic the
// resolver accumulated under ignore-errors mode.
func (r *Run) RecordResolverDiagnostics(diags []resolve.Diagnostic) {
	for _, d := range diags {
		r.Events = append(r.Events, Event{Kind: EventDowngrade, Message: d.Message})
	}
}

// RecordFileCount appends a per-file declaration-count event (how many
// declarations the library writer preferred into each output file).
func (r *Run) RecordFileCount(file string, declared int) {
	r.Events = append(r.Events, Event{Kind: EventFileCount, File: file, Declared: declared})
}

// Finish marks the run outcome. err may be nil.
func (r *Run) Finish(err error) {
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}
