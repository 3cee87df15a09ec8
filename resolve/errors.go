package resolve

import "errors"

// ErrInconsistentMerge marks a merge that accepts but produces
// contradictory types. That is a programmer bug in the frontend's
// declarations, not a condition the resolver detects or raises, so no code
// path in this package returns it; it is exported only so callers building
// their own merge predicates on top of MergeSiblings have a conventional
// sentinel to use.
var ErrInconsistentMerge = errors.New("resolve: inconsistent merge")
