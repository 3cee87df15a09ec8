// Command cppgen reads a set of JSON-described type modules and emits the
// equivalent C++ header text: a resolved dependency graph, deduplicated
// overloads, virtual bases, and forward-declaration discipline, with no
// guarantee about input compilability (the tool never executes anything it
// generates).
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/cppgen/resolve"
)

// Exit codes:
// 0 success, 1 a strict-mode dependency cycle, 2 an I/O failure, 3 bad
// usage.
const (
	exitSuccess = 0
	exitCycle   = 1
	exitIO      = 2
	exitUsage   = 3
)

func main() {
	// Populate CPPGEN_* defaults (see loadGenDefaults) from a local .env
	// before command construction reads them. Best-effort: a missing .env
	// is not an error.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "cppgen",
		Short: "Generate C++ headers from a JSON type-module description",
		Long:  "cppgen resolves a declaration graph described by one or more JSON modules and writes the equivalent C++ header text.",
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCommand())
	root.AddCommand(newCheckCyclesCommand())

	if err := root.Execute(); err != nil {
		printError(err)
		os.Exit(exitCodeFor(err))
	}
}

// printError prints the full causal-chain trace for a dependency cycle
// (one line per frame, "required ..." interleaved with "because ... is
// referenced as a <role> of ..."), or a plain one-line message for any
// other error kind.
func printError(err error) {
	var cycleErr *resolve.CycleError
	if errors.As(err, &cycleErr) {
		fmt.Fprint(os.Stderr, cycleErr.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case usageError:
		return exitUsage
	case ioError:
		return exitIO
	case cycleError:
		return exitCycle
	default:
		return exitUsage
	}
}

// usageError, ioError, and cycleError tag an error with the exit-code
// bucket it belongs to without losing the wrapped message.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type ioError struct{ err error }

func (e ioError) Error() string { return e.err.Error() }
func (e ioError) Unwrap() error { return e.err }

type cycleError struct{ err error }

func (e cycleError) Error() string { return e.err.Error() }
func (e cycleError) Unwrap() error { return e.err }
