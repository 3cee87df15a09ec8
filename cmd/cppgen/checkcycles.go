package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/cppgen/frontend"
	"github.com/oxhq/cppgen/graph"
	"github.com/oxhq/cppgen/resolve"
)

// newCheckCyclesCommand builds the dry-run mode that separates cycle
// detection from emission: the resolver runs with a counting write
// callback instead of a sink, and any unbreakable cycle is reported and
// exits 1 without producing output.
func newCheckCyclesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-cycles <module.json...>",
		Short: "Report dependency cycles without generating any output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return usageError{err}
			}
			if len(inputs) == 0 {
				return usageError{fmt.Errorf("no input files matched %v", args)}
			}

			modules := make([]*frontend.JSONModule, 0, len(inputs))
			for _, path := range inputs {
				data, err := os.ReadFile(path)
				if err != nil {
					return ioError{fmt.Errorf("reading %s: %w", path, err)}
				}
				mod, err := frontend.DecodeModule(data)
				if err != nil {
					return usageError{fmt.Errorf("%s: %w", path, err)}
				}
				modules = append(modules, mod)
			}

			builder := graph.NewBuilder()
			loader := frontend.NewJSONLoader(builder)
			decls := loader.LoadModules(modules)
			for _, d := range decls {
				graph.Analyze(d)
			}

			planner := resolve.NewPlanner()
			for _, c := range loader.Classes() {
				resolve.MergeClassMembers(builder.Algebra, c)
			}
			for _, c := range loader.Classes() {
				resolve.ComputeVirtualBases(c)
			}
			for _, c := range loader.Classes() {
				resolve.ComputeUsingDeclarations(c, resolve.DefaultUsingNames)
			}

			count := 0
			r := resolve.NewResolver(func(graph.Declaration, graph.State) error {
				count++
				return nil
			}, resolve.WithClassBodyPlanner(planner.AsClassBodyPlanner()), resolve.NestedViaParent(true))

			targets := make([]resolve.Target, len(decls))
			for i, d := range decls {
				targets[i] = resolve.NewTarget(d, d.MaxState())
			}

			if err := r.Resolve(targets); err != nil {
				var cycleErr *resolve.CycleError
				if errors.As(err, &cycleErr) {
					fmt.Fprint(cmd.ErrOrStderr(), cycleErr.Format())
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				return cycleError{err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "no cycles; %d declarations reachable\n", count)
			return nil
		},
	}
	return cmd
}
