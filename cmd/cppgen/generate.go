package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/cppgen/frontend"
	"github.com/oxhq/cppgen/graph"
	"github.com/oxhq/cppgen/internal/diag"
	"github.com/oxhq/cppgen/library"
)

// genDefaults holds the generate command's flag defaults, sourced from
// CPPGEN_* environment variables (populated from a local .env by main,
// when one exists) so repeated runs against the same project don't need
// the flags respelled.
type genDefaults struct {
	OutDir       string
	Pretty       bool
	IgnoreErrors bool
}

// loadGenDefaults loads flag defaults from environment variables.
func loadGenDefaults() genDefaults {
	d := genDefaults{
		OutDir: os.Getenv("CPPGEN_OUT"),
		Pretty: true, // Default value
	}
	if prettyStr := os.Getenv("CPPGEN_PRETTY"); prettyStr != "" {
		if pretty, err := strconv.ParseBool(prettyStr); err == nil {
			d.Pretty = pretty
		}
	}
	if ignoreStr := os.Getenv("CPPGEN_IGNORE_ERRORS"); ignoreStr != "" {
		if ignore, err := strconv.ParseBool(ignoreStr); err == nil {
			d.IgnoreErrors = ignore
		}
	}
	return d
}

func newGenerateCommand() *cobra.Command {
	var (
		outDir          string
		pretty          bool
		emitConstraints bool
		fullyQualified  bool
		namespace       string
		verbose         bool
		ignoreErrors    bool
		listFiles       bool
		showDiff        bool
	)
	defaults := loadGenDefaults()

	cmd := &cobra.Command{
		Use:   "generate <module.json...>",
		Short: "Resolve and emit the header text for a set of JSON type modules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return usageError{err}
			}
			if len(inputs) == 0 {
				return usageError{fmt.Errorf("no input files matched %v", args)}
			}

			run := diag.NewRun()

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
				if namespace != "" {
					mod.Namespace = append(strings.Split(namespace, "::"), mod.Namespace...)
				}
				if mod.OriginFile == "" {
					mod.OriginFile = path
				}
				modules = append(modules, mod)
			}

			builder := graph.NewBuilder()
			loader := frontend.NewJSONLoader(builder)
			decls := loader.LoadModules(modules)
			for _, d := range decls {
				graph.Analyze(d)
			}

			lib := library.New(builder.Algebra,
				library.Pretty(pretty),
				library.EmitConstraints(emitConstraints),
				library.FullyQualified(fullyQualified),
				library.IgnoreErrors(ignoreErrors),
			)

			outFiles := make(map[string]*library.OutputFile, len(inputs))
			order := make([]string, 0, len(inputs))
			for _, path := range inputs {
				name := headerNameFor(path)
				if _, ok := outFiles[name]; ok {
					continue
				}
				outFiles[name] = lib.AddFile(name)
				order = append(order, name)
				lib.InScope(path)
			}

			if listFiles {
				for _, name := range order {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			preferredFor := func(originFile string) *library.OutputFile {
				if f, ok := outFiles[headerNameFor(originFile)]; ok {
					return f
				}
				return outFiles[order[0]]
			}

			for _, d := range decls {
				lib.Register(d, d.MaxState(), preferredFor(d.OriginFile()))
			}
			lib.RunGlobalPasses(loader.Classes())

			rendered, diagnostics, err := lib.Generate()
			run.RecordResolverDiagnostics(diagnostics)
			if err != nil {
				run.Finish(err)
				if verbose {
					printRunSummary(cmd, run)
				}
				return cycleError{err}
			}
			run.Finish(nil)

			for _, name := range order {
				run.RecordFileCount(name, countDeclarations(decls, name, outFiles))
			}

			if err := writeOutputs(cmd, outDir, order, rendered, showDiff); err != nil {
				return ioError{err}
			}

			if verbose {
				printRunSummary(cmd, run)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&outDir, "out", "o", defaults.OutDir, "Output directory for generated headers (default: print to stdout; env CPPGEN_OUT).")
	fs.BoolVar(&pretty, "pretty", defaults.Pretty, "Pretty-print with indentation (false selects compact mode; env CPPGEN_PRETTY).")
	fs.BoolVar(&emitConstraints, "constraints", false, "Emit static_assert constraints for class template arguments.")
	fs.BoolVar(&fullyQualified, "full-path", false, "Render every declared-type reference fully qualified.")
	fs.StringVar(&namespace, "namespace", "", "Wrap every emitted declaration in this namespace (\"::\"-separated).")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Print a diagnostics summary after generation.")
	fs.BoolVar(&ignoreErrors, "ignore-errors", defaults.IgnoreErrors, "Downgrade unbreakable cycles to Partial instead of failing the run (env CPPGEN_IGNORE_ERRORS).")
	fs.BoolVar(&listFiles, "list-files", false, "Print the resolved file emission order and exit without generating.")
	fs.BoolVarP(&showDiff, "diff", "D", false, "Show a unified diff against any existing output file instead of overwriting it.")

	return cmd
}

// expandInputs resolves each CLI argument as a doublestar glob pattern
// against the working directory.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func headerNameFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".h"
}

func countDeclarations(decls []graph.Declaration, file string, outFiles map[string]*library.OutputFile) int {
	n := 0
	for _, d := range decls {
		if headerNameFor(d.OriginFile()) == file || (d.OriginFile() == "" && file == "") {
			n++
		}
	}
	return n
}

func writeOutputs(cmd *cobra.Command, outDir string, order []string, rendered map[string]string, showDiff bool) error {
	for _, name := range order {
		text := rendered[name]
		if outDir == "" && !showDiff {
			fmt.Fprintf(cmd.OutOrStdout(), "// ===== %s =====\n%s", name, text)
			continue
		}
		path := name
		if outDir != "" {
			path = filepath.Join(outDir, name)
		}
		if showDiff {
			existing, _ := os.ReadFile(path)
			if string(existing) == text {
				continue
			}
			d := difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(existing)),
				B:        difflib.SplitLines(text),
				FromFile: path,
				ToFile:   path + " (generated)",
				Context:  3,
			}
			diffText, err := difflib.GetUnifiedDiffString(d)
			if err != nil {
				return fmt.Errorf("diffing %s: %w", path, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), diffText)
			continue
		}
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", outDir, err)
			}
		}
		if err := writeFileAtomic(path, text); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// writeFileAtomic writes content to a temporary file next to path and
// renames it into place, so an interrupted run never leaves a truncated
// header behind.
func writeFileAtomic(path, content string) error {
	tempPath := path + ".cppgen.tmp"
	if err := os.WriteFile(tempPath, []byte(content), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, run *diag.Run) {
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: success=%v\n", run.ID, run.Success)
	for _, ev := range run.Events {
		switch ev.Kind {
		case diag.EventDowngrade:
			fmt.Fprintf(cmd.ErrOrStderr(), "  downgrade: %s\n", ev.Message)
		case diag.EventFileCount:
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %d declarations\n", ev.File, ev.Declared)
		}
	}
}
