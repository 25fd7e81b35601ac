// cmd_ssa.go
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	herbrand "github.com/BlackVectorOps/herbrand"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// -- SSA COMMAND --

// SSAOptions configures the ssa command.
type SSAOptions struct {
	JSON    bool
	Func    string
	Workers int
}

func runSSA(w io.Writer, target string, opts SSAOptions) error {
	fns, err := loadFunctions(target)
	if err != nil {
		return err
	}
	if opts.Func != "" {
		filtered := fns[:0]
		for _, fn := range fns {
			if fn.Name() == opts.Func {
				filtered = append(filtered, fn)
			}
		}
		fns = filtered
	}
	if len(fns) == 0 {
		return fmt.Errorf("no function bodies found in %s", target)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Each run owns its registry and partitions, so analyses of distinct
	// functions share nothing and can proceed concurrently.
	outputs := make([]AnalysisOutput, len(fns))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(workers)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			out := AnalysisOutput{Function: fn.String()}
			prog, err := herbrand.ProgramFromSSA(fn)
			if err != nil {
				out.ErrorMessage = err.Error()
			} else {
				a := herbrand.Analyze(prog)
				out = buildAnalysisOutput(a)
				out.Function = fn.String()
			}
			mu.Lock()
			outputs[i] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.JSON {
		return writeJSON(w, outputs)
	}
	for _, out := range outputs {
		fmt.Fprintf(w, "=== %s ===\n", out.Function)
		if out.ErrorMessage != "" {
			fmt.Fprintf(w, "\tskipped: %s\n\n", out.ErrorMessage)
			continue
		}
		fmt.Fprintf(w, "universe %d, %d iteration(s)\n", out.UniverseSize, out.Iterations)
		for _, node := range out.Nodes {
			fmt.Fprintf(w, "[%d] %s", node.Node, node.Kind)
			if node.Instruction != "" {
				fmt.Fprintf(w, " (%s)", node.Instruction)
			}
			fmt.Fprintf(w, "\n\t%s\n", node.Partition)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// loadFunctions loads the target packages, builds SSA, and returns every
// non-synthetic function with a body, sorted by full function name.
func loadFunctions(target string) ([]*ssa.Function, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:   dirOf(target),
		Tests: false,
	}
	pattern := "./..."
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		pattern = "file=" + target
	} else if err != nil {
		// Not a path on disk: treat it as an import pattern.
		pattern = target
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", target, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("packages in %s contain errors", target)
	}

	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	if prog == nil {
		return nil, fmt.Errorf("failed to build SSA for %s", target)
	}
	prog.Build()

	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Synthetic != "" || len(fn.Blocks) == 0 {
			continue
		}
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
	return fns, nil
}

func dirOf(target string) string {
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}
