// cmd_analyze.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	herbrand "github.com/BlackVectorOps/herbrand"
)

// -- ANALYZE COMMAND --

// AnalyzeOptions configures the analyze command.
type AnalyzeOptions struct {
	JSON       bool
	CFG        bool
	Iterations bool
}

func runAnalyze(w io.Writer, file string, opts AnalyzeOptions) error {
	prog, err := herbrand.ParseFile(file)
	if err != nil {
		return err
	}

	a := herbrand.NewAnalysis(prog)
	if opts.Iterations && !opts.JSON {
		a.Observer = func(iteration int) {
			fmt.Fprintf(w, "--- iteration %d ---\n", iteration)
			writePartitionTable(w, a)
		}
	}
	a.Run()

	if opts.JSON {
		out := buildAnalysisOutput(a)
		out.File = file
		return writeJSON(w, out)
	}

	if opts.CFG {
		fmt.Fprintln(w, prog)
		fmt.Fprintln(w, a.Graph)
	}
	fmt.Fprintln(w, "Initial Partition:")
	fmt.Fprintf(w, "\t%s\n\n", a.InitialPartition().Render(a.Univ))
	fmt.Fprintf(w, "Converged after %d iteration(s):\n", a.Iterations)
	writePartitionTable(w, a)
	return nil
}

func writePartitionTable(w io.Writer, a *herbrand.Analysis) {
	for n := range a.Graph.Nodes {
		node := &a.Graph.Nodes[n]
		fmt.Fprintf(w, "[%d] %s", n, nodeKindString(node.Kind))
		if node.Kind == herbrand.NodeTransfer {
			fmt.Fprintf(w, " (%s)", a.Prog.Instructions[node.Inst])
		}
		fmt.Fprintf(w, "\n\t%s\n", a.PartitionAt(n).Render(a.Univ))
	}
}

func buildAnalysisOutput(a *herbrand.Analysis) AnalysisOutput {
	out := AnalysisOutput{
		UniverseSize:     a.Univ.Size(),
		Iterations:       a.Iterations,
		InitialPartition: a.InitialPartition().Render(a.Univ),
	}
	for n := range a.Graph.Nodes {
		node := &a.Graph.Nodes[n]
		no := NodeOutput{
			Node:      n,
			Kind:      nodeKindString(node.Kind),
			Partition: a.PartitionAt(n).Render(a.Univ),
		}
		if node.Kind == herbrand.NodeTransfer {
			no.Instruction = a.Prog.Instructions[node.Inst].String()
		}
		out.Nodes = append(out.Nodes, no)
	}
	return out
}

func nodeKindString(k herbrand.NodeKind) string {
	switch k {
	case herbrand.NodeStart:
		return "START"
	case herbrand.NodeEnd:
		return "END"
	case herbrand.NodeTransfer:
		return "Transfer"
	case herbrand.NodeConfluence:
		return "Confluence"
	}
	return "?"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
