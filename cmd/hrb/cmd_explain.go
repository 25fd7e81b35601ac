// cmd_explain.go
package main

import (
	"fmt"
	"io"
	"strings"

	herbrand "github.com/BlackVectorOps/herbrand"
)

// -- EXPLAIN COMMAND --

func runExplain(w io.Writer, file, apiKey, model, apiBase string) error {
	prog, err := herbrand.ParseFile(file)
	if err != nil {
		return err
	}
	a := herbrand.Analyze(prog)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Initial: %s\n", a.InitialPartition().Render(a.Univ))
	for n := range a.Graph.Nodes {
		node := &a.Graph.Nodes[n]
		fmt.Fprintf(&sb, "[%d] %s", n, nodeKindString(node.Kind))
		if node.Kind == herbrand.NodeTransfer {
			fmt.Fprintf(&sb, " (%s)", a.Prog.Instructions[node.Inst])
		}
		fmt.Fprintf(&sb, ": %s\n", a.PartitionAt(n).Render(a.Univ))
	}

	result, err := callLLM(sb.String(), apiKey, model, apiBase)
	if err != nil {
		return err
	}
	return writeJSON(w, ExplainOutput{
		File:    file,
		Model:   model,
		Summary: result.Summary,
		Caveats: result.Caveats,
	})
}
