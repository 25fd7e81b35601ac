package herbrand

import (
	"fmt"
	"strings"
)

// NodeKind tags a control flow graph node.
type NodeKind int

const (
	NodeStart NodeKind = iota
	NodeEnd
	NodeTransfer
	NodeConfluence
)

// Node is one CFG position. Start has no predecessors, Transfer and End
// nodes have exactly one, Confluence nodes have at least two. Inst is the
// instruction index for Start/End/Transfer nodes and -1 for confluences.
type Node struct {
	Kind  NodeKind
	Inst  int
	Preds []int
}

// CFG is the normalised control flow graph: one node per reachable
// instruction, a predecessorless Start, an End collecting fall-off, and an
// explicit Confluence node in front of every instruction with two or more
// reachable predecessors. The normalisation guarantees every node carries
// either single-predecessor transfer semantics or multi-predecessor
// confluence semantics, never both.
type CFG struct {
	Nodes  []Node
	NodeOf []int // instruction index -> its own node index, -1 if unreachable
}

// BuildCFG lays out the graph over the reachable instructions of a sealed
// program. Unreachable instructions are silently omitted.
func BuildCFG(p *Program) *CFG {
	g := &CFG{NodeOf: make([]int, len(p.Instructions))}

	// First pass fixes node indices so predecessor links can be laid down
	// in one further sweep. A confluence slot precedes its instruction.
	size := 0
	for i := range p.Instructions {
		g.NodeOf[i] = -1
		in := &p.Instructions[i]
		if !in.Reachable {
			continue
		}
		if len(in.Preds) > 1 {
			g.NodeOf[i] = size + 1
			size += 2
		} else {
			g.NodeOf[i] = size
			size++
		}
	}

	g.Nodes = make([]Node, size)
	for i := range p.Instructions {
		idx := g.NodeOf[i]
		if idx < 0 {
			continue
		}
		in := &p.Instructions[i]
		kind := NodeTransfer
		switch i {
		case p.Entry():
			kind = NodeStart
		case p.End():
			kind = NodeEnd
		}

		if len(in.Preds) > 1 {
			conf := idx - 1
			g.Nodes[conf] = Node{Kind: NodeConfluence, Inst: -1}
			for _, pred := range in.Preds {
				g.Nodes[conf].Preds = append(g.Nodes[conf].Preds, g.NodeOf[pred])
			}
			g.Nodes[idx] = Node{Kind: kind, Inst: i, Preds: []int{conf}}
		} else {
			node := Node{Kind: kind, Inst: i}
			if len(in.Preds) == 1 {
				node.Preds = []int{g.NodeOf[in.Preds[0]]}
			}
			g.Nodes[idx] = node
		}
	}
	return g
}

// String renders the graph one node per line, in the layout the analysis
// iterates in.
func (g *CFG) String() string {
	var sb strings.Builder
	for i, n := range g.Nodes {
		fmt.Fprintf(&sb, "[%d] : ", i)
		switch n.Kind {
		case NodeStart:
			sb.WriteString("START\n")
		case NodeEnd:
			fmt.Fprintf(&sb, "END [ Predecessor : %d ]\n", n.Preds[0])
		case NodeTransfer:
			fmt.Fprintf(&sb, "Transfer Point => (%d) [ Predecessor : %d ]\n", n.Inst, n.Preds[0])
		case NodeConfluence:
			sb.WriteString("Confluence Point => [ Predecessors :")
			for _, pr := range n.Preds {
				fmt.Fprintf(&sb, " %d", pr)
			}
			sb.WriteString(" ]\n")
		}
	}
	return sb.String()
}
