package herbrand

// The optional consumer: a rewriter that replaces an instruction's
// right-hand side when the analysis proves it equivalent to a constant or
// to a variable already assigned on every incoming path.

// Replacement records one rewritten instruction.
type Replacement struct {
	Inst int    // instruction index in the source program
	Old  string // original rendering
	With Value  // the equivalent value the right-hand side became
}

// RewriteResult carries the rewritten program copy and the replacement
// report. The analysed program itself is never mutated.
type RewriteResult struct {
	Prog         *Program
	Replacements []Replacement
}

// AvailableVariables solves the forward must-analysis "assigned on every
// path": IN is the intersection over predecessors, OUT adds the written
// variable. One boolean vector per CFG node, indexed like p.Variables.
func (a *Analysis) AvailableVariables() [][]bool {
	nvars := len(a.Prog.Variables)
	avail := make([][]bool, len(a.Graph.Nodes))
	for i := range avail {
		avail[i] = make([]bool, nvars)
		if i > 0 {
			// Must-analysis top: everything available until proven otherwise.
			for v := range avail[i] {
				avail[i][v] = true
			}
		}
	}

	varAt := func(name string) int {
		return a.Prog.varIndex[name]
	}

	for changed := true; changed; {
		changed = false
		for n := 1; n < len(a.Graph.Nodes); n++ {
			node := &a.Graph.Nodes[n]
			next := make([]bool, nvars)

			if node.Kind == NodeConfluence {
				for v := 0; v < nvars; v++ {
					next[v] = true
					for _, pred := range node.Preds {
						if !avail[pred][v] {
							next[v] = false
							break
						}
					}
				}
			} else {
				copy(next, avail[node.Preds[0]])
				in := &a.Prog.Instructions[node.Inst]
				if in.Dest.valid() && !in.Dest.Const {
					next[varAt(in.Dest.Name)] = true
				}
			}

			for v := 0; v < nvars; v++ {
				if next[v] != avail[n][v] {
					changed = true
				}
			}
			avail[n] = next
		}
	}
	return avail
}

// RewriteRedundant walks the instructions in order and simplifies every
// right-hand side the fixed point proved redundant: an equivalent constant
// wins, otherwise an equivalent available variable other than the
// destination. Call and non-assignment instructions are left alone.
func RewriteRedundant(a *Analysis) *RewriteResult {
	avail := a.AvailableVariables()

	out := &RewriteResult{Prog: a.Prog.clone()}
	for i := range a.Prog.Instructions {
		in := &a.Prog.Instructions[i]
		if !in.Reachable {
			continue
		}
		var rhs Expression
		switch in.Category {
		case CatCopy, CatStore:
			rhs = Atom(in.Left)
		case CatBinary:
			rhs = Binary(in.Op, in.Left, in.Right)
		default:
			continue
		}

		// The right-hand side is judged in the state before the assignment,
		// which the transfer node's sole predecessor holds.
		node := a.Graph.NodeOf[i]
		p := a.Partitions[a.Graph.Nodes[node].Preds[0]]
		if p.IsTop() {
			continue
		}

		repl, ok := a.pickReplacement(p, avail[node], rhs, in.Dest)
		if !ok {
			continue
		}
		rewritten := *in
		rewritten.Category = CatCopy
		rewritten.Op = 0
		rewritten.Left = repl
		rewritten.Right = Value{}
		out.Prog.Instructions[i] = rewritten
		out.Replacements = append(out.Replacements, Replacement{
			Inst: i,
			Old:  in.String(),
			With: repl,
		})
	}
	return out
}

// pickReplacement scans the Herbrand class of rhs at a point, preferring a
// constant, then an available variable. The destination and the right-hand
// side itself are never offered.
func (a *Analysis) pickReplacement(p Partition, avail []bool, rhs Expression, dest Value) (Value, bool) {
	idx := a.Univ.mustIndex(rhs)
	for _, j := range p.ClassOf(idx) {
		e := a.Univ.ExpressionAt(j)
		if !e.IsAtom() || !e.Left.Const || e == rhs {
			continue
		}
		return e.Left, true
	}
	for _, j := range p.ClassOf(idx) {
		e := a.Univ.ExpressionAt(j)
		if !e.IsAtom() || e.Left.Const || e == rhs || e.Left == dest {
			continue
		}
		if avail[a.Prog.varIndex[e.Left.Name]] {
			return e.Left, true
		}
	}
	return Value{}, false
}

// clone copies the program deeply enough for the rewriter: the instruction
// list is fresh, the interned collections are shared since they are never
// mutated after sealing.
func (p *Program) clone() *Program {
	q := *p
	q.Instructions = make([]Instruction, len(p.Instructions))
	copy(q.Instructions, p.Instructions)
	return &q
}
