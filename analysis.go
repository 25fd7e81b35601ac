package herbrand

// Analysis bundles everything one run owns: the program, its expression
// universe, the normalised CFG, the class registry, and one partition per
// CFG node. Nothing here is package-global; a run's state is released as a
// whole when the value goes out of scope.
type Analysis struct {
	Prog  *Program
	Univ  *Universe
	Graph *CFG
	Reg   *Registry

	// Partitions holds one vector per CFG node, indexed like Graph.Nodes.
	Partitions []Partition

	// Iterations is the number of full sweeps the driver performed,
	// including the final unchanged one.
	Iterations int

	// Observer, when set, is invoked after every sweep with the sweep
	// number, before convergence is decided. The core itself never prints.
	Observer func(iteration int)
}

// NewAnalysis prepares a run over a sealed program: the universe and CFG
// are built, the start node receives the initial partition, and every
// other node starts at TOP.
func NewAnalysis(p *Program) *Analysis {
	a := &Analysis{
		Prog:  p,
		Univ:  NewUniverse(p),
		Graph: BuildCFG(p),
		Reg:   NewRegistry(),
	}
	a.Partitions = make([]Partition, len(a.Graph.Nodes))
	for i := range a.Partitions {
		a.Partitions[i] = MakeTop(a.Univ.Size())
	}
	if len(a.Graph.Nodes) > 0 {
		a.Partitions[0] = MakeInitial(a.Univ, a.Reg)
	}
	return a
}

// Run iterates the transfer and confluence functions over the CFG in node
// index order until a full sweep changes no partition. Termination is
// guaranteed: the lattice is finite and both functions only refine their
// inputs, so the loop converges within N·|nodes| + 1 sweeps, counting the
// final unchanged one.
func (a *Analysis) Run() {
	for {
		a.Iterations++
		changed := false
		for n := 1; n < len(a.Graph.Nodes); n++ {
			old := a.Partitions[n]
			if a.Graph.Nodes[n].Kind == NodeConfluence {
				a.Partitions[n] = a.confluence(n)
			} else {
				a.Partitions[n] = a.transfer(n)
			}
			if !SamePartition(old, a.Partitions[n]) {
				changed = true
			}
		}
		if a.Observer != nil {
			a.Observer(a.Iterations)
		}
		if !changed {
			return
		}
	}
}

// Analyze is the one-call entry point: build the run and drive it to the
// fixed point.
func Analyze(p *Program) *Analysis {
	a := NewAnalysis(p)
	a.Run()
	return a
}

// -- CONSUMER INTERFACE --

// InitialPartition returns the start node's partition.
func (a *Analysis) InitialPartition() Partition { return a.Partitions[0] }

// PartitionAt returns the partition stored at a CFG node.
func (a *Analysis) PartitionAt(node int) Partition { return a.Partitions[node] }

// IsTopAt reports whether a node is still unreached.
func (a *Analysis) IsTopAt(node int) bool { return a.Partitions[node].IsTop() }

// NodeForInstruction maps an instruction index to its transfer node, or -1
// when the instruction is unreachable.
func (a *Analysis) NodeForInstruction(i int) int { return a.Graph.NodeOf[i] }

// FinalNode returns the END node index, or -1 when control never falls off
// the program.
func (a *Analysis) FinalNode() int { return a.Graph.NodeOf[a.Prog.End()] }

// ClassMembersAt splits the equivalence class of a value at a node into
// its values and its binary expressions. The third result is false when
// the value is outside the universe or the node is still TOP.
func (a *Analysis) ClassMembersAt(node int, v Value) ([]Value, []Expression, bool) {
	idx, ok := a.Univ.AtomIndexOf(v)
	if !ok {
		return nil, nil, false
	}
	p := a.Partitions[node]
	if p.IsTop() {
		return nil, nil, false
	}
	var values []Value
	var binaries []Expression
	for _, i := range p.ClassOf(idx) {
		e := a.Univ.ExpressionAt(i)
		if e.IsAtom() {
			values = append(values, e.Left)
		} else {
			binaries = append(binaries, e)
		}
	}
	return values, binaries, true
}

// Equivalent reports whether two expressions share a class at a node.
// Expressions outside the universe or a TOP node yield false.
func (a *Analysis) Equivalent(node int, x, y Expression) bool {
	xi, ok := a.Univ.IndexOf(x)
	if !ok {
		return false
	}
	yi, ok := a.Univ.IndexOf(y)
	if !ok {
		return false
	}
	p := a.Partitions[node]
	if p.IsTop() {
		return false
	}
	return p[xi] == p[yi]
}
