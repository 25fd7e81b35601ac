package herbrand

import (
	"testing"
)

// Basic copy propagation: every expression built from equal atoms lands in
// one class.
func TestCopyPropagation(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
B = A
C = A + B
`)
	final := a.FinalNode()
	if final < 0 || a.IsTopAt(final) {
		t.Fatalf("final node unreachable or TOP")
	}

	for _, pair := range [][2]Expression{
		{Atom(Var("A")), Atom(Var("B"))},
		{Atom(Var("A")), Atom(Con(5))},
	} {
		ExpectEquivalent(t, a, final, pair[0], pair[1])
	}

	c := Atom(Var("C"))
	for _, e := range []Expression{
		Binary('+', Var("A"), Var("B")),
		Binary('+', Var("A"), Var("A")),
		Binary('+', Var("B"), Var("A")),
		Binary('+', Var("B"), Var("B")),
		Binary('+', Con(5), Con(5)),
		Binary('+', Con(5), Var("A")),
		Binary('+', Con(5), Var("B")),
		Binary('+', Var("A"), Con(5)),
		Binary('+', Var("B"), Con(5)),
	} {
		ExpectEquivalent(t, a, final, c, e)
	}
}

// A diamond whose branches compute the same value keeps the equality at
// the join.
func TestDiamondPreservesEquality(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
GOTO T E
LABEL T
B = A + 1
GOTO J
LABEL E
B = A + 1
LABEL J
C = B
`)
	// Instruction indices: 1 A=5, 2 B=A+1 (then), 3 B=A+1 (else), 4 C=B.
	joinNode := a.NodeForInstruction(4)
	if joinNode < 0 {
		t.Fatalf("join instruction unreachable")
	}
	conf := a.Graph.Nodes[joinNode].Preds[0]
	if a.Graph.Nodes[conf].Kind != NodeConfluence {
		t.Fatalf("expected confluence before join instruction, got kind %d", a.Graph.Nodes[conf].Kind)
	}

	ExpectEquivalent(t, a, conf, Atom(Var("B")), Binary('+', Var("A"), Con(1)))
	ExpectEquivalent(t, a, joinNode, Atom(Var("C")), Atom(Var("B")))
}

// A diamond whose branches disagree loses the equality at the join.
func TestDiamondLosesEquality(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
GOTO T E
LABEL T
B = A
GOTO J
LABEL E
B = 6
LABEL J
C = B
`)
	joinNode := a.NodeForInstruction(4)
	conf := a.Graph.Nodes[joinNode].Preds[0]

	b := Atom(Var("B"))
	ExpectDistinct(t, a, conf, b, Atom(Var("A")))
	ExpectDistinct(t, a, conf, b, Atom(Con(5)))
	ExpectDistinct(t, a, conf, b, Atom(Con(6)))

	c := Atom(Var("C"))
	ExpectEquivalent(t, a, joinNode, c, b)
	ExpectDistinct(t, a, joinNode, c, Atom(Con(5)))
	ExpectDistinct(t, a, joinNode, c, Atom(Con(6)))
}

// A non-deterministic assignment kills every equality of the written
// variable but compounds over it stay congruent.
func TestNonDeterministicKill(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
A = *
X = A + 1
`)
	final := a.FinalNode()

	aAtom := Atom(Var("A"))
	ExpectDistinct(t, a, final, aAtom, Atom(Con(5)))

	vals, _, ok := a.ClassMembersAt(final, Var("A"))
	if !ok {
		t.Fatalf("class lookup failed")
	}
	if len(vals) != 1 || vals[0] != Var("A") {
		t.Errorf("expected A in a singleton value class, got %v", vals)
	}

	ExpectEquivalent(t, a, final, Atom(Var("X")), Binary('+', Var("A"), Con(1)))
	ExpectDistinct(t, a, final, Atom(Var("X")), Binary('+', Con(5), Con(1)))
}

// A loop that rewrites A from itself: the analysis cannot keep A tied to
// its initial value at the loop head, and converges all the same.
func TestLoopCarriedAssignment(t *testing.T) {
	a := AnalyzeSource(t, `
A = 1
LABEL H
A = A + 0
GOTO H X
LABEL X
B = A
`)
	headNode := a.NodeForInstruction(2)
	if headNode < 0 {
		t.Fatalf("loop head unreachable")
	}
	conf := a.Graph.Nodes[headNode].Preds[0]
	if a.Graph.Nodes[conf].Kind != NodeConfluence {
		t.Fatalf("expected confluence at loop head")
	}

	vals, _, ok := a.ClassMembersAt(conf, Var("A"))
	if !ok {
		t.Fatalf("class lookup failed")
	}
	if len(vals) != 1 || vals[0] != Var("A") {
		t.Errorf("expected A alone in its class at the loop head, got %v", vals)
	}
	ExpectDistinct(t, a, conf, Atom(Var("A")), Atom(Con(1)))
}

// Two syntactically identical right-hand sides collapse through the
// Parent map even without any copy between them.
func TestCongruenceUnifiesIdenticalCompounds(t *testing.T) {
	a := AnalyzeSource(t, `
A = X + Y
B = X + Y
`)
	final := a.FinalNode()
	ExpectEquivalent(t, a, final, Atom(Var("A")), Atom(Var("B")))
	ExpectEquivalent(t, a, final, Atom(Var("A")), Binary('+', Var("X"), Var("Y")))
}

// The driver records at least one sweep and reports one extra, unchanged
// sweep at the fixed point.
func TestIterationAccounting(t *testing.T) {
	a := AnalyzeSource(t, `
A = 1
B = A
`)
	if a.Iterations < 2 {
		t.Errorf("expected at least two sweeps, got %d", a.Iterations)
	}
	bound := a.Univ.Size()*len(a.Graph.Nodes) + 1
	if a.Iterations > bound {
		t.Errorf("iterations %d exceed termination bound %d", a.Iterations, bound)
	}
}

// Re-applying the node functions at the fixed point must not change any
// grouping.
func TestFixedPointStable(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
GOTO T E
LABEL T
B = A
GOTO J
LABEL E
B = 6
LABEL J
C = B
GOTO T J
`)
	for n := 1; n < len(a.Graph.Nodes); n++ {
		var redo Partition
		if a.Graph.Nodes[n].Kind == NodeConfluence {
			redo = a.confluence(n)
		} else {
			redo = a.transfer(n)
		}
		if !SamePartition(a.Partitions[n], redo) {
			t.Errorf("node %d not at fixed point:\nstored: %s\nredo:   %s",
				n, a.Partitions[n].Render(a.Univ), redo.Render(a.Univ))
		}
	}
}

// Instructions never reached get no CFG node, and lookups outside the
// universe fail cleanly.
func TestUnreachableInstructionOmitted(t *testing.T) {
	a := AnalyzeSource(t, `
A = 1
GOTO X
B = 2
LABEL X
C = A
`)
	if node := a.NodeForInstruction(2); node != -1 {
		t.Errorf("expected B = 2 to be unreachable, got node %d", node)
	}
	if _, _, ok := a.ClassMembersAt(a.FinalNode(), Var("missing")); ok {
		t.Errorf("expected lookup of unknown variable to fail")
	}
}

// Observer sees every sweep in order.
func TestObserverSequence(t *testing.T) {
	p := MustParse(t, `
A = 1
B = A + 2
`)
	a := NewAnalysis(p)
	var seen []int
	a.Observer = func(iteration int) { seen = append(seen, iteration) }
	a.Run()
	if len(seen) != a.Iterations {
		t.Fatalf("observer saw %d sweeps, driver counted %d", len(seen), a.Iterations)
	}
	for i, it := range seen {
		if it != i+1 {
			t.Errorf("sweep %d reported as %d", i+1, it)
		}
	}
}
