package herbrand

import "testing"

func TestRewritePrefersConstant(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
B = A
C = B
`)
	result := RewriteRedundant(a)

	// Both copies chase back to the constant.
	if len(result.Replacements) != 2 {
		t.Fatalf("replacements %v, want two", result.Replacements)
	}
	for _, idx := range []int{2, 3} {
		in := result.Prog.Instructions[idx]
		if in.Category != CatCopy || in.Left != Con(5) {
			t.Errorf("instruction %d rewritten to %q, want constant copy", idx, in.String())
		}
	}
}

func TestRewriteFallsBackToAvailableVariable(t *testing.T) {
	a := AnalyzeSource(t, `
A = X + Y
B = X + Y
`)
	result := RewriteRedundant(a)

	if len(result.Replacements) != 1 {
		t.Fatalf("replacements %v, want one", result.Replacements)
	}
	in := result.Prog.Instructions[2]
	if in.Category != CatCopy || in.Left != Var("A") {
		t.Errorf("second computation rewritten to %q, want B = A", in.String())
	}
	// The first computation has nothing cheaper to become.
	if got := result.Prog.Instructions[1]; got.Category != CatBinary {
		t.Errorf("first computation rewritten to %q", got.String())
	}
}

func TestRewriteSkipsUnavailableVariable(t *testing.T) {
	// D equals A+1 only on one path, so the join kills the equality and
	// the recomputation must stay.
	a := AnalyzeSource(t, `
A = 1
GOTO T E
LABEL T
D = A + 1
GOTO J
LABEL E
D = 2
LABEL J
E = A + 1
`)
	result := RewriteRedundant(a)
	in := result.Prog.Instructions[4]
	if in.Category != CatBinary {
		t.Errorf("computation rewritten to %q despite the lossy join", in.String())
	}
}

func TestRewriteLeavesSourceProgramAlone(t *testing.T) {
	a := AnalyzeSource(t, `
A = 5
B = A
`)
	result := RewriteRedundant(a)
	if result.Prog == a.Prog {
		t.Fatalf("rewriter returned the analysed program itself")
	}
	if in := a.Prog.Instructions[2]; in.Left != Var("A") {
		t.Errorf("analysed program mutated: %q", in.String())
	}
}

func TestAvailableVariablesMustJoin(t *testing.T) {
	a := AnalyzeSource(t, `
A = 1
GOTO T E
LABEL T
B = 2
GOTO J
LABEL E
C = 3
LABEL J
D = A
`)
	avail := a.AvailableVariables()
	join := a.NodeForInstruction(4)

	varIdx := func(name string) int { return a.Prog.varIndex[name] }
	at := avail[join]
	if !at[varIdx("A")] {
		t.Errorf("A assigned on every path but not available")
	}
	if at[varIdx("B")] || at[varIdx("C")] {
		t.Errorf("one-sided assignments leaked through the join: B=%v C=%v",
			at[varIdx("B")], at[varIdx("C")])
	}
	if !at[varIdx("D")] {
		t.Errorf("D not available after its own assignment")
	}
}
