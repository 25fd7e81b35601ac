package herbrand

import (
	"strings"
	"testing"
)

// MustParse parses a mini-language source string, failing the test on any
// parse error. Exported for use in external test packages.
func MustParse(t *testing.T, src string) *Program {
	t.Helper()
	p, err := ParseProgram(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to parse program: %v", err)
	}
	return p
}

// AnalyzeSource parses and fully analyzes a source string.
// Exported for use in external test packages.
func AnalyzeSource(t *testing.T, src string) *Analysis {
	t.Helper()
	return Analyze(MustParse(t, src))
}

// ExpectEquivalent asserts that x and y share a class at the given node.
func ExpectEquivalent(t *testing.T, a *Analysis, node int, x, y Expression) {
	t.Helper()
	if !a.Equivalent(node, x, y) {
		t.Errorf("Expected %s == %s at node %d\npartition: %s",
			x, y, node, a.PartitionAt(node).Render(a.Univ))
	}
}

// ExpectDistinct asserts that x and y are in different classes at the node.
func ExpectDistinct(t *testing.T, a *Analysis, node int, x, y Expression) {
	t.Helper()
	xi, ok := a.Univ.IndexOf(x)
	if !ok {
		t.Fatalf("%s outside universe", x)
	}
	yi, ok := a.Univ.IndexOf(y)
	if !ok {
		t.Fatalf("%s outside universe", y)
	}
	p := a.PartitionAt(node)
	if p.IsTop() {
		t.Fatalf("node %d still TOP", node)
	}
	if p[xi] == p[yi] {
		t.Errorf("Expected %s != %s at node %d\npartition: %s",
			x, y, node, p.Render(a.Univ))
	}
}

// NodeAfter returns the transfer node of the n-th real instruction
// (0-based, dummies excluded), failing if it is unreachable.
func NodeAfter(t *testing.T, a *Analysis, n int) int {
	t.Helper()
	idx := a.NodeForInstruction(n + 1)
	if idx < 0 {
		t.Fatalf("instruction %d unreachable", n+1)
	}
	return idx
}
