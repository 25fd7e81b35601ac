package herbrand

import (
	"fmt"
	"strings"
	"testing"
)

func benchmarkSource(vars, steps int) string {
	var sb strings.Builder
	for i := 0; i < steps; i++ {
		fmt.Fprintf(&sb, "v%d = v%d + %d\n", i%vars, (i+1)%vars, i%3)
	}
	return sb.String()
}

func BenchmarkAnalyzeStraightLine(b *testing.B) {
	src := benchmarkSource(6, 24)
	p, err := ParseProgram(strings.NewReader(src))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Analyze(p)
	}
}

func BenchmarkAnalyzeLoop(b *testing.B) {
	src := benchmarkSource(4, 8) + "LABEL H\nv0 = v1 + v2\nGOTO H X\nLABEL X\nv3 = v0\n"
	p, err := ParseProgram(strings.NewReader(src))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Analyze(p)
	}
}

func BenchmarkConfluenceHeavy(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("a = 1\nGOTO P Q R\n")
	sb.WriteString("LABEL P\nb = a + 1\nGOTO J\n")
	sb.WriteString("LABEL Q\nb = a + 2\nGOTO J\n")
	sb.WriteString("LABEL R\nb = a + 1\nGOTO J\n")
	sb.WriteString("LABEL J\nc = b\n")
	p, err := ParseProgram(strings.NewReader(sb.String()))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Analyze(p)
	}
}
