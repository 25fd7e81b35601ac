// Package main provides the hrb CLI tool for Herbrand equivalence analysis
// of mini-language programs and Go functions.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `hrb - Herbrand Equivalence Analyzer

Computes Herbrand equivalence classes at every program point and uses them
to spot redundant computations.

Usage:
  hrb analyze [--json] [--cfg] [--iterations] <file>   Analyze a mini-language program
  hrb rewrite [--json] <file>                          Redundancy elimination report
  hrb ssa [--json] [--func <name>] [--workers <n>] <package|file.go>
                                                       Analyze Go functions via SSA
  hrb index --name <name> [--db <path>] <file>         Persist an analysis record
  hrb stats [--db <path>]                              Result store statistics
  hrb explain [--model <m>] [--api-base <url>] <file>  LLM summary of the result

Commands:
  analyze  Run the fixed-point analysis and print the initial partition plus
           the final partition at every CFG node.
           --json        Emit JSON instead of text
           --cfg         Also print the program listing and CFG layout
           --iterations  Stream the partition table after every sweep

  rewrite  Replace right-hand sides proven equivalent to a constant or to an
           already-available variable, and print the rewritten program.

  ssa      Load Go packages, build SSA, and analyze each function body. One
           analysis per function, run in parallel.
           --func     Only analyze functions with this name
           --workers  Parallel analyses (default: GOMAXPROCS)

  index    Analyze a program and store the result summary.
           --name  Record name (required)
           --db    Path to the result store (default: auto-detect)

  stats    Display result store statistics.

  explain  Send the final partition to Gemini and print a JSON summary.
           Requires GEMINI_API_KEY.
           --model     Model id (default: gemini-2.0-flash)
           --api-base  Override the API endpoint (testing)

Mini language:
  x = e       assignment; e is v, c, v op v, v op c, c op c, or *
  GOTO L ...  successors of the preceding line, by label
  LABEL L ... labels attached to the next line
  Operators: + - * /   A lone * right-hand side is non-deterministic.

Output:
  Text or JSON to stdout. Errors to stderr, exit code 1.

`)
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	analyzeJSON := analyzeCmd.Bool("json", false, "Emit JSON output")
	analyzeCFG := analyzeCmd.Bool("cfg", false, "Print program listing and CFG layout")
	analyzeIter := analyzeCmd.Bool("iterations", false, "Stream per-iteration partition tables")

	rewriteCmd := flag.NewFlagSet("rewrite", flag.ExitOnError)
	rewriteJSON := rewriteCmd.Bool("json", false, "Emit JSON output")

	ssaCmd := flag.NewFlagSet("ssa", flag.ExitOnError)
	ssaJSON := ssaCmd.Bool("json", false, "Emit JSON output")
	ssaFunc := ssaCmd.String("func", "", "Only analyze functions with this name")
	ssaWorkers := ssaCmd.Int("workers", 0, "Parallel analyses (default: GOMAXPROCS)")

	indexCmd := flag.NewFlagSet("index", flag.ExitOnError)
	indexName := indexCmd.String("name", "", "Record name (required)")
	indexDB := indexCmd.String("db", "", "Path to the result store (default: auto-detect)")

	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)
	statsDB := statsCmd.String("db", "", "Path to the result store (default: auto-detect)")

	explainCmd := flag.NewFlagSet("explain", flag.ExitOnError)
	explainModel := explainCmd.String("model", "gemini-2.0-flash", "Model id")
	explainBase := explainCmd.String("api-base", "", "Override the API endpoint (testing)")

	switch cmd {
	case "analyze":
		if err := analyzeCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if analyzeCmd.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "error: analyze requires a file argument\n")
			analyzeCmd.Usage()
			os.Exit(1)
		}
		opts := AnalyzeOptions{JSON: *analyzeJSON, CFG: *analyzeCFG, Iterations: *analyzeIter}
		if err := runAnalyze(os.Stdout, analyzeCmd.Arg(0), opts); err != nil {
			fail(err)
		}
	case "rewrite":
		if err := rewriteCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if rewriteCmd.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "error: rewrite requires a file argument\n")
			rewriteCmd.Usage()
			os.Exit(1)
		}
		if err := runRewrite(os.Stdout, rewriteCmd.Arg(0), *rewriteJSON); err != nil {
			fail(err)
		}
	case "ssa":
		if err := ssaCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if ssaCmd.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "error: ssa requires a package or file argument\n")
			ssaCmd.Usage()
			os.Exit(1)
		}
		opts := SSAOptions{JSON: *ssaJSON, Func: *ssaFunc, Workers: *ssaWorkers}
		if err := runSSA(os.Stdout, ssaCmd.Arg(0), opts); err != nil {
			fail(err)
		}
	case "index":
		if err := indexCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if indexCmd.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "error: index requires a file argument\n")
			indexCmd.Usage()
			os.Exit(1)
		}
		if *indexName == "" {
			fmt.Fprintf(os.Stderr, "error: --name is required for index command\n")
			os.Exit(1)
		}
		if err := runIndex(os.Stdout, indexCmd.Arg(0), *indexName, resolveDBPath(*indexDB)); err != nil {
			fail(err)
		}
	case "stats":
		if err := statsCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if err := runStats(os.Stdout, resolveDBPath(*statsDB)); err != nil {
			fail(err)
		}
	case "explain":
		if err := explainCmd.Parse(os.Args[2:]); err != nil {
			fail(err)
		}
		if explainCmd.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "error: explain requires a file argument\n")
			explainCmd.Usage()
			os.Exit(1)
		}
		apiKey := os.Getenv("GEMINI_API_KEY")
		if err := runExplain(os.Stdout, explainCmd.Arg(0), apiKey, *explainModel, *explainBase); err != nil {
			fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		if suggestion := suggestCommand(cmd); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n\n", suggestion)
		}
		flag.Usage()
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
