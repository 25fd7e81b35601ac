// cmd_rewrite.go
package main

import (
	"fmt"
	"io"

	herbrand "github.com/BlackVectorOps/herbrand"
)

// -- REWRITE COMMAND --

func runRewrite(w io.Writer, file string, asJSON bool) error {
	prog, err := herbrand.ParseFile(file)
	if err != nil {
		return err
	}

	a := herbrand.Analyze(prog)
	result := herbrand.RewriteRedundant(a)

	if asJSON {
		out := RewriteOutput{File: file, Program: result.Prog.String()}
		for _, r := range result.Replacements {
			out.Replacements = append(out.Replacements, ReplacementOutput{
				Instruction: r.Inst,
				Old:         r.Old,
				New:         result.Prog.Instructions[r.Inst].String(),
			})
		}
		return writeJSON(w, out)
	}

	if len(result.Replacements) == 0 {
		fmt.Fprintln(w, "No redundant right-hand sides found.")
	}
	for _, r := range result.Replacements {
		fmt.Fprintf(w, "[%d] %s  =>  %s\n", r.Inst, r.Old, result.Prog.Instructions[r.Inst])
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, result.Prog)
	return nil
}
