package herbrand

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every parser error.
var ErrParse = errors.New("parse error")

// The mini language, one statement per line:
//
//	x = e        assignment; e is v, c, v op v, v op c, c op c, or *
//	GOTO L1 L2   successors of the preceding statement, by label
//	LABEL L1 L2  labels attached to the next statement
//
// Operators are + - * /. A lone * right-hand side is a non-deterministic
// assignment; * between two operands is multiplication (the two uses are
// told apart by arity). Fall-through to the next line is implicit when no
// GOTO is present.

// ParseProgram reads the mini language and returns a sealed program with
// reachability and predecessor sets resolved. Any malformed line, duplicate
// label, or undefined label aborts the parse; the analysis is never started
// on a broken input.
func ParseProgram(r io.Reader) (*Program, error) {
	p := NewProgram()

	// Jump labels per instruction; an empty list means fall-through.
	jumps := [][]string{nil}
	// Label -> index of the statement following its LABEL line. A label on
	// the final line resolves to the END slot.
	labels := make(map[string]labelDef)

	lineNo := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "GOTO":
			if len(fields) == 1 {
				return nil, lineErr(lineNo, "GOTO without labels")
			}
			cur := len(p.Instructions) - 1
			jumps[cur] = append(jumps[cur], fields[1:]...)
		case "LABEL":
			if len(fields) == 1 {
				return nil, lineErr(lineNo, "LABEL without names")
			}
			for _, name := range fields[1:] {
				if _, dup := labels[name]; dup {
					return nil, lineErr(lineNo, "duplicate label %q", name)
				}
				labels[name] = labelDef{target: len(p.Instructions)}
			}
		default:
			in, err := parseAssignment(p, fields, lineNo)
			if err != nil {
				return nil, err
			}
			p.Append(in)
			jumps = append(jumps, nil)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// Resolve labels to successor lists now that every target exists.
	succs := make([][]int, len(p.Instructions))
	for i, names := range jumps {
		for _, name := range names {
			def, ok := labels[name]
			if !ok {
				return nil, fmt.Errorf("%w: undefined label %q", ErrParse, name)
			}
			succs[i] = append(succs[i], def.target)
		}
	}

	p.seal(succs)
	return p, nil
}

// ParseFile parses a program from a file.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program %q: %w", path, err)
	}
	defer f.Close()
	return ParseProgram(f)
}

type labelDef struct {
	target int
}

func parseAssignment(p *Program, fields []string, lineNo int) (Instruction, error) {
	var in Instruction

	if _, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
		return in, lineErr(lineNo, "lvalue %q is not a variable", fields[0])
	}
	if len(fields) < 3 || fields[1] != "=" {
		return in, lineErr(lineNo, "expected %q followed by an rvalue", "=")
	}
	in.Dest = p.InternVar(fields[0])

	if fields[2] == "*" {
		if len(fields) > 3 {
			return in, lineErr(lineNo, "%q takes no operands", "*")
		}
		in.Category = CatCall
		return in, nil
	}
	in.Left = parseOperand(p, fields[2])

	switch len(fields) {
	case 3:
		in.Category = CatCopy
		return in, nil
	case 5:
		op, ok := parseOp(fields[3])
		if !ok {
			return in, lineErr(lineNo, "invalid operator %q", fields[3])
		}
		in.Category = CatBinary
		in.Op = op
		in.Right = parseOperand(p, fields[4])
		p.InternOp(op)
		return in, nil
	}
	return in, lineErr(lineNo, "malformed assignment")
}

func parseOperand(p *Program, tok string) Value {
	if k, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return p.InternConst(k)
	}
	return p.InternVar(tok)
}

func parseOp(tok string) (Op, bool) {
	if len(tok) != 1 {
		return 0, false
	}
	switch tok[0] {
	case '+', '-', '*', '/':
		return Op(tok[0]), true
	}
	return 0, false
}

func lineErr(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrParse, lineNo, fmt.Sprintf(format, args...))
}
