// Package herbrand computes Herbrand equivalence classes for straight-line
// programs with branches. At every program point the analysis partitions a
// fixed universe of expressions (variables, constants, and all two-operand
// combinations over them) into classes such that two expressions share a
// class iff they are provably equal under uninterpreted operators along
// every execution path reaching that point.
package herbrand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Op is an uninterpreted binary operator symbol.
type Op byte

func (op Op) String() string {
	return string(rune(op))
}

// Value is a single operand: either an integer constant or a named variable.
// Values are compared structurally; the zero Value is invalid.
type Value struct {
	Const bool
	Num   int64  // payload when Const
	Name  string // variable name when !Const
}

// Con builds a constant Value.
func Con(k int64) Value { return Value{Const: true, Num: k} }

// Var builds a variable Value.
func Var(name string) Value { return Value{Name: name} }

func (v Value) valid() bool {
	return v.Const || v.Name != ""
}

func (v Value) String() string {
	if v.Const {
		return strconv.FormatInt(v.Num, 10)
	}
	return v.Name
}

// Category classifies an instruction for the transfer function.
type Category int

const (
	CatOther  Category = iota // no effect on the partition
	CatCopy                   // dest = source value
	CatStore                  // dest slot = source value (memory as variables)
	CatBinary                 // dest = left op right
	CatCall                   // dest = fresh unknown value
)

// Instruction is one assignment-like program step. The first and last
// entries of Program.Instructions are dummy START and END markers with
// category CatOther, mirroring the slots the flow resolution relies on.
type Instruction struct {
	Category Category
	Op       Op    // set when Category == CatBinary
	Dest     Value // written variable, invalid for the dummies
	Left     Value // source operand (Copy/Store) or left operand (Binary)
	Right    Value // right operand (Binary only)

	// Flow facts filled in by resolveFlow.
	Reachable bool
	Preds     []int // reachable predecessor instruction indices, sorted
}

func (in Instruction) String() string {
	switch in.Category {
	case CatCall:
		return fmt.Sprintf("%s = *", in.Dest)
	case CatBinary:
		return fmt.Sprintf("%s = %s %s %s", in.Dest, in.Left, in.Op, in.Right)
	case CatCopy, CatStore:
		return fmt.Sprintf("%s = %s", in.Dest, in.Left)
	}
	if in.Dest.valid() {
		return fmt.Sprintf("%s = ?", in.Dest)
	}
	return "<nop>"
}

// Program is the immutable model the analysis runs over: ordered variable,
// constant and operator collections plus the instruction list with resolved
// predecessor sets.
type Program struct {
	Variables    []string
	Constants    []int64
	Ops          []Op
	Instructions []Instruction

	varIndex   map[string]int
	constIndex map[int64]int
	opIndex    map[Op]int
}

// NewProgram returns an empty program holding only the START dummy. Front
// ends append instructions, then call seal with the successor lists.
func NewProgram() *Program {
	p := &Program{
		varIndex:   make(map[string]int),
		constIndex: make(map[int64]int),
		opIndex:    make(map[Op]int),
	}
	p.Instructions = append(p.Instructions, Instruction{Category: CatOther})
	return p
}

// InternVar registers a variable name and returns its Value. Repeated names
// map to the same Value, so the universe sees each variable once.
func (p *Program) InternVar(name string) Value {
	if _, ok := p.varIndex[name]; !ok {
		p.varIndex[name] = len(p.Variables)
		p.Variables = append(p.Variables, name)
	}
	return Var(name)
}

// InternConst registers an integer constant and returns its Value.
func (p *Program) InternConst(k int64) Value {
	if _, ok := p.constIndex[k]; !ok {
		p.constIndex[k] = len(p.Constants)
		p.Constants = append(p.Constants, k)
	}
	return Con(k)
}

// InternOp registers an operator symbol.
func (p *Program) InternOp(op Op) {
	if _, ok := p.opIndex[op]; !ok {
		p.opIndex[op] = len(p.Ops)
		p.Ops = append(p.Ops, op)
	}
}

// Append adds an instruction and returns its index.
func (p *Program) Append(in Instruction) int {
	p.Instructions = append(p.Instructions, in)
	return len(p.Instructions) - 1
}

// Entry returns the index of the START dummy.
func (p *Program) Entry() int { return 0 }

// End returns the index of the END dummy. Valid only after sealing.
func (p *Program) End() int { return len(p.Instructions) - 1 }

// Values enumerates constants then variables, in intern order. This is the
// atom order the universe indexing relies on.
func (p *Program) Values() []Value {
	vals := make([]Value, 0, len(p.Constants)+len(p.Variables))
	for _, k := range p.Constants {
		vals = append(vals, Con(k))
	}
	for _, name := range p.Variables {
		vals = append(vals, Var(name))
	}
	return vals
}

// seal appends the END dummy, guarantees a non-empty operator set, and
// resolves reachability and predecessor sets from the successor lists.
// succs is indexed by instruction (START included); a nil entry means
// fall-through to the next index. Targets may name the END slot appended
// here (a label on the final line resolves past the last instruction).
func (p *Program) seal(succs [][]int) {
	p.Instructions = append(p.Instructions, Instruction{Category: CatOther})
	if len(p.Ops) == 0 {
		// The universe needs at least one operator even for programs made
		// of plain copies.
		p.InternOp('+')
	}
	p.resolveFlow(succs)
}

// resolveFlow walks the program breadth-first from START, marking reachable
// instructions and recording the reachable predecessor set of each. Edges
// out of unreachable instructions are never followed, so predecessor sets
// only ever contain reachable indices.
func (p *Program) resolveFlow(succs [][]int) {
	end := p.End()
	predSets := make([]map[int]bool, len(p.Instructions))

	queue := []int{0}
	p.Instructions[0].Reachable = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var targets []int
		if cur < len(succs) && len(succs[cur]) > 0 {
			targets = succs[cur]
		} else if cur != end {
			targets = []int{cur + 1}
		}
		for _, next := range targets {
			if predSets[next] == nil {
				predSets[next] = make(map[int]bool)
			}
			predSets[next][cur] = true
			if !p.Instructions[next].Reachable {
				p.Instructions[next].Reachable = true
				queue = append(queue, next)
			}
		}
	}

	for i := range p.Instructions {
		if predSets[i] == nil {
			continue
		}
		preds := make([]int, 0, len(predSets[i]))
		for idx := range predSets[i] {
			preds = append(preds, idx)
		}
		sort.Ints(preds)
		p.Instructions[i].Preds = preds
	}
}

// String renders the program listing with predecessor information, marking
// unreachable instructions.
func (p *Program) String() string {
	var sb strings.Builder
	last := p.End()
	for i, in := range p.Instructions {
		fmt.Fprintf(&sb, "[%d] : ", i)
		switch i {
		case 0:
			sb.WriteString("START")
		case last:
			sb.WriteString("END")
		default:
			sb.WriteString(in.String())
		}
		if in.Reachable {
			sb.WriteString("\t[ Predecessors :")
			for _, pr := range in.Preds {
				fmt.Fprintf(&sb, " %d", pr)
			}
			sb.WriteString(" ]\n")
		} else {
			sb.WriteString("\t[ Unreachable ]\n")
		}
	}
	return sb.String()
}
