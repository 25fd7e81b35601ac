package herbrand

import (
	"fmt"
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// SSA front end: translates a single ssa.Function into the program model.
// Registers, parameters and alloca slots become variables, integer
// constants become constants, and the four arithmetic operators carry over
// as uninterpreted symbols. Memory is modelled as variables; aliasing is
// not tracked.
//
// Opcode lowering:
//
//	UnOp load      -> Copy
//	Store          -> Store
//	BinOp + - * /  -> BinaryOp
//	Call           -> Call (result is a fresh unknown)
//	Alloca         -> skipped
//	anything else  -> Other when it defines a value, otherwise dropped
//
// Phi nodes land in Other deliberately: the analysis reconstructs joins
// itself through confluence nodes, and a phi register kept in its own
// class is a sound rendering of "depends on the path".

// ProgramFromSSA builds a sealed program from fn.
func ProgramFromSSA(fn *ssa.Function) (*Program, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("function %s has no body", fn.Name())
	}

	p := NewProgram()
	firstIdx := make(map[*ssa.BasicBlock]int, len(fn.Blocks))
	lastIdx := make(map[*ssa.BasicBlock]int, len(fn.Blocks))

	for _, b := range fn.Blocks {
		first := -1
		last := -1
		for _, instr := range b.Instrs {
			in, ok := lowerInstr(p, instr)
			if !ok {
				continue
			}
			idx := p.Append(in)
			if first == -1 {
				first = idx
			}
			last = idx
		}
		if first != -1 {
			firstIdx[b] = first
			lastIdx[b] = last
		}
	}

	endIdx := len(p.Instructions)
	succs := make([][]int, endIdx)

	// entries resolves where control entering a block first lands,
	// skipping through blocks that contributed no instructions.
	var entries func(b *ssa.BasicBlock, seen map[*ssa.BasicBlock]bool) []int
	entries = func(b *ssa.BasicBlock, seen map[*ssa.BasicBlock]bool) []int {
		if seen[b] {
			return nil
		}
		seen[b] = true
		if idx, ok := firstIdx[b]; ok {
			return []int{idx}
		}
		if len(b.Succs) == 0 {
			return []int{endIdx}
		}
		var out []int
		for _, s := range b.Succs {
			out = append(out, entries(s, seen)...)
		}
		return out
	}

	succs[0] = entries(fn.Blocks[0], map[*ssa.BasicBlock]bool{})
	for _, b := range fn.Blocks {
		last, ok := lastIdx[b]
		if !ok {
			continue
		}
		if len(b.Succs) == 0 {
			succs[last] = []int{endIdx}
			continue
		}
		for _, s := range b.Succs {
			succs[last] = append(succs[last], entries(s, map[*ssa.BasicBlock]bool{})...)
		}
	}

	p.seal(succs)
	return p, nil
}

// lowerInstr maps one SSA instruction onto the model, interning whatever
// values it mentions. The boolean is false for instructions with no
// partition-relevant effect.
func lowerInstr(p *Program, instr ssa.Instruction) (Instruction, bool) {
	switch t := instr.(type) {
	case *ssa.Alloc:
		return Instruction{}, false
	case *ssa.UnOp:
		if t.Op == token.MUL { // load through a pointer
			return Instruction{
				Category: CatCopy,
				Dest:     p.InternVar(t.Name()),
				Left:     operandValue(p, t.X),
			}, true
		}
		return Instruction{Category: CatOther, Dest: p.InternVar(t.Name())}, true
	case *ssa.Store:
		return Instruction{
			Category: CatStore,
			Dest:     operandValue(p, t.Addr),
			Left:     operandValue(p, t.Val),
		}, true
	case *ssa.BinOp:
		if op, ok := lowerToken(t.Op); ok {
			in := Instruction{
				Category: CatBinary,
				Op:       op,
				Dest:     p.InternVar(t.Name()),
				Left:     operandValue(p, t.X),
				Right:    operandValue(p, t.Y),
			}
			p.InternOp(op)
			return in, true
		}
		return Instruction{Category: CatOther, Dest: p.InternVar(t.Name())}, true
	case *ssa.Call:
		return Instruction{Category: CatCall, Dest: p.InternVar(t.Name())}, true
	default:
		if v, ok := instr.(ssa.Value); ok && v.Name() != "" {
			return Instruction{Category: CatOther, Dest: p.InternVar(v.Name())}, true
		}
		return Instruction{}, false
	}
}

// lowerToken maps the SSA operator tokens the analysis recognises.
func lowerToken(tok token.Token) (Op, bool) {
	switch tok {
	case token.ADD:
		return '+', true
	case token.SUB:
		return '-', true
	case token.MUL:
		return '*', true
	case token.QUO:
		return '/', true
	}
	return 0, false
}

// operandValue interns an SSA operand. Integer constants become model
// constants; every other value, including non-integer constants and
// globals, becomes an uninterpreted variable under a stable name.
func operandValue(p *Program, v ssa.Value) Value {
	switch t := v.(type) {
	case *ssa.Const:
		if t.Value != nil && t.Value.Kind() == constant.Int {
			if k, exact := constant.Int64Val(t.Value); exact {
				return p.InternConst(k)
			}
		}
		return p.InternVar(t.String())
	case *ssa.Global:
		return p.InternVar(t.String())
	default:
		return p.InternVar(v.Name())
	}
}
