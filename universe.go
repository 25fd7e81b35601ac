package herbrand

import "fmt"

// Expression is an element of the analysis universe: an atom (single value)
// or a two-operand combination of values. Operands are always Values, never
// nested expressions; the length-two restriction is fundamental to the
// algorithm.
type Expression struct {
	Op    Op // zero for atoms
	Left  Value
	Right Value // invalid for atoms
}

// Atom wraps a value as a universe expression.
func Atom(v Value) Expression { return Expression{Left: v} }

// Binary builds a two-operand expression.
func Binary(op Op, l, r Value) Expression { return Expression{Op: op, Left: l, Right: r} }

// IsAtom reports whether the expression is a single value.
func (e Expression) IsAtom() bool { return e.Op == 0 }

func (e Expression) String() string {
	if e.IsAtom() {
		return e.Left.String()
	}
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

// Universe assigns every expression of length at most two a dense stable
// index. Atoms come first (constants then variables, in program order),
// followed by binaries ordered by (operator, left, right). The index is
// fixed at construction and bijective on [0, Size).
type Universe struct {
	exprs []Expression
	index map[Expression]int
	atoms int // number of atom entries; binaries start here
}

// NewUniverse enumerates the expression universe of a program:
// |C∪V| atoms plus |Ops|·|C∪V|² binaries.
func NewUniverse(p *Program) *Universe {
	vals := p.Values()
	n := len(vals) + len(p.Ops)*len(vals)*len(vals)
	u := &Universe{
		exprs: make([]Expression, 0, n),
		index: make(map[Expression]int, n),
		atoms: len(vals),
	}
	for _, v := range vals {
		u.add(Atom(v))
	}
	for _, op := range p.Ops {
		for _, l := range vals {
			for _, r := range vals {
				u.add(Binary(op, l, r))
			}
		}
	}
	return u
}

func (u *Universe) add(e Expression) {
	u.index[e] = len(u.exprs)
	u.exprs = append(u.exprs, e)
}

// Size returns N, the number of indexed expressions.
func (u *Universe) Size() int { return len(u.exprs) }

// Atoms returns the count of atom entries; indices below it are atoms and
// indices at or above it are binaries.
func (u *Universe) Atoms() int { return u.atoms }

// IndexOf returns the dense index of e, or false when e lies outside the
// universe.
func (u *Universe) IndexOf(e Expression) (int, bool) {
	i, ok := u.index[e]
	return i, ok
}

// AtomIndexOf is the atom shortcut for IndexOf.
func (u *Universe) AtomIndexOf(v Value) (int, bool) {
	return u.IndexOf(Atom(v))
}

// ExpressionAt is the inverse of IndexOf.
func (u *Universe) ExpressionAt(i int) Expression { return u.exprs[i] }

func (u *Universe) mustIndex(e Expression) int {
	i, ok := u.index[e]
	if !ok {
		panic(fmt.Sprintf("herbrand: expression %s outside universe", e))
	}
	return i
}
