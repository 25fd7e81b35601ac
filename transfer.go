package herbrand

// transfer computes the partition after a single-predecessor node: copy the
// predecessor, apply the instruction's assignment if any, then restore the
// congruence invariant on every binary slot.
func (a *Analysis) transfer(n int) Partition {
	node := &a.Graph.Nodes[n]
	p := a.Partitions[node.Preds[0]].Copy()
	if p.IsTop() {
		return p
	}

	in := &a.Prog.Instructions[node.Inst]
	var assigned Expression
	switch in.Category {
	case CatCopy, CatStore:
		assigned = Atom(in.Left)
	case CatBinary:
		assigned = Binary(in.Op, in.Left, in.Right)
	case CatCall:
		// The result of a call is a fresh unknown: it never unifies with
		// a syntactically identical earlier call.
		wi := a.Univ.mustIndex(Atom(in.Dest))
		p[wi] = a.Reg.Fresh()
		a.recanonicalise(p)
		return p
	default:
		// CatOther covers the START/END dummies and unmodelled opcodes:
		// the partition is inherited unchanged.
		return p
	}

	// Reading the current partition here is what makes copy semantics fall
	// out: the written atom simply joins the class its source is in.
	wi := a.Univ.mustIndex(Atom(in.Dest))
	p[wi] = p[a.Univ.mustIndex(assigned)]
	a.recanonicalise(p)
	return p
}

// recanonicalise rewrites every binary slot from the atom classes through
// the registry, propagating an atom update through every compound that
// mentions it.
func (a *Analysis) recanonicalise(p Partition) {
	u := a.Univ
	for i := u.Atoms(); i < u.Size(); i++ {
		e := u.ExpressionAt(i)
		l := p[u.mustIndex(Atom(e.Left))]
		r := p[u.mustIndex(Atom(e.Right))]
		p[i] = a.Reg.LookupOrCreate(e.Op, l, r)
	}
}
