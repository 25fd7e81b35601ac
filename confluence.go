package herbrand

// confluence computes the meet of the predecessor partitions at a join
// node. Expressions whose class id agrees across all reached predecessors
// keep that id; a disagreement collapses the expression together with
// everything equivalent to it in every predecessor into one fresh class.
// The closing pass extends the Parent map so the result satisfies the
// congruence invariant.
func (a *Analysis) confluence(n int) Partition {
	node := &a.Graph.Nodes[n]
	u := a.Univ

	reached := make([]Partition, 0, len(node.Preds))
	for _, pred := range node.Preds {
		if q := a.Partitions[pred]; !q.IsTop() {
			reached = append(reached, q)
		}
	}
	// A join nobody has reached stays TOP.
	if len(reached) == 0 {
		return MakeTop(u.Size())
	}

	p := MakeTop(u.Size())
	assigned := make([]bool, u.Size())

	for i := 0; i < u.Size(); i++ {
		if assigned[i] {
			continue
		}
		assigned[i] = true

		id := ClassTop
		agree := true
		for _, q := range reached {
			switch {
			case id == ClassTop:
				id = q[i]
			case q[i] != id:
				agree = false
			}
		}

		if agree {
			if id == ClassTop {
				id = a.Reg.Fresh()
			}
			p[i] = id
			continue
		}

		// Conflicting classes: everything equivalent to i in every
		// reached predecessor lands in one fresh class. Members beyond i
		// are necessarily still unassigned, so the grouping is
		// order-insensitive.
		group := reached[0].ClassOf(i)
		for _, q := range reached[1:] {
			group = intersectSorted(group, q.ClassOf(i))
		}
		fresh := a.Reg.Fresh()
		for _, j := range group {
			p[j] = fresh
			assigned[j] = true
		}
	}

	// Parent map extension. Keys first formed here canonicalise to the
	// merged id; a key that already exists must agree, and Bind treats a
	// mismatch as the fatal invariant violation it is.
	for i := u.Atoms(); i < u.Size(); i++ {
		e := u.ExpressionAt(i)
		l := p[u.mustIndex(Atom(e.Left))]
		r := p[u.mustIndex(Atom(e.Right))]
		a.Reg.Bind(e.Op, l, r, p[i])
	}
	return p
}

// intersectSorted intersects two ascending index slices.
func intersectSorted(xs, ys []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch {
		case xs[i] < ys[j]:
			i++
		case xs[i] > ys[j]:
			j++
		default:
			out = append(out, xs[i])
			i++
			j++
		}
	}
	return out
}
