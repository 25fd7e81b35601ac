package herbrand

import (
	"fmt"
	"sort"
	"strings"
)

// Partition maps every universe index to a class id. Two expressions are
// equivalent at a program point iff their indices carry the same id. A
// partition is either TOP (every slot ClassTop, meaning the point is not
// yet reached) or fully initialised (every slot non-negative); checking
// slot zero suffices to tell the two apart.
type Partition []ClassID

// MakeTop returns the TOP partition over a universe of size n.
func MakeTop(n int) Partition {
	p := make(Partition, n)
	for i := range p {
		p[i] = ClassTop
	}
	return p
}

// MakeInitial returns the partition in which every atom sits in its own
// fresh class and every binary receives its canonical id through the
// registry, seeding the Parent map.
func MakeInitial(u *Universe, reg *Registry) Partition {
	p := MakeTop(u.Size())
	for i := 0; i < u.Atoms(); i++ {
		p[i] = reg.Fresh()
	}
	for i := u.Atoms(); i < u.Size(); i++ {
		e := u.ExpressionAt(i)
		l := p[u.mustIndex(Atom(e.Left))]
		r := p[u.mustIndex(Atom(e.Right))]
		p[i] = reg.LookupOrCreate(e.Op, l, r)
	}
	return p
}

// IsTop reports whether the partition is the TOP element.
func (p Partition) IsTop() bool {
	return len(p) == 0 || p[0] == ClassTop
}

// Copy returns a value copy.
func (p Partition) Copy() Partition {
	q := make(Partition, len(p))
	copy(q, p)
	return q
}

// SamePartition reports whether p and q induce the same grouping: every
// group of indices sharing an id in p must be constant under q, and
// distinct groups of p must carry distinct ids in q. Ids are not compared
// element-wise, since equivalent partitions may label their classes
// differently across iterations.
func SamePartition(p, q Partition) bool {
	if len(p) != len(q) {
		return false
	}
	groups := make(map[ClassID][]int, len(p))
	for i, id := range p {
		groups[id] = append(groups[id], i)
	}
	qIDs := make(map[ClassID]bool, len(groups))
	for _, members := range groups {
		want := q[members[0]]
		for _, i := range members[1:] {
			if q[i] != want {
				return false
			}
		}
		qIDs[want] = true
	}
	// Two groups of p sharing one id in q means q merges them.
	return len(qIDs) == len(groups)
}

// ClassOf returns every index sharing a class with index i, in index order.
func (p Partition) ClassOf(i int) []int {
	id := p[i]
	var class []int
	for j, cj := range p {
		if cj == id {
			class = append(class, j)
		}
	}
	return class
}

// Render prints the partition as its classes, each as [id]{expr, …} in
// ascending id order, or the TOP marker.
func (p Partition) Render(u *Universe) string {
	if p.IsTop() {
		return "<TOP ELEMENT>"
	}
	classes := make(map[ClassID][]int)
	for i, id := range p {
		classes[id] = append(classes[id], i)
	}
	ids := make([]ClassID, 0, len(classes))
	for id := range classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	var sb strings.Builder
	for n, id := range ids {
		if n > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "[%d]{", id)
		for m, i := range classes[id] {
			if m > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(u.ExpressionAt(i).String())
		}
		sb.WriteString("}")
	}
	return sb.String()
}
