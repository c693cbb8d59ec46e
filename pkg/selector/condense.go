package selector

// Node is an immutable condition tree over mutations.
type Node interface {
	condense(acc []MutationSet, invert bool) []MutationSet
	negate() Node
	terms(invert bool) [][]Mutation
}

type leaf struct {
	m Mutation
}

type and struct {
	children []Node
}

type or struct {
	children []Node
}

type not struct {
	child Node
}

// Leaf wraps a single mutation.
func Leaf(m Mutation) Node { return leaf{m: m} }

// And requires every child.
func And(children ...Node) Node {
	return and{children: append([]Node(nil), children...)}
}

// Or requires at least one child.
func Or(children ...Node) Node {
	return or{children: append([]Node(nil), children...)}
}

// Not inverts child.
func Not(child Node) Node { return not{child: child} }

// Condense expands node into the selector variants that implement it. The
// result always holds at least one set.
func Condense(node Node) []MutationSet {
	return node.condense([]MutationSet{{}}, false)
}

// CondenseInto condenses node on top of existing variants.
func CondenseInto(acc []MutationSet, node Node) []MutationSet {
	if len(acc) == 0 {
		acc = []MutationSet{{}}
	}
	return node.condense(acc, false)
}

func (l leaf) condense(acc []MutationSet, invert bool) []MutationSet {
	m := l.m
	if invert {
		m = m.Invert()
	}
	out := make([]MutationSet, len(acc))
	for i, set := range acc {
		next := make(MutationSet, len(set), len(set)+1)
		copy(next, set)
		out[i] = append(next, m)
	}
	return out
}

// An AND appends each child to every branch. Inverting it inverts each
// child in place; the branch count never changes.
func (a and) condense(acc []MutationSet, invert bool) []MutationSet {
	for _, child := range a.children {
		acc = child.condense(acc, invert)
	}
	return acc
}

// An OR over k alternatives replicates the m incoming branches k times.
// Branch b belongs to replica r = b / m and applies alternative a as
// written only when (r-a) % k == 0, that is when a == r.
func (o or) condense(acc []MutationSet, invert bool) []MutationSet {
	k := len(o.children)
	if k == 0 {
		return acc
	}
	if invert {
		// not (a or b) == not a and not b
		for _, child := range o.children {
			acc = child.condense(acc, true)
		}
		return acc
	}

	m := len(acc)
	out := make([]MutationSet, 0, m*k)
	for b := 0; b < m*k; b++ {
		r := b / m
		branch := []MutationSet{acc[b%m]}
		for a, child := range o.children {
			branch = child.condense(branch, (r-a)%k != 0)
		}
		out = append(out, branch...)
	}
	return out
}

func (n not) condense(acc []MutationSet, invert bool) []MutationSet {
	return n.child.condense(acc, !invert)
}
