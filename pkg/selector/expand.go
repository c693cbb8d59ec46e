package selector

// Negate returns the complement of node with the negation pushed down to
// the mutations: not (a and b) becomes (not a) or (not b), and not (a or b)
// becomes (not a) and (not b).
func Negate(node Node) Node {
	return node.negate()
}

func (l leaf) negate() Node { return leaf{m: l.m.Invert()} }

func (a and) negate() Node {
	children := make([]Node, len(a.children))
	for i, c := range a.children {
		children[i] = c.negate()
	}
	return or{children: children}
}

func (o or) negate() Node {
	children := make([]Node, len(o.children))
	for i, c := range o.children {
		children[i] = c.negate()
	}
	return and{children: children}
}

func (n not) negate() Node { return n.child }

// Expand returns selector variants that together hold exactly when node
// holds. Each OR alternative gets a variant of its own, so more than one
// variant can match at once; callers that need a single outcome must
// combine them, as if statements do with a result score. Condense, by
// contrast, applies every other alternative inverted in each variant.
func Expand(node Node) []MutationSet {
	var sets []MutationSet
	for _, term := range node.terms(false) {
		leaves := make([]Node, len(term))
		for i, m := range term {
			leaves[i] = Leaf(m)
		}
		sets = append(sets, Condense(And(leaves...))...)
	}
	return sets
}

func (l leaf) terms(invert bool) [][]Mutation {
	m := l.m
	if invert {
		m = m.Invert()
	}
	return [][]Mutation{{m}}
}

func (a and) terms(invert bool) [][]Mutation {
	if invert {
		return union(a.children, true)
	}
	return product(a.children, false)
}

func (o or) terms(invert bool) [][]Mutation {
	if invert {
		return product(o.children, true)
	}
	return union(o.children, false)
}

func (n not) terms(invert bool) [][]Mutation {
	return n.child.terms(!invert)
}

// union lists the terms of every child: any of them may hold.
func union(children []Node, invert bool) [][]Mutation {
	var out [][]Mutation
	for _, c := range children {
		out = append(out, c.terms(invert)...)
	}
	return out
}

// product combines one term of each child in every possible way: all of
// them must hold. No children is the single empty term.
func product(children []Node, invert bool) [][]Mutation {
	out := [][]Mutation{{}}
	for _, c := range children {
		terms := c.terms(invert)
		next := make([][]Mutation, 0, len(out)*len(terms))
		for _, prefix := range out {
			for _, t := range terms {
				joined := make([]Mutation, 0, len(prefix)+len(t))
				joined = append(joined, prefix...)
				next = append(next, append(joined, t...))
			}
		}
		out = next
	}
	return out
}
