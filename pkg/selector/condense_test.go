package selector

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func setStrings(sets []MutationSet) []string {
	out := make([]string, len(sets))
	for i, s := range sets {
		out[i] = s.String()
	}
	return out
}

// TestCondenseOrInsideAnd covers an OR of two alternatives nested in an AND
// of two plain mutations.
func TestCondenseOrInsideAnd(t *testing.T) {
	node := And(
		Leaf(Tag("a")),
		Leaf(Tag("b")),
		Or(Leaf(Family("x")), Leaf(Family("y"))),
	)
	got := setStrings(Condense(node))
	want := []string{
		"[tag=a & tag=b & family=x & family=!y]",
		"[tag=a & tag=b & family=!x & family=y]",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Condense = %v, want %v", got, want)
	}
}

func TestCondenseCases(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want []string
	}{
		{"leaf", Leaf(Tag("a")), []string{"[tag=a]"}},
		{"not leaf", Not(Leaf(Tag("a"))), []string{"[tag=!a]"}},
		// Condense flips each mutation of an inverted AND in place. That is
		// not the complement of the AND; Negate and Expand give that.
		{"inverted and flips each mutation", Not(And(Leaf(Tag("a")), Leaf(Tag("b")))),
			[]string{"[tag=!a & tag=!b]"}},
		{"inverted or applies de morgan", Not(Or(Leaf(Tag("a")), Leaf(Tag("b")))),
			[]string{"[tag=!a & tag=!b]"}},
		{"double not", Not(Not(Leaf(Tag("a")))), []string{"[tag=a]"}},
		{"or of three", Or(Leaf(Tag("a")), Leaf(Tag("b")), Leaf(Tag("c"))),
			[]string{
				"[tag=a & tag=!b & tag=!c]",
				"[tag=!a & tag=b & tag=!c]",
				"[tag=!a & tag=!b & tag=c]",
			}},
		{"or after or", And(Or(Leaf(Tag("a")), Leaf(Tag("b"))), Or(Leaf(Tag("x")), Leaf(Tag("y")))),
			[]string{
				"[tag=a & tag=!b & tag=x & tag=!y]",
				"[tag=!a & tag=b & tag=x & tag=!y]",
				"[tag=a & tag=!b & tag=!x & tag=y]",
				"[tag=!a & tag=b & tag=!x & tag=y]",
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := setStrings(Condense(tt.node))
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Condense =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestCondenseDoesNotAliasBranches(t *testing.T) {
	sets := Condense(Or(Leaf(Tag("a")), Leaf(Tag("b"))))
	sets = CondenseInto(sets, Leaf(Tag("z")))
	sets[0][0] = Tag("changed")
	if sets[1][0].String() != "tag=!a" {
		t.Errorf("branches share storage: %v", setStrings(sets))
	}
}

func initialBranches(m int) []MutationSet {
	acc := make([]MutationSet, m)
	for i := range acc {
		acc[i] = MutationSet{Tag(fmt.Sprintf("base%d", i))}
	}
	return acc
}

func TestProperty_OrCondensation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("k alternatives over m branches yield k*m branches with one positive alternative each", prop.ForAll(
		func(k, m int) bool {
			alts := make([]Node, k)
			for a := range alts {
				alts[a] = Leaf(Family(fmt.Sprintf("alt%d", a)))
			}
			result := CondenseInto(initialBranches(m), Or(alts...))
			if len(result) != k*m {
				return false
			}
			for _, set := range result {
				positive := 0
				for _, mut := range set[1:] {
					if !mut.Inverted() {
						positive++
					}
				}
				if positive != 1 || len(set) != k+1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 6),
		gen.IntRange(1, 6),
	))

	properties.Property("every original branch is paired with every alternative", prop.ForAll(
		func(k, m int) bool {
			alts := make([]Node, k)
			for a := range alts {
				alts[a] = Leaf(Family(fmt.Sprintf("alt%d", a)))
			}
			seen := map[string]bool{}
			for _, set := range CondenseInto(initialBranches(m), Or(alts...)) {
				for _, mut := range set[1:] {
					if !mut.Inverted() {
						seen[set[0].String()+"/"+mut.String()] = true
					}
				}
			}
			return len(seen) == k*m
		},
		gen.IntRange(1, 6),
		gen.IntRange(1, 6),
	))

	properties.Property("AND never changes the branch count", prop.ForAll(
		func(n, m int, inverted bool) bool {
			children := make([]Node, n)
			for i := range children {
				children[i] = Leaf(Tag(fmt.Sprintf("t%d", i)))
			}
			var node Node = And(children...)
			if inverted {
				node = Not(node)
			}
			before := initialBranches(m)
			after := CondenseInto(before, node)
			if len(after) != m {
				return false
			}
			for i := range after {
				if len(after[i]) != len(before[i])+n {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 5),
		gen.IntRange(1, 6),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
