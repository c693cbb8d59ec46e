package selector

import (
	"fmt"
	"strings"

	"github.com/zurustar/mccompiled/pkg/typedef"
)

// Phase says where a mutation takes effect.
type Phase int

const (
	// PreSelector mutations become fields of the selector itself.
	PreSelector Phase = iota
	// PostSelector mutations become execute subcommands after the selector.
	PostSelector
)

func (p Phase) String() string {
	if p == PreSelector {
		return "pre"
	}
	return "post"
}

// Mutation is one selector filter change. Mutations are values: Invert
// returns a new mutation and never modifies the receiver.
type Mutation interface {
	Phase() Phase
	Inverted() bool
	// Invert returns the mutation with the opposite outcome.
	Invert() Mutation
	// Apply adds the mutation to sel, or returns the subcommand it emits.
	Apply(sel *Selector) string
	String() string
}

type fieldKind int

const (
	fieldFamily fieldKind = iota
	fieldType
	fieldTag
	fieldName
)

var fieldKeys = [...]string{"family", "type", "tag", "name"}

type fieldMutation struct {
	kind  fieldKind
	value string
	not   bool
}

// Family filters on an entity family.
func Family(name string) Mutation { return fieldMutation{kind: fieldFamily, value: name} }

// Type filters on an entity type identifier.
func Type(id string) Mutation { return fieldMutation{kind: fieldType, value: id} }

// Tag filters on a tag.
func Tag(name string) Mutation { return fieldMutation{kind: fieldTag, value: name} }

// Name filters on an entity name.
func Name(name string) Mutation { return fieldMutation{kind: fieldName, value: name} }

func (m fieldMutation) Phase() Phase     { return PreSelector }
func (m fieldMutation) Inverted() bool   { return m.not }
func (m fieldMutation) Invert() Mutation { m.not = !m.not; return m }

func (m fieldMutation) Apply(sel *Selector) string {
	f := Filter{Value: m.value, Not: m.not}
	switch m.kind {
	case fieldFamily:
		sel.Families = append(sel.Families, f)
	case fieldType:
		sel.Types = append(sel.Types, f)
	case fieldTag:
		sel.Tags = append(sel.Tags, f)
	case fieldName:
		sel.Names = append(sel.Names, f)
	}
	return ""
}

func (m fieldMutation) String() string {
	return Filter{Value: m.value, Not: m.not}.render(fieldKeys[m.kind])
}

// scoreMutation checks a score. Checks against the executing entity become
// a scores= field; anything else is an if/unless score subcommand.
type scoreMutation struct {
	check typedef.ScoreCheck
}

// Score wraps a score check. A check whose holder is @s is applied to the
// selector; other holders are tested after it.
func Score(check typedef.ScoreCheck) Mutation {
	return scoreMutation{check: check}
}

func (m scoreMutation) Phase() Phase {
	if m.check.Holder == "@s" {
		return PreSelector
	}
	return PostSelector
}

func (m scoreMutation) Inverted() bool   { return m.check.Negate }
func (m scoreMutation) Invert() Mutation { return scoreMutation{check: m.check.Inverted()} }

func (m scoreMutation) Apply(sel *Selector) string {
	if m.Phase() == PreSelector {
		sel.Scores = append(sel.Scores, ScoreFilter{
			Objective: m.check.Objective,
			Range:     m.check.Range,
			Not:       m.check.Negate,
		})
		return ""
	}
	return m.check.Subcommand()
}

func (m scoreMutation) String() string {
	return m.check.Subcommand()
}

// conditionMutation is a raw execute test such as "block 0 64 0 stone".
type conditionMutation struct {
	test string
	not  bool
}

// Condition emits "if <test>", or "unless <test>" when inverted.
func Condition(test string) Mutation {
	return conditionMutation{test: test}
}

// Block checks the block at x y z.
func Block(x, y, z, block string) Mutation {
	return Condition(strings.Join([]string{"block", x, y, z, block}, " "))
}

// Compare tests two scores against each other with op (=, <, <=, >, >=).
func Compare(left, right typedef.Operand, op string) Mutation {
	return Condition(fmt.Sprintf("score %s %s %s %s %s",
		left.Holder(), left.Objective(), op, right.Holder(), right.Objective()))
}

func (m conditionMutation) Phase() Phase     { return PostSelector }
func (m conditionMutation) Inverted() bool   { return m.not }
func (m conditionMutation) Invert() Mutation { m.not = !m.not; return m }
func (m conditionMutation) Apply(*Selector) string {
	return m.String()
}

func (m conditionMutation) String() string {
	if m.not {
		return "unless " + m.test
	}
	return "if " + m.test
}

// distanceMutation limits the distance from the execution position.
// Inverted, the radius becomes a minimum instead.
type distanceMutation struct {
	radius float64
	not    bool
}

// Near keeps entities within radius blocks.
func Near(radius float64) Mutation {
	return distanceMutation{radius: radius}
}

func (m distanceMutation) Phase() Phase     { return PreSelector }
func (m distanceMutation) Inverted() bool   { return m.not }
func (m distanceMutation) Invert() Mutation { m.not = !m.not; return m }

func (m distanceMutation) Apply(sel *Selector) string {
	r := m.radius
	if m.not {
		sel.MinRadius = &r
	} else {
		sel.Radius = &r
	}
	return ""
}

func (m distanceMutation) String() string {
	if m.not {
		return "rm=" + formatFloat(m.radius)
	}
	return "r=" + formatFloat(m.radius)
}

// MutationSet is a list of mutations that all apply: one selector variant.
type MutationSet []Mutation

// Apply returns base with the pre-selector mutations added, plus the
// subcommands of the post-selector mutations in order.
func (s MutationSet) Apply(base Selector) (Selector, []string) {
	sel := base.Clone()
	var post []string
	for _, m := range s {
		if sub := m.Apply(&sel); sub != "" {
			post = append(post, sub)
		}
	}
	return sel, post
}

// Subcommands returns the execute subcommands testing the whole set from
// the point of view of base.
func (s MutationSet) Subcommands(base Selector) []string {
	sel, post := s.Apply(base)
	var subs []string
	for _, m := range s {
		if m.Phase() == PreSelector {
			subs = append(subs, "if entity "+sel.String())
			break
		}
	}
	return append(subs, post...)
}

func (s MutationSet) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, " & ") + "]"
}

// Render produces the command that runs command when every mutation in
// set holds for base.
func Render(set MutationSet, base Selector, command string) string {
	subs := set.Subcommands(base)
	if len(subs) == 0 {
		return command
	}
	return "execute " + strings.Join(subs, " ") + " run " + command
}
