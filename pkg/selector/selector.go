// Package selector models Bedrock target selectors and the mutation algebra
// that turns boolean conditions into one or more concrete selector variants.
//
// Target selectors have no native OR. An OR over k alternatives is expanded
// into k branches, each applying exactly one alternative as written and the
// others inverted, so the branches are mutually exclusive.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// Core is the selector variable, such as s in @s.
type Core string

const (
	Self          Core = "s"
	NearestPlayer Core = "p"
	AllPlayers    Core = "a"
	AllEntities   Core = "e"
	Random        Core = "r"
	Initiator     Core = "initiator"
)

var cores = map[string]Core{
	"s": Self, "p": NearestPlayer, "a": AllPlayers,
	"e": AllEntities, "r": Random, "initiator": Initiator,
}

// Filter is one name-like field entry. Not renders as key=!value.
type Filter struct {
	Value string
	Not   bool
}

func (f Filter) render(key string) string {
	if f.Not {
		return key + "=!" + f.Value
	}
	return key + "=" + f.Value
}

// ScoreFilter is one entry of the scores={...} field.
type ScoreFilter struct {
	Objective string
	Range     typedef.Range
	Not       bool
}

func (s ScoreFilter) String() string {
	if s.Not {
		return s.Objective + "=!" + s.Range.String()
	}
	return s.Objective + "=" + s.Range.String()
}

// Selector is a parsed target selector.
type Selector struct {
	Core      Core
	Types     []Filter
	Families  []Filter
	Tags      []Filter
	Names     []Filter
	Scores    []ScoreFilter
	Radius    *float64 // r
	MinRadius *float64 // rm
	Count     int      // c, zero when absent
	Extra     []string // other key=value pairs, kept verbatim
}

// New returns a selector with no fields.
func New(core Core) Selector {
	return Selector{Core: core}
}

// Clone returns a deep copy.
func (s Selector) Clone() Selector {
	c := s
	c.Types = append([]Filter(nil), s.Types...)
	c.Families = append([]Filter(nil), s.Families...)
	c.Tags = append([]Filter(nil), s.Tags...)
	c.Names = append([]Filter(nil), s.Names...)
	c.Scores = append([]ScoreFilter(nil), s.Scores...)
	c.Extra = append([]string(nil), s.Extra...)
	if s.Radius != nil {
		r := *s.Radius
		c.Radius = &r
	}
	if s.MinRadius != nil {
		rm := *s.MinRadius
		c.MinRadius = &rm
	}
	return c
}

// HasFields reports whether any field is set.
func (s Selector) HasFields() bool {
	return len(s.fields()) > 0
}

// String renders the selector in Bedrock syntax.
func (s Selector) String() string {
	fields := s.fields()
	if len(fields) == 0 {
		return "@" + string(s.Core)
	}
	return "@" + string(s.Core) + "[" + strings.Join(fields, ",") + "]"
}

func (s Selector) fields() []string {
	var out []string
	for _, f := range s.Types {
		out = append(out, f.render("type"))
	}
	for _, f := range s.Families {
		out = append(out, f.render("family"))
	}
	for _, f := range s.Tags {
		out = append(out, f.render("tag"))
	}
	for _, f := range s.Names {
		out = append(out, f.render("name"))
	}
	if len(s.Scores) > 0 {
		parts := make([]string, len(s.Scores))
		for i, sc := range s.Scores {
			parts[i] = sc.String()
		}
		out = append(out, "scores={"+strings.Join(parts, ",")+"}")
	}
	if s.Radius != nil {
		out = append(out, "r="+formatFloat(*s.Radius))
	}
	if s.MinRadius != nil {
		out = append(out, "rm="+formatFloat(*s.MinRadius))
	}
	if s.Count != 0 {
		out = append(out, "c="+strconv.Itoa(s.Count))
	}
	return append(out, s.Extra...)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parse reads a selector such as @e[type=cow,tag=!tamed,r=5].
func Parse(text string) (Selector, error) {
	if !strings.HasPrefix(text, "@") {
		return Selector{}, diag.Errorf(diag.KindSyntax, "selector %q must start with @", text)
	}
	body := text[1:]
	var fieldText string
	if i := strings.IndexByte(body, '['); i >= 0 {
		if !strings.HasSuffix(body, "]") {
			return Selector{}, diag.Errorf(diag.KindSyntax, "selector %q is missing ]", text)
		}
		fieldText = body[i+1 : len(body)-1]
		body = body[:i]
	}
	core, ok := cores[body]
	if !ok {
		return Selector{}, diag.Errorf(diag.KindSyntax, "unknown selector @%s", body)
	}
	sel := Selector{Core: core}
	for _, field := range splitFields(fieldText) {
		if err := sel.parseField(field); err != nil {
			return Selector{}, err
		}
	}
	return sel, nil
}

// splitFields splits on commas outside braces.
func splitFields(text string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func parseFilter(value string) Filter {
	if strings.HasPrefix(value, "!") {
		return Filter{Value: value[1:], Not: true}
	}
	return Filter{Value: value}
}

func (s *Selector) parseField(field string) error {
	key, value, ok := strings.Cut(field, "=")
	if !ok {
		return diag.Errorf(diag.KindSyntax, "selector field %q has no value", field)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	switch key {
	case "type":
		s.Types = append(s.Types, parseFilter(value))
	case "family":
		s.Families = append(s.Families, parseFilter(value))
	case "tag":
		s.Tags = append(s.Tags, parseFilter(value))
	case "name":
		s.Names = append(s.Names, parseFilter(value))
	case "scores":
		if !strings.HasPrefix(value, "{") || !strings.HasSuffix(value, "}") {
			return diag.Errorf(diag.KindSyntax, "scores field must be wrapped in braces: %q", value)
		}
		for _, entry := range splitFields(value[1 : len(value)-1]) {
			sc, err := parseScore(entry)
			if err != nil {
				return err
			}
			s.Scores = append(s.Scores, sc)
		}
	case "r", "rm":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return diag.Errorf(diag.KindSyntax, "invalid %s value %q", key, value)
		}
		if key == "r" {
			s.Radius = &f
		} else {
			s.MinRadius = &f
		}
	case "c":
		n, err := strconv.Atoi(value)
		if err != nil {
			return diag.Errorf(diag.KindSyntax, "invalid count %q", value)
		}
		s.Count = n
	default:
		s.Extra = append(s.Extra, key+"="+value)
	}
	return nil
}

func parseScore(entry string) (ScoreFilter, error) {
	obj, value, ok := strings.Cut(entry, "=")
	if !ok {
		return ScoreFilter{}, diag.Errorf(diag.KindSyntax, "score entry %q has no range", entry)
	}
	sc := ScoreFilter{Objective: strings.TrimSpace(obj)}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "!") {
		sc.Not = true
		value = value[1:]
	}
	r, err := ParseRange(value)
	if err != nil {
		return ScoreFilter{}, err
	}
	sc.Range = r
	return sc, nil
}

// ParseRange reads 5, 1.., ..5 or 1..5.
func ParseRange(text string) (typedef.Range, error) {
	bad := diag.Errorf(diag.KindSyntax, "invalid range %q", text)
	lo, hi, isRange := strings.Cut(text, "..")
	if !isRange {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return typedef.Range{}, bad
		}
		return typedef.Exactly(n), nil
	}
	var r typedef.Range
	if lo != "" {
		n, err := strconv.ParseInt(lo, 10, 64)
		if err != nil {
			return typedef.Range{}, bad
		}
		r.Min = &n
	}
	if hi != "" {
		n, err := strconv.ParseInt(hi, 10, 64)
		if err != nil {
			return typedef.Range{}, bad
		}
		r.Max = &n
	}
	return r, nil
}

// GoString is used by test failure output.
func (s Selector) GoString() string {
	return fmt.Sprintf("selector.Parse(%q)", s.String())
}
