package function

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/zurustar/mccompiled/pkg/diag"
)

type entry struct {
	fn  Function
	seq int
}

// Manager is the function registry of one compilation. Keywords and
// aliases are matched case-insensitively.
type Manager struct {
	byKey map[string][]entry
	order []string
	seq   int
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{byKey: make(map[string][]entry)}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Register adds fn under its keyword and aliases.
func (m *Manager) Register(fn Function) {
	e := entry{fn: fn, seq: m.seq}
	m.seq++
	for _, name := range append([]string{fn.Keyword()}, fn.Aliases()...) {
		key := fold(name)
		if _, ok := m.byKey[key]; !ok {
			m.order = append(m.order, name)
		}
		m.byKey[key] = append(m.byKey[key], e)
	}
}

// Has reports whether any function is registered under keyword.
func (m *Manager) Has(keyword string) bool {
	return len(m.byKey[fold(keyword)]) > 0
}

// Keywords returns every registered name, in registration order.
func (m *Manager) Keywords() []string {
	return append([]string(nil), m.order...)
}

// Lookup returns the candidates for keyword, most important first. Equal
// importance keeps registration order.
func (m *Manager) Lookup(keyword string) []Function {
	entries := append([]entry(nil), m.byKey[fold(keyword)]...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].fn.Importance() > entries[j].fn.Importance()
	})
	fns := make([]Function, len(entries))
	for i, e := range entries {
		fns[i] = e.fn
	}
	return fns
}

// Resolve picks the overload of keyword that best fits args. Importance
// tiers are tried from the highest down; within the first tier that has a
// match, the highest score wins and ties go to the earliest registration.
// When nothing matches, the error of the most important candidate is
// returned.
func (m *Manager) Resolve(keyword string, args []Argument) (Function, int, error) {
	candidates := m.Lookup(keyword)
	if len(candidates) == 0 {
		return nil, 0, diag.Errorf(diag.KindUndefined, "unknown function %q", keyword)
	}

	var firstErr error
	for start := 0; start < len(candidates); {
		importance := candidates[start].Importance()
		end := start
		var best Function
		bestScore := -1
		for ; end < len(candidates) && candidates[end].Importance() == importance; end++ {
			score, err := Match(candidates[end], args)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if score > bestScore {
				best, bestScore = candidates[end], score
			}
		}
		if best != nil {
			return best, bestScore, nil
		}
		start = end
	}
	return nil, 0, diag.Wrap(diag.KindParameterBinding, firstErr, "no overload of %s accepts (%s)", keyword, describe(args))
}

func describe(args []Argument) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}
