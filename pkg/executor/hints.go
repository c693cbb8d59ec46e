package executor

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/zurustar/mccompiled/pkg/attribute"
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// statementKeywords are the words that start a statement.
var statementKeywords = []string{"define", "function", "if", "else", "as", "at", "return", "feature"}

var attributeKinds = []string{
	string(attribute.Auto), string(attribute.Global), string(attribute.Local),
	string(attribute.Export), string(attribute.Extern), string(attribute.Partial),
	string(attribute.Bind), string(attribute.Test), string(attribute.Async),
}

// suggest returns the candidate closest to name, or "". Abbreviations are
// matched first ("scr" finds "score"), then small typos.
func suggest(name string, candidates []string) string {
	if ranks := fuzzy.RankFindFold(name, candidates); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDistance := "", len(name)/3+2
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// undefined reports an unknown identifier with a hint drawn from every
// name in scope.
func (c *Context) undefined(tok token.Token) error {
	var candidates []string
	for _, name := range c.values.Names() {
		if !strings.HasPrefix(name, "_mcc") {
			candidates = append(candidates, name)
		}
	}
	if c.current != nil {
		for _, p := range c.current.Params {
			candidates = append(candidates, p.Name())
		}
	}
	candidates = append(candidates, c.functions.Keywords()...)
	candidates = append(candidates, statementKeywords...)
	return unknown(tok, "identifier", candidates)
}

func unknown(tok token.Token, what string, candidates []string) error {
	if hint := suggest(tok.Literal, candidates); hint != "" {
		return diag.ErrorAt(diag.KindUndefined, tok.Pos(), "unknown %s %q, did you mean %q?", what, tok.Literal, hint)
	}
	return diag.ErrorAt(diag.KindUndefined, tok.Pos(), "unknown %s %q", what, tok.Literal)
}
