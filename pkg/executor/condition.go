package executor

import (
	"strconv"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/selector"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// cond is a compiled condition. A condition that is decided at compile time
// is known and has no node.
type cond struct {
	node  selector.Node
	known bool
	value bool
}

func knownCond(v bool) cond { return cond{known: true, value: v} }

func nodeCond(n selector.Node) cond { return cond{node: n} }

func notCond(c cond) cond {
	if c.known {
		return knownCond(!c.value)
	}
	return nodeCond(selector.Negate(c.node))
}

// joinConds combines conditions with and (all) or or (any), dropping the
// parts decided at compile time.
func joinConds(parts []cond, all bool) cond {
	var nodes []selector.Node
	for _, p := range parts {
		if p.known {
			if p.value != all {
				return knownCond(!all)
			}
			continue
		}
		nodes = append(nodes, p.node)
	}
	switch {
	case len(nodes) == 0:
		return knownCond(all)
	case len(nodes) == 1:
		return nodeCond(nodes[0])
	case all:
		return nodeCond(selector.And(nodes...))
	}
	return nodeCond(selector.Or(nodes...))
}

// condParser compiles the condition grammar:
//
//	or    = and { ("or" | "||") and }
//	and   = unary { ("and" | "&&") unary }
//	unary = ("not" | "!") unary | "(" or ")" | atom
//
// Commands needed to evaluate expressions are emitted as they are met.
type condParser struct {
	c    *Context
	toks []token.Token
	pos  int
}

func (c *Context) condition(toks []token.Token) (cond, error) {
	if len(toks) == 0 {
		return cond{}, diag.Errorf(diag.KindSyntax, "expected a condition")
	}
	p := &condParser{c: c, toks: toks}
	result, err := p.or()
	if err != nil {
		return cond{}, err
	}
	if p.pos < len(toks) {
		tok := toks[p.pos]
		return cond{}, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "unexpected %q in condition", tok.Literal)
	}
	return result, nil
}

func (p *condParser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func isOr(tok token.Token) bool  { return tok.Type == token.OR || tok.Is("or") }
func isAnd(tok token.Token) bool { return tok.Type == token.AND || tok.Is("and") }
func isNot(tok token.Token) bool { return tok.Type == token.NOT || tok.Is("not") }

func (p *condParser) or() (cond, error) {
	return p.chain(isOr, p.and, false)
}

func (p *condParser) and() (cond, error) {
	return p.chain(isAnd, p.unary, true)
}

func (p *condParser) chain(isSep func(token.Token) bool, operand func() (cond, error), all bool) (cond, error) {
	first, err := operand()
	if err != nil {
		return cond{}, err
	}
	parts := []cond{first}
	for isSep(p.peek()) {
		p.pos++
		next, err := operand()
		if err != nil {
			return cond{}, err
		}
		parts = append(parts, next)
	}
	if len(parts) == 1 {
		return first, nil
	}
	return joinConds(parts, all), nil
}

func (p *condParser) unary() (cond, error) {
	tok := p.peek()
	switch {
	case isNot(tok):
		p.pos++
		inner, err := p.unary()
		if err != nil {
			return cond{}, err
		}
		return notCond(inner), nil
	case tok.Type == token.LPAREN && p.groupsCondition():
		p.pos++
		inner, err := p.or()
		if err != nil {
			return cond{}, err
		}
		if p.peek().Type != token.RPAREN {
			return cond{}, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "missing ')'")
		}
		p.pos++
		return inner, nil
	}
	return p.atom()
}

// groupsCondition reports whether the parenthesis at pos groups conditions
// rather than opening an arithmetic expression such as (a + 1) > 2.
func (p *condParser) groupsCondition() bool {
	end, err := matchParen(p.toks, p.pos)
	if err != nil {
		return true
	}
	if end+1 >= len(p.toks) {
		return true
	}
	after := p.toks[end+1].Type
	_, arithmetic := precedence[after]
	return !after.IsComparison() && !arithmetic
}

func (p *condParser) atom() (cond, error) {
	tok := p.peek()
	if tok.Type == token.IDENT && p.pos+1 < len(p.toks) {
		arg := p.toks[p.pos+1]
		byName := arg.Type == token.IDENT || arg.Type == token.STRING
		switch {
		case tok.Is("family") && byName:
			p.pos += 2
			return nodeCond(selector.Leaf(selector.Family(arg.Literal))), nil
		case tok.Is("type") && byName:
			p.pos += 2
			return nodeCond(selector.Leaf(selector.Type(arg.Literal))), nil
		case tok.Is("tag") && byName:
			p.pos += 2
			return nodeCond(selector.Leaf(selector.Tag(arg.Literal))), nil
		case tok.Is("name") && byName:
			p.pos += 2
			return nodeCond(selector.Leaf(selector.Name(arg.Literal))), nil
		case tok.Is("block"):
			return p.block()
		case tok.Is("near") && (arg.Type == token.INT || arg.Type == token.DECIMAL):
			r, err := strconv.ParseFloat(arg.Literal, 64)
			if err != nil || r < 0 {
				return cond{}, diag.ErrorAt(diag.KindSyntax, arg.Pos(), "invalid radius %q", arg.Literal)
			}
			p.pos += 2
			return nodeCond(selector.Leaf(selector.Near(r))), nil
		}
	}
	return p.comparison()
}

// block parses "block x y z id".
func (p *condParser) block() (cond, error) {
	start := p.toks[p.pos]
	if p.pos+4 >= len(p.toks) {
		return cond{}, diag.ErrorAt(diag.KindSyntax, start.Pos(), "block needs three coordinates and a block id")
	}
	coords := p.toks[p.pos+1 : p.pos+4]
	for _, c := range coords {
		if c.Type != token.COORDINATE && c.Type != token.INT && c.Type != token.DECIMAL {
			return cond{}, diag.ErrorAt(diag.KindSyntax, c.Pos(), "expected a coordinate, got %q", c.Literal)
		}
	}
	id := p.toks[p.pos+4]
	if id.Type != token.IDENT && id.Type != token.STRING {
		return cond{}, diag.ErrorAt(diag.KindSyntax, id.Pos(), "expected a block id, got %q", id.Literal)
	}
	p.pos += 5
	return nodeCond(selector.Leaf(selector.Block(coords[0].Literal, coords[1].Literal, coords[2].Literal, id.Literal))), nil
}

// operandEnd finds where an expression inside a condition stops: at a
// comparison, a connective or an unmatched ')'.
func (p *condParser) operandEnd(from int) int {
	depth := 0
	for i := from; i < len(p.toks); i++ {
		tok := p.toks[i]
		switch {
		case tok.Type == token.LPAREN:
			depth++
		case tok.Type == token.RPAREN:
			if depth == 0 {
				return i
			}
			depth--
		case depth == 0 && (tok.Type.IsComparison() || isAnd(tok) || isOr(tok)):
			return i
		}
	}
	return len(p.toks)
}

func (p *condParser) comparison() (cond, error) {
	start := p.pos
	end := p.operandEnd(start)
	if end == start {
		return cond{}, diag.ErrorAt(diag.KindSyntax, p.peek().Pos(), "expected a condition, got %q", p.peek().Literal)
	}
	left, err := p.c.evaluate(p.toks[start:end])
	if err != nil {
		return cond{}, err
	}
	p.pos = end
	if end >= len(p.toks) || !p.toks[end].Type.IsComparison() {
		return p.c.truth(left)
	}
	op := p.toks[end]
	p.pos++
	rstart := p.pos
	rend := p.operandEnd(rstart)
	if rend == rstart {
		return cond{}, diag.ErrorAt(diag.KindSyntax, op.Pos(), "missing right-hand side of %s", op.Literal)
	}
	right, err := p.c.evaluate(p.toks[rstart:rend])
	if err != nil {
		return cond{}, err
	}
	p.pos = rend
	result, err := p.c.compare(left, op.Type, right)
	return result, diag.At(op.Pos(), err)
}

// truth is the condition of an operand standing alone.
func (c *Context) truth(o operand) (cond, error) {
	if o.lit != nil {
		if o.lit.Kind != typedef.LiteralBoolean {
			return cond{}, diag.ErrorAt(diag.KindTypeConversion, o.tok.Pos(), "%s cannot be used as a condition", o.lit)
		}
		return knownCond(o.lit.Mantissa == 1), nil
	}
	if !o.value.Type.CanCompareAlone() {
		return cond{}, diag.ErrorAt(diag.KindTypeConversion, o.tok.Pos(),
			"%s %s cannot be used alone as a condition, compare it with a value", o.value.TypeString(), o.value.Name)
	}
	return nodeCond(selector.Leaf(selector.Score(typedef.TruthCheck(o.value)))), nil
}

var mirrored = map[token.Type]token.Type{
	token.LT:  token.GT,
	token.GT:  token.LT,
	token.LTE: token.GTE,
	token.GTE: token.LTE,
	token.EQ:  token.EQ,
	token.NEQ: token.NEQ,
}

func (c *Context) compare(left operand, op token.Type, right operand) (cond, error) {
	if left.lit != nil && right.lit != nil {
		return compareLiterals(*left.lit, op, *right.lit)
	}
	if left.lit != nil {
		left, right, op = right, left, mirrored[op]
	}
	if right.lit != nil {
		cmds, checks, err := left.value.Type.CompareToLiteral(left.value, op, *right.lit)
		if err != nil {
			return cond{}, err
		}
		c.Emit(cmds...)
		nodes := make([]selector.Node, len(checks))
		for i, check := range checks {
			nodes[i] = selector.Leaf(selector.Score(check))
		}
		if len(nodes) == 1 {
			return nodeCond(nodes[0]), nil
		}
		return nodeCond(selector.And(nodes...)), nil
	}

	t, precision := commonType(c.types, left, right)
	a, err := coerce(c, left.value, t, precision)
	if err != nil {
		return cond{}, err
	}
	b, err := coerce(c, right.value, t, precision)
	if err != nil {
		return cond{}, err
	}
	symbol, negate := typedef.ComparisonSymbol(op)
	m := selector.Compare(a, b, symbol)
	if negate {
		m = m.Invert()
	}
	return nodeCond(selector.Leaf(m)), nil
}

func compareLiterals(a typedef.Literal, op token.Type, b typedef.Literal) (cond, error) {
	if (a.Kind == typedef.LiteralBoolean) != (b.Kind == typedef.LiteralBoolean) {
		return cond{}, diag.Errorf(diag.KindTypeConversion, "cannot compare %s with %s", a.Kind, b.Kind)
	}
	diff, err := fold(a, typedef.OpSubtract, b)
	if a.Kind == typedef.LiteralBoolean {
		diff, err = typedef.IntLiteral(a.Mantissa-b.Mantissa), nil
	}
	if err != nil {
		return cond{}, err
	}
	d := diff.Mantissa
	switch op {
	case token.EQ:
		return knownCond(d == 0), nil
	case token.NEQ:
		return knownCond(d != 0), nil
	case token.LT:
		return knownCond(d < 0), nil
	case token.LTE:
		return knownCond(d <= 0), nil
	case token.GT:
		return knownCond(d > 0), nil
	case token.GTE:
		return knownCond(d >= 0), nil
	}
	return cond{}, diag.Errorf(diag.KindSyntax, "%s is not a comparison operator", op)
}
