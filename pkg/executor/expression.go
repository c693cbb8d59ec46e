package executor

import (
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

var precedence = map[token.Type]int{
	token.PLUS:    1,
	token.MINUS:   1,
	token.STAR:    2,
	token.SLASH:   2,
	token.PERCENT: 2,
}

// exprParser evaluates an arithmetic expression by precedence climbing.
// Scores are combined into temporaries; literals are folded.
type exprParser struct {
	c    *Context
	toks []token.Token
	pos  int
}

// evaluate computes toks. Temporaries it allocates belong to the caller's
// temp scope.
func (c *Context) evaluate(toks []token.Token) (operand, error) {
	if len(toks) == 0 {
		return operand{}, diag.Errorf(diag.KindSyntax, "expected an expression")
	}
	p := &exprParser{c: c, toks: toks}
	result, err := p.binary(1)
	if err != nil {
		return operand{}, err
	}
	if p.pos < len(toks) {
		tok := toks[p.pos]
		return operand{}, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "unexpected %q in expression", tok.Literal)
	}
	return result, nil
}

func (p *exprParser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() token.Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *exprParser) binary(minPrec int) (operand, error) {
	left, err := p.unary()
	if err != nil {
		return operand{}, err
	}
	for {
		op := p.peek()
		prec, ok := precedence[op.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.pos++
		right, err := p.binary(prec + 1)
		if err != nil {
			return operand{}, err
		}
		if left, err = p.c.combine(left, op, right); err != nil {
			return operand{}, diag.At(op.Pos(), err)
		}
	}
}

func (p *exprParser) unary() (operand, error) {
	tok := p.next()
	switch tok.Type {
	case token.MINUS:
		inner, err := p.unary()
		if err != nil {
			return operand{}, err
		}
		if inner.lit != nil {
			return literalOperand(tok, negate(*inner.lit)), nil
		}
		minusOne := literalOperand(tok, typedef.IntLiteral(-1))
		return p.c.combine(inner, token.Token{Type: token.STAR, Literal: "*"}, minusOne)
	case token.LPAREN:
		inner, err := p.binary(1)
		if err != nil {
			return operand{}, err
		}
		if closing := p.next(); closing.Type != token.RPAREN {
			return operand{}, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "missing ')'")
		}
		return inner, nil
	case token.INT, token.DECIMAL, token.TIME:
		lit, err := typedef.ParseLiteral(tok)
		if err != nil {
			return operand{}, diag.At(tok.Pos(), err)
		}
		return literalOperand(tok, lit), nil
	case token.IDENT:
		return p.identifier(tok)
	case token.EOF:
		return operand{}, diag.Errorf(diag.KindSyntax, "unexpected end of expression")
	}
	return operand{}, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "unexpected %q in expression", tok.Literal)
}

func (p *exprParser) identifier(tok token.Token) (operand, error) {
	if tok.IsBool() {
		lit, _ := typedef.ParseLiteral(tok)
		return literalOperand(tok, lit), nil
	}
	if p.peek().Type == token.LPAREN {
		end, err := matchParen(p.toks, p.pos)
		if err != nil {
			return operand{}, err
		}
		args := p.toks[p.pos+1 : end]
		p.pos = end + 1
		return p.c.callForValue(tok, args)
	}
	if v, ok := p.c.lookup(tok.Literal); ok {
		return valueOperand(tok, v), nil
	}
	if p.c.implicitlyCallable(tok.Literal) {
		return p.c.callForValue(tok, nil)
	}
	return operand{}, p.c.undefined(tok)
}

func (c *Context) callForValue(name token.Token, args []token.Token) (operand, error) {
	result, err := c.call(name, args)
	if err != nil {
		return operand{}, err
	}
	if result == nil {
		return operand{}, diag.ErrorAt(diag.KindTypeConversion, name.Pos(), "function %s does not return a value", name.Literal)
	}
	return valueOperand(name, result), nil
}

// combine applies op to two operands. The result is a literal when both
// are literals, and a temporary otherwise. Named values are never modified.
func (c *Context) combine(left operand, opTok token.Token, right operand) (operand, error) {
	op, ok := typedef.OpFromToken(opTok.Type)
	if !ok {
		return operand{}, diag.Errorf(diag.KindSyntax, "%q is not an arithmetic operator", opTok.Literal)
	}
	if left.lit != nil && right.lit != nil {
		lit, err := fold(*left.lit, op, *right.lit)
		if err != nil {
			return operand{}, err
		}
		return literalOperand(left.tok, lit), nil
	}

	t, precision := commonType(c.types, left, right)
	if !t.Supports(op) {
		return operand{}, diag.Errorf(diag.KindTypeConversion, "operation %s is not supported on %s", opTok.Literal, t.Keyword())
	}
	result, err := c.accumulator(left, t, precision)
	if err != nil {
		return operand{}, err
	}
	if right.lit != nil {
		cmds, err := typedef.OperateLiteral(t, op, result, *right.lit, c.values)
		if err != nil {
			return operand{}, err
		}
		c.Emit(cmds...)
		return valueOperand(left.tok, result), nil
	}
	other, err := coerce(c, right.value, t, precision)
	if err != nil {
		return operand{}, err
	}
	c.Emit(typedef.Operate(t, op, result, other, c.values)...)
	return valueOperand(left.tok, result), nil
}

// accumulator returns the temporary an operation writes into. A temporary
// produced earlier in the same expression is reused.
func (c *Context) accumulator(left operand, t typedef.Typedef, precision int) (*scoreboard.Value, error) {
	if v := left.value; v != nil && v.Temporary && v.Type.Type() == t.Type() && v.Precision() == precision {
		return v, nil
	}
	return load(c, left, t, precision)
}

// fold evaluates an operation between two literals the way the scoreboard
// would: division and modulo round towards negative infinity.
func fold(a typedef.Literal, op typedef.Op, b typedef.Literal) (typedef.Literal, error) {
	if a.Kind == typedef.LiteralBoolean || b.Kind == typedef.LiteralBoolean {
		return typedef.Literal{}, diag.Errorf(diag.KindTypeConversion, "booleans do not support arithmetic")
	}
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	x := a.Mantissa * pow10(scale-a.Scale)
	y := b.Mantissa * pow10(scale-b.Scale)

	var m int64
	switch op {
	case typedef.OpAdd:
		m = x + y
	case typedef.OpSubtract:
		m = x - y
	case typedef.OpMultiply:
		m = x * y
		if scale > 0 {
			m = floorDiv(m, pow10(scale))
		}
	case typedef.OpDivide, typedef.OpModulo:
		if y == 0 {
			return typedef.Literal{}, diag.Errorf(diag.KindTypeConversion, "division by zero")
		}
		if op == typedef.OpDivide {
			m = floorDiv(x*pow10(scale), y)
		} else {
			m = x - floorDiv(x, y)*y
		}
	default:
		return typedef.Literal{}, diag.Errorf(diag.KindTypeConversion, "operation %s is not supported on literals", op)
	}

	kind := typedef.LiteralInteger
	switch {
	case scale > 0:
		kind = typedef.LiteralDecimal
	case a.Kind == typedef.LiteralTime || b.Kind == typedef.LiteralTime:
		kind = typedef.LiteralTime
	}
	return typedef.Literal{Kind: kind, Mantissa: m, Scale: scale, Text: formatFixed(m, scale)}, nil
}

func negate(l typedef.Literal) typedef.Literal {
	l.Mantissa = -l.Mantissa
	l.Text = formatFixed(l.Mantissa, l.Scale)
	return l
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

func formatFixed(m int64, scale int) string {
	if scale == 0 {
		return strconv.FormatInt(m, 10)
	}
	sign := ""
	if m < 0 {
		sign, m = "-", -m
	}
	digits := strconv.FormatInt(m, 10)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	cut := len(digits) - scale
	return sign + digits[:cut] + "." + digits[cut:]
}

// matchParen returns the index of the ')' closing the '(' at open.
func matchParen(toks []token.Token, open int) (int, error) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, diag.ErrorAt(diag.KindSyntax, toks[open].Pos(), "missing ')'")
}

// splitTopLevel splits toks at separators that are not inside parentheses.
func splitTopLevel(toks []token.Token, sep token.Type) [][]token.Token {
	var parts [][]token.Token
	depth, start := 0, 0
	for i, tok := range toks {
		switch tok.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

// arguments evaluates a call's argument list. Strings, selectors,
// coordinates and unknown identifiers are passed as tokens.
func (c *Context) arguments(toks []token.Token) ([]function.Argument, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var args []function.Argument
	for _, part := range splitTopLevel(toks, token.COMMA) {
		if len(part) == 0 {
			return nil, diag.Errorf(diag.KindSyntax, "empty argument")
		}
		if len(part) == 1 && c.isTokenArgument(part[0]) {
			args = append(args, function.TokenArgument(part[0]))
			continue
		}
		o, err := c.evaluate(part)
		if err != nil {
			return nil, err
		}
		args = append(args, o.argument())
	}
	return args, nil
}

func (c *Context) isTokenArgument(tok token.Token) bool {
	switch tok.Type {
	case token.STRING, token.SELECTOR, token.COORDINATE:
		return true
	case token.IDENT:
		if tok.IsBool() {
			return false
		}
		_, isValue := c.lookup(tok.Literal)
		return !isValue && !c.functions.Has(tok.Literal)
	}
	return false
}

// call resolves and invokes a function. argToks are the tokens between the
// parentheses.
func (c *Context) call(name token.Token, argToks []token.Token) (*scoreboard.Value, error) {
	args, err := c.arguments(argToks)
	if err != nil {
		return nil, err
	}
	fn, score, err := c.functions.Resolve(name.Literal, args)
	if err != nil {
		if !c.functions.Has(name.Literal) {
			return nil, c.undefined(name)
		}
		return nil, diag.At(name.Pos(), err)
	}
	c.log.Debug("resolved call", "function", fn.Keyword(), "args", len(args), "score", score)
	bound, err := function.ProcessParameters(c, fn, args)
	if err != nil {
		return nil, diag.At(name.Pos(), err)
	}
	return fn.Call(c, bound, name.Pos())
}

// implicitlyCallable reports whether name may be called without parentheses.
func (c *Context) implicitlyCallable(name string) bool {
	for _, fn := range c.functions.Lookup(name) {
		if fn.ImplicitCall() {
			return true
		}
	}
	return false
}
