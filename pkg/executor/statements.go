package executor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/attribute"
	"github.com/zurustar/mccompiled/pkg/compiler/statement"
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/selector"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// Run executes top-level statements into the main file. The first error
// stops execution.
func (c *Context) Run(stmts []*statement.Statement) error {
	return c.runBlock(stmts)
}

// runBlock executes stmts in order into the current file. An if statement
// takes the else statements that follow it.
func (c *Context) runBlock(stmts []*statement.Statement) error {
	for i := 0; i < len(stmts); i++ {
		s := stmts[i]
		if s.Keyword() == "if" {
			elseBody, hasElse, n, err := elseChain(stmts, i+1)
			if err != nil {
				return err
			}
			if err := c.runIf(s, elseBody, hasElse); err != nil {
				return diag.At(s.Pos(), err)
			}
			i += n
			continue
		}
		if err := c.runStatement(s); err != nil {
			return diag.At(s.Pos(), err)
		}
	}
	return nil
}

// elseChain collects the else branch following an if at stmts[j-1]. An
// "else if" becomes an else body holding a nested if, which in turn owns
// the rest of the chain. n is the number of statements consumed.
func elseChain(stmts []*statement.Statement, j int) (body []*statement.Statement, ok bool, n int, err error) {
	if j >= len(stmts) || stmts[j].Keyword() != "else" {
		return nil, false, 0, nil
	}
	e := stmts[j]
	if len(e.Tokens) == 1 {
		if !e.HasBlock {
			return nil, false, 0, diag.ErrorAt(diag.KindSyntax, e.Pos(), "else needs a block")
		}
		return e.Block, true, 1, nil
	}
	if !e.Tokens[1].Is("if") {
		return nil, false, 0, diag.ErrorAt(diag.KindSyntax, e.Tokens[1].Pos(), "expected a block or \"if\" after else")
	}
	nested := &statement.Statement{Tokens: e.Tokens[1:], Block: e.Block, HasBlock: e.HasBlock}
	k := j + 1
	for k < len(stmts) && stmts[k].Keyword() == "else" {
		last := stmts[k]
		k++
		if len(last.Tokens) == 1 || !last.Tokens[1].Is("if") {
			break
		}
	}
	body = append([]*statement.Statement{nested}, stmts[j+1:k]...)
	return body, true, k - j, nil
}

func (c *Context) runStatement(s *statement.Statement) error {
	if len(s.Tokens) == 0 {
		return c.runBlock(s.Block)
	}
	c.log.Debug("statement", "line", s.Pos().Line, "text", s.String())
	first := s.Tokens[0]

	switch first.Type {
	case token.COMMAND:
		if len(s.Tokens) > 1 || s.HasBlock {
			return diag.Errorf(diag.KindSyntax, "a command must stand alone on its line")
		}
		c.Emit(first.Literal)
		return nil
	case token.IDENT:
	default:
		return diag.ErrorAt(diag.KindSyntax, first.Pos(), "unexpected %q at start of statement", first.Literal)
	}

	switch first.Literal {
	case "define":
		return c.define(s)
	case "function":
		return c.defineFunction(s)
	case "if":
		return c.runIf(s, nil, false)
	case "else":
		return diag.Errorf(diag.KindSyntax, "else without a preceding if")
	case "return":
		return c.returnStatement(s)
	case "as", "at":
		return c.selectorBlock(s)
	case "feature":
		return c.feature(s)
	}

	if s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "%q does not take a block", first.Literal)
	}
	if len(s.Tokens) > 1 && s.Tokens[1].Type.IsAssignment() {
		target, ok := c.lookup(first.Literal)
		if !ok {
			return c.undefined(first)
		}
		return c.assign(target, s.Tokens[1], s.Tokens[2:])
	}
	if len(s.Tokens) > 1 && s.Tokens[1].Type == token.LPAREN {
		end, err := matchParen(s.Tokens, 1)
		if err != nil {
			return err
		}
		if end != len(s.Tokens)-1 {
			return diag.ErrorAt(diag.KindSyntax, s.Tokens[end+1].Pos(), "unexpected %q after call", s.Tokens[end+1].Literal)
		}
		release := c.temps.Push()
		defer release()
		_, err = c.call(first, s.Tokens[2:end])
		return err
	}
	if len(s.Tokens) == 1 && c.implicitlyCallable(first.Literal) {
		release := c.temps.Push()
		defer release()
		_, err := c.call(first, nil)
		return err
	}
	if _, ok := c.lookup(first.Literal); ok {
		return diag.ErrorAt(diag.KindSyntax, first.Pos(), "expected an assignment to %s", first.Literal)
	}
	return c.undefined(first)
}

// assign handles "x op expr".
func (c *Context) assign(target *scoreboard.Value, opTok token.Token, rhs []token.Token) error {
	release := c.temps.Push()
	defer release()

	val, err := c.evaluate(rhs)
	if err != nil {
		return err
	}
	if opTok.Type == token.ASSIGN {
		return diag.At(opTok.Pos(), store(c, target, val))
	}

	op, _ := typedef.OpFromToken(opTok.Type)
	t := target.Type
	if !t.Supports(op) {
		return diag.ErrorAt(diag.KindTypeConversion, opTok.Pos(), "%s does not support %s", target.TypeString(), opTok.Literal)
	}
	if op == typedef.OpSwap {
		if val.value == nil || !val.value.SameType(target) {
			return diag.ErrorAt(diag.KindTypeConversion, opTok.Pos(), "%s can only be swapped with another %s value", target.Name, target.TypeString())
		}
		c.Emit(t.Swap(target, val.value, c.values)...)
		return nil
	}
	if val.lit != nil {
		cmds, err := typedef.OperateLiteral(t, op, target, *val.lit, c.values)
		if err != nil {
			return diag.At(opTok.Pos(), err)
		}
		c.Emit(cmds...)
		return nil
	}
	other, err := coerce(c, val.value, t, target.Precision())
	if err != nil {
		return diag.At(opTok.Pos(), err)
	}
	c.Emit(typedef.Operate(t, op, target, other, c.values)...)
	return nil
}

type parsedAttribute struct {
	attr attribute.Attribute
	pos  token.Position
}

// scopeFirst moves global and local ahead of the other attributes, so
// that bind sees the final holder whatever order they were written in.
func scopeFirst(attrs []parsedAttribute) []parsedAttribute {
	ordered := make([]parsedAttribute, 0, len(attrs))
	for _, scoped := range []bool{true, false} {
		for _, a := range attrs {
			k := a.attr.Kind()
			if (k == attribute.Global || k == attribute.Local) == scoped {
				ordered = append(ordered, a)
			}
		}
	}
	return ordered
}

// parseAttributes reads a run of attributes, each optionally followed by a
// parenthesised argument list.
func parseAttributes(toks []token.Token) ([]parsedAttribute, error) {
	var attrs []parsedAttribute
	for i := 0; i < len(toks); i++ {
		name := toks[i]
		if name.Type != token.IDENT {
			return nil, diag.ErrorAt(diag.KindSyntax, name.Pos(), "expected an attribute, got %q", name.Literal)
		}
		var args []token.Token
		if i+1 < len(toks) && toks[i+1].Type == token.LPAREN {
			end, err := matchParen(toks, i+1)
			if err != nil {
				return nil, err
			}
			for _, tok := range toks[i+2 : end] {
				if tok.Type != token.COMMA {
					args = append(args, tok)
				}
			}
			i = end
		}
		a, ok, err := attribute.Parse(name.Literal, args, name.Pos())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, unknown(name, "attribute", attributeKinds)
		}
		attrs = append(attrs, parsedAttribute{attr: a, pos: name.Pos()})
	}
	return attrs, nil
}

// typeSpec reads "<type> [precision]" at toks[0].
func (c *Context) typeSpec(toks []token.Token) (t typedef.Typedef, precision, used int, err error) {
	t, ok := c.types.FromKeyword(toks[0].Literal)
	if !ok {
		return nil, 0, 0, unknown(toks[0], "type", c.types.Keywords())
	}
	if t.Type() != typedef.FixedDecimal {
		return t, 0, 1, nil
	}
	if len(toks) > 1 && toks[1].Type == token.INT {
		precision, err = strconv.Atoi(toks[1].Literal)
		if err != nil {
			return nil, 0, 0, diag.ErrorAt(diag.KindSyntax, toks[1].Pos(), "invalid precision %q", toks[1].Literal)
		}
		return t, precision, 2, nil
	}
	return t, DefaultPrecision, 1, nil
}

// define handles "define [attributes] <type> [precision] <name> [= expr]".
func (c *Context) define(s *statement.Statement) error {
	if s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "define does not take a block")
	}
	toks := s.Tokens[1:]
	typeAt := -1
	for i, tok := range toks {
		if _, ok := c.types.FromKeyword(tok.Literal); ok && tok.Type == token.IDENT {
			typeAt = i
			break
		}
	}
	if typeAt < 0 {
		if len(toks) == 0 {
			return diag.Errorf(diag.KindSyntax, "define needs a type and a name")
		}
		return unknown(toks[0], "type", c.types.Keywords())
	}
	attrs, err := parseAttributes(toks[:typeAt])
	if err != nil {
		return err
	}
	t, precision, used, err := c.typeSpec(toks[typeAt:])
	if err != nil {
		return err
	}
	rest := toks[typeAt+used:]
	if len(rest) == 0 || rest[0].Type != token.IDENT {
		return diag.Errorf(diag.KindSyntax, "define needs a value name after %s", t.Keyword())
	}
	nameTok := rest[0]
	rest = rest[1:]

	v, err := c.values.New(nameTok.Literal, t, precision, false)
	if err != nil {
		return diag.At(nameTok.Pos(), err)
	}
	for _, a := range scopeFirst(attrs) {
		if err := attribute.ApplyToValue(a.attr, v, c, a.pos); err != nil {
			return err
		}
	}
	if err := c.values.Define(v); err != nil {
		return diag.At(nameTok.Pos(), err)
	}
	c.log.Debug("defined value", "value", v.String())

	if len(rest) == 0 {
		return nil
	}
	if rest[0].Type != token.ASSIGN {
		return diag.ErrorAt(diag.KindSyntax, rest[0].Pos(), "expected '=' after %s, got %q", v.Name, rest[0].Literal)
	}
	return c.assign(v, rest[0], rest[1:])
}

type paramSpec struct {
	name      token.Token
	t         typedef.Typedef
	precision int
	def       *function.Argument
}

func (p paramSpec) typeString() string {
	if p.t.Type() == typedef.FixedDecimal {
		return fmt.Sprintf("%s %d", p.t.Keyword(), p.precision)
	}
	return p.t.Keyword()
}

// parseParameters reads "<type> [precision] name [= literal], ...".
func (c *Context) parseParameters(toks []token.Token) ([]paramSpec, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var specs []paramSpec
	seen := make(map[string]bool)
	for _, part := range splitTopLevel(toks, token.COMMA) {
		if len(part) == 0 {
			return nil, diag.Errorf(diag.KindSyntax, "empty parameter")
		}
		t, precision, used, err := c.typeSpec(part)
		if err != nil {
			return nil, err
		}
		rest := part[used:]
		if len(rest) == 0 || rest[0].Type != token.IDENT {
			return nil, diag.ErrorAt(diag.KindSyntax, part[0].Pos(), "parameter needs a name")
		}
		spec := paramSpec{name: rest[0], t: t, precision: precision}
		if seen[spec.name.Literal] {
			return nil, diag.ErrorAt(diag.KindSyntax, spec.name.Pos(), "duplicate parameter %q", spec.name.Literal)
		}
		seen[spec.name.Literal] = true
		rest = rest[1:]
		if len(rest) > 0 {
			if rest[0].Type != token.ASSIGN || len(rest) != 2 {
				return nil, diag.ErrorAt(diag.KindSyntax, rest[0].Pos(), "a parameter default must be a single literal")
			}
			lit, err := typedef.ParseLiteral(rest[1])
			if err != nil {
				return nil, diag.At(rest[1].Pos(), err)
			}
			if !t.AcceptsLiteral(lit) {
				return nil, diag.ErrorAt(diag.KindTypeConversion, rest[1].Pos(), "default %s does not fit %s parameter %q",
					lit, spec.typeString(), spec.name.Literal)
			}
			arg := function.LiteralArgument(rest[1], lit)
			spec.def = &arg
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func signature(name string, specs []paramSpec) string {
	types := make([]string, len(specs))
	for i, p := range specs {
		types[i] = p.typeString()
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

func (c *Context) findRuntime(name, sig string) *function.RuntimeFunction {
	for _, fn := range c.functions.Lookup(name) {
		if rf, ok := fn.(*function.RuntimeFunction); ok && rf.Signature() == sig {
			return rf
		}
	}
	return nil
}

// defineFunction handles "function [attributes] name(params) { body }".
// A partial function may be declared again with the same signature; its
// bodies are concatenated.
func (c *Context) defineFunction(s *statement.Statement) error {
	toks := s.Tokens[1:]
	if len(toks) < 3 || toks[len(toks)-1].Type != token.RPAREN {
		return diag.Errorf(diag.KindSyntax, "expected a function name and a parameter list")
	}
	open := -1
	for i := len(toks) - 1; i >= 0 && open < 0; i-- {
		if toks[i].Type == token.LPAREN {
			if end, err := matchParen(toks, i); err == nil && end == len(toks)-1 {
				open = i
			}
		}
	}
	if open < 1 || toks[open-1].Type != token.IDENT {
		return diag.Errorf(diag.KindSyntax, "expected a function name before the parameter list")
	}
	nameTok := toks[open-1]
	attrs, err := parseAttributes(toks[:open-1])
	if err != nil {
		return err
	}
	specs, err := c.parseParameters(toks[open+1 : len(toks)-1])
	if err != nil {
		return err
	}

	fn := c.findRuntime(nameTok.Literal, signature(nameTok.Literal, specs))
	switch {
	case fn != nil && !fn.Partial:
		return diag.ErrorAt(diag.KindSyntax, nameTok.Pos(), "function %s is already defined at line %d", fn.Signature(), fn.Pos.Line)
	case fn != nil:
		for _, a := range attrs {
			if a.attr.Kind() != attribute.Partial {
				return diag.ErrorAt(diag.KindAttributeMisuse, a.pos,
					"attribute %s belongs on the first definition of partial function %s", a.attr.Kind(), fn.Name)
			}
		}
		if len(attrs) == 0 {
			return diag.ErrorAt(diag.KindSyntax, nameTok.Pos(), "function %s is already defined; mark every part partial", fn.Signature())
		}
		c.log.Debug("extending partial function", "function", fn.Name)
	default:
		if fn, err = c.newRuntimeFunction(nameTok, specs, attrs); err != nil {
			return err
		}
	}

	if fn.Extern {
		if s.HasBlock && len(s.Block) > 0 {
			return diag.ErrorAt(diag.KindAttributeMisuse, nameTok.Pos(), "extern function %s cannot have a body", fn.Name)
		}
		return nil
	}
	if !s.HasBlock {
		return diag.ErrorAt(diag.KindSyntax, nameTok.Pos(), "function %s needs a body", fn.Name)
	}

	pop := c.pushFile(fn.File)
	outer := c.current
	c.current = fn
	release := c.temps.Enter(fn.File.Name)
	err = c.runBlock(s.Block)
	release()
	c.current = outer
	pop()
	return err
}

func (c *Context) newRuntimeFunction(nameTok token.Token, specs []paramSpec, attrs []parsedAttribute) (*function.RuntimeFunction, error) {
	file := output.NewCommandFile(c.uniqueFileName(nameTok.Literal), "")
	params := make([]*function.ValueParameter, len(specs))
	for i, spec := range specs {
		v, err := c.values.New(file.Name+"."+spec.name.Literal, spec.t, spec.precision, true)
		if err != nil {
			return nil, diag.At(spec.name.Pos(), err)
		}
		if err := c.values.Define(v); err != nil {
			return nil, diag.At(spec.name.Pos(), err)
		}
		params[i] = function.NewValueParameter(spec.name.Literal, v, spec.def)
	}
	fn, err := function.NewRuntimeFunction(nameTok.Literal, file, params, nameTok.Pos())
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		if err := attribute.ApplyToFunction(a.attr, fn, c, a.pos); err != nil {
			return nil, err
		}
	}
	if !fn.Extern {
		c.sink.AddExtraFile(fn.File)
	}
	c.functions.Register(fn)
	c.log.Debug("defined function", "function", fn.Signature(), "file", file.Path())
	return fn, nil
}

// returnStatement stores the returned expression into the function's
// return value, declaring it on first use.
func (c *Context) returnStatement(s *statement.Statement) error {
	if c.current == nil {
		return diag.Errorf(diag.KindSyntax, "return outside of a function")
	}
	if s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "return does not take a block")
	}
	if len(s.Tokens) == 1 {
		return nil
	}
	release := c.temps.Push()
	defer release()

	val, err := c.evaluate(s.Tokens[1:])
	if err != nil {
		return err
	}
	ret := c.current.Returns
	if ret == nil {
		t, precision := operandType(c.types, val)
		ret, err = c.values.New("_mcc_ret_"+c.current.File.Name, t, precision, true)
		if err != nil {
			return err
		}
		if err := c.values.Define(ret); err != nil {
			return err
		}
		if err := c.current.SetReturn(ret); err != nil {
			return err
		}
	}
	return store(c, ret, val)
}

// blockCommand compiles body into a branch file and returns the command
// that runs it. A body of one command is inlined; an empty body yields "".
func (c *Context) blockCommand(kind string, body []*statement.Statement) (string, error) {
	f := c.newBranch(kind)
	pop := c.pushFile(f)
	err := c.runBlock(body)
	pop()
	if err != nil {
		return "", err
	}
	switch f.Len() {
	case 0:
		return "", nil
	case 1:
		cmd := f.Commands()[0]
		f.Reset()
		return cmd, nil
	}
	return f.CallCommand(), nil
}

// runIf compiles an if statement and its optional else body. A condition
// that expands to one selector variant guards the body directly; several
// variants, or an else, record the outcome in a global score first. Any
// matching variant sets the outcome, so overlapping variants run the body
// once.
func (c *Context) runIf(s *statement.Statement, elseBody []*statement.Statement, hasElse bool) error {
	if !s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "if needs a block")
	}
	release := c.temps.Push()
	defer release()

	cnd, err := c.condition(s.Tokens[1:])
	if err != nil {
		return err
	}
	if cnd.known {
		c.log.Debug("condition decided at compile time", "line", s.Pos().Line, "value", cnd.value)
		switch {
		case cnd.value:
			return c.runBlock(s.Block)
		case hasElse:
			return c.runBlock(elseBody)
		}
		return nil
	}

	sets := selector.Expand(cnd.node)
	base := selector.New(selector.Self)
	if len(sets) == 1 && !hasElse {
		body, err := c.blockCommand("if", s.Block)
		if err != nil || body == "" {
			return err
		}
		c.Emit(selector.Render(sets[0], base, body))
		return nil
	}

	boolType, _ := c.types.FromValueType(typedef.Boolean)
	result := c.temps.RequestOutcome(boolType)
	c.Emit(fmt.Sprintf("scoreboard players set %s %s 0", result.Holder(), result.Objective()))
	for _, set := range sets {
		c.Emit(selector.Render(set, base, fmt.Sprintf("scoreboard players set %s %s 1", result.Holder(), result.Objective())))
	}
	body, err := c.blockCommand("if", s.Block)
	if err != nil {
		return err
	}
	if body != "" {
		c.Emit(fmt.Sprintf("execute if score %s %s matches 1 run %s", result.Holder(), result.Objective(), body))
	}
	if !hasElse {
		return nil
	}
	other, err := c.blockCommand("else", elseBody)
	if err != nil || other == "" {
		return err
	}
	c.Emit(fmt.Sprintf("execute if score %s %s matches 0 run %s", result.Holder(), result.Objective(), other))
	return nil
}

// selectorBlock handles "as <selector> { }" and "at <selector> { }".
func (c *Context) selectorBlock(s *statement.Statement) error {
	kw := s.Tokens[0].Literal
	if len(s.Tokens) != 2 || s.Tokens[1].Type != token.SELECTOR {
		return diag.Errorf(diag.KindSyntax, "%s needs exactly one selector", kw)
	}
	if !s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "%s needs a block", kw)
	}
	sel, err := selector.Parse(s.Tokens[1].Literal)
	if err != nil {
		return diag.At(s.Tokens[1].Pos(), err)
	}
	body, err := c.blockCommand(kw, s.Block)
	if err != nil || body == "" {
		return err
	}
	if kw == "as" {
		c.Emit(fmt.Sprintf("execute as %s at @s run %s", sel, body))
	} else {
		c.Emit(fmt.Sprintf("execute at %s run %s", sel, body))
	}
	return nil
}

// feature handles "feature <name>".
func (c *Context) feature(s *statement.Statement) error {
	if len(s.Tokens) != 2 || s.Tokens[1].Type != token.IDENT || s.HasBlock {
		return diag.Errorf(diag.KindSyntax, "feature needs exactly one name")
	}
	c.EnableFeature(s.Tokens[1].Literal)
	return nil
}
