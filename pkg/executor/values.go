package executor

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// DefaultPrecision is the precision of "define decimal x" without a digit count.
const DefaultPrecision = 2

// operand is an evaluated expression: a compile-time literal or a score.
type operand struct {
	tok   token.Token
	lit   *typedef.Literal
	value *scoreboard.Value
}

func literalOperand(tok token.Token, lit typedef.Literal) operand {
	return operand{tok: tok, lit: &lit}
}

func valueOperand(tok token.Token, v *scoreboard.Value) operand {
	return operand{tok: tok, value: v}
}

func (o operand) argument() function.Argument {
	if o.value != nil {
		return function.ValueArgument(o.tok, o.value)
	}
	return function.LiteralArgument(o.tok, *o.lit)
}

func (o operand) String() string {
	if o.value != nil {
		return o.value.Name
	}
	return o.lit.String()
}

func argumentOperand(arg function.Argument) operand {
	return operand{tok: arg.Token, lit: arg.Literal, value: arg.Value}
}

// literalType is the type a literal takes when it has to live in a score.
func literalType(types *typedef.Registry, lit typedef.Literal) (typedef.Typedef, int) {
	vt := typedef.Integer
	precision := 0
	switch lit.Kind {
	case typedef.LiteralDecimal:
		vt, precision = typedef.FixedDecimal, lit.Scale
	case typedef.LiteralBoolean:
		vt = typedef.Boolean
	case typedef.LiteralTime:
		vt = typedef.Time
	}
	t, _ := types.FromValueType(vt)
	return t, precision
}

func operandType(types *typedef.Registry, o operand) (typedef.Typedef, int) {
	if o.value != nil {
		return o.value.Type, o.value.Precision()
	}
	return literalType(types, *o.lit)
}

// commonType picks the type two operands are combined in. Any decimal makes
// the result decimal; a decimal score fixes the precision, otherwise the
// widest decimal literal does. Without decimals the score's type wins over
// a literal's, and the left operand's over the right's.
func commonType(types *typedef.Registry, operands ...operand) (typedef.Typedef, int) {
	scorePrecision, literalPrecision := -1, -1
	for _, o := range operands {
		t, p := operandType(types, o)
		if t.Type() != typedef.FixedDecimal {
			continue
		}
		if o.value != nil && p > scorePrecision {
			scorePrecision = p
		}
		if o.value == nil && p > literalPrecision {
			literalPrecision = p
		}
	}
	if scorePrecision >= 0 || literalPrecision >= 0 {
		dec, _ := types.FromValueType(typedef.FixedDecimal)
		if scorePrecision >= 0 {
			return dec, scorePrecision
		}
		return dec, literalPrecision
	}
	for _, o := range operands {
		if o.value != nil {
			return o.value.Type, o.value.Precision()
		}
	}
	return operandType(types, operands[0])
}

// lookup finds a value by name. Inside a function body the parameters
// shadow values of the same name.
func (c *Context) lookup(name string) (*scoreboard.Value, bool) {
	if c.current != nil {
		for _, p := range c.current.Params {
			if p.Name() == name {
				return p.Value, true
			}
		}
	}
	return c.values.Lookup(name)
}

// store writes o into dst.
func store(ctx function.CallContext, dst *scoreboard.Value, o operand) error {
	if o.value == nil {
		cmds, err := dst.Type.AssignLiteral(dst, *o.lit)
		if err != nil {
			return err
		}
		ctx.Emit(cmds...)
		return nil
	}
	if o.value == dst {
		return nil
	}
	if !o.value.Type.CanConvertTo(dst.Type) {
		return diag.Errorf(diag.KindTypeConversion, "cannot assign %s %s to %s %s",
			o.value.TypeString(), o.value.Name, dst.TypeString(), dst.Name)
	}
	cmds, err := o.value.Type.ConvertTo(o.value, dst, dst.Type, ctx.Constants())
	if err != nil {
		return err
	}
	ctx.Emit(cmds...)
	return nil
}

// load copies o into a fresh global temporary of type t.
func load(ctx function.CallContext, o operand, t typedef.Typedef, precision int) (*scoreboard.Value, error) {
	tmp := ctx.Temps().RequestType(t, precision, true)
	if err := store(ctx, tmp, o); err != nil {
		return nil, err
	}
	return tmp, nil
}

// coerce returns v when it already has type t at precision, and a converted
// temporary copy otherwise.
func coerce(ctx function.CallContext, v *scoreboard.Value, t typedef.Typedef, precision int) (*scoreboard.Value, error) {
	if v.Type.Type() == t.Type() && v.Precision() == precision {
		return v, nil
	}
	return load(ctx, valueOperand(token.Token{}, v), t, precision)
}
