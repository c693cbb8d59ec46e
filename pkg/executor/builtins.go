package executor

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// builtin is a compiler-provided function. Its parameters only inspect
// arguments; the call reads them directly.
type builtin struct {
	keyword    string
	aliases    []string
	importance int
	params     []function.Parameter
	call       func(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error)
}

func (b *builtin) Keyword() string                  { return b.keyword }
func (b *builtin) Aliases() []string                { return b.aliases }
func (b *builtin) Importance() int                  { return b.importance }
func (b *builtin) Parameters() []function.Parameter { return b.params }
func (b *builtin) ImplicitCall() bool               { return false }

func (b *builtin) Call(ctx function.CallContext, args []function.Argument, pos token.Position) (*scoreboard.Value, error) {
	v, err := b.call(ctx, args)
	return v, diag.At(pos, err)
}

func numeric(name string) function.Parameter {
	return function.NewTokenParameter(name, function.Numeric, nil)
}

func integerLiteral(name string) function.Parameter {
	return function.NewTokenParameter(name, function.IntegerLiteral, nil)
}

func registerBuiltins(m *function.Manager) {
	m.Register(&builtin{keyword: "min", params: []function.Parameter{numeric("a"), numeric("b")}, call: extremum("<")})
	m.Register(&builtin{keyword: "max", params: []function.Parameter{numeric("a"), numeric("b")}, call: extremum(">")})
	m.Register(&builtin{keyword: "abs", params: []function.Parameter{numeric("value")}, call: absolute})
	// random(max) is tried before random(min, max).
	m.Register(&builtin{keyword: "random", importance: 1, params: []function.Parameter{integerLiteral("max")}, call: randomBelow})
	m.Register(&builtin{keyword: "random", params: []function.Parameter{integerLiteral("min"), integerLiteral("max")}, call: randomBetween})
	m.Register(&builtin{keyword: "round", params: []function.Parameter{numeric("value")}, call: round})
}

// extremum keeps the smaller ("<") or larger (">") of two numbers, using
// the scoreboard's min and max operations.
func extremum(symbol string) func(function.CallContext, []function.Argument) (*scoreboard.Value, error) {
	return func(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error) {
		a, b := argumentOperand(args[0]), argumentOperand(args[1])
		t, precision := commonType(ctx.Types(), a, b)
		result, err := load(ctx, a, t, precision)
		if err != nil {
			return nil, err
		}
		var other typedef.Operand
		if b.lit != nil {
			n, err := b.lit.Scaled(precision)
			if err != nil {
				return nil, err
			}
			other = ctx.Constants().Constant(n)
		} else if other, err = coerce(ctx, b.value, t, precision); err != nil {
			return nil, err
		}
		ctx.Emit(fmt.Sprintf("scoreboard players operation %s %s %s %s %s",
			result.Holder(), result.Objective(), symbol, other.Holder(), other.Objective()))
		return result, nil
	}
}

func absolute(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error) {
	a := argumentOperand(args[0])
	t, precision := operandType(ctx.Types(), a)
	result, err := load(ctx, a, t, precision)
	if err != nil {
		return nil, err
	}
	minusOne := ctx.Constants().Constant(-1)
	ctx.Emit(fmt.Sprintf("execute if score %s %s matches ..-1 run scoreboard players operation %s %s *= %s %s",
		result.Holder(), result.Objective(), result.Holder(), result.Objective(), minusOne.Holder(), minusOne.Objective()))
	return result, nil
}

// randomBelow returns a number in [0, max).
func randomBelow(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error) {
	hi := args[0].Literal.Mantissa
	if hi < 1 {
		return nil, diag.Errorf(diag.KindParameterBinding, "random(max) needs max >= 1, got %d", hi)
	}
	return randomRange(ctx, 0, hi-1)
}

// randomBetween returns a number in [min, max].
func randomBetween(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error) {
	lo, hi := args[0].Literal.Mantissa, args[1].Literal.Mantissa
	if lo > hi {
		return nil, diag.Errorf(diag.KindParameterBinding, "random(min, max) needs min <= max, got %d > %d", lo, hi)
	}
	return randomRange(ctx, lo, hi)
}

func randomRange(ctx function.CallContext, lo, hi int64) (*scoreboard.Value, error) {
	integer, _ := ctx.Types().FromValueType(typedef.Integer)
	result := ctx.Temps().RequestType(integer, 0, true)
	ctx.Emit(fmt.Sprintf("scoreboard players random %s %s %d %d", result.Holder(), result.Objective(), lo, hi))
	return result, nil
}

// round converts a number to the nearest integer, halves rounding up.
func round(ctx function.CallContext, args []function.Argument) (*scoreboard.Value, error) {
	a := argumentOperand(args[0])
	integer, _ := ctx.Types().FromValueType(typedef.Integer)
	if a.lit != nil {
		n, err := a.lit.Scaled(0)
		if err != nil {
			return nil, err
		}
		return load(ctx, literalOperand(a.tok, typedef.IntLiteral(n)), integer, 0)
	}
	v := a.value
	if v.Type.Type() != typedef.FixedDecimal || v.Precision() == 0 {
		return load(ctx, a, integer, 0)
	}
	scaled, err := load(ctx, a, v.Type, v.Precision())
	if err != nil {
		return nil, err
	}
	half := pow10(v.Precision()) / 2
	divisor := ctx.Constants().Constant(pow10(v.Precision()))
	ctx.Emit(
		fmt.Sprintf("scoreboard players add %s %s %d", scaled.Holder(), scaled.Objective(), half),
		fmt.Sprintf("scoreboard players operation %s %s /= %s %s", scaled.Holder(), scaled.Objective(), divisor.Holder(), divisor.Objective()),
	)
	result := ctx.Temps().RequestType(integer, 0, true)
	ctx.Emit(fmt.Sprintf("scoreboard players operation %s %s = %s %s", result.Holder(), result.Objective(), scaled.Holder(), scaled.Objective()))
	return result, nil
}
