package function

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// Fit is how well an argument matches a parameter. Its value is the score
// it contributes to a match.
type Fit int

const (
	FitNo Fit = iota
	FitWithConversion
	FitWithSubConversion
	FitYes
)

func (f Fit) String() string {
	switch f {
	case FitNo:
		return "no"
	case FitWithConversion:
		return "with conversion"
	case FitWithSubConversion:
		return "with sub-conversion"
	case FitYes:
		return "yes"
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// Argument is one evaluated call-site input. Exactly one of Value and
// Literal is set for numeric inputs; other inputs only carry their token.
type Argument struct {
	Token   token.Token
	Value   *scoreboard.Value
	Literal *typedef.Literal
}

// ValueArgument wraps an evaluated score.
func ValueArgument(tok token.Token, v *scoreboard.Value) Argument {
	return Argument{Token: tok, Value: v}
}

// LiteralArgument wraps a literal.
func LiteralArgument(tok token.Token, lit typedef.Literal) Argument {
	return Argument{Token: tok, Literal: &lit}
}

// TokenArgument wraps a string, selector or identifier.
func TokenArgument(tok token.Token) Argument {
	return Argument{Token: tok}
}

func (a Argument) String() string {
	switch {
	case a.Value != nil:
		return a.Value.Name
	case a.Literal != nil:
		return a.Literal.String()
	}
	return a.Token.Literal
}

// Parameter is one declared parameter.
type Parameter interface {
	Name() string
	Optional() bool
	// Default is used when the call site leaves the parameter out.
	Default() (Argument, bool)
	Fit(arg Argument) Fit
	// Bind stores arg into the parameter, emitting commands through ctx.
	Bind(ctx CallContext, arg Argument) error
}

// ValueParameter is a typed parameter backed by a scoreboard value.
type ValueParameter struct {
	name  string
	Value *scoreboard.Value
	def   *Argument
}

// NewValueParameter creates a parameter stored in v. def may be nil.
func NewValueParameter(name string, v *scoreboard.Value, def *Argument) *ValueParameter {
	return &ValueParameter{name: name, Value: v, def: def}
}

func (p *ValueParameter) Name() string   { return p.name }
func (p *ValueParameter) Optional() bool { return p.def != nil }

func (p *ValueParameter) Default() (Argument, bool) {
	if p.def == nil {
		return Argument{}, false
	}
	return *p.def, true
}

func (p *ValueParameter) Fit(arg Argument) Fit {
	return FitValue(p.Value.Type, p.Value.Precision(), arg)
}

// FitValue rates arg against a parameter of type t at precision.
func FitValue(t typedef.Typedef, precision int, arg Argument) Fit {
	switch {
	case arg.Value != nil:
		from := arg.Value.Type
		if from.Type() == t.Type() {
			if arg.Value.Precision() == precision {
				return FitYes
			}
			return FitWithSubConversion
		}
		if from.CanConvertTo(t) {
			return FitWithConversion
		}
	case arg.Literal != nil:
		if !t.AcceptsLiteral(*arg.Literal) {
			return FitNo
		}
		if nativeLiteral(t.Type()) == arg.Literal.Kind {
			return FitYes
		}
		return FitWithConversion
	}
	return FitNo
}

func nativeLiteral(v typedef.ValueType) typedef.LiteralKind {
	switch v {
	case typedef.FixedDecimal:
		return typedef.LiteralDecimal
	case typedef.Boolean:
		return typedef.LiteralBoolean
	case typedef.Time:
		return typedef.LiteralTime
	}
	return typedef.LiteralInteger
}

// Bind copies arg into the parameter's value.
func (p *ValueParameter) Bind(ctx CallContext, arg Argument) error {
	var cmds []string
	var err error
	switch {
	case arg.Value != nil:
		if arg.Value == p.Value {
			return nil
		}
		if !arg.Value.Type.CanConvertTo(p.Value.Type) {
			return diag.Errorf(diag.KindTypeConversion, "cannot pass %s as %s parameter %q",
				arg.Value.TypeString(), p.Value.TypeString(), p.name)
		}
		cmds, err = arg.Value.Type.ConvertTo(arg.Value, p.Value, p.Value.Type, ctx.Constants())
	case arg.Literal != nil:
		cmds, err = p.Value.Type.AssignLiteral(p.Value, *arg.Literal)
	default:
		return diag.Errorf(diag.KindParameterBinding, "%q cannot be passed as parameter %q", arg.Token.Literal, p.name)
	}
	if err != nil {
		return err
	}
	ctx.Emit(cmds...)
	return nil
}

// TokenParameter accepts arguments by inspecting them with a fit function.
// It is used by built-in functions, which read their arguments directly.
type TokenParameter struct {
	name string
	fit  func(Argument) Fit
	def  *Argument
}

// NewTokenParameter creates a parameter. def may be nil.
func NewTokenParameter(name string, fit func(Argument) Fit, def *Argument) *TokenParameter {
	return &TokenParameter{name: name, fit: fit, def: def}
}

func (p *TokenParameter) Name() string                     { return p.name }
func (p *TokenParameter) Optional() bool                   { return p.def != nil }
func (p *TokenParameter) Fit(arg Argument) Fit             { return p.fit(arg) }
func (p *TokenParameter) Bind(CallContext, Argument) error { return nil }

func (p *TokenParameter) Default() (Argument, bool) {
	if p.def == nil {
		return Argument{}, false
	}
	return *p.def, true
}

// Numeric fits integers, decimals and times, as scores or literals.
func Numeric(arg Argument) Fit {
	switch {
	case arg.Value != nil:
		if arg.Value.Type.Type() != typedef.Boolean {
			return FitYes
		}
	case arg.Literal != nil:
		if arg.Literal.Kind != typedef.LiteralBoolean {
			return FitYes
		}
	}
	return FitNo
}

// IntegerLiteral fits whole-number literals only.
func IntegerLiteral(arg Argument) Fit {
	if arg.Literal != nil && arg.Literal.Kind == typedef.LiteralInteger {
		return FitYes
	}
	return FitNo
}

// String fits string tokens.
func String(arg Argument) Fit {
	if arg.Value == nil && arg.Literal == nil && arg.Token.Type == token.STRING {
		return FitYes
	}
	return FitNo
}
