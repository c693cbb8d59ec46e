// Package function implements call resolution: parameter fitting, overload
// selection by importance and score, and user-defined runtime functions.
package function

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// CallContext is the part of the executor a call needs.
type CallContext interface {
	Emit(commands ...string)
	Temps() *scoreboard.TempPool
	Constants() typedef.Constants
	Types() *typedef.Registry
}

// Function is anything callable by keyword.
type Function interface {
	Keyword() string
	Aliases() []string
	// Importance orders overloads sharing a keyword; higher is tried first.
	Importance() int
	Parameters() []Parameter
	// ImplicitCall reports whether the function may be called without
	// parentheses.
	ImplicitCall() bool
	// Call emits the call. args are already bound by ProcessParameters.
	// The result is nil for functions without a return value.
	Call(ctx CallContext, args []Argument, pos token.Position) (*scoreboard.Value, error)
}

// RequiredCount returns the number of non-optional parameters.
func RequiredCount(params []Parameter) int {
	n := 0
	for _, p := range params {
		if !p.Optional() {
			n++
		}
	}
	return n
}

// Match scores args against fn's parameters. A call with no arguments to a
// function that requires none always matches with score 0, so it never
// outranks an overload that had to fit actual arguments.
func Match(fn Function, args []Argument) (int, error) {
	params := fn.Parameters()
	required := RequiredCount(params)
	if len(args) == 0 && required == 0 {
		return 0, nil
	}
	if len(args) < required {
		return 0, diag.Errorf(diag.KindParameterBinding, "%s: missing required parameter %q",
			fn.Keyword(), params[len(args)].Name())
	}
	if len(args) > len(params) {
		return 0, diag.Errorf(diag.KindParameterBinding, "%s: expected at most %d arguments, got %d",
			fn.Keyword(), len(params), len(args))
	}
	score := 0
	for i, arg := range args {
		fit := params[i].Fit(arg)
		if fit == FitNo {
			return 0, diag.Errorf(diag.KindParameterBinding, "%s: argument %q does not fit parameter %q",
				fn.Keyword(), arg.String(), params[i].Name())
		}
		score += int(fit)
	}
	return score, nil
}

// ProcessParameters fills in defaults and binds every parameter of fn. It
// runs inside its own temp scope. The full argument list is returned.
func ProcessParameters(ctx CallContext, fn Function, args []Argument) ([]Argument, error) {
	release := ctx.Temps().Push()
	defer release()

	params := fn.Parameters()
	bound := make([]Argument, len(params))
	for i, p := range params {
		arg := Argument{}
		if i < len(args) {
			arg = args[i]
		} else {
			def, ok := p.Default()
			if !ok {
				return nil, diag.Errorf(diag.KindParameterBinding, "%s: no value for parameter %q",
					fn.Keyword(), p.Name())
			}
			arg = def
		}
		if err := p.Bind(ctx, arg); err != nil {
			return nil, diag.Wrap(diag.KindParameterBinding, err, "%s: parameter %q", fn.Keyword(), p.Name())
		}
		bound[i] = arg
	}
	return bound, nil
}
