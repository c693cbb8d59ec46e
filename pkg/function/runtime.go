package function

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
)

// CallHook runs after a call's commands are assembled and before its
// return value is read. It may rewrite or extend commands.
type CallHook interface {
	OnCalledFunction(fn *RuntimeFunction, commands *[]string, ctx CallContext, pos token.Position) error
}

// RuntimeFunction is a function declared in source.
type RuntimeFunction struct {
	Name string
	File *output.CommandFile
	Pos  token.Position

	Params  []*ValueParameter
	Returns *scoreboard.Value

	Hooks []CallHook

	Extern  bool
	Partial bool
	Async   bool
	Test    bool
	// Scheduler names the attribute that scheduled the function, if any.
	Scheduler string
	// AsyncStub replaces the direct call when the function is async.
	AsyncStub *output.CommandFile

	importance int
}

// NewRuntimeFunction creates a function writing into file. Optional
// parameters must come after required ones.
func NewRuntimeFunction(name string, file *output.CommandFile, params []*ValueParameter, pos token.Position) (*RuntimeFunction, error) {
	seenOptional := false
	for _, p := range params {
		if p.Optional() {
			seenOptional = true
		} else if seenOptional {
			return nil, diag.ErrorAt(diag.KindSyntax, pos,
				"required parameter %q follows an optional parameter", p.Name())
		}
	}
	return &RuntimeFunction{Name: name, File: file, Params: params, Pos: pos}, nil
}

func (f *RuntimeFunction) Keyword() string     { return f.Name }
func (f *RuntimeFunction) Aliases() []string   { return nil }
func (f *RuntimeFunction) Importance() int     { return f.importance }
func (f *RuntimeFunction) ImplicitCall() bool  { return false }
func (f *RuntimeFunction) SetImportance(i int) { f.importance = i }

func (f *RuntimeFunction) Parameters() []Parameter {
	params := make([]Parameter, len(f.Params))
	for i, p := range f.Params {
		params[i] = p
	}
	return params
}

// Signature renders the parameter types, used to detect redefinitions.
func (f *RuntimeFunction) Signature() string {
	s := f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			s += ","
		}
		s += p.Value.TypeString()
	}
	return s + ")"
}

// Call emits the function call, runs the call hooks and copies the return
// value into a temporary.
func (f *RuntimeFunction) Call(ctx CallContext, _ []Argument, pos token.Position) (*scoreboard.Value, error) {
	commands := []string{f.File.CallCommand()}
	for _, h := range f.Hooks {
		if err := h.OnCalledFunction(f, &commands, ctx, pos); err != nil {
			return nil, diag.At(pos, err)
		}
	}
	ctx.Emit(commands...)

	if f.Returns == nil {
		return nil, nil
	}
	result := ctx.Temps().Request(f.Returns)
	cmds, err := f.Returns.Type.ConvertTo(f.Returns, result, result.Type, ctx.Constants())
	if err != nil {
		return nil, diag.At(pos, err)
	}
	ctx.Emit(cmds...)
	return result, nil
}

// SetReturn records the value a return statement hands back. All return
// statements of a function must agree on the type.
func (f *RuntimeFunction) SetReturn(v *scoreboard.Value) error {
	if f.Returns != nil && !f.Returns.SameType(v) {
		return diag.Errorf(diag.KindTypeConversion, "%s already returns %s, cannot also return %s",
			f.Name, f.Returns.TypeString(), v.TypeString())
	}
	if f.Returns == nil {
		f.Returns = v
	}
	return nil
}
