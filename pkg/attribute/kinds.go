package attribute

import (
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/scheduler"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
)

// Parse builds the attribute named by name from its argument tokens. ok is
// false when name is not an attribute keyword.
func Parse(name string, args []token.Token, pos token.Position) (a Attribute, ok bool, err error) {
	switch Kind(strings.ToLower(name)) {
	case Auto:
		interval := 0
		if len(args) > 1 {
			return nil, true, diag.ErrorAt(diag.KindSyntax, pos, "auto takes at most one argument")
		}
		if len(args) == 1 {
			interval, err = tickCount(args[0])
			if err != nil {
				return nil, true, diag.At(pos, err)
			}
		}
		return &autoAttribute{base: base{Auto, TargetFunction}, interval: interval}, true, nil
	case Global:
		return &scopeAttribute{base: base{Global, TargetValue}, global: true}, true, noArgs(Global, args, pos)
	case Local:
		return &scopeAttribute{base: base{Local, TargetValue}}, true, noArgs(Local, args, pos)
	case Export:
		return &exportAttribute{base{Export, TargetFunction}}, true, noArgs(Export, args, pos)
	case Extern:
		return &externAttribute{base{Extern, TargetFunction}}, true, noArgs(Extern, args, pos)
	case Partial:
		return &partialAttribute{base{Partial, TargetFunction}}, true, noArgs(Partial, args, pos)
	case Test:
		return &testAttribute{base{Test, TargetFunction}}, true, noArgs(Test, args, pos)
	case Async:
		local := false
		if len(args) > 1 {
			return nil, true, diag.ErrorAt(diag.KindSyntax, pos, "async takes at most one argument")
		}
		if len(args) == 1 {
			switch args[0].Literal {
			case "local":
				local = true
			case "global":
			default:
				return nil, true, diag.ErrorAt(diag.KindSyntax, args[0].Pos(), "async target must be \"global\" or \"local\", got %q", args[0].Literal)
			}
		}
		return &asyncAttribute{base: base{Async, TargetFunction}, local: local}, true, nil
	case Bind:
		return parseBind(args, pos)
	}
	return nil, false, nil
}

func noArgs(kind Kind, args []token.Token, pos token.Position) error {
	if len(args) > 0 {
		return diag.ErrorAt(diag.KindSyntax, pos, "attribute %s takes no arguments", kind)
	}
	return nil
}

// tickCount reads an integer or time literal as a number of ticks.
func tickCount(tok token.Token) (int, error) {
	switch tok.Type {
	case token.INT:
		return strconv.Atoi(tok.Literal)
	case token.TIME:
		n, err := strconv.Atoi(tok.Literal[:len(tok.Literal)-1])
		if err != nil {
			return 0, err
		}
		if strings.HasSuffix(tok.Literal, "s") {
			n *= 20
		}
		return n, nil
	}
	return 0, diag.Errorf(diag.KindSyntax, "expected a tick count, got %q", tok.Literal)
}

func claimScheduling(fn *function.RuntimeFunction, kind Kind) error {
	if fn.Scheduler != "" && fn.Scheduler != string(kind) {
		return diag.Errorf(diag.KindSchedulingConflict, "function %s is already scheduled by %s and cannot also use %s",
			fn.Name, fn.Scheduler, kind)
	}
	if fn.Scheduler == string(kind) {
		return diag.Errorf(diag.KindSchedulingConflict, "function %s already has attribute %s", fn.Name, kind)
	}
	fn.Scheduler = string(kind)
	return nil
}

// autoAttribute runs a function every tick, or every interval ticks.
type autoAttribute struct {
	base
	interval int
}

func (a *autoAttribute) OnAddedFunction(fn *function.RuntimeFunction, host Host, _ token.Position) error {
	if len(fn.Params) > 0 {
		return diag.Errorf(diag.KindAttributeMisuse, "auto function %s cannot take parameters", fn.Name)
	}
	if err := claimScheduling(fn, Auto); err != nil {
		return err
	}
	var task scheduler.Task
	if a.interval < 2 {
		task = &scheduler.RepeatEveryTick{Function: fn.File}
	} else {
		task = &scheduler.RepeatInterval{Function: fn.File, Interval: a.interval}
	}
	if _, err := host.Scheduler().ScheduleTask(task); err != nil {
		return err
	}
	fn.File.InUse = true
	return nil
}

// scopeAttribute is global or local.
type scopeAttribute struct {
	base
	global bool
}

func (a *scopeAttribute) OnAddedValue(v *scoreboard.Value, _ Host, _ token.Position) error {
	if a.global {
		if v.Binding != "" {
			return diag.Errorf(diag.KindBindingTarget, "bound value %s must be per-entity, not global", v.Name)
		}
		return v.Clarifier.SetGlobal(string(a.kind))
	}
	return v.Clarifier.SetLocal(string(a.kind))
}

type exportAttribute struct{ base }

func (a *exportAttribute) OnAddedFunction(fn *function.RuntimeFunction, _ Host, _ token.Position) error {
	fn.File.InUse = true
	return nil
}

type externAttribute struct{ base }

func (a *externAttribute) OnAddedFunction(fn *function.RuntimeFunction, _ Host, _ token.Position) error {
	fn.Extern = true
	return nil
}

type partialAttribute struct{ base }

func (a *partialAttribute) OnAddedFunction(fn *function.RuntimeFunction, _ Host, _ token.Position) error {
	if fn.Async {
		return diag.Errorf(diag.KindAttributeMisuse, "partial function %s cannot be async", fn.Name)
	}
	fn.Partial = true
	return nil
}

type testAttribute struct{ base }

// TestsFeature is the feature that enables the test attribute.
const TestsFeature = "tests"

func (a *testAttribute) OnAddedFunction(fn *function.RuntimeFunction, host Host, _ token.Position) error {
	if !host.FeatureEnabled(TestsFeature) {
		return diag.Errorf(diag.KindAttributeMisuse, "test function %s requires 'feature %s'", fn.Name, TestsFeature)
	}
	if len(fn.Params) > 0 {
		return diag.Errorf(diag.KindAttributeMisuse, "test function %s cannot take parameters", fn.Name)
	}
	fn.Test = true
	fn.File.InUse = true
	tests := host.TestsFile()
	tests.InUse = true
	tests.Add(fn.File.CallCommand())
	return nil
}

// asyncAttribute defers the body of every call to a later tick.
type asyncAttribute struct {
	base
	local bool
}

func (a *asyncAttribute) OnAddedFunction(fn *function.RuntimeFunction, host Host, _ token.Position) error {
	if fn.Partial {
		return diag.Errorf(diag.KindAttributeMisuse, "partial function %s cannot be async", fn.Name)
	}
	if err := claimScheduling(fn, Async); err != nil {
		return err
	}
	task := &scheduler.OneShot{Function: fn.File, Delay: 1, Global: !a.local}
	if _, err := host.Scheduler().ScheduleTask(task); err != nil {
		return err
	}
	fn.Async = true
	fn.AsyncStub = task.Stub()
	return nil
}

func (a *asyncAttribute) OnCalledFunction(fn *function.RuntimeFunction, commands *[]string, _ function.CallContext, _ token.Position) error {
	if fn.Returns != nil {
		return diag.Errorf(diag.KindAttributeMisuse, "async function %s cannot return a value", fn.Name)
	}
	direct := fn.File.CallCommand()
	for i, cmd := range *commands {
		if cmd == direct {
			(*commands)[i] = fn.AsyncStub.CallCommand()
		}
	}
	return nil
}
