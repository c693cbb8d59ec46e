// Package attribute implements the decorators that can be attached to a
// function or a value: scheduling, export control, scoping, bindings and
// test registration.
//
// An attribute declares the targets it supports. Applying it to anything
// else is an error, checked before any hook runs.
package attribute

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/jsondoc"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scheduler"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
)

// Kind names an attribute as written in source.
type Kind string

const (
	Auto    Kind = "auto"
	Global  Kind = "global"
	Local   Kind = "local"
	Export  Kind = "export"
	Extern  Kind = "extern"
	Partial Kind = "partial"
	Bind    Kind = "bind"
	Test    Kind = "test"
	Async   Kind = "async"
)

// Target is a set of things an attribute can be attached to.
type Target int

const (
	TargetValue Target = 1 << iota
	TargetFunction
)

// EntitySource loads behaviour-pack entity documents.
type EntitySource interface {
	// Entity returns the document for an entity such as "player". The
	// returned file is the one bind edits and hands back to the sink.
	Entity(name string) (*output.JSONFile, error)
}

// Host is what attributes need from the compilation.
type Host interface {
	function.CallContext
	Scheduler() *scheduler.Scheduler
	Sink() output.Sink
	Values() *scoreboard.Registry
	FeatureEnabled(name string) bool
	Entities() EntitySource
	// TestsFile is the generated function that runs every test.
	TestsFile() *output.CommandFile
	Namespace() string
}

// Attribute is a decorator instance.
type Attribute interface {
	Kind() Kind
	Targets() Target
	OnAddedValue(v *scoreboard.Value, host Host, pos token.Position) error
	OnAddedFunction(fn *function.RuntimeFunction, host Host, pos token.Position) error
	OnCalledFunction(fn *function.RuntimeFunction, commands *[]string, ctx function.CallContext, pos token.Position) error
}

// base supplies the unsupported-target errors and a no-op call hook.
type base struct {
	kind    Kind
	targets Target
}

func (b base) Kind() Kind      { return b.kind }
func (b base) Targets() Target { return b.targets }

func (b base) OnAddedValue(*scoreboard.Value, Host, token.Position) error {
	return diag.Errorf(diag.KindAttributeMisuse, "attribute %s cannot be applied to a value", b.kind)
}

func (b base) OnAddedFunction(*function.RuntimeFunction, Host, token.Position) error {
	return diag.Errorf(diag.KindAttributeMisuse, "attribute %s cannot be applied to a function", b.kind)
}

func (b base) OnCalledFunction(*function.RuntimeFunction, *[]string, function.CallContext, token.Position) error {
	return nil
}

// ApplyToValue attaches a to v.
func ApplyToValue(a Attribute, v *scoreboard.Value, host Host, pos token.Position) error {
	if a.Targets()&TargetValue == 0 {
		return diag.ErrorAt(diag.KindAttributeMisuse, pos, "attribute %s cannot be applied to value %q", a.Kind(), v.Name)
	}
	return diag.At(pos, a.OnAddedValue(v, host, pos))
}

// ApplyToFunction attaches a to fn. The attribute stays on the function
// and sees every later call.
func ApplyToFunction(a Attribute, fn *function.RuntimeFunction, host Host, pos token.Position) error {
	if a.Targets()&TargetFunction == 0 {
		return diag.ErrorAt(diag.KindAttributeMisuse, pos, "attribute %s cannot be applied to function %q", a.Kind(), fn.Name)
	}
	if err := a.OnAddedFunction(fn, host, pos); err != nil {
		return diag.At(pos, err)
	}
	fn.Hooks = append(fn.Hooks, a)
	return nil
}

// isEntityDocument reports whether doc has a minecraft:entity description.
func isEntityDocument(doc jsondoc.Object) bool {
	_, ok := doc.Get("minecraft:entity", "description")
	return ok
}
