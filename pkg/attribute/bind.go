package attribute

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/molang"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// bindAttribute drives a value from a MoLang query through an animation
// controller on each target entity.
type bindAttribute struct {
	base
	binding molang.Binding
	targets []string
}

func parseBind(args []token.Token, pos token.Position) (Attribute, bool, error) {
	if len(args) == 0 {
		return nil, true, diag.ErrorAt(diag.KindSyntax, pos, "bind needs a query, as in bind(\"query.is_sneaking\")")
	}
	query := args[0].Literal
	b, ok := molang.Lookup(query)
	if !ok {
		return nil, true, diag.ErrorAt(diag.KindBindingTarget, args[0].Pos(), "unknown MoLang query %q", query)
	}
	a := &bindAttribute{base: base{Bind, TargetValue}, binding: b}
	for _, tok := range args[1:] {
		if tok.Type != token.STRING && tok.Type != token.IDENT {
			return nil, true, diag.ErrorAt(diag.KindSyntax, tok.Pos(), "bind target must be an entity name, got %q", tok.Literal)
		}
		a.targets = append(a.targets, tok.Literal)
	}
	return a, true, nil
}

func acceptsKind(k molang.Kind, t typedef.ValueType) bool {
	switch k {
	case molang.Bool:
		return t == typedef.Boolean
	case molang.Int:
		return t == typedef.Integer
	case molang.Float:
		return t == typedef.FixedDecimal
	}
	return false
}

// OnAddedValue validates everything and loads every entity before it
// changes any file, so a failing bind leaves the output untouched.
func (a *bindAttribute) OnAddedValue(v *scoreboard.Value, host Host, _ token.Position) error {
	if !acceptsKind(a.binding.Kind, v.Type.Type()) {
		return diag.Errorf(diag.KindBindingTarget, "%s produces %s values but %s is %s",
			a.binding.Query, a.binding.Kind, v.Name, v.TypeString())
	}
	if v.Clarifier.Global() {
		return diag.Errorf(diag.KindBindingTarget, "bound value %s must be per-entity, not global", v.Name)
	}
	targets := a.targets
	if len(targets) == 0 {
		targets = a.binding.Targets
	}
	if len(targets) == 0 {
		return diag.Errorf(diag.KindBindingTarget, "%s does not imply an entity; name one, as in bind(%q, \"player\")",
			a.binding.Query, a.binding.Query)
	}

	type plan struct {
		entity     string
		file       *output.JSONFile
		controller *molang.Controller
	}
	plans := make([]plan, 0, len(targets))
	for _, entity := range targets {
		file, err := host.Entities().Entity(entity)
		if err != nil {
			return diag.Wrap(diag.KindBindingTarget, err, "cannot bind %s to entity %q", v.Name, entity)
		}
		if !isEntityDocument(file.Doc) {
			return diag.Errorf(diag.KindBindingTarget, "%s is not an entity document", file.Identity())
		}
		if err := molang.CheckEntity(file.Doc); err != nil {
			return diag.Wrap(diag.KindBindingTarget, err, "cannot edit %s", file.Identity())
		}
		c, err := molang.NewController(host.Namespace(), entity, v.Objective(), a.binding, v.Precision())
		if err != nil {
			return diag.Wrap(diag.KindBindingTarget, err, "cannot bind %s", v.Name)
		}
		plans = append(plans, plan{entity: entity, file: file, controller: c})
	}

	for _, p := range plans {
		if err := p.controller.Wire(p.file.Doc); err != nil {
			return diag.Wrap(diag.KindBindingTarget, err, "cannot edit %s", p.file.Identity())
		}
		host.Sink().AddExtraFile(&output.JSONFile{
			Path: p.controller.Identity(p.entity, v.Objective()),
			Doc:  p.controller.Doc,
		})
		host.Sink().OverwriteExtraFile(p.file)
	}
	v.Binding = a.binding.Query
	return nil
}

func (a *bindAttribute) String() string {
	return fmt.Sprintf("bind(%s)", a.binding.Query)
}
