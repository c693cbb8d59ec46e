// Package molang knows the MoLang queries a scoreboard value can be bound
// to, and generates the animation controllers that copy a query's result
// into a score.
package molang

import (
	"fmt"
	"strings"

	"github.com/zurustar/mccompiled/pkg/jsondoc"
)

// Kind is the type of value a query produces.
type Kind int

const (
	Bool Kind = iota
	Int
	Float
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "floating-point"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Binding describes one query.
type Binding struct {
	Query string
	Kind  Kind
	// Min and Max bound numeric queries. Float bounds are in whole units.
	Min, Max int
	// Targets are the entities the query implies when bind names none.
	Targets []string
	Description string
}

// MaxStates caps the number of states a numeric controller may enumerate.
const MaxStates = 256

var catalog = map[string]Binding{}

func register(b Binding) {
	catalog[b.Query] = b
}

func init() {
	player := []string{"player"}
	register(Binding{Query: "query.is_sneaking", Kind: Bool, Targets: player, Description: "entity is sneaking"})
	register(Binding{Query: "query.is_sprinting", Kind: Bool, Targets: player, Description: "entity is sprinting"})
	register(Binding{Query: "query.is_swimming", Kind: Bool, Description: "entity is swimming"})
	register(Binding{Query: "query.is_on_ground", Kind: Bool, Description: "entity is standing on a block"})
	register(Binding{Query: "query.is_on_fire", Kind: Bool, Description: "entity is burning"})
	register(Binding{Query: "query.is_moving", Kind: Bool, Description: "entity is moving"})
	register(Binding{Query: "query.is_riding", Kind: Bool, Description: "entity is riding another entity"})
	register(Binding{Query: "query.is_using_item", Kind: Bool, Targets: player, Description: "entity is using an item"})
	register(Binding{Query: "query.is_baby", Kind: Bool, Description: "entity is a baby"})
	register(Binding{Query: "query.variant", Kind: Int, Min: 0, Max: 15, Description: "entity variant"})
	register(Binding{Query: "query.mark_variant", Kind: Int, Min: 0, Max: 15, Description: "entity mark variant"})
	register(Binding{Query: "query.skin_id", Kind: Int, Min: 0, Max: 15, Description: "entity skin id"})
	register(Binding{Query: "query.health", Kind: Int, Min: 0, Max: 20, Description: "entity health"})
	register(Binding{Query: "query.time_of_day", Kind: Float, Min: 0, Max: 1, Description: "time of day, 0 to 1"})
	register(Binding{Query: "query.moon_phase", Kind: Int, Min: 0, Max: 7, Description: "moon phase"})
}

// Lookup finds a query by name. Names are case-insensitive.
func Lookup(query string) (Binding, bool) {
	b, ok := catalog[strings.ToLower(query)]
	return b, ok
}

// Queries returns every known query name.
func Queries() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

// States returns the scaled score values a numeric binding can take at
// the given decimal precision.
func (b Binding) States(precision int) ([]int, error) {
	scale := 1
	if b.Kind == Float {
		for i := 0; i < precision; i++ {
			scale *= 10
		}
	}
	lo, hi := b.Min*scale, b.Max*scale
	if hi-lo+1 > MaxStates {
		return nil, fmt.Errorf("%s at precision %d needs %d controller states, more than %d",
			b.Query, precision, hi-lo+1, MaxStates)
	}
	states := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		states = append(states, n)
	}
	return states, nil
}

// Controller is a generated animation controller.
type Controller struct {
	// ID is the controller identifier, controller.animation.<...>.
	ID string
	// ShortName is the key used in the entity's description.animations.
	ShortName string
	Doc       jsondoc.Object
}

// NewController builds the controller that keeps objective on @s in sync
// with the binding. precision applies to float bindings.
func NewController(namespace, entity, objective string, b Binding, precision int) (*Controller, error) {
	id := fmt.Sprintf("controller.animation.%s.%s.%s", namespace, entity, objective)
	states := jsondoc.Object{}

	switch b.Kind {
	case Bool:
		on := setCommand(objective, 1)
		off := setCommand(objective, 0)
		states["default"] = jsondoc.Object{
			"transitions": []any{
				jsondoc.Object{"on": b.Query},
				jsondoc.Object{"off": "!" + b.Query},
			},
		}
		states["on"] = jsondoc.Object{
			"on_entry":    []any{on},
			"transitions": []any{jsondoc.Object{"off": "!" + b.Query}},
		}
		states["off"] = jsondoc.Object{
			"on_entry":    []any{off},
			"transitions": []any{jsondoc.Object{"on": b.Query}},
		}
	default:
		values, err := b.States(precision)
		if err != nil {
			return nil, err
		}
		expr := b.Query
		if b.Kind == Float {
			expr = fmt.Sprintf("math.round(%s * %d)", b.Query, pow10(precision))
		}
		var fromDefault []any
		for _, n := range values {
			name := stateName(n)
			fromDefault = append(fromDefault, jsondoc.Object{name: fmt.Sprintf("%s == %d", expr, n)})
			states[name] = jsondoc.Object{
				"on_entry":    []any{setCommand(objective, n)},
				"transitions": []any{jsondoc.Object{"default": fmt.Sprintf("%s != %d", expr, n)}},
			}
		}
		states["default"] = jsondoc.Object{"transitions": fromDefault}
	}

	doc := jsondoc.Object{
		"format_version": "1.10.0",
		"animation_controllers": jsondoc.Object{
			id: jsondoc.Object{
				"initial_state": "default",
				"states":        states,
			},
		},
	}
	return &Controller{ID: id, ShortName: "mcc_" + objective, Doc: doc}, nil
}

// Identity is the controller's file path in the behaviour pack.
func (c *Controller) Identity(entity, objective string) string {
	return fmt.Sprintf("animation_controllers/mcc_%s_%s.json", entity, objective)
}

// Wire adds the controller to an entity document without disturbing the
// animations and scripts already declared there.
func (c *Controller) Wire(entity jsondoc.Object) error {
	anims, err := entity.Object("minecraft:entity", "description", "animations")
	if err != nil {
		return err
	}
	anims[c.ShortName] = c.ID
	_, err = entity.AppendIfAbsent(c.ShortName, "minecraft:entity", "description", "scripts", "animate")
	return err
}

// CheckEntity reports whether Wire can edit entity, without editing it.
func CheckEntity(entity jsondoc.Object) error {
	if v, ok := entity.Get("minecraft:entity", "description", "animations"); ok && !isObject(v) {
		return fmt.Errorf("description.animations is %T, not an object", v)
	}
	if v, ok := entity.Get("minecraft:entity", "description", "scripts"); ok && !isObject(v) {
		return fmt.Errorf("description.scripts is %T, not an object", v)
	}
	if v, ok := entity.Get("minecraft:entity", "description", "scripts", "animate"); ok {
		if _, isArray := v.([]any); !isArray {
			return fmt.Errorf("description.scripts.animate is %T, not an array", v)
		}
	}
	return nil
}

func isObject(v any) bool {
	switch v.(type) {
	case jsondoc.Object, map[string]any:
		return true
	}
	return false
}

func setCommand(objective string, n int) string {
	return fmt.Sprintf("/scoreboard players set @s %s %d", objective, n)
}

func stateName(n int) string {
	if n < 0 {
		return fmt.Sprintf("n%d", -n)
	}
	return fmt.Sprintf("v%d", n)
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
