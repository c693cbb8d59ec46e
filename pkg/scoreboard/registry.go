package scoreboard

import (
	"fmt"
	"regexp"

	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// ConstantObjective holds the numeric constants used by operations the
// command language only supports between two scores.
const ConstantObjective = "_mcc_const"

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

type valueKey struct {
	name   string
	global bool
}

// Registry owns every value declared during one compilation.
type Registry struct {
	globalHolder string

	values     map[valueKey]*Value
	byName     map[string]*Value // most recent definition per name
	order      []*Value
	objectives []string
	defined    map[string]bool
	constants  []int64
	hasConst   map[int64]bool
}

// NewRegistry creates an empty registry. An empty globalHolder selects
// DefaultGlobalHolder.
func NewRegistry(globalHolder string) *Registry {
	if globalHolder == "" {
		globalHolder = DefaultGlobalHolder
	}
	return &Registry{
		globalHolder: globalHolder,
		values:       make(map[valueKey]*Value),
		byName:       make(map[string]*Value),
		defined:      make(map[string]bool),
		hasConst:     make(map[int64]bool),
	}
}

// GlobalHolder returns the fake player owning global values.
func (r *Registry) GlobalHolder() string {
	return r.globalHolder
}

// New creates a value without registering it, so attributes can adjust the
// clarifier first. Call Define to register it.
func (r *Registry) New(name string, t typedef.Typedef, precision int, global bool) (*Value, error) {
	if !validName.MatchString(name) {
		return nil, diag.Errorf(diag.KindSyntax, "invalid value name %q", name)
	}
	if t.Type() != typedef.FixedDecimal {
		precision = 0
	} else if precision < 0 || precision > 9 {
		return nil, diag.Errorf(diag.KindSyntax, "decimal precision must be between 0 and 9, got %d", precision)
	}
	return &Value{
		Name:      name,
		Type:      t,
		Clarifier: Clarifier{global: global, globalHolder: r.globalHolder},
		objective: name,
		precision: precision,
	}, nil
}

// Define registers v. Names are unique per holder.
func (r *Registry) Define(v *Value) error {
	key := valueKey{name: v.Name, global: v.Clarifier.Global()}
	if _, exists := r.values[key]; exists {
		return diag.Errorf(diag.KindSyntax, "value %q is already defined for holder %s", v.Name, v.Holder())
	}
	r.values[key] = v
	r.byName[v.Name] = v
	r.order = append(r.order, v)
	r.ensureObjective(v.objective)
	return nil
}

// Lookup returns the latest value defined under name.
func (r *Registry) Lookup(name string) (*Value, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Names returns all declared value names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, v := range r.order {
		names = append(names, v.Name)
	}
	return names
}

// All returns the declared values in declaration order.
func (r *Registry) All() []*Value {
	return append([]*Value(nil), r.order...)
}

func (r *Registry) ensureObjective(objective string) {
	if r.defined[objective] {
		return
	}
	r.defined[objective] = true
	r.objectives = append(r.objectives, objective)
}

// Constant implements typedef.Constants.
func (r *Registry) Constant(n int64) typedef.Operand {
	if !r.hasConst[n] {
		r.hasConst[n] = true
		r.constants = append(r.constants, n)
		r.ensureObjective(ConstantObjective)
	}
	return constant(n)
}

// Definitions returns the commands that create every objective and seed
// every constant, in first-use order.
func (r *Registry) Definitions() []string {
	cmds := make([]string, 0, len(r.objectives)+len(r.constants))
	for _, obj := range r.objectives {
		cmds = append(cmds, fmt.Sprintf("scoreboard objectives add %s dummy", obj))
	}
	for _, n := range r.constants {
		cmds = append(cmds, fmt.Sprintf("scoreboard players set %s %s %d", constant(n).Holder(), ConstantObjective, n))
	}
	return cmds
}

type constant int64

func (c constant) Holder() string {
	if c < 0 {
		return fmt.Sprintf("n%d", -int64(c))
	}
	return fmt.Sprintf("c%d", int64(c))
}

func (constant) Objective() string { return ConstantObjective }
func (constant) Precision() int    { return 0 }
