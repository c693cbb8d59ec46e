package scoreboard

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/typedef"
)

// TempPool hands out temporary values. Names are derived from a counter; a
// pushed scope restores the counter when released, so the names it used
// become available again and re-evaluating the same expression in the same
// scope yields the same names.
//
// Temporaries are global scores, so commands in different function files
// must never share one: a call made while the caller holds a temporary
// would overwrite it. Enter gives each function file a namespace of its
// own. Branch files compiled inside a function stay in its namespace.
type TempPool struct {
	registry  *Registry
	namespace string
	next      int
	outcomes  int
	depth     int
}

// NewTempPool creates a pool whose objectives are declared in registry.
func NewTempPool(registry *Registry) *TempPool {
	return &TempPool{registry: registry}
}

// Push opens a temp scope. Callers must invoke the returned release function,
// typically with defer, on both normal and error paths.
func (p *TempPool) Push() (release func()) {
	next, outcomes := p.next, p.outcomes
	p.depth++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		p.next, p.outcomes = next, outcomes
		p.depth--
	}
}

// Enter switches to the namespace of the function file name until
// release. Counting starts again from zero there.
func (p *TempPool) Enter(name string) (release func()) {
	namespace, next, outcomes := p.namespace, p.next, p.outcomes
	p.namespace, p.next, p.outcomes = name, 0, 0
	p.depth++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		p.namespace, p.next, p.outcomes = namespace, next, outcomes
		p.depth--
	}
}

// Depth returns the number of open scopes.
func (p *TempPool) Depth() int {
	return p.depth
}

// InUse returns how many temporaries are currently live in the current
// namespace.
func (p *TempPool) InUse() int {
	return p.next
}

// Request allocates a temporary with the same type, precision and holder as basedOn.
func (p *TempPool) Request(basedOn *Value) *Value {
	return p.request(basedOn.Type, basedOn.precision, basedOn.Clarifier.Global())
}

// RequestType allocates a temporary of the given type.
func (p *TempPool) RequestType(t typedef.Typedef, precision int, global bool) *Value {
	return p.request(t, precision, global)
}

// RequestOutcome allocates a global temporary for the outcome of a
// condition. Outcomes are numbered apart from expression temporaries.
func (p *TempPool) RequestOutcome(t typedef.Typedef) *Value {
	name := p.name("if", p.outcomes)
	p.outcomes++
	return p.value(name, t, 0, true)
}

func (p *TempPool) request(t typedef.Typedef, precision int, global bool) *Value {
	name := p.name("tmp", p.next)
	p.next++
	return p.value(name, t, precision, global)
}

// name is _mcc_<kind><n> at top level and _mcc_<kind>_<file>.<n> inside a
// function file.
func (p *TempPool) name(kind string, n int) string {
	if p.namespace == "" {
		return fmt.Sprintf("_mcc_%s%d", kind, n)
	}
	return fmt.Sprintf("_mcc_%s_%s.%d", kind, p.namespace, n)
}

func (p *TempPool) value(name string, t typedef.Typedef, precision int, global bool) *Value {
	p.registry.ensureObjective(name)
	return &Value{
		Name:      name,
		Type:      t,
		Clarifier: Clarifier{global: global, globalHolder: p.registry.globalHolder},
		Temporary: true,
		objective: name,
		precision: precision,
	}
}
