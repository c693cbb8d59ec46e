// Package scoreboard models typed, named values stored in scoreboard
// objectives, and the temporaries the compiler allocates while evaluating
// expressions.
package scoreboard

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// LocalHolder is the holder of per-entity values: the executing entity.
const LocalHolder = "@s"

// DefaultGlobalHolder is the fake player that owns global values.
const DefaultGlobalHolder = "global"

// Clarifier says which execution context owns a value's score.
type Clarifier struct {
	global       bool
	globalHolder string
	markedBy     string // attribute that last set the clarifier, if any
}

// Global reports whether the value lives on the global fake player.
func (c *Clarifier) Global() bool {
	return c.global
}

// Holder renders the score holder.
func (c *Clarifier) Holder() string {
	if c.global {
		if c.globalHolder == "" {
			return DefaultGlobalHolder
		}
		return c.globalHolder
	}
	return LocalHolder
}

// SetGlobal marks the value global on behalf of attribute by. A value takes
// one scope marking: a second one, conflicting or not, is an error.
func (c *Clarifier) SetGlobal(by string) error {
	return c.mark(true, by)
}

// SetLocal marks the value per-entity on behalf of attribute by.
func (c *Clarifier) SetLocal(by string) error {
	return c.mark(false, by)
}

func (c *Clarifier) mark(global bool, by string) error {
	switch {
	case c.markedBy != "" && c.global != global:
		return diag.Errorf(diag.KindAttributeMisuse,
			"value is already marked %q and cannot also be %q", c.markedBy, by)
	case c.markedBy != "":
		return diag.Errorf(diag.KindAttributeMisuse, "value is already marked %q", c.markedBy)
	}
	c.global = global
	c.markedBy = by
	return nil
}

// Value is a typed scoreboard value.
type Value struct {
	Name      string
	Type      typedef.Typedef
	Clarifier Clarifier
	Temporary bool
	// Binding is the MoLang query driving the value, set by the bind attribute.
	Binding string

	objective string
	precision int
}

// Holder implements typedef.Operand.
func (v *Value) Holder() string {
	return v.Clarifier.Holder()
}

// Objective implements typedef.Operand.
func (v *Value) Objective() string {
	return v.objective
}

// Precision implements typedef.Operand.
func (v *Value) Precision() int {
	return v.precision
}

// SameType reports whether both values have the same type and precision.
func (v *Value) SameType(other *Value) bool {
	return v.Type.Type() == other.Type.Type() && v.precision == other.precision
}

// TypeString renders the type as written in source, e.g. "decimal 2".
func (v *Value) TypeString() string {
	if v.Type.Type() == typedef.FixedDecimal {
		return fmt.Sprintf("%s %d", v.Type.Keyword(), v.precision)
	}
	return v.Type.Keyword()
}

func (v *Value) String() string {
	return fmt.Sprintf("%s %s (%s %s)", v.TypeString(), v.Name, v.Holder(), v.objective)
}
