package scoreboard

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// TestProperty_TempScopesAreIdempotent checks that a nested evaluation which
// requests n temporaries inside a pushed scope leaks nothing once released,
// and that repeating it yields the same names.
func TestProperty_TempScopesAreIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	integer, _ := typedef.NewRegistry().FromValueType(typedef.Integer)

	evaluate := func(pool *TempPool, shape []int) []string {
		var names []string
		var walk func(level int)
		walk = func(level int) {
			if level >= len(shape) {
				return
			}
			release := pool.Push()
			defer release()
			for i := 0; i < shape[level]; i++ {
				names = append(names, pool.RequestType(integer, 0, false).Name)
			}
			walk(level + 1)
		}
		walk(0)
		return names
	}

	properties.Property("nested scopes release everything and repeat identically", prop.ForAll(
		func(outer int, shape []int) bool {
			pool := NewTempPool(NewRegistry(""))
			for i := 0; i < outer; i++ {
				pool.RequestType(integer, 0, false)
			}

			first := evaluate(pool, shape)
			if pool.InUse() != outer || pool.Depth() != 0 {
				return false
			}
			second := evaluate(pool, shape)
			if fmt.Sprint(first) != fmt.Sprint(second) {
				return false
			}

			// No name handed out inside the scope collides with a live outer temp.
			for _, name := range first {
				var idx int
				if _, err := fmt.Sscanf(name, "_mcc_tmp%d", &idx); err != nil || idx < outer {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 5),
		gen.SliceOfN(4, gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
