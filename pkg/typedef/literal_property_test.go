package typedef

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property tests for fixed-point literal scaling.

// TestProperty_ScaledRoundsHalfAwayFromZero checks that scaling a literal to a
// lower precision never moves it by more than half a unit, and that ties go
// away from zero.
func TestProperty_ScaledRoundsHalfAwayFromZero(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("scaled value is within half a unit", prop.ForAll(
		func(mantissa int64, scale, precision int) bool {
			lit := Literal{Kind: LiteralDecimal, Mantissa: mantissa, Scale: scale}
			got, err := lit.Scaled(precision)
			if err != nil {
				return false
			}
			if scale <= precision {
				return got == mantissa*pow10(precision-scale)
			}
			div := pow10(scale - precision)
			diff := got*div - mantissa
			if 2*abs(diff) > div {
				return false
			}
			if 2*abs(diff) == div {
				// tie: result must be further from zero than the input
				return abs(got*div) > abs(mantissa)
			}
			return true
		},
		gen.Int64Range(-1_000_000, 1_000_000),
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
	))

	properties.Property("floor is never above the literal", prop.ForAll(
		func(mantissa int64, scale, precision int) bool {
			lit := Literal{Kind: LiteralDecimal, Mantissa: mantissa, Scale: scale}
			floor, exact, err := lit.Floor(precision)
			if err != nil {
				return false
			}
			if scale <= precision {
				return exact && floor == mantissa*pow10(precision-scale)
			}
			div := pow10(scale - precision)
			return floor*div <= mantissa && mantissa < (floor+1)*div && exact == (floor*div == mantissa)
		},
		gen.Int64Range(-1_000_000, 1_000_000),
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
