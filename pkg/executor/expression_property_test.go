package executor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/mccompiled/pkg/compiler/lexer"
	"github.com/zurustar/mccompiled/pkg/compiler/statement"
)

func runSource(src string) (*Context, error) {
	stmts, err := statement.Assemble(lexer.New(src).All())
	if err != nil {
		return nil, err
	}
	c := NewContext(Options{})
	return c, c.Run(stmts)
}

// TestProperty_LiteralExpressionsFold checks that an expression of literals
// compiles to a single set command holding the value integer arithmetic
// gives.
func TestProperty_LiteralExpressionsFold(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("a + b * c folds to one set command", prop.ForAll(
		func(a, b, c int) bool {
			ctx, err := runSource(fmt.Sprintf("define global int x = %d + %d * %d", a, b, c))
			if err != nil {
				return false
			}
			got := ctx.main.Commands()
			want := fmt.Sprintf("scoreboard players set global x %d", a+b*c)
			return len(got) == 1 && got[0] == want
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}

// TestProperty_StatementsReleaseTemporaries checks that no temporary stays
// allocated after a statement, however long its expression is.
func TestProperty_StatementsReleaseTemporaries(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	ops := []string{"+", "-", "*", "/", "%"}

	properties.Property("temp pool is empty after every statement", prop.ForAll(
		func(choices []int) bool {
			var expr strings.Builder
			expr.WriteString("a")
			for i, choice := range choices {
				fmt.Fprintf(&expr, " %s (b + %d)", ops[choice%len(ops)], i+1)
			}
			src := "define global int a\ndefine global int b\na = " + expr.String() + "\nif a > b {\n\t/say x\n}\n"
			ctx, err := runSource(src)
			if err != nil {
				return false
			}
			return ctx.temps.InUse() == 0 && ctx.temps.Depth() == 0
		},
		gen.SliceOfN(6, gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
