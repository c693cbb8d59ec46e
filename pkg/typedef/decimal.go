package typedef

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// decimalType stores a number with a fixed count of fractional digits as an
// integer scaled by 10^precision. Precision lives on the value, not the type.
//
// Rounding: literals round half away from zero. Multiplication and division
// truncate, because the scoreboard's /= is a floor division.
type decimalType struct{}

func (decimalType) Type() ValueType       { return FixedDecimal }
func (decimalType) Keyword() string       { return "decimal" }
func (decimalType) CanCompareAlone() bool { return false }
func (decimalType) Supports(Op) bool      { return true }

func (decimalType) CanConvertTo(other Typedef) bool {
	switch other.Type() {
	case FixedDecimal, Integer:
		return true
	}
	return false
}

func (decimalType) AcceptsLiteral(lit Literal) bool {
	return lit.Kind == LiteralInteger || lit.Kind == LiteralDecimal
}

func (t decimalType) ConvertTo(src, dst Operand, dstType Typedef, c Constants) ([]string, error) {
	if !t.CanConvertTo(dstType) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot convert %s to %s", t.Keyword(), dstType.Keyword())
	}
	to := 0
	if dstType.Type() == FixedDecimal {
		to = dst.Precision()
	}
	cmds := []string{operation(dst, "=", src)}
	switch from := src.Precision(); {
	case to > from:
		cmds = append(cmds, operation(dst, "*=", c.Constant(pow10(to-from))))
	case to < from:
		cmds = append(cmds, operation(dst, "/=", c.Constant(pow10(from-to))))
	}
	return cmds, nil
}

func (t decimalType) AssignLiteral(self Operand, lit Literal) ([]string, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot assign %s literal %q to %s", lit.Kind, lit.Text, t.Keyword())
	}
	n, err := lit.Scaled(self.Precision())
	if err != nil {
		return nil, err
	}
	return []string{set(self, n)}, nil
}

func (t decimalType) CompareToLiteral(self Operand, op token.Type, lit Literal) ([]string, []ScoreCheck, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, nil, diag.Errorf(diag.KindTypeConversion, "cannot compare %s with %s literal", t.Keyword(), lit.Kind)
	}
	checks, err := numericChecks(self, op, lit)
	return nil, checks, err
}

func (decimalType) Add(self, other Operand, _ Constants) []string {
	return []string{operation(self, "+=", other)}
}

func (decimalType) Subtract(self, other Operand, _ Constants) []string {
	return []string{operation(self, "-=", other)}
}

// Multiply computes (a*b)/10^p.
func (decimalType) Multiply(self, other Operand, c Constants) []string {
	cmds := []string{operation(self, "*=", other)}
	if p := other.Precision(); p > 0 {
		cmds = append(cmds, operation(self, "/=", c.Constant(pow10(p))))
	}
	return cmds
}

// Divide computes (a*10^p)/b.
func (decimalType) Divide(self, other Operand, c Constants) []string {
	var cmds []string
	if p := other.Precision(); p > 0 {
		cmds = append(cmds, operation(self, "*=", c.Constant(pow10(p))))
	}
	return append(cmds, operation(self, "/=", other))
}

func (decimalType) Modulo(self, other Operand, _ Constants) []string {
	return []string{operation(self, "%=", other)}
}

func (decimalType) Swap(self, other Operand, _ Constants) []string {
	return []string{operation(self, "><", other)}
}
