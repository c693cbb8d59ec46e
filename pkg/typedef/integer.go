package typedef

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// integerType is a plain 32-bit score with exact arithmetic.
type integerType struct{}

func (integerType) Type() ValueType       { return Integer }
func (integerType) Keyword() string       { return "int" }
func (integerType) CanCompareAlone() bool { return false }
func (integerType) Supports(Op) bool      { return true }

func (integerType) CanConvertTo(other Typedef) bool {
	switch other.Type() {
	case Integer, FixedDecimal, Time:
		return true
	}
	return false
}

func (integerType) AcceptsLiteral(lit Literal) bool {
	return lit.Kind == LiteralInteger || lit.Kind == LiteralTime
}

func (t integerType) ConvertTo(src, dst Operand, dstType Typedef, c Constants) ([]string, error) {
	if !t.CanConvertTo(dstType) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot convert %s to %s", t.Keyword(), dstType.Keyword())
	}
	cmds := []string{operation(dst, "=", src)}
	if dstType.Type() == FixedDecimal && dst.Precision() > 0 {
		cmds = append(cmds, operation(dst, "*=", c.Constant(pow10(dst.Precision()))))
	}
	return cmds, nil
}

func (t integerType) AssignLiteral(self Operand, lit Literal) ([]string, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot assign %s literal %q to %s", lit.Kind, lit.Text, t.Keyword())
	}
	return []string{set(self, lit.Mantissa)}, nil
}

func (t integerType) CompareToLiteral(self Operand, op token.Type, lit Literal) ([]string, []ScoreCheck, error) {
	if lit.Kind == LiteralBoolean {
		return nil, nil, diag.Errorf(diag.KindTypeConversion, "cannot compare %s with %s literal", t.Keyword(), lit.Kind)
	}
	checks, err := numericChecks(self, op, lit)
	return nil, checks, err
}

func (integerType) Add(self, other Operand, _ Constants) []string {
	return []string{operation(self, "+=", other)}
}

func (integerType) Subtract(self, other Operand, _ Constants) []string {
	return []string{operation(self, "-=", other)}
}

func (integerType) Multiply(self, other Operand, _ Constants) []string {
	return []string{operation(self, "*=", other)}
}

func (integerType) Divide(self, other Operand, _ Constants) []string {
	return []string{operation(self, "/=", other)}
}

func (integerType) Modulo(self, other Operand, _ Constants) []string {
	return []string{operation(self, "%=", other)}
}

func (integerType) Swap(self, other Operand, _ Constants) []string {
	return []string{operation(self, "><", other)}
}
