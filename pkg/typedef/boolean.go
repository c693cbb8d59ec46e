package typedef

import (
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// booleanType holds 0 or 1. It is the only type usable bare in a condition.
type booleanType struct{}

func (booleanType) Type() ValueType       { return Boolean }
func (booleanType) Keyword() string       { return "bool" }
func (booleanType) CanCompareAlone() bool { return true }

func (booleanType) Supports(op Op) bool {
	return op == OpSwap
}

// CanConvertTo allows bool to int only; int to bool is not defined.
func (booleanType) CanConvertTo(other Typedef) bool {
	switch other.Type() {
	case Boolean, Integer:
		return true
	}
	return false
}

func (booleanType) AcceptsLiteral(lit Literal) bool {
	return lit.Kind == LiteralBoolean
}

func (t booleanType) ConvertTo(src, dst Operand, dstType Typedef, _ Constants) ([]string, error) {
	if !t.CanConvertTo(dstType) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot convert %s to %s", t.Keyword(), dstType.Keyword())
	}
	return []string{operation(dst, "=", src)}, nil
}

func (t booleanType) AssignLiteral(self Operand, lit Literal) ([]string, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot assign %s literal %q to %s", lit.Kind, lit.Text, t.Keyword())
	}
	return []string{set(self, lit.Mantissa)}, nil
}

func (t booleanType) CompareToLiteral(self Operand, op token.Type, lit Literal) ([]string, []ScoreCheck, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, nil, diag.Errorf(diag.KindTypeConversion, "cannot compare %s with %s literal", t.Keyword(), lit.Kind)
	}
	if op != token.EQ && op != token.NEQ {
		return nil, nil, diag.Errorf(diag.KindTypeConversion, "booleans only support == and !=")
	}
	check := ScoreCheck{
		Holder:    self.Holder(),
		Objective: self.Objective(),
		Range:     Exactly(1),
		Negate:    (lit.Mantissa == 1) != (op == token.EQ),
	}
	return nil, []ScoreCheck{check}, nil
}

// TruthCheck is the check used when the value stands alone in a condition.
func TruthCheck(self Operand) ScoreCheck {
	return ScoreCheck{Holder: self.Holder(), Objective: self.Objective(), Range: Exactly(1)}
}

func (booleanType) Add(Operand, Operand, Constants) []string      { return nil }
func (booleanType) Subtract(Operand, Operand, Constants) []string { return nil }
func (booleanType) Multiply(Operand, Operand, Constants) []string { return nil }
func (booleanType) Divide(Operand, Operand, Constants) []string   { return nil }
func (booleanType) Modulo(Operand, Operand, Constants) []string   { return nil }

func (booleanType) Swap(self, other Operand, _ Constants) []string {
	return []string{operation(self, "><", other)}
}
