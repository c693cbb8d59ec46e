package typedef

import "github.com/zurustar/mccompiled/pkg/diag"

// timeType counts game ticks. It behaves like an integer but accepts
// second-suffixed literals (3s == 60 ticks).
type timeType struct {
	integerType
}

func (timeType) Type() ValueType { return Time }
func (timeType) Keyword() string { return "time" }

func (timeType) CanConvertTo(other Typedef) bool {
	switch other.Type() {
	case Time, Integer:
		return true
	}
	return false
}

func (t timeType) ConvertTo(src, dst Operand, dstType Typedef, _ Constants) ([]string, error) {
	if !t.CanConvertTo(dstType) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot convert %s to %s", t.Keyword(), dstType.Keyword())
	}
	return []string{operation(dst, "=", src)}, nil
}

func (t timeType) AssignLiteral(self Operand, lit Literal) ([]string, error) {
	if !t.AcceptsLiteral(lit) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot assign %s literal %q to %s", lit.Kind, lit.Text, t.Keyword())
	}
	return []string{set(self, lit.Mantissa)}, nil
}
