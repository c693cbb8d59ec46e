// Package typedef provides the value types a scoreboard value can hold and
// the command templates that implement their conversions, arithmetic and
// comparisons.
//
// Operations trust their preconditions: callers make sure both operands have
// compatible types (see Typedef.CanConvertTo) before asking for commands.
package typedef

import (
	"fmt"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// ValueType identifies a Typedef.
type ValueType int

const (
	Integer ValueType = iota
	FixedDecimal
	Boolean
	Time
)

func (v ValueType) String() string {
	switch v {
	case Integer:
		return "int"
	case FixedDecimal:
		return "decimal"
	case Boolean:
		return "bool"
	case Time:
		return "time"
	}
	return fmt.Sprintf("ValueType(%d)", int(v))
}

// Op is an arithmetic operation.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpSwap
)

var opSymbols = map[Op]string{
	OpAdd:      "+=",
	OpSubtract: "-=",
	OpMultiply: "*=",
	OpDivide:   "/=",
	OpModulo:   "%=",
	OpSwap:     "><",
}

func (o Op) String() string {
	return opSymbols[o]
}

// OpFromToken maps an assignment or arithmetic operator token to an Op.
func OpFromToken(t token.Type) (Op, bool) {
	switch t {
	case token.ADD_ASSIGN, token.PLUS:
		return OpAdd, true
	case token.SUB_ASSIGN, token.MINUS:
		return OpSubtract, true
	case token.MUL_ASSIGN, token.STAR:
		return OpMultiply, true
	case token.DIV_ASSIGN, token.SLASH:
		return OpDivide, true
	case token.MOD_ASSIGN, token.PERCENT:
		return OpModulo, true
	case token.SWAP:
		return OpSwap, true
	}
	return 0, false
}

// Operand is the view of a scoreboard value that type operations need.
type Operand interface {
	Holder() string
	Objective() string
	Precision() int
}

// Constants hands out operands that hold a fixed number, for operations
// the command language only offers between two scores.
type Constants interface {
	Constant(n int64) Operand
}

// Typedef is a pluggable value type.
type Typedef interface {
	Type() ValueType
	Keyword() string
	// CanCompareAlone reports whether a bare value is usable as a condition.
	CanCompareAlone() bool
	CanConvertTo(other Typedef) bool
	Supports(op Op) bool
	AcceptsLiteral(lit Literal) bool

	// ConvertTo emits commands storing src (of this type) into dst (of dstType).
	ConvertTo(src, dst Operand, dstType Typedef, c Constants) ([]string, error)
	AssignLiteral(self Operand, lit Literal) ([]string, error)
	CompareToLiteral(self Operand, op token.Type, lit Literal) ([]string, []ScoreCheck, error)

	Add(self, other Operand, c Constants) []string
	Subtract(self, other Operand, c Constants) []string
	Multiply(self, other Operand, c Constants) []string
	Divide(self, other Operand, c Constants) []string
	Modulo(self, other Operand, c Constants) []string
	Swap(self, other Operand, c Constants) []string
}

// Operate dispatches op to the matching Typedef method.
func Operate(t Typedef, op Op, self, other Operand, c Constants) []string {
	switch op {
	case OpAdd:
		return t.Add(self, other, c)
	case OpSubtract:
		return t.Subtract(self, other, c)
	case OpMultiply:
		return t.Multiply(self, other, c)
	case OpDivide:
		return t.Divide(self, other, c)
	case OpModulo:
		return t.Modulo(self, other, c)
	case OpSwap:
		return t.Swap(self, other, c)
	}
	return nil
}

// OperateLiteral applies op with a literal right-hand side. Addition and
// subtraction use the add/remove commands directly; everything else goes
// through a constant operand.
func OperateLiteral(t Typedef, op Op, self Operand, lit Literal, c Constants) ([]string, error) {
	if !t.Supports(op) || op == OpSwap {
		return nil, diag.Errorf(diag.KindTypeConversion, "operation %s is not supported on %s", op, t.Keyword())
	}
	if !t.AcceptsLiteral(lit) {
		return nil, diag.Errorf(diag.KindTypeConversion, "cannot use %s literal %q with %s", lit.Kind, lit.Text, t.Keyword())
	}
	n, err := lit.Scaled(self.Precision())
	if err != nil {
		return nil, err
	}
	switch op {
	case OpAdd, OpSubtract:
		if op == OpSubtract {
			n = -n
		}
		if n < 0 {
			return []string{fmt.Sprintf("scoreboard players remove %s %s %d", self.Holder(), self.Objective(), -n)}, nil
		}
		return []string{fmt.Sprintf("scoreboard players add %s %s %d", self.Holder(), self.Objective(), n)}, nil
	case OpMultiply, OpDivide:
		if lit.Kind == LiteralDecimal {
			return Operate(t, op, self, constantAt(c, n, self.Precision()), c), nil
		}
		// Whole-number factors scale the stored value directly.
		factor, err := lit.Scaled(0)
		if err != nil {
			return nil, err
		}
		return []string{operation(self, op.String(), c.Constant(factor))}, nil
	}
	return Operate(t, op, self, constantAt(c, n, self.Precision()), c), nil
}

// constantAt wraps a constant so it reports the given precision.
func constantAt(c Constants, n int64, precision int) Operand {
	return precisionOperand{Operand: c.Constant(n), precision: precision}
}

type precisionOperand struct {
	Operand
	precision int
}

func (p precisionOperand) Precision() int { return p.precision }

// Registry is the catalog of value types. It is built once per compilation
// and never modified afterwards.
type Registry struct {
	byType    map[ValueType]Typedef
	byKeyword map[string]Typedef
}

// NewRegistry creates a registry holding every built-in type.
func NewRegistry() *Registry {
	r := &Registry{
		byType:    make(map[ValueType]Typedef),
		byKeyword: make(map[string]Typedef),
	}
	for _, t := range []Typedef{integerType{}, decimalType{}, booleanType{}, timeType{}} {
		r.byType[t.Type()] = t
		r.byKeyword[t.Keyword()] = t
	}
	return r
}

// FromValueType looks a type up by enum.
func (r *Registry) FromValueType(v ValueType) (Typedef, bool) {
	t, ok := r.byType[v]
	return t, ok
}

// FromKeyword looks a type up by its source keyword.
func (r *Registry) FromKeyword(keyword string) (Typedef, bool) {
	t, ok := r.byKeyword[strings.ToLower(keyword)]
	return t, ok
}

// Keywords returns all type keywords.
func (r *Registry) Keywords() []string {
	return []string{"int", "decimal", "bool", "time"}
}

// ScoreCheck is one "matches" test against a score.
type ScoreCheck struct {
	Holder    string
	Objective string
	Range     Range
	Negate    bool
}

// Field renders the check as a selector scores= entry.
func (s ScoreCheck) Field() string {
	if s.Negate {
		return fmt.Sprintf("%s=!%s", s.Objective, s.Range)
	}
	return fmt.Sprintf("%s=%s", s.Objective, s.Range)
}

// Subcommand renders the check as an execute subcommand.
func (s ScoreCheck) Subcommand() string {
	keyword := "if"
	if s.Negate {
		keyword = "unless"
	}
	return fmt.Sprintf("%s score %s %s matches %s", keyword, s.Holder, s.Objective, s.Range)
}

// Inverted returns the check with the opposite outcome.
func (s ScoreCheck) Inverted() ScoreCheck {
	s.Negate = !s.Negate
	return s
}

// Range is an inclusive score range; nil bounds are open.
type Range struct {
	Min *int64
	Max *int64
}

// Exactly returns the range holding only n.
func Exactly(n int64) Range { return Range{Min: &n, Max: &n} }

// AtLeast returns n.. .
func AtLeast(n int64) Range { return Range{Min: &n} }

// AtMost returns ..n .
func AtMost(n int64) Range { return Range{Max: &n} }

// Between returns min..max.
func Between(min, max int64) Range { return Range{Min: &min, Max: &max} }

func (r Range) String() string {
	switch {
	case r.Min != nil && r.Max != nil && *r.Min == *r.Max:
		return fmt.Sprintf("%d", *r.Min)
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d..%d", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("%d..", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("..%d", *r.Max)
	}
	return ".."
}

// Contains reports whether n lies in the range.
func (r Range) Contains(n int64) bool {
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

func operation(self Operand, symbol string, other Operand) string {
	return fmt.Sprintf("scoreboard players operation %s %s %s %s %s",
		self.Holder(), self.Objective(), symbol, other.Holder(), other.Objective())
}

func set(self Operand, n int64) string {
	return fmt.Sprintf("scoreboard players set %s %s %d", self.Holder(), self.Objective(), n)
}

// numericChecks builds the checks for comparing a score at precision against
// lit. Inexact comparisons round the bound towards the side that keeps the
// comparison exact; equality against an unrepresentable literal rounds.
func numericChecks(self Operand, op token.Type, lit Literal) ([]ScoreCheck, error) {
	floor, exact, err := lit.Floor(self.Precision())
	if err != nil {
		return nil, err
	}
	check := ScoreCheck{Holder: self.Holder(), Objective: self.Objective()}
	switch op {
	case token.EQ, token.NEQ:
		n, err := lit.Scaled(self.Precision())
		if err != nil {
			return nil, err
		}
		check.Range = Exactly(n)
		check.Negate = op == token.NEQ
	case token.LT:
		if exact {
			check.Range = AtMost(floor - 1)
		} else {
			check.Range = AtMost(floor)
		}
	case token.LTE:
		check.Range = AtMost(floor)
	case token.GT:
		check.Range = AtLeast(floor + 1)
	case token.GTE:
		if exact {
			check.Range = AtLeast(floor)
		} else {
			check.Range = AtLeast(floor + 1)
		}
	default:
		return nil, diag.Errorf(diag.KindSyntax, "%s is not a comparison operator", op)
	}
	return []ScoreCheck{check}, nil
}

// ComparisonSymbol maps a comparison token to the execute if score operator.
// The second result is true when the comparison is "!=" and must be negated.
func ComparisonSymbol(op token.Type) (string, bool) {
	switch op {
	case token.EQ:
		return "=", false
	case token.NEQ:
		return "=", true
	case token.LT:
		return "<", false
	case token.LTE:
		return "<=", false
	case token.GT:
		return ">", false
	case token.GTE:
		return ">=", false
	}
	return "", false
}
