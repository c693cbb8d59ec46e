package typedef

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// LiteralKind is the kind of a compile-time constant.
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralDecimal
	LiteralBoolean
	LiteralTime
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInteger:
		return "integer"
	case LiteralDecimal:
		return "decimal"
	case LiteralBoolean:
		return "boolean"
	case LiteralTime:
		return "time"
	}
	return "unknown"
}

// TicksPerSecond is the game's fixed tick rate.
const TicksPerSecond = 20

// Literal is an exact numeric constant: Mantissa / 10^Scale.
// Booleans are 0 or 1, times are whole ticks.
type Literal struct {
	Kind     LiteralKind
	Mantissa int64
	Scale    int
	Text     string
}

// IntLiteral returns an integer literal.
func IntLiteral(n int64) Literal {
	return Literal{Kind: LiteralInteger, Mantissa: n, Text: strconv.FormatInt(n, 10)}
}

// BoolLiteral returns a boolean literal.
func BoolLiteral(b bool) Literal {
	if b {
		return Literal{Kind: LiteralBoolean, Mantissa: 1, Text: "true"}
	}
	return Literal{Kind: LiteralBoolean, Mantissa: 0, Text: "false"}
}

// ParseLiteral converts a literal token into a Literal.
func ParseLiteral(tok token.Token) (Literal, error) {
	switch tok.Type {
	case token.INT:
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return Literal{}, diag.Errorf(diag.KindTypeConversion, "integer literal %q out of range", tok.Literal)
		}
		return Literal{Kind: LiteralInteger, Mantissa: n, Text: tok.Literal}, nil
	case token.DECIMAL:
		return parseDecimal(tok.Literal)
	case token.TIME:
		text := tok.Literal
		unit := text[len(text)-1]
		n, err := strconv.ParseInt(text[:len(text)-1], 10, 32)
		if err != nil {
			return Literal{}, diag.Errorf(diag.KindTypeConversion, "time literal %q out of range", text)
		}
		if unit == 's' {
			n *= TicksPerSecond
		}
		return Literal{Kind: LiteralTime, Mantissa: n, Text: text}, nil
	case token.IDENT:
		if tok.IsBool() {
			return BoolLiteral(tok.Literal == "true"), nil
		}
	}
	return Literal{}, diag.Errorf(diag.KindTypeConversion, "%q is not a literal value", tok.Literal)
}

func parseDecimal(text string) (Literal, error) {
	neg := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	whole, frac, _ := strings.Cut(digits, ".")
	frac = strings.TrimRight(frac, "0")
	m, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || len(whole+frac) > 15 {
		return Literal{}, diag.Errorf(diag.KindTypeConversion, "decimal literal %q out of range", text)
	}
	if neg {
		m = -m
	}
	return Literal{Kind: LiteralDecimal, Mantissa: m, Scale: len(frac), Text: text}, nil
}

// IsWhole reports whether the literal has no fractional part.
func (l Literal) IsWhole() bool {
	return l.Scale == 0
}

// Scaled returns the literal as an integer at the given precision, rounding
// half away from zero.
func (l Literal) Scaled(precision int) (int64, error) {
	if precision < 0 || precision > 9 {
		return 0, diag.Errorf(diag.KindTypeConversion, "precision %d out of range", precision)
	}
	if l.Scale <= precision {
		return l.Mantissa * pow10(precision-l.Scale), nil
	}
	div := pow10(l.Scale - precision)
	q, r := l.Mantissa/div, l.Mantissa%div
	if abs(r)*2 >= div {
		if l.Mantissa < 0 {
			q--
		} else {
			q++
		}
	}
	return q, nil
}

// Floor returns floor(value * 10^precision) and whether that is exact.
func (l Literal) Floor(precision int) (int64, bool, error) {
	if precision < 0 || precision > 9 {
		return 0, false, diag.Errorf(diag.KindTypeConversion, "precision %d out of range", precision)
	}
	if l.Scale <= precision {
		return l.Mantissa * pow10(precision-l.Scale), true, nil
	}
	div := pow10(l.Scale - precision)
	q, r := l.Mantissa/div, l.Mantissa%div
	if r < 0 {
		q--
	}
	return q, r == 0, nil
}

func (l Literal) String() string {
	if l.Text != "" {
		return l.Text
	}
	return fmt.Sprintf("%d/10^%d", l.Mantissa, l.Scale)
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
