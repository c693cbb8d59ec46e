// Package token defines the lexical tokens of MCCompiled source.
package token

import "fmt"

// Type is the kind of a token.
type Type int

const (
	ILLEGAL Type = iota
	EOF
	NEWLINE

	// Identifiers + literals
	IDENT      // define, score, myFunction
	INT        // 123, -4
	DECIMAL    // 1.5
	TIME       // 20t, 3s
	STRING     // "abc"
	SELECTOR   // @s, @e[type=cow]
	COORDINATE // ~, ~1, ^-2
	COMMAND    // /say hello (raw command, whole line)

	// Operators
	ASSIGN     // =
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	DIV_ASSIGN // /=
	MOD_ASSIGN // %=
	SWAP       // ><
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	EQ         // ==
	NEQ        // !=
	LT         // <
	GT         // >
	LTE        // <=
	GTE        // >=
	NOT        // !
	AND        // &&
	OR         // ||

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
)

var typeNames = map[Type]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	NEWLINE:    "NEWLINE",
	IDENT:      "IDENT",
	INT:        "INT",
	DECIMAL:    "DECIMAL",
	TIME:       "TIME",
	STRING:     "STRING",
	SELECTOR:   "SELECTOR",
	COORDINATE: "COORDINATE",
	COMMAND:    "COMMAND",
	ASSIGN:     "=",
	ADD_ASSIGN: "+=",
	SUB_ASSIGN: "-=",
	MUL_ASSIGN: "*=",
	DIV_ASSIGN: "/=",
	MOD_ASSIGN: "%=",
	SWAP:       "><",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	EQ:         "==",
	NEQ:        "!=",
	LT:         "<",
	GT:         ">",
	LTE:        "<=",
	GTE:        ">=",
	NOT:        "!",
	AND:        "&&",
	OR:         "||",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	COMMA:      ",",
	SEMICOLON:  ";",
}

// String returns a string representation of the token type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsAssignment reports whether t is one of the assignment operators.
func (t Type) IsAssignment() bool {
	switch t {
	case ASSIGN, ADD_ASSIGN, SUB_ASSIGN, MUL_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, SWAP:
		return true
	}
	return false
}

// IsComparison reports whether t is a comparison operator.
func (t Type) IsComparison() bool {
	switch t {
	case EQ, NEQ, LT, GT, LTE, GTE:
		return true
	}
	return false
}

// IsLiteral reports whether t carries a compile-time constant.
func (t Type) IsLiteral() bool {
	switch t {
	case INT, DECIMAL, TIME, STRING, SELECTOR, COORDINATE:
		return true
	}
	return false
}

// Position is a 1-indexed location in the source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

// Pos returns the token's source position.
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// IsBool reports whether the token is one of the boolean keywords.
func (t Token) IsBool() bool {
	return t.Type == IDENT && (t.Literal == "true" || t.Literal == "false")
}

// Is reports whether the token is an identifier spelled word.
func (t Token) Is(word string) bool {
	return t.Type == IDENT && t.Literal == word
}
