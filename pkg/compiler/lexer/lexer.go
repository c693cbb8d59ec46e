// Package lexer provides lexical analysis for MCCompiled source (.mcc files).
package lexer

import (
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
)

// Lexer tokenizes MCCompiled source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number

	lineStart bool       // only whitespace seen since the last newline
	prev      token.Type // type of the last emitted token
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:     input,
		line:      1,
		column:    0,
		lineStart: true,
		prev:      token.NEWLINE,
	}
	l.readChar()
	return l
}

// GetSource returns the source being tokenized.
func (l *Lexer) GetSource() string {
	return l.input
}

// All reads every remaining token. The last token is always EOF.
func (l *Lexer) All() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next token. Comments are skipped.
func (l *Lexer) NextToken() token.Token {
	tok := l.next()
	l.prev = tok.Type
	l.lineStart = tok.Type == token.NEWLINE
	return tok
}

func (l *Lexer) next() token.Token {
	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}
		break
	}

	line, column := l.line, l.column
	tok := token.Token{Line: line, Column: column}

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		return tok
	case '\n':
		tok = l.newToken(token.NEWLINE, "\n", line, column)
	case '/':
		if l.lineStart && isLetter(l.peekChar()) {
			l.readChar()
			return token.Token{Type: token.COMMAND, Literal: l.readLine(), Line: line, Column: column}
		}
		tok = l.operator(token.SLASH, token.DIV_ASSIGN, line, column)
	case '=':
		tok = l.operator(token.ASSIGN, token.EQ, line, column)
	case '+':
		tok = l.operator(token.PLUS, token.ADD_ASSIGN, line, column)
	case '*':
		tok = l.operator(token.STAR, token.MUL_ASSIGN, line, column)
	case '%':
		tok = l.operator(token.PERCENT, token.MOD_ASSIGN, line, column)
	case '!':
		tok = l.operator(token.NOT, token.NEQ, line, column)
	case '<':
		tok = l.operator(token.LT, token.LTE, line, column)
	case '>':
		if l.peekChar() == '<' {
			l.readChar()
			tok = l.newToken(token.SWAP, "><", line, column)
		} else {
			tok = l.operator(token.GT, token.GTE, line, column)
		}
	case '-':
		if isDigit(l.peekChar()) && !isOperand(l.prev) {
			return l.readNumber(line, column)
		}
		tok = l.operator(token.MINUS, token.SUB_ASSIGN, line, column)
	case '&':
		tok = l.pair('&', token.AND, line, column)
	case '|':
		tok = l.pair('|', token.OR, line, column)
	case '(':
		tok = l.newToken(token.LPAREN, "(", line, column)
	case ')':
		tok = l.newToken(token.RPAREN, ")", line, column)
	case '{':
		tok = l.newToken(token.LBRACE, "{", line, column)
	case '}':
		tok = l.newToken(token.RBRACE, "}", line, column)
	case ',':
		tok = l.newToken(token.COMMA, ",", line, column)
	case ';':
		tok = l.newToken(token.SEMICOLON, ";", line, column)
	case '"':
		return token.Token{Type: token.STRING, Literal: l.readString(), Line: line, Column: column}
	case '@':
		if isLetter(l.peekChar()) {
			return token.Token{Type: token.SELECTOR, Literal: l.readSelector(), Line: line, Column: column}
		}
		tok = l.newToken(token.ILLEGAL, "@", line, column)
	case '~', '^':
		return token.Token{Type: token.COORDINATE, Literal: l.readCoordinate(), Line: line, Column: column}
	default:
		if isLetter(l.ch) {
			return token.Token{Type: token.IDENT, Literal: l.readIdentifier(), Line: line, Column: column}
		}
		if isDigit(l.ch) {
			return l.readNumber(line, column)
		}
		tok = l.newToken(token.ILLEGAL, string(l.ch), line, column)
	}

	l.readChar()
	return tok
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) newToken(t token.Type, literal string, line, column int) token.Token {
	return token.Token{Type: t, Literal: literal, Line: line, Column: column}
}

// operator reads a one-character operator that may be followed by '='.
func (l *Lexer) operator(single, withEquals token.Type, line, column int) token.Token {
	if l.peekChar() == '=' {
		ch := l.ch
		l.readChar()
		return l.newToken(withEquals, string(ch)+"=", line, column)
	}
	return l.newToken(single, string(l.ch), line, column)
}

// pair reads a doubled operator such as && or ||.
func (l *Lexer) pair(ch byte, t token.Type, line, column int) token.Token {
	if l.peekChar() == ch {
		l.readChar()
		return l.newToken(t, string(ch)+string(ch), line, column)
	}
	return l.newToken(token.ILLEGAL, string(ch), line, column)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // '/'
	l.readChar() // '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readLine reads up to (not including) the end of the line.
func (l *Lexer) readLine() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return strings.TrimRight(l.input[position:l.position], " \t\r")
}

// readIdentifier reads an identifier. Dots are allowed so that MoLang queries
// such as query.is_sneaking stay a single token.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || (l.ch == '.' && isLetter(l.peekChar())) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer, a decimal or a time literal (20t, 3s).
func (l *Lexer) readNumber(line, column int) token.Token {
	position := l.position
	typ := token.INT

	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.DECIMAL
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if typ == token.INT && (l.ch == 't' || l.ch == 's') && !isLetter(l.peekChar()) && !isDigit(l.peekChar()) {
		typ = token.TIME
		l.readChar()
	}

	return token.Token{Type: typ, Literal: l.input[position:l.position], Line: line, Column: column}
}

// readString reads a double-quoted string, resolving \" and \\ escapes.
func (l *Lexer) readString() string {
	var sb strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' && (l.peekChar() == '"' || l.peekChar() == '\\') {
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar()
	}
	return sb.String()
}

// readSelector reads @x and an optional [..] filter block.
func (l *Lexer) readSelector() string {
	position := l.position
	l.readChar() // '@'
	for isLetter(l.ch) {
		l.readChar()
	}
	if l.ch == '[' {
		depth := 0
		for l.ch != 0 && l.ch != '\n' {
			if l.ch == '[' || l.ch == '{' {
				depth++
			}
			if l.ch == ']' || l.ch == '}' {
				depth--
			}
			l.readChar()
			if depth == 0 {
				break
			}
		}
	}
	return l.input[position:l.position]
}

// readCoordinate reads ~, ~5, ^-1.5 and friends.
func (l *Lexer) readCoordinate() string {
	position := l.position
	l.readChar()
	if l.ch == '-' && isDigit(l.peekChar()) {
		l.readChar()
	}
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// isOperand reports whether a token of type t ends an operand, in which case a
// following '-' is a binary minus rather than a sign.
func isOperand(t token.Type) bool {
	switch t {
	case token.IDENT, token.INT, token.DECIMAL, token.TIME, token.STRING,
		token.SELECTOR, token.COORDINATE, token.RPAREN:
		return true
	}
	return false
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
