// Package statement groups a token stream into statements and blocks.
//
// A statement is the run of tokens up to a newline or ';' (parentheses may
// span lines). A statement whose tokens are followed by '{' owns the block up
// to the matching '}'; the brace may also open on the next line.
package statement

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
)

// Statement is one executable unit of source.
type Statement struct {
	Tokens   []token.Token
	Block    []*Statement
	HasBlock bool
}

// Pos returns the position of the statement's first token.
func (s *Statement) Pos() token.Position {
	if len(s.Tokens) == 0 {
		return token.Position{}
	}
	return s.Tokens[0].Pos()
}

// Keyword returns the first token's literal when it is an identifier.
func (s *Statement) Keyword() string {
	if len(s.Tokens) == 0 || s.Tokens[0].Type != token.IDENT {
		return ""
	}
	return s.Tokens[0].Literal
}

// String renders the statement tokens, mostly for debug logging.
func (s *Statement) String() string {
	out := ""
	for i, t := range s.Tokens {
		if i > 0 {
			out += " "
		}
		out += t.Literal
	}
	if s.HasBlock {
		out += fmt.Sprintf(" {%d}", len(s.Block))
	}
	return out
}

// Error is a structural error found while assembling statements.
type Error struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Assembler builds statements from tokens.
type Assembler struct {
	tokens []token.Token
	pos    int
}

// Assemble groups tokens (as produced by the lexer, ending in EOF) into
// top-level statements.
func Assemble(tokens []token.Token) ([]*Statement, error) {
	a := &Assembler{tokens: tokens}
	stmts, err := a.block(false)
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

func (a *Assembler) cur() token.Token {
	if a.pos >= len(a.tokens) {
		return token.Token{Type: token.EOF}
	}
	return a.tokens[a.pos]
}

func (a *Assembler) skipSeparators() {
	for t := a.cur().Type; t == token.NEWLINE || t == token.SEMICOLON; t = a.cur().Type {
		a.pos++
	}
}

// block reads statements until EOF, or until '}' when nested.
func (a *Assembler) block(nested bool) ([]*Statement, error) {
	var stmts []*Statement
	for {
		a.skipSeparators()
		tok := a.cur()
		switch tok.Type {
		case token.EOF:
			if nested {
				return nil, &Error{Message: "unexpected end of file, missing '}'", Line: tok.Line, Column: tok.Column}
			}
			return stmts, nil
		case token.RBRACE:
			if !nested {
				return nil, &Error{Message: "unexpected '}'", Line: tok.Line, Column: tok.Column}
			}
			a.pos++
			return stmts, nil
		case token.LBRACE:
			return nil, &Error{Message: "block without a statement", Line: tok.Line, Column: tok.Column}
		case token.ILLEGAL:
			return nil, &Error{Message: fmt.Sprintf("illegal character %q", tok.Literal), Line: tok.Line, Column: tok.Column}
		}

		stmt, err := a.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (a *Assembler) statement() (*Statement, error) {
	stmt := &Statement{}
	depth := 0
	for {
		tok := a.cur()
		switch tok.Type {
		case token.ILLEGAL:
			return nil, &Error{Message: fmt.Sprintf("illegal character %q", tok.Literal), Line: tok.Line, Column: tok.Column}
		case token.EOF:
			if depth > 0 {
				return nil, &Error{Message: "unclosed '('", Line: tok.Line, Column: tok.Column}
			}
			return stmt, nil
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth < 0 {
				return nil, &Error{Message: "unexpected ')'", Line: tok.Line, Column: tok.Column}
			}
		case token.NEWLINE:
			if depth > 0 {
				a.pos++
				continue
			}
			if a.braceOnNextLine() {
				continue
			}
			return stmt, nil
		case token.SEMICOLON:
			if depth == 0 {
				return stmt, nil
			}
		case token.RBRACE:
			if depth == 0 {
				return stmt, nil
			}
		case token.LBRACE:
			if depth == 0 {
				a.pos++
				body, err := a.block(true)
				if err != nil {
					return nil, err
				}
				stmt.Block = body
				stmt.HasBlock = true
				return stmt, nil
			}
		}
		stmt.Tokens = append(stmt.Tokens, tok)
		a.pos++
	}
}

// braceOnNextLine skips newlines when the next significant token opens a block.
func (a *Assembler) braceOnNextLine() bool {
	i := a.pos
	for i < len(a.tokens) && a.tokens[i].Type == token.NEWLINE {
		i++
	}
	if i < len(a.tokens) && a.tokens[i].Type == token.LBRACE {
		a.pos = i
		return true
	}
	return false
}
