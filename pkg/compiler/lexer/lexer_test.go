package lexer

import (
	"testing"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
)

func TestNextToken(t *testing.T) {
	input := `define int score = -5
score += 2.5 // comment
/say hello world
if score >= 10 {
	as @e[type=cow,tag=a] { score >< other }
}
wait 20t ~ ~-1 ^2
`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENT, "define"},
		{token.IDENT, "int"},
		{token.IDENT, "score"},
		{token.ASSIGN, "="},
		{token.INT, "-5"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "score"},
		{token.ADD_ASSIGN, "+="},
		{token.DECIMAL, "2.5"},
		{token.NEWLINE, "\n"},

		{token.COMMAND, "say hello world"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "if"},
		{token.IDENT, "score"},
		{token.GTE, ">="},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "as"},
		{token.SELECTOR, "@e[type=cow,tag=a]"},
		{token.LBRACE, "{"},
		{token.IDENT, "score"},
		{token.SWAP, "><"},
		{token.IDENT, "other"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},

		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "wait"},
		{token.TIME, "20t"},
		{token.COORDINATE, "~"},
		{token.COORDINATE, "~-1"},
		{token.COORDINATE, "^2"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestMinusAfterOperand(t *testing.T) {
	tokens := New("a -1").All()
	want := []token.Type{token.IDENT, token.MINUS, token.INT, token.EOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("tokens[%d] = %s, want %s", i, tokens[i].Type, typ)
		}
	}
}

func TestPositions(t *testing.T) {
	tokens := New("a\n  bb = 3").All()
	// a, NEWLINE, bb, =, 3, EOF
	if tokens[2].Line != 2 || tokens[2].Column != 3 {
		t.Errorf("bb at %d:%d, want 2:3", tokens[2].Line, tokens[2].Column)
	}
	if tokens[4].Line != 2 || tokens[4].Column != 8 {
		t.Errorf("3 at %d:%d, want 2:8", tokens[4].Line, tokens[4].Column)
	}
}

func TestSlashIsNotCommandMidLine(t *testing.T) {
	tokens := New("x /= 2").All()
	if tokens[1].Type != token.DIV_ASSIGN {
		t.Errorf("got %s, want /=", tokens[1].Type)
	}
}

func TestIllegalCharacter(t *testing.T) {
	tokens := New("a $ b").All()
	if tokens[1].Type != token.ILLEGAL || tokens[1].Literal != "$" {
		t.Errorf("got %v, want ILLEGAL($)", tokens[1])
	}
}

func TestStringEscapes(t *testing.T) {
	tokens := New(`"say \"hi\""`).All()
	if tokens[0].Type != token.STRING || tokens[0].Literal != `say "hi"` {
		t.Errorf("got %v", tokens[0])
	}
}
