package statement

import (
	"strings"
	"testing"

	"github.com/zurustar/mccompiled/pkg/compiler/lexer"
)

func assemble(t *testing.T, src string) []*Statement {
	t.Helper()
	stmts, err := Assemble(lexer.New(src).All())
	if err != nil {
		t.Fatalf("Assemble(%q) failed: %v", src, err)
	}
	return stmts
}

func TestAssembleFlat(t *testing.T) {
	stmts := assemble(t, "define int a\n\na = 3; a += 1\n")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	if got := stmts[0].String(); got != "define int a" {
		t.Errorf("stmts[0] = %q", got)
	}
	if got := stmts[2].Keyword(); got != "a" {
		t.Errorf("stmts[2].Keyword() = %q", got)
	}
}

func TestAssembleBlocks(t *testing.T) {
	src := `function tick()
{
	if a > 1 {
		a = 0
	} else { a += 1 }
}
`
	stmts := assemble(t, src)
	if len(stmts) != 1 {
		t.Fatalf("got %d top-level statements, want 1", len(stmts))
	}
	fn := stmts[0]
	if !fn.HasBlock || len(fn.Block) != 2 {
		t.Fatalf("function block = %d statements (has=%v), want 2", len(fn.Block), fn.HasBlock)
	}
	if fn.Block[0].Keyword() != "if" || fn.Block[1].Keyword() != "else" {
		t.Errorf("got %q / %q", fn.Block[0], fn.Block[1])
	}
	if len(fn.Block[1].Block) != 1 {
		t.Errorf("else block has %d statements", len(fn.Block[1].Block))
	}
}

func TestAssembleParenthesesSpanLines(t *testing.T) {
	stmts := assemble(t, "f(1,\n 2)\n")
	if len(stmts) != 1 || len(stmts[0].Tokens) != 6 {
		t.Fatalf("got %v", stmts)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unclosed block", "if a {\n a = 1\n", "missing '}'"},
		{"stray brace", "}", "unexpected '}'"},
		{"stray paren", "f(1))", "unexpected ')'"},
		{"illegal", "a = $", "illegal character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(lexer.New(tt.src).All())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}
