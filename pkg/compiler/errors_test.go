package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zurustar/mccompiled/pkg/compiler/statement"
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/diag"
)

func TestCompileError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompileError
		contains []string
	}{
		{
			name:     "lexer error without context",
			err:      NewLexerError("illegal character '$'", 5, 10),
			contains: []string{"lexer error", "line 5", "column 10", "illegal character '$'"},
		},
		{
			name:     "parser error with file",
			err:      &CompileError{Phase: PhaseParser, File: "main.mcc", Message: "unexpected '}'", Line: 12, Column: 1},
			contains: []string{"parser error at main.mcc: line 12, column 1", "unexpected '}'"},
		},
		{
			name: "error with context",
			err:  NewCompilerErrorWithContext("undefined name: x", 2, 1, "define int a\nx = 1\n"),
			contains: []string{"compiler error", "undefined name: x", "> 2 | x = 1", "^"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(msg, substr) {
					t.Errorf("Error() = %q, want to contain %q", msg, substr)
				}
			}
		})
	}
}

func TestConstructorsSetPhase(t *testing.T) {
	tests := []struct {
		err   *CompileError
		phase string
	}{
		{NewLexerError("m", 1, 2), PhaseLexer},
		{NewParserError("m", 1, 2), PhaseParser},
		{NewCompilerError("m", 1, 2), PhaseCompiler},
		{NewLexerErrorWithContext("m", 1, 2, "x"), PhaseLexer},
		{NewParserErrorWithContext("m", 1, 2, "x"), PhaseParser},
	}
	for _, tt := range tests {
		if tt.err.Phase != tt.phase || tt.err.Line != 1 || tt.err.Column != 2 {
			t.Errorf("got %+v, want phase %s at 1:2", tt.err, tt.phase)
		}
	}
}

func TestFromError(t *testing.T) {
	source := "define int a\nb = 1\n"
	tests := []struct {
		name    string
		err     error
		phase   string
		kind    diag.Kind
		message string
		line    int
	}{
		{
			name:    "statement error",
			err:     &statement.Error{Message: "unexpected '}'", Line: 2, Column: 1},
			phase:   PhaseParser,
			kind:    diag.KindSyntax,
			message: "unexpected '}'",
			line:    2,
		},
		{
			name:    "diag error",
			err:     diag.ErrorAt(diag.KindUndefined, token.Position{Line: 2, Column: 1}, "unknown name b"),
			phase:   PhaseCompiler,
			kind:    diag.KindUndefined,
			message: "undefined name: unknown name b",
			line:    2,
		},
		{
			name:    "diag error with cause",
			err:     diag.At(token.Position{Line: 1, Column: 1}, fmt.Errorf("disk on fire")),
			phase:   PhaseCompiler,
			kind:    diag.KindUnknown,
			message: "disk on fire",
			line:    1,
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			phase:   PhaseCompiler,
			message: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := fromError(tt.err, source)
			if ce.Phase != tt.phase || ce.Kind != tt.kind || ce.Message != tt.message || ce.Line != tt.line {
				t.Errorf("fromError = %+v", ce)
			}
			if !errors.Is(ce, tt.err) {
				t.Error("CompileError should wrap its cause")
			}
			if tt.line > 0 && !strings.Contains(ce.Context, fmt.Sprintf("> %d |", tt.line)) {
				t.Errorf("Context = %q", ce.Context)
			}
		})
	}
}

func TestIsCompileError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantOk    bool
		wantPhase string
	}{
		{"CompileError", NewLexerError("test", 1, 1), true, PhaseLexer},
		{"wrapped", fmt.Errorf("ctx: %w", NewParserError("test", 1, 1)), true, PhaseParser},
		{"standard error", errors.New("standard error"), false, ""},
		{"nil error", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, ok := IsCompileError(tt.err)
			if ok != tt.wantOk {
				t.Errorf("IsCompileError() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && ce.Phase != tt.wantPhase {
				t.Errorf("IsCompileError() Phase = %q, want %q", ce.Phase, tt.wantPhase)
			}
		})
	}
}

func TestCollectErrors(t *testing.T) {
	original := errors.New("standard error")
	collected := CollectErrors([]error{
		NewLexerError("lexer error", 1, 1),
		original,
		NewParserError("parser error", 2, 2),
	}, PhaseCompiler)

	if len(collected) != 3 {
		t.Fatalf("CollectErrors() returned %d errors, want 3", len(collected))
	}
	if collected[0].Phase != PhaseLexer || collected[2].Phase != PhaseParser {
		t.Errorf("phases = %q, %q", collected[0].Phase, collected[2].Phase)
	}
	if collected[1].Phase != PhaseCompiler || collected[1].Message != "standard error" {
		t.Errorf("collected[1] = %+v", collected[1])
	}
	if !errors.Is(collected[1], original) {
		t.Error("wrapped error should unwrap to the original")
	}
}

func TestGenerateErrorContext(t *testing.T) {
	source := strings.Join([]string{
		"define int a = 1",
		"define int b = 2",
		"define int c = 3",
		"define int d =",
		"define int e = 5",
		"define int f = 6",
		"define int g = 7",
	}, "\n")

	tests := []struct {
		name   string
		source string
		line   int
		column int
		want   string
	}{
		{
			name: "middle", source: source, line: 4, column: 9,
			want: "  2 | define int b = 2\n" +
				"  3 | define int c = 3\n" +
				"> 4 | define int d =\n" +
				"              ^\n" +
				"  5 | define int e = 5\n" +
				"  6 | define int f = 6\n",
		},
		{
			name: "first line", source: source, line: 1, column: 1,
			want: "> 1 | define int a = 1\n" +
				"      ^\n" +
				"  2 | define int b = 2\n" +
				"  3 | define int c = 3\n",
		},
		{
			name: "last line without column", source: source, line: 7, column: 0,
			want: "  5 | define int e = 5\n" +
				"  6 | define int f = 6\n" +
				"> 7 | define int g = 7\n" +
				"      ^\n",
		},
		{
			name: "number width grows", source: strings.Repeat("x\n", 9) + "y", line: 9, column: 1,
			want: "   7 | x\n" +
				"   8 | x\n" +
				">  9 | x\n" +
				"       ^\n" +
				"  10 | y\n",
		},
		{name: "empty source", source: "", line: 1, column: 1},
		{name: "line zero", source: source, line: 0, column: 1},
		{name: "past the end", source: source, line: 100, column: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateErrorContext(tt.source, tt.line, tt.column); got != tt.want {
				t.Errorf("GenerateErrorContext() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}
