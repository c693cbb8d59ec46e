package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/statement"
	"github.com/zurustar/mccompiled/pkg/diag"
)

// Phases
const (
	PhasePreprocessor = "preprocessor"
	PhaseLexer        = "lexer"
	PhaseParser       = "parser"
	PhaseCompiler     = "compiler"
)

// CompileError is a compilation error located in one source file.
type CompileError struct {
	// Phase is one of the Phase constants.
	Phase string

	// File is the source file name, empty for in-memory sources.
	File string

	Message string

	// Line and Column are 1-indexed; 0 means unknown.
	Line   int
	Column int

	// Context is the source around Line with a pointer (^) at Column.
	Context string

	// Kind classifies compiler phase errors.
	Kind diag.Kind

	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	where := fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	if e.File != "" {
		where = e.File + ": " + where
	}
	if e.Context != "" {
		return fmt.Sprintf("%s error at %s: %s\n%s", e.Phase, where, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at %s: %s", e.Phase, where, e.Message)
}

// Unwrap exposes the underlying error, so errors.Is matches the diag
// sentinels through a CompileError.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// NewLexerError creates a lexer phase error.
func NewLexerError(message string, line, column int) *CompileError {
	return &CompileError{Phase: PhaseLexer, Message: message, Line: line, Column: column}
}

// NewParserError creates a parser phase error.
func NewParserError(message string, line, column int) *CompileError {
	return &CompileError{Phase: PhaseParser, Message: message, Line: line, Column: column}
}

// NewCompilerError creates a compiler phase error.
func NewCompilerError(message string, line, column int) *CompileError {
	return &CompileError{Phase: PhaseCompiler, Message: message, Line: line, Column: column}
}

// NewLexerErrorWithContext is NewLexerError plus source context.
func NewLexerErrorWithContext(message string, line, column int, source string) *CompileError {
	e := NewLexerError(message, line, column)
	e.Context = GenerateErrorContext(source, line, column)
	return e
}

// NewParserErrorWithContext is NewParserError plus source context.
func NewParserErrorWithContext(message string, line, column int, source string) *CompileError {
	e := NewParserError(message, line, column)
	e.Context = GenerateErrorContext(source, line, column)
	return e
}

// NewCompilerErrorWithContext is NewCompilerError plus source context.
func NewCompilerErrorWithContext(message string, line, column int, source string) *CompileError {
	e := NewCompilerError(message, line, column)
	e.Context = GenerateErrorContext(source, line, column)
	return e
}

// IsCompileError reports whether err is or wraps a CompileError.
func IsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// WrapError turns an arbitrary error into a CompileError of the given phase.
func WrapError(err error, phase string, line, column int) *CompileError {
	return &CompileError{Phase: phase, Message: err.Error(), Line: line, Column: column, Err: err}
}

// CollectErrors converts errs to CompileErrors. Errors that are not
// CompileErrors already get defaultPhase.
func CollectErrors(errs []error, defaultPhase string) []*CompileError {
	out := make([]*CompileError, 0, len(errs))
	for _, err := range errs {
		if ce, ok := IsCompileError(err); ok {
			out = append(out, ce)
			continue
		}
		out = append(out, WrapError(err, defaultPhase, 0, 0))
	}
	return out
}

// fromError classifies an error from the statement assembler or the
// executor and attaches source context.
func fromError(err error, source string) *CompileError {
	if ce, ok := IsCompileError(err); ok {
		return ce
	}
	var se *statement.Error
	if errors.As(err, &se) {
		ce := NewParserErrorWithContext(se.Message, se.Line, se.Column, source)
		ce.Kind = diag.KindSyntax
		ce.Err = err
		return ce
	}
	ce := &CompileError{Phase: PhaseCompiler, Kind: diag.KindOf(err), Err: err}
	var de *diag.Error
	if errors.As(err, &de) {
		ce.Message = de.Message
		if de.Err != nil {
			if ce.Message == "" {
				ce.Message = de.Err.Error()
			} else {
				ce.Message += ": " + de.Err.Error()
			}
		}
	} else {
		ce.Message = err.Error()
	}
	if ce.Kind != diag.KindUnknown {
		ce.Message = ce.Kind.String() + ": " + ce.Message
	}
	if pos, ok := diag.PositionOf(err); ok {
		ce.Line, ce.Column = pos.Line, pos.Column
		ce.Context = GenerateErrorContext(source, pos.Line, pos.Column)
	}
	return ce
}

// contextLines is how many lines GenerateErrorContext shows on each side.
const contextLines = 2

// GenerateErrorContext renders the lines around line with a marker on it and
// a caret under column. It returns "" when line is outside source.
//
//	  2 | define int x = 5
//	  3 | define int y = 10
//	> 4 | x = * 2
//	            ^
//	  5 | y += x
//	  6 | /say done
func GenerateErrorContext(source string, line, column int) string {
	lines := strings.Split(source, "\n")
	if source == "" || line < 1 || line > len(lines) {
		return ""
	}
	first := max(1, line-contextLines)
	last := min(len(lines), line+contextLines)
	width := len(strconv.Itoa(last))

	var b strings.Builder
	for n := first; n <= last; n++ {
		marker := "  "
		if n == line {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%*d | %s\n", marker, width, n, lines[n-1])
		if n == line {
			b.WriteString(strings.Repeat(" ", len(marker)+width+3+max(column-1, 0)))
			b.WriteString("^\n")
		}
	}
	return b.String()
}
