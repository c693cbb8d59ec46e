// Package compiler runs the MCCompiled pipeline over source files:
//
//  1. Preprocessor: $include expansion
//  2. Lexer: tokenization
//  3. Statement assembly: statements and blocks
//  4. Executor: statements run against a fresh compilation context and
//     emit behaviour-pack files
//
// Every source file is compiled in isolation. An error aborts its file only;
// batch functions carry on with the next file and report every error.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zurustar/mccompiled/pkg/compiler/lexer"
	"github.com/zurustar/mccompiled/pkg/compiler/preprocessor"
	"github.com/zurustar/mccompiled/pkg/compiler/statement"
	"github.com/zurustar/mccompiled/pkg/compiler/token"
	"github.com/zurustar/mccompiled/pkg/executor"
	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/script"
)

// Options configures the compilation context of every file.
type Options = executor.Options

// Compile compiles UTF-8 source held in memory. Such a source cannot use
// $include.
func Compile(source string, opts Options) ([]output.File, []error) {
	return compileScript(script.Script{Content: source}, opts)
}

// compileScript runs the pipeline on one script. Lexer errors are all
// collected before the pipeline stops; the other phases stop at their first
// error.
func compileScript(s script.Script, opts Options) ([]output.File, []error) {
	src, err := preprocessor.New(s.FS, script.Decode).Process(s.Path, s.Content)
	if err != nil {
		return nil, []error{preprocessError(err, s)}
	}

	tokens := lexer.New(src.Text).All()
	if errs := illegalTokens(tokens, src); len(errs) > 0 {
		return nil, errs
	}

	stmts, err := statement.Assemble(tokens)
	if err != nil {
		return nil, []error{locate(fromError(err, src.Text), src)}
	}

	ctx := executor.NewContext(opts)
	if err := ctx.Run(stmts); err != nil {
		return nil, []error{locate(fromError(err, src.Text), src)}
	}
	return ctx.Finish(), nil
}

func illegalTokens(tokens []token.Token, src *preprocessor.Source) []error {
	var errs []error
	for _, t := range tokens {
		if t.Type == token.ILLEGAL {
			ce := NewLexerError(fmt.Sprintf("illegal character '%s'", t.Literal), t.Line, t.Column)
			errs = append(errs, locate(ce, src))
		}
	}
	return errs
}

// locate moves an error from expanded text back to the file and line it
// came from.
func locate(ce *CompileError, src *preprocessor.Source) *CompileError {
	origin, ok := src.Origin(ce.Line)
	if !ok {
		return ce
	}
	ce.Line = origin.Line
	if origin.File != "" {
		ce.File = origin.File
	}
	ce.Context = GenerateErrorContext(src.FileText(origin.File), origin.Line, ce.Column)
	return ce
}

func preprocessError(err error, s script.Script) *CompileError {
	var pe *preprocessor.Error
	if !errors.As(err, &pe) {
		return WrapError(err, PhasePreprocessor, 0, 0)
	}
	msg := pe.Message
	if pe.Err != nil {
		msg += ": " + pe.Err.Error()
	}
	ce := &CompileError{Phase: PhasePreprocessor, File: pe.File, Message: msg, Line: pe.Line, Err: err}
	if pe.File == s.Path {
		ce.Context = GenerateErrorContext(s.Content, pe.Line, 0)
	}
	return ce
}

// CompileFile reads, decodes and compiles one file. Includes resolve
// against the file's directory.
func CompileFile(filePath string, opts Options) ([]output.File, []error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read file %s: %w", filePath, err)}
	}
	content, err := script.Decode(data)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to decode %s: %w", filePath, err)}
	}
	name := filepath.Base(filePath)
	files, errs := compileScript(script.Script{
		FileName: name,
		Path:     name,
		Content:  content,
		Size:     int64(len(data)),
		FS:       fileutil.NewRealFS(filepath.Dir(filePath)),
	}, opts)
	return files, withFile(errs, name)
}

// CompileResult is the outcome of compiling one script.
type CompileResult struct {
	Script script.Script
	// Files is nil when compilation failed.
	Files  []output.File
	Errors []error
}

// Name identifies the result: the script path without its extension.
func (r CompileResult) Name() string {
	return strings.TrimSuffix(r.Script.Path, path.Ext(r.Script.Path))
}

// CompileScriptsWithResults compiles each script independently.
func CompileScriptsWithResults(scripts []script.Script, opts Options) []CompileResult {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	results := make([]CompileResult, 0, len(scripts))
	for _, s := range scripts {
		fileOpts := opts
		fileOpts.Logger = log.With("file", s.Path)
		files, errs := compileScript(s, fileOpts)
		if len(errs) > 0 {
			fileOpts.Logger.Debug("compilation failed", "errors", len(errs))
		}
		results = append(results, CompileResult{
			Script: s,
			Files:  files,
			Errors: withFile(errs, s.Path),
		})
	}
	return results
}

// CompileScripts compiles each script independently and returns the files
// of the successful ones keyed by CompileResult.Name, plus every error.
func CompileScripts(scripts []script.Script, opts Options) (map[string][]output.File, []error) {
	out := make(map[string][]output.File)
	var allErrors []error
	for _, r := range CompileScriptsWithResults(scripts, opts) {
		if len(r.Errors) > 0 {
			allErrors = append(allErrors, r.Errors...)
			continue
		}
		out[r.Name()] = r.Files
	}
	return out, allErrors
}

// CompileDirectory loads every source below dirPath and compiles it.
func CompileDirectory(dirPath string, opts Options) ([]CompileResult, error) {
	scripts, err := script.NewLoader(dirPath).LoadAllScripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts from %s: %w", dirPath, err)
	}
	return CompileScriptsWithResults(scripts, opts), nil
}

// withFile records the source file on every CompileError.
func withFile(errs []error, file string) []error {
	for _, err := range errs {
		if ce, ok := IsCompileError(err); ok && ce.File == "" {
			ce.File = file
		}
	}
	return errs
}
