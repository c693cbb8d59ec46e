package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/script"
)

func identities(files []output.File) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.Identity())
	}
	return ids
}

func mainCommands(t *testing.T, files []output.File) []string {
	t.Helper()
	for _, f := range files {
		if f.Identity() == "functions/main.mcfunction" {
			return f.(*output.CommandFile).Commands()
		}
	}
	t.Fatalf("no main function in %v", identities(files))
	return nil
}

func TestCompile(t *testing.T) {
	files, errs := Compile("define global int a = 1\n/say hi\n", Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{
		"scoreboard objectives add a dummy",
		"scoreboard players set global a 1",
		"say hi",
	}
	if diff := cmp.Diff(want, mainCommands(t, files)); diff != "" {
		t.Errorf("main (-want +got):\n%s", diff)
	}
}

func TestCompileUsesOptions(t *testing.T) {
	files, errs := Compile("define int a = 1\n", Options{GlobalHolder: "#g"})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	// local values keep @s regardless of the holder
	if diff := cmp.Diff("scoreboard players set @s a 1", mainCommands(t, files)[1]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	files, errs = Compile("define global int a = 1\n", Options{GlobalHolder: "#g"})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := mainCommands(t, files)[1]; got != "scoreboard players set #g a 1" {
		t.Errorf("got %q", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		phase   string
		count   int
		line    int
		message string
	}{
		{"lexer errors are all collected", "define int a = 1 $ 2\ndefine int b = $\n", PhaseLexer, 2, 1, "illegal character '$'"},
		{"unbalanced brace", "define int a\n}\n", PhaseParser, 1, 2, "unexpected '}'"},
		{"unclosed block", "if true {\n\t/say x\n", PhaseParser, 1, 3, "missing '}'"},
		{"undefined name", "define int score\nscroe = 1\n", PhaseCompiler, 1, 2, `did you mean "score"?`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, errs := Compile(tt.source, Options{})
			if files != nil {
				t.Errorf("files = %v, want none", identities(files))
			}
			if len(errs) != tt.count {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, tt.count)
			}
			ce, ok := IsCompileError(errs[0])
			if !ok {
				t.Fatalf("%T is not a CompileError", errs[0])
			}
			if ce.Phase != tt.phase || ce.Line != tt.line {
				t.Errorf("got %s error at line %d, want %s at %d", ce.Phase, ce.Line, tt.phase, tt.line)
			}
			if !strings.Contains(ce.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", ce.Message, tt.message)
			}
			if ce.Context == "" {
				t.Error("Context should not be empty")
			}
		})
	}
}

func TestCompileErrorMatchesSentinel(t *testing.T) {
	_, errs := Compile("define global local int x\n", Options{})
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if !errors.Is(errs[0], diag.ErrAttributeMisuse) {
		t.Errorf("%v should match diag.ErrAttributeMisuse", errs[0])
	}
	if ce, _ := IsCompileError(errs[0]); ce.Kind != diag.KindAttributeMisuse {
		t.Errorf("Kind = %v", ce.Kind)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.mcc")
	// UTF-8 BOM and CRLF
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBF/say hi\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	files, errs := CompileFile(path, Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if diff := cmp.Diff([]string{"say hi"}, mainCommands(t, files)); diff != "" {
		t.Errorf("main (-want +got):\n%s", diff)
	}

	bad := filepath.Join(dir, "bad.mcc")
	if err := os.WriteFile(bad, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, errs = CompileFile(bad, Options{})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "bad.mcc: line 1") {
		t.Errorf("errors = %v, want one located in bad.mcc", errs)
	}
}

func TestCompileFileNotFound(t *testing.T) {
	_, errs := CompileFile(filepath.Join(t.TempDir(), "missing.mcc"), Options{})
	if len(errs) != 1 || !errors.Is(errs[0], os.ErrNotExist) {
		t.Errorf("errors = %v, want a not-exist error", errs)
	}
}

func TestCompileScriptsAreIsolated(t *testing.T) {
	scripts := []script.Script{
		{FileName: "a.mcc", Path: "a.mcc", Content: "define global int shared = 1\n"},
		{FileName: "b.mcc", Path: "lib/b.mcc", Content: "shared = 2\n"},
		{FileName: "c.mcc", Path: "c.mcc", Content: "/say c\n"},
	}
	out, errs := CompileScripts(scripts, Options{})
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if !errors.Is(errs[0], diag.ErrUndefined) || !strings.Contains(errs[0].Error(), "lib/b.mcc") {
		t.Errorf("error = %v", errs[0])
	}

	var names []string
	for name := range out {
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"a", "c"}, names, sortStrings); diff != "" {
		t.Errorf("compiled (-want +got):\n%s", diff)
	}
}

func TestCompileScriptsWithResults(t *testing.T) {
	scripts := []script.Script{
		{FileName: "ok.mcc", Path: "ok.mcc", Content: "/say ok\n"},
		{FileName: "bad.mcc", Path: "bad.mcc", Content: "}\n"},
	}
	results := CompileScriptsWithResults(scripts, Options{})
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Name() != "ok" || len(results[0].Errors) != 0 || results[0].Files == nil {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Files != nil || len(results[1].Errors) != 1 {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestCompileScriptsEmpty(t *testing.T) {
	out, errs := CompileScripts(nil, Options{})
	if len(out) != 0 || len(errs) != 0 {
		t.Errorf("got %v, %v", out, errs)
	}
}

func TestCompileScriptsWithIncludes(t *testing.T) {
	fsys := fileutil.NewTreeFS(fstest.MapFS{
		"src/lib/math.mcc":   {Data: []byte("function double(int n) {\n\treturn n * 2\n}\n")},
		"src/lib/broken.mcc": {Data: []byte("/say fine\nundefinedThing = 1\n")},
	}, "src")
	scripts := []script.Script{
		{FileName: "ok.mcc", Path: "ok.mcc", FS: fsys,
			Content: "$include \"lib/math\"\ndefine global int x = double(4)\n"},
		{FileName: "bad.mcc", Path: "bad.mcc", FS: fsys,
			Content: "/say first\n$include \"lib/broken\"\n"},
		{FileName: "missing.mcc", Path: "missing.mcc", FS: fsys,
			Content: "\n$include \"lib/nope\"\n"},
	}
	results := CompileScriptsWithResults(scripts, Options{})

	if len(results[0].Errors) > 0 {
		t.Fatalf("ok.mcc: %v", results[0].Errors)
	}
	if !containsString(identities(results[0].Files), "functions/double.mcfunction") {
		t.Errorf("included function missing from %v", identities(results[0].Files))
	}

	ce, ok := IsCompileError(results[1].Errors[0])
	if !ok {
		t.Fatalf("bad.mcc: %v", results[1].Errors)
	}
	if ce.File != "lib/broken.mcc" || ce.Line != 2 || ce.Phase != PhaseCompiler {
		t.Errorf("error located at %s:%d (%s), want lib/broken.mcc:2", ce.File, ce.Line, ce.Phase)
	}
	if !strings.Contains(ce.Context, "> 2 | undefinedThing = 1") {
		t.Errorf("Context = %q", ce.Context)
	}

	ce, ok = IsCompileError(results[2].Errors[0])
	if !ok || ce.Phase != PhasePreprocessor || ce.File != "missing.mcc" || ce.Line != 2 {
		t.Errorf("missing include error = %+v", results[2].Errors)
	}
}

func TestCompileRejectsIncludeInMemory(t *testing.T) {
	_, errs := Compile("$include \"lib\"\n", Options{})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "no file system") {
		t.Errorf("errors = %v", errs)
	}
}
