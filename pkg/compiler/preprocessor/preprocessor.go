// Package preprocessor expands $include directives before lexing.
//
//	$include "lib/util"
//
// splices lib/util.mcc, relative to the including file, in place of the
// directive. A file is spliced at most once per compilation; including a
// file that is still being expanded is an error. Every output line remembers
// the file and line it came from.
package preprocessor

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/zurustar/mccompiled/pkg/fileutil"
)

// Directive starts an include line.
const Directive = "$include"

// DefaultExtension is appended to include targets that have none.
const DefaultExtension = ".mcc"

// Origin is the file and 1-indexed line an output line came from.
type Origin struct {
	File string
	Line int
}

// Source is expanded text plus its line origins.
type Source struct {
	Text     string
	origins  []Origin
	texts    map[string]string
	included []string
}

// Origin maps a 1-indexed line of Text back to its source.
func (s *Source) Origin(line int) (Origin, bool) {
	if line < 1 || line > len(s.origins) {
		return Origin{}, false
	}
	return s.origins[line-1], true
}

// FileText returns the unexpanded text of a file taking part in s.
func (s *Source) FileText(file string) string {
	return s.texts[file]
}

// Included lists the spliced files in the order they were first included.
func (s *Source) Included() []string {
	return s.included
}

// Error is a malformed or unresolvable include.
type Error struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Preprocessor expands includes read through a file system.
type Preprocessor struct {
	fs     fileutil.FileSystem
	decode func([]byte) (string, error)

	active map[string]bool
	done   map[string]bool
	src    *Source
}

// New creates a preprocessor. fsys may be nil, in which case every include
// fails. decode turns included file contents into text.
func New(fsys fileutil.FileSystem, decode func([]byte) (string, error)) *Preprocessor {
	if decode == nil {
		decode = func(b []byte) (string, error) { return string(b), nil }
	}
	return &Preprocessor{fs: fsys, decode: decode}
}

// Process expands text as the contents of the file name. name is "/"
// separated and relative to the file system root; it may be empty for
// in-memory sources.
func (p *Preprocessor) Process(name, text string) (*Source, error) {
	p.active = make(map[string]bool)
	p.done = make(map[string]bool)
	p.src = &Source{texts: make(map[string]string)}
	var b strings.Builder
	if err := p.expand(name, text, &b); err != nil {
		return nil, err
	}
	p.src.Text = b.String()
	return p.src, nil
}

func (p *Preprocessor) expand(name, text string, b *strings.Builder) error {
	key := fileutil.Fold(name)
	p.active[key] = true
	p.done[key] = true
	defer delete(p.active, key)
	p.src.texts[name] = text

	for i, line := range splitLines(text) {
		target, ok, err := Parse(line)
		if err != nil {
			return &Error{File: name, Line: i + 1, Message: err.Error()}
		}
		p.src.origins = append(p.src.origins, Origin{File: name, Line: i + 1})
		if !ok {
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}
		// the directive itself becomes a blank line
		b.WriteByte('\n')

		file := Resolve(name, target)
		fkey := fileutil.Fold(file)
		if p.active[fkey] {
			return &Error{File: name, Line: i + 1, Message: fmt.Sprintf("circular include of %s", file)}
		}
		if p.done[fkey] {
			continue
		}
		if p.fs == nil {
			return &Error{File: name, Line: i + 1, Message: fmt.Sprintf("cannot include %s", file),
				Err: errors.New("no file system to include from")}
		}
		data, err := p.fs.ReadFile(file)
		if err != nil {
			return &Error{File: name, Line: i + 1, Message: fmt.Sprintf("cannot include %s", file), Err: err}
		}
		included, err := p.decode(data)
		if err != nil {
			return &Error{File: name, Line: i + 1, Message: fmt.Sprintf("cannot decode %s", file), Err: err}
		}
		p.src.included = append(p.src.included, file)
		if err := p.expand(file, included, b); err != nil {
			return err
		}
	}
	return nil
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Parse reports whether line is an include directive and returns its
// target with quotes removed.
func Parse(line string) (string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, Directive) {
		return "", false, nil
	}
	rest := trimmed[len(Directive):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '"' {
		// $includes, $include_x ...
		return "", false, nil
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", false, fmt.Errorf("unterminated file name in %s", Directive)
		}
		if tail := strings.TrimSpace(rest[end+2:]); tail != "" {
			return "", false, fmt.Errorf("unexpected %q after %s", tail, Directive)
		}
		rest = rest[1 : end+1]
	} else if strings.ContainsAny(rest, " \t") {
		return "", false, fmt.Errorf("file names with spaces must be quoted")
	}
	if rest == "" {
		return "", false, fmt.Errorf("%s needs a file name", Directive)
	}
	return rest, true, nil
}

// Resolve returns the path of target included from the file from.
func Resolve(from, target string) string {
	target = strings.ReplaceAll(target, `\`, "/")
	if path.Ext(target) == "" {
		target += DefaultExtension
	}
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Join(path.Dir(from), target)
}

// Includes lists the files text includes directly, without reading them.
// Malformed directives are skipped.
func Includes(name, text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		if target, ok, err := Parse(line); ok && err == nil {
			out = append(out, Resolve(name, target))
		}
	}
	return out
}
