// Package output holds the files a compilation produces and writes them as
// a behaviour pack.
package output

import (
	"path"
	"strings"

	"github.com/zurustar/mccompiled/pkg/jsondoc"
)

// File is one generated file. Identity is its path relative to the pack
// root and decides whether two files are the same logical file.
type File interface {
	Identity() string
	Contents() ([]byte, error)
}

// CommandFile is a .mcfunction file.
type CommandFile struct {
	Name   string
	Folder string // optional, slash separated

	// InUse forces the file into the output even when nothing calls it.
	InUse bool

	commands []string
}

// NewCommandFile creates an empty command file.
func NewCommandFile(name, folder string) *CommandFile {
	return &CommandFile{Name: name, Folder: folder}
}

// Path is the name used by the function command.
func (f *CommandFile) Path() string {
	if f.Folder == "" {
		return f.Name
	}
	return path.Join(f.Folder, f.Name)
}

// Identity implements File.
func (f *CommandFile) Identity() string {
	return "functions/" + f.Path() + ".mcfunction"
}

// Contents implements File.
func (f *CommandFile) Contents() ([]byte, error) {
	if len(f.commands) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(f.commands, "\n") + "\n"), nil
}

// Add appends commands in order.
func (f *CommandFile) Add(commands ...string) {
	f.commands = append(f.commands, commands...)
}

// AddTop inserts commands before everything added so far.
func (f *CommandFile) AddTop(commands ...string) {
	f.commands = append(append([]string(nil), commands...), f.commands...)
}

// Commands returns a copy of the file's commands.
func (f *CommandFile) Commands() []string {
	return append([]string(nil), f.commands...)
}

// Len returns the number of commands.
func (f *CommandFile) Len() int {
	return len(f.commands)
}

// Reset drops every command.
func (f *CommandFile) Reset() {
	f.commands = nil
}

// CallCommand is the command that runs this file.
func (f *CommandFile) CallCommand() string {
	return "function " + f.Path()
}

// References returns the function paths the file calls.
func (f *CommandFile) References() []string {
	var refs []string
	for _, cmd := range f.commands {
		refs = append(refs, functionRefs(cmd)...)
	}
	return refs
}

// functionRefs finds "function <path>" in a command, including after
// "run" in an execute chain.
func functionRefs(command string) []string {
	fields := strings.Fields(command)
	var refs []string
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "function" && (i == 0 || fields[i-1] == "run") {
			refs = append(refs, fields[i+1])
		}
	}
	return refs
}

// JSONFile is a generated JSON document.
type JSONFile struct {
	Path string
	Doc  jsondoc.Object
}

// Identity implements File.
func (f *JSONFile) Identity() string {
	return f.Path
}

// Contents implements File.
func (f *JSONFile) Contents() ([]byte, error) {
	return f.Doc.Marshal()
}
