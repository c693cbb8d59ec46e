// Package executor runs assembled statements against a compilation context
// and collects the files of the resulting behaviour pack.
//
// A Context is created per root source file. Everything it owns (value and
// function registries, the scheduler, generated files) is discarded with it,
// so compiling several files never leaks state between them.
package executor

import (
	"fmt"
	"log/slog"

	"github.com/zurustar/mccompiled/pkg/attribute"
	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/function"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scheduler"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

const (
	// MainFile is the root function holding initialisation and top-level code.
	MainFile = "main"
	// BranchFolder holds the generated bodies of if, else, as and at blocks.
	BranchFolder = "_mcc/branch"
	// TestsFolder holds the generated test runner.
	TestsFolder = "_mcc"
)

// Options configures a Context.
type Options struct {
	Namespace    string
	GlobalHolder string
	Features     []string
	// EntityFS and EntityDir locate the behaviour-pack entity documents
	// that the bind attribute edits. EntityFS may be nil.
	EntityFS  fileutil.FileSystem
	EntityDir string
	// Entities overrides EntityFS when set.
	Entities attribute.EntitySource
	Logger   *slog.Logger
}

// Context is the compilation context of one root file.
type Context struct {
	namespace string
	log       *slog.Logger

	types     *typedef.Registry
	values    *scoreboard.Registry
	temps     *scoreboard.TempPool
	functions *function.Manager
	sched     *scheduler.Scheduler
	sink      *output.Collection
	features  map[string]bool
	entities  attribute.EntitySource

	main  *output.CommandFile
	tests *output.CommandFile
	init  []string

	files     []*output.CommandFile
	current   *function.RuntimeFunction
	branches  int
	fileNames map[string]int
}

// NewContext creates an empty context with the built-in functions registered.
func NewContext(opts Options) *Context {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "mcc"
	}
	values := scoreboard.NewRegistry(opts.GlobalHolder)
	c := &Context{
		namespace: namespace,
		log:       log,
		types:     typedef.NewRegistry(),
		values:    values,
		temps:     scoreboard.NewTempPool(values),
		functions: function.NewManager(),
		sink:      output.NewCollection(log),
		features:  make(map[string]bool),
		entities:  opts.Entities,
		main:      output.NewCommandFile(MainFile, ""),
		fileNames: map[string]int{MainFile: 1},
	}
	if c.entities == nil && opts.EntityFS != nil {
		c.entities = &dirEntities{fs: opts.EntityFS, dir: opts.EntityDir, sink: c.sink}
	}
	if c.entities == nil {
		c.entities = noEntities{}
	}
	for _, f := range opts.Features {
		c.features[f] = true
	}
	c.sched = scheduler.New(c, log)
	c.sink.AddExtraFile(c.main)
	c.files = []*output.CommandFile{c.main}
	registerBuiltins(c.functions)
	return c
}

// Emit appends commands to the file currently being written.
func (c *Context) Emit(commands ...string) {
	c.files[len(c.files)-1].Add(commands...)
}

func (c *Context) Temps() *scoreboard.TempPool     { return c.temps }
func (c *Context) Constants() typedef.Constants    { return c.values }
func (c *Context) Types() *typedef.Registry        { return c.types }
func (c *Context) Values() *scoreboard.Registry    { return c.values }
func (c *Context) Scheduler() *scheduler.Scheduler { return c.sched }
func (c *Context) Sink() output.Sink               { return c.sink }
func (c *Context) Functions() *function.Manager    { return c.functions }
func (c *Context) Namespace() string               { return c.namespace }
func (c *Context) Entities() attribute.EntitySource {
	return c.entities
}

// FeatureEnabled reports whether "feature name" has been seen.
func (c *Context) FeatureEnabled(name string) bool {
	return c.features[name]
}

// EnableFeature turns a feature on.
func (c *Context) EnableFeature(name string) {
	if !c.features[name] {
		c.log.Debug("feature enabled", "feature", name)
	}
	c.features[name] = true
}

// AddInit queues commands that run once, right after the objectives are
// created.
func (c *Context) AddInit(commands ...string) {
	c.init = append(c.init, commands...)
}

// TestsFile returns the test runner, creating it on first use.
func (c *Context) TestsFile() *output.CommandFile {
	if c.tests == nil {
		c.tests = output.NewCommandFile("tests", TestsFolder)
		c.sink.AddExtraFile(c.tests)
	}
	return c.tests
}

// pushFile redirects Emit into f until the returned function is called.
func (c *Context) pushFile(f *output.CommandFile) (pop func()) {
	c.files = append(c.files, f)
	return func() { c.files = c.files[:len(c.files)-1] }
}

// newBranch creates a generated file for a block body.
func (c *Context) newBranch(kind string) *output.CommandFile {
	c.branches++
	f := output.NewCommandFile(fmt.Sprintf("%s%d", kind, c.branches), BranchFolder)
	c.sink.AddExtraFile(f)
	return f
}

// uniqueFileName returns name, or name_<n> when a function file of that
// name already exists.
func (c *Context) uniqueFileName(name string) string {
	n := c.fileNames[name]
	c.fileNames[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n)
}

// Finish completes the root file and returns the files to write. Only
// functions reachable from main, the tick manifest or an export survive.
func (c *Context) Finish() []output.File {
	c.main.AddTop(append(c.values.Definitions(), c.init...)...)

	roots := []string{c.main.Path()}
	if manifest := c.sched.ManifestFile(); manifest != nil {
		c.sink.AddExtraFile(manifest)
		roots = append(roots, c.sched.Manifest()...)
	}
	files := c.sink.Reachable(roots...)
	c.log.Info("compilation finished",
		"files", len(files),
		"values", len(c.values.All()),
		"tasks", c.sched.TaskCount())
	return files
}

