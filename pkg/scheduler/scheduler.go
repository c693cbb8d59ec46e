// Package scheduler registers recurring and delayed work and builds the tick
// manifest: the list of functions the game runs every tick.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/zurustar/mccompiled/pkg/jsondoc"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

// Folder holds every file the scheduler generates.
const Folder = "_mcc/scheduler"

// ManifestPath is the identity of the tick manifest.
const ManifestPath = "functions/tick.json"

// Context is what tasks need from the compilation during Setup.
type Context interface {
	Types() *typedef.Registry
	Values() *scoreboard.Registry
	Sink() output.Sink
	// AddInit adds commands that run once when the pack is initialised.
	AddInit(commands ...string)
}

// Task is a unit of scheduled work.
type Task interface {
	// Bucket names the shared per-tick function the task's commands go
	// into. Empty means the task is its own manifest entry.
	Bucket() string
	// TickEntry is the function path added to the manifest when Bucket is empty.
	TickEntry() string
	// Setup runs once, before PerTickCommands.
	Setup(s *Scheduler, ctx Context) error
	PerTickCommands() []string
}

// Scheduler owns the scheduled tasks of one compilation.
type Scheduler struct {
	ctx      Context
	log      *slog.Logger
	tasks    []Task
	buckets  map[string]*output.CommandFile
	manifest []string
	inList   map[string]bool
	counters int
}

// New creates a scheduler.
func New(ctx Context, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		ctx:     ctx,
		log:     log,
		buckets: make(map[string]*output.CommandFile),
		inList:  make(map[string]bool),
	}
}

// ScheduleTask registers task and returns its id. Ids count up from 0.
func (s *Scheduler) ScheduleTask(task Task) (int, error) {
	id := len(s.tasks)
	if err := task.Setup(s, s.ctx); err != nil {
		return -1, err
	}
	s.tasks = append(s.tasks, task)

	bucket := task.Bucket()
	if bucket == "" {
		s.addEntry(task.TickEntry())
		s.log.Debug("scheduled task", "id", id, "entry", task.TickEntry())
		return id, nil
	}

	commands := task.PerTickCommands()
	if len(commands) > 0 {
		file, ok := s.buckets[bucket]
		if !ok {
			file = output.NewCommandFile(bucket, Folder)
			s.buckets[bucket] = file
			s.ctx.Sink().AddExtraFile(file)
			s.addEntry(file.Path())
		}
		file.Add(commands...)
	}
	s.log.Debug("scheduled task", "id", id, "bucket", bucket, "commands", len(commands))
	return id, nil
}

func (s *Scheduler) addEntry(entry string) {
	if s.inList[entry] {
		return
	}
	s.inList[entry] = true
	s.manifest = append(s.manifest, entry)
}

// TaskCount returns the number of registered tasks.
func (s *Scheduler) TaskCount() int {
	return len(s.tasks)
}

// Manifest returns the tick entries in registration order.
func (s *Scheduler) Manifest() []string {
	return append([]string(nil), s.manifest...)
}

// Bucket returns the generated function for a bucket, if any task used it.
func (s *Scheduler) Bucket(name string) (*output.CommandFile, bool) {
	f, ok := s.buckets[name]
	return f, ok
}

// ManifestFile renders tick.json. It returns nil when nothing is scheduled.
func (s *Scheduler) ManifestFile() *output.JSONFile {
	if len(s.manifest) == 0 {
		return nil
	}
	values := make([]any, len(s.manifest))
	for i, entry := range s.manifest {
		values[i] = entry
	}
	return &output.JSONFile{Path: ManifestPath, Doc: jsondoc.Object{"values": values}}
}

// NewCounter declares a fresh integer counter for a task.
func (s *Scheduler) NewCounter(global bool) (*scoreboard.Value, error) {
	integer, ok := s.ctx.Types().FromValueType(typedef.Integer)
	if !ok {
		return nil, fmt.Errorf("integer type is not registered")
	}
	name := fmt.Sprintf("_mcc_sched%d", s.counters)
	s.counters++
	v, err := s.ctx.Values().New(name, integer, 0, global)
	if err != nil {
		return nil, err
	}
	if err := s.ctx.Values().Define(v); err != nil {
		return nil, err
	}
	return v, nil
}
