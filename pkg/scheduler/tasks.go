package scheduler

import (
	"fmt"

	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/scoreboard"
)

// SharedBucket is the per-tick function shared by counter-gated tasks.
const SharedBucket = "tick"

// RepeatEveryTick runs a function every tick straight from the manifest.
type RepeatEveryTick struct {
	Function *output.CommandFile
}

func (t *RepeatEveryTick) Bucket() string                  { return "" }
func (t *RepeatEveryTick) TickEntry() string               { return t.Function.Path() }
func (t *RepeatEveryTick) Setup(*Scheduler, Context) error { return nil }
func (t *RepeatEveryTick) PerTickCommands() []string       { return nil }

// RepeatInterval runs a function once every Interval ticks using a global
// countdown that starts at Interval.
type RepeatInterval struct {
	Function *output.CommandFile
	Interval int

	counter *scoreboard.Value
}

func (t *RepeatInterval) Bucket() string    { return SharedBucket }
func (t *RepeatInterval) TickEntry() string { return "" }

func (t *RepeatInterval) Setup(s *Scheduler, ctx Context) error {
	if t.Interval < 1 {
		return fmt.Errorf("interval must be positive, got %d", t.Interval)
	}
	counter, err := s.NewCounter(true)
	if err != nil {
		return err
	}
	t.counter = counter
	ctx.AddInit(setScore(counter, t.Interval))
	return nil
}

func (t *RepeatInterval) PerTickCommands() []string {
	h, o := t.counter.Holder(), t.counter.Objective()
	return []string{
		fmt.Sprintf("scoreboard players remove %s %s 1", h, o),
		fmt.Sprintf("execute if score %s %s matches ..0 run %s", h, o, t.Function.CallCommand()),
		fmt.Sprintf("execute if score %s %s matches ..0 run %s", h, o, setScore(t.counter, t.Interval)),
	}
}

// Counter returns the countdown value, available after Setup.
func (t *RepeatInterval) Counter() *scoreboard.Value {
	return t.counter
}

// OneShot runs a function once, Delay ticks after its invoke stub was
// called. The global variant parks its counter at -1 after firing. The
// per-entity variant has no reset; it fires at 0 and the same tick's
// decrement leaves the counter below the range that is counted down.
type OneShot struct {
	Function *output.CommandFile
	Delay    int
	Global   bool

	counter *scoreboard.Value
	stub    *output.CommandFile
}

// Disabled is the counter value of an idle global one-shot task.
const Disabled = -1

func (t *OneShot) Bucket() string    { return SharedBucket }
func (t *OneShot) TickEntry() string { return "" }

func (t *OneShot) Setup(s *Scheduler, ctx Context) error {
	if t.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %d", t.Delay)
	}
	counter, err := s.NewCounter(t.Global)
	if err != nil {
		return err
	}
	t.counter = counter
	if t.Global {
		ctx.AddInit(setScore(counter, Disabled))
	}

	t.stub = output.NewCommandFile("invoke_"+t.Function.Name, Folder)
	t.stub.Add(setScore(counter, t.Delay))
	ctx.Sink().AddExtraFile(t.stub)
	return nil
}

func (t *OneShot) PerTickCommands() []string {
	o := t.counter.Objective()
	if t.Global {
		h := t.counter.Holder()
		return []string{
			fmt.Sprintf("execute if score %s %s matches 1.. run scoreboard players remove %s %s 1", h, o, h, o),
			fmt.Sprintf("execute if score %s %s matches 0 run %s", h, o, t.Function.CallCommand()),
			fmt.Sprintf("execute if score %s %s matches 0 run %s", h, o, setScore(t.counter, Disabled)),
		}
	}
	return []string{
		fmt.Sprintf("execute as @e[scores={%s=0}] at @s run %s", o, t.Function.CallCommand()),
		fmt.Sprintf("execute as @e[scores={%s=0..}] run scoreboard players remove @s %s 1", o, o),
	}
}

// Stub returns the file callers run to start the countdown.
func (t *OneShot) Stub() *output.CommandFile {
	return t.stub
}

// Counter returns the countdown value, available after Setup.
func (t *OneShot) Counter() *scoreboard.Value {
	return t.counter
}

func setScore(v *scoreboard.Value, n int) string {
	return fmt.Sprintf("scoreboard players set %s %s %d", v.Holder(), v.Objective(), n)
}
