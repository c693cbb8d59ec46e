package molang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zurustar/mccompiled/pkg/jsondoc"
)

func TestLookup(t *testing.T) {
	b, ok := Lookup("Query.Is_Sneaking")
	if !ok || b.Kind != Bool {
		t.Fatalf("Lookup = %+v, %v", b, ok)
	}
	if diff := cmp.Diff([]string{"player"}, b.Targets); diff != "" {
		t.Errorf("implied targets (-want +got):\n%s", diff)
	}
	if _, ok := Lookup("query.nope"); ok {
		t.Error("unknown query found")
	}
}

func TestStates(t *testing.T) {
	b, _ := Lookup("query.time_of_day")
	states, err := b.States(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 11 || states[0] != 0 || states[10] != 10 {
		t.Errorf("States(1) = %v", states)
	}
	if _, err := b.States(3); err == nil {
		t.Error("expected too many states at precision 3")
	}
}

func TestBoolController(t *testing.T) {
	b, _ := Lookup("query.is_sneaking")
	c, err := NewController("demo", "player", "sneaking", b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "controller.animation.demo.player.sneaking" || c.ShortName != "mcc_sneaking" {
		t.Errorf("controller names = %q %q", c.ID, c.ShortName)
	}
	entry, ok := c.Doc.Get("animation_controllers", c.ID, "states", "on", "on_entry")
	if !ok {
		t.Fatal("on state missing")
	}
	if diff := cmp.Diff([]any{"/scoreboard players set @s sneaking 1"}, entry); diff != "" {
		t.Errorf("on_entry (-want +got):\n%s", diff)
	}
}

func TestIntControllerEnumeratesRange(t *testing.T) {
	b, _ := Lookup("query.moon_phase")
	c, err := NewController("demo", "player", "moon", b, 0)
	if err != nil {
		t.Fatal(err)
	}
	states, _ := c.Doc.Get("animation_controllers", c.ID, "states")
	if got := len(states.(jsondoc.Object)); got != 9 {
		t.Errorf("state count = %d, want 8 values plus default", got)
	}
}

func TestWireMergesWithExistingDeclarations(t *testing.T) {
	entity := jsondoc.Object{
		"minecraft:entity": map[string]any{
			"description": map[string]any{
				"identifier": "minecraft:player",
				"animations": map[string]any{"existing": "animation.x"},
				"scripts":    map[string]any{"animate": []any{"existing"}},
			},
		},
	}
	b, _ := Lookup("query.is_sneaking")
	c, _ := NewController("demo", "player", "sneaking", b, 0)
	for i := 0; i < 2; i++ {
		if err := c.Wire(entity); err != nil {
			t.Fatal(err)
		}
	}

	animate, _ := entity.Get("minecraft:entity", "description", "scripts", "animate")
	if diff := cmp.Diff([]any{"existing", "mcc_sneaking"}, animate); diff != "" {
		t.Errorf("animate (-want +got):\n%s", diff)
	}
	if v, _ := entity.Get("minecraft:entity", "description", "animations", "existing"); v != "animation.x" {
		t.Errorf("existing animation = %v", v)
	}
	if v, _ := entity.Get("minecraft:entity", "description", "animations", "mcc_sneaking"); v != c.ID {
		t.Errorf("new animation = %v", v)
	}
}
