package jsondoc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const entity = `{
  "format_version": "1.16.0",
  "minecraft:entity": {
    "description": {
      "identifier": "minecraft:player",
      "animations": {"look_at_target": "animation.common.look_at_target"},
      "scripts": {"animate": ["look_at_target"]}
    }
  }
}`

func TestMergeIntoExistingDocument(t *testing.T) {
	doc, err := Parse([]byte(entity))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	anims, err := doc.Object("minecraft:entity", "description", "animations")
	if err != nil {
		t.Fatal(err)
	}
	anims["mcc_sneak"] = "controller.animation.mcc.sneak"

	added, err := doc.AppendIfAbsent("mcc_sneak", "minecraft:entity", "description", "scripts", "animate")
	if err != nil || !added {
		t.Fatalf("AppendIfAbsent = %v, %v", added, err)
	}
	added, _ = doc.AppendIfAbsent("mcc_sneak", "minecraft:entity", "description", "scripts", "animate")
	if added {
		t.Error("second append should be a no-op")
	}

	got, _ := doc.Get("minecraft:entity", "description", "scripts", "animate")
	want := []any{"look_at_target", "mcc_sneak"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("animate (-want +got):\n%s", diff)
	}
	if v, _ := doc.Get("minecraft:entity", "description", "animations", "look_at_target"); v != "animation.common.look_at_target" {
		t.Errorf("existing animation lost: %v", v)
	}
}

func TestObjectCreatesMissingPath(t *testing.T) {
	doc := Object{}
	obj, err := doc.Object("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	obj["c"] = true
	if v, ok := doc.Get("a", "b", "c"); !ok || v != true {
		t.Errorf("Get(a,b,c) = %v, %v", v, ok)
	}
}

func TestObjectRejectsNonObjects(t *testing.T) {
	doc := Object{"a": "text"}
	if _, err := doc.Object("a", "b"); err == nil {
		t.Error("expected error when walking through a string")
	}
	if _, err := doc.AppendIfAbsent("x", "a"); err == nil {
		t.Error("expected error appending to a string")
	}
}

func TestAppendIfAbsentComparesObjects(t *testing.T) {
	doc := Object{}
	entry := map[string]any{"sneak": "query.is_sneaking"}
	doc.AppendIfAbsent(entry, "animate")
	added, _ := doc.AppendIfAbsent(Object{"sneak": "query.is_sneaking"}, "animate")
	if added {
		t.Error("structurally equal object appended twice")
	}
}

func TestMarshalIsIndented(t *testing.T) {
	out, err := Object{"a": Object{"b": 1}}.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": {\n    \"b\": 1\n  }\n}\n"
	if string(out) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", out, want)
	}
	if _, err := Parse([]byte("[1]")); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Parse of array error = %v", err)
	}
}
