package compiler

import (
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zurustar/mccompiled/pkg/executor"
	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/output"
)

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func TestIntegrationCompileDirectory(t *testing.T) {
	results, err := CompileDirectory("testdata/arena", Options{Features: []string{"tests"}})
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}
	byName := make(map[string]CompileResult)
	for _, r := range results {
		for _, e := range r.Errors {
			t.Errorf("%s: %v", r.Name(), e)
		}
		byName[r.Name()] = r
	}
	if len(byName) != 2 {
		t.Fatalf("results = %v", byName)
	}

	game := identities(byName["game"].Files)
	for _, want := range []string{
		"functions/main.mcfunction",
		"functions/round_tick.mcfunction",
		"functions/tick.json",
		"functions/_mcc/tests.mcfunction",
	} {
		if !containsString(game, want) {
			t.Errorf("game output %v is missing %s", game, want)
		}
	}
	for _, id := range game {
		if strings.Contains(id, "unused") {
			t.Errorf("unreachable %s was emitted", id)
		}
	}

	lib := identities(byName["lib/util"].Files)
	if diff := cmp.Diff([]string{"functions/main.mcfunction", "functions/greet.mcfunction"}, lib, sortStrings); diff != "" {
		t.Errorf("lib/util output (-want +got):\n%s", diff)
	}
}

func TestIntegrationBind(t *testing.T) {
	fsys := fstest.MapFS{
		"bp/entities/player.json": {Data: []byte(`{"minecraft:entity": {"description": {"identifier": "minecraft:player"}}}`)},
	}
	opts := Options{EntityFS: fileutil.NewTreeFS(fsys, "bp"), EntityDir: executor.EntityFolder}
	files, errs := Compile("define bind(\"query.is_sneaking\") bool sneaking\nif sneaking {\n\t/say sneaky\n}\n", opts)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ids := identities(files)
	sort.Strings(ids)
	for _, want := range []string{"animation_controllers/mcc_player_sneaking.json", "entities/player.json"} {
		if !containsString(ids, want) {
			t.Errorf("output %v is missing %s", ids, want)
		}
	}
	for _, f := range files {
		if _, ok := f.(*output.JSONFile); !ok {
			continue
		}
		data, err := f.Contents()
		if err != nil || len(data) == 0 {
			t.Errorf("%s rendered %q, %v", f.Identity(), data, err)
		}
	}
}

func TestIntegrationErrorsContinue(t *testing.T) {
	results, err := CompileDirectory("testdata/broken", Options{})
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}
	var failed, passed int
	for _, r := range results {
		if len(r.Errors) > 0 {
			failed++
			continue
		}
		passed++
	}
	if failed != 1 || passed != 1 {
		t.Errorf("failed = %d, passed = %d, want 1 and 1", failed, passed)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
