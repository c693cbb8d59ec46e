package scoreboard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zurustar/mccompiled/pkg/diag"
	"github.com/zurustar/mccompiled/pkg/typedef"
)

func intType(t *testing.T) typedef.Typedef {
	t.Helper()
	td, ok := typedef.NewRegistry().FromValueType(typedef.Integer)
	if !ok {
		t.Fatal("int type missing")
	}
	return td
}

func TestClarifierGlobalThenLocalConflicts(t *testing.T) {
	r := NewRegistry("")
	v, err := r.New("score", intType(t), 0, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v.Holder() != LocalHolder {
		t.Errorf("default holder = %q, want @s", v.Holder())
	}

	if err := v.Clarifier.SetGlobal("global"); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	if v.Holder() != DefaultGlobalHolder {
		t.Errorf("holder after global = %q", v.Holder())
	}

	err = v.Clarifier.SetLocal("local")
	if !errors.Is(err, diag.ErrAttributeMisuse) {
		t.Fatalf("SetLocal after SetGlobal error = %v, want ErrAttributeMisuse", err)
	}
	if !v.Clarifier.Global() {
		t.Error("rejected SetLocal must not change the clarifier")
	}
}

func TestClarifierRejectsRepeatedMarking(t *testing.T) {
	tests := []struct {
		name   string
		first  func(*Clarifier) error
		second func(*Clarifier) error
	}{
		{"global twice", func(c *Clarifier) error { return c.SetGlobal("global") }, func(c *Clarifier) error { return c.SetGlobal("global") }},
		{"local twice", func(c *Clarifier) error { return c.SetLocal("local") }, func(c *Clarifier) error { return c.SetLocal("local") }},
		{"local then global", func(c *Clarifier) error { return c.SetLocal("local") }, func(c *Clarifier) error { return c.SetGlobal("global") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewRegistry("").New("score", intType(t), 0, false)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.first(&v.Clarifier); err != nil {
				t.Fatalf("first marking: %v", err)
			}
			if err := tt.second(&v.Clarifier); !errors.Is(err, diag.ErrAttributeMisuse) {
				t.Errorf("second marking error = %v, want ErrAttributeMisuse", err)
			}
		})
	}
}

func TestRegistryDefineAndLookup(t *testing.T) {
	r := NewRegistry("server")
	local, _ := r.New("x", intType(t), 0, false)
	global, _ := r.New("x", intType(t), 0, true)
	if err := r.Define(local); err != nil {
		t.Fatal(err)
	}
	if err := r.Define(global); err != nil {
		t.Fatalf("same name with another holder should be allowed: %v", err)
	}
	dup, _ := r.New("x", intType(t), 0, false)
	if err := r.Define(dup); err == nil {
		t.Error("duplicate definition should fail")
	}

	got, ok := r.Lookup("x")
	if !ok || got.Holder() != "server" {
		t.Errorf("Lookup(x) = %v, %v", got, ok)
	}

	want := []string{"scoreboard objectives add x dummy"}
	if diff := cmp.Diff(want, r.Definitions()); diff != "" {
		t.Errorf("Definitions (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsBadNames(t *testing.T) {
	r := NewRegistry("")
	if _, err := r.New("1abc", intType(t), 0, false); err == nil {
		t.Error("expected error for name starting with a digit")
	}
}

func TestConstants(t *testing.T) {
	r := NewRegistry("")
	c := r.Constant(100)
	r.Constant(-3)
	r.Constant(100)
	if c.Holder() != "c100" || c.Objective() != ConstantObjective {
		t.Errorf("constant operand = %s %s", c.Holder(), c.Objective())
	}
	want := []string{
		"scoreboard objectives add _mcc_const dummy",
		"scoreboard players set c100 _mcc_const 100",
		"scoreboard players set n3 _mcc_const -3",
	}
	if diff := cmp.Diff(want, r.Definitions()); diff != "" {
		t.Errorf("Definitions (-want +got):\n%s", diff)
	}
}

func TestTempPoolScopes(t *testing.T) {
	r := NewRegistry("")
	pool := NewTempPool(r)
	base, _ := r.New("x", intType(t), 0, true)

	outer := pool.Request(base)
	if outer.Name != "_mcc_tmp0" || !outer.Temporary || !outer.Clarifier.Global() {
		t.Fatalf("outer temp = %+v", outer)
	}

	release := pool.Push()
	inner1 := pool.Request(base)
	inner2 := pool.Request(base)
	release()
	release() // second call is a no-op

	if inner1.Name == outer.Name || inner2.Name == outer.Name {
		t.Error("inner temps must not collide with live outer temps")
	}
	if pool.InUse() != 1 || pool.Depth() != 0 {
		t.Errorf("after release: inUse=%d depth=%d", pool.InUse(), pool.Depth())
	}

	release = pool.Push()
	again := pool.Request(base)
	release()
	if again.Name != inner1.Name {
		t.Errorf("re-evaluation got %q, want %q", again.Name, inner1.Name)
	}
}

func TestTempPoolNamespaces(t *testing.T) {
	r := NewRegistry("")
	pool := NewTempPool(r)
	boolType, _ := typedef.NewRegistry().FromValueType(typedef.Boolean)
	base, _ := r.New("x", intType(t), 0, true)

	caller := pool.Request(base)
	outcome := pool.RequestOutcome(boolType)

	leave := pool.Enter("add")
	callee := pool.Request(base)
	calleeOutcome := pool.RequestOutcome(boolType)
	if pool.InUse() != 1 {
		t.Errorf("InUse inside add = %d, want 1", pool.InUse())
	}
	leave()
	leave()

	next := pool.Request(base)
	got := []string{caller.Name, outcome.Name, callee.Name, calleeOutcome.Name, next.Name}
	want := []string{"_mcc_tmp0", "_mcc_if0", "_mcc_tmp_add.0", "_mcc_if_add.0", "_mcc_tmp1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if pool.Depth() != 0 {
		t.Errorf("Depth = %d after leaving", pool.Depth())
	}
	if !outcome.Clarifier.Global() || !outcome.Temporary {
		t.Errorf("outcome = %+v, want a global temporary", outcome)
	}
}
