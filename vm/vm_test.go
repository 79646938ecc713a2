package vm

import (
	"mooworld/builtins"
	"mooworld/db"
	"mooworld/task"
	"mooworld/types"
	"testing"
	"time"
)

func newTickTestObject() (*db.Store, *db.Object) {
	store := db.NewStore()
	obj := &db.Object{
		ID:         1,
		Parents:    []types.ObjID{},
		Properties: map[string]*db.Property{},
		Verbs:      map[string]*db.Verb{},
		VerbList:   []*db.Verb{},
	}
	store.Add(obj)
	return store, obj
}

func compileAndRun(t *testing.T, code []string, configure func(*VM)) types.Result {
	t.Helper()
	store, obj := newTickTestObject()
	reg := builtins.NewRegistry()

	v := &db.Verb{
		Name:  "looper",
		Names: []string{"looper"},
		Owner: 1,
		Perms: db.VerbExecute | db.VerbRead,
		ArgSpec: db.VerbArgs{
			This: "any",
			Prep: "any",
			That: "any",
		},
		Code: code,
	}
	prog, errs := db.CompileVerb(code)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	v.Program = prog
	obj.Verbs["looper"] = v
	obj.VerbList = append(obj.VerbList, v)

	topProg, err := CompileVerbBytecode(v, reg)
	if err != nil {
		t.Fatalf("bytecode compile failed: %v", err)
	}

	testTask := task.NewTask(1, 1, 100000, 5.0)
	ctx := types.NewTaskContext()
	ctx.Player = 1
	ctx.Programmer = 1
	ctx.ThisObj = 1
	ctx.Task = testTask

	machine := NewVM(store, reg)
	machine.Context = ctx
	if configure != nil {
		configure(machine)
	}
	return machine.RunWithVerbContext(topProg, 1, 1, 1, "looper", 1, nil)
}

// TestTickExhaustionRaisesQuota verifies that running out of ticks inside the
// dispatch loop raises E_QUOTA, not E_MAXREC -- tick exhaustion is a
// scheduling-budget failure, distinct from the verb-call recursion limit.
func TestTickExhaustionRaisesQuota(t *testing.T) {
	code := []string{
		"x = 0;",
		"while (1)",
		"  x = x + 1;",
		"endwhile",
	}
	result := compileAndRun(t, code, func(m *VM) {
		m.TickLimit = 50
	})

	if result.Flow != types.FlowException {
		t.Fatalf("expected FlowException, got %v", result.Flow)
	}
	if result.Error != types.E_QUOTA {
		t.Errorf("expected E_QUOTA for tick exhaustion, got %v", result.Error)
	}
}

// TestWallClockDeadlineRaisesQuota verifies that a task still running after
// its wall-clock deadline is cut off with E_QUOTA even though it has ticks
// remaining -- the tick budget and the wall-clock budget are independent
// limits, and either can end the task first.
func TestWallClockDeadlineRaisesQuota(t *testing.T) {
	code := []string{
		"x = 0;",
		"while (1)",
		"  x = x + 1;",
		"endwhile",
	}
	result := compileAndRun(t, code, func(m *VM) {
		m.TickLimit = 1 << 30 // effectively unlimited ticks
		m.Deadline = time.Now().Add(-time.Second) // already expired
	})

	if result.Flow != types.FlowException {
		t.Fatalf("expected FlowException, got %v", result.Flow)
	}
	if result.Error != types.E_QUOTA {
		t.Errorf("expected E_QUOTA for wall-clock exhaustion, got %v", result.Error)
	}
}

// TestUnboundedDeadlineDoesNotTriggerQuota verifies that a zero Deadline
// (the default from NewVM) never short-circuits the loop on its own --
// only an explicitly set deadline should be checked.
func TestUnboundedDeadlineDoesNotTriggerQuota(t *testing.T) {
	code := []string{
		"return 42;",
	}
	result := compileAndRun(t, code, nil)

	if result.Flow != types.FlowReturn {
		t.Fatalf("expected FlowReturn, got %v (error %v)", result.Flow, result.Error)
	}
	i, ok := result.Val.(types.IntValue)
	if !ok || i.Val != 42 {
		t.Errorf("expected return value 42, got %v", result.Val)
	}
}
