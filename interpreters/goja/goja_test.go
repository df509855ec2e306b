package goja

import (
	"context"
	"testing"

	"github.com/Comcast/statecharts/core"
	. "github.com/Comcast/statecharts/util/testutil"
)

func TestGuard(t *testing.T) {
	i := NewInterpreter()
	i.Testing = true

	guard, err := i.CompileGuard(context.Background(), `
_.log(_.ctx);
return _.ctx.count < 3;
`)
	if err != nil {
		t.Fatal(err)
	}

	ctx := core.Context{"count": 2}
	ok, err := guard(ctx, core.Event{Name: "tick"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("guard said no")
	}

	ctx["count"] = 5
	ok, err = guard(ctx, core.Event{Name: "tick"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("guard said yes")
	}
}

func TestGuardTruthiness(t *testing.T) {
	i := NewInterpreter()

	for src, want := range map[string]bool{
		`return true;`:      true,
		`return 1;`:         true,
		`return "no";`:      true,
		`return 0;`:         false,
		`return null;`:      false,
		`return undefined;`: false,
		`var x = 1;`:        false,
	} {
		guard, err := i.CompileGuard(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		got, err := guard(core.NewContext(), core.Event{Name: "e"})
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s: %v, want %v", src, got, want)
		}
	}
}

func TestAction(t *testing.T) {
	i := NewInterpreter()

	action, err := i.CompileAction(context.Background(), `
_.ctx.retries = (_.ctx.retries || 0) + 1;
_.ctx.last = _.event.name;
`)
	if err != nil {
		t.Fatal(err)
	}

	ctx := core.NewContext()
	if err := action(ctx, core.Event{Name: "RETRY"}); err != nil {
		t.Fatal(err)
	}
	if err := action(ctx, core.Event{Name: "RETRY"}); err != nil {
		t.Fatal(err)
	}

	if got, want := JS(ctx["retries"]), `2`; got != want {
		t.Fatalf("retries %s, want %s", got, want)
	}
	if ctx["last"] != "RETRY" {
		t.Fatalf("last %v", ctx["last"])
	}
}

func TestEventPayload(t *testing.T) {
	i := NewInterpreter()

	action, err := i.CompileAction(context.Background(), `
_.ctx.got = _.event.amount;
`)
	if err != nil {
		t.Fatal(err)
	}

	ctx := core.NewContext()
	event := core.Event{
		Name:    "deposit",
		Payload: map[string]interface{}{"amount": float64(42)},
	}
	if err := action(ctx, event); err != nil {
		t.Fatal(err)
	}
	if got, want := JS(ctx["got"]), `42`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCompileError(t *testing.T) {
	i := NewInterpreter()

	if _, err := i.CompileGuard(context.Background(), `return ===;`); err == nil {
		t.Fatal("nonsense compiled")
	}
	if _, err := i.CompileAction(context.Background(), `}{`); err == nil {
		t.Fatal("nonsense compiled")
	}
}

func TestRuntimeError(t *testing.T) {
	i := NewInterpreter()

	guard, err := i.CompileGuard(context.Background(), `return _.ctx.missing.deeply;`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := guard(core.NewContext(), core.Event{Name: "e"}); err == nil {
		t.Fatal("no error from a bad dereference")
	}
}

func TestMachineWithSources(t *testing.T) {
	m, err := core.NewMachine(context.Background(), map[string]interface{}{
		"id":      "fetch",
		"initial": "idle",
		"context": map[string]interface{}{
			"retries": float64(0),
		},
		"states": map[string]interface{}{
			"idle": map[string]interface{}{
				"events": map[string]interface{}{
					"FETCH": "loading",
				},
			},
			"loading": map[string]interface{}{
				"events": map[string]interface{}{
					"RESOLVE": "success",
					"REJECT":  "failure",
				},
			},
			"success": map[string]interface{}{},
			"failure": map[string]interface{}{
				"events": map[string]interface{}{
					"RETRY": []interface{}{
						map[string]interface{}{
							"target":  "loading",
							"guard":   `return _.ctx.retries < 2;`,
							"actions": `_.ctx.retries++;`,
						},
						map[string]interface{}{
							"target": "dead",
						},
					},
				},
			},
			"dead": map[string]interface{}{},
		},
	}, map[string]core.Interpreter{"goja": NewInterpreter()})
	if err != nil {
		t.Fatal(err)
	}

	st := m.InitialState()
	for _, step := range []struct {
		event string
		value string
	}{
		{"FETCH", `{"loading":"loading"}`},
		{"REJECT", `{"failure":"failure"}`},
		{"RETRY", `{"loading":"loading"}`},
		{"REJECT", `{"failure":"failure"}`},
		{"RETRY", `{"loading":"loading"}`},
		{"REJECT", `{"failure":"failure"}`},
		{"RETRY", `{"dead":"dead"}`}, // retry budget spent
	} {
		if st, err = m.Transition(st, step.event); err != nil {
			t.Fatal(err)
		}
		if got := JS(st.Value); got != step.value {
			t.Fatalf("%s: value %s, want %s", step.event, got, step.value)
		}
	}
	if got, want := JS(st.Context["retries"]), `2`; got != want {
		t.Fatalf("retries %s, want %s", got, want)
	}
}
