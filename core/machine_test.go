package core

import (
	"context"
	"testing"

	. "github.com/Comcast/statecharts/util/testutil"
)

// fetcher builds the usual request-lifecycle machine: idle, loading,
// success, failure, with a retry counter in the context.
func fetcher(t *testing.T) *Machine {
	t.Helper()

	retry := func(ctx Context, event Event) error {
		n, _ := ctx["retries"].(float64)
		ctx["retries"] = n + 1
		return nil
	}

	m, err := NewMachine(context.Background(), map[string]interface{}{
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
					"RETRY": map[string]interface{}{
						"target":  "loading",
						"actions": retry,
					},
				},
			},
		},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMachineFetch(t *testing.T) {
	m := fetcher(t)

	st := m.InitialState()
	if got, want := JS(st.Value), `{"idle":"idle"}`; got != want {
		t.Fatalf("initial %s, want %s", got, want)
	}
	if st.Changed {
		t.Fatal("initial state changed")
	}

	for _, step := range []struct {
		event string
		value string
	}{
		{"FETCH", `{"loading":"loading"}`},
		{"REJECT", `{"failure":"failure"}`},
		{"RETRY", `{"loading":"loading"}`},
		{"RESOLVE", `{"success":"success"}`},
	} {
		next, err := m.Transition(st, step.event)
		if err != nil {
			t.Fatal(err)
		}
		if got := JS(next.Value); got != step.value {
			t.Fatalf("%s: value %s, want %s", step.event, got, step.value)
		}
		if !next.Changed {
			t.Fatalf("%s: not changed", step.event)
		}
		st = next
	}

	if n, _ := st.Context["retries"].(float64); n != 1 {
		t.Fatalf("retries %v", st.Context["retries"])
	}
	if !m.IsDone(st.Value) {
		t.Fatal("not done in success")
	}
}

func TestMachineNoop(t *testing.T) {
	m := fetcher(t)
	st := m.InitialState()

	// RESOLVE means nothing in idle.
	next, err := m.Transition(st, "RESOLVE")
	if err != nil {
		t.Fatal(err)
	}
	if next.Changed {
		t.Fatal("a no-op event reported a change")
	}
	if got, want := JS(next.Value), JS(st.Value); got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
}

func TestMachinePurity(t *testing.T) {
	m := fetcher(t)

	st := m.InitialState()
	st, err := m.Transition(st, "FETCH")
	if err != nil {
		t.Fatal(err)
	}
	st, err = m.Transition(st, "REJECT")
	if err != nil {
		t.Fatal(err)
	}

	// Two transitions from the same state must not see each other.
	a, err := m.Transition(st, "RETRY")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Transition(st, "RETRY")
	if err != nil {
		t.Fatal(err)
	}

	if n, _ := st.Context["retries"].(float64); n != 0 {
		t.Fatalf("input state mutated: retries %v", st.Context["retries"])
	}
	for _, next := range []*State{a, b} {
		if n, _ := next.Context["retries"].(float64); n != 1 {
			t.Fatalf("retries %v", next.Context["retries"])
		}
	}
}

func TestMachineActionError(t *testing.T) {
	boom := func(ctx Context, event Event) error {
		ctx["touched"] = true
		return &BadEvent{"boom"}
	}

	m, err := NewMachine(context.Background(), map[string]interface{}{
		"id":      "err",
		"initial": "a",
		"states": map[string]interface{}{
			"a": map[string]interface{}{
				"events": map[string]interface{}{
					"GO": map[string]interface{}{
						"target":  "b",
						"actions": boom,
					},
				},
			},
			"b": map[string]interface{}{},
		},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	st := m.InitialState()
	if _, err := m.Transition(st, "GO"); err == nil {
		t.Fatal("the action error vanished")
	}
	// The caller's state stands; the mutated clone was discarded.
	if _, have := st.Context["touched"]; have {
		t.Fatal("input context mutated")
	}
}

func TestMachineWalk(t *testing.T) {
	m := fetcher(t)

	states, err := m.Walk(m.InitialState(), []interface{}{
		"FETCH",
		Event{Name: "REJECT"},
		map[string]interface{}{"name": "RETRY"},
		"RESOLVE",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 4 {
		t.Fatalf("%d states", len(states))
	}
	if got, want := JS(states[3].Value), `{"success":"success"}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
}

func TestStateCopy(t *testing.T) {
	st := &State{
		Value:   Dwimjs(`{"a":{"b":"b"}}`),
		Context: Context{"xs": []interface{}{float64(1)}},
		Changed: true,
	}

	st2 := st.Copy()
	st2.Value.(map[string]interface{})["a"] = "mutated"
	st2.Context["xs"].([]interface{})[0] = float64(99)

	if got, want := JS(st.Value), `{"a":{"b":"b"}}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
	if got, want := JS(st.Context["xs"]), `[1]`; got != want {
		t.Fatalf("context %s, want %s", got, want)
	}
}
