package core

import (
	"testing"

	. "github.com/Comcast/statecharts/util/testutil"
)

// player builds the usual history fixture: a compound of two modes,
// where "playing" is itself a compound, plus an entry point that jumps
// to the history node.
func player(deep bool) *Compound {
	playing := &Compound{
		Atomic: Atomic{
			Id: "playing",
			Events: map[string]*Transitions{
				"PAUSE": {List: []*Transition{{Target: "paused"}}},
			},
		},
		Initial: "intro",
		States: map[string]Node{
			"intro": &Atomic{
				Id: "intro",
				Events: map[string]*Transitions{
					"NEXT": {List: []*Transition{{Target: "chorus"}}},
				},
			},
			"chorus": &Atomic{Id: "chorus"},
		},
	}

	return &Compound{
		Atomic:  Atomic{Id: "player"},
		Initial: "paused",
		States: map[string]Node{
			"playing": playing,
			"paused": &Atomic{
				Id: "paused",
				Events: map[string]*Transitions{
					"PLAY": {List: []*Transition{{Target: "hist"}}},
				},
			},
			"hist": &History{Id: "hist", Deep: deep, Default: "playing"},
		},
	}
}

func TestHistoryDefault(t *testing.T) {
	n := player(false)

	// Nothing recorded yet, so the history target falls back to
	// its default, entered at that state's own initial value.
	stride, err := n.Step(NewContext(), Dwimjs(`{"paused":"paused"}`), Event{Name: "PLAY"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := JS(stride.Value), `{"playing":{"intro":"intro"}}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
}

func TestHistoryShallow(t *testing.T) {
	n := player(false)
	ctx := NewContext()

	v := Value(Dwimjs(`{"playing":{"chorus":"chorus"}}`))
	stride, err := n.Step(ctx, v, Event{Name: "PAUSE"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := JS(stride.Value), `{"paused":"paused"}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}

	// Shallow history remembers that "playing" was active but not
	// where inside it, so resuming restarts at its initial child.
	stride, err = n.Step(ctx, stride.Value, Event{Name: "PLAY"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := JS(stride.Value), `{"playing":{"intro":"intro"}}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
}

func TestHistoryDeep(t *testing.T) {
	n := player(true)
	ctx := NewContext()

	v := Value(Dwimjs(`{"playing":{"chorus":"chorus"}}`))
	stride, err := n.Step(ctx, v, Event{Name: "PAUSE"})
	if err != nil {
		t.Fatal(err)
	}

	// Deep history restores the whole subtree.
	stride, err = n.Step(ctx, stride.Value, Event{Name: "PLAY"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := JS(stride.Value), `{"playing":{"chorus":"chorus"}}`; got != want {
		t.Fatalf("value %s, want %s", got, want)
	}
}

func TestHistoryNeverActive(t *testing.T) {
	n := player(false)

	// A history node cannot itself hold the active configuration.
	if _, err := n.Step(NewContext(), Dwimjs(`{"hist":null}`), Event{Name: "PLAY"}); err == nil {
		t.Fatal("history became active")
	} else if _, is := err.(*BadValue); !is {
		t.Fatalf("err %#v", err)
	}
}
