package core

import "encoding/json"

// State pairs an active-configuration value with its context.
type State struct {
	Value   Value   `json:"value"`
	Context Context `json:"context,omitempty"`

	// Changed reports whether the Transition that produced this
	// State applied any transition.  A machine's initial State
	// has Changed false.
	Changed bool `json:"changed,omitempty"`
}

func (s *State) String() string {
	if s == nil {
		return "nil"
	}
	bs, err := json.Marshal(s)
	if err != nil {
		return "{*}"
	}
	return string(bs)
}

// Copy makes a deep copy of the State.
func (s *State) Copy() *State {
	return &State{
		Value:   copyValue(s.Value),
		Context: s.Context.Copy(),
		Changed: s.Changed,
	}
}

// Machine is the immutable pairing of a built node tree with its
// initial context.
//
// A Machine holds no interpretation state: everything mutable lives
// in the States its Transition method consumes and produces, so one
// Machine can back any number of concurrent interpretations as long
// as each supplies its own State.
type Machine struct {
	Root           Node
	InitialContext Context
}

// InitialState computes the machine's fresh starting State.  Each
// call seeds a new copy of the declared initial context.
func (m *Machine) InitialState() *State {
	return &State{
		Value:   m.Root.InitialValue(),
		Context: m.InitialContext.Copy(),
	}
}

// IsDone reports whether the given value is a finished configuration
// of the whole machine.
func (m *Machine) IsDone(v Value) bool {
	return m.Root.IsDone(v)
}

// Transition computes the machine's next State for one event.
//
// The given State is never mutated: its context is deep-copied before
// any guard or action sees it, so the returned State exclusively owns
// its context.  Given deterministic actions, two calls with the same
// State and event produce structurally identical results.
//
// event may be an Event, an event name, or a map with a "name"
// property plus payload properties.
//
// If a guard or action fails, the error is returned as-is and the
// caller's State still stands; the partially mutated copy is simply
// discarded.
func (m *Machine) Transition(st *State, event interface{}) (*State, error) {
	ev, err := AsEvent(event)
	if err != nil {
		return nil, err
	}

	ctx := st.Context.Copy()

	stride, err := m.Root.Step(ctx, st.Value, ev)
	if err != nil {
		return nil, err
	}

	// A transition pending at the root has no parent to apply it,
	// and no sibling set to resolve its target against.  It is
	// dropped.
	return &State{
		Value:   stride.Value,
		Context: ctx,
		Changed: stride.Changed,
	}, nil
}

// Walk applies a sequence of events, collecting each resulting State.
//
// On error, the States for the events already consumed are returned
// along with the error.
func (m *Machine) Walk(st *State, events []interface{}) ([]*State, error) {
	acc := make([]*State, 0, len(events))
	for _, event := range events {
		next, err := m.Transition(st, event)
		if err != nil {
			return acc, err
		}
		acc = append(acc, next)
		st = next
	}
	return acc, nil
}
