package core

// HistoryKey is the reserved Context key under which history records
// live: a map from history-node id to the recorded configuration of
// that node's parent.  The context travels (copied) through every
// Transition, so records survive across calls without giving the
// Machine itself any mutable state.
var HistoryKey = "$history"

// History is a pseudo-state: chosen as a transition target, it
// resolves to the most recently active configuration of its parent
// before any entry logic runs, so it never appears in a state value.
// On first entry, with nothing recorded yet, it falls back to
// Default.
//
// Shallow history restores only the prior active child id (the child
// restarts at its own initial value); deep history restores the full
// prior subtree value.
type History struct {
	Id      string
	Deep    bool
	Default string
}

func (n *History) Name() string        { return n.Id }
func (n *History) InitialValue() Value { return nil }
func (n *History) IsDone(v Value) bool { return false }

// Step fails by construction: ancestors resolve a history node away
// during entry, so no value can legitimately reach one.
func (n *History) Step(ctx Context, v Value, event Event) (*Stride, error) {
	return nil, &BadValue{n.Id, v}
}

func (n *History) entry() []Action      { return nil }
func (n *History) exit() []Action       { return nil }
func (n *History) always() *Transitions { return nil }

// histories returns the context's history record table, creating it
// if needed.
func histories(ctx Context) map[string]interface{} {
	if m, is := ctx[HistoryKey].(map[string]interface{}); is {
		return m
	}
	m := make(map[string]interface{})
	ctx[HistoryKey] = m
	return m
}
