package core

// DefaultTransientLimit bounds the chain of eventless ("always")
// transitions that a single event may trigger at one level.  A
// configuration that exceeds it has a cycle of transient states; see
// TransientLoop.
var DefaultTransientLimit = 100

// Compound is a state with exactly one active child at a time.
//
// A Compound also carries leaf-level behavior of its own (events,
// always, entry/exit): for events its active child doesn't handle, it
// behaves exactly like an Atomic node.
//
// When Done is set and the active child's subtree finishes, the
// compound evaluates its own transitions under DoneEvent and surfaces
// whatever fires as a pending transition for its parent.  Completion
// propagates like a transition, not like a value change.
type Compound struct {
	Atomic

	// States maps child id to child node.  Child ids are unique
	// here by construction.
	States map[string]Node

	// Initial is the id of the default active child.
	Initial string

	Done bool
}

func (n *Compound) InitialValue() Value {
	return map[string]interface{}{n.Initial: n.States[n.Initial].InitialValue()}
}

func (n *Compound) IsDone(v Value) bool {
	id, sub, err := n.split(v)
	if err != nil {
		return false
	}
	return n.States[id].IsDone(sub)
}

// split breaks a compound value into the active child id and that
// child's subvalue.
func (n *Compound) split(v Value) (string, Value, error) {
	m, is := v.(map[string]interface{})
	if !is || len(m) != 1 {
		return "", nil, &BadValue{n.Id, v}
	}
	for id, sub := range m {
		if _, have := n.States[id]; !have {
			return "", nil, &BadValue{n.Id, v}
		}
		return id, sub, nil
	}
	return "", nil, &BadValue{n.Id, v} // unreachable
}

func (n *Compound) Step(ctx Context, v Value, event Event) (*Stride, error) {
	id, sub, err := n.split(v)
	if err != nil {
		return nil, err
	}

	stride, err := n.States[id].Step(ctx, sub, event)
	if err != nil {
		return nil, err
	}

	switch {
	case stride.Pending != nil:
		// The child fired a transition (or forwarded one from
		// below).  This is the level that applies it.
		return n.apply(ctx, event, id, stride.Value, stride.Pending)

	case stride.Changed:
		// The child changed internally without being exited.
		// Action sequencing already happened at the level that
		// owned the transition, so just rewrap.
		return &Stride{
			Value:   map[string]interface{}{id: stride.Value},
			Changed: true,
		}, nil

	default:
		return n.leafStep(ctx, v, event)
	}
}

// apply executes a pending transition at this level: exit the
// previous active child, run the transition's own actions, enter the
// target, then settle any chain of eventless transitions, hop by hop,
// in that same exit/actions/enter order.
func (n *Compound) apply(ctx Context, event Event, prevId string, prevSub Value, t *Transition) (*Stride, error) {
	if t.Target == "" {
		// The transition exists for its guard and actions only
		// and stays in place.  No exit, no entry.
		if err := t.run(ctx, event); err != nil {
			return nil, err
		}
		return &Stride{
			Value:   map[string]interface{}{prevId: prevSub},
			Changed: true,
		}, nil
	}

	prev := n.States[prevId]

	for hop := 0; ; hop++ {
		if DefaultTransientLimit <= hop {
			return nil, &TransientLoop{n.Id, DefaultTransientLimit}
		}

		next, nextSub, err := n.resolve(ctx, t.Target, event)
		if err != nil {
			return nil, err
		}

		stride, more, err := n.hop(ctx, event, prev, prevSub, t, next, nextSub)
		if err != nil {
			return nil, err
		}
		if stride != nil {
			return stride, nil
		}
		prev, prevSub, t = next, nextSub, more
	}
}

// resolve maps a target id to the node to enter and the value to
// enter it with.
//
// A history target stands for this compound's last active
// configuration.  It is resolved against the record as it stands
// before the exit of the current child, so a sibling targeting
// history lands on the state it last left, not on itself.
func (n *Compound) resolve(ctx Context, target string, event Event) (Node, Value, error) {
	next, have := n.States[target]
	if !have {
		return nil, nil, &UnknownTarget{n.Id, target, event.Name}
	}
	if h, is := next.(*History); is {
		return n.restore(ctx, h, event)
	}
	return next, next.InitialValue(), nil
}

// hop runs one exit → transition-actions → enter cycle.  It returns a
// final Stride when the entered state settles, or the fired "always"
// transition when the chain continues.
func (n *Compound) hop(ctx Context, event Event, prev Node, prevSub Value, t *Transition, next Node, nextSub Value) (*Stride, *Transition, error) {
	if err := runActions(prev.exit(), ctx, event); err != nil {
		return nil, nil, err
	}
	n.record(ctx, prev.Name(), prevSub)

	if err := t.run(ctx, event); err != nil {
		return nil, nil, err
	}

	if err := runActions(next.entry(), ctx, event); err != nil {
		return nil, nil, err
	}

	more, err := next.always().consider(ctx, event)
	if err != nil {
		return nil, nil, err
	}
	if more != nil && more.Target == "" {
		// An eventless guard-and-actions transition stays put,
		// so the chain is settled once its actions have run.
		if err := more.run(ctx, event); err != nil {
			return nil, nil, err
		}
		more = nil
	}
	if more != nil {
		return nil, more, nil
	}

	value := map[string]interface{}{next.Name(): nextSub}
	stride := &Stride{Value: value, Changed: true}
	if n.Done && n.IsDone(value) {
		pending, err := completionOf(&n.Atomic, ctx, event)
		if err != nil {
			return nil, nil, err
		}
		stride.Pending = pending
	}
	return stride, nil, nil
}

// record captures the exiting child for every History child this
// compound owns.
func (n *Compound) record(ctx Context, prevId string, prevSub Value) {
	for _, child := range n.States {
		h, is := child.(*History)
		if !is {
			continue
		}
		if h.Deep {
			histories(ctx)[h.Id] = map[string]interface{}{prevId: copyValue(prevSub)}
		} else {
			histories(ctx)[h.Id] = prevId
		}
	}
}

// restore resolves a history target into the concrete child to enter
// and the value to enter it with, falling back to the history node's
// default target on first entry.
func (n *Compound) restore(ctx Context, h *History, event Event) (Node, Value, error) {
	rec, have := histories(ctx)[h.Id]
	if !have {
		child, ok := n.States[h.Default]
		if !ok {
			return nil, nil, &UnknownTarget{n.Id, h.Default, event.Name}
		}
		return child, child.InitialValue(), nil
	}

	switch vv := rec.(type) {
	case string:
		child, ok := n.States[vv]
		if !ok {
			return nil, nil, &BadValue{h.Id, rec}
		}
		return child, child.InitialValue(), nil
	case map[string]interface{}:
		for id, sub := range vv {
			child, ok := n.States[id]
			if !ok {
				return nil, nil, &BadValue{h.Id, rec}
			}
			return child, copyValue(sub), nil
		}
	}
	return nil, nil, &BadValue{h.Id, rec}
}

// completionOf evaluates a node's own transitions under the reserved
// DoneEvent.  A node with no "done" entry completes silently; its
// doneness is still visible via IsDone.
func completionOf(a *Atomic, ctx Context, cause Event) (*Transition, error) {
	ts, have := a.Events[DoneEvent]
	if !have {
		return nil, nil
	}
	return ts.consider(ctx, Event{Name: DoneEvent, Payload: cause.Payload})
}
