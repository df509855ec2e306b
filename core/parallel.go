package core

import "sort"

// Parallel is a state whose children are all simultaneously active,
// independent regions.  There is no designated initial child: every
// region is always active.
//
// The name denotes state topology, not execution concurrency.  All
// regions are stepped on the calling goroutine during the same call,
// and a region must not observe another region's result within a
// single event.
type Parallel struct {
	Atomic

	States map[string]Node

	Done bool
}

func (n *Parallel) InitialValue() Value {
	acc := make(map[string]interface{}, len(n.States))
	for id, child := range n.States {
		acc[id] = child.InitialValue()
	}
	return acc
}

func (n *Parallel) IsDone(v Value) bool {
	m, is := v.(map[string]interface{})
	if !is {
		return false
	}
	for id, child := range n.States {
		if !child.IsDone(m[id]) {
			return false
		}
	}
	return true
}

func (n *Parallel) Step(ctx Context, v Value, event Event) (*Stride, error) {
	m, is := v.(map[string]interface{})
	if !is || len(m) != len(n.States) {
		return nil, &BadValue{n.Id, v}
	}

	var (
		acc     = make(map[string]interface{}, len(n.States))
		changed = false
	)
	for _, id := range n.regions() {
		sub, have := m[id]
		if !have {
			return nil, &BadValue{n.Id, v}
		}
		stride, err := n.States[id].Step(ctx, sub, event)
		if err != nil {
			return nil, err
		}
		// A transition pending at region level has no sibling
		// set to resolve against: regions don't transition to
		// each other.  Only value changes count here.
		acc[id] = stride.Value
		changed = changed || stride.Changed
	}

	if !changed {
		return n.leafStep(ctx, v, event)
	}

	stride := &Stride{Value: acc, Changed: true}
	if n.Done && n.IsDone(acc) {
		pending, err := completionOf(&n.Atomic, ctx, event)
		if err != nil {
			return nil, err
		}
		stride.Pending = pending
	}
	return stride, nil
}

// regions returns the child ids in a stable order.  Regions are
// independent, so any order is legal; a fixed one keeps action
// side effects reproducible run to run.
func (n *Parallel) regions() []string {
	ids := make([]string, 0, len(n.States))
	for id := range n.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
