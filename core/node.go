package core

const (
	// Wildcard is the event-map key that catches events with no
	// entry of their own.
	Wildcard = "*"

	// DoneEvent is the reserved event name a Compound or Parallel
	// node evaluates against its own transitions when it
	// completes.  See Compound.
	DoneEvent = "done"
)

// Node is the shared contract for the five configuration node kinds.
//
// A Node tree is built once (see NewMachine) and is read-only
// thereafter; all interpretation state lives in the Value/Context
// pair that Step consumes and produces.  A single tree can therefore
// back any number of concurrent interpretations.
type Node interface {
	// Name returns the node's id, unique among its siblings.
	Name() string

	// InitialValue computes the value produced by entering this
	// node fresh.
	InitialValue() Value

	// IsDone reports whether the given value is a finished
	// configuration of this node.
	IsDone(v Value) bool

	// Step attempts to move from the given value on the given
	// event.  Actions may mutate ctx.
	Step(ctx Context, v Value, event Event) (*Stride, error)

	entry() []Action
	exit() []Action
	always() *Transitions
}

// Stride is the protocol between dispatch levels: the (possibly
// unchanged) value at this level, whether a change was already
// applied lower in the tree, and a transition decision that the
// parent must still apply.
type Stride struct {
	Value   Value
	Changed bool

	// Pending propagates upward through unchanged levels until
	// some ancestor resolves its target among that ancestor's
	// children.
	Pending *Transition
}

// Atomic is a leaf state: no children, no internal value.
type Atomic struct {
	Id string

	// Events maps event names (or the Wildcard) to candidate
	// transitions.
	Events map[string]*Transitions

	// Always is an eventless transition set, re-evaluated after
	// every entry into the node.
	Always *Transitions

	// Entry and Exit run when an ancestor's transition enters or
	// exits this node.
	Entry []Action
	Exit  []Action
}

func (n *Atomic) Name() string         { return n.Id }
func (n *Atomic) InitialValue() Value  { return n.Id }
func (n *Atomic) IsDone(v Value) bool  { return false }
func (n *Atomic) entry() []Action      { return n.Entry }
func (n *Atomic) exit() []Action       { return n.Exit }
func (n *Atomic) always() *Transitions { return n.Always }

func (n *Atomic) Step(ctx Context, v Value, event Event) (*Stride, error) {
	if err := n.checkValue(v); err != nil {
		return nil, err
	}
	return n.leafStep(ctx, v, event)
}

// checkValue asserts the leaf precondition: the presented value is
// the node's own id, or absent.
func (n *Atomic) checkValue(v Value) error {
	if v == nil {
		return nil
	}
	if s, is := v.(string); is && s == n.Id {
		return nil
	}
	return &BadValue{n.Id, v}
}

// leafStep is the base case of the dispatch recursion: look up an
// event-triggered transition, falling back to the Wildcard entry when
// the event has none, then to the eventless "always" transition when
// nothing event-triggered fired.  A leaf has no internal state, so
// Changed is always false; whatever fired is Pending for the parent.
//
// Compound and Parallel call this same routine when neither a child
// transition nor an internal child change occurred, so viewed
// externally they behave exactly like leaves for events they don't
// delegate downward.
func (n *Atomic) leafStep(ctx Context, v Value, event Event) (*Stride, error) {
	ts, have := n.Events[event.Name]
	if !have {
		ts = n.Events[Wildcard]
	}
	t, err := ts.consider(ctx, event)
	if err != nil {
		return nil, err
	}
	if t == nil {
		if t, err = n.Always.consider(ctx, event); err != nil {
			return nil, err
		}
	}
	return &Stride{Value: v, Pending: t}, nil
}

// Final is an Atomic specialization that terminates its region: it is
// always done and never transitions.  A region that has reached a
// Final is frozen until its parent is itself re-entered.
type Final struct {
	Atomic
}

func (n *Final) IsDone(v Value) bool { return true }

func (n *Final) Step(ctx Context, v Value, event Event) (*Stride, error) {
	if err := n.checkValue(v); err != nil {
		return nil, err
	}
	return &Stride{Value: v}, nil
}
