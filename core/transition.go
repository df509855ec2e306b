package core

import (
	"context"
)

// Guard is a predicate over the context and the incoming event that
// gates whether a transition candidate is eligible.
type Guard func(ctx Context, event Event) (bool, error)

// Action is a side effect run while a transition fires or on node
// entry/exit.  An Action may write into the context it's given; that
// context is always the per-call copy owned by the in-flight
// Transition.
type Action func(ctx Context, event Event) error

// Interpreter can compile guard and action sources from a
// configuration into executable Guards and Actions.
//
// Interpreters run at build time only; dispatch executes whatever
// they compiled.
type Interpreter interface {
	CompileGuard(ctx context.Context, code string) (Guard, error)
	CompileAction(ctx context.Context, code string) (Action, error)
}

// DefaultSourceInterpreter is the interpreter name used for guard and
// action sources that don't name one.
var DefaultSourceInterpreter = "goja"

// Source is guard or action code from a declarative configuration.
type Source struct {
	// Interpreter names the Interpreter that should compile this
	// source.  Empty means DefaultSourceInterpreter.
	Interpreter string

	Code string
}

func (s *Source) find(interpreters map[string]Interpreter) (Interpreter, error) {
	name := s.Interpreter
	if name == "" {
		name = DefaultSourceInterpreter
	}
	interpreter, have := interpreters[name]
	if !have {
		return nil, InterpreterNotFound
	}
	return interpreter, nil
}

func (s *Source) compileGuard(ctx context.Context, interpreters map[string]Interpreter) (Guard, error) {
	interpreter, err := s.find(interpreters)
	if err != nil {
		return nil, err
	}
	return interpreter.CompileGuard(ctx, s.Code)
}

func (s *Source) compileAction(ctx context.Context, interpreters map[string]Interpreter) (Action, error) {
	interpreter, err := s.find(interpreters)
	if err != nil {
		return nil, err
	}
	return interpreter.CompileAction(ctx, s.Code)
}

// Transition is one candidate state change.
//
// An empty Target means the transition stays in place: it exists for
// its guard and actions only.
type Transition struct {
	// Target is the id of the next state.  A target is resolved
	// among the direct children of the node that applies the
	// transition (the firing node's parent).
	Target string

	Guard       Guard
	GuardSource *Source

	// Actions run, in order, between the exit of the previous
	// state and the entry of the target.
	Actions       []Action
	ActionSources []*Source
}

// try evaluates this Transition to see if it applies.
func (t *Transition) try(ctx Context, event Event) (bool, error) {
	if t.Guard == nil {
		return true, nil
	}
	return t.Guard(ctx, event)
}

// run executes the transition's own actions in order.
func (t *Transition) run(ctx Context, event Event) error {
	return runActions(t.Actions, ctx, event)
}

// Transitions is an ordered list of candidates for one event.
//
// Order is significant and preserved from the source configuration:
// the first candidate whose guard passes (or which has no guard)
// wins.
type Transitions struct {
	List []*Transition
}

// consider finds the first candidate that applies.  No candidate, no
// transition.
func (ts *Transitions) consider(ctx Context, event Event) (*Transition, error) {
	if ts == nil {
		return nil, nil
	}
	for _, t := range ts.List {
		ok, err := t.try(ctx, event)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
	return nil, nil
}

// runActions executes an action list in order with the same context
// and event.
func runActions(actions []Action, ctx Context, event Event) error {
	for _, a := range actions {
		if err := a(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
