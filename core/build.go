package core

import (
	"context"
)

// NewMachine builds a Machine from a declarative configuration.
//
// The configuration is a nested record; the recognized keys at each
// node are "type", "initial", "states", "events", "always", "entry",
// "exit", "history", "default" and "done", plus "id" and "context" at
// the top.  A node's kind is declared via "type" or inferred:
// "states" with "initial" makes a Compound, "states" alone a
// Parallel, "history" or "default" a History, "events" or "always" an
// Atomic, and none of those a Final.
//
// Guards and actions may be Go functions or sources (a code string,
// or a record with "interpreter" and "source").  Sources are compiled
// here, through the given interpreters, so a broken guard or action
// fails the build rather than some later dispatch.
//
// All configuration problems are fatal here: NewMachine either
// returns a Machine whose tree is structurally sound or an error
// naming the offending node and fragment.
func NewMachine(ctx context.Context, config map[string]interface{}, interpreters map[string]Interpreter) (*Machine, error) {
	x, err := stringKeys(config)
	if err != nil {
		return nil, err
	}
	cfg := x.(map[string]interface{})

	id := "machine"
	if s, is := cfg["id"].(string); is {
		id = s
	}

	root, err := buildNode(ctx, id, cfg, interpreters)
	if err != nil {
		return nil, err
	}

	initial := NewContext()
	if x, have := cfg["context"]; have {
		m, is := x.(map[string]interface{})
		if !is {
			return nil, &BadConfig{id, `"context" must be a map`, x}
		}
		for k, v := range m {
			initial[k] = copyValue(v)
		}
	}

	return &Machine{Root: root, InitialContext: initial}, nil
}

// inferKind determines a node's kind from its declared "type" or from
// the keys it carries.
func inferKind(cfg map[string]interface{}) string {
	if t, is := cfg["type"].(string); is {
		return t
	}
	var (
		_, states  = cfg["states"]
		_, initial = cfg["initial"]
		_, history = cfg["history"]
		_, deflt   = cfg["default"]
		_, events  = cfg["events"]
		_, always  = cfg["always"]
	)
	switch {
	case states && initial:
		return "compound"
	case states:
		return "parallel"
	case history || deflt:
		return "history"
	case events || always:
		return "atomic"
	default:
		return "final"
	}
}

func buildNode(ctx context.Context, id string, cfg map[string]interface{}, interpreters map[string]Interpreter) (Node, error) {
	// Delayed/timed transitions don't exist here; refuse
	// configurations that ask for them instead of quietly doing
	// the wrong thing.
	for _, key := range []string{"after", "delay"} {
		if x, have := cfg[key]; have {
			return nil, &BadConfig{id, `delayed transitions ("` + key + `") are not supported`, x}
		}
	}

	switch kind := inferKind(cfg); kind {
	case "atomic":
		return buildAtomic(ctx, id, cfg, interpreters)
	case "final":
		a, err := buildAtomic(ctx, id, cfg, interpreters)
		if err != nil {
			return nil, err
		}
		return &Final{Atomic: *a}, nil
	case "compound":
		return buildCompound(ctx, id, cfg, interpreters)
	case "parallel":
		return buildParallel(ctx, id, cfg, interpreters)
	case "history":
		return buildHistory(id, cfg)
	default:
		return nil, &UnknownNodeKind{id, kind}
	}
}

// buildAtomic builds the leaf-level parts every concrete kind shares:
// events, always, entry, exit.
func buildAtomic(ctx context.Context, id string, cfg map[string]interface{}, interpreters map[string]Interpreter) (*Atomic, error) {
	a := &Atomic{Id: id}

	if x, have := cfg["events"]; have {
		m, is := x.(map[string]interface{})
		if !is {
			return nil, &BadConfig{id, `"events" must be a map`, x}
		}
		a.Events = make(map[string]*Transitions, len(m))
		for name, spec := range m {
			ts, err := buildTransitions(ctx, id, spec, interpreters)
			if err != nil {
				return nil, err
			}
			a.Events[name] = ts
		}
	}

	if x, have := cfg["always"]; have {
		ts, err := buildTransitions(ctx, id, x, interpreters)
		if err != nil {
			return nil, err
		}
		a.Always = ts
	}

	var err error
	if a.Entry, err = buildActions(ctx, id, cfg["entry"], interpreters); err != nil {
		return nil, err
	}
	if a.Exit, err = buildActions(ctx, id, cfg["exit"], interpreters); err != nil {
		return nil, err
	}

	return a, nil
}

func buildCompound(ctx context.Context, id string, cfg map[string]interface{}, interpreters map[string]Interpreter) (Node, error) {
	a, err := buildAtomic(ctx, id, cfg, interpreters)
	if err != nil {
		return nil, err
	}

	states, err := buildStates(ctx, id, cfg, interpreters)
	if err != nil {
		return nil, err
	}

	initial, is := cfg["initial"].(string)
	if !is || initial == "" {
		return nil, &BadConfig{id, `a compound node needs an "initial" child id`, cfg["initial"]}
	}
	first, have := states[initial]
	if !have {
		return nil, &BadConfig{id, `"initial" names no child`, initial}
	}
	if _, is := first.(*History); is {
		return nil, &BadConfig{id, `"initial" can't name a history child`, initial}
	}

	done, err := doneFlag(id, cfg)
	if err != nil {
		return nil, err
	}

	if err := checkTargets(id, states); err != nil {
		return nil, err
	}

	return &Compound{Atomic: *a, States: states, Initial: initial, Done: done}, nil
}

func buildParallel(ctx context.Context, id string, cfg map[string]interface{}, interpreters map[string]Interpreter) (Node, error) {
	a, err := buildAtomic(ctx, id, cfg, interpreters)
	if err != nil {
		return nil, err
	}

	states, err := buildStates(ctx, id, cfg, interpreters)
	if err != nil {
		return nil, err
	}
	for child, n := range states {
		if _, is := n.(*History); is {
			return nil, &BadConfig{id, `a parallel node can't have a history child`, child}
		}
	}

	done, err := doneFlag(id, cfg)
	if err != nil {
		return nil, err
	}

	if err := checkTargets(id, states); err != nil {
		return nil, err
	}

	return &Parallel{Atomic: *a, States: states, Done: done}, nil
}

func buildHistory(id string, cfg map[string]interface{}) (Node, error) {
	deep := false
	switch vv := cfg["history"].(type) {
	case nil, bool:
		// Bare marker; shallow.
	case string:
		switch vv {
		case "shallow":
		case "deep":
			deep = true
		default:
			return nil, &BadConfig{id, `"history" must be "shallow" or "deep"`, vv}
		}
	default:
		return nil, &BadConfig{id, `"history" must be "shallow" or "deep"`, vv}
	}

	deflt, is := cfg["default"].(string)
	if !is || deflt == "" {
		return nil, &BadConfig{id, `a history node needs a "default" target`, cfg["default"]}
	}

	return &History{Id: id, Deep: deep, Default: deflt}, nil
}

func buildStates(ctx context.Context, id string, cfg map[string]interface{}, interpreters map[string]Interpreter) (map[string]Node, error) {
	m, is := cfg["states"].(map[string]interface{})
	if !is {
		return nil, &BadConfig{id, `"states" must be a map`, cfg["states"]}
	}
	states := make(map[string]Node, len(m))
	for child, x := range m {
		sub, is := x.(map[string]interface{})
		if !is {
			return nil, &BadConfig{id, `child "` + child + `" must be a map`, x}
		}
		n, err := buildNode(ctx, child, sub, interpreters)
		if err != nil {
			return nil, err
		}
		states[child] = n
	}
	return states, nil
}

func doneFlag(id string, cfg map[string]interface{}) (bool, error) {
	x, have := cfg["done"]
	if !have {
		return false, nil
	}
	b, is := x.(bool)
	if !is {
		return false, &BadConfig{id, `"done" must be a boolean`, x}
	}
	return b, nil
}

// checkTargets verifies that every transition declared by a child
// resolves among its siblings, and that history defaults do too.
// Targets are resolved at dispatch against these same direct
// children, so anything caught here would otherwise surface as a
// dispatch-time UnknownTarget.
func checkTargets(id string, states map[string]Node) error {
	check := func(event string, ts *Transitions) error {
		if ts == nil {
			return nil
		}
		for _, t := range ts.List {
			if t.Target == "" {
				continue
			}
			if _, have := states[t.Target]; !have {
				return &UnknownTarget{id, t.Target, event}
			}
		}
		return nil
	}

	for _, n := range states {
		if h, is := n.(*History); is {
			if _, have := states[h.Default]; !have {
				return &UnknownTarget{id, h.Default, ""}
			}
			continue
		}
		a := leafOf(n)
		for event, ts := range a.Events {
			if err := check(event, ts); err != nil {
				return err
			}
		}
		if err := check("", a.Always); err != nil {
			return err
		}
	}
	return nil
}

// leafOf returns the leaf-level parts of any concrete (non-history)
// node kind.
func leafOf(n Node) *Atomic {
	switch vv := n.(type) {
	case *Atomic:
		return vv
	case *Final:
		return &vv.Atomic
	case *Compound:
		return &vv.Atomic
	case *Parallel:
		return &vv.Atomic
	}
	return nil
}

// buildTransitions parses one transition spec: a bare target id, a
// record with "target"/"guard"/"actions", or a list of such records
// (a multi-transition; first candidate whose guard passes wins).
func buildTransitions(ctx context.Context, id string, spec interface{}, interpreters map[string]Interpreter) (*Transitions, error) {
	switch vv := spec.(type) {
	case []interface{}:
		ts := &Transitions{List: make([]*Transition, 0, len(vv))}
		for _, x := range vv {
			t, err := buildTransition(ctx, id, x, interpreters)
			if err != nil {
				return nil, err
			}
			ts.List = append(ts.List, t)
		}
		return ts, nil
	default:
		t, err := buildTransition(ctx, id, spec, interpreters)
		if err != nil {
			return nil, err
		}
		return &Transitions{List: []*Transition{t}}, nil
	}
}

func buildTransition(ctx context.Context, id string, spec interface{}, interpreters map[string]Interpreter) (*Transition, error) {
	switch vv := spec.(type) {
	case string:
		return &Transition{Target: vv}, nil
	case map[string]interface{}:
		t := &Transition{}
		if x, have := vv["target"]; have {
			s, is := x.(string)
			if !is {
				return nil, &BadConfig{id, `"target" must be a string`, x}
			}
			t.Target = s
		}
		if x, have := vv["guard"]; have {
			guard, src, err := buildGuard(id, x)
			if err != nil {
				return nil, err
			}
			t.Guard, t.GuardSource = guard, src
		}
		if x, have := vv["actions"]; have {
			actions, srcs, err := parseActions(id, x)
			if err != nil {
				return nil, err
			}
			t.Actions, t.ActionSources = actions, srcs
		}
		if t.GuardSource != nil {
			guard, err := t.GuardSource.compileGuard(ctx, interpreters)
			if err != nil {
				return nil, &BadConfig{id, err.Error(), spec}
			}
			t.Guard = guard
		}
		if err := compileSlots(ctx, t.Actions, t.ActionSources, interpreters); err != nil {
			return nil, &BadConfig{id, err.Error(), spec}
		}
		return t, nil
	default:
		return nil, &BadConfig{id, "bad transition spec", spec}
	}
}

func buildGuard(id string, x interface{}) (Guard, *Source, error) {
	switch vv := x.(type) {
	case Guard:
		return vv, nil, nil
	case func(Context, Event) (bool, error):
		return Guard(vv), nil, nil
	case string:
		return nil, &Source{Code: vv}, nil
	case map[string]interface{}:
		src, err := parseSource(id, vv)
		if err != nil {
			return nil, nil, err
		}
		return nil, src, nil
	default:
		return nil, nil, &BadConfig{id, "bad guard", x}
	}
}

// parseActions accepts a single action form or a list of them.  A
// form is a Go function, a code string, or a source record.  Mixing
// functions and sources in one list is fine.  The two slices run in
// parallel: a function occupies its action slot directly, and a
// source leaves a nil slot for compileSlots to fill, so the compiled
// order matches the declared order.
func parseActions(id string, x interface{}) ([]Action, []*Source, error) {
	list, is := x.([]interface{})
	if !is {
		list = []interface{}{x}
	}

	var (
		actions []Action
		srcs    []*Source
		mixed   = false
	)
	for _, item := range list {
		switch vv := item.(type) {
		case Action:
			actions = append(actions, vv)
			srcs = append(srcs, nil)
		case func(Context, Event) error:
			actions = append(actions, Action(vv))
			srcs = append(srcs, nil)
		case string:
			actions = append(actions, nil)
			srcs = append(srcs, &Source{Code: vv})
			mixed = true
		case map[string]interface{}:
			src, err := parseSource(id, vv)
			if err != nil {
				return nil, nil, err
			}
			actions = append(actions, nil)
			srcs = append(srcs, src)
			mixed = true
		default:
			return nil, nil, &BadConfig{id, "bad action", item}
		}
	}

	if !mixed {
		return actions, nil, nil
	}
	// Leave compilation of the source slots to the caller; the
	// nil action slots mark where the compiled ones go.
	return actions, srcs, nil
}

func parseSource(id string, m map[string]interface{}) (*Source, error) {
	code, is := m["source"].(string)
	if !is {
		return nil, &BadConfig{id, `a source record needs a "source" string`, m}
	}
	src := &Source{Code: code}
	if x, have := m["interpreter"]; have {
		name, is := x.(string)
		if !is {
			return nil, &BadConfig{id, `"interpreter" must be a string`, x}
		}
		src.Interpreter = name
	}
	return src, nil
}

// buildActions parses and compiles an entry/exit action list.
func buildActions(ctx context.Context, id string, x interface{}, interpreters map[string]Interpreter) ([]Action, error) {
	if x == nil {
		return nil, nil
	}
	actions, srcs, err := parseActions(id, x)
	if err != nil {
		return nil, err
	}
	if err := compileSlots(ctx, actions, srcs, interpreters); err != nil {
		return nil, &BadConfig{id, err.Error(), x}
	}
	return actions, nil
}

// compileSlots fills the nil slots of actions from the corresponding
// sources, preserving declared order.
func compileSlots(ctx context.Context, actions []Action, srcs []*Source, interpreters map[string]Interpreter) error {
	for i, src := range srcs {
		if src == nil || actions[i] != nil {
			continue
		}
		action, err := src.compileAction(ctx, interpreters)
		if err != nil {
			return err
		}
		actions[i] = action
	}
	return nil
}

// stringKeys recursively converts map[interface{}]interface{} (which
// gopkg.in/yaml.v2 produces) to map[string]interface{}.  Non-string
// keys are configuration errors.  Anything that isn't a map or a
// slice (including Go functions in programmatic configurations)
// passes through untouched.
func stringKeys(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, &BadConfig{"", "non-string configuration key", k}
			}
			y, err := stringKeys(v)
			if err != nil {
				return nil, err
			}
			m[s] = y
		}
		return m, nil
	case map[string]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			y, err := stringKeys(v)
			if err != nil {
				return nil, err
			}
			m[k] = y
		}
		return m, nil
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, v := range vv {
			y, err := stringKeys(v)
			if err != nil {
				return nil, err
			}
			acc[i] = y
		}
		return acc, nil
	default:
		return x, nil
	}
}
