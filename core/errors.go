package core

// These errors are configuration errors or broken invariants, not
// internal errors.

import (
	"encoding/json"
	"errors"
	"strconv"
)

// InterpreterNotFound occurs when a guard or action source names an
// interpreter that isn't among the interpreters given to NewMachine.
var InterpreterNotFound = errors.New("interpreter not found")

// js renders a fragment for an error message.
func js(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		return "<opaque>"
	}
	return string(bs)
}

// BadConfig occurs when the builder encounters a configuration
// fragment it can't understand.
type BadConfig struct {
	NodeId   string
	Reason   string
	Fragment interface{}
}

func (e *BadConfig) Error() string {
	return `bad configuration at node "` + e.NodeId + `": ` + e.Reason +
		": " + js(e.Fragment)
}

// UnknownNodeKind occurs when a configuration declares an explicit
// "type" that isn't one of the five node kinds.
type UnknownNodeKind struct {
	NodeId string
	Kind   string
}

func (e *UnknownNodeKind) Error() string {
	return `unknown node type "` + e.Kind + `" at node "` + e.NodeId + `"`
}

// BadValue occurs when a value presented to a node's Step doesn't
// match that node's shape.  The caller produced or supplied a value
// that doesn't belong to this tree; this error is never recoverable
// by configuration.
type BadValue struct {
	NodeId string
	Value  Value
}

func (e *BadValue) Error() string {
	return `value ` + js(e.Value) + ` doesn't fit node "` + e.NodeId + `"`
}

// BadEvent occurs when something that is neither an event name nor a
// map with a "name" property is offered as an event.
type BadEvent struct {
	Event interface{}
}

func (e *BadEvent) Error() string {
	return "bad event " + js(e.Event)
}

// UnknownTarget occurs when a fired transition names a target that
// isn't among the resolving node's children.
type UnknownTarget struct {
	NodeId    string
	Target    string
	EventName string
}

func (e *UnknownTarget) Error() string {
	return `target "` + e.Target + `" not found among children of "` +
		e.NodeId + `" (event "` + e.EventName + `")`
}

// TransientLoop occurs when a chain of "always" transitions fails to
// settle within the transient limit.  That's a configuration error:
// some cycle of eventless states never reaches a stable one.
type TransientLoop struct {
	NodeId string
	Limit  int
}

func (e *TransientLoop) Error() string {
	return `eventless transitions under "` + e.NodeId + `" didn't settle within ` +
		strconv.Itoa(e.Limit) + " hops"
}
