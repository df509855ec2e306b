package core

// A Value describes the active configuration of a node tree.
//
// For an Atomic or Final node, the Value is that node's own id (a
// string).  For a Compound node, the Value is a single-entry
// map[string]interface{} from the active child id to that child's
// Value.  For a Parallel node, the Value is a map from every child id
// to that child's Value.
//
// A Value is replaced, never mutated: each Transition builds fresh
// maps for the levels that changed and shares the rest.
type Value interface{}

// copyValue makes a full structural copy of a Value (or of anything
// stored in a Context).
//
// Non-container values are shared, which is fine for the usual
// JSON-ish data.  A mutable value of some other type stashed in a
// Context is the caller's own problem.
func copyValue(x interface{}) interface{} {
	switch vv := x.(type) {
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			acc[k] = copyValue(v)
		}
		return acc
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, v := range vv {
			acc[i] = copyValue(v)
		}
		return acc
	default:
		return x
	}
}

// Context is the machine-wide extended state: arbitrary data that
// guards read and actions write, independent of the active-state
// topology.
//
// The key HistoryKey is reserved; see History.
type Context map[string]interface{}

// NewContext makes an empty Context.
func NewContext() Context {
	return make(Context, 8)
}

// Copy makes a full structural copy of the Context.
//
// Machine.Transition hands actions a copy, so the caller's Context is
// never touched.
func (ctx Context) Copy() Context {
	acc := make(Context, len(ctx))
	for k, v := range ctx {
		acc[k] = copyValue(v)
	}
	return acc
}

// Event is what a machine consumes: a name plus an optional payload
// visible to guards and actions.
type Event struct {
	Name    string
	Payload map[string]interface{}
}

// AsEvent turns a bare event name or a map with a "name" property
// (plus payload properties) into an Event.
func AsEvent(x interface{}) (Event, error) {
	switch vv := x.(type) {
	case Event:
		return vv, nil
	case *Event:
		return *vv, nil
	case string:
		return Event{Name: vv}, nil
	case map[string]interface{}:
		name, is := vv["name"].(string)
		if !is || name == "" {
			return Event{}, &BadEvent{x}
		}
		var payload map[string]interface{}
		if 1 < len(vv) {
			payload = make(map[string]interface{}, len(vv)-1)
			for k, v := range vv {
				if k != "name" {
					payload[k] = v
				}
			}
		}
		return Event{Name: name, Payload: payload}, nil
	default:
		return Event{}, &BadEvent{x}
	}
}
