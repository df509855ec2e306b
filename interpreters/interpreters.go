// Package interpreters assembles the standard guard/action source
// interpreters.
package interpreters

import (
	"github.com/Comcast/statecharts/core"
	"github.com/Comcast/statecharts/interpreters/goja"
	"github.com/Comcast/statecharts/interpreters/noop"
)

// Standard returns the stock interpreter map for core.NewMachine.
//
// The returned map is freshly built on every call; nothing here is
// process-wide mutable state.
func Standard() map[string]core.Interpreter {
	es := goja.NewInterpreter()

	return map[string]core.Interpreter{
		"goja":           es,
		"ecmascript":     es,
		"ecmascript-5.1": es,
		"noop":           noop.NewInterpreter(),
	}
}
