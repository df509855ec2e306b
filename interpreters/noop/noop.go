// Package noop provides a core.Interpreter that compiles nothing:
// guards pass, actions do nothing.  Useful as a stand-in while a
// configuration's sources are still being written.
package noop

import (
	"context"
	"log"

	"github.com/Comcast/statecharts/core"
)

// Interpreter is a core.Interpreter whose guards always pass and
// whose actions do nothing.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) warn() {
	if !i.Silent {
		log.Printf("warning: using noop Interpreter")
	}
}

func (i *Interpreter) CompileGuard(ctx context.Context, code string) (core.Guard, error) {
	i.warn()
	return func(c core.Context, event core.Event) (bool, error) {
		return true, nil
	}, nil
}

func (i *Interpreter) CompileAction(ctx context.Context, code string) (core.Action, error) {
	i.warn()
	return func(c core.Context, event core.Event) error {
		return nil
	}, nil
}
