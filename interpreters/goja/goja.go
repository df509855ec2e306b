// Package goja compiles guard and action sources to ECMAScript
// programs using https://github.com/dop251/goja.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Comcast/statecharts/core"

	"github.com/dop251/goja"
)

// Interpreter implements core.Interpreter using Goja, a Go
// implementation of ECMAScript 5.1+.
//
// The following properties are available from the runtime at _.
//
//	ctx: the live context map.  Actions write here; guards
//	  shouldn't (but nothing stops a determined author).
//	event: the event's payload properties plus its "name".
//
// Guard sources return their verdict ('return _.ctx.count < 3;');
// truthiness decides.  Action sources run for their writes to _.ctx.
type Interpreter struct {
	// Testing exposes some runtime capabilities (currently just
	// "log") that production configurations shouldn't rely on.
	Testing bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func (i *Interpreter) compile(code string) (*goja.Program, error) {
	p, err := goja.Compile("", wrapSrc(code), true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}
	return p, nil
}

// CompileGuard compiles the given source into a Guard closed over the
// compiled program.  A fresh runtime is made per evaluation, so
// compiled guards are safe to share across interpretations.
func (i *Interpreter) CompileGuard(ctx context.Context, code string) (core.Guard, error) {
	p, err := i.compile(code)
	if err != nil {
		return nil, err
	}
	return func(c core.Context, event core.Event) (bool, error) {
		v, err := i.run(p, c, event)
		if err != nil {
			return false, err
		}
		return v != nil && v.ToBoolean(), nil
	}, nil
}

// CompileAction compiles the given source into an Action.  The
// action's return value (if any) is discarded; its effect is whatever
// it wrote into _.ctx.
func (i *Interpreter) CompileAction(ctx context.Context, code string) (core.Action, error) {
	p, err := i.compile(code)
	if err != nil {
		return nil, err
	}
	return func(c core.Context, event core.Event) error {
		_, err := i.run(p, c, event)
		return err
	}, nil
}

func (i *Interpreter) run(p *goja.Program, c core.Context, event core.Event) (goja.Value, error) {
	env := map[string]interface{}{
		"ctx":   map[string]interface{}(c),
		"event": eventEnv(event),
	}

	o := goja.New()
	o.Set("_", env)

	if i.Testing {
		env["log"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			js, err := json.Marshal(&x)
			if err != nil {
				log.Println("goja.log (can't marshal: " + err.Error() + ")")
			} else {
				log.Println(string(js))
			}
			return x
		}
	}

	return o.RunProgram(p)
}

func eventEnv(event core.Event) map[string]interface{} {
	m := make(map[string]interface{}, len(event.Payload)+1)
	for k, v := range event.Payload {
		m[k] = v
	}
	m["name"] = event.Name
	return m
}
