// A simple, single-machine process that reads events from stdin and
// writes states to stdout.
//
// The machine definition is a YAML rendering of the configuration
// that core.NewMachine consumes; guards and actions are sources for
// the standard interpreters.  Each input line is an event: either a
// bare event name or a JSON object with a "name" property plus
// payload properties.
//
// Example definition:
//
//	id: fetcher
//	initial: idle
//	context:
//	  retries: 0
//	states:
//	  idle:
//	    events:
//	      FETCH: loading
//	  loading:
//	    events:
//	      RESOLVE: success
//	      REJECT: failure
//	  failure:
//	    events:
//	      RETRY:
//	        target: loading
//	        actions:
//	          - _.ctx.retries = _.ctx.retries + 1;
//	  success: {}
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Comcast/statecharts/core"
	"github.com/Comcast/statecharts/interpreters"

	"github.com/jsccast/yaml"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		filename = flag.String("f", "", "machine definition filename (YAML)")
		ctxJSON  = flag.String("c", "", "starting context overrides (JSON)")
		echo     = flag.Bool("e", false, "echo input events")
	)

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *filename == "" {
		return fmt.Errorf("give a machine definition with -f")
	}
	src, err := os.ReadFile(*filename)
	if err != nil {
		return err
	}

	var config map[string]interface{}
	if err = yaml.Unmarshal(src, &config); err != nil {
		return err
	}

	m, err := core.NewMachine(ctx, config, interpreters.Standard())
	if err != nil {
		return err
	}

	st := m.InitialState()

	if *ctxJSON != "" {
		var overrides map[string]interface{}
		if err = json.Unmarshal([]byte(*ctxJSON), &overrides); err != nil {
			return err
		}
		for k, v := range overrides {
			st.Context[k] = v
		}
	}

	fmt.Printf("%s\n", st)

	in := bufio.NewReader(os.Stdin)
	for {
		line, err := in.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var event interface{} = line
		if strings.HasPrefix(line, "{") {
			var m map[string]interface{}
			if err = json.Unmarshal([]byte(line), &m); err != nil {
				log.Printf("bad event %s: %s", line, err)
				continue
			}
			event = m
		}

		if *echo {
			fmt.Printf("# %s\n", line)
		}

		next, err := m.Transition(st, event)
		if err != nil {
			log.Printf("transition error: %s", err)
			continue
		}
		st = next

		fmt.Printf("%s\n", st)
		if m.IsDone(st.Value) {
			fmt.Printf("# done\n")
		}
	}
}
