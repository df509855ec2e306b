/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package crew

import (
	"errors"

	"github.com/Comcast/statecharts/core"
)

// NotStarted occurs when Next is called before Start.
var NotStarted = errors.New("machine not started")

// Listener is called with a machine's new state after an event
// actually changed it.  A Listener error aborts notification of the
// listeners subscribed after it and is returned to the caller of
// Next.
type Listener func(st *core.State) error

// Machine is a stateful shell over a pure core.Machine: it holds the
// current state, advances it one event at a time, and tells listeners
// when an event changed it.
//
// Not thread-safe.
type Machine struct {
	Id    string        `json:"id,omitempty"`
	M     *core.Machine `json:"-" yaml:"-"`
	State *core.State   `json:"state"`

	listeners []Listener
}

// Interpret wraps a core.Machine.  Call Start before Next.
func Interpret(m *core.Machine) *Machine {
	return &Machine{M: m}
}

// Start sets the current state, defaulting to the machine's own
// initial state.  Returns the receiver for chaining.
func (m *Machine) Start(st *core.State) *Machine {
	if st == nil {
		st = m.M.InitialState()
	}
	m.State = st
	return m
}

// Next consumes one event: the current state is replaced by the
// result of core.Machine.Transition, and, only if that transition
// actually changed the state, every listener runs with the new state
// in subscription order.
//
// On a transition error the current state stands.
func (m *Machine) Next(event interface{}) (*core.State, error) {
	if m.State == nil {
		return nil, NotStarted
	}

	st, err := m.M.Transition(m.State, event)
	if err != nil {
		return nil, err
	}
	m.State = st

	if st.Changed {
		for _, listener := range m.listeners {
			if err := listener(st); err != nil {
				return st, err
			}
		}
	}

	return st, nil
}

// Listen subscribes a listener.
func (m *Machine) Listen(f Listener) {
	m.listeners = append(m.listeners, f)
}

// Stop clears the listeners.  The current state stays put, so a
// stopped machine can Start (or even Next) again.
func (m *Machine) Stop() {
	m.listeners = nil
}

// Copy returns a new Machine with the same id, the same (immutable)
// core machine, and a copy of the current state.  Listeners are not
// copied.
func (m *Machine) Copy() *Machine {
	var st *core.State
	if m.State != nil {
		st = m.State.Copy()
	}
	return &Machine{
		Id:    m.Id,
		M:     m.M,
		State: st,
	}
}
