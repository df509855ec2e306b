// Package statecharts provides a hierarchical, parallel state machine
// (statechart) engine driven by declarative configurations.
//
// The core code is in package 'core', a stateful event-driven shell is
// in 'crew', and a command-line runner is in 'cmd/mstate'.
package statecharts
