// Package core provides the core gear for hierarchical, parallel
// state machines (statecharts) driven by declarative configurations.
//
// A configuration is a nested record of state nodes.  NewMachine
// builds it into a read-only tree of five node kinds -- Atomic,
// Final, Compound, Parallel, and History -- paired with an initial
// context.  The primary operation is Machine.Transition, which takes
// a State (an active-configuration Value plus a Context) and one
// event, and computes the next State.
//
// Transition is pure with respect to its inputs.  The context is
// deep-copied before any guard or action runs, so the caller's State
// is never touched; a Machine carries no mutable state of its own and
// can back any number of concurrent interpretations.  Within one
// call, actions fire in the fixed order exit, transition actions,
// entry -- and chains of eventless ("always") transitions repeat that
// triple hop by hop until the configuration settles.
//
// Guards and actions can be Go functions, or sources in a
// configuration (say, loaded from YAML).  A source names an
// Interpreter, which compiles it at build time; see the interpreters
// packages for an ECMAScript implementation.
//
// For an event-driven shell that holds a current State and notifies
// listeners, see package crew.
package core
