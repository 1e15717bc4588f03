// Package statemachine provides a declarative transition table for entities
// whose state is persisted elsewhere.
//
// A Table does not hold a current state. Callers load the state from storage,
// ask the table for the next state of an event, then persist the result.
// That keeps the table safe for concurrent use and free of per-entity
// instances.
//
//	table := statemachine.New[State, Event]().
//	    Allow(EventSetup, StatePending, StateNone, StatePending).
//	    Allow(EventVerify, StateActive, StatePending, StateActive)
//
//	next, err := table.Next(current, EventSetup)
//	if statemachine.IsNoTransition(err) {
//	    // event not allowed from current
//	}
package statemachine
