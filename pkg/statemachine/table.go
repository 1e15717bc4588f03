package statemachine

import "sync"

// Table maps (state, event) pairs to target states.
type Table[S ~string, E ~string] struct {
	mu          sync.RWMutex
	transitions map[S]map[E]S
}

// New returns an empty table.
func New[S ~string, E ~string]() *Table[S, E] {
	return &Table[S, E]{transitions: make(map[S]map[E]S)}
}

// Allow registers event as moving each of from to to.
// A later registration for the same pair replaces the earlier one.
func (t *Table[S, E]) Allow(event E, to S, from ...S) *Table[S, E] {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range from {
		if t.transitions[f] == nil {
			t.transitions[f] = make(map[E]S)
		}
		t.transitions[f][event] = to
	}
	return t
}

// Next returns the target state for event fired in from.
func (t *Table[S, E]) Next(from S, event E) (S, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	to, ok := t.transitions[from][event]
	if !ok {
		var zero S
		return zero, &TransitionError{From: string(from), Event: string(event)}
	}
	return to, nil
}

// Can reports whether event is allowed in from.
func (t *Table[S, E]) Can(from S, event E) bool {
	_, err := t.Next(from, event)
	return err == nil
}

// Events lists the events allowed in from, in no particular order.
func (t *Table[S, E]) Events(from S) []E {
	t.mu.RLock()
	defer t.mu.RUnlock()

	events := make([]E, 0, len(t.transitions[from]))
	for e := range t.transitions[from] {
		events = append(events, e)
	}
	return events
}
