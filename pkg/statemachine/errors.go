package statemachine

import (
	"errors"
	"fmt"
)

// ErrNoTransition is matched by every TransitionError.
var ErrNoTransition = errors.New("statemachine: no transition available")

// TransitionError names the rejected state and event.
type TransitionError struct {
	From  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("statemachine: no transition from %q on %q", e.From, e.Event)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrNoTransition
}

// IsNoTransition reports whether err is a rejected transition.
func IsNoTransition(err error) bool {
	return errors.Is(err, ErrNoTransition)
}
