package statemachine

import (
	"errors"
	"fmt"
)

// ErrNoTransition is returned when nothing is declared for a state/event pair.
var ErrNoTransition = errors.New("statemachine: no transition available")

// ErrRejected is returned when declared transitions exist but every one
// was blocked by a guard.
var ErrRejected = errors.New("statemachine: transition rejected by guards")

// TransitionError describes a failed lookup.
type TransitionError struct {
	From  string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: from %q on %q", e.Err, e.From, e.Event)
}

func (e *TransitionError) Unwrap() error { return e.Err }
