package statemachine

import (
	"context"
	"fmt"
)

// Guard decides whether a transition applies to the given data.
type Guard[S, E comparable] func(ctx context.Context, from S, event E, data any) bool

type transition[S, E comparable] struct {
	to     S
	guards []Guard[S, E]
}

// Table is a declarative transition graph.
type Table[S, E comparable] struct {
	transitions map[S]map[E][]transition[S, E]
}

// New creates an empty table.
func New[S, E comparable]() *Table[S, E] {
	return &Table[S, E]{
		transitions: make(map[S]map[E][]transition[S, E]),
	}
}

// Add declares from --event--> to. Nil guards are ignored.
func (t *Table[S, E]) Add(from S, event E, to S, guards ...Guard[S, E]) *Table[S, E] {
	byEvent, ok := t.transitions[from]
	if !ok {
		byEvent = make(map[E][]transition[S, E])
		t.transitions[from] = byEvent
	}

	clean := make([]Guard[S, E], 0, len(guards))
	for _, g := range guards {
		if g != nil {
			clean = append(clean, g)
		}
	}
	byEvent[event] = append(byEvent[event], transition[S, E]{to: to, guards: clean})
	return t
}

// Next resolves the target state for event fired in from.
func (t *Table[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	candidates := t.transitions[from][event]
	if len(candidates) == 0 {
		var zero S
		return zero, t.fail(from, event, ErrNoTransition)
	}

	for _, tr := range candidates {
		if passes(ctx, tr.guards, from, event, data) {
			return tr.to, nil
		}
	}

	var zero S
	return zero, t.fail(from, event, ErrRejected)
}

// Terminal reports whether from has no outgoing transitions.
func (t *Table[S, E]) Terminal(from S) bool {
	return len(t.transitions[from]) == 0
}

func (t *Table[S, E]) fail(from S, event E, err error) error {
	return &TransitionError{From: fmt.Sprint(from), Event: fmt.Sprint(event), Err: err}
}

func passes[S, E comparable](ctx context.Context, guards []Guard[S, E], from S, event E, data any) bool {
	for _, g := range guards {
		if !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
