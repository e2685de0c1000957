// Package statemachine declares finite transition tables.
//
// A Table maps (state, event) pairs to target states. Several transitions
// may share a pair; the first whose guards all pass wins, which is how
// branching is expressed:
//
//	t := statemachine.New[Step, Event]().
//		Add(StepMessage, EventSubmit, StepZeitraum, isWebinar).
//		Add(StepMessage, EventSubmit, StepName)
//
//	next, err := t.Next(ctx, StepMessage, EventSubmit, form)
//
// Tables hold no current state. Callers keep state in their own values and
// ask the table where to go next, so one table can serve any number of
// independent conversations. A Table must not be modified after it is
// shared between goroutines.
package statemachine
