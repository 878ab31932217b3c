package rules

import "github.com/rxtech-lab/argo-rules/internal/schedule"

// State is the mutable part of a rule: the number of executions left.
// schedule.Infinite means the rule never runs out; zero means it is spent.
type State struct {
	Remaining int
}

func newState(count int) State {
	return State{Remaining: count}
}

// Active reports whether the rule may still execute.
func (s State) Active() bool {
	return s.Remaining != 0
}

// Infinite reports whether the counter is never decremented.
func (s State) Infinite() bool {
	return s.Remaining == schedule.Infinite
}

// Final reports whether the next execution is the last one.
func (s State) Final() bool {
	return s.Remaining == 1
}

// Advance returns the state after one execution.
func (s State) Advance() State {
	if s.Remaining > 0 {
		return State{Remaining: s.Remaining - 1}
	}

	return s
}
