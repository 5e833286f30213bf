package ui

import "fmt"

// State is the visible state of a catch-up form. Exactly one holds at a
// time.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateResult
	StateError
)

var stateNames = map[State]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateResult:  "result",
	StateError:   "error",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists the states reachable from each state. Loading can only
// be left for an outcome; every other state accepts a new submission or a
// validation failure.
var transitions = map[State][]State{
	StateIdle:    {StateLoading, StateError},
	StateLoading: {StateResult, StateError},
	StateResult:  {StateLoading, StateError},
	StateError:   {StateLoading, StateError},
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// TransitionError reports an attempt to move between states that are not
// connected.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}
