package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEvaluator is returned when an expression must be evaluated but the
	// engine was built without an evaluator.
	ErrNoEvaluator = errors.New("no expression evaluator configured")
	// ErrUnderflow is returned when a body reads more tokens than available.
	ErrUnderflow = errors.New("input underflow")
	// ErrOverflow is returned when a body writes past an output capacity.
	ErrOverflow = errors.New("output overflow")
)

// StepError reports a failure while executing a transition body.
// The instance passed to Step is left untouched.
type StepError struct {
	Actor      string
	Transition string
	Op         int
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("actor %q: transition %q: op %d: %v", e.Actor, e.Transition, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
