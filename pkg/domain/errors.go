package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrActorNotFound is returned when a loader has no description for an actor ID.
var ErrActorNotFound = errors.New("actor not found")

// ErrCacheMiss is returned by controller caches when no graph is stored for a key.
var ErrCacheMiss = errors.New("controller cache miss")

// ValidationError is a single malformed element of an actor description.
// Validation errors are fatal configuration errors raised before graph construction.
type ValidationError struct {
	Actor  string // Actor name
	Path   string // e.g. "transitions[2].guard[0]"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("actor %q: %s", e.Actor, e.Reason)
	}
	return fmt.Sprintf("actor %q: %s: %s", e.Actor, e.Path, e.Reason)
}

// AggregateError collects every validation failure of one actor.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(e.Errors), strings.Join(msgs, "\n- "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}
