package condition

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/streamblocks/actormachine/pkg/domain"
)

// ErrUnknownPredicate is returned by a Snapshot that has no value for a predicate.
var ErrUnknownPredicate = errors.New("unknown predicate")

// Query is the runtime view a condition is evaluated against.
type Query interface {
	// Tokens returns the number of unread tokens on an input port.
	Tokens(port string) int
	// Space returns the number of free slots on an output port.
	Space(port string) int
	// Predicate evaluates a host expression to a boolean.
	Predicate(ctx context.Context, expression string) (bool, error)
}

// Func evaluates the condition with the given index.
// It is the only view of conditions the controller strategies consume.
type Func func(ctx context.Context, index int) (bool, error)

// Evaluate returns the truth value of c under q.
func Evaluate(ctx context.Context, c domain.Condition, q Query) (bool, error) {
	switch c.Kind {
	case domain.ConditionPredicate:
		ok, err := q.Predicate(ctx, c.Expression)
		if err != nil {
			return false, fmt.Errorf("predicate %q: %w", c.Expression, err)
		}
		return ok, nil
	case domain.ConditionInputAvailable:
		return q.Tokens(c.Port) >= c.Count, nil
	case domain.ConditionOutputHasSpace:
		return q.Space(c.Port) >= c.Count, nil
	default:
		return false, fmt.Errorf("unsupported condition kind %q", c.Kind)
	}
}

// Bind returns a Func over an actor's condition list.
// Indices are validated upstream; an out of range index is reported as an error.
func Bind(conditions []domain.Condition, q Query) Func {
	return func(ctx context.Context, index int) (bool, error) {
		if index < 0 || index >= len(conditions) {
			return false, fmt.Errorf("condition index %d out of range [0, %d)", index, len(conditions))
		}
		return Evaluate(ctx, conditions[index], q)
	}
}

// Text renders c as target-neutral boolean expression text.
// Predicates are returned verbatim.
func Text(c domain.Condition) string {
	return c.String()
}

// Snapshot is a static Query, typically decoded from a request or a test table.
// Output ports missing from Free are treated as unbounded.
type Snapshot struct {
	Available map[string]int  `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Free      map[string]int  `json:"space,omitempty" yaml:"space,omitempty"`
	Values    map[string]bool `json:"predicates,omitempty" yaml:"predicates,omitempty"`
}

// Tokens implements Query.
func (s Snapshot) Tokens(port string) int {
	return s.Available[port]
}

// Space implements Query.
func (s Snapshot) Space(port string) int {
	if n, ok := s.Free[port]; ok {
		return n
	}
	return math.MaxInt
}

// Predicate implements Query by looking the expression up verbatim.
func (s Snapshot) Predicate(_ context.Context, expression string) (bool, error) {
	v, ok := s.Values[expression]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPredicate, expression)
	}
	return v, nil
}
