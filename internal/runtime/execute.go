package runtime

import (
	"context"
	"fmt"

	"github.com/streamblocks/actormachine/pkg/domain"
)

// execute runs the body of transition t on a copy of inst.
// Transient scopes are initialized for the firing and discarded afterwards.
func (e *Engine) execute(ctx context.Context, inst *domain.Instance, t int) (*domain.Instance, error) {
	tr := e.actor.Transitions[t]
	next := inst.Clone()

	locals := make(map[string]any, len(next.Vars))
	for k, v := range next.Vars {
		locals[k] = v
	}
	for _, s := range e.actor.Scopes {
		if s.Persistent {
			continue
		}
		for k, v := range s.Initial() {
			locals[k] = v
		}
	}

	fail := func(i int, err error) error {
		return &StepError{Actor: e.actor.Name, Transition: e.actor.Transitions.Label(t), Op: i, Err: err}
	}

	for i, op := range tr.Body {
		switch op.Kind {
		case domain.OpRead:
			fifo := next.Inputs[op.Port]
			if len(fifo) < op.Count {
				return nil, fail(i, fmt.Errorf("%w: port %q has %d of %d tokens", ErrUnderflow, op.Port, len(fifo), op.Count))
			}
			tokens := append([]any(nil), fifo[:op.Count]...)
			next.Inputs[op.Port] = fifo[op.Count:]
			if op.Target == "" {
				continue
			}
			if op.Count == 1 {
				locals[op.Target] = tokens[0]
			} else {
				locals[op.Target] = tokens
			}

		case domain.OpWrite:
			v, err := e.evaluate(ctx, op.Expression, locals)
			if err != nil {
				return nil, fail(i, err)
			}
			tokens := []any{v}
			if op.Count > 1 {
				list, ok := v.([]any)
				if !ok || len(list) != op.Count {
					return nil, fail(i, fmt.Errorf("write of %d tokens needs a list of that length, got %T", op.Count, v))
				}
				tokens = list
			}
			if capacity := next.Capacity[op.Port]; capacity > 0 && len(next.Outputs[op.Port])+len(tokens) > capacity {
				return nil, fail(i, fmt.Errorf("%w: port %q", ErrOverflow, op.Port))
			}
			next.Outputs[op.Port] = append(next.Outputs[op.Port], tokens...)

		case domain.OpAssign:
			v, err := e.evaluate(ctx, op.Expression, locals)
			if err != nil {
				return nil, fail(i, err)
			}
			locals[op.Target] = v

		case domain.OpEval:
			if _, err := e.evaluate(ctx, op.Expression, locals); err != nil {
				return nil, fail(i, err)
			}

		default:
			return nil, fail(i, fmt.Errorf("unsupported operation %q", op.Kind))
		}
	}

	for k := range e.persistent {
		if v, ok := locals[k]; ok {
			next.Vars[k] = v
		}
	}
	return next, nil
}
