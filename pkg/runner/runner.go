package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// DefaultMaxSteps bounds a run when no limit is configured.
const DefaultMaxSteps = 1000

// Stepper advances an instance by one scheduling invocation.
type Stepper interface {
	Step(ctx context.Context, inst *domain.Instance) (*domain.Instance, strategy.Decision, error)
}

// Step is one entry of a trace.
type Step struct {
	Index       int    `json:"index"`
	From        string `json:"from"`
	To          string `json:"to"`
	Transition  string `json:"transition,omitempty"`
	Fired       bool   `json:"fired"`
	Evaluations int    `json:"evaluations"`
}

// Trace is the result of a run.
type Trace struct {
	Steps   []Step           `json:"steps"`
	Final   *domain.Instance `json:"final"`
	Stalled bool             `json:"stalled"`
	// Limited is set when the run hit the step limit before stalling.
	Limited bool `json:"limited,omitempty"`
}

// Fired returns the number of fired transitions.
func (t *Trace) Fired() int {
	n := 0
	for _, s := range t.Steps {
		if s.Fired {
			n++
		}
	}
	return n
}

// Runner handles the execution loop of a simulated instance.
type Runner struct {
	// Handler receives every step. If nil, steps are only recorded in the trace.
	Handler Handler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// MaxSteps bounds the number of steps. Zero means DefaultMaxSteps.
	MaxSteps int
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures the step handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.Handler = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithMaxSteps configures the step limit.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.MaxSteps = n
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop(), MaxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run steps inst until it stalls, the step limit is reached or ctx is done.
// The stalling step is part of the trace.
func (r *Runner) Run(ctx context.Context, s Stepper, inst *domain.Instance) (*Trace, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	limit := r.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}

	trace := &Trace{Final: inst}
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		if i >= limit {
			trace.Limited = true
			logger.Warn("Step limit reached", "actor", inst.Actor, "limit", limit)
			break
		}

		next, d, err := s.Step(ctx, trace.Final)
		if err != nil {
			return trace, fmt.Errorf("step %d: %w", i, err)
		}

		step := Step{
			Index:       i,
			From:        trace.Final.State,
			To:          next.State,
			Fired:       d.Fired,
			Evaluations: d.Evaluations,
		}
		if d.Fired && len(next.History) > 0 {
			step.Transition = next.History[len(next.History)-1]
		}
		trace.Steps = append(trace.Steps, step)
		trace.Final = next

		if r.Handler != nil {
			if err := r.Handler.OnStep(step); err != nil {
				return trace, fmt.Errorf("handler error: %w", err)
			}
		}
		if !d.Fired {
			trace.Stalled = true
			break
		}
	}

	logger.Debug("Run finished", "actor", inst.Actor, "steps", len(trace.Steps), "stalled", trace.Stalled)
	if r.Handler != nil {
		if err := r.Handler.OnDone(trace); err != nil {
			return trace, fmt.Errorf("handler error: %w", err)
		}
	}
	return trace, nil
}
