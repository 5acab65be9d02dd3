package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/ports"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Engine simulates instances of one actor under a projected controller.
// It holds no instance state; every step returns a new instance.
type Engine struct {
	actor      *domain.Actor
	dispatch   strategy.Dispatch
	evaluator  ports.ExpressionEvaluator
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	persistent map[string]bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a new engine. The evaluator may be nil for actors that
// use neither predicates nor expressions in their bodies.
func NewEngine(actor *domain.Actor, dispatch strategy.Dispatch, evaluator ports.ExpressionEvaluator, opts ...Option) *Engine {
	e := &Engine{
		actor:      actor,
		dispatch:   dispatch,
		evaluator:  evaluator,
		logger:     logging.NewNop(),
		persistent: make(map[string]bool),
	}
	for _, s := range actor.Scopes {
		if !s.Persistent {
			continue
		}
		for _, v := range s.Variables {
			e.persistent[v.Name] = true
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates an instance at program counter 0 with its persistent scopes
// initialized.
func (e *Engine) Start(ctx context.Context) (*domain.Instance, error) {
	g := e.dispatch.Graph()
	initial, err := g.State(0)
	if err != nil {
		return nil, err
	}

	inst := domain.NewInstance(e.actor.Name, initial.Name)
	for _, s := range e.actor.Scopes {
		if !s.Persistent {
			continue
		}
		for k, v := range s.Initial() {
			inst.Vars[k] = v
		}
	}
	for _, p := range e.actor.OutputPorts() {
		if p.Capacity > 0 {
			inst.Capacity[p.Name] = p.Capacity
		}
	}

	e.logger.Debug("Instance started", "actor", e.actor.Name, "state", inst.State)
	return inst, nil
}

// Decide asks the controller which transition would fire, without executing it.
func (e *Engine) Decide(ctx context.Context, inst *domain.Instance) (strategy.Decision, error) {
	eval := condition.Bind(e.actor.Conditions, e.Query(inst))
	return e.dispatch.Decide(ctx, inst.ProgramCounter, eval)
}

// Step performs one scheduling invocation: it decides, executes the body of
// the chosen transition and moves the program counter. A stall leaves ports,
// variables and program counter untouched.
func (e *Engine) Step(ctx context.Context, inst *domain.Instance) (*domain.Instance, strategy.Decision, error) {
	d, err := e.Decide(ctx, inst)
	if err != nil {
		return nil, d, fmt.Errorf("decide in state %q: %w", inst.State, err)
	}

	g := e.dispatch.Graph()
	event := &domain.StepEvent{
		EventBase:   domain.EventBase{Timestamp: time.Now(), Actor: e.actor.Name},
		Strategy:    string(e.dispatch.Kind()),
		State:       inst.State,
		Evaluations: d.Evaluations,
	}

	if !d.Fired {
		next := inst.Clone()
		next.Status = domain.StatusStalled
		e.logger.Debug("Stall", "actor", e.actor.Name, "state", inst.State, "evaluations", d.Evaluations)
		if e.hooks.OnStall != nil {
			event.Type = domain.EventStall
			e.hooks.OnStall(ctx, event)
		}
		return next, d, nil
	}

	name := g.TransitionName(d.Transition)
	next, err := e.execute(ctx, inst, d.Transition)
	if err != nil {
		return nil, d, err
	}
	target, err := g.State(d.Target)
	if err != nil {
		return nil, d, err
	}
	next.ProgramCounter = d.Target
	next.State = target.Name
	next.Status = domain.StatusFired
	next.History = append(next.History, name)

	e.logger.Debug("Fire", "actor", e.actor.Name, "transition", name, "from", inst.State, "to", next.State)
	if e.hooks.OnFire != nil {
		event.Type = domain.EventFire
		event.Transition = name
		e.hooks.OnFire(ctx, event)
	}
	return next, d, nil
}

// Query returns the condition view of an instance.
func (e *Engine) Query(inst *domain.Instance) condition.Query {
	return &instanceQuery{engine: e, inst: inst}
}

type instanceQuery struct {
	engine *Engine
	inst   *domain.Instance
}

func (q *instanceQuery) Tokens(port string) int {
	return len(q.inst.Inputs[port])
}

func (q *instanceQuery) Space(port string) int {
	capacity := q.inst.Capacity[port]
	if capacity <= 0 {
		return math.MaxInt
	}
	return capacity - len(q.inst.Outputs[port])
}

func (q *instanceQuery) Predicate(ctx context.Context, expression string) (bool, error) {
	v, err := q.engine.evaluate(ctx, expression, q.inst.Vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("predicate %q evaluated to %T, expected bool", expression, v)
	}
	return b, nil
}

func (e *Engine) evaluate(ctx context.Context, expression string, vars map[string]any) (any, error) {
	if e.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return e.evaluator.Evaluate(ctx, expression, vars)
}
