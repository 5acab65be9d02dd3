package actormachine

import (
	"context"

	"github.com/streamblocks/actormachine/internal/runtime"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Simulator executes instances of one compiled actor with one strategy.
// It implements runner.Stepper.
type Simulator struct {
	Artifact *Artifact
	Strategy strategy.Kind
	engine   *runtime.Engine
}

// Simulator compiles actor id and returns a simulator driven by the given
// strategy and the configured expression evaluator.
func (c *Compiler) Simulator(ctx context.Context, id string, kind strategy.Kind) (*Simulator, error) {
	a, err := c.Compile(ctx, id)
	if err != nil {
		return nil, err
	}
	d, ok := a.Dispatch[kind]
	if !ok {
		return nil, &strategy.UnknownStrategyError{Name: string(kind)}
	}
	eng := runtime.NewEngine(a.Actor, d, c.evaluator,
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
	)
	return &Simulator{Artifact: a, Strategy: kind, engine: eng}, nil
}

// Start creates an instance in the initial state with persistent scopes initialized.
func (s *Simulator) Start(ctx context.Context) (*domain.Instance, error) {
	return s.engine.Start(ctx)
}

// Decide reports which transition would fire, without executing it.
func (s *Simulator) Decide(ctx context.Context, inst *domain.Instance) (strategy.Decision, error) {
	return s.engine.Decide(ctx, inst)
}

// Step fires at most one transition. On a stall the returned instance only
// differs from inst by its status.
func (s *Simulator) Step(ctx context.Context, inst *domain.Instance) (*domain.Instance, strategy.Decision, error) {
	return s.engine.Step(ctx, inst)
}
