package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/pkg/runner"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// SimulateOptions configures a simulation run.
type SimulateOptions struct {
	Actor    string
	Strategy strategy.Kind
	Inputs   map[string][]any
	MaxSteps int
	JSON     bool
}

// RunSimulate feeds the inputs to a fresh instance of the actor and steps it
// until it stalls.
func RunSimulate(ctx context.Context, c *actormachine.Compiler, opts SimulateOptions, w io.Writer, logger *slog.Logger) (*runner.Trace, error) {
	sim, err := c.Simulator(ctx, opts.Actor, opts.Strategy)
	if err != nil {
		return nil, err
	}
	inst, err := sim.Start(ctx)
	if err != nil {
		return nil, err
	}

	ports := make([]string, 0, len(opts.Inputs))
	for p := range opts.Inputs {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	for _, p := range ports {
		port, ok := sim.Artifact.Actor.Port(p)
		if !ok || !port.IsInput() {
			return nil, fmt.Errorf("actor %s has no input port %q", opts.Actor, p)
		}
		inst.Push(p, opts.Inputs[p]...)
	}

	var h runner.Handler = runner.NewTextHandler(w)
	if opts.JSON {
		h = runner.NewJSONHandler(w)
	}
	r := runner.NewRunner(
		runner.WithHandler(h),
		runner.WithLogger(logger),
		runner.WithMaxSteps(opts.MaxSteps),
	)
	return r.Run(ctx, sim, inst)
}
