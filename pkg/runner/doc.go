/*
Package runner drives a simulated actor instance until it stalls.

It is the bridge between the stepping engine and the outside world: every
step is reported to a pluggable Handler (plain text or JSON lines) and the
run ends at the first stall, at the step limit or when the context is done.

# Usage

	r := runner.NewRunner(
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
		runner.WithMaxSteps(100),
	)

	trace, err := r.Run(ctx, engine, inst)
*/
package runner
