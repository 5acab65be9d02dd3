/*
Package dsl provides a Go DSL for programmatically constructing actor machines.

It allows hosts and tests to describe ports, scopes, states and guarded
transitions with a fluent builder instead of YAML or JSON files. Guards are
given as conditions; identical conditions are shared and indexed in order of
first use, so the resulting actor is ready for controller construction.

Example usage:

	b := dsl.New("accumulate")
	b.Input("in", "int")
	b.Output("out", "int", 2)
	b.Persistent("acc").Var("sum", "int", 0)
	b.Transient("locals").Var("x", "int", nil)

	b.Transition("add").
		When(dsl.HasData("in", 1)).
		Read("in", 1, "x").
		Assign("sum", "sum + x")

	b.Transition("flush").
		When(dsl.HasSpace("out", 1), dsl.Pred("sum > 100")).
		Write("out", "sum").
		Assign("sum", "0")

	actor, err := b.Build()
*/
package dsl
