/*
Package actormachine is the scheduling core of a dataflow actor compiler.

An actor machine is an actor whose behaviour is a set of guarded, atomic
transitions over ports and scopes. The compiler decides, ahead of time, in
which order the guards of each controller state are tested (the Controller
Graph) and projects that decision into dispatch structures a runtime can
execute: an explicit FSM branch table, a per-state binary decision tree, a
per-state computed jump table, or a plain linear scan. Every projection picks
the same transition as the linear scan for the same inputs.

# Concept

Descriptions are loaded through a ports.ActorLoader (a Loam repository by
default, or files, or memory), parsed, validated, turned into a
controller.Graph and projected with every strategy.Kind. Conditions are only
observed through a condition.Func, so the same dispatch drives static
snapshots, the bundled simulator or a host runtime.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/streamblocks/actormachine"
		"github.com/streamblocks/actormachine/pkg/condition"
		"github.com/streamblocks/actormachine/pkg/strategy"
	)

	func main() {
		c, err := actormachine.New("./actors")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		d, err := c.Dispatch(ctx, "split", strategy.QuickJump)
		if err != nil {
			log.Fatal(err)
		}

		snap := condition.Snapshot{Available: map[string]int{"in": 1}}
		dec, err := d.Decide(ctx, 0, condition.Bind(d.Graph().Conditions, snap))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(d.Graph().TransitionName(dec.Transition))
	}
*/
package actormachine
