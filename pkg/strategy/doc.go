// Package strategy projects a controller graph into runtime dispatch
// structures.
//
// Four projections are provided. StrawMan scans the alternatives of the
// current state linearly and is the reference every other strategy is tested
// against. FSM compiles one labelled dispatch state per graph state with
// per-invocation memoization of condition values. Branching compiles a binary
// decision tree per state. QuickJump evaluates all conditions of a state once
// and jumps through a table indexed by the resulting bitmask.
//
// For the same graph and the same channel and predicate values all four pick
// the same transition, or all stall.
package strategy
