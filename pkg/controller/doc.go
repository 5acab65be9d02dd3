// Package controller derives the Controller Graph of an actor machine.
//
// The graph maps every reachable controller state to an ordered list of
// alternatives. Each alternative pairs a conjunctive guard with a transition
// and a successor state; the list is always closed by a stall alternative, so
// a dispatcher that finds no enabled transition leaves the actor where it is.
//
// Graphs are derived once from a validated actor and never mutated. They are
// plain data and serialize to JSON, which is what the cache adapters store.
package controller
