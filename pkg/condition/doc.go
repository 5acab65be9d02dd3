// Package condition evaluates actor guards against a runtime snapshot.
//
// Evaluation is a pure query: it never consumes tokens nor mutates scopes, so
// a condition can be evaluated any number of times within one invocation.
// Predicate conditions are delegated to the host expression evaluator exposed
// by the Query and are treated as opaque booleans.
package condition
