package ports

import "context"

// ExpressionEvaluator evaluates host language expressions.
// Predicates must produce a boolean; transition bodies may produce any value.
type ExpressionEvaluator interface {
	Evaluate(ctx context.Context, expression string, vars map[string]any) (any, error)
}

// EvaluatorFunc adapts a function to ExpressionEvaluator.
type EvaluatorFunc func(ctx context.Context, expression string, vars map[string]any) (any, error)

// Evaluate implements ExpressionEvaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, expression string, vars map[string]any) (any, error) {
	return f(ctx, expression, vars)
}
