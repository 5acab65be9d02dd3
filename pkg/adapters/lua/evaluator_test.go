package lua_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/adapters/lua"
	"github.com/streamblocks/actormachine/pkg/ports"
	"github.com/streamblocks/actormachine/pkg/registry"
)

var _ ports.ExpressionEvaluator = (*lua.Evaluator)(nil)

func TestEvaluator_Expressions(t *testing.T) {
	e := lua.New()
	vars := map[string]any{
		"x":     5,
		"y":     json.Number("2.5"),
		"name":  "acc",
		"flag":  true,
		"items": []any{1, 2, 3},
		"cfg":   map[string]any{"limit": 10},
	}

	tests := []struct {
		expr string
		want any
	}{
		{"x > 0", true},
		{"x - 6 > 0", false},
		{"x + 1", 6},
		{"x / 2", 2.5},
		{"y * 2", 5},
		{"name .. '!'", "acc!"},
		{"not flag", false},
		{"#items", 3},
		{"items[2]", 2},
		{"cfg.limit - x", 5},
		{"math.max(x, 9)", 9},
		{"string.upper(name)", "ACC"},
		{"{x, x * 2}", []any{5, 10}},
		{"{a = 1}", map[string]any{"a": 1}},
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_Errors(t *testing.T) {
	e := lua.New()

	_, err := e.Evaluate(context.Background(), "x >", nil)
	assert.ErrorContains(t, err, "invalid expression")

	_, err = e.Evaluate(context.Background(), "nothing.field", nil)
	assert.Error(t, err)

	_, err = e.Evaluate(context.Background(), "x", map[string]any{"x": struct{}{}})
	assert.ErrorContains(t, err, "unsupported value type")

	_, err = e.Evaluate(context.Background(), "os.exit(1)", nil)
	assert.Error(t, err, "os library is not available")
}

func TestEvaluator_IsolatedStates(t *testing.T) {
	e := lua.New()
	ctx := context.Background()

	_, err := e.Evaluate(ctx, "rawset(_G, 'leak', 1)", nil)
	require.NoError(t, err)

	got, err := e.Evaluate(ctx, "leak", nil)
	require.NoError(t, err)
	assert.Nil(t, got, "globals do not survive between evaluations")
}

func TestEvaluator_HostFunctions(t *testing.T) {
	funcs := registry.NewRegistry()
	funcs.Register("clamp", func(ctx context.Context, args []any) (any, error) {
		v, lo, hi := args[0].(int), args[1].(int), args[2].(int)
		return min(max(v, lo), hi), nil
	})
	funcs.Register("reject", func(ctx context.Context, args []any) (any, error) {
		return nil, errors.New("rejected")
	})
	e := lua.New(lua.WithFunctions(funcs))
	ctx := context.Background()

	out, err := e.Evaluate(ctx, "clamp(x, 0, 10)", map[string]any{"x": 42})
	require.NoError(t, err)
	assert.Equal(t, 10, out)

	ok, err := e.Evaluate(ctx, "clamp(x, 0, 10) == x", map[string]any{"x": 3})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	_, err = e.Evaluate(ctx, "reject()", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	shadowed, err := e.Evaluate(ctx, "clamp", map[string]any{"clamp": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, shadowed)
}
