package process_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/adapters/process"
	"github.com/streamblocks/actormachine/pkg/ports"
)

var _ ports.ExpressionEvaluator = (*process.Evaluator)(nil)

// TestHelperProcess is not a real test; it is the external evaluator the
// tests below execute via os.Args[0].
func TestHelperProcess(t *testing.T) {
	if os.Getenv("AMC_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	var req process.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch req.Expression {
	case "positive":
		x, _ := req.Vars["x"].(float64)
		fmt.Println(x > 0)
	case "double":
		x, _ := req.Vars["x"].(float64)
		fmt.Println(x * 2)
	case "env":
		fmt.Println(os.Getenv("AMC_VAR_NAME") + "/" + os.Getenv("MODE"))
	case "sleep":
		time.Sleep(5 * time.Second)
	case "fail":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(1)
	default:
		fmt.Println(`{"expression": "` + req.Expression + `"}`)
	}
}

func helper(opts ...process.Option) *process.Evaluator {
	base := []process.Option{
		process.WithArgs("-test.run=TestHelperProcess", "--"),
		process.WithEnv(map[string]string{"AMC_WANT_HELPER_PROCESS": "1"}),
	}
	return process.New(os.Args[0], append(base, opts...)...)
}

func TestEvaluator_Evaluate(t *testing.T) {
	e := helper(process.WithEnv(map[string]string{"MODE": "test"}))
	ctx := context.Background()

	t.Run("Decodes Booleans", func(t *testing.T) {
		got, err := e.Evaluate(ctx, "positive", map[string]any{"x": 3})
		require.NoError(t, err)
		assert.Equal(t, true, got)
	})

	t.Run("Normalizes Integral Numbers", func(t *testing.T) {
		got, err := e.Evaluate(ctx, "double", map[string]any{"x": 21})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("Decodes Objects", func(t *testing.T) {
		got, err := e.Evaluate(ctx, "other", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"expression": "other"}, got)
	})

	t.Run("Passes Variables via Env Vars", func(t *testing.T) {
		got, err := e.Evaluate(ctx, "env", map[string]any{"name": "acc"})
		require.NoError(t, err)
		assert.Equal(t, "acc/test", got)
	})

	t.Run("Reports Failures With Stderr", func(t *testing.T) {
		_, err := e.Evaluate(ctx, "fail", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestEvaluator_Timeout(t *testing.T) {
	e := helper(process.WithTimeout(100 * time.Millisecond))

	start := time.Now()
	_, err := e.Evaluate(context.Background(), "sleep", nil)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "evaluator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("command: python3\nargs: [eval.py]\ntimeout: 2s\nenv:\n  MODE: strict\n"), 0644))

	cfg, err := process.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "python3", cfg.Command)
	assert.Equal(t, []string{"eval.py"}, cfg.Args)
	assert.Equal(t, "strict", cfg.Environment["MODE"])

	_, err = process.FromConfig(cfg)
	assert.NoError(t, err)

	_, err = process.FromConfig(process.Config{Command: "x", Timeout: "soon"})
	assert.ErrorContains(t, err, "invalid timeout")

	jsonPath := filepath.Join(dir, "evaluator.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"args": ["a"]}`), 0644))
	_, err = process.LoadConfig(jsonPath)
	assert.ErrorContains(t, err, "command is required")

	_, err = process.LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
