package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// Request is written as JSON to the command's stdin.
type Request struct {
	Expression string         `json:"expression"`
	Vars       map[string]any `json:"vars"`
}

// Evaluator implements ports.ExpressionEvaluator by running an external
// command once per evaluation. The command receives a Request on stdin and
// prints the value on stdout; JSON output is decoded, anything else is
// returned as a trimmed string.
//
// Variables are also exported as AMC_VAR_<NAME> environment entries and the
// expression as AMC_EXPRESSION, for scripts that prefer not to parse JSON.
type Evaluator struct {
	command string
	args    []string
	dir     string
	env     map[string]string
	timeout time.Duration
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithArgs sets fixed arguments passed to the command.
func WithArgs(args ...string) Option {
	return func(e *Evaluator) {
		e.args = args
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(e *Evaluator) {
		e.dir = dir
	}
}

// WithEnv adds environment entries to every invocation.
func WithEnv(env map[string]string) Option {
	return func(e *Evaluator) {
		for k, v := range env {
			e.env[k] = v
		}
	}
}

// WithTimeout bounds a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// New creates an evaluator that runs command.
func New(command string, opts ...Option) *Evaluator {
	e := &Evaluator{
		command: command,
		env:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the command for expression.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars map[string]any) (any, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(Request{Expression: expression, Vars: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Dir = e.dir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(), e.environment(expression, vars)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("evaluate %q with %s: %w: %s", expression, e.command, err, strings.TrimSpace(stderr.String()))
	}

	out := strings.TrimSpace(stdout.String())
	var value any
	if err := json.Unmarshal([]byte(out), &value); err == nil {
		return normalize(value), nil
	}
	return out, nil
}

func (e *Evaluator) environment(expression string, vars map[string]any) []string {
	env := make([]string, 0, len(e.env)+len(vars)+1)
	for k, v := range e.env {
		env = append(env, k+"="+v)
	}
	env = append(env, "AMC_EXPRESSION="+expression)

	for k, v := range vars {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if b, err := json.Marshal(v); err == nil {
				val = string(b)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, fmt.Sprintf("AMC_VAR_%s=%s", strings.ToUpper(k), val))
	}
	sort.Strings(env)
	return env
}

// normalize turns integral JSON numbers into ints so results compare equal
// to values produced by Go code.
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
		return x
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	default:
		return v
	}
}
