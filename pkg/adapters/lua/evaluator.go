package lua

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	glua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/streamblocks/actormachine/pkg/registry"
)

// Evaluator implements ports.ExpressionEvaluator with Lua expressions.
// Each evaluation runs in a fresh sandboxed state with only the base, math,
// string and table libraries; compiled chunks are cached per expression.
type Evaluator struct {
	mu     sync.Mutex
	protos map[string]*glua.FunctionProto
	funcs  *registry.Registry
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithFunctions exposes the host functions of r as Lua globals.
// Variables with the same name shadow them.
func WithFunctions(r *registry.Registry) Option {
	return func(e *Evaluator) {
		e.funcs = r
	}
}

// New creates a Lua evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{protos: make(map[string]*glua.FunctionProto)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the value of expression with vars bound as globals.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars map[string]any) (any, error) {
	proto, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	L := glua.NewState(glua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	if err := openLibs(L); err != nil {
		return nil, err
	}
	if e.funcs != nil {
		for _, name := range e.funcs.Names() {
			L.SetGlobal(name, L.NewFunction(e.bind(ctx, name)))
		}
	}
	for k, v := range vars {
		lv, err := toLua(L, v)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", k, err)
		}
		L.SetGlobal(k, lv)
	}

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("lua: %q: %w", expression, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return fromLua(ret), nil
}

func (e *Evaluator) compile(expression string) (*glua.FunctionProto, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.protos[expression]; ok {
		return p, nil
	}

	chunk, err := parse.Parse(strings.NewReader("return "+expression), expression)
	if err != nil {
		return nil, fmt.Errorf("lua: invalid expression %q: %w", expression, err)
	}
	proto, err := glua.Compile(chunk, expression)
	if err != nil {
		return nil, fmt.Errorf("lua: invalid expression %q: %w", expression, err)
	}
	e.protos[expression] = proto
	return proto, nil
}

// bind adapts a registered host function to the Lua calling convention.
// Host errors are raised as Lua errors and surface from Evaluate.
func (e *Evaluator) bind(ctx context.Context, name string) glua.LGFunction {
	return func(L *glua.LState) int {
		top := L.GetTop()
		args := make([]any, 0, top)
		for i := 1; i <= top; i++ {
			args = append(args, fromLua(L.Get(i)))
		}
		out, err := e.funcs.Call(ctx, name, args)
		if err != nil {
			L.RaiseError("%s: %v", name, err)
			return 0
		}
		lv, err := toLua(L, out)
		if err != nil {
			L.RaiseError("%s: %v", name, err)
			return 0
		}
		L.Push(lv)
		return 1
	}
}

func openLibs(L *glua.LState) error {
	libs := []struct {
		name string
		open glua.LGFunction
	}{
		{glua.BaseLibName, glua.OpenBase},
		{glua.MathLibName, glua.OpenMath},
		{glua.StringLibName, glua.OpenString},
		{glua.TabLibName, glua.OpenTable},
	}
	for _, lib := range libs {
		err := L.CallByParam(glua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, glua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("lua: open %s: %w", lib.name, err)
		}
	}
	return nil
}

func toLua(L *glua.LState, v any) (glua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return glua.LNil, nil
	case bool:
		return glua.LBool(x), nil
	case string:
		return glua.LString(x), nil
	case int:
		return glua.LNumber(x), nil
	case int8:
		return glua.LNumber(x), nil
	case int16:
		return glua.LNumber(x), nil
	case int32:
		return glua.LNumber(x), nil
	case int64:
		return glua.LNumber(x), nil
	case uint:
		return glua.LNumber(x), nil
	case uint8:
		return glua.LNumber(x), nil
	case uint16:
		return glua.LNumber(x), nil
	case uint32:
		return glua.LNumber(x), nil
	case uint64:
		return glua.LNumber(x), nil
	case float32:
		return glua.LNumber(x), nil
	case float64:
		return glua.LNumber(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return glua.LNumber(f), nil
	case []any:
		t := L.NewTable()
		for _, item := range x {
			lv, err := toLua(L, item)
			if err != nil {
				return nil, err
			}
			t.Append(lv)
		}
		return t, nil
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lv, err := toLua(L, x[k])
			if err != nil {
				return nil, err
			}
			t.RawSetString(k, lv)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromLua(v glua.LValue) any {
	switch x := v.(type) {
	case glua.LBool:
		return bool(x)
	case glua.LString:
		return string(x)
	case glua.LNumber:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case *glua.LTable:
		if n := x.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		x.ForEach(func(k, val glua.LValue) {
			out[k.String()] = fromLua(val)
		})
		return out
	default:
		return nil
	}
}
