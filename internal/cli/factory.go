package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/pkg/adapters/file"
	"github.com/streamblocks/actormachine/pkg/adapters/lua"
	"github.com/streamblocks/actormachine/pkg/adapters/process"
	"github.com/streamblocks/actormachine/pkg/adapters/redis"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/ports"
)

// CachePrefix namespaces the controller graphs amc stores in Redis.
const CachePrefix = "amc:controller:"

// NewCompiler initializes a Compiler with standard CLI conventions. The
// returned function releases the resources the compiler holds.
func NewCompiler(opts Options, logger *slog.Logger, hooks domain.LifecycleHooks) (*actormachine.Compiler, func() error, error) {
	closer := func() error { return nil }

	// 1. Logger & Hooks
	if opts.Debug {
		hooks = createDebugHooks(logger).Merge(hooks)
	}
	copts := []actormachine.Option{
		actormachine.WithLogger(logger),
		actormachine.WithLifecycleHooks(hooks),
	}

	// 2. Host expressions
	eval, err := createEvaluator(opts)
	if err != nil {
		return nil, nil, err
	}
	copts = append(copts, actormachine.WithEvaluator(eval))

	// 3. Description source
	switch opts.Source {
	case "", SourceLoam:
	case SourceFile:
		copts = append(copts, actormachine.WithLoader(file.New(opts.Dir, file.WithLogger(logger))))
	default:
		return nil, nil, fmt.Errorf("unknown source %q (supported: %s, %s)", opts.Source, SourceLoam, SourceFile)
	}

	// 4. Controller cache
	if opts.Redis != "" {
		cache := redis.New(opts.Redis, "", 0, redis.WithPrefix(CachePrefix))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			cache.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", opts.Redis, err)
		}
		copts = append(copts, actormachine.WithCache(cache))
		closer = cache.Close
	}

	c, err := actormachine.New(opts.Dir, copts...)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("error initializing compiler: %w", err)
	}
	return c, closer, nil
}

func createEvaluator(opts Options) (ports.ExpressionEvaluator, error) {
	if opts.Evaluator == "" {
		return lua.New(), nil
	}
	cfg, err := process.LoadConfig(opts.Evaluator)
	if err != nil {
		return nil, err
	}
	return process.FromConfig(cfg)
}
