package actormachine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/aretw0/loam"
	"golang.org/x/sync/errgroup"

	"github.com/streamblocks/actormachine/internal/compiler"
	loamAdapter "github.com/streamblocks/actormachine/pkg/adapters/loam"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/ports"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Compiler is the high-level entry point of the library. It loads actor
// descriptions, builds their controller graphs and projects them with every
// registered controller strategy.
type Compiler struct {
	loader       ports.ActorLoader
	parser       *compiler.Parser
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	strategyOpts []strategy.Option
	strategies   strategy.Registry
	cache        ports.ControllerCache
	evaluator    ports.ExpressionEvaluator
	channels     domain.ChannelMetadata
	parallelism  int
	Name         string
}

// Option defines a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithLoader injects a custom ActorLoader, bypassing the default Loam initialization.
func WithLoader(l ports.ActorLoader) Option {
	return func(c *Compiler) {
		c.loader = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Compiler) {
		c.hooks = hooks
	}
}

// WithStrategies tunes the controller strategies (tree budget, jump table width).
func WithStrategies(opts ...strategy.Option) Option {
	return func(c *Compiler) {
		c.strategyOpts = append(c.strategyOpts, opts...)
	}
}

// WithCache stores built controller graphs keyed by description hash.
func WithCache(cache ports.ControllerCache) Option {
	return func(c *Compiler) {
		c.cache = cache
	}
}

// WithEvaluator sets the host expression evaluator used by simulators.
func WithEvaluator(e ports.ExpressionEvaluator) Option {
	return func(c *Compiler) {
		c.evaluator = e
	}
}

// WithChannelMetadata provides buffer capacities for capacity diagnostics.
func WithChannelMetadata(m domain.ChannelMetadata) Option {
	return func(c *Compiler) {
		c.channels = m
	}
}

// WithParallelism bounds how many actors CompileAll builds at once.
func WithParallelism(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// New initializes a Compiler.
// By default, it reads actor descriptions from a Loam repository at the given path.
// If WithLoader is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Compiler, error) {
	c := &Compiler{
		parser:      compiler.NewParser(),
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		c.Name = filepath.Base(absPath)

		// Strict mode keeps numbers as json.Number across formats; the
		// compiler never writes to the repository.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		c.loader = loamAdapter.New(loam.NewTypedRepository[loamAdapter.ActorMetadata](repo))
	} else if repoPath != "" {
		c.Name = filepath.Base(repoPath)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.Name != "" {
		c.logger = c.logger.With("library", c.Name)
	}

	c.strategies = strategy.NewRegistry(c.strategyOpts...)
	return c, nil
}

// Artifact is the compiled form of one actor.
type Artifact struct {
	ID       string
	Actor    *domain.Actor
	Graph    *controller.Graph
	Dispatch map[strategy.Kind]strategy.Dispatch
	// Key is the content hash of the description the artifact was built from.
	Key string
}

func (c *Compiler) context() domain.CompilationContext {
	return domain.CompilationContext{
		Logger:   c.logger,
		Hooks:    c.hooks,
		Channels: c.channels,
	}
}

// Load reads and parses the description of actor id.
func (c *Compiler) Load(id string) (*domain.Actor, error) {
	actor, _, err := c.load(id)
	return actor, err
}

func (c *Compiler) load(id string) (*domain.Actor, string, error) {
	raw, err := c.loader.GetActor(id)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", id, err)
	}
	actor, err := c.parser.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", id, err)
	}
	sum := sha256.Sum256(raw)
	return actor, hex.EncodeToString(sum[:]), nil
}

// Compile builds the controller graph of actor id and projects it with every
// strategy. With a cache configured, graphs of unchanged descriptions are
// reused and graph construction hooks do not fire for them.
func (c *Compiler) Compile(ctx context.Context, id string) (*Artifact, error) {
	actor, key, err := c.load(id)
	if err != nil {
		return nil, err
	}
	cctx := c.context()

	g, err := c.cached(ctx, key)
	if err != nil {
		return nil, err
	}
	if g != nil {
		// Diagnostics depend on channel metadata, which is not part of the key.
		hit := *g
		hit.Diagnostics = controller.CapacityDiagnostics(cctx.Channels, actor)
		g = &hit
	} else {
		g, err = controller.Build(cctx, actor)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.Put(ctx, key, g); err != nil {
				c.logger.Warn("Controller cache write failed", "actor", actor.Name, "error", err)
			}
		}
	}

	dispatch, err := c.strategies.ProjectAll(cctx, g)
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", actor.Name, err)
	}

	return &Artifact{ID: id, Actor: actor, Graph: g, Dispatch: dispatch, Key: key}, nil
}

func (c *Compiler) cached(ctx context.Context, key string) (*controller.Graph, error) {
	if c.cache == nil {
		return nil, nil
	}
	g, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		if verr := g.Validate(); verr != nil {
			c.logger.Warn("Discarding invalid cached controller", "key", key, "error", verr)
			return nil, nil
		}
		c.logger.Debug("Controller cache hit", "key", key)
		return g, nil
	case errors.Is(err, domain.ErrCacheMiss):
		return nil, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		c.logger.Warn("Controller cache read failed", "key", key, "error", err)
		return nil, nil
	}
}

// CompileAll compiles every actor of the loader in parallel. Artifacts are
// returned in loader order. The first failure cancels the remaining work.
func (c *Compiler) CompileAll(ctx context.Context) ([]*Artifact, error) {
	ids, err := c.loader.ListActors()
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}

	out := make([]*Artifact, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := c.Compile(gctx, id)
			if err != nil {
				return fmt.Errorf("compile %s: %w", id, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Graph returns the controller graph of actor id.
func (c *Compiler) Graph(ctx context.Context, id string) (*controller.Graph, error) {
	a, err := c.Compile(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Graph, nil
}

// Dispatch returns the projection of actor id with the given strategy.
func (c *Compiler) Dispatch(ctx context.Context, id string, kind strategy.Kind) (strategy.Dispatch, error) {
	a, err := c.Compile(ctx, id)
	if err != nil {
		return nil, err
	}
	d, ok := a.Dispatch[kind]
	if !ok {
		return nil, &strategy.UnknownStrategyError{Name: string(kind)}
	}
	return d, nil
}

// ListActors returns the IDs of every actor known to the loader.
func (c *Compiler) ListActors() ([]string, error) {
	return c.loader.ListActors()
}

// Watch returns a channel that receives the ID of each changed actor.
// Returns error if the loader does not support watching.
func (c *Compiler) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := c.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying ActorLoader.
func (c *Compiler) Loader() ports.ActorLoader {
	return c.loader
}
