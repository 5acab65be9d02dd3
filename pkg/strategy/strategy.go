package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// Kind names a controller strategy.
type Kind string

const (
	FSM       Kind = "fsm"
	Branching Kind = "branching"
	QuickJump Kind = "quickjump"
	StrawMan  Kind = "strawman"
)

// Kinds returns every known strategy, StrawMan last.
func Kinds() []Kind {
	return []Kind{FSM, Branching, QuickJump, StrawMan}
}

// UnknownStrategyError is returned for a strategy name that is not registered.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return fmt.Sprintf("unknown controller strategy %q (expected one of %s)", e.Name, strings.Join(names, ", "))
}

// ParseKind resolves a strategy name from configuration.
// Matching ignores case, dashes and underscores.
func ParseKind(name string) (Kind, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for _, k := range Kinds() {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", &UnknownStrategyError{Name: name}
}

// Decision is the outcome of one scheduling invocation.
type Decision struct {
	Fired      bool `json:"fired"`
	Transition int  `json:"transition"`
	// Target is the next program counter. On a stall it is the current one.
	Target int `json:"target"`
	// Evaluations counts condition evaluations performed.
	Evaluations int `json:"evaluations"`
}

func stall(pc, evaluations int) Decision {
	return Decision{Transition: controller.Stall, Target: pc, Evaluations: evaluations}
}

func fire(alt controller.Alternative, evaluations int) Decision {
	return Decision{Fired: true, Transition: alt.Transition, Target: alt.Target, Evaluations: evaluations}
}

// Dispatch is a projected controller, ready to decide.
type Dispatch interface {
	Kind() Kind
	Graph() *controller.Graph
	// Size is a strategy specific measure of the projection.
	Size() int
	// Decide picks the transition to fire in state pc. Conditions are only
	// observed through eval; errors from eval are returned unchanged.
	Decide(ctx context.Context, pc int, eval condition.Func) (Decision, error)
}

// Strategy projects controller graphs.
type Strategy interface {
	Kind() Kind
	Project(cctx domain.CompilationContext, g *controller.Graph) (Dispatch, error)
}

// Option configures strategies that have tuning knobs.
type Option func(*options)

type options struct {
	maxNodes int
	maxBits  int
}

const (
	// DefaultMaxNodes bounds the decision tree of one state.
	DefaultMaxNodes = 4096
	// DefaultMaxBits bounds the number of distinct conditions of a jump table.
	DefaultMaxBits = 10
)

// WithMaxNodes sets the per-state decision tree budget of Branching and of
// the QuickJump fallback. States exceeding it are compiled as a linear chain.
func WithMaxNodes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxNodes = n
		}
	}
}

// WithMaxBits sets the largest number of distinct conditions QuickJump builds
// a table for.
func WithMaxBits(n int) Option {
	return func(o *options) {
		if n >= 0 && n <= 20 {
			o.maxBits = n
		}
	}
}

// New returns the strategy of the given kind.
func New(kind Kind, opts ...Option) (Strategy, error) {
	o := options{maxNodes: DefaultMaxNodes, maxBits: DefaultMaxBits}
	for _, opt := range opts {
		opt(&o)
	}
	switch kind {
	case FSM:
		return fsmStrategy{}, nil
	case Branching:
		return branchingStrategy{maxNodes: o.maxNodes}, nil
	case QuickJump:
		return quickJumpStrategy{maxBits: o.maxBits, maxNodes: o.maxNodes}, nil
	case StrawMan:
		return strawManStrategy{}, nil
	default:
		return nil, &UnknownStrategyError{Name: string(kind)}
	}
}

// Registry maps kinds to strategies.
type Registry map[Kind]Strategy

// NewRegistry returns a registry holding every strategy built with opts.
func NewRegistry(opts ...Option) Registry {
	r := make(Registry, len(Kinds()))
	for _, k := range Kinds() {
		s, _ := New(k, opts...)
		r[k] = s
	}
	return r
}

// Get returns the strategy registered under kind.
func (r Registry) Get(kind Kind) (Strategy, error) {
	s, ok := r[kind]
	if !ok {
		return nil, &UnknownStrategyError{Name: string(kind)}
	}
	return s, nil
}

// ProjectAll projects g with every registered strategy.
func (r Registry) ProjectAll(cctx domain.CompilationContext, g *controller.Graph) (map[Kind]Dispatch, error) {
	out := make(map[Kind]Dispatch, len(r))
	for k, s := range r {
		d, err := s.Project(cctx, g)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}

func checkGraph(g *controller.Graph) error {
	if g == nil {
		return fmt.Errorf("cannot project nil controller graph")
	}
	return g.Validate()
}

func projected(cctx domain.CompilationContext, d Dispatch) Dispatch {
	g := d.Graph()
	cctx.Log().Debug("Controller projected", "actor", g.Actor, "strategy", d.Kind(), "size", d.Size())
	if cctx.Hooks.OnProjected != nil {
		cctx.Hooks.OnProjected(&domain.ProjectionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventProjected, Actor: g.Actor},
			Strategy:  string(d.Kind()),
			Size:      d.Size(),
		})
	}
	return d
}

// counter wraps an evaluation function and counts calls.
type counter struct {
	eval condition.Func
	n    int
}

func (c *counter) test(ctx context.Context, index int) (bool, error) {
	c.n++
	return c.eval(ctx, index)
}

func stateAt(g *controller.Graph, pc int) (*controller.State, error) {
	return g.State(pc)
}
