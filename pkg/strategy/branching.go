package strategy

import (
	"context"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

type branchingStrategy struct {
	maxNodes int
}

func (branchingStrategy) Kind() Kind { return Branching }

func (s branchingStrategy) Project(cctx domain.CompilationContext, g *controller.Graph) (Dispatch, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	d := &branching{graph: g, roots: make([]*node, len(g.States))}
	for i, st := range g.States {
		root, size, fallback := compileTree(st.Alternatives, s.maxNodes)
		if fallback {
			cctx.Log().Debug("Decision tree over budget, using linear chain",
				"actor", g.Actor, "state", st.Name, "budget", s.maxNodes)
			d.fallbacks = append(d.fallbacks, i)
		}
		d.roots[i] = root
		d.size += size
	}
	return projected(cctx, d), nil
}

// branching walks one binary decision tree per state.
type branching struct {
	graph     *controller.Graph
	roots     []*node
	size      int
	fallbacks []int
}

func (d *branching) Kind() Kind               { return Branching }
func (d *branching) Graph() *controller.Graph { return d.graph }
func (d *branching) Size() int                { return d.size }

func (d *branching) Decide(ctx context.Context, pc int, eval condition.Func) (Decision, error) {
	if _, err := stateAt(d.graph, pc); err != nil {
		return Decision{}, err
	}
	c := &counter{eval: eval}
	alt, err := d.roots[pc].walk(ctx, c)
	if err != nil {
		return Decision{}, err
	}
	if alt.IsStall() {
		return stall(pc, c.n), nil
	}
	return fire(alt, c.n), nil
}
