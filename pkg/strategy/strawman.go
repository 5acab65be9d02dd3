package strategy

import (
	"context"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

type strawManStrategy struct{}

func (strawManStrategy) Kind() Kind { return StrawMan }

func (strawManStrategy) Project(cctx domain.CompilationContext, g *controller.Graph) (Dispatch, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	return projected(cctx, &strawMan{graph: g}), nil
}

// strawMan scans alternatives in order, short-circuiting each guard.
type strawMan struct {
	graph *controller.Graph
}

func (d *strawMan) Kind() Kind               { return StrawMan }
func (d *strawMan) Graph() *controller.Graph { return d.graph }

func (d *strawMan) Size() int {
	n := 0
	for _, s := range d.graph.States {
		n += len(s.Alternatives)
	}
	return n
}

func (d *strawMan) Decide(ctx context.Context, pc int, eval condition.Func) (Decision, error) {
	s, err := stateAt(d.graph, pc)
	if err != nil {
		return Decision{}, err
	}
	c := &counter{eval: eval}
	for _, alt := range s.Alternatives {
		if alt.IsStall() {
			break
		}
		enabled := true
		for _, idx := range alt.Guard {
			ok, err := c.test(ctx, idx)
			if err != nil {
				return Decision{}, err
			}
			if !ok {
				enabled = false
				break
			}
		}
		if enabled {
			return fire(alt, c.n), nil
		}
	}
	return stall(pc, c.n), nil
}
