package strategy

import (
	"context"
	"fmt"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

type fsmStrategy struct{}

func (fsmStrategy) Kind() Kind { return FSM }

func (fsmStrategy) Project(cctx domain.CompilationContext, g *controller.Graph) (Dispatch, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	d := &fsm{graph: g, states: make([]fsmState, len(g.States))}
	for i, s := range g.States {
		var st fsmState
		for _, alt := range s.Alternatives {
			if alt.IsStall() {
				break
			}
			st.branches = append(st.branches, fsmBranch{guard: alt.Guard, alt: alt})
		}
		d.states[i] = st
	}
	return projected(cctx, d), nil
}

type fsmBranch struct {
	guard []int
	alt   controller.Alternative
}

type fsmState struct {
	branches []fsmBranch
}

// fsm is an explicit state machine: each state owns a branch table and falls
// through to a stall. Condition values are cached for one invocation.
type fsm struct {
	graph  *controller.Graph
	states []fsmState
}

func (d *fsm) Kind() Kind               { return FSM }
func (d *fsm) Graph() *controller.Graph { return d.graph }

func (d *fsm) Size() int {
	n := 0
	for _, s := range d.states {
		n += len(s.branches) + 1
	}
	return n
}

func (d *fsm) Decide(ctx context.Context, pc int, eval condition.Func) (Decision, error) {
	if pc < 0 || pc >= len(d.states) {
		return Decision{}, fmt.Errorf("program counter %d out of range [0, %d)", pc, len(d.states))
	}
	c := &counter{eval: eval}
	memo := make(map[int]bool)
	test := func(idx int) (bool, error) {
		if v, ok := memo[idx]; ok {
			return v, nil
		}
		v, err := c.test(ctx, idx)
		if err != nil {
			return false, err
		}
		memo[idx] = v
		return v, nil
	}

	for _, b := range d.states[pc].branches {
		taken := true
		for _, idx := range b.guard {
			ok, err := test(idx)
			if err != nil {
				return Decision{}, err
			}
			if !ok {
				taken = false
				break
			}
		}
		if taken {
			return fire(b.alt, c.n), nil
		}
	}
	return stall(pc, c.n), nil
}
