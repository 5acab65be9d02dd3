package strategy

import (
	"context"
	"fmt"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

type quickJumpStrategy struct {
	maxBits  int
	maxNodes int
}

func (quickJumpStrategy) Kind() Kind { return QuickJump }

func (s quickJumpStrategy) Project(cctx domain.CompilationContext, g *controller.Graph) (Dispatch, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	d := &quickJump{graph: g, states: make([]jumpState, len(g.States))}
	tables := make(map[string]*jumpTable)
	for i, st := range g.States {
		conds := g.ConditionsOf(i)
		if len(conds) > s.maxBits {
			root, size, _ := compileTree(st.Alternatives, s.maxNodes)
			cctx.Log().Debug("Too many conditions for a jump table, using decision tree",
				"actor", g.Actor, "state", st.Name, "conditions", len(conds))
			d.states[i] = jumpState{tree: root}
			d.size += size
			continue
		}

		key := fmt.Sprint(st.Alternatives)
		t, ok := tables[key]
		if !ok {
			t = buildTable(conds, st.Alternatives)
			tables[key] = t
			d.size += len(t.entries)
		}
		d.states[i] = jumpState{table: t}
	}
	d.tables = len(tables)
	return projected(cctx, d), nil
}

// jumpTable maps every combination of a state's condition values to the
// alternative a linear scan would pick.
type jumpTable struct {
	conds   []int
	entries []controller.Alternative
}

func buildTable(conds []int, alts []controller.Alternative) *jumpTable {
	bit := make(map[int]uint, len(conds))
	for i, c := range conds {
		bit[c] = 1 << uint(i)
	}
	t := &jumpTable{conds: conds, entries: make([]controller.Alternative, 1<<uint(len(conds)))}
	for mask := range t.entries {
		for _, alt := range alts {
			var need uint
			for _, c := range alt.Guard {
				need |= bit[c]
			}
			if uint(mask)&need == need {
				t.entries[mask] = alt
				break
			}
		}
	}
	return t
}

type jumpState struct {
	table *jumpTable
	tree  *node
}

// quickJump evaluates every condition of the state once and jumps through the
// table. States with too many conditions use a decision tree.
type quickJump struct {
	graph  *controller.Graph
	states []jumpState
	size   int
	tables int
}

func (d *quickJump) Kind() Kind               { return QuickJump }
func (d *quickJump) Graph() *controller.Graph { return d.graph }
func (d *quickJump) Size() int                { return d.size }

func (d *quickJump) Decide(ctx context.Context, pc int, eval condition.Func) (Decision, error) {
	if _, err := stateAt(d.graph, pc); err != nil {
		return Decision{}, err
	}
	c := &counter{eval: eval}
	st := d.states[pc]

	var alt controller.Alternative
	if st.table == nil {
		var err error
		if alt, err = st.tree.walk(ctx, c); err != nil {
			return Decision{}, err
		}
	} else {
		mask := 0
		for i, idx := range st.table.conds {
			ok, err := c.test(ctx, idx)
			if err != nil {
				return Decision{}, err
			}
			if ok {
				mask |= 1 << uint(i)
			}
		}
		alt = st.table.entries[mask]
	}

	if alt.IsStall() {
		return stall(pc, c.n), nil
	}
	return fire(alt, c.n), nil
}
