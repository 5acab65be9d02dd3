package strategy

import (
	"context"
	"errors"

	"github.com/streamblocks/actormachine/pkg/controller"
)

var errBudget = errors.New("decision tree budget exceeded")

// node is either a test of one condition or, when cond is negative, a leaf
// selecting an alternative.
type node struct {
	cond int
	then *node
	els  *node
	leaf controller.Alternative
}

func leaf(alt controller.Alternative) *node {
	return &node{cond: -1, leaf: alt}
}

func (n *node) walk(ctx context.Context, c *counter) (controller.Alternative, error) {
	for n.cond >= 0 {
		ok, err := c.test(ctx, n.cond)
		if err != nil {
			return controller.Alternative{}, err
		}
		if ok {
			n = n.then
		} else {
			n = n.els
		}
	}
	return n.leaf, nil
}

// compileTree builds the decision tree of a state's alternatives. When the
// tree would exceed maxNodes it returns a linear chain instead and reports
// the fallback.
func compileTree(alts []controller.Alternative, maxNodes int) (root *node, size int, fallback bool) {
	b := &treeBuilder{alts: alts, budget: maxNodes}
	root, err := b.build(make(map[int]bool))
	if err == nil {
		return root, b.nodes, false
	}
	root, size = linearChain(alts)
	return root, size, true
}

type treeBuilder struct {
	alts   []controller.Alternative
	budget int
	nodes  int
}

type liveAlt struct {
	alt       controller.Alternative
	remaining []int
}

// live returns the alternatives not yet falsified by known, with the guard
// conditions still to be tested.
func (b *treeBuilder) live(known map[int]bool) []liveAlt {
	var out []liveAlt
	for _, alt := range b.alts {
		la := liveAlt{alt: alt}
		dead := false
		for _, c := range alt.Guard {
			v, ok := known[c]
			if !ok {
				la.remaining = append(la.remaining, c)
				continue
			}
			if !v {
				dead = true
				break
			}
		}
		if !dead {
			out = append(out, la)
		}
	}
	return out
}

func (b *treeBuilder) build(known map[int]bool) (*node, error) {
	b.nodes++
	if b.nodes > b.budget {
		return nil, errBudget
	}

	live := b.live(known)
	first := live[0]
	if len(first.remaining) == 0 {
		return leaf(first.alt), nil
	}

	// Test a condition of the highest priority live alternative, preferring
	// the one most other live alternatives also depend on.
	pivot, best := first.remaining[0], -1
	for _, c := range first.remaining {
		n := 0
		for _, la := range live {
			for _, r := range la.remaining {
				if r == c {
					n++
					break
				}
			}
		}
		if n > best {
			pivot, best = c, n
		}
	}

	known[pivot] = true
	then, err := b.build(known)
	if err != nil {
		return nil, err
	}
	known[pivot] = false
	els, err := b.build(known)
	if err != nil {
		return nil, err
	}
	delete(known, pivot)
	return &node{cond: pivot, then: then, els: els}, nil
}

// linearChain tests the alternatives one after the other. Every failing test
// jumps to the chain of the next alternative, so the result is a DAG linear in
// the total guard length.
func linearChain(alts []controller.Alternative) (*node, int) {
	next := leaf(alts[len(alts)-1])
	size := 1
	for i := len(alts) - 2; i >= 0; i-- {
		alt := alts[i]
		n := leaf(alt)
		size++
		for j := len(alt.Guard) - 1; j >= 0; j-- {
			n = &node{cond: alt.Guard[j], then: n, els: next}
			size++
		}
		next = n
	}
	return next, size
}
