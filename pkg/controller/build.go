package controller

import (
	"fmt"
	"time"

	"github.com/streamblocks/actormachine/internal/validator"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// Build derives the controller graph of actor.
//
// The actor is validated first; a malformed actor is a fatal configuration
// error and no graph is produced. States that cannot be reached from the start
// state are pruned and reported through the logger and OnStatePruned.
func Build(cctx domain.CompilationContext, actor *domain.Actor) (*Graph, error) {
	if err := validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	log := cctx.Log().With("actor", actor.Name)

	names := actor.StateNames()
	declared := make(map[string]int, len(names))
	for i, n := range names {
		declared[n] = i
	}

	// Successor relation over declared states, in source order.
	type edge struct {
		guard      []int
		transition int
		target     int
	}
	edges := make([][]edge, len(names))
	for si, name := range names {
		for _, ti := range actor.Transitions.EligibleIn(name) {
			t := actor.Transitions[ti]
			target := si
			if t.To != "" {
				target = declared[t.To]
			}
			edges[si] = append(edges[si], edge{guard: dedup(t.Guard), transition: ti, target: target})
		}
	}

	order := reachable(declared[actor.StartState()], len(names), func(s int) []int {
		out := make([]int, 0, len(edges[s]))
		for _, e := range edges[s] {
			out = append(out, e.target)
		}
		return out
	})

	pc := make(map[int]int, len(order))
	for i, s := range order {
		pc[s] = i
	}

	g := &Graph{
		Actor:       actor.Name,
		States:      make([]State, 0, len(order)),
		Conditions:  append([]domain.Condition(nil), actor.Conditions...),
		Transitions: make([]string, len(actor.Transitions)),
	}
	for i := range actor.Transitions {
		g.Transitions[i] = actor.Transitions.Label(i)
	}

	for i, s := range order {
		st := State{Index: i, Name: names[s]}
		for _, e := range edges[s] {
			st.Alternatives = append(st.Alternatives, Alternative{
				Guard:      e.guard,
				Transition: e.transition,
				Target:     pc[e.target],
			})
		}
		st.Alternatives = append(st.Alternatives, Alternative{Transition: Stall, Target: Stall})
		g.States = append(g.States, st)
	}

	for si, name := range names {
		if _, ok := pc[si]; ok {
			continue
		}
		g.Pruned = append(g.Pruned, name)
		log.Debug("Pruned unreachable state", "state", name)
		if cctx.Hooks.OnStatePruned != nil {
			cctx.Hooks.OnStatePruned(&domain.GraphEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStatePruned, Actor: actor.Name},
				State:     name,
			})
		}
	}

	g.Diagnostics = CapacityDiagnostics(cctx.Channels, actor)
	for _, d := range g.Diagnostics {
		log.Warn("Channel capacity check", "diagnostic", d)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("internal controller error: %w", err)
	}

	log.Debug("Controller graph built",
		"states", len(g.States), "transitions", len(g.Transitions), "pruned", len(g.Pruned))
	if cctx.Hooks.OnGraphBuilt != nil {
		cctx.Hooks.OnGraphBuilt(&domain.GraphEvent{
			EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventGraphBuilt, Actor: actor.Name},
			States:      len(g.States),
			Transitions: len(g.Transitions),
			Conditions:  len(g.Conditions),
			Pruned:      len(g.Pruned),
		})
	}
	return g, nil
}

// reachable returns the states reachable from start, start first and the rest
// in declaration order.
func reachable(start, n int, next func(int) []int) []int {
	seen := make([]bool, n)
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range next(s) {
			if !seen[t] {
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}

	order := []int{start}
	for s := 0; s < n; s++ {
		if s != start && seen[s] {
			order = append(order, s)
		}
	}
	return order
}

func dedup(guard []int) []int {
	if len(guard) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(guard))
	out := make([]int, 0, len(guard))
	for _, c := range guard {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// CapacityDiagnostics lists the port conditions of actor that can never hold
// because they ask for more tokens or slots than the channel can carry.
func CapacityDiagnostics(channels domain.ChannelMetadata, actor *domain.Actor) []string {
	var out []string
	for i, c := range actor.Conditions {
		if !c.IsPortCondition() {
			continue
		}
		capacity, known := 0, false
		if channels != nil {
			capacity, known = channels.Capacity(actor.Name, c.Port)
		}
		if !known && c.Kind == domain.ConditionOutputHasSpace {
			if p, ok := actor.Port(c.Port); ok && p.Capacity > 0 {
				capacity, known = p.Capacity, true
			}
		}
		if known && c.Count > capacity {
			out = append(out, fmt.Sprintf("condition %d (%s) can never hold: port %q has capacity %d", i, c, c.Port, capacity))
		}
	}
	return out
}
