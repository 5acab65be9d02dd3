package controller_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

func passThrough() *domain.Actor {
	return &domain.Actor{
		Name: "pass",
		Ports: []domain.Port{
			{Name: "a", Direction: domain.DirectionIn},
			{Name: "b", Direction: domain.DirectionOut, Capacity: 1},
		},
		Conditions: []domain.Condition{
			domain.InputAvailable("a", 1),
			domain.OutputHasSpace("b", 1),
		},
		Transitions: domain.TransitionSet{{Name: "T0", Guard: []int{0, 1}}},
	}
}

func TestBuild_ImplicitState(t *testing.T) {
	g, err := controller.Build(domain.CompilationContext{}, passThrough())
	require.NoError(t, err)

	require.Len(t, g.States, 1)
	s := g.States[0]
	assert.Equal(t, domain.ImplicitState, s.Name)
	require.Len(t, s.Alternatives, 2)
	assert.Equal(t, controller.Alternative{Guard: []int{0, 1}, Transition: 0, Target: 0}, s.Alternatives[0])
	assert.True(t, s.Alternatives[1].IsStall())
	assert.Equal(t, []string{"T0"}, g.Transitions)
	assert.NoError(t, g.Validate())
}

func TestBuild_InertActor(t *testing.T) {
	g, err := controller.Build(domain.CompilationContext{}, &domain.Actor{Name: "inert"})
	require.NoError(t, err)

	require.Len(t, g.States, 1)
	require.Len(t, g.States[0].Alternatives, 1)
	assert.True(t, g.States[0].Alternatives[0].IsStall())
}

func TestBuild_PriorityOrderIsSourceOrder(t *testing.T) {
	actor := &domain.Actor{
		Name:       "prio",
		Conditions: []domain.Condition{domain.Predicate("x > 0")},
		Transitions: domain.TransitionSet{
			{Name: "always"},
			{Name: "positive", Guard: []int{0, 0}},
		},
	}
	g, err := controller.Build(domain.CompilationContext{}, actor)
	require.NoError(t, err)

	alts := g.States[0].Alternatives
	require.Len(t, alts, 3)
	assert.Equal(t, 0, alts[0].Transition, "unconditional transitions keep their position")
	assert.Empty(t, alts[0].Guard)
	assert.Equal(t, 1, alts[1].Transition)
	assert.Equal(t, []int{0}, alts[1].Guard, "duplicate guard indices collapse")
}

func TestBuild_StatesAndPruning(t *testing.T) {
	actor := &domain.Actor{
		Name:       "fsm",
		States:     []string{"orphan", "idle", "busy", "dead"},
		Start:      "idle",
		Conditions: []domain.Condition{domain.Predicate("go")},
		Transitions: domain.TransitionSet{
			{Name: "start", From: "idle", To: "busy", Guard: []int{0}},
			{Name: "finish", From: "busy", To: "idle"},
			{Name: "leave", From: "orphan", To: "dead"},
			{Name: "tick"},
		},
	}

	var pruned []string
	var built *domain.GraphEvent
	cctx := domain.CompilationContext{Hooks: domain.LifecycleHooks{
		OnStatePruned: func(e *domain.GraphEvent) { pruned = append(pruned, e.State) },
		OnGraphBuilt:  func(e *domain.GraphEvent) { built = e },
	}}

	g, err := controller.Build(cctx, actor)
	require.NoError(t, err)

	require.Len(t, g.States, 2)
	assert.Equal(t, "idle", g.States[controller.Initial].Name)
	assert.Equal(t, "busy", g.States[1].Name)
	assert.Equal(t, []string{"orphan", "dead"}, g.Pruned)
	assert.Equal(t, []string{"orphan", "dead"}, pruned)

	idle := g.States[0].Alternatives
	require.Len(t, idle, 3)
	assert.Equal(t, "start", g.TransitionName(idle[0].Transition))
	assert.Equal(t, 1, idle[0].Target)
	assert.Equal(t, "tick", g.TransitionName(idle[1].Transition))
	assert.Equal(t, 0, idle[1].Target, "empty successor stays in state")

	busy := g.States[1].Alternatives
	assert.Equal(t, "finish", g.TransitionName(busy[0].Transition))
	assert.Equal(t, 0, busy[0].Target)

	pc, ok := g.Lookup("busy")
	assert.True(t, ok)
	assert.Equal(t, 1, pc)
	_, ok = g.Lookup("dead")
	assert.False(t, ok)

	assert.Equal(t, []int{1, 0}, g.Successors(0))
	assert.Equal(t, []int{0}, g.ConditionsOf(0))
	assert.Empty(t, g.ConditionsOf(1))

	require.NotNil(t, built)
	assert.Equal(t, 2, built.States)
	assert.Equal(t, 2, built.Pruned)
	assert.Equal(t, domain.EventGraphBuilt, built.Type)
}

func TestBuild_ValidationFailsBeforeConstruction(t *testing.T) {
	actor := passThrough()
	actor.Transitions[0].Guard = []int{7}

	called := false
	cctx := domain.CompilationContext{Hooks: domain.LifecycleHooks{
		OnGraphBuilt: func(*domain.GraphEvent) { called = true },
	}}
	g, err := controller.Build(cctx, actor)
	assert.Nil(t, g)
	require.Error(t, err)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.False(t, called)
}

func TestBuild_CapacityDiagnostics(t *testing.T) {
	actor := passThrough()
	actor.Conditions = append(actor.Conditions, domain.InputAvailable("a", 4), domain.OutputHasSpace("b", 2))
	actor.Transitions = append(actor.Transitions, domain.Transition{Name: "burst", Guard: []int{2, 3}})

	g, err := controller.Build(domain.CompilationContext{
		Channels: domain.StaticChannels{"pass.a": 2},
	}, actor)
	require.NoError(t, err)

	require.Len(t, g.Diagnostics, 2)
	assert.Contains(t, g.Diagnostics[0], "a.has_data(4)")
	assert.Contains(t, g.Diagnostics[0], "capacity 2")
	assert.Contains(t, g.Diagnostics[1], "b.has_space(2)")
	assert.Contains(t, g.Diagnostics[1], "capacity 1")
}

func TestGraph_ValidateRejectsBrokenGraphs(t *testing.T) {
	stall := controller.Alternative{Transition: controller.Stall, Target: controller.Stall}
	tests := []struct {
		name  string
		graph controller.Graph
	}{
		{"empty", controller.Graph{}},
		{"no alternatives", controller.Graph{States: []controller.State{{Name: "s"}}}},
		{"missing stall", controller.Graph{
			Transitions: []string{"t"},
			States:      []controller.State{{Name: "s", Alternatives: []controller.Alternative{{Transition: 0}}}},
		}},
		{"duplicate transition", controller.Graph{
			Transitions: []string{"t"},
			States: []controller.State{{Name: "s", Alternatives: []controller.Alternative{
				{Transition: 0}, {Transition: 0}, stall,
			}}},
		}},
		{"bad target", controller.Graph{
			Transitions: []string{"t"},
			States:      []controller.State{{Name: "s", Alternatives: []controller.Alternative{{Transition: 0, Target: 3}, stall}}},
		}},
		{"bad condition", controller.Graph{
			Transitions: []string{"t"},
			States:      []controller.State{{Name: "s", Alternatives: []controller.Alternative{{Guard: []int{0}, Transition: 0}, stall}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.graph.Validate())
		})
	}
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g, err := controller.Build(domain.CompilationContext{}, passThrough())
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var back controller.Graph
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, &back)
}
