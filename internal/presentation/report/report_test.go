package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/internal/presentation/report"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

func build(t *testing.T, a *domain.Actor) *controller.Graph {
	t.Helper()
	g, err := controller.Build(domain.CompilationContext{}, a)
	require.NoError(t, err)
	return g
}

func TestCollect(t *testing.T) {
	pass := build(t, &domain.Actor{
		Name: "pass",
		Ports: []domain.Port{
			{Name: "a", Direction: domain.DirectionIn},
			{Name: "b", Direction: domain.DirectionOut},
		},
		Conditions:  []domain.Condition{domain.InputAvailable("a", 1), domain.OutputHasSpace("b", 1)},
		Transitions: domain.TransitionSet{{Name: "copy", Guard: []int{0, 1}}},
	})
	phases := build(t, &domain.Actor{
		Name:   "phases",
		States: []string{"one", "two", "dead"},
		Transitions: domain.TransitionSet{
			{Name: "go", From: "one", To: "two"},
			{Name: "back", From: "two", To: "one"},
		},
	})

	s := report.Collect(pass, phases)

	assert.Len(t, s.Actors, 2)
	assert.Equal(t, 3, s.States)
	assert.Equal(t, 2, s.Conditions)
	assert.Equal(t, 3, s.Transitions)
	assert.Equal(t, 2, s.MaxStates)
	assert.Equal(t, "phases", s.MaxActor)
	assert.Equal(t, 1, s.Pruned)
}

func TestMarkdown(t *testing.T) {
	g := build(t, &domain.Actor{
		Name:        "solo",
		Conditions:  []domain.Condition{domain.Predicate("ready")},
		Transitions: domain.TransitionSet{{Name: "tick", Guard: []int{0}}},
	})
	straw, err := strategy.New(strategy.StrawMan)
	require.NoError(t, err)
	d, err := straw.Project(domain.CompilationContext{}, g)
	require.NoError(t, err)

	var s report.Stats
	s.Add(g, d)
	md := report.Markdown(s)

	assert.Contains(t, md, "- Actors: **1**")
	assert.Contains(t, md, "- Max states: **1** (`solo`)")
	assert.Contains(t, md, "| actor | states | conditions | transitions | pruned | strawman |")
	assert.Contains(t, md, "| solo | 1 | 1 | 1 | 0 | 2 |")
	assert.NotContains(t, md, "## Diagnostics")
}

func TestMarkdown_Empty(t *testing.T) {
	md := report.Markdown(report.Stats{})
	assert.Contains(t, md, "- Actors: **0**")
	assert.NotContains(t, md, "| actor |")
}
