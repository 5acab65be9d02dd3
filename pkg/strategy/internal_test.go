package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

func wideActor() *domain.Actor {
	a := &domain.Actor{Name: "wide"}
	for i := 0; i < 6; i++ {
		a.Conditions = append(a.Conditions, domain.Predicate(string(rune('a'+i))))
	}
	a.Transitions = domain.TransitionSet{
		{Guard: []int{0, 1, 2}},
		{Guard: []int{3, 4}},
		{Guard: []int{5, 0}},
		{Guard: []int{4, 2}},
	}
	return a
}

func build(t *testing.T, a *domain.Actor) *controller.Graph {
	t.Helper()
	g, err := controller.Build(domain.CompilationContext{}, a)
	require.NoError(t, err)
	return g
}

func TestBranching_FallsBackToLinearChain(t *testing.T) {
	g := build(t, wideActor())

	s, err := New(Branching, WithMaxNodes(4))
	require.NoError(t, err)
	d, err := s.Project(domain.CompilationContext{}, g)
	require.NoError(t, err)
	b := d.(*branching)
	assert.Equal(t, []int{0}, b.fallbacks)
	// 4 leaves for the alternatives plus one test per guard condition.
	assert.Equal(t, 5+9, b.Size())

	s, err = New(Branching)
	require.NoError(t, err)
	d, err = s.Project(domain.CompilationContext{}, g)
	require.NoError(t, err)
	assert.Empty(t, d.(*branching).fallbacks)
}

func TestLinearChain_SharesFailureContinuations(t *testing.T) {
	alts := []controller.Alternative{
		{Guard: []int{0, 1}, Transition: 0},
		{Guard: []int{2}, Transition: 1},
		{Transition: controller.Stall, Target: controller.Stall},
	}
	root, size := linearChain(alts)
	assert.Equal(t, 6, size)

	require.Equal(t, 0, root.cond)
	second := root.els
	assert.Same(t, second, root.then.els, "both failures of the first guard continue at the second alternative")
	assert.Equal(t, 2, second.cond)
	assert.True(t, second.els.leaf.IsStall())
}

func TestQuickJump_SharesIdenticalTables(t *testing.T) {
	a := &domain.Actor{
		Name:       "shared",
		States:     []string{"a", "b"},
		Conditions: []domain.Condition{domain.Predicate("x"), domain.Predicate("y")},
		Transitions: domain.TransitionSet{
			{Name: "go", To: "b", Guard: []int{0}},
			{Name: "back", To: "a", Guard: []int{1}},
		},
	}
	g := build(t, a)
	require.Len(t, g.States, 2)

	s, err := New(QuickJump)
	require.NoError(t, err)
	d, err := s.Project(domain.CompilationContext{}, g)
	require.NoError(t, err)
	qj := d.(*quickJump)
	assert.Equal(t, 1, qj.tables)
	assert.Same(t, qj.states[0].table, qj.states[1].table)
	assert.Equal(t, 4, qj.Size())
}

func TestQuickJump_FallsBackToTree(t *testing.T) {
	g := build(t, wideActor())

	s, err := New(QuickJump, WithMaxBits(3))
	require.NoError(t, err)
	d, err := s.Project(domain.CompilationContext{}, g)
	require.NoError(t, err)
	qj := d.(*quickJump)
	assert.Nil(t, qj.states[0].table)
	assert.NotNil(t, qj.states[0].tree)
	assert.Equal(t, 0, qj.tables)
}

func TestBuildTable_MatchesLinearScan(t *testing.T) {
	alts := []controller.Alternative{
		{Guard: []int{4, 7}, Transition: 0},
		{Guard: []int{7}, Transition: 1},
		{Transition: controller.Stall, Target: controller.Stall},
	}
	tbl := buildTable([]int{4, 7}, alts)
	require.Len(t, tbl.entries, 4)
	assert.True(t, tbl.entries[0b00].IsStall())
	assert.True(t, tbl.entries[0b01].IsStall())
	assert.Equal(t, 1, tbl.entries[0b10].Transition)
	assert.Equal(t, 0, tbl.entries[0b11].Transition)
}
