package controller

import (
	"fmt"

	"github.com/streamblocks/actormachine/pkg/domain"
)

// Stall marks the alternative that fires nothing.
const Stall = -1

// Alternative is one ordered option of a state.
type Alternative struct {
	Guard      []int `json:"guard,omitempty"`
	Transition int   `json:"transition"`
	Target     int   `json:"target"`
}

// IsStall reports whether the alternative is the closing stall.
func (a Alternative) IsStall() bool {
	return a.Transition == Stall
}

// State is a program counter value of the controller.
type State struct {
	Index        int           `json:"index"`
	Name         string        `json:"name"`
	Alternatives []Alternative `json:"alternatives"`
}

// Graph is the Controller Graph of one actor. The initial state is always at
// index 0.
type Graph struct {
	Actor       string             `json:"actor"`
	States      []State            `json:"states"`
	Conditions  []domain.Condition `json:"conditions,omitempty"`
	Transitions []string           `json:"transitions,omitempty"`
	Pruned      []string           `json:"pruned,omitempty"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
}

// Initial is the program counter of the start state.
const Initial = 0

// State returns the state at program counter pc.
func (g *Graph) State(pc int) (*State, error) {
	if pc < 0 || pc >= len(g.States) {
		return nil, fmt.Errorf("program counter %d out of range [0, %d)", pc, len(g.States))
	}
	return &g.States[pc], nil
}

// Lookup returns the program counter of the named state.
func (g *Graph) Lookup(name string) (int, bool) {
	for i, s := range g.States {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// TransitionName returns the label of transition t, or "stall".
func (g *Graph) TransitionName(t int) string {
	if t < 0 || t >= len(g.Transitions) {
		return "stall"
	}
	return g.Transitions[t]
}

// Successors returns the distinct successor states of pc, stall excluded,
// in alternative order.
func (g *Graph) Successors(pc int) []int {
	s, err := g.State(pc)
	if err != nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, alt := range s.Alternatives {
		if alt.IsStall() || seen[alt.Target] {
			continue
		}
		seen[alt.Target] = true
		out = append(out, alt.Target)
	}
	return out
}

// ConditionsOf returns the distinct condition indices tested in state pc,
// in order of first use.
func (g *Graph) ConditionsOf(pc int) []int {
	s, err := g.State(pc)
	if err != nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, alt := range s.Alternatives {
		for _, c := range alt.Guard {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Validate checks the structural invariants of the graph.
func (g *Graph) Validate() error {
	if len(g.States) == 0 {
		return fmt.Errorf("controller %q has no states", g.Actor)
	}
	for i, s := range g.States {
		if s.Index != i {
			return fmt.Errorf("state %q: index %d does not match position %d", s.Name, s.Index, i)
		}
		if len(s.Alternatives) == 0 {
			return fmt.Errorf("state %q has no alternatives", s.Name)
		}
		if !s.Alternatives[len(s.Alternatives)-1].IsStall() {
			return fmt.Errorf("state %q does not end with a stall", s.Name)
		}
		seen := make(map[int]bool)
		for j, alt := range s.Alternatives {
			if alt.IsStall() {
				if j != len(s.Alternatives)-1 {
					return fmt.Errorf("state %q: stall at position %d is not last", s.Name, j)
				}
				continue
			}
			if alt.Transition < 0 || alt.Transition >= len(g.Transitions) {
				return fmt.Errorf("state %q: transition %d out of range", s.Name, alt.Transition)
			}
			if seen[alt.Transition] {
				return fmt.Errorf("state %q: transition %q appears twice", s.Name, g.Transitions[alt.Transition])
			}
			seen[alt.Transition] = true
			if alt.Target < 0 || alt.Target >= len(g.States) {
				return fmt.Errorf("state %q: successor %d out of range", s.Name, alt.Target)
			}
			for _, c := range alt.Guard {
				if c < 0 || c >= len(g.Conditions) {
					return fmt.Errorf("state %q: condition %d out of range", s.Name, c)
				}
			}
		}
	}
	return nil
}
