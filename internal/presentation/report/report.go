package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// ActorStats summarizes one compiled controller.
type ActorStats struct {
	Name         string         `json:"name"`
	States       int            `json:"states"`
	Conditions   int            `json:"conditions"`
	Transitions  int            `json:"transitions"`
	Pruned       []string       `json:"pruned,omitempty"`
	Diagnostics  []string       `json:"diagnostics,omitempty"`
	DispatchSize map[string]int `json:"dispatch_size,omitempty"`
}

// Stats aggregates controller statistics over many actors.
type Stats struct {
	Actors      []ActorStats `json:"actors"`
	States      int          `json:"states"`
	Conditions  int          `json:"conditions"`
	Transitions int          `json:"transitions"`
	MaxStates   int          `json:"max_states"`
	MaxActor    string       `json:"max_actor,omitempty"`
	Pruned      int          `json:"pruned"`
}

// Add records one controller graph and its projected dispatches.
func (s *Stats) Add(g *controller.Graph, dispatches ...strategy.Dispatch) {
	a := ActorStats{
		Name:        g.Actor,
		States:      len(g.States),
		Conditions:  len(g.Conditions),
		Transitions: len(g.Transitions),
		Pruned:      g.Pruned,
		Diagnostics: g.Diagnostics,
	}
	if len(dispatches) > 0 {
		a.DispatchSize = make(map[string]int, len(dispatches))
		for _, d := range dispatches {
			a.DispatchSize[string(d.Kind())] = d.Size()
		}
	}

	s.Actors = append(s.Actors, a)
	s.States += a.States
	s.Conditions += a.Conditions
	s.Transitions += a.Transitions
	s.Pruned += len(a.Pruned)
	if a.States > s.MaxStates {
		s.MaxStates = a.States
		s.MaxActor = a.Name
	}
}

// Collect builds Stats for a set of graphs.
func Collect(graphs ...*controller.Graph) Stats {
	var s Stats
	for _, g := range graphs {
		s.Add(g)
	}
	return s
}

// Markdown renders the statistics as a markdown document.
func Markdown(s Stats) string {
	var sb strings.Builder
	sb.WriteString("# Actor Machine Statistics\n\n")
	fmt.Fprintf(&sb, "- Actors: **%d**\n", len(s.Actors))
	fmt.Fprintf(&sb, "- Sum of states: **%d**\n", s.States)
	fmt.Fprintf(&sb, "- Sum of conditions: **%d**\n", s.Conditions)
	fmt.Fprintf(&sb, "- Sum of transitions: **%d**\n", s.Transitions)
	if s.MaxActor != "" {
		fmt.Fprintf(&sb, "- Max states: **%d** (`%s`)\n", s.MaxStates, s.MaxActor)
	}
	fmt.Fprintf(&sb, "- Pruned states: **%d**\n", s.Pruned)

	if len(s.Actors) == 0 {
		return sb.String()
	}

	kinds := dispatchKinds(s.Actors)
	sb.WriteString("\n| actor | states | conditions | transitions | pruned |")
	for _, k := range kinds {
		fmt.Fprintf(&sb, " %s |", k)
	}
	sb.WriteString("\n|---|---|---|---|---|")
	sb.WriteString(strings.Repeat("---|", len(kinds)))
	sb.WriteString("\n")

	for _, a := range s.Actors {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d |", a.Name, a.States, a.Conditions, a.Transitions, len(a.Pruned))
		for _, k := range kinds {
			if size, ok := a.DispatchSize[k]; ok {
				fmt.Fprintf(&sb, " %d |", size)
			} else {
				sb.WriteString(" - |")
			}
		}
		sb.WriteString("\n")
	}

	var notes []string
	for _, a := range s.Actors {
		for _, d := range a.Diagnostics {
			notes = append(notes, fmt.Sprintf("- `%s`: %s", a.Name, d))
		}
		if len(a.Pruned) > 0 {
			notes = append(notes, fmt.Sprintf("- `%s`: unreachable %s", a.Name, strings.Join(a.Pruned, ", ")))
		}
	}
	if len(notes) > 0 {
		sb.WriteString("\n## Diagnostics\n\n")
		sb.WriteString(strings.Join(notes, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}

func dispatchKinds(actors []ActorStats) []string {
	seen := make(map[string]bool)
	for _, a := range actors {
		for k := range a.DispatchSize {
			seen[k] = true
		}
	}
	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
