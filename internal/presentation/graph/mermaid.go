package graph

import (
	"fmt"
	"strings"

	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
)

// GraphOverlay contains simulation data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid flowchart of a controller graph.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Inert state (stall only): {{Hexagon}}
// - Default: [Rectangle]
// Edges carry the transition name and its guard. Pruned states are listed as
// a comment. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(g *controller.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range g.States {
		safeID := sanitizeMermaidID(s.Name)

		opener, closer := "[", "]"
		switch {
		case s.Index == controller.Initial:
			opener, closer = "((", "))"
		case len(s.Alternatives) == 1:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, s.Name, closer)

		for _, alt := range s.Alternatives {
			if alt.IsStall() {
				continue
			}
			label := strings.ReplaceAll(EdgeLabel(g, alt, " && "), "\"", "'")
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(g.States[alt.Target].Name))
		}
	}

	if len(g.Pruned) > 0 {
		fmt.Fprintf(&sb, "    %%%% pruned: %s\n", strings.Join(g.Pruned, ", "))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(name)
			if _, ok := g.Lookup(name); !ok || visited[safeID] {
				continue
			}
			visited[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

// EdgeLabel renders "name [guard]" for an alternative.
func EdgeLabel(g *controller.Graph, alt controller.Alternative, and string) string {
	name := g.TransitionName(alt.Transition)
	if len(alt.Guard) == 0 {
		return name
	}
	parts := make([]string, 0, len(alt.Guard))
	for _, c := range alt.Guard {
		parts = append(parts, condition.Text(g.Conditions[c]))
	}
	return fmt.Sprintf("%s [%s]", name, strings.Join(parts, and))
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// Mermaid reserves "end".
	if s == "end" {
		s = "end_"
	}
	return s
}
