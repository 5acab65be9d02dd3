package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/streamblocks/actormachine/pkg/controller"
)

// GenerateDOT produces a Graphviz digraph of a controller graph.
func GenerateDOT(g *controller.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %s {\n", strconv.Quote(g.Actor))
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n")

	visited := make(map[string]bool)
	current := ""
	if overlay != nil {
		for _, name := range overlay.VisitedStates {
			visited[name] = true
		}
		current = overlay.CurrentState
	}

	for _, s := range g.States {
		attrs := []string{"label=" + strconv.Quote(s.Name)}
		if s.Index == controller.Initial {
			attrs = append(attrs, "shape=doublecircle")
		}
		switch {
		case s.Name == current:
			attrs = append(attrs, `style="rounded,filled"`, `fillcolor="#ffeb3b"`)
		case visited[s.Name]:
			attrs = append(attrs, `style="rounded,filled"`, `fillcolor="#e1f5fe"`)
		}
		fmt.Fprintf(&sb, "    %s [%s];\n", strconv.Quote(s.Name), strings.Join(attrs, ", "))
	}

	for _, s := range g.States {
		for i, alt := range s.Alternatives {
			if alt.IsStall() {
				continue
			}
			fmt.Fprintf(&sb, "    %s -> %s [label=%s, taillabel=\"%d\"];\n",
				strconv.Quote(s.Name),
				strconv.Quote(g.States[alt.Target].Name),
				strconv.Quote(EdgeLabel(g, alt, " && ")),
				i)
		}
	}

	for _, name := range g.Pruned {
		fmt.Fprintf(&sb, "    %s [style=dashed, color=gray];\n", strconv.Quote(name))
	}

	sb.WriteString("}\n")
	return sb.String()
}
