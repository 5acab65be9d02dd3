package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/internal/presentation/graph"
	"github.com/streamblocks/actormachine/internal/presentation/report"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Graph output formats.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
)

// RenderGraph renders the controller of actor. An empty actor is accepted
// when the library holds exactly one. current highlights a state by name.
func RenderGraph(ctx context.Context, c *actormachine.Compiler, actor, format, current string) (string, error) {
	if actor == "" {
		ids, err := c.ListActors()
		if err != nil {
			return "", err
		}
		if len(ids) != 1 {
			return "", fmt.Errorf("library has %d actors, choose one with --actor", len(ids))
		}
		actor = ids[0]
	}

	g, err := c.Graph(ctx, actor)
	if err != nil {
		return "", err
	}

	var overlay *graph.GraphOverlay
	if current != "" {
		overlay = &graph.GraphOverlay{CurrentState: current}
	}

	switch format {
	case "", FormatMermaid:
		return graph.GenerateMermaid(g, overlay), nil
	case FormatDOT:
		return graph.GenerateDOT(g, overlay), nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: %s, %s)", format, FormatMermaid, FormatDOT)
	}
}

// CollectStats compiles every actor and aggregates controller statistics.
func CollectStats(ctx context.Context, c *actormachine.Compiler) (report.Stats, error) {
	artifacts, err := c.CompileAll(ctx)
	if err != nil {
		return report.Stats{}, err
	}

	var s report.Stats
	for _, a := range artifacts {
		dispatches := make([]strategy.Dispatch, 0, len(a.Dispatch))
		for _, k := range strategy.Kinds() {
			if d, ok := a.Dispatch[k]; ok {
				dispatches = append(dispatches, d)
			}
		}
		s.Add(a.Graph, dispatches...)
	}
	return s, nil
}

// RunStats writes the statistics report, passed through render.
func RunStats(ctx context.Context, c *actormachine.Compiler, w io.Writer, render func(string) (string, error)) error {
	s, err := CollectStats(ctx, c)
	if err != nil {
		return err
	}
	out := report.Markdown(s)
	if render != nil {
		if out, err = render(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}
