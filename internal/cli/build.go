package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// BuildResult summarizes one compiled actor.
type BuildResult struct {
	Actor       string         `json:"actor"`
	States      int            `json:"states"`
	Conditions  int            `json:"conditions"`
	Transitions int            `json:"transitions"`
	Pruned      []string       `json:"pruned,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Dispatch    map[string]int `json:"dispatch"`
	Key         string         `json:"key"`
}

func summarize(a *actormachine.Artifact) BuildResult {
	r := BuildResult{
		Actor:       a.ID,
		States:      len(a.Graph.States),
		Conditions:  len(a.Graph.Conditions),
		Transitions: len(a.Graph.Transitions),
		Pruned:      a.Graph.Pruned,
		Diagnostics: a.Graph.Diagnostics,
		Dispatch:    make(map[string]int, len(a.Dispatch)),
		Key:         a.Key,
	}
	for kind, d := range a.Dispatch {
		r.Dispatch[string(kind)] = d.Size()
	}
	return r
}

// RunBuild compiles every actor and writes one summary per actor.
func RunBuild(ctx context.Context, c *actormachine.Compiler, w io.Writer, jsonOut bool) error {
	artifacts, err := c.CompileAll(ctx)
	if err != nil {
		return err
	}

	results := make([]BuildResult, 0, len(artifacts))
	for _, a := range artifacts {
		results = append(results, summarize(a))
	}
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "%-24s %3d states %3d conditions %3d transitions  %s\n",
			r.Actor, r.States, r.Conditions, r.Transitions, dispatchSizes(r.Dispatch))
		for _, p := range r.Pruned {
			fmt.Fprintf(w, "  unreachable state %q pruned\n", p)
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	return nil
}

func dispatchSizes(sizes map[string]int) string {
	kinds := make([]string, 0, len(sizes))
	for k := range sizes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", k, sizes[k])
	}
	return out
}

// WatchBuild builds once and rebuilds on every description change until ctx
// is done. Build failures are reported and the watch goes on.
func WatchBuild(ctx context.Context, c *actormachine.Compiler, w io.Writer, jsonOut bool, logger *slog.Logger) error {
	events, err := c.Watch(ctx)
	if err != nil {
		return err
	}

	rebuild := func() {
		if err := RunBuild(ctx, c, w, jsonOut); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Build failed", "err", err)
			printSystemMessage(w, "Build failed: %v", err)
		}
	}

	rebuild()
	printSystemMessage(w, "Waiting for changes...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			changed := debounce(ctx, events, id, 100*time.Millisecond)
			logger.Info("Change detected, rebuilding", "actors", changed)
			printSystemMessage(w, "Change detected in %v.", changed)
			rebuild()
		}
	}
}

// debounce collects the IDs arriving on events until it is quiet for d.
func debounce(ctx context.Context, events <-chan string, first string, d time.Duration) []string {
	seen := map[string]bool{first: true}
	ids := []string{first}
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ids
		case <-timer.C:
			return ids
		case id, ok := <-events:
			if !ok {
				return ids
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
			timer.Reset(d)
		}
	}
}

// RunValidate compiles every actor independently and reports each result.
// It returns an error when at least one actor is invalid.
func RunValidate(ctx context.Context, c *actormachine.Compiler, w io.Writer) error {
	ids, err := c.ListActors()
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range ids {
		a, err := c.Compile(ctx, id)
		if err != nil {
			failed++
			fmt.Fprintf(w, "✘ %s\n", id)
			var agg *domain.AggregateError
			if errors.As(err, &agg) {
				for _, e := range agg.Errors {
					fmt.Fprintf(w, "    %v\n", e)
				}
			} else {
				fmt.Fprintf(w, "    %v\n", err)
			}
			continue
		}
		fmt.Fprintf(w, "✔ %s\n", id)
		for _, p := range a.Graph.Pruned {
			fmt.Fprintf(w, "    warning: unreachable state %q\n", p)
		}
		for _, d := range a.Graph.Diagnostics {
			fmt.Fprintf(w, "    warning: %s\n", d)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d actors are invalid", failed, len(ids))
	}
	return nil
}
