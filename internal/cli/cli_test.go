package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/internal/testutils"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

const pairsumDoc = `
name: pairsum
ports:
  - {name: in, direction: in, type: int}
  - {name: out, direction: out, type: int, capacity: 1}
scopes:
  - name: state
    persistent: true
    variables: [{name: sum, type: int, init: 0}]
  - name: local
    variables: [{name: tok, type: int}]
states: [first, second]
conditions:
  - {input: in}
  - {space: out}
transitions:
  - name: add
    from: first
    to: second
    guard: [0]
    body:
      - {read: in, into: tok}
      - {assign: sum, value: "sum + tok"}
  - name: emit
    from: second
    to: first
    guard: [0, 1]
    body:
      - {read: in, into: tok}
      - {assign: sum, value: "sum + tok"}
      - {write: out, value: sum}
`

func newFileCompiler(t *testing.T, files map[string]string, opts Options) *actormachine.Compiler {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteActors(t, dir, files)

	opts.Dir = dir
	opts.Source = SourceFile
	c, closer, err := NewCompiler(opts, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	return c
}

func TestParseInputs(t *testing.T) {
	got, err := ParseInputs([]string{"in=1, 2, 3", "flag=true", "in=4", "name=abc,2.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]any{
		"in":   {1, 2, 3, 4},
		"flag": {true},
		"name": {"abc", 2.5},
	}, got)

	_, err = ParseInputs([]string{"missing-separator"})
	assert.Error(t, err)
	_, err = ParseInputs([]string{"=1"})
	assert.Error(t, err)
}

func TestNewCompiler_UnknownSource(t *testing.T) {
	_, _, err := NewCompiler(Options{Dir: t.TempDir(), Source: "ftp"}, logging.NewNop(), domain.LifecycleHooks{})
	assert.ErrorContains(t, err, "unknown source")
}

func TestNewCompiler_MissingEvaluatorConfig(t *testing.T) {
	opts := Options{Dir: t.TempDir(), Source: SourceFile, Evaluator: filepath.Join(t.TempDir(), "missing.yaml")}
	_, _, err := NewCompiler(opts, logging.NewNop(), domain.LifecycleHooks{})
	assert.Error(t, err)
}

func TestNewCompiler_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc}, Options{Redis: mr.Addr()})

	first, err := c.Compile(context.Background(), "pairsum")
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), "pairsum")
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	assert.Len(t, second.Graph.States, 2)
	assert.NoError(t, second.Graph.Validate())
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], CachePrefix), "key %q should be namespaced", keys[0])
}

func TestNewCompiler_RedisUnreachable(t *testing.T) {
	_, _, err := NewCompiler(Options{Dir: t.TempDir(), Source: SourceFile, Redis: "127.0.0.1:1"}, logging.NewNop(), domain.LifecycleHooks{})
	assert.ErrorContains(t, err, "redis")
}

func TestRunBuild_JSON(t *testing.T) {
	c := newFileCompiler(t, map[string]string{
		"pairsum.yaml":  pairsumDoc,
		"lib/inert.yml": "name: inert",
	}, Options{})

	var out bytes.Buffer
	require.NoError(t, RunBuild(context.Background(), c, &out, true))

	var results []BuildResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	assert.Equal(t, "lib/inert", results[0].Actor)
	assert.Equal(t, 1, results[0].States)
	assert.Equal(t, "pairsum", results[1].Actor)
	assert.Equal(t, 2, results[1].States)
	assert.Equal(t, 2, results[1].Transitions)
	assert.Len(t, results[1].Dispatch, len(strategy.Kinds()))
	assert.Len(t, results[1].Key, 64)
}

func TestRunBuild_Text(t *testing.T) {
	doc := "name: orphaned\nstates: [a, b]\ntransitions: [{name: t, from: b, to: a}]"
	c := newFileCompiler(t, map[string]string{"orphaned.yaml": doc}, Options{})

	var out bytes.Buffer
	require.NoError(t, RunBuild(context.Background(), c, &out, false))
	assert.Contains(t, out.String(), "orphaned")
	assert.Contains(t, out.String(), `unreachable state "b" pruned`)
}

func TestRunValidate(t *testing.T) {
	c := newFileCompiler(t, map[string]string{
		"pairsum.yaml": pairsumDoc,
		"broken.yaml":  "name: broken\ntransitions: [{name: t, guard: [3]}]",
	}, Options{})

	var out bytes.Buffer
	err := RunValidate(context.Background(), c, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 actors are invalid")
	assert.Contains(t, out.String(), "✘ broken")
	assert.Contains(t, out.String(), "condition index 3 out of range")
	assert.Contains(t, out.String(), "✔ pairsum")

	pairsum, err := c.Compile(context.Background(), "pairsum")
	require.NoError(t, err)
	assert.Len(t, pairsum.Graph.States, 2)
	assert.Equal(t, 1, pairsum.Actor.Ports[1].Capacity)
	assert.Equal(t, []int{0, 1}, pairsum.Actor.Transitions[1].Guard)
}

func TestRunSimulate(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc}, Options{})
	inputs, err := ParseInputs([]string{"in=1,2,3,4"})
	require.NoError(t, err)

	for _, kind := range strategy.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			var out bytes.Buffer
			trace, err := RunSimulate(context.Background(), c, SimulateOptions{
				Actor:    "pairsum",
				Strategy: kind,
				Inputs:   inputs,
				MaxSteps: 10,
			}, &out, logging.NewNop())
			require.NoError(t, err)

			assert.Equal(t, 3, trace.Fired())
			assert.Equal(t, []any{3}, trace.Final.Outputs["out"])
			assert.Contains(t, out.String(), `3 transitions fired, stalled in "second"`)
			assert.Contains(t, out.String(), "out: [3]")
		})
	}
}

func TestRunSimulate_JSON(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc}, Options{})

	var out bytes.Buffer
	_, err := RunSimulate(context.Background(), c, SimulateOptions{
		Actor:    "pairsum",
		Strategy: strategy.StrawMan,
		Inputs:   map[string][]any{"in": {5}},
		JSON:     true,
	}, &out, logging.NewNop())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, "two steps and the final instance")

	var final domain.Instance
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &final))
	assert.Equal(t, "second", final.State)
	assert.Equal(t, domain.StatusStalled, final.Status)
}

func TestRunSimulate_UnknownPort(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc}, Options{})

	_, err := RunSimulate(context.Background(), c, SimulateOptions{
		Actor:    "pairsum",
		Strategy: strategy.QuickJump,
		Inputs:   map[string][]any{"out": {1}},
	}, &bytes.Buffer{}, logging.NewNop())
	assert.ErrorContains(t, err, `no input port "out"`)
}

func TestRenderGraph(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc}, Options{})
	ctx := context.Background()

	mermaid, err := RenderGraph(ctx, c, "", FormatMermaid, "second")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mermaid, "graph TD"))
	assert.Contains(t, mermaid, "second")

	dot, err := RenderGraph(ctx, c, "pairsum", FormatDOT, "")
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph")

	_, err = RenderGraph(ctx, c, "pairsum", "svg", "")
	assert.ErrorContains(t, err, "unknown format")
}

func TestRenderGraph_RequiresActorChoice(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc, "inert.yaml": "name: inert"}, Options{})

	_, err := RenderGraph(context.Background(), c, "", FormatMermaid, "")
	assert.ErrorContains(t, err, "choose one with --actor")
}

func TestRunStats(t *testing.T) {
	c := newFileCompiler(t, map[string]string{"pairsum.yaml": pairsumDoc, "inert.yaml": "name: inert"}, Options{})

	var out bytes.Buffer
	require.NoError(t, RunStats(context.Background(), c, &out, nil))
	assert.Contains(t, out.String(), "# Actor Machine Statistics")
	assert.Contains(t, out.String(), "- Actors: **2**")
	assert.Contains(t, out.String(), "- Sum of states: **3**")

	out.Reset()
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	require.NoError(t, RunStats(context.Background(), c, &out, upper))
	assert.Contains(t, out.String(), "# ACTOR MACHINE STATISTICS")
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, RunInit(context.Background(), dir, &out))
	assert.Contains(t, out.String(), "Created actor 'pairsum'.")

	c, closer, err := NewCompiler(Options{Dir: dir}, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	defer closer()

	out.Reset()
	require.NoError(t, RunValidate(context.Background(), c, &out))
	assert.Contains(t, out.String(), "✔ passthrough")
	assert.Contains(t, out.String(), "✔ pairsum")

	trace, err := RunSimulate(context.Background(), c, SimulateOptions{
		Actor:    "passthrough",
		Strategy: strategy.FSM,
		Inputs:   map[string][]any{"in": {7, 8, 9}},
	}, &bytes.Buffer{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []any{7, 8}, trace.Final.Outputs["out"])
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchBuild_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteActors(t, dir, map[string]string{"pairsum.yaml": pairsumDoc})
	c, closer, err := NewCompiler(Options{Dir: dir, Source: SourceFile}, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	defer closer()

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- WatchBuild(ctx, c, out, false, logging.NewNop()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Waiting for changes")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "inert.yaml"), []byte("name: inert\n"), 0644))
	assert.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "Change detected") && strings.Contains(s, "inert ")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sc := NewSignalContext(parent)
	cancel()

	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("signal context should follow its parent")
	}
	assert.Nil(t, sc.Signal())
}
