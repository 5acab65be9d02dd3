package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// MockEngine compiles a fixed set of actors on demand.
type MockEngine struct {
	Actors    map[string]*domain.Actor
	WatchFunc func(ctx context.Context) (<-chan string, error)
}

func (m *MockEngine) ListActors() ([]string, error) {
	var ids []string
	for id := range m.Actors {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockEngine) Graph(_ context.Context, id string) (*controller.Graph, error) {
	a, ok := m.Actors[id]
	if !ok {
		return nil, fmt.Errorf("actor %s: %w", id, domain.ErrActorNotFound)
	}
	return controller.Build(domain.CompilationContext{}, a)
}

func (m *MockEngine) Dispatch(ctx context.Context, id string, kind strategy.Kind) (strategy.Dispatch, error) {
	g, err := m.Graph(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := strategy.New(kind)
	if err != nil {
		return nil, err
	}
	return s.Project(domain.CompilationContext{}, g)
}

func (m *MockEngine) Watch(ctx context.Context) (<-chan string, error) {
	if m.WatchFunc != nil {
		return m.WatchFunc(ctx)
	}
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func newMock() *MockEngine {
	return &MockEngine{Actors: map[string]*domain.Actor{
		"pass": {
			Name: "pass",
			Ports: []domain.Port{
				{Name: "a", Direction: domain.DirectionIn},
				{Name: "b", Direction: domain.DirectionOut},
			},
			Conditions:  []domain.Condition{domain.InputAvailable("a", 1), domain.OutputHasSpace("b", 1)},
			Transitions: domain.TransitionSet{{Name: "copy", Guard: []int{0, 1}}},
		},
		"guarded": {
			Name:        "guarded",
			Conditions:  []domain.Condition{domain.Predicate("x > 0")},
			Transitions: domain.TransitionSet{{Name: "go", Guard: []int{0}}},
		},
		"broken": {
			Name:        "broken",
			Transitions: domain.TransitionSet{{Name: "bad", Guard: []int{7}}},
		},
	}}
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Inspection(t *testing.T) {
	h := NewHandler(newMock(), WithVersion("1.0.0"))

	w := do(t, h, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)

	w = do(t, h, "GET", "/actors/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.ElementsMatch(t, []string{"pass", "guarded", "broken"}, ids)

	w = do(t, h, "GET", "/actors/pass/graph", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var g controller.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Equal(t, "pass", g.Actor)
	assert.Len(t, g.States, 1)

	w = do(t, h, "GET", "/actors/pass/graph.mmd?current=s0", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), "class s0 current;")

	w = do(t, h, "GET", "/actors/pass/graph.dot", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `digraph "pass"`)

	w = do(t, h, "GET", "/actors/pass/dispatch/straw-man", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var info DispatchInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, DispatchInfo{Actor: "pass", Strategy: "strawman", States: 1, Size: 2}, info)
}

func TestServer_Errors(t *testing.T) {
	h := NewHandler(newMock())

	w := do(t, h, "GET", "/actors/ghost/graph", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "GET", "/actors/broken/graph", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "out of range")

	w = do(t, h, "GET", "/actors/pass/dispatch/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/actors/pass/decide", DecideRequest{State: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest("POST", "/actors/pass/decide", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Decide(t *testing.T) {
	h := NewHandler(newMock())

	for _, kind := range strategy.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			body := DecideRequest{}
			body.Snapshot.Available = map[string]int{"a": 1}

			w := do(t, h, "POST", "/actors/pass/decide?strategy="+string(kind), body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp DecideResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Fired)
			assert.Equal(t, "copy", resp.Transition)
			assert.Equal(t, "s0", resp.Target)
			assert.Equal(t, string(kind), resp.Strategy)

			body.Snapshot.Available = nil
			w = do(t, h, "POST", "/actors/pass/decide?strategy="+string(kind), body)
			require.Equal(t, http.StatusOK, w.Code)
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Fired)
			assert.Equal(t, "stall", resp.Transition)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "amc_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	h := NewHandler(newMock(), WithMetrics(reg))
	w := do(t, h, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "amc_test_total 1")

	w = do(t, NewHandler(newMock()), "GET", "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	mock := newMock()
	mock.WatchFunc = func(ctx context.Context) (<-chan string, error) {
		ch := make(chan string, 1)
		ch <- "pass"
		close(ch)
		return ch, nil
	}
	h := NewHandler(mock)

	w := do(t, h, "GET", "/events", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: ping")
	assert.Contains(t, w.Body.String(), "event: changed\ndata: pass")
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Value("/actors/{id}/decide"))

	w := do(t, NewHandler(newMock()), "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operationId: decide")
}

func TestServer_DecideRequestValidation(t *testing.T) {
	h := NewHandler(newMock())

	tests := map[string]string{
		"negative tokens":  `{"snapshot": {"tokens": {"a": -1}}}`,
		"unknown field":    `{"snapshot": {}, "bogus": 1}`,
		"missing snapshot": `{"state": "s0"}`,
		"predicate type":   `{"snapshot": {"predicates": {"x > 0": "yes"}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/actors/pass/decide", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServer_DecideUnknownPredicate(t *testing.T) {
	h := NewHandler(newMock())

	w := do(t, h, "POST", "/actors/guarded/decide?strategy=strawman", DecideRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown predicate")

	body := DecideRequest{}
	body.Snapshot.Values = map[string]bool{"x > 0": true}
	w = do(t, h, "POST", "/actors/guarded/decide?strategy=strawman", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp DecideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "go", resp.Transition)
}
