package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamblocks/actormachine/api"
	"github.com/streamblocks/actormachine/internal/presentation/graph"
	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Engine is the compiler surface the server exposes.
type Engine interface {
	ListActors() ([]string, error)
	Graph(ctx context.Context, id string) (*controller.Graph, error)
	Dispatch(ctx context.Context, id string, kind strategy.Kind) (strategy.Dispatch, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves controller graphs and scheduling decisions over HTTP.
type Server struct {
	Engine   Engine
	Logger   *slog.Logger
	Version  string
	Strategy strategy.Kind
	Gatherer prometheus.Gatherer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithDefaultStrategy sets the strategy used when a request names none.
func WithDefaultStrategy(k strategy.Kind) Option {
	return func(s *Server) {
		s.Strategy = k
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// DecideRequest is the body of POST /actors/{id}/decide.
// State names the current state; an empty State means the initial one.
type DecideRequest struct {
	State    string             `json:"state,omitempty"`
	Snapshot condition.Snapshot `json:"snapshot"`
}

// DecideResponse reports the decision of one scheduling invocation.
type DecideResponse struct {
	Strategy    string `json:"strategy"`
	State       string `json:"state"`
	Fired       bool   `json:"fired"`
	Transition  string `json:"transition"`
	Target      string `json:"target"`
	Evaluations int    `json:"evaluations"`
}

// DispatchInfo describes a projected dispatch.
type DispatchInfo struct {
	Actor    string `json:"actor"`
	Strategy string `json:"strategy"`
	States   int    `json:"states"`
	Size     int    `json:"size"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Logger:   slog.Default(),
		Version:  "dev",
		Strategy: strategy.QuickJump,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.OpenAPI)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/actors", func(r chi.Router) {
		r.Get("/", s.ListActors)
		r.Route("/{id}", func(r chi.Router) {
			r.With(s.validate("/actors/{id}/graph")).Get("/graph", s.GetGraph)
			r.With(s.validate("/actors/{id}/graph.mmd")).Get("/graph.mmd", s.GetMermaid)
			r.With(s.validate("/actors/{id}/graph.dot")).Get("/graph.dot", s.GetDOT)
			r.With(s.validate("/actors/{id}/dispatch/{strategy}")).Get("/dispatch/{strategy}", s.GetDispatch)
			r.With(s.validate("/actors/{id}/decide")).Post("/decide", s.Decide)
		})
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":      "amc-http",
		"version":  s.Version,
		"strategy": string(s.Strategy),
	})
}

// ListActors handles the GET /actors request.
func (s *Server) ListActors(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ListActors()
	if err != nil {
		s.fail(w, "ListActors", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetGraph handles the GET /actors/{id}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

// GetMermaid handles the GET /actors/{id}/graph.mmd request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w, r)
	if !ok {
		return
	}
	o, ok := s.overlay(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, o))
}

// GetDOT handles the GET /actors/{id}/graph.dot request.
func (s *Server) GetDOT(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w, r)
	if !ok {
		return
	}
	o, ok := s.overlay(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	fmt.Fprint(w, graph.GenerateDOT(g, o))
}

// GetDispatch handles the GET /actors/{id}/dispatch/{strategy} request.
func (s *Server) GetDispatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name, err := pathParam(r, "strategy")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := strategy.ParseKind(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := s.Engine.Dispatch(r.Context(), id, kind)
	if err != nil {
		s.fail(w, "GetDispatch", err)
		return
	}
	s.writeJSON(w, http.StatusOK, DispatchInfo{
		Actor:    d.Graph().Actor,
		Strategy: string(d.Kind()),
		States:   len(d.Graph().States),
		Size:     d.Size(),
	})
}

// Decide handles the POST /actors/{id}/decide request.
// The strategy is taken from the "strategy" query parameter.
func (s *Server) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params, err := bindDecideParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Decide: Invalid request body", "error", err)
		return
	}

	kind := s.Strategy
	if params.Strategy != nil && *params.Strategy != "" {
		k, err := strategy.ParseKind(*params.Strategy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = k
	}

	d, err := s.Engine.Dispatch(r.Context(), id, kind)
	if err != nil {
		s.fail(w, "Decide", err)
		return
	}
	g := d.Graph()

	pc := controller.Initial
	if body.State != "" {
		var ok bool
		if pc, ok = g.Lookup(body.State); !ok {
			http.Error(w, fmt.Sprintf("unknown state %q", body.State), http.StatusBadRequest)
			return
		}
	}

	dec, err := d.Decide(r.Context(), pc, condition.Bind(g.Conditions, body.Snapshot))
	if err != nil {
		s.fail(w, "Decide", err)
		return
	}

	s.writeJSON(w, http.StatusOK, DecideResponse{
		Strategy:    string(kind),
		State:       g.States[pc].Name,
		Fired:       dec.Fired,
		Transition:  g.TransitionName(dec.Transition),
		Target:      g.States[dec.Target].Name,
		Evaluations: dec.Evaluations,
	})
}

// SubscribeEvents handles the GET /events request (SSE). Each event carries
// the ID of an actor whose description changed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE Client Disconnected")
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: changed\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) (*controller.Graph, bool) {
	id, err := pathParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	g, err := s.Engine.Graph(r.Context(), id)
	if err != nil {
		s.fail(w, "Graph", err)
		return nil, false
	}
	return g, true
}

func (s *Server) overlay(w http.ResponseWriter, r *http.Request) (*graph.GraphOverlay, bool) {
	params, err := bindGraphParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if params.Current == nil || *params.Current == "" {
		return nil, true
	}
	return &graph.GraphOverlay{CurrentState: *params.Current}, true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	var agg *domain.AggregateError
	var unknown *strategy.UnknownStrategyError
	switch {
	case errors.Is(err, domain.ErrActorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &agg):
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "invalid actor", "details": validationDetails(agg)})
	case errors.As(err, &unknown), errors.Is(err, condition.ErrUnknownPredicate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.Logger.Error(op+" failed", "error", err)
	}
}

func validationDetails(agg *domain.AggregateError) []string {
	out := make([]string, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		out = append(out, e.Error())
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>amc API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
