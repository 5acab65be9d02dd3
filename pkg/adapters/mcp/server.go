package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/streamblocks/actormachine/internal/presentation/graph"
	"github.com/streamblocks/actormachine/pkg/condition"
	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

// DecideResult is the structured output of the decide tool.
type DecideResult struct {
	Strategy    string `json:"strategy" jsonschema_description:"Controller strategy that took the decision"`
	State       string `json:"state" jsonschema_description:"State the decision was taken in"`
	Fired       bool   `json:"fired" jsonschema_description:"False when the controller stalls"`
	Transition  string `json:"transition" jsonschema_description:"Name of the fired transition, or stall"`
	Target      string `json:"target" jsonschema_description:"Next state"`
	Evaluations int    `json:"evaluations" jsonschema_description:"Number of condition evaluations performed"`
}

// Engine defines what the MCP server needs from the compiler.
type Engine interface {
	ListActors() ([]string, error)
	Graph(ctx context.Context, id string) (*controller.Graph, error)
	Dispatch(ctx context.Context, id string, kind strategy.Kind) (strategy.Dispatch, error)
}

// Server exposes controller compilation as MCP tools.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("amc-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_actors",
		mcp.WithDescription("List the IDs of all actor descriptions known to the compiler."),
	), s.handleListActors)

	s.mcpServer.AddTool(mcp.NewTool("get_controller",
		mcp.WithDescription("Get the controller graph of an actor as JSON (states, ordered alternatives, pruned states, diagnostics)."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Actor ID")),
	), s.handleGetController)

	s.mcpServer.AddTool(mcp.NewTool("render_controller",
		mcp.WithDescription("Render the controller graph of an actor as Mermaid or Graphviz DOT."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Actor ID")),
		mcp.WithString("format", mcp.Description("mermaid (default) or dot")),
	), s.handleRenderController)

	decideTool := mcp.NewTool("decide",
		mcp.WithDescription("Run one scheduling decision of an actor controller against a channel and predicate snapshot."),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Actor ID")),
		mcp.WithString("strategy", mcp.Description("fsm, branching, quickjump or strawman (default quickjump)")),
		mcp.WithString("state", mcp.Description("Current state name (default: initial state)")),
		mcp.WithString("snapshot", mcp.Description(`JSON object {"tokens": {port: n}, "space": {port: n}, "predicates": {expr: bool}}`)),
		mcp.WithOutputSchema[DecideResult](),
	)
	s.mcpServer.AddTool(decideTool, mcp.NewStructuredToolHandler(s.handleDecide))
}

func (s *Server) handleListActors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.ListActors()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetController(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.engine.Graph(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile failed: %v", err)), nil
	}
	jsonBytes, _ := json.MarshalIndent(g, "", "  ")
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRenderController(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("actor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.engine.Graph(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile failed: %v", err)), nil
	}

	switch format := request.GetString("format", "mermaid"); format {
	case "mermaid", "mmd":
		return mcp.NewToolResultText(graph.GenerateMermaid(g, nil)), nil
	case "dot", "graphviz":
		return mcp.NewToolResultText(graph.GenerateDOT(g, nil)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}
}

func (s *Server) handleDecide(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DecideResult, error) {
	id, _ := args["actor"].(string)

	kind := strategy.QuickJump
	if name, ok := args["strategy"].(string); ok && name != "" {
		k, err := strategy.ParseKind(name)
		if err != nil {
			return DecideResult{}, err
		}
		kind = k
	}

	var snap condition.Snapshot
	if raw, ok := args["snapshot"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return DecideResult{}, fmt.Errorf("invalid snapshot: %w", err)
		}
	}

	d, err := s.engine.Dispatch(ctx, id, kind)
	if err != nil {
		return DecideResult{}, fmt.Errorf("compile failed: %w", err)
	}
	g := d.Graph()

	pc := controller.Initial
	if name, ok := args["state"].(string); ok && name != "" {
		if pc, ok = g.Lookup(name); !ok {
			return DecideResult{}, fmt.Errorf("unknown state %q", name)
		}
	}

	dec, err := d.Decide(ctx, pc, condition.Bind(g.Conditions, snap))
	if err != nil {
		s.logger.Error("MCP Decide failed", "actor", id, "error", err)
		return DecideResult{}, err
	}

	return DecideResult{
		Strategy:    string(kind),
		State:       g.States[pc].Name,
		Fired:       dec.Fired,
		Transition:  g.TransitionName(dec.Transition),
		Target:      g.States[dec.Target].Name,
		Evaluations: dec.Evaluations,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("actormachine://actors", "Known Actors",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.ListActors()
		if err != nil {
			return nil, fmt.Errorf("failed to list actors: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "actormachine://actors",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
