// Package mcp exposes the machine catalogue and runner as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/utm/internal/dto"
	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/internal/presentation/graph"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MachinesURI is the resource listing every machine description.
const MachinesURI = "utm://machines"

// RunResponse is the structured result of run_machine.
type RunResponse struct {
	Run   *domain.RunRecord `json:"run" jsonschema_description:"The run record, including the final tape"`
	Error string            `json:"error,omitempty" jsonschema_description:"Why the run stopped without halting"`
}

// GraphArgs selects a machine.
type GraphArgs struct {
	Name string `json:"name"`
}

// Server wraps a machine loader and a runner as an MCP Server.
type Server struct {
	loader    ports.MachineLoader
	runner    *runner.Runner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(loader ports.MachineLoader, r *runner.Runner, version string, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		runner:    r,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("utm-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = runner.NewRunner(runner.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
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
	runTool := mcp.NewTool("run_machine",
		mcp.WithDescription("Run a machine on an input string until it accepts, rejects or exhausts its step budget."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name, as listed by list_machines")),
		mcp.WithString("input", mcp.Description("Initial tape contents, one symbol per character")),
		mcp.WithNumber("max_steps", mcp.Description("Step budget for this run (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunMachine))

	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the machines available to run_machine."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		views, err := s.machines()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, _ := json.Marshal(views)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the Mermaid state diagram of a machine."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Machine name")),
	), mcp.NewTypedToolHandler(s.handleGetGraph))
}

func (s *Server) handleRunMachine(ctx context.Context, request mcp.CallToolRequest, args dto.RunRequest) (RunResponse, error) {
	desc, err := s.loader.Load(args.Machine)
	if err != nil {
		return RunResponse{}, err
	}
	r := s.runner
	if args.MaxSteps > 0 {
		bounded := *r
		bounded.MaxSteps = args.MaxSteps
		r = &bounded
	}
	rec, err := r.Run(ctx, desc, args.Input)
	if rec == nil {
		return RunResponse{}, err
	}
	resp := RunResponse{Run: rec}
	if err != nil {
		if !isRunFault(err) {
			return RunResponse{}, err
		}
		resp.Error = err.Error()
	}
	return resp, nil
}

// isRunFault reports errors that end a run without failing the tool call.
func isRunFault(err error) bool {
	return errors.Is(err, domain.ErrStepBudgetExceeded) || errors.Is(err, domain.ErrUndefinedTransition)
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest, args GraphArgs) (*mcp.CallToolResult, error) {
	desc, err := s.loader.Load(args.Name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(desc, nil)), nil
}

func (s *Server) machines() ([]dto.MachineView, error) {
	names, err := s.loader.List()
	if err != nil {
		return nil, err
	}
	views := make([]dto.MachineView, 0, len(names))
	for _, name := range names {
		desc, err := s.loader.Load(name)
		if err != nil {
			return nil, err
		}
		views = append(views, dto.FromDescription(desc))
	}
	return views, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MachinesURI, "Machine Descriptions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		views, err := s.machines()
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		jsonBytes, _ := json.Marshal(views)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      MachinesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
