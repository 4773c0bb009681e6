// Package mcp exposes a walkthrough session to AI agents over the Model
// Context Protocol. The agent reads the current step and drives it with
// the same operations a user has: choose an action, go back, restart, jump
// to a step, pick a platform.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/internal/presentation/graph"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const (
	GraphURI        = "walkthrough://graph"
	GraphMermaidURI = "walkthrough://graph.mmd"
)

// StepResponse is the structured result of every tool.
type StepResponse struct {
	StepID   string          `json:"step_id" jsonschema_description:"The current step id"`
	Title    string          `json:"title" jsonschema_description:"The step title, or Error while an error is shown"`
	Text     string          `json:"text" jsonschema_description:"The step content as Markdown, filtered to the chosen platform"`
	Buttons  []domain.Button `json:"buttons" jsonschema_description:"Controls the user can activate, in display order"`
	History  []string        `json:"history" jsonschema_description:"The back stack, oldest first"`
	Platform string          `json:"platform,omitempty" jsonschema_description:"The chosen platform, empty when none"`
	URL      string          `json:"url" jsonschema_description:"The URL recorded for the current step"`
	Error    string          `json:"error,omitempty" jsonschema_description:"Why the last operation failed, if it did"`
}

type labelArgs struct {
	Label string `json:"label"`
}

type stepArgs struct {
	StepID string `json:"step_id"`
}

type platformArgs struct {
	Platform string `json:"platform"`
}

// Server wraps a walkthrough Engine and exposes it as an MCP Server.
type Server struct {
	engine    *walkthrough.Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance around eng.
func NewServer(eng *walkthrough.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    eng,
		mcpServer: server.NewMCPServer("walkthrough-mcp", strings.TrimSpace(walkthrough.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
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

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("current_step",
		mcp.WithDescription("Show the current step of the walkthrough: title, content and available buttons."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleCurrentStep))

	s.mcpServer.AddTool(mcp.NewTool("choose_action",
		mcp.WithDescription("Activate a button of the current step by its label. Use go_back for the Back control."),
		mcp.WithString("label", mcp.Required(), mcp.Description("The button label, as listed by current_step")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleChooseAction))

	s.mcpServer.AddTool(mcp.NewTool("enable_button",
		mcp.WithDescription("Enable a button that starts disabled, once its precondition is met."),
		mcp.WithString("label", mcp.Required(), mcp.Description("The button label")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleEnableButton))

	s.mcpServer.AddTool(mcp.NewTool("go_to",
		mcp.WithDescription("Jump directly to a step by id. Unknown ids show an error and keep the current step."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("The step id")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleGoTo))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previous step. Does nothing at the first step."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleGoBack))

	s.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Clear the history and return to the first step."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleRestart))

	s.mcpServer.AddTool(mcp.NewTool("set_platform",
		mcp.WithDescription("Choose the platform whose instructions are shown. An empty value forgets the choice."),
		mcp.WithString("platform", mcp.Description("mac, windows, linux, other or a custom value; empty to reset")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetPlatform))
}

func (s *Server) respond(opErr error) (StepResponse, error) {
	if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) {
		return StepResponse{}, opErr
	}
	v := s.engine.View()
	resp := StepResponse{
		StepID:   v.StepID,
		Title:    v.Title,
		Text:     v.Text,
		Buttons:  v.Buttons,
		History:  v.State.History,
		Platform: v.State.Platform,
		URL:      v.URL,
	}
	if resp.History == nil {
		resp.History = []string{}
	}
	if opErr != nil {
		s.logger.Debug("mcp operation failed", "step_id", v.StepID, "err", opErr)
		resp.Error = opErr.Error()
	} else if v.State.Error != "" {
		resp.Error = v.State.Error
	}
	return resp, nil
}

func (s *Server) handleCurrentStep(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	return s.respond(nil)
}

func (s *Server) handleChooseAction(ctx context.Context, request mcp.CallToolRequest, args labelArgs) (StepResponse, error) {
	id := args.Label
	if b, ok := s.findButton(args.Label); ok {
		id = b.ID
	}
	return s.respond(s.engine.Activate(ctx, id))
}

func (s *Server) handleEnableButton(ctx context.Context, request mcp.CallToolRequest, args labelArgs) (StepResponse, error) {
	id := args.Label
	if b, ok := s.findButton(args.Label); ok {
		id = b.ID
	}
	if !s.engine.EnableButton(id) {
		return s.respond(fmt.Errorf("%w: %s", domain.ErrButtonNotFound, args.Label))
	}
	return s.respond(nil)
}

func (s *Server) handleGoTo(ctx context.Context, request mcp.CallToolRequest, args stepArgs) (StepResponse, error) {
	return s.respond(s.engine.GoTo(ctx, args.StepID))
}

func (s *Server) handleGoBack(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	return s.respond(s.engine.GoBack(ctx))
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	return s.respond(s.engine.Restart(ctx))
}

func (s *Server) handleSetPlatform(ctx context.Context, request mcp.CallToolRequest, args platformArgs) (StepResponse, error) {
	platform := preference.Normalize(args.Platform)
	if platform == "" {
		return s.respond(s.engine.ResetPlatform(ctx))
	}
	return s.respond(s.engine.SetPlatform(ctx, platform))
}

// findButton matches a label case-insensitively, as agents rarely keep
// the exact casing.
func (s *Server) findButton(label string) (domain.Button, bool) {
	for _, b := range s.engine.Buttons() {
		if b.ID == label || strings.EqualFold(b.Label, label) || strings.EqualFold(b.ID, label) {
			return b, true
		}
	}
	return domain.Button{}, false
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Workflow Graph",
		mcp.WithResourceDescription("Every step of the walkthrough with its actions"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g := s.engine.Graph()
		if g == nil {
			return nil, domain.ErrNotReady
		}
		data, err := json.Marshal(map[string]any{
			"start_step": g.StartStep(),
			"steps":      g.Steps(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(GraphMermaidURI, "Workflow Graph (Mermaid)",
		mcp.WithResourceDescription("The walkthrough as a Mermaid flowchart, with the visited and current steps highlighted"),
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g := s.engine.Graph()
		if g == nil {
			return nil, domain.ErrNotReady
		}
		text := graph.GenerateMermaid(g, graph.OverlayFromState(s.engine.State()))
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphMermaidURI, MIMEType: "text/vnd.mermaid", Text: text},
		}, nil
	})
}
