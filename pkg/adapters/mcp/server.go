// Package mcp exposes read-only staff tools over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/goodcast/goodapi/pkg/ports"
)

const catalogURI = "goodapi://leafwatch/catalog"

// RecentEventsResponse is the structured result of the recent_events tool.
type RecentEventsResponse struct {
	Events []domain.Event `json:"events" jsonschema_description:"Most recent events, newest first"`
	Count  int            `json:"count" jsonschema_description:"Number of returned events"`
}

// PollResponse is the structured result of the get_poll tool.
type PollResponse struct {
	Poll   *domain.Poll `json:"poll" jsonschema_description:"The poll with its vote counts"`
	Ended  bool         `json:"ended" jsonschema_description:"Whether the poll stopped accepting votes"`
	Leader string       `json:"leader,omitempty" jsonschema_description:"Text of the option with most votes"`
}

// Server wraps the services and exposes them as an MCP server.
type Server struct {
	events    *leafwatch.Service
	polls     ports.PollStore
	mcpServer *server.MCPServer
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used by the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(events *leafwatch.Service, polls ports.PollStore, version string, opts ...Option) *Server {
	s := &Server{
		events:    events,
		polls:     polls,
		mcpServer: server.NewMCPServer("goodapi-mcp", strings.TrimSpace(version)),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
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
	recentTool := mcp.NewTool("recent_events",
		mcp.WithDescription("List the latest Leafwatch analytics events, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of events (optional)")),
		mcp.WithString("name", mcp.Description("Only return events with this name (optional)")),
		mcp.WithOutputSchema[RecentEventsResponse](),
	)
	s.mcpServer.AddTool(recentTool, mcp.NewStructuredToolHandler(s.handleRecentEvents))

	pollTool := mcp.NewTool("get_poll",
		mcp.WithDescription("Show a poll with its vote counts."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Poll ID")),
		mcp.WithOutputSchema[PollResponse](),
	)
	s.mcpServer.AddTool(pollTool, mcp.NewStructuredToolHandler(s.handleGetPoll))

	s.mcpServer.AddTool(mcp.NewTool("list_event_names",
		mcp.WithDescription("List every event name accepted by Leafwatch."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.events.Catalog().Names())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleRecentEvents(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RecentEventsResponse, error) {
	limit := 0
	if l, ok := args["limit"].(float64); ok {
		if l < 0 {
			return RecentEventsResponse{}, fmt.Errorf("limit must not be negative")
		}
		limit = int(l)
	}
	name, _ := args["name"].(string)

	// Filtering happens after the window is read, so limit applies first.
	events, err := s.events.Recent(ctx, limit)
	if err != nil {
		return RecentEventsResponse{}, fmt.Errorf("recent events: %w", err)
	}
	if name != "" {
		filtered := events[:0]
		for _, ev := range events {
			if ev.Name == name {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}
	return RecentEventsResponse{Events: events, Count: len(events)}, nil
}

func (s *Server) handleGetPoll(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PollResponse, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return PollResponse{}, fmt.Errorf("id is required")
	}

	poll, err := s.polls.GetPoll(ctx, id, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return PollResponse{}, fmt.Errorf("poll %s not found", id)
		}
		s.logger.Error("MCP get_poll failed", "id", id, "err", err)
		return PollResponse{}, fmt.Errorf("get poll: %w", err)
	}

	res := PollResponse{Poll: poll, Ended: poll.Ended(s.now())}
	best := 0
	for _, o := range poll.Options {
		if o.VoteCount > best {
			best = o.VoteCount
			res.Leader = o.Option
		}
	}
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Leafwatch Event Catalog",
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.events.Catalog().Tree())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
