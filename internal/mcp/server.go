// Package mcp exposes the live workout to assistants over the Model
// Context Protocol. All tools are read-only.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// StatusSource reports the engine's current snapshot.
type StatusSource interface {
	Status() engine.Status
}

// New creates an MCP server with all tools and resources registered.
func New(status StatusSource, history domain.HistoryStore, version string, log *logger.Logger) *server.MCPServer {
	s := server.NewMCPServer("OttoLift", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("OttoLift workout server. Inspect the active session, running timers, finished workouts and personal bests."),
	)

	h := &handlers{status: status, history: history, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetActiveSession, Handler: h.getActiveSession},
		server.ServerTool{Tool: toolGetTimers, Handler: h.getTimers},
		server.ServerTool{Tool: toolListHistory, Handler: h.listHistory},
		server.ServerTool{Tool: toolGetPersonalBests, Handler: h.getPersonalBests},
	)

	s.AddResources(
		server.ServerResource{Resource: resActiveSession, Handler: h.activeSession},
	)

	return s
}

// Handler wraps s in the streamable HTTP transport.
func Handler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	status  StatusSource
	history domain.HistoryStore
	log     *logger.Logger
}

// --- Resource definitions ---

const activeSessionURI = "ottolift://active_session"

var resActiveSession = mcp.NewResource(
	activeSessionURI,
	"Active Session",
	mcp.WithResourceDescription("The workout in progress with every exercise and set, or null"),
	mcp.WithMIMEType("application/json"),
)
