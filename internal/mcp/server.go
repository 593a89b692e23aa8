package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/modflowai/mfai-mcp-server/internal/tools"
)

// Server exposes a tool registry over the MCP protocol.
type Server struct {
	mcpServer *server.MCPServer
	registry  *tools.Registry
}

// NewServer wraps the registry in an MCP server, registering every tool the
// registry holds.
func NewServer(registry *tools.Registry) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"MFAI Document Retrieval",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		registry: registry,
	}

	for _, tool := range registry.Tools() {
		s.mcpServer.AddTool(tool, s.dispatchHandler(tool.Name))
	}
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// dispatchHandler adapts a registry dispatch to an MCP tool handler. Any
// error becomes an error-flagged tool result carrying the message, so the
// calling agent can react instead of the connection failing.
func (s *Server) dispatchHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			args = map[string]interface{}{}
		}

		result, err := s.registry.Dispatch(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError("failed to encode tool result: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

// MountHTTPHandlers mounts the MCP endpoints on mux using the SSE transport.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
