// Package mcp exposes prop extraction as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/propspec/pkg/mcplog"
	"github.com/gnana997/propspec/pkg/props"
	"github.com/gnana997/propspec/pkg/scanner"
)

const serverVersion = "0.1.0-dev"

// Config configures the MCP server.
type Config struct {
	// Root resolves relative paths in tool arguments. Empty means the
	// working directory.
	Root string
	// Scan is the discovery configuration used by scan_props.
	Scan scanner.ScanConfig
	// Exclude is applied when a tool call names no categories.
	Exclude []props.Category
}

// Server implements the MCP server for propspec.
type Server struct {
	mcpServer *server.MCPServer
	ext       *props.Extractor
	config    Config
	logger    *mcplog.Logger // may be nil
}

// NewServer creates a new MCP server backed by ext. When toolLog is not nil
// every tool call is appended to it.
func NewServer(ext *props.Extractor, config Config, toolLog *mcplog.Logger) *Server {
	s := &Server{ext: ext, config: config, logger: toolLog}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if toolLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("propspec", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: extractPropsTool(), Handler: s.handleExtractProps},
		server.ServerTool{Tool: scanPropsTool(), Handler: s.handleScanProps},
	)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
