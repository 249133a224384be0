package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/propspec/pkg/mcplog"
)

// loggingMiddleware records every tool call as a JSONL entry via the
// server's tool log. Only installed when that log is not nil.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			entry := mcplog.NewEntry(start, req.Params.Name, req.GetArguments(), result, err)
			entry.DurationMs = time.Since(start).Milliseconds()
			_ = s.logger.Write(entry)

			return result, err
		}
	}
}
