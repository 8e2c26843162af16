// Package mcpadapter publishes a tool catalog over the Model Context Protocol. Every
// descriptor becomes an MCP tool whose calls go through the dispatcher, so validation,
// middleware and the error taxonomy are the same as over HTTP.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skosovsky/toolreg"
)

// Tools converts every descriptor of the dispatcher's catalog into an MCP server tool,
// in registration order.
func Tools(d *toolreg.Dispatcher) ([]server.ServerTool, error) {
	var tools []server.ServerTool
	for desc := range d.Catalog().List() {
		schema, err := json.Marshal(desc.InputSchema())
		if err != nil {
			return nil, fmt.Errorf("encode input schema of %s: %w", desc.Name(), err)
		}
		tools = append(tools, server.ServerTool{
			Tool:    mcp.NewToolWithRawSchema(desc.Name(), desc.Description(), schema),
			Handler: callHandler(d, desc.Name()),
		})
	}
	return tools, nil
}

// NewServer returns an MCP server exposing every tool of d.
func NewServer(d *toolreg.Dispatcher, name, version string, logger *slog.Logger) (*server.MCPServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tools, err := Tools(d)
	if err != nil {
		return nil, err
	}
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
	s.AddTools(tools...)
	logger.Info("MCP tools registered", "count", len(tools))
	return s, nil
}

// ServeStdio serves s over stdin/stdout until the input closes or the process is signalled.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type errorEnvelope struct {
	Error *toolreg.Failure `json:"error"`
}

// callHandler invokes the tool through the dispatcher. Tool failures are reported in-band as
// an IsError result carrying the error envelope, never as a protocol error.
func callHandler(d *toolreg.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := d.Invoke(ctx, toolreg.InvocationRequest{Tool: name, Args: req.GetArguments()})
		if res.Err != nil {
			return errorResult(res.Err), nil
		}
		text, err := json.Marshal(res.Value)
		if err != nil {
			return errorResult(toolreg.NewFailure(&toolreg.HandlerError{Tool: name, Err: err})), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: string(text),
				},
			},
		}, nil
	}
}

func errorResult(f *toolreg.Failure) *mcp.CallToolResult {
	text, err := json.Marshal(errorEnvelope{Error: f})
	if err != nil {
		text = []byte(f.Message)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(text),
			},
		},
		IsError: true,
	}
}
