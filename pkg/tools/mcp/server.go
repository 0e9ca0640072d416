package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/tools"
)

// DefaultPath is where the streamable HTTP handler is mounted.
const DefaultPath = "/mcp"

// Dispatcher lists and runs tools.
type Dispatcher interface {
	Specs() []tools.ToolSpec
	Dispatch(ctx context.Context, call tools.ToolCall) *tools.ToolResult
}

// Options configures the MCP server.
type Options struct {
	// Name and Version identify the server to MCP clients.
	Name    string
	Version string

	// Tools restricts the published tools. Empty publishes all of them.
	Tools []string
}

// NewServer creates an MCP server publishing the dispatcher's tools.
func NewServer(d Dispatcher, opts Options) *mcp.Server {
	if opts.Name == "" {
		opts.Name = "sandchat"
	}
	if opts.Version == "" {
		opts.Version = "v0.1.0"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil)

	specs := tools.FilterSpecs(d.Specs(), opts.Tools)
	for _, spec := range specs {
		server.AddTool(&mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.Schema.InputSchema(),
		}, toolHandler(d, spec.Name))
	}

	debug.Log("tools", "mcp server ready", "tools", len(specs))
	return server
}

// Handler returns a streamable HTTP handler serving s.
func Handler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}

func toolHandler(d Dispatcher, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			args = string(req.Params.Arguments)
		}

		call := tools.ToolCall{ID: api.NewCallID(), Name: name, Arguments: args}
		result := d.Dispatch(ctx, call)
		if result == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "unknown tool " + name}},
				IsError: true,
			}, nil
		}
		return convertResult(result), nil
	}
}

// convertResult renders a tool result as MCP content. Structured variants
// are also returned as structured content.
func convertResult(r *tools.ToolResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: r.ModelContent()}},
		IsError: r.IsError,
	}
	if !r.IsError && r.Output.Type != api.OutputText {
		out.StructuredContent = r.FunctionOutput()
	}
	return out
}
