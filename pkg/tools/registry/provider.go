// Package registry maps tool names to the providers that execute them.
// A FunctionProvider contributes tool declarations, an execution handler
// and optional HTTP routes.
//
// The FunctionRegistry decodes every call's arguments against the declared
// schema before the provider sees them, so handlers only ever receive
// well-typed input.
package registry

import (
	"context"
	"net/http"

	"github.com/rhuss/sandchat/pkg/tools"
)

// FunctionProvider is a pluggable built-in tool provider.
type FunctionProvider interface {
	// Name returns a unique identifier for this provider (e.g., "codeexec").
	Name() string

	// Tools returns the tool declarations this provider contributes.
	Tools() []tools.ToolSpec

	// Execute runs a tool call. args has already been decoded against the
	// tool's schema. A returned error is reported to the model as an error
	// result; it never aborts the conversation.
	Execute(ctx context.Context, call tools.ToolCall, args tools.Args) (*tools.ToolResult, error)

	// Routes returns HTTP endpoints that this provider exposes.
	Routes() []Route

	// Close releases any resources held by the provider.
	Close() error
}

// Route is an HTTP endpoint exposed by a provider.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
