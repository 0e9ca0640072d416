package engine

import (
	"context"
	"fmt"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/provider"
	"github.com/rhuss/sandchat/pkg/tools"
	"github.com/rhuss/sandchat/pkg/transport"
)

// Dispatcher runs tool calls. *registry.FunctionRegistry implements it.
// Dispatch returns nil when the tool is unknown.
type Dispatcher interface {
	Specs() []tools.ToolSpec
	Dispatch(ctx context.Context, call tools.ToolCall) *tools.ToolResult
}

// Engine orchestrates chat requests between the transport layer, the model
// service and the tool registry. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	provider provider.Provider
	tools    Dispatcher
	cfg      Config
	toolDefs []provider.ProviderTool
}

// Ensure Engine implements transport.ChatHandler at compile time.
var _ transport.ChatHandler = (*Engine)(nil)

// New creates a new Engine. The provider must not be nil. A nil dispatcher
// disables tool use.
func New(p provider.Provider, d Dispatcher, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}

	e := &Engine{
		provider: p,
		tools:    d,
		cfg:      cfg.clone(),
	}
	if d != nil {
		for _, spec := range tools.FilterSpecs(d.Specs(), e.cfg.EnabledTools) {
			e.toolDefs = append(e.toolDefs, provider.ProviderTool{
				Type: "function",
				Function: provider.ProviderFunctionDef{
					Name:        spec.Name,
					Description: spec.Description,
					Parameters:  spec.Schema.JSONSchema(),
				},
			})
		}
	}
	return e, nil
}

// Chat runs one conversational turn. The request history is never modified.
func (e *Engine) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	if _, ok := req.LastUserMessage(); !ok {
		return nil, api.NewInvalidRequestError("messages", "the last message must come from the user")
	}

	c := &conversation{
		engine:    e,
		requestID: transport.RequestIDFromContext(ctx),
		messages:  e.initialMessages(req.Messages),
	}
	return c.run(ctx)
}

// ToolNames returns the tools declared to the model service.
func (e *Engine) ToolNames() []string {
	names := make([]string, len(e.toolDefs))
	for i, t := range e.toolDefs {
		names[i] = t.Function.Name
	}
	return names
}

// initialMessages builds a fresh provider conversation from the history.
func (e *Engine) initialMessages(history []api.Message) []provider.ProviderMessage {
	msgs := make([]provider.ProviderMessage, 0, len(history)+1)
	if e.cfg.SystemPrompt != "" {
		msgs = append(msgs, provider.ProviderMessage{Role: provider.RoleSystem, Content: e.cfg.SystemPrompt})
	}
	for _, m := range history {
		msgs = append(msgs, provider.ProviderMessage{Role: string(m.Role), Content: m.Content})
	}
	return msgs
}
