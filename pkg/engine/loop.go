package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/observability"
	"github.com/rhuss/sandchat/pkg/provider"
	"github.com/rhuss/sandchat/pkg/tools"
)

// State is a step of the orchestration loop.
type State int

const (
	StateAwaitingModelResponse State = iota
	StateInspectingResponse
	StateDispatchingTools
	StateAwaitingFollowupResponse
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModelResponse:
		return "awaiting_model_response"
	case StateInspectingResponse:
		return "inspecting_response"
	case StateDispatchingTools:
		return "dispatching_tools"
	case StateAwaitingFollowupResponse:
		return "awaiting_followup_response"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// conversation is the per-request state of the loop. Only the goroutine
// serving the request touches it.
type conversation struct {
	engine    *Engine
	requestID string
	state     State
	messages  []provider.ProviderMessage
	turns     int
	last      *tools.ToolResult
}

func (c *conversation) transition(to State, args ...any) {
	attrs := append([]any{"request_id", c.requestID, "from", c.state.String(), "to", to.String()}, args...)
	debug.Log("engine", "state transition", attrs...)
	c.state = to
}

func (c *conversation) run(ctx context.Context) (*api.ChatResponse, error) {
	c.state = StateAwaitingModelResponse
	debug.Log("engine", "chat started", "request_id", c.requestID, "messages", len(c.messages))

	resp, err := c.complete(ctx)
	if err != nil {
		return nil, err
	}

	for {
		c.transition(StateInspectingResponse, "tool_calls", len(resp.ToolCalls))
		if !resp.HasToolCalls() {
			break
		}
		if c.turns >= c.engine.cfg.maxTurns() {
			slog.Warn("max model turns reached",
				"request_id", c.requestID,
				"turns", c.turns,
				"pending_tool_calls", len(resp.ToolCalls),
			)
			break
		}

		c.transition(StateDispatchingTools)
		if c.dispatch(ctx, resp) == 0 {
			break
		}

		c.transition(StateAwaitingFollowupResponse)
		if resp, err = c.complete(ctx); err != nil {
			return nil, err
		}
	}

	c.transition(StateDone, "turns", c.turns)
	observability.ModelTurns.Observe(float64(c.turns))

	out := &api.ChatResponse{Response: resp.Text}
	if c.last != nil {
		out.FunctionOutput = c.last.FunctionOutput()
	}
	return out, nil
}

// complete sends the current conversation to the model service. This is the
// only place the loop blocks on network I/O.
func (c *conversation) complete(ctx context.Context) (*provider.ProviderResponse, error) {
	e := c.engine
	req := &provider.ProviderRequest{
		Model:       e.cfg.Model,
		Messages:    slices.Clone(c.messages),
		Tools:       e.toolDefs,
		Temperature: e.cfg.Temperature,
	}
	c.turns++

	provName := e.provider.Name()
	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	observability.ProviderLatency.WithLabelValues(provName, e.cfg.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(provName, e.cfg.Model, "error").Inc()
		return nil, fmt.Errorf("model turn %d: %w", c.turns, modelError(ctx, err))
	}

	observability.ProviderRequestsTotal.WithLabelValues(provName, e.cfg.Model, "success").Inc()
	observability.ProviderTokensTotal.WithLabelValues(provName, e.cfg.Model, "input").Add(float64(resp.Usage.InputTokens))
	observability.ProviderTokensTotal.WithLabelValues(provName, e.cfg.Model, "output").Add(float64(resp.Usage.OutputTokens))
	return resp, nil
}

// modelError keeps typed model service errors and wraps anything else.
func modelError(ctx context.Context, err error) *api.APIError {
	if ctx.Err() != nil {
		return api.NewModelError(fmt.Sprintf("model service call cancelled: %v", ctx.Err()))
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return api.NewModelError(err.Error())
}

// dispatched pairs a tool call with the result it produced.
type dispatched struct {
	call   tools.ToolCall
	result *tools.ToolResult
}

// dispatch runs the tool calls of resp and appends the assistant tool call
// message and the tool results to the conversation. Calls that produce no
// result (unknown or disabled tools) are left out of both. It returns the
// number of results produced.
func (c *conversation) dispatch(ctx context.Context, resp *provider.ProviderResponse) int {
	if c.engine.tools == nil {
		return 0
	}

	calls := make([]tools.ToolCall, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		id := tc.ID
		if id == "" {
			id = api.NewCallID()
		}
		calls = append(calls, tools.ToolCall{ID: id, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}

	filtered := tools.FilterAllowedTools(calls, c.engine.cfg.EnabledTools)
	for _, call := range filtered.Dropped {
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, "disabled").Inc()
		debug.Log("engine", "tool call dropped", "request_id", c.requestID, "tool", call.Name, "reason", "disabled")
	}

	done := c.runCalls(ctx, filtered.Allowed)
	if len(done) == 0 {
		return 0
	}
	c.last = done[len(done)-1].result

	issued := make([]provider.ProviderToolCall, 0, len(done))
	results := make([]provider.ProviderMessage, 0, len(done))
	for _, d := range done {
		issued = append(issued, provider.ProviderToolCall{
			ID:   d.call.ID,
			Type: "function",
			Function: provider.ProviderFunctionCall{
				Name:      d.call.Name,
				Arguments: d.call.Arguments,
			},
		})
		results = append(results, provider.ProviderMessage{
			Role:       provider.RoleTool,
			Content:    d.result.ModelContent(),
			ToolCallID: d.call.ID,
			Name:       d.call.Name,
		})
	}

	// The assistant message carrying the tool calls must precede the tool
	// role messages.
	c.messages = append(c.messages, provider.ProviderMessage{
		Role:      provider.RoleAssistant,
		Content:   resp.Text,
		ToolCalls: issued,
	})
	c.messages = append(c.messages, results...)
	return len(done)
}

// runCalls dispatches calls one after another, in model order, and returns
// the calls that produced a result, in the same order.
func (c *conversation) runCalls(ctx context.Context, calls []tools.ToolCall) []dispatched {
	var done []dispatched
	for _, call := range calls {
		res := c.engine.tools.Dispatch(ctx, call)
		if res == nil {
			observability.ToolExecutionsTotal.WithLabelValues(call.Name, "unknown").Inc()
			debug.Log("engine", "tool call dropped", "request_id", c.requestID, "tool", call.Name, "reason", "unknown")
			continue
		}

		status := "ok"
		if res.IsError {
			status = "error"
		}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, status).Inc()
		debug.Log("engine", "tool call finished", "request_id", c.requestID, "tool", call.Name, "call_id", call.ID, "status", status)

		done = append(done, dispatched{call: call, result: res})
	}
	return done
}
