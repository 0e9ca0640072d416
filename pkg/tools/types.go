package tools

import (
	"encoding/json"

	"github.com/rhuss/sandchat/pkg/api"
)

// ToolCall represents a model's request to invoke a tool.
type ToolCall struct {
	// ID is the call identifier assigned by the model service.
	ID string

	// Name is the tool function name.
	Name string

	// Arguments is the JSON-encoded arguments object.
	Arguments string
}

// ToolResult is the outcome of one tool invocation. Output holds exactly one
// populated variant.
type ToolResult struct {
	// CallID matches the originating ToolCall.ID.
	CallID string

	// Name is the tool that produced the result.
	Name string

	Output api.FunctionOutput

	// IsError indicates that Output.Text is an error message.
	IsError bool
}

// ModelContent renders the result as the function response sent back to the
// model service: text variants verbatim, structured variants as JSON.
func (r *ToolResult) ModelContent() string {
	switch r.Output.Type {
	case api.OutputChart:
		return marshalOrText(r.Output.Chart, r.Output.Text)
	case api.OutputQuiz:
		return marshalOrText(r.Output.Quiz, r.Output.Text)
	case api.OutputDiagram:
		return r.Output.Diagram
	default:
		return r.Output.Text
	}
}

// FunctionOutput returns the wire form of the result.
func (r *ToolResult) FunctionOutput() *api.FunctionOutput {
	out := r.Output
	out.Name = r.Name
	out.IsError = r.IsError
	return &out
}

func marshalOrText(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}

// TextResult creates a successful text result.
func TextResult(call ToolCall, text string) *ToolResult {
	return &ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Output: api.FunctionOutput{Type: api.OutputText, Text: text},
	}
}

// ErrorResult creates a text result flagged as an error. Tool failures are
// reported to the model this way so the conversation can continue.
func ErrorResult(call ToolCall, message string) *ToolResult {
	return &ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Output:  api.FunctionOutput{Type: api.OutputText, Text: message},
		IsError: true,
	}
}

// ToolSpec declares a tool to the model service.
type ToolSpec struct {
	Name        string
	Description string
	Schema      Schema
}
