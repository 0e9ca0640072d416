// Package codeexec provides the execute_python tool and the POST /execute
// endpoint. Both run source through the code policy and then the sandbox.
package codeexec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/observability"
	"github.com/rhuss/sandchat/pkg/policy"
	"github.com/rhuss/sandchat/pkg/sandbox"
	"github.com/rhuss/sandchat/pkg/tools"
	"github.com/rhuss/sandchat/pkg/tools/registry"
	"github.com/rhuss/sandchat/pkg/transport"
)

// ToolName is the name the model uses to request code execution.
const ToolName = "execute_python"

// maxBodySize limits POST /execute request bodies.
const maxBodySize = 1 << 20

var _ registry.FunctionProvider = (*Provider)(nil)

// Runner executes validated snippets. *sandbox.Executor implements it.
type Runner interface {
	Execute(ctx context.Context, snip policy.Snippet) sandbox.Result
}

// Provider is a FunctionProvider that validates and runs Python snippets.
type Provider struct {
	runner     Runner
	policy     *policy.Policy
	validation api.ValidationConfig
}

// New creates a Provider. A nil policy selects policy.Default().
func New(runner Runner, pol *policy.Policy) *Provider {
	if pol == nil {
		pol = policy.Default()
	}
	return &Provider{
		runner:     runner,
		policy:     pol,
		validation: api.DefaultValidationConfig(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "codeexec"
}

// Tools returns the execute_python declaration.
func (p *Provider) Tools() []tools.ToolSpec {
	return []tools.ToolSpec{{
		Name: ToolName,
		Description: "Execute a short Python snippet and return what it prints. " +
			"Only these modules may be imported: " + strings.Join(p.policy.AllowedModules(), ", ") + ". " +
			"No file, network or process access. Print the values you need.",
		Schema: tools.Schema{Params: []tools.Param{
			{Name: "code", Type: tools.TypeString, Required: true, Description: "Python source to execute"},
		}},
	}}
}

// Run validates src and executes it. A policy rejection is returned as a
// validation_rejected Result without starting a process.
func (p *Provider) Run(ctx context.Context, src string) sandbox.Result {
	snip, err := p.policy.Check(src)
	if err != nil {
		var rej *policy.RejectionError
		if errors.As(err, &rej) {
			observability.PolicyRejectionsTotal.WithLabelValues(string(rej.Rule)).Inc()
			debug.Log("policy", "snippet rejected", "rule", rej.Rule, "match", rej.Match)
		}
		return sandbox.Fail(sandbox.KindValidationRejected, api.MessageRejectedCode)
	}
	return p.runner.Execute(ctx, snip)
}

// Execute runs the execute_python tool. Every outcome becomes a text result;
// failures are flagged as errors so the model can react to them.
func (p *Provider) Execute(ctx context.Context, call tools.ToolCall, args tools.Args) (*tools.ToolResult, error) {
	res := p.Run(ctx, args.String("code"))
	if !res.OK() {
		return tools.ErrorResult(call, "Error: "+res.Failure.Detail), nil
	}

	out := res.Output
	if out == "" {
		out = "(no output)"
	}
	return tools.TextResult(call, out), nil
}

// Routes exposes POST /execute.
func (p *Provider) Routes() []registry.Route {
	return []registry.Route{{
		Method:  http.MethodPost,
		Pattern: "/execute",
		Handler: p.handleExecute,
	}}
}

// Close is a no-op; the sandbox executor is owned by the caller.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req api.ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			transport.WriteAPIError(w, api.NewTooLargeError(api.MessageRequestTooLarge))
			return
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("", fmt.Sprintf("invalid JSON: %v", err)))
		return
	}
	if apiErr := api.ValidateExecuteRequest(&req, p.validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	res := p.Run(r.Context(), req.Code)
	if res.OK() {
		transport.WriteJSON(w, http.StatusOK, api.ExecuteResponse{Output: res.Output})
		return
	}

	switch res.Failure.Reason {
	case sandbox.KindValidationRejected:
		transport.WriteErrorResponse(w, http.StatusBadRequest, api.MessageRejectedCode)
	case sandbox.KindRuntimeError, sandbox.KindTimeout:
		transport.WriteErrorResponse(w, http.StatusBadRequest, res.Failure.Detail)
	default:
		slog.Error("execute failed",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"reason", res.Failure.Reason,
			"detail", res.Failure.Detail,
		)
		transport.WriteErrorResponse(w, http.StatusInternalServerError, api.MessageRequestFailed)
	}
}
