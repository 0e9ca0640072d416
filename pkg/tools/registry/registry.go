package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/tools"
)

// Prometheus metrics for built-in tool execution and provider routes.
var (
	builtinToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_builtin_tool_executions_total",
			Help: "Total built-in tool executions",
		},
		[]string{"provider", "tool_name", "status"},
	)

	builtinToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sandchat_builtin_tool_duration_seconds",
			Help:    "Built-in tool execution duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "tool_name"},
	)

	builtinAPIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandchat_builtin_api_requests_total",
			Help: "Total built-in provider API requests",
		},
		[]string{"provider", "method", "path", "status"},
	)

	builtinAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sandchat_builtin_api_duration_seconds",
			Help:    "Built-in provider API request duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		builtinToolExecutions,
		builtinToolDuration,
		builtinAPIRequests,
		builtinAPIDuration,
	)
}

type entry struct {
	provider FunctionProvider
	spec     tools.ToolSpec
}

// FunctionRegistry aggregates FunctionProviders. It routes tool calls to the
// owning provider, records metrics and serves merged HTTP routes.
type FunctionRegistry struct {
	mu sync.RWMutex

	// providers stores registered providers in insertion order.
	providers []FunctionProvider

	// specs holds the winning declaration per tool, in registration order.
	specs []tools.ToolSpec

	byName map[string]entry
}

// New creates an empty FunctionRegistry.
func New() *FunctionRegistry {
	return &FunctionRegistry{
		byName: make(map[string]entry),
	}
}

// Register adds a provider to the registry. If two providers supply a tool
// with the same name, the first registered provider wins and a warning is
// logged.
func (r *FunctionRegistry) Register(p FunctionProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)

	for _, spec := range p.Tools() {
		if existing, ok := r.byName[spec.Name]; ok {
			slog.Warn("builtin tool name conflict, keeping first provider",
				"tool", spec.Name,
				"winner", existing.provider.Name(),
				"loser", p.Name(),
			)
			continue
		}
		r.byName[spec.Name] = entry{provider: p, spec: spec}
		r.specs = append(r.specs, spec)
	}

	slog.Info("registered builtin provider",
		"provider", p.Name(),
		"tools", len(p.Tools()),
		"routes", len(p.Routes()),
	)
}

// Lookup returns the declaration of the named tool.
func (r *FunctionRegistry) Lookup(name string) (tools.ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e.spec, ok
}

// Specs returns the declarations of all dispatchable tools.
func (r *FunctionRegistry) Specs() []tools.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]tools.ToolSpec(nil), r.specs...)
}

// Dispatch runs a tool call and returns its result. An unknown tool name
// yields nil. Malformed arguments, provider errors and provider panics all
// yield an error result, so a failing tool never aborts the caller.
func (r *FunctionRegistry) Dispatch(ctx context.Context, call tools.ToolCall) (result *tools.ToolResult) {
	r.mu.RLock()
	e, ok := r.byName[call.Name]
	r.mu.RUnlock()

	if !ok {
		debug.Log("tools", "dropping call to unknown tool", "tool", call.Name, "call_id", call.ID)
		return nil
	}

	providerName := e.provider.Name()
	start := time.Now()
	status := "success"

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("builtin tool provider panicked",
				"provider", providerName,
				"tool", call.Name,
				"panic", rec,
			)
			result = tools.ErrorResult(call, fmt.Sprintf("internal error: tool %q failed", call.Name))
			status = "panic"
		}
		builtinToolExecutions.WithLabelValues(providerName, call.Name, status).Inc()
		builtinToolDuration.WithLabelValues(providerName, call.Name).Observe(time.Since(start).Seconds())
	}()

	args, err := e.spec.Schema.Decode(call.Arguments)
	if err != nil {
		status = "malformed"
		debug.Log("tools", "malformed tool arguments", "tool", call.Name, "error", err)
		return tools.ErrorResult(call, err.Error())
	}

	result, err = e.provider.Execute(ctx, call, args)
	switch {
	case err != nil:
		status = "error"
		slog.Warn("builtin tool failed", "provider", providerName, "tool", call.Name, "error", err)
		return tools.ErrorResult(call, toolErrorMessage(call.Name, err))
	case result == nil:
		status = "error"
		return tools.ErrorResult(call, fmt.Sprintf("tool %q returned no result", call.Name))
	case result.IsError:
		status = "tool_error"
	}

	if result.CallID == "" {
		result.CallID = call.ID
	}
	if result.Name == "" {
		result.Name = call.Name
	}
	return result
}

func toolErrorMessage(name string, err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("tool %q was cancelled", name)
	}
	return fmt.Sprintf("tool %q failed: %v", name, err)
}

// HTTPHandler returns an http.Handler that serves all provider routes,
// each wrapped with metrics middleware.
func (r *FunctionRegistry) HTTPHandler() http.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mux := http.NewServeMux()
	for _, p := range r.providers {
		for _, route := range p.Routes() {
			mux.HandleFunc(routePattern(route), wrapRoute(p.Name(), route))
		}
	}
	return mux
}

// Patterns returns the ServeMux patterns of all provider routes.
func (r *FunctionRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, p := range r.providers {
		for _, route := range p.Routes() {
			out = append(out, routePattern(route))
		}
	}
	return out
}

func routePattern(route Route) string {
	if route.Method == "" {
		return route.Pattern
	}
	return route.Method + " " + route.Pattern
}

// Close closes all registered providers and joins their errors.
func (r *FunctionRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			slog.Warn("failed to close builtin provider", "provider", p.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasProviders returns true if at least one provider is registered.
func (r *FunctionRegistry) HasProviders() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
