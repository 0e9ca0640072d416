package provider

import "context"

// Provider abstracts the model service the orchestration loop talks to.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "vllm", "litellm").
	Name() string

	// Complete sends one request and waits for the full answer.
	Complete(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
