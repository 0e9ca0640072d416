package vllm

import (
	"time"

	"github.com/rhuss/sandchat/pkg/provider/openaicompat"
)

// Config configures the model service adapter for a vLLM server or any
// endpoint that serves /v1/chat/completions directly.
type Config struct {
	// BaseURL of the server, e.g. "http://vllm:8000". Required.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds one chat completion round trip.
	Timeout time.Duration
}

// DefaultConfig returns a Config for baseURL using the shared
// openaicompat.DefaultTimeout.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: openaicompat.DefaultTimeout,
	}
}
