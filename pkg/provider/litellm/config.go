package litellm

import (
	"time"

	"github.com/rhuss/sandchat/pkg/provider/openaicompat"
)

// Config configures the model service adapter for a LiteLLM proxy.
type Config struct {
	// BaseURL of the proxy, e.g. "http://litellm:4000". Required.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds one chat completion round trip, including the
	// follow-up call after tool results.
	Timeout time.Duration

	// ModelMapping rewrites the model name the orchestration loop asks for
	// into the proxy's routing name, e.g. {"gpt-4o-mini": "openai/gpt-4o-mini"}.
	// Unmapped names pass through.
	ModelMapping map[string]string
}

// DefaultConfig returns a Config for baseURL using the shared
// openaicompat.DefaultTimeout.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: openaicompat.DefaultTimeout,
	}
}

// modelMapper returns the rename function for the shared client, or nil
// when no mapping is configured.
func (c Config) modelMapper() func(string) string {
	if len(c.ModelMapping) == 0 {
		return nil
	}
	mapping := make(map[string]string, len(c.ModelMapping))
	for k, v := range c.ModelMapping {
		mapping[k] = v
	}
	return func(model string) string {
		if mapped, ok := mapping[model]; ok {
			return mapped
		}
		return model
	}
}
