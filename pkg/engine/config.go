package engine

import "slices"

// DefaultMaxTurns bounds the model round trips of one chat request when
// Config.MaxTurns is not set.
const DefaultMaxTurns = 10

// Config holds configuration for the engine. It is copied by New and never
// changed afterwards.
type Config struct {
	// Model is the model name sent to the model service.
	Model string

	// SystemPrompt is prepended to every conversation when non-empty.
	SystemPrompt string

	// MaxTurns is the maximum number of model calls per chat request.
	// Zero or negative means DefaultMaxTurns.
	MaxTurns int

	// Temperature is passed through to the model service when set.
	Temperature *float64

	// EnabledTools restricts which registry tools are declared to the model
	// and dispatched. Empty enables all tools.
	EnabledTools []string
}

// maxTurns returns the effective max turns value.
func (c Config) maxTurns() int {
	if c.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return c.MaxTurns
}

// clone returns a deep copy so later changes by the caller are not seen.
func (c Config) clone() Config {
	out := c
	out.EnabledTools = slices.Clone(c.EnabledTools)
	if c.Temperature != nil {
		t := *c.Temperature
		out.Temperature = &t
	}
	return out
}
