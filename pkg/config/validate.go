package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Engine.BackendURL == "" {
		errs = append(errs, fmt.Errorf("engine.backend_url is required"))
	}

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Engine.Provider {
	case "vllm", "litellm", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("engine.provider must be \"vllm\" or \"litellm\", got %q", c.Engine.Provider))
	}
	if c.Engine.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("engine.max_turns must be >= 0, got %d", c.Engine.MaxTurns))
	}
	if t := c.Engine.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("engine.temperature must be between 0 and 2, got %g", *t))
	}

	if strings.TrimSpace(c.Sandbox.Interpreter) == "" {
		errs = append(errs, fmt.Errorf("sandbox.interpreter is required"))
	}
	if c.Sandbox.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.timeout must be > 0, got %s", c.Sandbox.Timeout))
	}
	if c.Sandbox.MaxOutputBytes <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.max_output_bytes must be > 0, got %d", c.Sandbox.MaxOutputBytes))
	}
	if c.Sandbox.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("sandbox.max_concurrent must be >= 0, got %d", c.Sandbox.MaxConcurrent))
	}

	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path must start with \"/\", got %q", c.MCP.Path))
	}
	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	switch c.Logging.Format {
	case "text", "json", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
