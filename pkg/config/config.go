// Package config provides unified configuration for the sandchat server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SANDCHAT_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// A loaded Config is treated as immutable: components copy the values they
// need at construction time.
package config

import "time"

// Config holds all configuration for the sandchat server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 15s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
}

// EngineConfig holds orchestration loop and model service settings.
type EngineConfig struct {
	Provider     string            `yaml:"provider"`      // "vllm" or "litellm", default: "vllm"
	BackendURL   string            `yaml:"backend_url"`   // required
	APIKey       string            `yaml:"api_key"`       // optional
	APIKeyFile   string            `yaml:"api_key_file"`  // _file variant for api_key
	Model        string            `yaml:"model"`         // optional
	SystemPrompt string            `yaml:"system_prompt"` // optional
	MaxTurns     int               `yaml:"max_turns"`     // default: 10
	Temperature  *float64          `yaml:"temperature"`   // optional, 0..2
	Timeout      time.Duration     `yaml:"timeout"`       // default: 120s
	ModelMapping map[string]string `yaml:"model_mapping"` // litellm only
	EnabledTools []string          `yaml:"enabled_tools"` // empty enables all
}

// SandboxConfig holds code execution limits.
type SandboxConfig struct {
	Interpreter    string        `yaml:"interpreter"`      // default: "python3"
	Args           []string      `yaml:"args"`             // default: ["-I"]
	Timeout        time.Duration `yaml:"timeout"`          // default: 5s
	MaxOutputBytes int           `yaml:"max_output_bytes"` // default: 1 MiB
	TempDir        string        `yaml:"temp_dir"`         // default: OS temp dir
	MaxConcurrent  int           `yaml:"max_concurrent"`   // default: 0 (unbounded)
	AllowedModules []string      `yaml:"allowed_modules"`  // default: policy defaults
}

// MCPConfig controls the MCP endpoint exposing the built-in tools.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Path    string `yaml:"path"`    // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings. SANDCHAT_LOG_LEVEL and
// SANDCHAT_DEBUG still win over these at startup.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Engine: EngineConfig{
			Provider: "vllm",
			MaxTurns: 10,
			Timeout:  120 * time.Second,
		},
		Sandbox: SandboxConfig{
			Interpreter:    "python3",
			Args:           []string{"-I"},
			Timeout:        5 * time.Second,
			MaxOutputBytes: 1 << 20,
		},
		MCP: MCPConfig{
			Path: "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
