package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, SANDCHAT_CONFIG env, ./config.yaml, /etc/sandchat/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. SANDCHAT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/sandchat/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("SANDCHAT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/sandchat/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps SANDCHAT_* environment variables to config fields.
// Values that fail to parse are logged and ignored.
func applyEnvOverrides(cfg *Config) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				slog.Warn("ignoring invalid environment value", "name", name, "value", v)
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				slog.Warn("ignoring invalid environment value", "name", name, "value", v)
				return
			}
			*dst = d
		}
	}

	setInt("SANDCHAT_PORT", &cfg.Server.Port)

	setString("SANDCHAT_PROVIDER", &cfg.Engine.Provider)
	setString("SANDCHAT_BACKEND_URL", &cfg.Engine.BackendURL)
	setString("SANDCHAT_API_KEY", &cfg.Engine.APIKey)
	setString("SANDCHAT_MODEL", &cfg.Engine.Model)
	setString("SANDCHAT_SYSTEM_PROMPT", &cfg.Engine.SystemPrompt)
	setInt("SANDCHAT_MAX_TURNS", &cfg.Engine.MaxTurns)
	setDuration("SANDCHAT_BACKEND_TIMEOUT", &cfg.Engine.Timeout)

	if v := os.Getenv("SANDCHAT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.Temperature = &f
		} else {
			slog.Warn("ignoring invalid environment value", "name", "SANDCHAT_TEMPERATURE", "value", v)
		}
	}

	// SANDCHAT_MODEL_MAPPING: JSON object of model name mappings.
	if v := os.Getenv("SANDCHAT_MODEL_MAPPING"); v != "" {
		mapping, err := parseModelMappingJSON(v)
		if err != nil {
			slog.Warn("ignoring invalid environment value", "name", "SANDCHAT_MODEL_MAPPING", "error", err)
		} else if len(mapping) > 0 {
			cfg.Engine.ModelMapping = mapping
		}
	}

	if v := os.Getenv("SANDCHAT_ENABLED_TOOLS"); v != "" {
		cfg.Engine.EnabledTools = splitList(v)
	}

	setString("SANDCHAT_SANDBOX_INTERPRETER", &cfg.Sandbox.Interpreter)
	setDuration("SANDCHAT_SANDBOX_TIMEOUT", &cfg.Sandbox.Timeout)
	setInt("SANDCHAT_SANDBOX_MAX_OUTPUT_BYTES", &cfg.Sandbox.MaxOutputBytes)
	setString("SANDCHAT_SANDBOX_TEMP_DIR", &cfg.Sandbox.TempDir)
	setInt("SANDCHAT_SANDBOX_MAX_CONCURRENT", &cfg.Sandbox.MaxConcurrent)

	if v := os.Getenv("SANDCHAT_MCP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MCP.Enabled = b
		}
	}

	setString("SANDCHAT_LOG_FORMAT", &cfg.Logging.Format)
}

// parseModelMappingJSON parses a JSON object of model name mappings.
func parseModelMappingJSON(jsonStr string) (map[string]string, error) {
	var mapping map[string]string
	if err := json.Unmarshal([]byte(jsonStr), &mapping); err != nil {
		return nil, fmt.Errorf("parsing model mapping JSON: %w", err)
	}
	return mapping, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// engine.api_key_file -> engine.api_key
	if cfg.Engine.APIKeyFile != "" && cfg.Engine.APIKey == "" {
		val, err := readSecretFile(cfg.Engine.APIKeyFile)
		if err != nil {
			return fmt.Errorf("engine.api_key_file: %w", err)
		}
		cfg.Engine.APIKey = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
