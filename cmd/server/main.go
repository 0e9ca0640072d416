// Command server runs the sandchat service: a chat endpoint that lets a
// model service call sandboxed Python, chart, diagram and quiz tools, plus a
// direct code execution endpoint.
//
// Configuration is read from a YAML file (see pkg/config) and overridden by
// SANDCHAT_* environment variables. Pass -config to name the file
// explicitly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/sandchat/pkg/config"
	"github.com/rhuss/sandchat/pkg/debug"
	"github.com/rhuss/sandchat/pkg/engine"
	"github.com/rhuss/sandchat/pkg/policy"
	"github.com/rhuss/sandchat/pkg/provider"
	"github.com/rhuss/sandchat/pkg/provider/litellm"
	"github.com/rhuss/sandchat/pkg/provider/vllm"
	"github.com/rhuss/sandchat/pkg/sandbox"
	"github.com/rhuss/sandchat/pkg/tools/builtins/chart"
	"github.com/rhuss/sandchat/pkg/tools/builtins/codeexec"
	"github.com/rhuss/sandchat/pkg/tools/builtins/diagram"
	"github.com/rhuss/sandchat/pkg/tools/builtins/quiz"
	"github.com/rhuss/sandchat/pkg/tools/mcp"
	"github.com/rhuss/sandchat/pkg/tools/registry"
	transporthttp "github.com/rhuss/sandchat/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})

	// Sandbox and code policy.
	sb, err := sandbox.New(sandbox.Config{
		Interpreter:    cfg.Sandbox.Interpreter,
		Args:           cfg.Sandbox.Args,
		Timeout:        cfg.Sandbox.Timeout,
		MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
		TempDir:        cfg.Sandbox.TempDir,
		MaxConcurrent:  int64(cfg.Sandbox.MaxConcurrent),
	})
	if err != nil {
		return fmt.Errorf("creating sandbox: %w", err)
	}
	defer sb.Close()

	pol := policy.Default()
	if len(cfg.Sandbox.AllowedModules) > 0 {
		pol = policy.New(cfg.Sandbox.AllowedModules, policy.DefaultDeniedSubstrings)
	}

	// Tools.
	reg := registry.New()
	reg.Register(codeexec.New(sb, pol))
	reg.Register(chart.New())
	reg.Register(diagram.New())
	reg.Register(quiz.New())
	defer reg.Close()

	// Model service.
	prov, err := newProvider(cfg.Engine)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	defer prov.Close()

	eng, err := engine.New(prov, reg, engine.Config{
		Model:        cfg.Engine.Model,
		SystemPrompt: cfg.Engine.SystemPrompt,
		MaxTurns:     cfg.Engine.MaxTurns,
		Temperature:  cfg.Engine.Temperature,
		EnabledTools: cfg.Engine.EnabledTools,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// HTTP server.
	srv := transporthttp.NewServer(eng,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	toolRoutes := reg.HTTPHandler()
	for _, pattern := range reg.Patterns() {
		srv.Mount(pattern, toolRoutes)
	}

	if cfg.Observability.Metrics.Enabled {
		srv.Mount("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		slog.Info("metrics enabled", "path", cfg.Observability.Metrics.Path)
	}

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(reg, mcp.Options{Tools: cfg.Engine.EnabledTools})
		srv.Mount(cfg.MCP.Path, mcp.Handler(mcpServer))
		slog.Info("MCP enabled", "path", cfg.MCP.Path)
	}

	slog.Info("sandchat configured",
		"provider", prov.Name(),
		"backend", cfg.Engine.BackendURL,
		"model", cfg.Engine.Model,
		"tools", eng.ToolNames(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// newProvider creates the model service adapter named in the configuration.
func newProvider(cfg config.EngineConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case "litellm":
		lc := litellm.DefaultConfig(cfg.BackendURL)
		lc.APIKey = cfg.APIKey
		lc.ModelMapping = cfg.ModelMapping
		if cfg.Timeout > 0 {
			lc.Timeout = cfg.Timeout
		}
		return litellm.New(lc)
	case "vllm", "":
		vc := vllm.DefaultConfig(cfg.BackendURL)
		vc.APIKey = cfg.APIKey
		if cfg.Timeout > 0 {
			vc.Timeout = cfg.Timeout
		}
		return vllm.New(vc)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
