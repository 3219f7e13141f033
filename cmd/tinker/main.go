// Command tinker is an interactive coding assistant for the terminal. It
// forwards user messages to a configured LLM provider, executes the filesystem
// tools the model requests and prints the final answers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/tinker/internal/agent"
	"github.com/MrWong99/tinker/internal/config"
	"github.com/MrWong99/tinker/internal/observe"
	"github.com/MrWong99/tinker/internal/repl"
	"github.com/MrWong99/tinker/internal/tools"
	"github.com/MrWong99/tinker/internal/tools/fsio"
	"github.com/MrWong99/tinker/pkg/provider/llm/anyllm"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinker: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("tinker starting",
		"version", version,
		"provider", cfg.Provider.Name,
		"model", cfg.Provider.Model,
		"log_level", cfg.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Telemetry.ListenAddr != "" {
		go serveMetrics(ctx, cfg.Telemetry.ListenAddr)
	}

	// ── LLM provider ──────────────────────────────────────────────────────────
	provider, err := anyllm.New(cfg.Provider.Name, cfg.Provider.Model, providerOptions(cfg.Provider)...)
	if err != nil {
		slog.Error("failed to create LLM provider", "err", err)
		return 1
	}

	// ── Tools ─────────────────────────────────────────────────────────────────
	registry := tools.NewRegistry()
	if err := registry.RegisterAll(fsio.NewTools()); err != nil {
		slog.Error("failed to register tools", "err", err)
		return 1
	}

	// ── Conversation loop + REPL ──────────────────────────────────────────────
	console := repl.NewConsole(os.Stdout)
	loop, err := agent.New(provider, registry, console, observe.DefaultMetrics(), agent.Config{
		SystemPrompt:  cfg.Agent.SystemPrompt,
		Temperature:   cfg.Agent.Temperature,
		MaxTokens:     cfg.Agent.MaxTokens,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
	})
	if err != nil {
		slog.Error("failed to create conversation loop", "err", err)
		return 1
	}

	r := repl.New(os.Stdin, console, loop)
	if err := r.Run(ctx, cfg.Provider.Name+"/"+cfg.Provider.Model); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	return 0
}

// providerOptions translates provider settings into any-llm client options.
// Ollama is a local server and takes no API key.
func providerOptions(p config.ProviderConfig) []anyllmlib.Option {
	var opts []anyllmlib.Option
	if p.APIKey != "" && p.Name != "ollama" {
		opts = append(opts, anyllmlib.WithAPIKey(p.APIKey))
	}
	if p.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(p.BaseURL))
	}
	return opts
}

// serveMetrics exposes the Prometheus /metrics endpoint until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observe.MetricsHandler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server error", "err", err)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
