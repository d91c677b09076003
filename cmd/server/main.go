package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/volcengine/veadk-go/apps"
	"github.com/volcengine/veadk-go/apps/a2a_app"
	"google.golang.org/adk/agent"

	"github.com/zhengjr9/gemini-bridge/internal/a2a"
	"github.com/zhengjr9/gemini-bridge/internal/config"
	"github.com/zhengjr9/gemini-bridge/internal/logging"
	"github.com/zhengjr9/gemini-bridge/internal/proxy"
	"github.com/zhengjr9/gemini-bridge/internal/shutdown"
	"github.com/zhengjr9/gemini-bridge/internal/upstream"
)

func main() {
	cfg := config.Load()

	closeLogs, err := logging.Setup(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging setup failed:", err)
		os.Exit(1)
	}
	defer closeLogs()

	slog.Info("starting gemini-bridge",
		"listen", cfg.ListenAddr,
		"default_model", cfg.DefaultModel,
		"vertexai", cfg.VertexAI,
		"a2a_enabled", cfg.A2AEnabled,
	)

	// The coordinator owns the process signal handlers exclusively and
	// re-asserts that claim against anything else that registers handlers.
	coord := shutdown.New()
	if cfg.StdinShutdown {
		coord.WatchStdin(os.Stdin)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend initialization is a startup precondition: a failure here is
	// logged and every request answers with a server error instead.
	var gen upstream.Generator
	if client, err := upstream.NewClient(ctx, cfg); err != nil {
		slog.Error("upstream client init failed, requests will fail", "error", err)
	} else {
		gen = client
	}

	srv := proxy.New(cfg, gen)
	proxyErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			proxyErr <- err
		}
	}()

	// Optionally expose the same bridge as an A2A agent.
	a2aErr := make(chan error, 1)
	if cfg.A2AEnabled {
		if gen == nil {
			slog.Error("A2A requested but upstream client is unavailable")
			os.Exit(1)
		}
		bridgeAgent, err := a2a.New(a2a.AgentConfig{
			Name:        cfg.AgentName,
			Description: cfg.AgentDesc,
			Generator:   gen,
			Model:       cfg.DefaultModel,
		})
		if err != nil {
			slog.Error("failed to create A2A agent", "error", err)
			os.Exit(1)
		}

		slog.Info("starting A2A server", "port", cfg.A2APort, "agent_name", cfg.AgentName)

		app := a2a_app.NewAgentkitA2AServerApp(
			apps.DefaultApiConfig().SetPort(cfg.A2APort),
		)
		go func() {
			if err := app.Run(ctx, &apps.RunConfig{
				AgentLoader: agent.NewSingleLoader(bridgeAgent),
			}); err != nil {
				a2aErr <- err
			}
		}()
	}

	select {
	case <-coord.Done():
		// Immediate shutdown: open connections are abandoned, nothing drains.
		slog.Info("shutting down")
		if err := srv.Close(); err != nil {
			slog.Error("proxy close error", "error", err)
		}
		cancel()
	case err := <-proxyErr:
		slog.Error("proxy server error", "error", err)
		os.Exit(1)
	case err := <-a2aErr:
		slog.Error("A2A server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
