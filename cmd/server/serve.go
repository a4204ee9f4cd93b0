package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"interview-gateway/internal/adapter/api"
	"interview-gateway/internal/adapter/document"
	"interview-gateway/internal/adapter/report"
	"interview-gateway/internal/config"

	"github.com/spf13/cobra"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	c, err := build(initCtx, cfg)
	cancel()
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return err
	}
	defer c.Close()

	if c.embedder != nil {
		go warmEmbedder(c)
	}

	info := api.AppInfo{Name: appName, Version: cfg.Server.Version, Env: cfg.Server.Env}
	app := api.NewApp(info)
	handler := api.NewHandler(api.HandlerConfig{
		Orchestrator: c.orchestrator,
		Providers:    c.router,
		Extractor:    document.NewExtractor(),
		Renderer:     report.NewExcelRenderer(),
		ExposeRaw:    !cfg.Server.IsProduction(),
	})
	api.SetupRouter(app, info, handler, c.identity, c.admission)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"port", cfg.Server.Port,
			"env", cfg.Server.Env,
			"default_provider", cfg.LLM.DefaultProvider,
			"quota_backend", cfg.Quota.Backend,
			"daily_limit", cfg.Quota.DailyLimit,
		)
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	c.orchestrator.Wait()
	return nil
}

// warmEmbedder makes one throwaway call so the first real lookup does not pay for cold start.
func warmEmbedder(c *components) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if _, err := c.embedder.CreateEmbedding(ctx, "warmup"); err != nil {
		slog.Warn("embedder warm-up failed", "error", err)
		return
	}
	slog.Debug("embedder warm-up complete")
}
