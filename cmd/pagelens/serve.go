package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/config"
	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/logging"
	"github.com/csheth/pagelens/internal/server"
	"github.com/csheth/pagelens/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(global *globalFlags) *cobra.Command {
	var (
		addr     string
		provider string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the explanation backend (POST /api/explain)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("provider") {
				cfg.Upstream.Provider = provider
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&provider, "provider", "", "upstream provider: openai, gemini or ollama")
	return cmd
}

func runServer(parent context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Options{File: cfg.Log.File, Console: true, Debug: cfg.Log.Debug})
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	llmCfg := cfg.LLM()
	llmCfg.HTTPClient = &http.Client{Timeout: cfg.Upstream.Timeout}
	provider, err := llm.New(llmCfg)
	if err != nil {
		return err
	}
	srv := server.New(llm.NewExplainer(provider, logger), server.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		BodyLimit:       cfg.Server.BodyLimit,
		UpstreamTimeout: cfg.Upstream.Timeout,
		Logger:          logger,
	})

	logger.Info("backend listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("provider", provider.Name()),
		zap.String("config", cfg.Source),
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return serveErr
}
