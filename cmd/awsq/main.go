package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/awsq/awsq/internal/awsquota"
	"github.com/awsq/awsq/internal/config"
	"github.com/awsq/awsq/internal/feed"
	"github.com/awsq/awsq/internal/handler"
	"github.com/awsq/awsq/internal/provider"
	"github.com/awsq/awsq/internal/runner"
	"github.com/awsq/awsq/internal/sandbox"
	"github.com/awsq/awsq/internal/webpage"
	"github.com/awsq/awsq/memory"
	"github.com/awsq/awsq/tools"
)

const systemPrompt = `あなたは AWS のエキスパートアシスタントです。
AWS サービスの制限、クォータ、ベストプラクティスについてお答えします。
日本語で丁寧に回答してください。`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "awsq: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml (default: search standard locations)")
	flag.Parse()

	path, err := config.FindConfig(*configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := config.NewLogger(level)
	if path != "" {
		logger.Info("config loaded", "path", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := provider.NewClient(ctx, cfg.Bedrock.Enabled, cfg.Bedrock.Region)
	if err != nil {
		return err
	}

	// Quota lookups need AWS credentials even when inference goes through the
	// Anthropic API directly; a failed client setup degrades the tool rather
	// than refusing to start.
	var quotas tools.QuotaFetcher
	if qc, err := awsquota.New(ctx, cfg.Bedrock.Region); err != nil {
		logger.Warn("service quotas client unavailable", "error", err)
	} else {
		quotas = qc
	}

	var interp sandbox.Interpreter
	if cfg.Sandbox.BaseURL != "" {
		interp = sandbox.NewClient(cfg.Sandbox.BaseURL)
	}
	var shots webpage.Screenshotter
	if cfg.Browser.RendererURL != "" {
		shots = webpage.NewRenderer(cfg.Browser.RendererURL)
	}

	registry, err := tools.DefaultRegistry(tools.Deps{
		Quotas:      quotas,
		News:        feed.New(),
		FeedURL:     cfg.News.FeedURL,
		Interpreter: interp,
		Pages:       webpage.New(),
		Shots:       shots,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var backend memory.Backend
	if cfg.Memory.BaseURL != "" {
		backend = memory.NewRemoteBackend(cfg.Memory.BaseURL)
	}
	mem := memory.NewAdapter(backend, cfg.Memory.StoreName, logger)

	orch := runner.New(
		provider.NewStreamer(api),
		registry,
		anthropic.Model(cfg.Model.ID),
		int64(cfg.Model.MaxTokens),
		systemPrompt,
		logger,
	)

	srv := &http.Server{
		Addr:    cfg.Listen.Addr,
		Handler: handler.Router(handler.New(orch, mem, logger)),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen.Addr,
			"model", cfg.Model.ID, "bedrock", cfg.Bedrock.Enabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
