package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/ytnotes/internal/api"
	"github.com/kalambet/ytnotes/internal/config"
	"github.com/kalambet/ytnotes/internal/resolver"
	"github.com/kalambet/ytnotes/internal/storage"
	"github.com/kalambet/ytnotes/internal/synthesis"
	"github.com/kalambet/ytnotes/internal/youtube"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ytnotes HTTP and MCP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func setupLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// openCache builds the configured cache backend. A cache that cannot be
// opened is reported but not fatal: the pipeline works without one.
func openCache(ctx context.Context, cfg config.Config) (storage.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		var ttl time.Duration
		if cfg.Cache.RedisTTL != "" {
			d, err := time.ParseDuration(cfg.Cache.RedisTTL)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid cache.redis_ttl %q: %w", cfg.Cache.RedisTTL, err)
			}
			ttl = d
		}
		rc := storage.NewRedisCache(cfg.Cache.RedisAddr, "", 0, ttl)
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		return rc, func() { rc.Close() }, nil
	case "", "sqlite":
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening transcript cache: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// buildService wires the pipeline from config. The returned cleanup closes
// the cache backend.
func buildService(ctx context.Context, cfg config.Config) (*api.Service, func(), error) {
	yt := youtube.NewClient(youtube.Options{
		PreferredLang: cfg.Fetch.PreferredLang,
		MinSegments:   cfg.Fetch.MinSegments,
		MinChars:      cfg.Fetch.MinChars,
		MaxAttempts:   cfg.Fetch.MaxAttempts,
	})

	cache, cleanup, err := openCache(ctx, cfg)
	if err != nil {
		slog.Warn("transcript cache unavailable, continuing without", "error", err)
		cache = nil
		cleanup = func() {}
	}

	res := resolver.New(cache, yt.Fetchers(), resolver.Options{
		MinSegments: cfg.Fetch.MinSegments,
		MinChars:    cfg.Fetch.MinChars,
	})

	var gen synthesis.Generator
	if cfg.Configured() {
		if cfg.Generator.BaseURL != "" {
			gen = synthesis.NewClientWithBaseURL(cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.BaseURL)
		} else {
			gen = synthesis.NewClient(cfg.Generator.APIKey, cfg.Generator.Model)
		}
	}
	synth := synthesis.New(gen, synthesis.Options{
		DirectCeiling: cfg.Synthesis.DirectCeiling,
		ChunkSize:     cfg.Synthesis.ChunkSize,
		MaxChunks:     cfg.Synthesis.MaxChunks,
	})

	svc := &api.Service{
		Resolver:   res,
		Synth:      synth,
		Titles:     yt,
		Configured: cfg.Configured(),
		GroupSize:  cfg.Synthesis.GroupSize,
	}
	return svc, cleanup, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "ytnotes version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if !cfg.Configured() {
		slog.Warn("no generator API key configured; note generation will fail with AI_NOT_CONFIGURED",
			"env", "YTNOTES_GENERATOR_API_KEY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := api.NewHandler(svc, cfg.Server.Token)
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server over stdio in a goroutine.
	mcpSrv := api.NewMCPServer(svc)
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ytnotes listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
