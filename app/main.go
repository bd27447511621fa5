package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/market-pulse/app/analysis"
	"github.com/lysyi3m/market-pulse/app/api"
	"github.com/lysyi3m/market-pulse/app/cache"
	"github.com/lysyi3m/market-pulse/app/cfg"
	"github.com/lysyi3m/market-pulse/app/config"
	"github.com/lysyi3m/market-pulse/app/feed"
	"github.com/lysyi3m/market-pulse/app/sentiment"
	"github.com/lysyi3m/market-pulse/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Market Pulse server", "version", appCfg.Version)

	pipelineConfig, err := config.NewLoader(appCfg.ConfigFile).Load()
	if err != nil {
		slog.Error("Failed to load pipeline configuration", "path", appCfg.ConfigFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Pipeline configuration loaded", "feed", pipelineConfig.Feed.URL,
		"sources", len(pipelineConfig.Endpoints()), "assets", pipelineConfig.AssetCodes())

	store := newCacheStore(appCfg)

	httpClient := &http.Client{}
	parser := feed.NewParser()
	gateway := feed.NewGateway(pipelineConfig.Endpoints(), parser, store, httpClient, feed.GatewayOptions{
		Timeout:    time.Duration(appCfg.FetchTimeout) * time.Second,
		MaxRetries: appCfg.MaxRetries,
		RetryDelay: time.Duration(appCfg.RetryDelay) * time.Second,
		CacheTTL:   time.Duration(appCfg.CacheDuration) * time.Second,
		UserAgent:  appCfg.UserAgent,
	})

	analyzer := newAnalyzer(appCfg, pipelineConfig, httpClient)

	holder := sentiment.NewSnapshotHolder()

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.RefreshInterval)
	scheduler := tasks.NewScheduler(pipelineConfig, gateway, analyzer, holder)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(pipelineConfig, holder, gateway, analyzer, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Market Pulse server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newCacheStore selects the feed cache backend: Redis when an address is
// configured, an in-process store otherwise. A Redis connection failure is
// not fatal; the server falls back to the in-process store.
func newCacheStore(appCfg *cfg.Cfg) cache.Store {
	if appCfg.RedisAddr == "" {
		slog.Info("Using in-process feed cache")
		return cache.NewMemoryStore()
	}

	store, err := cache.NewRedisStore(appCfg.RedisAddr)
	if err != nil {
		slog.Warn("Redis unavailable, falling back to in-process feed cache", "addr", appCfg.RedisAddr, "error", err)
		return cache.NewMemoryStore()
	}

	slog.Info("Using Redis feed cache", "addr", appCfg.RedisAddr)
	return store
}

// newAnalyzer wires the judgment pipeline when an API key is configured.
// Without a key the analyzer is nil and items are served unenriched.
func newAnalyzer(appCfg *cfg.Cfg, pipelineConfig *config.Config, httpClient *http.Client) *analysis.Analyzer {
	if appCfg.APIKey == "" {
		slog.Warn("No API key configured, sentiment analysis disabled")
		return nil
	}

	provider := analysis.NewOpenAIProvider(appCfg.APIKey, appCfg.Model, pipelineConfig.Analysis.ResponseFormat == config.ResponseFormatJSON)
	prompt := analysis.NewPromptBuilder(pipelineConfig.AssetCodes(), pipelineConfig.Analysis.PromptPreset, appCfg.Prompt)

	slog.Info("Sentiment analysis enabled", "model", appCfg.Model,
		"response_format", pipelineConfig.Analysis.ResponseFormat, "max_items", pipelineConfig.Analysis.MaxItems)

	return analysis.NewAnalyzer(provider, pipelineConfig.Analysis, pipelineConfig.AssetCodes(), prompt, httpClient, appCfg.UserAgent)
}
