package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/webstruct/api"
	"github.com/use-agent/webstruct/api/handler"
	"github.com/use-agent/webstruct/cache"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/engine"
	"github.com/use-agent/webstruct/provider"
	"github.com/use-agent/webstruct/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("webstruct starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
		"summarizer", cfg.Analysis.Provider,
	)

	// ── 3. Summarizer and classifier ────────────────────────────────
	analyzer, providerName, err := provider.NewAnalyzer(context.Background(), cfg.Analysis)
	if err != nil {
		slog.Error("failed to initialise summarizer", "error", err)
		os.Exit(1)
	}

	// ── 4. Browser (optional) ───────────────────────────────────────
	var (
		sc   *scraper.Scraper
		pool handler.PoolReporter
	)
	if cfg.Browser.Enabled {
		sc, err = scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			slog.Error("failed to initialise scraper", "error", err)
			os.Exit(1)
		}
		defer sc.Close()
		pool = sc
	}

	// ── 5. Fetch engines ────────────────────────────────────────────
	fetcher, memory := newFetcher(cfg, sc)
	if memory != nil {
		defer memory.Stop()
	}

	// ── 6. Pipeline, cache and batches ──────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Stop()

	pipeline := handler.NewPipeline(fetcher, analyzer,
		handler.WithCache(cc),
		handler.WithAnalysisTimeout(cfg.Analysis.Timeout),
	)
	batches := handler.NewBatchRunner(pipeline, cfg.Batch)
	defer batches.Stop()

	// ── 7. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg, api.Deps{
		Pipeline:   pipeline,
		Batches:    batches,
		Pool:       pool,
		Summarizer: providerName,
		StartTime:  time.Now(),
	})

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("webstruct stopped")
}

// newFetcher assembles the http, browser and auto engines. sc may be nil,
// in which case only HTTP fetching is available. The returned DomainMemory
// is nil when the racing dispatcher is disabled.
func newFetcher(cfg *config.Config, sc *scraper.Scraper) (*engine.Fetcher, *engine.DomainMemory) {
	plain := engine.NewHTTPEngine(cfg.Browser.DefaultProxy)

	var browser, browserStealth engine.Engine
	if sc != nil {
		browser = engine.NewBrowserEngine(sc, false)
		browserStealth = engine.NewBrowserEngine(sc, true)
	}

	if !cfg.Engine.EnableMultiEngine {
		return engine.NewFetcher(plain, browser, nil), nil
	}

	engines := []engine.Engine{
		engine.NewHTTPEngine(cfg.Browser.DefaultProxy,
			engine.WithSPADetection(),
			engine.WithTimeout(cfg.Engine.HTTPTimeout),
		),
	}
	if sc != nil {
		engines = append(engines, browser, browserStealth)
	}
	memory := engine.NewDomainMemory(cfg.Engine.DomainMemoryTTL)
	dispatcher := engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, memory)

	slog.Info("multi-engine dispatcher enabled",
		"engines", len(engines),
		"delays", cfg.Engine.EscalationDelays,
	)
	return engine.NewFetcher(plain, browser, dispatcher), memory
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
