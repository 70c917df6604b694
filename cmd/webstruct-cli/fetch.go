package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/use-agent/webstruct/api/handler"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/engine"
	"github.com/use-agent/webstruct/models"
	"github.com/use-agent/webstruct/provider"
	"github.com/use-agent/webstruct/scraper"
)

type fetchFlags struct {
	method    string
	timeout   int
	stealth   bool
	summarize bool
	markdown  bool
}

func newFetchCmd() *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a URL and print its structured document",
		Long: `Fetch loads a page with the selected method, runs the extractor and prints
the result envelope.

Examples:
  webstruct-cli fetch https://example.com
  webstruct-cli fetch https://example.com --method browser --markdown
  webstruct-cli fetch https://example.com --summarize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.method, "method", models.MethodHTTP, "Fetch method: http, browser or auto")
	cmd.Flags().IntVar(&f.timeout, "timeout", 30, "Fetch timeout in seconds")
	cmd.Flags().BoolVar(&f.stealth, "stealth", false, "Enable browser stealth evasions")
	cmd.Flags().BoolVar(&f.summarize, "summarize", false, "Add the summary and sentiment record")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Add a Markdown rendering of the main content")
	return cmd
}

func runFetch(cmd *cobra.Command, rawURL string, f fetchFlags) error {
	method := models.NormalizeMethod(f.method)
	if method == "" {
		return fmt.Errorf("unknown method %q: use http, browser or auto", f.method)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var sc *scraper.Scraper
	if method != models.MethodHTTP {
		sc, err = scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		defer sc.Close()
	}
	fetcher := newFetcher(cfg, sc)

	pipelineOpts := []handler.PipelineOption{handler.WithAnalysisTimeout(cfg.Analysis.Timeout)}
	analyzer, name, err := provider.NewAnalyzer(cmd.Context(), cfg.Analysis)
	if err != nil {
		return err
	}
	slog.Debug("summarizer ready", "provider", name)

	req := &models.ScrapeRequest{
		URL:             rawURL,
		Method:          method,
		Timeout:         f.timeout,
		Stealth:         f.stealth,
		IncludeMarkdown: f.markdown,
		SkipAnalysis:    !f.summarize,
	}
	req.Defaults()

	resp, err := handler.NewPipeline(fetcher, analyzer, pipelineOpts...).Scrape(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

// newFetcher builds the engines for one CLI run. Without a browser only the
// plain HTTP engine is wired.
func newFetcher(cfg *config.Config, sc *scraper.Scraper) *engine.Fetcher {
	plain := engine.NewHTTPEngine(cfg.Browser.DefaultProxy)
	if sc == nil {
		return engine.NewFetcher(plain, nil, nil)
	}

	browser := engine.NewBrowserEngine(sc, false)
	engines := []engine.Engine{
		engine.NewHTTPEngine(cfg.Browser.DefaultProxy, engine.WithSPADetection(), engine.WithTimeout(cfg.Engine.HTTPTimeout)),
		browser,
		engine.NewBrowserEngine(sc, true),
	}
	return engine.NewFetcher(plain, browser, engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, nil))
}
