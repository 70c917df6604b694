package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/cache"
	"github.com/use-agent/webstruct/engine"
	"github.com/use-agent/webstruct/extract"
	"github.com/use-agent/webstruct/models"
)

// PageFetcher loads a page with the named fetch method.
type PageFetcher interface {
	Fetch(ctx context.Context, method string, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// Pipeline runs fetch, extraction, optional Markdown rendering and analysis
// for one page.
type Pipeline struct {
	fetcher         PageFetcher
	analyzer        *analysis.Analyzer
	renderer        *extract.MarkdownRenderer
	cache           *cache.Cache
	analysisTimeout time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCache enables the document cache for requests with max_age set.
func WithCache(cc *cache.Cache) PipelineOption {
	return func(p *Pipeline) { p.cache = cc }
}

// WithAnalysisTimeout bounds the summarizer and classifier calls.
func WithAnalysisTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.analysisTimeout = d }
}

// NewPipeline creates a Pipeline. fetcher may be nil when only Parse is used.
func NewPipeline(fetcher PageFetcher, analyzer *analysis.Analyzer, opts ...PipelineOption) *Pipeline {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil)
	}
	p := &Pipeline{
		fetcher:  fetcher,
		analyzer: analyzer,
		renderer: extract.NewMarkdownRenderer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scrape fetches req.URL and runs it through the pipeline. The returned
// response is never nil; on failure it carries the error detail and the
// timing gathered so far.
func (p *Pipeline) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	totalStart := time.Now()
	resp := &models.ScrapeResponse{}

	var (
		doc      *models.StructuredDocument
		markdown string
		key      string
	)

	if p.cache != nil && req.MaxAge > 0 {
		key = cache.Key(req.URL, req.Method, req.IncludeMarkdown)
		if entry, hit := p.cache.Get(key, req.MaxAge); hit {
			doc, markdown = entry.Document, entry.Markdown
			resp.EngineUsed = entry.EngineUsed
			resp.CacheStatus = "hit"
		}
	}

	if doc == nil {
		if p.fetcher == nil {
			return p.fail(resp, totalStart, models.NewScrapeError(models.ErrCodeInternal, "no fetcher configured", nil))
		}

		fetchStart := time.Now()
		result, err := p.fetcher.Fetch(ctx, req.Method, &engine.FetchRequest{
			URL:     req.URL,
			Headers: req.Headers,
			Timeout: time.Duration(req.Timeout) * time.Second,
			Stealth: req.Stealth,
		})
		resp.Timing.FetchMs = time.Since(fetchStart).Milliseconds()
		if err != nil {
			return p.fail(resp, totalStart, err)
		}
		resp.EngineUsed = result.EngineName

		extractStart := time.Now()
		doc, markdown, err = p.extract(result.RawPage(), req.IncludeMarkdown)
		resp.Timing.ExtractionMs = time.Since(extractStart).Milliseconds()
		if err != nil {
			return p.fail(resp, totalStart, err)
		}

		if key != "" {
			p.cache.Set(key, &cache.Entry{Document: doc, Markdown: markdown, EngineUsed: resp.EngineUsed})
			resp.CacheStatus = "miss"
		}
	}

	p.finish(ctx, resp, doc, markdown, req.SkipAnalysis, totalStart)
	return resp, nil
}

// Parse runs a caller-supplied page through the pipeline without fetching.
func (p *Pipeline) Parse(ctx context.Context, req *models.ParseRequest) (*models.ScrapeResponse, error) {
	totalStart := time.Now()
	resp := &models.ScrapeResponse{}

	extractStart := time.Now()
	doc, markdown, err := p.extract(req.RawPage, req.IncludeMarkdown)
	resp.Timing.ExtractionMs = time.Since(extractStart).Milliseconds()
	if err != nil {
		return p.fail(resp, totalStart, err)
	}

	p.finish(ctx, resp, doc, markdown, req.SkipAnalysis, totalStart)
	return resp, nil
}

func (p *Pipeline) extract(page models.RawPage, withMarkdown bool) (*models.StructuredDocument, string, error) {
	doc, err := extract.Process(page)
	if err != nil {
		return nil, "", err
	}
	if !withMarkdown {
		return doc, "", nil
	}
	markdown, err := p.renderer.Render(page)
	if err != nil {
		slog.Warn("markdown rendering failed", "url", page.SourceURL, "error", err)
		return doc, "", nil
	}
	return doc, markdown, nil
}

func (p *Pipeline) finish(ctx context.Context, resp *models.ScrapeResponse, doc *models.StructuredDocument, markdown string, skipAnalysis bool, totalStart time.Time) {
	resp.Success = true
	resp.RawData = doc
	resp.Markdown = markdown

	if !skipAnalysis {
		analysisStart := time.Now()
		actx := ctx
		if p.analysisTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, p.analysisTimeout)
			defer cancel()
		}
		summarized, err := p.analyzer.Analyze(actx, doc)
		if err != nil {
			slog.Warn("analysis failed", "url", doc.SourceURL, "error", err)
		}
		resp.StructuredData = summarized
		resp.Timing.AnalysisMs = time.Since(analysisStart).Milliseconds()
	}

	resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()
}

func (p *Pipeline) fail(resp *models.ScrapeResponse, totalStart time.Time, err error) (*models.ScrapeResponse, error) {
	scrapeErr := asScrapeError(err)
	resp.Success = false
	resp.Error = scrapeErr.ToDetail()
	resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()
	return resp, scrapeErr
}
