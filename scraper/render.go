package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/webstruct/engine"
	"github.com/use-agent/webstruct/models"
	"github.com/ysmood/gson"
)

// Render loads req.URL in a pooled tab and returns the rendered DOM.
//
// Lifecycle:
//
//  1. Timeout guard     – hard deadline on the entire operation
//  2. Acquire page      – borrow a tab from the pool (or create one)
//  3. DEFER: release    – about:blank, then return or retire the tab
//  4. Stealth           – mask navigator.webdriver etc. (before navigation)
//  5. Headers + hijack  – extra headers, block heavy resources and ads
//  6. Navigate + wait   – DOM stable
//  7. Extract           – HTML, title, final URL, status, content type, charset
func (s *Scraper) Render(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, s.effectiveTimeout(req.Timeout))
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		p, err := s.browser.Page(proto.TargetCreateTarget{})
		if err == nil {
			s.health.Store(p, newPageHealth(s.browserCfg.MaxPageUses, time.Now()))
		}
		return p, err
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}

	// ── 3. Release: the original page reference works after ctx expires.
	success := false
	defer func() { s.release(page, success) }()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// ── 5. Headers and resource blocking ──────────────────────────────
	if headers := buildHeaders(req.URL, req.Headers); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}
	if router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds); router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 6. Navigate + wait ────────────────────────────────────────────
	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	// ── 7. Extract ────────────────────────────────────────────────────
	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}
	if statusCode != 0 && (statusCode < 200 || statusCode > 299) {
		return nil, models.NewScrapeError(models.ErrCodeFetch,
			fmt.Sprintf("HTTP %d for %s", statusCode, req.URL), nil)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	success = true
	return &engine.FetchResult{
		HTML:        rawHTML,
		Title:       evalStringOrEmpty(p, `() => document.title`),
		StatusCode:  statusCode,
		FinalURL:    finalURL,
		ContentType: evalStringOrEmpty(p, `() => document.contentType`),
		Encoding:    strings.ToLower(evalStringOrEmpty(p, `() => document.characterSet`)),
	}, nil
}

// release blanks the tab and returns it to the pool, or closes it and frees
// its slot when its health says it should retire.
func (s *Scraper) release(page *rod.Page, success bool) {
	if err := page.Navigate("about:blank"); err != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", err)
		success = false
	}

	if v, ok := s.health.Load(page); ok {
		h := v.(*pageHealth)
		h.record(success)
		if h.shouldRetire(time.Now()) {
			slog.Debug("retiring browser tab")
			s.health.Delete(page)
			_ = page.Close()
			s.pagePool.Put(nil)
			return
		}
	}
	s.pagePool.Put(page)
}

// effectiveTimeout applies the configured default and ceiling.
func (s *Scraper) effectiveTimeout(requested time.Duration) time.Duration {
	timeout := requested
	if timeout <= 0 {
		timeout = s.scraperCfg.DefaultTimeout
	}
	if s.scraperCfg.MaxTimeout > 0 && timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	return timeout
}

// buildHeaders merges custom headers with a search-engine Referer unless
// the caller set one.
func buildHeaders(targetURL string, custom map[string]string) map[string]string {
	headers := make(map[string]string, len(custom)+1)
	if _, hasReferer := custom["Referer"]; !hasReferer {
		if u, err := url.Parse(targetURL); err == nil && u.Hostname() != "" {
			headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range custom {
		headers[k] = v
	}
	return headers
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
