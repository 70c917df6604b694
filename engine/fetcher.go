package engine

import (
	"context"

	"github.com/use-agent/webstruct/models"
)

// Fetcher routes a request to the engine selected by the fetch method.
type Fetcher struct {
	plain   Engine
	browser Engine
	auto    Engine
}

// NewFetcher creates a Fetcher. browser and auto may be nil: without a
// browser the browser method is rejected, and without auto the auto method
// uses plain.
func NewFetcher(plain, browser, auto Engine) *Fetcher {
	if auto == nil {
		auto = plain
	}
	return &Fetcher{plain: plain, browser: browser, auto: auto}
}

// Fetch loads req.URL with the engine for method (see models.NormalizeMethod).
func (f *Fetcher) Fetch(ctx context.Context, method string, req *FetchRequest) (*FetchResult, error) {
	switch models.NormalizeMethod(method) {
	case models.MethodHTTP:
		return f.plain.Fetch(ctx, req)
	case models.MethodBrowser:
		if f.browser == nil {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "browser fetching is disabled", nil)
		}
		return f.browser.Fetch(ctx, req)
	case models.MethodAuto:
		return f.auto.Fetch(ctx, req)
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "unknown fetch method "+method, nil)
	}
}

// BrowserEnabled reports whether the browser method is available.
func (f *Fetcher) BrowserEnabled() bool {
	return f.browser != nil
}
