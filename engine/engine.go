package engine

import (
	"context"
	"time"

	"github.com/use-agent/webstruct/models"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
}

// FetchResult is the output of a successful engine fetch. HTML is always
// UTF-8; Encoding names the charset it was decoded from.
type FetchResult struct {
	HTML        string
	Title       string
	StatusCode  int
	FinalURL    string
	ContentType string
	Encoding    string
	EngineName  string
}

// RawPage converts the result into the extraction core's input. The final
// URL, after redirects, becomes the page's base URL.
func (r *FetchResult) RawPage() models.RawPage {
	return models.RawPage{
		SourceURL:   r.FinalURL,
		HTML:        r.HTML,
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Encoding:    r.Encoding,
	}
}
