package models

// Fetch methods accepted by the scrape endpoints.
const (
	MethodAuto    = "auto"
	MethodHTTP    = "http"
	MethodBrowser = "browser"
)

// NormalizeMethod maps the legacy method names ("requests", "selenium") onto
// the current ones and returns "" for anything unknown.
func NormalizeMethod(m string) string {
	switch m {
	case "", MethodAuto:
		return MethodAuto
	case MethodHTTP, "requests":
		return MethodHTTP
	case MethodBrowser, "selenium":
		return MethodBrowser
	default:
		return ""
	}
}

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Method selects the fetch strategy.
	// "auto" (default): HTTP first, escalating to a headless browser.
	// "http" (alias "requests"): plain HTTP only.
	// "browser" (alias "selenium"): headless Chrome only.
	Method string `json:"method,omitempty" binding:"omitempty,oneof=auto http browser requests selenium"`

	// Timeout is the maximum duration in seconds for the fetch.
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth enables anti-bot-detection evasions in the browser engines.
	Stealth bool `json:"stealth,omitempty"`

	// Headers are extra request headers sent to the target.
	Headers map[string]string `json:"headers,omitempty"`

	// MaxAge enables the document cache: a cached StructuredDocument younger
	// than MaxAge milliseconds is reused. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// IncludeMarkdown adds a Markdown rendering of the main content.
	IncludeMarkdown bool `json:"include_markdown,omitempty"`

	// SkipAnalysis omits the summarizer/classifier merge step.
	SkipAnalysis bool `json:"skip_analysis,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	r.Method = NormalizeMethod(r.Method)
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}

// ParseRequest is the payload for POST /api/v1/parse: a page fetched by the
// caller, run through the extraction core without any network access.
type ParseRequest struct {
	RawPage

	IncludeMarkdown bool `json:"include_markdown,omitempty"`
	SkipAnalysis    bool `json:"skip_analysis,omitempty"`
}
