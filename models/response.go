package models

// ScrapeResponse is the response for POST /api/v1/scrape and /api/v1/parse.
type ScrapeResponse struct {
	// Success indicates whether the request completed without errors.
	Success bool `json:"success"`

	// EngineUsed names the fetch engine that produced the page
	// ("http", "http-static", "browser", "browser-stealth"); empty for /parse.
	EngineUsed string `json:"engine_used,omitempty"`

	// RawData is the full structured extraction of the page.
	RawData *StructuredDocument `json:"raw_data,omitempty"`

	// StructuredData is the summarized record; nil when analysis was skipped.
	StructuredData *SummarizedDocument `json:"structured_data,omitempty"`

	// Markdown is the main content rendered as Markdown, when requested.
	Markdown string `json:"markdown,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs      int64 `json:"total_ms"`
	FetchMs      int64 `json:"fetch_ms"`
	ExtractionMs int64 `json:"extraction_ms"`
	AnalysisMs   int64 `json:"analysis_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string    `json:"status"` // "healthy" or "degraded"
	Uptime     string    `json:"uptime"`
	PoolStats  PoolStats `json:"pool_stats"`
	Summarizer string    `json:"summarizer"`
	Version    string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	Enabled     bool `json:"enabled"`
	MaxPages    int  `json:"max_pages"`
	ActivePages int  `json:"active_pages"`
}
