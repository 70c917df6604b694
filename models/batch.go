package models

// BatchRequest is the payload for POST /api/v1/batch/scrape.
type BatchRequest struct {
	// URLs is the list of target pages. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=100,dive,url"`

	// Options are applied to every URL in the batch.
	Options BatchOptions `json:"options"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchOptions are the shared scrape settings for a batch.
type BatchOptions struct {
	Method          string            `json:"method,omitempty" binding:"omitempty,oneof=auto http browser requests selenium"`
	Timeout         int               `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
	Stealth         bool              `json:"stealth,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	IncludeMarkdown bool              `json:"include_markdown,omitempty"`
	SkipAnalysis    bool              `json:"skip_analysis,omitempty"`
}

// ScrapeRequest builds the per-URL request for one batch entry.
func (o BatchOptions) ScrapeRequest(url string) *ScrapeRequest {
	req := &ScrapeRequest{
		URL:             url,
		Method:          o.Method,
		Timeout:         o.Timeout,
		Stealth:         o.Stealth,
		Headers:         o.Headers,
		IncludeMarkdown: o.IncludeMarkdown,
		SkipAnalysis:    o.SkipAnalysis,
	}
	req.Defaults()
	return req
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchResponse is the immediate response for POST /api/v1/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}
