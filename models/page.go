package models

// RawPage is the fetcher's output and the only input to the extraction core.
// It is passed by value and never modified after construction.
type RawPage struct {
	// SourceURL is the final URL after redirects; it is the base for
	// resolving every relative reference on the page.
	SourceURL string `json:"source_url" binding:"required"`

	// HTML is the decoded (UTF-8) document markup.
	HTML string `json:"html"`

	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Encoding    string `json:"encoding"`
}
