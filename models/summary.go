package models

// TimestampLayout is the fixed local-clock format of ProcessingTimestamp
// (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultSentiment is used whenever no classifier result is available.
const DefaultSentiment = "neutral"

// SummarizedDocument is the final record produced by merging a
// StructuredDocument with the external summarizer and classifier output.
type SummarizedDocument struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Summary string `json:"summary"`

	// SummaryError carries the summarizer failure message when Summary could
	// not be produced; it is empty on success.
	SummaryError string `json:"summary_error"`

	SentimentLabel      string          `json:"sentiment"`
	ContentAnalysis     ContentAnalysis `json:"content_analysis"`
	Statistics          Statistics      `json:"statistics"`
	ProcessingTimestamp string          `json:"processing_timestamp"`
}

// ContentAnalysis flags which block and media kinds a document contains.
type ContentAnalysis struct {
	HasHeadings bool `json:"has_headings"`
	HasLists    bool `json:"has_lists"`
	HasTables   bool `json:"has_tables"`
	HasForms    bool `json:"has_forms"`
	HasImages   bool `json:"has_images"`
	HasVideos   bool `json:"has_videos"`
}

// Statistics is a snapshot of counts already known from the StructuredDocument.
type Statistics struct {
	WordCount          int `json:"word_count"`
	CharacterCount     int `json:"character_count"`
	HeadingsCount      int `json:"headings_count"`
	ParagraphsCount    int `json:"paragraphs_count"`
	ImagesCount        int `json:"images_count"`
	InternalLinksCount int `json:"internal_links_count"`
	ExternalLinksCount int `json:"external_links_count"`
	SocialLinksCount   int `json:"social_links_count"`
}
