package models

import "encoding/json"

// StructuredDocument is the terminal artifact of the extraction core.
// Every slice is non-nil so the JSON form never omits a key.
type StructuredDocument struct {
	SourceURL      string        `json:"source_url"`
	StatusCode     int           `json:"status_code"`
	ContentType    string        `json:"content_type"`
	Encoding       string        `json:"encoding"`
	Metadata       Metadata      `json:"metadata"`
	ContentBlocks  ContentBlocks `json:"content_blocks"`
	Media          Media         `json:"media"`
	Links          Links         `json:"links"`
	CleanedText    string        `json:"cleaned_text"`
	WordCount      int           `json:"word_count"`
	CharacterCount int           `json:"character_count"`
}

// Metadata holds page-level information from <title>, <meta>, <link rel=canonical>
// and JSON-LD scripts. Missing tags leave fields as empty strings.
type Metadata struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Keywords      string `json:"keywords"`
	Author        string `json:"author"`
	Language      string `json:"language"`
	Robots        string `json:"robots"`
	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description"`
	OGImage       string `json:"og_image"`
	TwitterCard   string `json:"twitter_card"`
	CanonicalURL  string `json:"canonical_url"`

	// StructuredData holds one compacted JSON value per well-formed
	// application/ld+json script, in document order.
	StructuredData []json.RawMessage `json:"structured_data"`
}

// ContentBlocks groups the semantic blocks of a page by kind.
type ContentBlocks struct {
	// Headings are ordered by level first (all h1, then all h2, ...) and by
	// document order within a level.
	Headings   []Heading    `json:"headings"`
	Paragraphs []Paragraph  `json:"paragraphs"`
	Lists      []List       `json:"lists"`
	Tables     []Table      `json:"tables"`
	Forms      []Form       `json:"forms"`
	Navigation []Navigation `json:"navigation"`

	// Footer describes the first <footer> element, or is nil when the page has none.
	Footer *Footer `json:"footer"`
}

type Heading struct {
	Level      int      `json:"level"`
	Text       string   `json:"text"`
	ID         string   `json:"id"`
	ClassNames []string `json:"class_names"`
}

type Paragraph struct {
	Text       string   `json:"text"`
	ClassNames []string `json:"class_names"`
}

// List kinds.
const (
	ListOrdered   = "ordered"
	ListUnordered = "unordered"
)

type List struct {
	Kind       string   `json:"kind"`
	Items      []string `json:"items"`
	ClassNames []string `json:"class_names"`
}

// Table holds one row per <tr> and one cell per <td>/<th>.
type Table struct {
	Rows       [][]string `json:"rows"`
	ClassNames []string   `json:"class_names"`
}

type Form struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Inputs []FormInput `json:"inputs"`
}

type FormInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// Navigation describes one <nav> or <header> element. Links are raw,
// unresolved href values.
type Navigation struct {
	Links      []string `json:"links"`
	ClassNames []string `json:"class_names"`
}

type Footer struct {
	Text  string   `json:"text"`
	Links []string `json:"links"`
}

// Media collects embedded media references with absolute URLs.
type Media struct {
	Images  []Image  `json:"images"`
	Videos  []Video  `json:"videos"`
	Audio   []Audio  `json:"audio"`
	Iframes []Iframe `json:"iframes"`
}

type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Title  string `json:"title"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type Video struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Poster   string `json:"poster"`
}

type Audio struct {
	URL         string `json:"url"`
	HasControls bool   `json:"has_controls"`
}

type Iframe struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// Links holds the categorized anchors of a page. A link may appear in both
// External and Social.
type Links struct {
	Internal []Link       `json:"internal"`
	External []Link       `json:"external"`
	Social   []SocialLink `json:"social"`

	// Navigation and Footer are never populated by the categorizer; they are
	// kept so the output shape stays stable.
	Navigation []Link `json:"navigation"`
	Footer     []Link `json:"footer"`
}

// Link is an anchor resolved against the page URL.
type Link struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Social platforms recognised by the link categorizer.
const (
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
	PlatformOther     = "other"
)

type SocialLink struct {
	Link
	Platform string `json:"platform"`
}
