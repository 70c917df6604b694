package extract

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/webstruct/models"
	"golang.org/x/net/html"
)

// ParseHTML builds the tree shared by all extractors. Markup the tokenizer
// rejects degrades to an empty <html><head></head><body></body> tree.
func ParseHTML(rawHTML string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err == nil {
		return doc
	}
	slog.Warn("extract: HTML parse failed, using empty document",
		"error", models.NewScrapeError(models.ErrCodeParse, "unparseable HTML", err),
	)
	root, _ := html.Parse(strings.NewReader(""))
	return goquery.NewDocumentFromNode(root)
}

// Assemble runs the normalizer and the four extractors over doc and merges
// their output with the page's response metadata. It has no clock or
// environment dependency: identical inputs give identical documents.
func Assemble(page models.RawPage, doc *goquery.Document) (*models.StructuredDocument, error) {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil, ErrNilDocument
	}
	base := parseBase(page.SourceURL)

	text, err := NormalizeText(doc)
	if err != nil {
		return nil, err
	}
	metadata, err := ExtractMetadata(doc, base)
	if err != nil {
		return nil, err
	}
	blocks, err := ExtractContentBlocks(doc)
	if err != nil {
		return nil, err
	}
	media, err := ExtractMedia(doc, base)
	if err != nil {
		return nil, err
	}
	links, err := ExtractLinks(doc, base)
	if err != nil {
		return nil, err
	}

	return &models.StructuredDocument{
		SourceURL:      page.SourceURL,
		StatusCode:     page.StatusCode,
		ContentType:    page.ContentType,
		Encoding:       page.Encoding,
		Metadata:       metadata,
		ContentBlocks:  blocks,
		Media:          media,
		Links:          links,
		CleanedText:    text,
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
	}, nil
}

// Process parses page.HTML and assembles the structured document.
func Process(page models.RawPage) (*models.StructuredDocument, error) {
	doc, err := Assemble(page, ParseHTML(page.HTML))
	if err != nil {
		if errors.Is(err, ErrNilDocument) {
			return nil, err
		}
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "extraction failed", err)
	}
	return doc, nil
}
