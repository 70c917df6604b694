// Package analysis turns a StructuredDocument into the final
// SummarizedDocument. Summarization and sentiment classification are
// delegated to injected collaborators; their failures never fail a request.
package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/use-agent/webstruct/models"
)

// Input bounds, in runes, for the text handed to collaborators.
const (
	DefaultSummaryInputRunes  = 1000
	DefaultClassifyInputRunes = 512
)

// ellipsis marks text cut by Truncate.
const ellipsis = "..."

// Summarizer produces a short summary of plain text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Classifier labels plain text with a sentiment.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Outcome is what the collaborators returned for one document.
type Outcome struct {
	Summary    string
	SummaryErr error
	Sentiment  string
}

// Merge builds the SummarizedDocument from doc and out. Flags and statistics
// come from counts already present in doc. at is formatted on its own
// clock; pass a local time for local timestamps.
func Merge(doc *models.StructuredDocument, out Outcome, at time.Time) *models.SummarizedDocument {
	sentiment := out.Sentiment
	if sentiment == "" {
		sentiment = models.DefaultSentiment
	}
	var summaryErr string
	if out.SummaryErr != nil {
		summaryErr = out.SummaryErr.Error()
	}

	blocks, media, links := doc.ContentBlocks, doc.Media, doc.Links
	return &models.SummarizedDocument{
		URL:            doc.SourceURL,
		Title:          doc.Metadata.Title,
		Description:    doc.Metadata.Description,
		Summary:        out.Summary,
		SummaryError:   summaryErr,
		SentimentLabel: sentiment,
		ContentAnalysis: models.ContentAnalysis{
			HasHeadings: len(blocks.Headings) > 0,
			HasLists:    len(blocks.Lists) > 0,
			HasTables:   len(blocks.Tables) > 0,
			HasForms:    len(blocks.Forms) > 0,
			HasImages:   len(media.Images) > 0,
			HasVideos:   len(media.Videos) > 0,
		},
		Statistics: models.Statistics{
			WordCount:          doc.WordCount,
			CharacterCount:     doc.CharacterCount,
			HeadingsCount:      len(blocks.Headings),
			ParagraphsCount:    len(blocks.Paragraphs),
			ImagesCount:        len(media.Images),
			InternalLinksCount: len(links.Internal),
			ExternalLinksCount: len(links.External),
			SocialLinksCount:   len(links.Social),
		},
		ProcessingTimestamp: at.Format(models.TimestampLayout),
	}
}

// Truncate returns at most max runes of text, followed by "..." when
// anything was cut.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	return prefix(text, max) + ellipsis
}

// prefix returns the first n runes of text.
func prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// Analyzer runs the summarizer and the optional classifier over a document
// and merges the results.
type Analyzer struct {
	summarizer    Summarizer
	classifier    Classifier
	summaryLimit  int
	classifyLimit int
	now           func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClassifier enables sentiment classification.
func WithClassifier(c Classifier) Option {
	return func(a *Analyzer) { a.classifier = c }
}

// WithInputLimits overrides the rune bounds for summarizer and classifier
// input. Non-positive values keep the defaults.
func WithInputLimits(summary, classify int) Option {
	return func(a *Analyzer) {
		if summary > 0 {
			a.summaryLimit = summary
		}
		if classify > 0 {
			a.classifyLimit = classify
		}
	}
}

// WithClock replaces time.Now for processing timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer returns an Analyzer using s, or LeadSummarizer when s is nil.
func NewAnalyzer(s Summarizer, opts ...Option) *Analyzer {
	if s == nil {
		s = NewLeadSummarizer()
	}
	a := &Analyzer{
		summarizer:    s,
		summaryLimit:  DefaultSummaryInputRunes,
		classifyLimit: DefaultClassifyInputRunes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze summarizes and classifies doc.CleanedText concurrently. Collaborator
// errors are recorded on the result, never returned; the only error is a
// nil document.
func (a *Analyzer) Analyze(ctx context.Context, doc *models.StructuredDocument) (*models.SummarizedDocument, error) {
	if doc == nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "no document to analyze", nil)
	}
	if doc.CleanedText == "" {
		return Merge(doc, Outcome{}, a.now()), nil
	}

	summaryInput := Truncate(doc.CleanedText, a.summaryLimit)
	var out Outcome

	var wg sync.WaitGroup
	wg.Go(func() {
		summary, err := a.summarizer.Summarize(ctx, summaryInput)
		if err != nil {
			slog.Warn("analysis: summarizer failed",
				"url", doc.SourceURL, "error", err,
			)
			out.SummaryErr = models.NewScrapeError(models.ErrCodeSummarization, "summary unavailable", err)
			return
		}
		out.Summary = summary
	})
	if a.classifier != nil {
		wg.Go(func() {
			label, err := a.classifier.Classify(ctx, prefix(summaryInput, a.classifyLimit))
			if err != nil {
				slog.Debug("analysis: classifier failed, using default sentiment",
					"url", doc.SourceURL,
					"error", models.NewScrapeError(models.ErrCodeClassification, "sentiment unavailable", err),
				)
				return
			}
			out.Sentiment = ParseSentiment(label)
		})
	}
	wg.Wait()

	return Merge(doc, out, a.now()), nil
}
