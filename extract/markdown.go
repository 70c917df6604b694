package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/webstruct/models"
)

// minArticleLength is the shortest readability text accepted as the main
// content. Shorter results fall back to the full page.
const minArticleLength = 50

// MarkdownRenderer converts a page's main content to Markdown. It is safe for
// concurrent use.
type MarkdownRenderer struct {
	conv *converter.Converter
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Render isolates the article body with readability and converts it. Links
// and images in the output are absolute.
func (r *MarkdownRenderer) Render(page models.RawPage) (string, error) {
	content := mainContent(page)
	md, err := r.conv.ConvertString(content, converter.WithDomain(page.SourceURL))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeExtraction, "markdown conversion failed", err)
	}
	return strings.TrimSpace(md), nil
}

func mainContent(page models.RawPage) string {
	u, err := url.Parse(page.SourceURL)
	if err != nil {
		return page.HTML
	}
	article, err := readability.FromReader(strings.NewReader(page.HTML), u)
	if err != nil {
		slog.Debug("markdown: readability failed, converting full page",
			"url", page.SourceURL, "error", err,
		)
		return page.HTML
	}
	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		slog.Debug("markdown: article too short, converting full page",
			"url", page.SourceURL, "length", len(article.TextContent),
		)
		return page.HTML
	}
	return article.Content
}
