package extract

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/webstruct/models"
)

// metaField maps one <meta> attribute selector to a Metadata field.
type metaField struct {
	attr  string // name, property or http-equiv
	value string
	set   func(*models.Metadata, string)
}

// metaFields is iterated in order for every <meta> element. The first element
// matching an entry decides that field, even when its content is empty.
var metaFields = []metaField{
	{"name", "description", func(m *models.Metadata, v string) { m.Description = v }},
	{"name", "keywords", func(m *models.Metadata, v string) { m.Keywords = v }},
	{"name", "author", func(m *models.Metadata, v string) { m.Author = v }},
	{"http-equiv", "content-language", func(m *models.Metadata, v string) { m.Language = v }},
	{"name", "robots", func(m *models.Metadata, v string) { m.Robots = v }},
	{"property", "og:title", func(m *models.Metadata, v string) { m.OGTitle = v }},
	{"property", "og:description", func(m *models.Metadata, v string) { m.OGDescription = v }},
	{"property", "og:image", func(m *models.Metadata, v string) { m.OGImage = v }},
	{"name", "twitter:card", func(m *models.Metadata, v string) { m.TwitterCard = v }},
}

var (
	canonicalMatcher = cascadia.MustCompile(`link[rel="canonical"]`)
	jsonLDMatcher    = cascadia.MustCompile(`script[type="application/ld+json"]`)
)

// ExtractMetadata collects the page title, the fixed set of meta tags, the
// canonical URL and every well-formed JSON-LD block. Canonical and og:image
// URLs are resolved against base.
func ExtractMetadata(doc *goquery.Document, base *url.URL) (models.Metadata, error) {
	md := models.Metadata{StructuredData: []json.RawMessage{}}
	if doc == nil || len(doc.Nodes) == 0 {
		return md, ErrNilDocument
	}

	md.Title = strings.TrimSpace(doc.Find("title").First().Text())

	decided := make([]bool, len(metaFields))
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		for i, f := range metaFields {
			if decided[i] {
				continue
			}
			if v, ok := s.Attr(f.attr); !ok || !strings.EqualFold(v, f.value) {
				continue
			}
			decided[i] = true
			f.set(&md, strings.TrimSpace(s.AttrOr("content", "")))
		}
	})

	if md.OGImage != "" {
		md.OGImage = resolveOrEmpty(base, md.OGImage, "og:image")
	}

	if href := doc.FindMatcher(canonicalMatcher).First().AttrOr("href", ""); href != "" {
		md.CanonicalURL = resolveOrEmpty(base, href, "canonical")
	}

	doc.FindMatcher(jsonLDMatcher).Each(func(i int, s *goquery.Selection) {
		block, err := decodeJSONLD(s.Text())
		if err != nil {
			slog.Debug("metadata: skipping malformed JSON-LD block",
				"url", baseString(base), "index", i, "error", err,
			)
			return
		}
		md.StructuredData = append(md.StructuredData, block)
	})

	return md, nil
}

// decodeJSONLD validates one script body and returns it compacted, keeping
// the source key order.
func decodeJSONLD(raw string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(raw))); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeJSONLD, "malformed JSON-LD block", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func resolveOrEmpty(base *url.URL, ref, field string) string {
	abs, err := ResolveURL(base, ref)
	if err != nil {
		slog.Debug("metadata: dropping unresolvable URL",
			"url", baseString(base), "field", field, "error", err,
		)
		return ""
	}
	return abs
}
