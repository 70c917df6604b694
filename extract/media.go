package extract

import (
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/webstruct/models"
)

// ExtractMedia collects images, videos, audio and iframes. Elements without a
// src, or whose src cannot be resolved against base, are skipped.
func ExtractMedia(doc *goquery.Document, base *url.URL) (models.Media, error) {
	media := models.Media{
		Images:  []models.Image{},
		Videos:  []models.Video{},
		Audio:   []models.Audio{},
		Iframes: []models.Iframe{},
	}
	if doc == nil || len(doc.Nodes) == 0 {
		return media, ErrNilDocument
	}

	eachSource(doc, "img", base, func(s *goquery.Selection, src string) {
		media.Images = append(media.Images, models.Image{
			URL:    src,
			Alt:    s.AttrOr("alt", ""),
			Title:  s.AttrOr("title", ""),
			Width:  s.AttrOr("width", ""),
			Height: s.AttrOr("height", ""),
		})
	})

	// <source> children of a <video> are reported alongside it.
	eachSource(doc, "video, source", base, func(s *goquery.Selection, src string) {
		media.Videos = append(media.Videos, models.Video{
			URL:      src,
			MimeType: s.AttrOr("type", ""),
			Poster:   s.AttrOr("poster", ""),
		})
	})

	eachSource(doc, "audio", base, func(s *goquery.Selection, src string) {
		_, controls := s.Attr("controls")
		media.Audio = append(media.Audio, models.Audio{URL: src, HasControls: controls})
	})

	eachSource(doc, "iframe", base, func(s *goquery.Selection, src string) {
		media.Iframes = append(media.Iframes, models.Iframe{
			URL:    src,
			Title:  s.AttrOr("title", ""),
			Width:  s.AttrOr("width", ""),
			Height: s.AttrOr("height", ""),
		})
	})

	return media, nil
}

// eachSource calls fn with the resolved src of every element matching
// selector. Failures are isolated to the element.
func eachSource(doc *goquery.Document, selector string, base *url.URL, fn func(*goquery.Selection, string)) {
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		abs, err := ResolveURL(base, src)
		if err != nil {
			slog.Debug("media: skipping unresolvable source",
				"element", goquery.NodeName(s), "src", src, "error", err,
			)
			return
		}
		fn(s, abs)
	})
}
