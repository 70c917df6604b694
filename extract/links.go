package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/webstruct/models"
)

var anchorMatcher = cascadia.MustCompile("a[href]")

// socialPlatforms is checked in order; the first substring hit names the
// platform.
var socialPlatforms = []string{
	models.PlatformFacebook,
	models.PlatformTwitter,
	models.PlatformInstagram,
	models.PlatformLinkedIn,
	models.PlatformYouTube,
}

// ExtractLinks resolves every anchor against base and sorts it into internal
// or external by host. Links naming a social platform are also listed in
// Social. Fragment-only and empty hrefs are ignored.
func ExtractLinks(doc *goquery.Document, base *url.URL) (models.Links, error) {
	links := models.Links{
		Internal:   []models.Link{},
		External:   []models.Link{},
		Social:     []models.SocialLink{},
		// Navigation and footer links are reported under content_blocks; these
		// categories are never populated.
		Navigation: []models.Link{},
		Footer:     []models.Link{},
	}
	if doc == nil || len(doc.Nodes) == 0 {
		return links, ErrNilDocument
	}

	doc.FindMatcher(anchorMatcher).Each(func(_ int, a *goquery.Selection) {
		// Surrounding whitespace is dropped first, so " #x" counts as a fragment.
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		u, err := resolve(base, href)
		if err != nil {
			slog.Debug("links: skipping unresolvable anchor", "href", href, "error", err)
			return
		}

		link := models.Link{
			URL:   u.String(),
			Text:  trimmedText(a),
			Title: a.AttrOr("title", ""),
		}
		if isInternal(u, base) {
			links.Internal = append(links.Internal, link)
		} else {
			links.External = append(links.External, link)
		}

		if platform, ok := socialPlatform(link.URL); ok {
			links.Social = append(links.Social, models.SocialLink{Link: link, Platform: platform})
		}
	})

	return links, nil
}

// isInternal compares hosts including the port. Without a base only
// host-less references count as internal.
func isInternal(u, base *url.URL) bool {
	var host string
	if base != nil {
		host = base.Host
	}
	return strings.EqualFold(u.Host, host)
}

func socialPlatform(absURL string) (string, bool) {
	lower := strings.ToLower(absURL)
	for _, p := range socialPlatforms {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}
