package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/use-agent/webstruct/models"
)

// ResolveURL resolves ref against base and returns the absolute URL.
// A nil base leaves ref unresolved but still validated.
func ResolveURL(base *url.URL, ref string) (string, error) {
	u, err := resolve(base, ref)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func resolve(base *url.URL, ref string) (*url.URL, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewScrapeError(models.ErrCodeResolution, "empty URL reference", nil)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeResolution, "invalid URL reference "+ref, err)
	}
	if base == nil {
		return u, nil
	}
	return base.ResolveReference(u), nil
}

// parseBase parses the page URL used for resolution. An unparseable source
// URL yields nil so that extraction still proceeds.
func parseBase(sourceURL string) *url.URL {
	base, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil {
		slog.Debug("extract: source URL is not parseable, references stay relative",
			"url", sourceURL, "error", err,
		)
		return nil
	}
	return base
}

func baseString(base *url.URL) string {
	if base == nil {
		return ""
	}
	return base.String()
}
