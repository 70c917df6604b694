package engine

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// emptyRoots are mount points left empty by client-side rendered apps.
var emptyRoots = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
}

// needsBrowser reports whether statically fetched HTML is likely an SPA
// shell or otherwise depends on JavaScript to show its content.
func needsBrowser(body string) bool {
	bodyText := extractVisibleText(body)

	// Very little visible text in <body>.
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(body)
	for _, root := range emptyRoots {
		if strings.Contains(lower, root) {
			return true
		}
	}

	if reNoscript.MatchString(lower) {
		return true
	}

	// Many scripts and little text.
	return strings.Count(lower, "<script") > 10 && len(bodyText) < 500
}

// extractVisibleText returns the text inside <body>, skipping script, style
// and noscript content. It is only used for heuristics.
func extractVisibleText(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
