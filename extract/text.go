package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/webstruct/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNilDocument is returned by every extractor when it is handed no tree.
// It is the only error that aborts a pipeline call.
var ErrNilDocument = models.NewScrapeError(models.ErrCodeExtraction, "document tree is nil", nil)

// hiddenTags are never descended into when collecting text.
var hiddenTags = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Noscript: {},
}

// phraseGap separates visually distinct phrases within one line.
var phraseGap = regexp.MustCompile(` {2,}`)

// NormalizeText returns the visible text of doc as one cleaned string.
//
// The raw text of the tree (script, style and noscript subtrees excluded) is
// split into lines, each line is trimmed and split again on runs of two or
// more spaces, empty fragments are dropped and the rest joined with a single
// space.
func NormalizeText(doc *goquery.Document) (string, error) {
	if doc == nil || len(doc.Nodes) == 0 {
		return "", ErrNilDocument
	}
	return CleanText(visibleText(doc.Selection)), nil
}

// CleanText applies the line and phrase normalisation to already
// extracted text.
func CleanText(raw string) string {
	var fragments []string
	for _, line := range strings.FieldsFunc(raw, isLineBreak) {
		for _, phrase := range phraseGap.Split(strings.TrimSpace(line), -1) {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				fragments = append(fragments, phrase)
			}
		}
	}
	return strings.Join(fragments, " ")
}

// isLineBreak reports whether r ends a line: the ASCII breaks and
// separators, NEL, and the Unicode line and paragraph separators.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// visibleText concatenates the text nodes under s, skipping hidden subtrees
// and comments. The tree is not modified.
func visibleText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		writeVisibleText(&b, n)
	}
	return b.String()
}

func writeVisibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if _, hidden := hiddenTags[n.DataAtom]; hidden {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(b, c)
	}
}

// trimmedText is the visible text of s with surrounding whitespace removed.
func trimmedText(s *goquery.Selection) string {
	return strings.TrimSpace(visibleText(s))
}
