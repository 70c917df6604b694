package extract

import (
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const testBase = "https://example.com/page"

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc := ParseHTML(body)
	require.NotNil(t, doc)
	return doc
}

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
