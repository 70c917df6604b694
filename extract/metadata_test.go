package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata(t *testing.T) {
	t.Parallel()

	t.Run("reads every known tag", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<title> Example Page </title>
			<meta name="description" content="A description">
			<meta name="keywords" content="go, html">
			<meta name="author" content="Jane Doe">
			<meta http-equiv="content-language" content="en-US">
			<meta name="robots" content="index,follow">
			<meta property="og:title" content="OG Title">
			<meta property="og:description" content="OG Description">
			<meta property="og:image" content="/img/cover.png">
			<meta name="twitter:card" content="summary_large_image">
			<link rel="canonical" href="/canonical">
		</head><body></body></html>`

		md, err := ExtractMetadata(parse(t, html), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Equal(t, "Example Page", md.Title)
		assert.Equal(t, "A description", md.Description)
		assert.Equal(t, "go, html", md.Keywords)
		assert.Equal(t, "Jane Doe", md.Author)
		assert.Equal(t, "en-US", md.Language)
		assert.Equal(t, "index,follow", md.Robots)
		assert.Equal(t, "OG Title", md.OGTitle)
		assert.Equal(t, "OG Description", md.OGDescription)
		assert.Equal(t, "https://example.com/img/cover.png", md.OGImage)
		assert.Equal(t, "summary_large_image", md.TwitterCard)
		assert.Equal(t, "https://example.com/canonical", md.CanonicalURL)
	})

	t.Run("missing tags are empty strings", func(t *testing.T) {
		t.Parallel()

		md, err := ExtractMetadata(parse(t, `<p>nothing here</p>`), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Empty(t, md.Title)
		assert.Empty(t, md.Description)
		assert.Empty(t, md.OGImage)
		assert.Empty(t, md.CanonicalURL)
		assert.NotNil(t, md.StructuredData)
		assert.Empty(t, md.StructuredData)
	})

	t.Run("first matching meta wins", func(t *testing.T) {
		t.Parallel()

		html := `<meta name="description" content="first"><meta name="description" content="second">`

		md, err := ExtractMetadata(parse(t, html), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Equal(t, "first", md.Description)
	})

	t.Run("attribute values match case-insensitively", func(t *testing.T) {
		t.Parallel()

		md, err := ExtractMetadata(parse(t, `<meta name="Description" content="mixed case">`), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Equal(t, "mixed case", md.Description)
	})

	t.Run("malformed JSON-LD does not drop siblings", func(t *testing.T) {
		t.Parallel()

		html := `<head>
			<script type="application/ld+json">{not json}</script>
			<script type="application/ld+json">{"@type": "Article", "name": "x"}</script>
			<script type="application/ld+json"></script>
			<script type="application/ld+json">[1, 2]</script>
		</head>`

		md, err := ExtractMetadata(parse(t, html), mustBase(t, testBase))

		require.NoError(t, err)
		require.Len(t, md.StructuredData, 2)
		assert.JSONEq(t, `{"@type":"Article","name":"x"}`, string(md.StructuredData[0]))
		assert.JSONEq(t, `[1,2]`, string(md.StructuredData[1]))
	})

	t.Run("only malformed JSON-LD yields nothing", func(t *testing.T) {
		t.Parallel()

		html := `<script type="application/ld+json">{not json}</script>`

		md, err := ExtractMetadata(parse(t, html), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Empty(t, md.StructuredData)
	})

	t.Run("unresolvable canonical becomes empty", func(t *testing.T) {
		t.Parallel()

		md, err := ExtractMetadata(parse(t, `<link rel="canonical" href="http://[::1">`), mustBase(t, testBase))

		require.NoError(t, err)
		assert.Empty(t, md.CanonicalURL)
	})

	t.Run("nil document", func(t *testing.T) {
		t.Parallel()

		_, err := ExtractMetadata(nil, nil)

		assert.ErrorIs(t, err, ErrNilDocument)
	})
}
