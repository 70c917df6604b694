package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/webstruct/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	t.Setenv("WEBSTRUCT_SUMMARIZER", "lead")

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><head><title>Local</title></head>
<body><p>Saved page with enough text.</p><a href="/about">About</a><img src="logo.png"></body></html>`), 0o644))

	out, err := runCLI(t, "parse", "--file", path, "--url", "https://example.com/dir/page", "--summarize")
	require.NoError(t, err)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.RawData)
	assert.Equal(t, "Local", resp.RawData.Metadata.Title)
	require.Len(t, resp.RawData.Links.Internal, 1)
	assert.Equal(t, "https://example.com/about", resp.RawData.Links.Internal[0].URL)
	require.Len(t, resp.RawData.Media.Images, 1)
	assert.Equal(t, "https://example.com/dir/logo.png", resp.RawData.Media.Images[0].URL)
	require.NotNil(t, resp.StructuredData)
	assert.Equal(t, "Local", resp.StructuredData.Title)
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "parse", "--url", "https://example.com")
	assert.Error(t, err, "missing --file")

	_, err = runCLI(t, "parse", "--file", filepath.Join(t.TempDir(), "missing.html"), "--url", "https://example.com")
	assert.Error(t, err)
}

func TestFetchCommand_UnknownMethod(t *testing.T) {
	_, err := runCLI(t, "fetch", "https://example.com", "--method", "carrier-pigeon")
	assert.Error(t, err)
}
