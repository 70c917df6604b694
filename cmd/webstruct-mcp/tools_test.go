package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/webstruct/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &apiClient{baseURL: srv.URL, apiKey: "k", http: srv.Client(), pollInterval: time.Millisecond}
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestScrapePage(t *testing.T) {
	t.Parallel()

	var got models.ScrapeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/scrape", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-API-Key"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(models.ScrapeResponse{
			Success:  true,
			RawData:  &models.StructuredDocument{SourceURL: got.URL},
			Markdown: "# Title",
		})
	})

	res, err := handleScrapePage(c)(context.Background(), callTool(map[string]any{
		"url":              "https://example.com",
		"method":           "http",
		"include_markdown": true,
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, "http", got.Method)
	assert.True(t, got.IncludeMarkdown)
	assert.Contains(t, resultText(t, res), `"markdown": "# Title"`)
}

func TestScrapePage_APIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		_ = json.NewEncoder(w).Encode(models.ScrapeResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeTimeout, Message: "page load timed out"},
		})
	})

	res, err := handleScrapePage(c)(context.Background(), callTool(map[string]any{"url": "https://example.com"}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), models.ErrCodeTimeout)
}

func TestScrapePage_MissingURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("API must not be called")
	})

	res, err := handleScrapePage(c)(context.Background(), callTool(map[string]any{}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseHTML(t *testing.T) {
	t.Parallel()

	var got models.ParseRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/parse", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(models.ScrapeResponse{Success: true})
	})

	res, err := handleParseHTML(c)(context.Background(), callTool(map[string]any{
		"url":  "https://example.com/a",
		"html": "<p>hello</p>",
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "https://example.com/a", got.SourceURL)
	assert.Equal(t, "<p>hello</p>", got.HTML)
}

func TestBatchScrape(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/batch/scrape":
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(models.BatchResponse{ID: "batch-1", Status: models.BatchProcessing, Total: 2})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/batch/batch-1":
			status := models.BatchProcessing
			if polls.Add(1) > 1 {
				status = models.BatchCompleted
			}
			_ = json.NewEncoder(w).Encode(models.BatchStatusResponse{ID: "batch-1", Status: status, Completed: 2, Total: 2})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	res, err := handleBatchScrape(c)(context.Background(), callTool(map[string]any{
		"urls": []any{"https://example.com/a", "https://example.com/b"},
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"status": "completed"`)
	assert.Equal(t, int32(2), polls.Load())
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s := newServer(&apiClient{baseURL: "http://127.0.0.1:0", http: http.DefaultClient})
	require.NotNil(t, s)
}
