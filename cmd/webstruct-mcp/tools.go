package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/webstruct/models"
)

// apiClient talks to a running webstruct server.
type apiClient struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	pollInterval time.Duration
}

func (c *apiClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// pollBatch polls a batch job until it leaves the processing state.
func (c *apiClient) pollBatch(ctx context.Context, id string) (*models.BatchStatusResponse, error) {
	interval := c.pollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := c.do(ctx, http.MethodGet, "/api/v1/batch/"+id, nil)
			if err != nil {
				return nil, err
			}
			var status models.BatchStatusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}

func handleScrapePage(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		return c.envelope(ctx, "/api/v1/scrape", models.ScrapeRequest{
			URL:             url,
			Method:          request.GetString("method", ""),
			IncludeMarkdown: request.GetBool("include_markdown", false),
		})
	}
}

func handleParseHTML(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		html, err := request.RequireString("html")
		if err != nil {
			return mcp.NewToolResultError("html is required"), nil
		}
		return c.envelope(ctx, "/api/v1/parse", models.ParseRequest{
			RawPage: models.RawPage{SourceURL: url, HTML: html, ContentType: "text/html", Encoding: "utf-8"},
		})
	}
}

func handleBatchScrape(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		body, err := c.do(ctx, http.MethodPost, "/api/v1/batch/scrape", models.BatchRequest{
			URLs:    urls,
			Options: models.BatchOptions{Method: request.GetString("method", "")},
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var started models.BatchResponse
		if err := json.Unmarshal(body, &started); err != nil || started.ID == "" {
			return mcp.NewToolResultError("batch job creation failed: " + string(body)), nil
		}

		status, err := c.pollBatch(ctx, started.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}
		return jsonResult(status)
	}
}

// envelope posts payload and returns the scrape envelope as JSON text, or
// a tool error when the API reports a failure.
func (c *apiClient) envelope(ctx context.Context, path string, payload any) (*mcp.CallToolResult, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
	}
	if !resp.Success {
		msg := "scrape failed"
		if resp.Error != nil {
			msg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
		}
		return mcp.NewToolResultError(msg), nil
	}
	return jsonResult(resp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
