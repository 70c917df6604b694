// Command webstruct-mcp serves the webstruct API to MCP clients over stdio.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("WEBSTRUCT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &apiClient{
		baseURL: apiURL,
		apiKey:  os.Getenv("WEBSTRUCT_API_KEY"),
		http:    &http.Client{Timeout: 150 * time.Second},
	}

	if err := server.ServeStdio(newServer(c)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"webstruct",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("scrape_page",
		mcp.WithDescription("Fetch a web page and return its structured document: metadata, headings, paragraphs, lists, tables, forms, media and categorized links, plus a short summary and sentiment."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("method",
			mcp.Description("Fetch method: 'auto' (default, HTTP first then headless browser), 'http', or 'browser'"),
			mcp.Enum("auto", "http", "browser"),
		),
		mcp.WithBoolean("include_markdown",
			mcp.Description("Also return the main content rendered as Markdown"),
		),
	), handleScrapePage(c))

	s.AddTool(mcp.NewTool("parse_html",
		mcp.WithDescription("Extract a structured document from HTML you already have. Relative links and media are resolved against url."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page's source URL, used as the base for relative references"),
		),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("The page markup"),
		),
	), handleParseHTML(c))

	s.AddTool(mcp.NewTool("batch_scrape",
		mcp.WithDescription("Scrape several URLs in parallel and return one structured document per URL."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to scrape (at most 100)"),
		),
		mcp.WithString("method",
			mcp.Description("Fetch method for every URL: 'auto' (default), 'http', or 'browser'"),
			mcp.Enum("auto", "http", "browser"),
		),
	), handleBatchScrape(c))

	return s
}
