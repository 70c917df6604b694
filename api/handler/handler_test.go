package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/webstruct/analysis"
	"github.com/use-agent/webstruct/cache"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/engine"
	"github.com/use-agent/webstruct/models"
	"github.com/use-agent/webstruct/webhook"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const articleHTML = `<html><head><title>Launch</title>
<meta name="description" content="Product launch notes">
</head><body>
<h1>We shipped it</h1>
<p>The new release is faster and simpler to operate.</p>
<a href="/docs">Docs</a>
<a href="https://twitter.com/acme">Twitter</a>
</body></html>`

var _ PageFetcher = (*engine.Fetcher)(nil)

type fakeFetcher struct {
	calls atomic.Int32
	fetch func(ctx context.Context, method string, req *engine.FetchRequest) (*engine.FetchResult, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, method string, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.calls.Add(1)
	return f.fetch(ctx, method, req)
}

func staticFetcher(body string) *fakeFetcher {
	return &fakeFetcher{fetch: func(_ context.Context, _ string, req *engine.FetchRequest) (*engine.FetchResult, error) {
		return &engine.FetchResult{
			HTML:        body,
			StatusCode:  http.StatusOK,
			FinalURL:    req.URL,
			ContentType: "text/html; charset=utf-8",
			Encoding:    "utf-8",
			EngineName:  "http",
		}, nil
	}}
}

func testAnalyzer() *analysis.Analyzer {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	return analysis.NewAnalyzer(nil, analysis.WithClock(func() time.Time { return at }))
}

func newTestRouter(p *Pipeline, b *BatchRunner) *gin.Engine {
	r := gin.New()
	r.POST("/scrape", Scrape(p))
	r.POST("/parse", Parse(p))
	if b != nil {
		r.POST("/batch/scrape", PostBatch(b))
		r.GET("/batch/:id", GetBatch(b))
	}
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeScrape(t *testing.T, w *httptest.ResponseRecorder) models.ScrapeResponse {
	t.Helper()
	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestScrape(t *testing.T) {
	t.Parallel()

	fetcher := staticFetcher(articleHTML)
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer()), nil)

	w := postJSON(t, r, "/scrape", models.ScrapeRequest{URL: "https://example.com/launch", Method: "requests"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeScrape(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "http", resp.EngineUsed)
	assert.Empty(t, resp.CacheStatus)
	assert.Empty(t, resp.Markdown)

	require.NotNil(t, resp.RawData)
	assert.Equal(t, "Launch", resp.RawData.Metadata.Title)
	assert.Equal(t, "https://example.com/launch", resp.RawData.SourceURL)
	require.Len(t, resp.RawData.Links.Internal, 1)
	assert.Equal(t, "https://example.com/docs", resp.RawData.Links.Internal[0].URL)
	require.Len(t, resp.RawData.Links.Social, 1)

	require.NotNil(t, resp.StructuredData)
	assert.Equal(t, "Product launch notes", resp.StructuredData.Description)
	assert.Equal(t, models.DefaultSentiment, resp.StructuredData.SentimentLabel)
	assert.Equal(t, "2024-03-01 09:30:00", resp.StructuredData.ProcessingTimestamp)
	assert.NotEmpty(t, resp.StructuredData.Summary)
}

func TestScrape_PassesRequestToFetcher(t *testing.T) {
	t.Parallel()

	var (
		gotMethod string
		gotReq    *engine.FetchRequest
	)
	fetcher := &fakeFetcher{fetch: func(_ context.Context, method string, req *engine.FetchRequest) (*engine.FetchResult, error) {
		gotMethod, gotReq = method, req
		return &engine.FetchResult{HTML: articleHTML, FinalURL: req.URL, StatusCode: 200, EngineName: "browser"}, nil
	}}
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer()), nil)

	w := postJSON(t, r, "/scrape", models.ScrapeRequest{
		URL:          "https://example.com/launch",
		Method:       "selenium",
		Timeout:      15,
		Stealth:      true,
		Headers:      map[string]string{"Cookie": "a=b"},
		SkipAnalysis: true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.MethodBrowser, gotMethod)
	require.NotNil(t, gotReq)
	assert.Equal(t, 15*time.Second, gotReq.Timeout)
	assert.True(t, gotReq.Stealth)
	assert.Equal(t, "a=b", gotReq.Headers["Cookie"])

	resp := decodeScrape(t, w)
	assert.Nil(t, resp.StructuredData)
	assert.Equal(t, "browser", resp.EngineUsed)
}

func TestScrape_InvalidInput(t *testing.T) {
	t.Parallel()

	r := newTestRouter(NewPipeline(staticFetcher(articleHTML), testAnalyzer()), nil)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing url", body: map[string]any{}},
		{name: "bad url", body: map[string]any{"url": "not a url"}},
		{name: "unknown method", body: map[string]any{"url": "https://example.com", "method": "carrier-pigeon"}},
		{name: "timeout too large", body: map[string]any{"url": "https://example.com", "timeout": 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := postJSON(t, r, "/scrape", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeScrape(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
		})
	}
}

func TestScrape_FetchError(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{fetch: func(context.Context, string, *engine.FetchRequest) (*engine.FetchResult, error) {
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "page load timed out", context.DeadlineExceeded)
	}}
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer()), nil)

	w := postJSON(t, r, "/scrape", models.ScrapeRequest{URL: "https://example.com/slow"})

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeScrape(t, w)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.RawData)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeTimeout, resp.Error.Code)
}

func TestScrape_Cache(t *testing.T) {
	t.Parallel()

	cc := cache.New(10)
	t.Cleanup(cc.Stop)
	fetcher := staticFetcher(articleHTML)
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer(), WithCache(cc)), nil)
	req := models.ScrapeRequest{URL: "https://example.com/launch", MaxAge: 60_000, IncludeMarkdown: true}

	first := decodeScrape(t, postJSON(t, r, "/scrape", req))
	second := decodeScrape(t, postJSON(t, r, "/scrape", req))

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, "miss", first.CacheStatus)
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, first.RawData, second.RawData)
	assert.Equal(t, first.Markdown, second.Markdown)
	assert.Equal(t, "http", second.EngineUsed)
	assert.NotNil(t, second.StructuredData)

	req.MaxAge = 0
	third := decodeScrape(t, postJSON(t, r, "/scrape", req))
	assert.Empty(t, third.CacheStatus)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestParse(t *testing.T) {
	t.Parallel()

	fetcher := staticFetcher("")
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer()), nil)

	w := postJSON(t, r, "/parse", models.ParseRequest{
		RawPage: models.RawPage{
			SourceURL:   "https://example.com/launch",
			HTML:        articleHTML,
			StatusCode:  200,
			ContentType: "text/html",
			Encoding:    "utf-8",
		},
		IncludeMarkdown: true,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeScrape(t, w)
	assert.Zero(t, fetcher.calls.Load())
	assert.Empty(t, resp.EngineUsed)
	require.NotNil(t, resp.RawData)
	assert.Equal(t, 200, resp.RawData.StatusCode)
	assert.Equal(t, "utf-8", resp.RawData.Encoding)
	assert.Contains(t, resp.Markdown, "We shipped it")
	require.NotNil(t, resp.StructuredData)
}

func TestParse_MissingSourceURL(t *testing.T) {
	t.Parallel()

	r := newTestRouter(NewPipeline(nil, testAnalyzer()), nil)

	w := postJSON(t, r, "/parse", map[string]any{"html": "<p>hi</p>"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{fetch: func(_ context.Context, _ string, req *engine.FetchRequest) (*engine.FetchResult, error) {
		if strings.Contains(req.URL, "broken") {
			return nil, models.NewScrapeError(models.ErrCodeFetch, "upstream returned 500", nil)
		}
		return &engine.FetchResult{HTML: articleHTML, FinalURL: req.URL, StatusCode: 200, EngineName: "http"}, nil
	}}

	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- body
	}))
	t.Cleanup(hook.Close)

	b := NewBatchRunner(NewPipeline(fetcher, testAnalyzer()), config.BatchConfig{MaxConcurrency: 2, WebhookTimeout: time.Second})
	t.Cleanup(b.Stop)
	r := newTestRouter(NewPipeline(fetcher, testAnalyzer()), b)

	w := postJSON(t, r, "/batch/scrape", models.BatchRequest{
		URLs:          []string{"https://example.com/a", "https://example.com/broken", "https://example.com/c"},
		Options:       models.BatchOptions{SkipAnalysis: true},
		WebhookURL:    hook.URL,
		WebhookSecret: "s3cret",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var started models.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.Equal(t, models.BatchProcessing, started.Status)
	assert.Equal(t, 3, started.Total)
	require.True(t, strings.HasPrefix(started.ID, "batch-"))

	val, ok := b.jobs.Load(started.ID)
	require.True(t, ok)
	select {
	case <-val.(*batchJob).done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not finish")
	}

	req := httptest.NewRequest(http.MethodGet, "/batch/"+started.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.BatchStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, models.BatchPartial, status.Status)
	assert.Equal(t, 3, status.Completed)
	require.Len(t, status.Results, 3)
	assert.True(t, status.Results[0].Success)
	assert.False(t, status.Results[1].Success)
	assert.Equal(t, models.ErrCodeFetch, status.Results[1].Error.Code)
	assert.True(t, status.Results[2].Success)

	select {
	case hr := <-received:
		body := <-bodies
		assert.Equal(t, webhook.Sign("s3cret", body), hr.Header.Get(webhook.SignatureHeader))
		var event webhook.Event
		require.NoError(t, json.Unmarshal(body, &event))
		assert.Equal(t, webhook.EventBatchCompleted, event.Type)
		assert.Equal(t, started.ID, event.JobID)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestBatch_AllFailed(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{fetch: func(context.Context, string, *engine.FetchRequest) (*engine.FetchResult, error) {
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "dns failure", nil)
	}}
	b := NewBatchRunner(NewPipeline(fetcher, testAnalyzer()), config.BatchConfig{})
	t.Cleanup(b.Stop)

	started := b.Start(models.BatchRequest{URLs: []string{"https://example.com/a"}})
	val, _ := b.jobs.Load(started.ID)
	<-val.(*batchJob).done

	status, ok := b.Status(started.ID)
	require.True(t, ok)
	assert.Equal(t, models.BatchFailed, status.Status)
}

func TestBatch_NotFoundAndInvalid(t *testing.T) {
	t.Parallel()

	b := NewBatchRunner(NewPipeline(staticFetcher(articleHTML), testAnalyzer()), config.BatchConfig{})
	t.Cleanup(b.Stop)
	r := newTestRouter(NewPipeline(nil, testAnalyzer()), b)

	req := httptest.NewRequest(http.MethodGet, "/batch/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	w := postJSON(t, r, "/batch/scrape", models.BatchRequest{URLs: []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch_EvictExpired(t *testing.T) {
	t.Parallel()

	b := NewBatchRunner(NewPipeline(staticFetcher(articleHTML), testAnalyzer()), config.BatchConfig{JobTTL: time.Minute})
	t.Cleanup(b.Stop)
	now := time.Now()
	b.jobs.Store("old", &batchJob{id: "old", createdAt: now.Add(-2 * time.Minute)})
	b.jobs.Store("new", &batchJob{id: "new", createdAt: now})

	b.evictExpired()

	_, ok := b.Status("old")
	assert.False(t, ok)
	_, ok = b.Status("new")
	assert.True(t, ok)
}

type fakePool struct{ stats models.PoolStats }

func (f fakePool) Stats() models.PoolStats { return f.stats }

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pool       PoolReporter
		wantStatus string
	}{
		{name: "no browser", pool: nil, wantStatus: "healthy"},
		{name: "idle pool", pool: fakePool{models.PoolStats{Enabled: true, MaxPages: 10, ActivePages: 2}}, wantStatus: "healthy"},
		{name: "busy pool", pool: fakePool{models.PoolStats{Enabled: true, MaxPages: 10, ActivePages: 9}}, wantStatus: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/health", Health(tt.pool, "lead", time.Now()))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var resp models.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "lead", resp.Summarizer)
			assert.Equal(t, Version, resp.Version)
		})
	}
}

func TestMapErrorToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeFetch, http.StatusBadGateway},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeBrowserCrash, http.StatusBadGateway},
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeNotFound, http.StatusNotFound},
		{models.ErrCodeExtraction, http.StatusUnprocessableEntity},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapErrorToStatus(models.NewScrapeError(tt.code, "x", nil)), tt.code)
	}
}
