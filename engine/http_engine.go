package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/webstruct/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// maxBody caps the bytes read from a response.
	maxBody = 10 << 20
)

// ErrSPAShell is returned by an HTTPEngine with SPA detection when the page
// looks like it needs JavaScript to render.
var ErrSPAShell = errors.New("http_engine: page requires javascript rendering")

// HTTPEngine is a lightweight engine that uses net/http with a Chrome-like
// TLS fingerprint. It is the fastest option, suitable for static pages.
type HTTPEngine struct {
	client    *http.Client
	detectSPA bool
	name      string
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithSPADetection makes Fetch fail with ErrSPAShell on pages that need a
// browser, so a dispatcher can escalate.
func WithSPADetection() HTTPOption {
	return func(e *HTTPEngine) {
		e.detectSPA = true
		e.name = "http-static"
	}
}

// WithHTTPClient replaces the utls-backed client, mainly for tests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPEngine) { e.client = c }
}

// WithTimeout caps every fetch at d, whatever the request asks for.
func WithTimeout(d time.Duration) HTTPOption {
	return func(e *HTTPEngine) { e.client.Timeout = d }
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPEngine creates an HTTPEngine. proxy may be empty or an http(s) proxy URL.
func NewHTTPEngine(proxy string, opts ...HTTPOption) *HTTPEngine {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	e := &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		name: "http",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (e *HTTPEngine) Name() string { return e.name }

// Fetch performs a GET and decodes the body to UTF-8. Non-2xx responses and
// non-HTML content types are errors.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid URL", err)
	}

	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, categorizeFetchError(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, categorizeFetchError(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewScrapeError(models.ErrCodeFetch,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, req.URL), nil)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}
	if !isHTMLContentType(ct) {
		return nil, models.NewScrapeError(models.ErrCodeFetch,
			fmt.Sprintf("non-html content-type %q", ct), nil)
	}

	decoded, encoding := decodeBody(body, ct)

	if e.detectSPA && needsBrowser(decoded) {
		return nil, ErrSPAShell
	}

	return &FetchResult{
		HTML:        decoded,
		Title:       extractTitle(decoded),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: ct,
		Encoding:    encoding,
		EngineName:  e.name,
	}, nil
}

// decodeBody converts body to UTF-8 using the Content-Type charset, a BOM or
// a <meta charset> prescan, in that order of precedence.
func decodeBody(body []byte, contentType string) (string, string) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), name
	}
	return string(decoded), name
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// extractTitle uses the Go HTML tokenizer to find the first <title> element.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// categorizeFetchError maps transport errors to ScrapeError codes.
func categorizeFetchError(err error, msg string) *models.ScrapeError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeFetch, msg, err)
	}
}
